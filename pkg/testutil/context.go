package testutil

import (
	"net/http"
	"time"

	id "carelink/pkg/domain"
	"carelink/pkg/requestcontext"
)

// WithActor puts actor into the request context the way RequireActor does.
func WithActor(req *http.Request, actor id.ProfileID) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), actor))
}

// WithRequestTime pins requestcontext.Now for the request.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
