package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	id "carelink/pkg/domain"
	"carelink/pkg/requestcontext"
)

type stubValidator struct {
	claims *ActorClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*ActorClaims, error) { return s.claims, s.err }

type stubRevocations struct {
	revoked bool
	err     error
}

func (s stubRevocations) IsTokenRevoked(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func serve(v ActorValidator, rc TokenRevocationChecker, header string) (*httptest.ResponseRecorder, id.ProfileID, id.Role) {
	var (
		actor id.ProfileID
		role  id.Role
	)
	h := RequireActor(v, rc, discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = requestcontext.ActorID(r.Context())
		role = GetRole(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, actor, role
}

func TestRequireActor(t *testing.T) {
	actor := id.NewProfileID()
	valid := stubValidator{claims: &ActorClaims{ActorID: actor.String(), Role: "provider", JTI: "j1"}}

	t.Run("valid token", func(t *testing.T) {
		rec, got, role := serve(valid, nil, "Bearer token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, actor, got)
		assert.Equal(t, id.RoleProvider, role)
	})

	t.Run("missing header", func(t *testing.T) {
		rec, _, _ := serve(valid, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec, _, _ := serve(valid, nil, "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec, _, _ := serve(stubValidator{err: errors.New("bad")}, nil, "Bearer token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad subject", func(t *testing.T) {
		rec, _, _ := serve(stubValidator{claims: &ActorClaims{ActorID: "nope"}}, nil, "Bearer token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoked", func(t *testing.T) {
		rec, _, _ := serve(valid, stubRevocations{revoked: true}, "Bearer token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revocation store down", func(t *testing.T) {
		rec, _, _ := serve(valid, stubRevocations{err: errors.New("down")}, "Bearer token")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
