package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carelink/internal/discovery"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/httputil"
	"carelink/pkg/requestcontext"
)

type Service interface {
	Search(ctx context.Context, f discovery.Filter) (*discovery.Page, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/search", h.handleSearch)
}

// handleSearch takes the filter as a JSON body; geo boxes and rate ranges
// do not fit a query string well.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var f discovery.Filter
	if err := httputil.DecodeJSON(r, &f); err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.Search(ctx, f)
	if err != nil {
		if dErrors.CodeOf(err) == "" {
			h.logger.ErrorContext(ctx, "search failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}
