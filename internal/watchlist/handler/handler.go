package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carelink/internal/watchlist/models"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/httputil"
	"carelink/pkg/requestcontext"
)

type Service interface {
	Add(ctx context.Context, owner, watched id.ProfileID) (*models.Entry, error)
	Remove(ctx context.Context, owner, watched id.ProfileID) error
	List(ctx context.Context, owner id.ProfileID) ([]*models.Entry, error)
	IsWatched(ctx context.Context, owner, watched id.ProfileID) (bool, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/watchlist", h.handleAdd)
	r.Get("/v1/watchlist", h.handleList)
	r.Get("/v1/watchlist/{watchedID}", h.handleIsWatched)
	r.Delete("/v1/watchlist/{watchedID}", h.handleRemove)
}

type addRequest struct {
	WatchedID string `json:"watched_id"`
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req addRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	watched, err := id.ParseProfileID(req.WatchedID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entry, err := h.service.Add(ctx, requestcontext.ActorID(ctx), watched)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.service.List(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if entries == nil {
		entries = []*models.Entry{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleIsWatched(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	watched, err := id.ParseProfileID(chi.URLParam(r, "watchedID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ok, err := h.service.IsWatched(ctx, requestcontext.ActorID(ctx), watched)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"watched": ok})
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	watched, err := id.ParseProfileID(chi.URLParam(r, "watchedID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Remove(ctx, requestcontext.ActorID(ctx), watched); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == "" {
		h.logger.ErrorContext(ctx, "watchlist request failed", "error", err)
	}
	httputil.WriteError(w, err)
}
