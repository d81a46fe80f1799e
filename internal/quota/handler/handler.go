package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carelink/internal/quota/models"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/httputil"
	"carelink/pkg/requestcontext"
)

// Service is the listing surface guarded by tier quotas.
type Service interface {
	CreateListing(ctx context.Context, actor, orgID id.ProfileID, draft models.ListingDraft) (*models.Listing, error)
	FeatureListing(ctx context.Context, actor id.ProfileID, listingID id.ListingID) (*models.Listing, error)
	DeactivateListing(ctx context.Context, actor id.ProfileID, listingID id.ListingID) (*models.Listing, error)
	Usage(ctx context.Context, actor, orgID id.ProfileID) (*models.Usage, error)
	ListByOwner(ctx context.Context, actor, orgID id.ProfileID) ([]*models.Listing, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/listings", h.handleCreate)
	r.Post("/v1/listings/{id}/feature", h.handleFeature)
	r.Post("/v1/listings/{id}/deactivate", h.handleDeactivate)
	r.Get("/v1/organizations/{id}/quota", h.handleUsage)
	r.Get("/v1/organizations/{id}/listings", h.handleList)
}

type listResponse struct {
	Listings []*models.Listing `json:"listings"`
}

// handleCreate posts a listing for the acting organization.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.ActorID(ctx)

	var draft models.ListingDraft
	if err := httputil.DecodeJSON(r, &draft); err != nil {
		httputil.WriteError(w, err)
		return
	}

	listing, err := h.service.CreateListing(ctx, actor, actor, draft)
	if err != nil {
		h.writeError(ctx, w, "create listing", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, listing)
}

func (h *Handler) handleFeature(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "feature listing", h.service.FeatureListing)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "deactivate listing", h.service.DeactivateListing)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op string,
	apply func(context.Context, id.ProfileID, id.ListingID) (*models.Listing, error),
) {
	ctx := r.Context()
	listingID, err := id.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	listing, err := apply(ctx, requestcontext.ActorID(ctx), listingID)
	if err != nil {
		h.writeError(ctx, w, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	usage, err := h.service.Usage(ctx, requestcontext.ActorID(ctx), orgID)
	if err != nil {
		h.writeError(ctx, w, "read quota usage", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, usage)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	listings, err := h.service.ListByOwner(ctx, requestcontext.ActorID(ctx), orgID)
	if err != nil {
		h.writeError(ctx, w, "list listings", err)
		return
	}
	if listings == nil {
		listings = []*models.Listing{}
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Listings: listings})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.CodeOf(err) == "" {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
