package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"carelink/internal/geo"
	"carelink/internal/profile/models"
	"carelink/internal/score"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/httputil"
	"carelink/pkg/requestcontext"
)

// Service is the profile surface exposed over HTTP.
type Service interface {
	Get(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)
	UpdateProviderAttributes(ctx context.Context, actor, profileID id.ProfileID, attrs models.ProviderAttributes) (*models.Profile, score.Result, error)
	ScoreBreakdown(ctx context.Context, profileID id.ProfileID) (score.Result, error)
	UpdateSubscriptionTier(ctx context.Context, actor, orgID id.ProfileID, tier models.SubscriptionTier) error
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/profiles/{id}", h.handleGet)
	r.Get("/v1/providers/{id}/score", h.handleScore)
	r.Put("/v1/providers/{id}/attributes", h.handleUpdateAttributes)
	r.Put("/v1/organizations/{id}/tier", h.handleUpdateTier)
}

// profileResponse is the public view of a profile. Hidden fields are already
// blanked by PublicView and dropped by omitempty.
type profileResponse struct {
	ID          id.ProfileID      `json:"id"`
	Role        id.Role           `json:"role"`
	DisplayName string            `json:"display_name"`
	City        string            `json:"city,omitempty"`
	Email       string            `json:"email,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Location    *geo.Point        `json:"location,omitempty"`
	Attributes  models.Attributes `json:"attributes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func toResponse(p *models.Profile) profileResponse {
	view := p.PublicView()
	return profileResponse{
		ID:          view.ID,
		Role:        view.Role,
		DisplayName: view.DisplayName,
		City:        view.City,
		Email:       view.Email,
		Phone:       view.Phone,
		Location:    view.Location,
		Attributes:  view.Attributes,
		CreatedAt:   view.CreatedAt,
		UpdatedAt:   view.UpdatedAt,
	}
}

type updateAttributesResponse struct {
	Profile profileResponse `json:"profile"`
	Score   score.Result    `json:"score"`
}

type updateTierRequest struct {
	Tier string `json:"tier"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Get(ctx, profileID)
	if err != nil {
		h.writeError(ctx, w, "get profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.ScoreBreakdown(ctx, profileID)
	if err != nil {
		h.writeError(ctx, w, "compute score", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// handleUpdateAttributes replaces the provider payload. A care_score field in
// the body decodes but is overwritten by the service.
func (h *Handler) handleUpdateAttributes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var attrs models.ProviderAttributes
	if err := httputil.DecodeJSON(r, &attrs); err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, result, err := h.service.UpdateProviderAttributes(ctx, requestcontext.ActorID(ctx), profileID, attrs)
	if err != nil {
		h.writeError(ctx, w, "update provider attributes", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updateAttributesResponse{Profile: toResponse(p), Score: result})
}

func (h *Handler) handleUpdateTier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req updateTierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	tier, err := models.ParseSubscriptionTier(req.Tier)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.UpdateSubscriptionTier(ctx, requestcontext.ActorID(ctx), orgID, tier); err != nil {
		h.writeError(ctx, w, "update subscription tier", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
