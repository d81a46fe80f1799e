package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carelink/internal/contact/models"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/httputil"
	"carelink/pkg/requestcontext"
)

// Service is the contact request surface the handler needs.
type Service interface {
	CreateRequest(ctx context.Context, requester, target id.ProfileID, message string) (*models.ContactRequest, error)
	Respond(ctx context.Context, requestID id.ContactRequestID, actor id.ProfileID, decision models.Decision) (*models.ContactRequest, error)
	Get(ctx context.Context, actor id.ProfileID, requestID id.ContactRequestID) (*models.ContactRequest, error)
	ListIncoming(ctx context.Context, actor id.ProfileID, status models.Status) ([]*models.ContactRequest, error)
	ListOutgoing(ctx context.Context, actor id.ProfileID, status models.Status) ([]*models.ContactRequest, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the routes. Callers wrap r with RequireActor.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/contact-requests", h.handleCreate)
	r.Get("/v1/contact-requests", h.handleList)
	r.Get("/v1/contact-requests/{id}", h.handleGet)
	r.Post("/v1/contact-requests/{id}/respond", h.handleRespond)
}

type createRequest struct {
	TargetID string `json:"target_id"`
	Message  string `json:"message"`
}

type respondRequest struct {
	Decision string `json:"decision"`
}

type listResponse struct {
	Requests []*models.ContactRequest `json:"requests"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.ActorID(ctx)

	var req createRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	target, err := id.ParseProfileID(req.TargetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.service.CreateRequest(ctx, actor, target, req.Message)
	if err != nil {
		h.writeError(ctx, w, "create contact request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleRespond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := id.ParseContactRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req respondRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	decision, err := models.ParseDecision(req.Decision)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	updated, err := h.service.Respond(ctx, requestID, requestcontext.ActorID(ctx), decision)
	if err != nil {
		h.writeError(ctx, w, "respond to contact request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := id.ParseContactRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	found, err := h.service.Get(ctx, requestcontext.ActorID(ctx), requestID)
	if err != nil {
		h.writeError(ctx, w, "get contact request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.ActorID(ctx)
	q := r.URL.Query()

	status, err := models.ParseStatus(q.Get("status"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var list []*models.ContactRequest
	switch q.Get("direction") {
	case "", "incoming":
		list, err = h.service.ListIncoming(ctx, actor, status)
	case "outgoing":
		list, err = h.service.ListOutgoing(ctx, actor, status)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "direction must be incoming or outgoing"))
		return
	}
	if err != nil {
		h.writeError(ctx, w, "list contact requests", err)
		return
	}
	if list == nil {
		list = []*models.ContactRequest{}
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Requests: list})
}

// writeError logs uncoded failures before writing them; coded errors are
// expected business outcomes.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.CodeOf(err) == "" {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
