package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"carelink/internal/messaging/models"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/httputil"
	"carelink/pkg/requestcontext"
)

type Service interface {
	Send(ctx context.Context, sender, recipient id.ProfileID, body string) (*models.Message, error)
	Conversation(ctx context.Context, actor, peer id.ProfileID, limit int) ([]*models.Message, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/messages", h.handleSend)
	r.Get("/v1/messages/{peerID}", h.handleConversation)
}

type sendRequest struct {
	RecipientID string `json:"recipient_id"`
	Body        string `json:"body"`
}

type conversationResponse struct {
	Messages []*models.Message `json:"messages"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	recipient, err := id.ParseProfileID(req.RecipientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	msg, err := h.service.Send(ctx, requestcontext.ActorID(ctx), recipient, req.Body)
	if err != nil {
		if dErrors.CodeOf(err) == "" {
			h.logger.ErrorContext(ctx, "failed to send message", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	peer, err := id.ParseProfileID(chi.URLParam(r, "peerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a number"))
			return
		}
	}

	msgs, err := h.service.Conversation(ctx, requestcontext.ActorID(ctx), peer, limit)
	if err != nil {
		if dErrors.CodeOf(err) == "" {
			h.logger.ErrorContext(ctx, "failed to load conversation", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	httputil.WriteJSON(w, http.StatusOK, conversationResponse{Messages: msgs})
}
