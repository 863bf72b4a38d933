package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillmint/internal/challenge/models"
	"skillmint/internal/platform/middleware"
	"skillmint/internal/transport/http/shared"
	respond "skillmint/internal/transport/http/shared/json"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
)

// Service defines the interface for challenge operations.
type Service interface {
	Create(ctx context.Context, creator id.ParticipantID, params models.CreateParams) (*models.Challenge, error)
	Deactivate(ctx context.Context, challengeID id.ChallengeID, caller id.ParticipantID) error
	Get(ctx context.Context, challengeID id.ChallengeID) (*models.Challenge, error)
	ListByCreator(ctx context.Context, creator id.ParticipantID) ([]*models.Challenge, error)
}

// Handler handles challenge endpoints.
type Handler struct {
	challenges Service
	logger     *slog.Logger
}

// New creates a new challenge Handler.
func New(challenges Service, logger *slog.Logger) *Handler {
	return &Handler{
		challenges: challenges,
		logger:     logger,
	}
}

// Register registers the challenge routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/challenges", h.handleCreate)
	r.Post("/challenges/{challengeID}/deactivate", h.handleDeactivate)
	r.Get("/challenges/{challengeID}", h.handleGet)
	r.Get("/challenges", h.handleList)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCallerID(ctx)

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create challenge request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.Normalize()
	params, err := req.ToParams()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	challenge, err := h.challenges.Create(ctx, caller, params)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create challenge",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, toChallengeResponse(challenge))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCallerID(ctx)

	challengeID, err := id.ParseChallengeID(chi.URLParam(r, "challengeID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.challenges.Deactivate(ctx, challengeID, caller); err != nil {
		h.logger.WarnContext(ctx, "failed to deactivate challenge",
			"request_id", middleware.GetRequestID(ctx),
			"challenge_id", challengeID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, DeactivateResponse{ID: uint64(challengeID), Active: false})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	challengeID, err := id.ParseChallengeID(chi.URLParam(r, "challengeID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	challenge, err := h.challenges.Get(ctx, challengeID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toChallengeResponse(challenge))
}

// handleList serves the caller's own challenges: GET /challenges?creator=me.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCallerID(ctx)

	if r.URL.Query().Get("creator") != "me" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "only creator=me listings are supported"))
		return
	}

	challenges, err := h.challenges.ListByCreator(ctx, caller)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list challenges",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toChallengeListResponse(challenges))
}
