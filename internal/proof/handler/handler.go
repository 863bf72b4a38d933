package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillmint/internal/platform/middleware"
	"skillmint/internal/proof/models"
	"skillmint/internal/transport/http/shared"
	respond "skillmint/internal/transport/http/shared/json"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
)

// Service defines the interface for proof operations.
type Service interface {
	Submit(ctx context.Context, solver id.ParticipantID, params models.SubmitParams) (*models.Proof, error)
	Verify(ctx context.Context, proofID id.ProofID) (*models.VerifyResult, error)
	Get(ctx context.Context, proofID id.ProofID) (*models.Proof, error)
	ListBySolver(ctx context.Context, solver id.ParticipantID) ([]*models.Proof, error)
}

// Handler handles proof submission and verification endpoints.
type Handler struct {
	proofs Service
	logger *slog.Logger
}

// New creates a new proof Handler.
func New(proofs Service, logger *slog.Logger) *Handler {
	return &Handler{
		proofs: proofs,
		logger: logger,
	}
}

// Register registers the proof routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/proofs", h.handleSubmit)
	r.Post("/proofs/{proofID}/verify", h.handleVerify)
	r.Get("/proofs/{proofID}", h.handleGet)
	r.Get("/proofs", h.handleList)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCallerID(ctx)

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode submit proof request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	params, err := req.ToParams()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	proof, err := h.proofs.Submit(ctx, caller, params)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to submit proof",
			"request_id", middleware.GetRequestID(ctx),
			"challenge_id", params.ChallengeID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, toProofResponse(proof))
}

// handleVerify drives the verification unit. Any authenticated participant
// may trigger it; the outcome depends only on the proof.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proofID, err := id.ParseProofID(chi.URLParam(r, "proofID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.proofs.Verify(ctx, proofID)
	if err != nil {
		h.logger.WarnContext(ctx, "verification attempt failed",
			"request_id", middleware.GetRequestID(ctx),
			"proof_id", proofID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toVerifyResponse(result))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proofID, err := id.ParseProofID(chi.URLParam(r, "proofID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	proof, err := h.proofs.Get(ctx, proofID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toProofResponse(proof))
}

// handleList serves the caller's own submissions: GET /proofs?solver=me.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCallerID(ctx)

	if r.URL.Query().Get("solver") != "me" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "only solver=me listings are supported"))
		return
	}

	proofs, err := h.proofs.ListBySolver(ctx, caller)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list proofs",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toProofListResponse(proofs))
}
