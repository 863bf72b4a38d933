package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillmint/internal/platform/middleware"
	"skillmint/internal/transport/http/shared"
	respond "skillmint/internal/transport/http/shared/json"
	id "skillmint/pkg/domain"
)

// Service defines the read interface over escrow balances.
type Service interface {
	BalanceOf(ctx context.Context, recipient id.ParticipantID) (id.Amount, error)
}

// Handler serves escrow balance reads. Holds and releases have no HTTP
// surface; they happen inside challenge creation and proof verification.
type Handler struct {
	escrow Service
	logger *slog.Logger
}

// New creates a new escrow Handler.
func New(escrow Service, logger *slog.Logger) *Handler {
	return &Handler{
		escrow: escrow,
		logger: logger,
	}
}

// Register registers the escrow routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/escrow/balance", h.handleBalance)
}

// BalanceResponse carries the caller's accrued reward balance.
type BalanceResponse struct {
	Participant string `json:"participant"`
	Balance     uint64 `json:"balance"`
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCallerID(ctx)

	balance, err := h.escrow.BalanceOf(ctx, caller)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read balance",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, BalanceResponse{
		Participant: caller.String(),
		Balance:     uint64(balance),
	})
}
