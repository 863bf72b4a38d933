package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillmint/internal/credential/models"
	"skillmint/internal/platform/middleware"
	"skillmint/internal/transport/http/shared"
	respond "skillmint/internal/transport/http/shared/json"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
)

// Service defines the interface for credential reads.
type Service interface {
	Get(ctx context.Context, tokenID id.TokenID) (*models.Credential, error)
	ListByOwner(ctx context.Context, owner id.ParticipantID) ([]id.TokenID, error)
}

// Binder derives deposit account references from credentials.
type Binder interface {
	DeriveAccount(ctx context.Context, tokenID id.TokenID, requester id.ParticipantID) (string, error)
}

// Handler handles credential endpoints. Credentials are read-only over HTTP;
// they change only through the verification pipeline.
type Handler struct {
	credentials Service
	binder      Binder
	logger      *slog.Logger
}

// New creates a new credential Handler.
func New(credentials Service, binder Binder, logger *slog.Logger) *Handler {
	return &Handler{
		credentials: credentials,
		binder:      binder,
		logger:      logger,
	}
}

// Register registers the credential routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/credentials/{tokenID}", h.handleGet)
	r.Get("/credentials", h.handleList)
	r.Post("/credentials/{tokenID}/account", h.handleDeriveAccount)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokenID, err := id.ParseTokenID(chi.URLParam(r, "tokenID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	credential, err := h.credentials.Get(ctx, tokenID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toCredentialResponse(credential))
}

// handleList serves the caller's own credentials: GET /credentials?owner=me.
// Tokens come back in first-minted order.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCallerID(ctx)

	if r.URL.Query().Get("owner") != "me" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "only owner=me listings are supported"))
		return
	}

	tokenIDs, err := h.credentials.ListByOwner(ctx, caller)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list credentials",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	out := CredentialListResponse{Credentials: make([]CredentialResponse, 0, len(tokenIDs))}
	for _, tokenID := range tokenIDs {
		credential, err := h.credentials.Get(ctx, tokenID)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to load listed credential",
				"request_id", middleware.GetRequestID(ctx),
				"token_id", tokenID,
				"error", err,
			)
			shared.WriteError(w, err)
			return
		}
		out.Credentials = append(out.Credentials, toCredentialResponse(credential))
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDeriveAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCallerID(ctx)

	tokenID, err := id.ParseTokenID(chi.URLParam(r, "tokenID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	account, err := h.binder.DeriveAccount(ctx, tokenID, caller)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to derive account",
			"request_id", middleware.GetRequestID(ctx),
			"token_id", tokenID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, AccountResponse{TokenID: uint64(tokenID), Account: account})
}
