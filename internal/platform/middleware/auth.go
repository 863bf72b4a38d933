package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "skillmint/pkg/domain"
)

// Caller identity is carried as the JWT subject claim. Participants are
// opaque identifiers to the ledger; the middleware only authenticates the
// bearer, it never interprets who they are. Key management stays outside
// this system.

type contextKeyCaller struct{}

// GetCallerID retrieves the authenticated caller from the context.
// Empty means the request did not pass RequireAuth.
func GetCallerID(ctx context.Context) id.ParticipantID {
	caller, ok := ctx.Value(contextKeyCaller{}).(id.ParticipantID)
	if !ok {
		return ""
	}
	return caller
}

// WithCallerID injects a caller identity; exported for handler tests.
func WithCallerID(ctx context.Context, caller id.ParticipantID) context.Context {
	return context.WithValue(ctx, contextKeyCaller{}, caller)
}

// RequireAuth validates the Bearer token with the given HMAC key and stores
// the subject claim as the caller identity.
func RequireAuth(signingKey []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			subject, err := validateToken(token, signingKey)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = WithCallerID(ctx, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validateToken(tokenString string, signingKey []byte) (id.ParticipantID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", jwt.ErrTokenRequiredClaimMissing
	}
	return id.ParticipantID(subject), nil
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	writeEnvelope(w, http.StatusUnauthorized, "unauthorized", description)
}
