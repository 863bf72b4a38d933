package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "skillmint/pkg/domain"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, subject string, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func authHarness(t *testing.T) (http.Handler, *id.ParticipantID) {
	t.Helper()
	var captured id.ParticipantID
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetCallerID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return RequireAuth(testKey, log)(inner), &captured
}

func TestRequireAuth_ValidToken(t *testing.T) {
	h, captured := authHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/credentials", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "alice", testKey))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id.ParticipantID("alice"), *captured)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	h, _ := authHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/credentials", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_WrongKey(t *testing.T) {
	h, _ := authHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/credentials", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "alice", []byte("other-key")))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_MissingSubject(t *testing.T) {
	h, _ := authHarness(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testKey)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/credentials", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
