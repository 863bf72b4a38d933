// Package oracle defines the port to the external proof system. The ledger
// treats it as an opaque predicate over the external-proof token and never
// inspects proof material itself.
package oracle

import (
	"context"
	"strings"
)

//go:generate mockgen -source=oracle.go -destination=../service/mocks/mocks.go -package=mocks Verifier

// Verifier returns the validity verdict for an external-proof token.
// Invoked synchronously before any ledger mutation; it is the sole
// suspension point of the verification unit.
type Verifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// TokenPresence is the reference verifier: any non-empty token is valid.
// Stands in for the real proof system; callers must not rely on this
// triviality.
type TokenPresence struct{}

func NewTokenPresence() *TokenPresence {
	return &TokenPresence{}
}

func (*TokenPresence) Verify(_ context.Context, token string) (bool, error) {
	return strings.TrimSpace(token) != "", nil
}
