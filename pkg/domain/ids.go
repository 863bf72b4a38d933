// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strconv"
	"strings"

	dErrors "skillmint/pkg/domain-errors"
)

// Distinct numeric handle types - the compiler prevents passing a ProofID
// where a ChallengeID is expected. Handles are allocated sequentially
// starting at 1; 0 is the "none / not found" sentinel.
type (
	ChallengeID uint64
	ProofID     uint64
	TokenID     uint64
)

// ParticipantID identifies a creator, solver, or credential owner. The ledger
// treats participants as opaque identifiers; it never interprets them.
type ParticipantID string

// Amount is a quantity of escrowed reward units.
type Amount uint64

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseChallengeID(s string) (ChallengeID, error) {
	v, err := parseHandle(s, "challenge ID")
	return ChallengeID(v), err
}

func ParseProofID(s string) (ProofID, error) {
	v, err := parseHandle(s, "proof ID")
	return ProofID(v), err
}

func ParseTokenID(s string) (TokenID, error) {
	v, err := parseHandle(s, "token ID")
	return TokenID(v), err
}

func ParseParticipantID(s string) (ParticipantID, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "participant ID cannot be empty")
	}
	return ParticipantID(s), nil
}

// String methods - for logging, URLs, and debugging.

func (id ChallengeID) String() string   { return strconv.FormatUint(uint64(id), 10) }
func (id ProofID) String() string       { return strconv.FormatUint(uint64(id), 10) }
func (id TokenID) String() string       { return strconv.FormatUint(uint64(id), 10) }
func (id ParticipantID) String() string { return string(id) }

// IsZero checks - used for service-layer validation against the none sentinel.

func (id ChallengeID) IsZero() bool   { return id == 0 }
func (id ProofID) IsZero() bool       { return id == 0 }
func (id TokenID) IsZero() bool       { return id == 0 }
func (id ParticipantID) IsZero() bool { return id == "" }

// parseHandle is the shared validation logic. Zero handles are allowed here
// so store lookups can return proper "not found" errors; use IsZero() at the
// service layer for business validation.
func parseHandle(s, label string) (uint64, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, label+" must be a decimal handle")
	}
	return v, nil
}
