package testutil

import (
	"fmt"

	"github.com/google/uuid"

	id "skillmint/pkg/domain"
)

// TestParticipants provides deterministic participant handles for tests.
var TestParticipants = struct {
	Creator id.ParticipantID
	Alice   id.ParticipantID
	Bob     id.ParticipantID
}{
	Creator: "creator-1",
	Alice:   "alice",
	Bob:     "bob",
}

// ProofToken returns an opaque external-proof token. Real tokens come from
// the proof system; tests only need them non-empty and distinct.
func ProofToken() string {
	return "zkp_" + uuid.New().String()
}

// SolutionDigest fabricates a distinct solution digest for test submissions.
func SolutionDigest(n int) string {
	return fmt.Sprintf("sha256:%064d", n)
}
