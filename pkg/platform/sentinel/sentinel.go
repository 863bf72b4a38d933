// Package sentinel holds shared storage sentinel errors so memory and sqlite
// store implementations report the same conditions.
package sentinel

import (
	dErrors "skillmint/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

	// ErrConflict reports a lost compare-and-set, e.g. marking an
	// already-verified proof as verified.
	ErrConflict = dErrors.New(dErrors.CodeConflict, "record already in target state")
)
