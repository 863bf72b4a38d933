package domain

import (
	"strings"

	dErrors "skillmint/pkg/domain-errors"
)

// SkillType tags a challenge and the credential it feeds. Tags are compared
// by exact normalized value, never by incidental hashing behavior, so
// "React " and "react" resolve to the same credential.
type SkillType string

// ParseSkillType normalizes a raw tag: trimmed, lower-cased, internal runs of
// whitespace collapsed to single hyphens. Empty tags are rejected.
func ParseSkillType(raw string) (SkillType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "skill type cannot be empty")
	}
	normalized = strings.Join(strings.Fields(normalized), "-")
	return SkillType(normalized), nil
}

func (t SkillType) String() string { return string(t) }

func (t SkillType) IsZero() bool { return t == "" }
