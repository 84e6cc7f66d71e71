package domain

import dErrors "veil/pkg/domain-errors"

// ConsentLevel is a domain value governing which data types and activities
// are permissible for a subject's data.
// Invariant: the value must be one of the supported consent levels.
//
// Usage: construct via ParseConsentLevel at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type ConsentLevel string

const (
	ConsentLevelNone    ConsentLevel = "none"
	ConsentLevelMinimal ConsentLevel = "minimal"
	ConsentLevelFull    ConsentLevel = "full"
)

// consentLevelRank orders levels for permission comparisons. Higher ranks
// permit strictly more data types.
var consentLevelRank = map[ConsentLevel]int{
	ConsentLevelNone:    0,
	ConsentLevelMinimal: 1,
	ConsentLevelFull:    2,
}

// ParseConsentLevel constructs a ConsentLevel from external input.
//
// Errors: returns CodeBadRequest when the value is empty or unsupported; no
// other errors are expected.
func ParseConsentLevel(s string) (ConsentLevel, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "consent level cannot be empty")
	}
	l := ConsentLevel(s)
	if !l.IsValid() {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unsupported consent level: %s", s)
	}
	return l, nil
}

func (l ConsentLevel) IsValid() bool {
	_, ok := consentLevelRank[l]
	return ok
}

// AtLeast reports whether l permits everything other permits.
func (l ConsentLevel) AtLeast(other ConsentLevel) bool {
	return consentLevelRank[l] >= consentLevelRank[other]
}
