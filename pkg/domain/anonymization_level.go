package domain

import dErrors "veil/pkg/domain-errors"

// AnonymizationLevel selects a preset anonymization policy. Stronger levels
// spend smaller epsilon budgets and target larger equivalence classes.
type AnonymizationLevel string

const (
	AnonymizationBasic    AnonymizationLevel = "basic"
	AnonymizationEnhanced AnonymizationLevel = "enhanced"
	AnonymizationMaximum  AnonymizationLevel = "maximum"
)

var validAnonymizationLevels = map[AnonymizationLevel]bool{
	AnonymizationBasic:    true,
	AnonymizationEnhanced: true,
	AnonymizationMaximum:  true,
}

func ParseAnonymizationLevel(s string) (AnonymizationLevel, error) {
	if s == "" {
		return AnonymizationEnhanced, nil
	}
	l := AnonymizationLevel(s)
	if !validAnonymizationLevels[l] {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unsupported anonymization level: %s", s)
	}
	return l, nil
}

func (l AnonymizationLevel) IsValid() bool {
	return validAnonymizationLevels[l]
}
