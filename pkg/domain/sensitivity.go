package domain

import dErrors "veil/pkg/domain-errors"

// Sensitivity classifies how much a generated query could reveal about
// individual subjects.
type Sensitivity string

const (
	SensitivityPublic       Sensitivity = "public"
	SensitivityInternal     Sensitivity = "internal"
	SensitivityConfidential Sensitivity = "confidential"
	SensitivityRestricted   Sensitivity = "restricted"
)

var sensitivityRank = map[Sensitivity]int{
	SensitivityPublic:       0,
	SensitivityInternal:     1,
	SensitivityConfidential: 2,
	SensitivityRestricted:   3,
}

func ParseSensitivity(s string) (Sensitivity, error) {
	v := Sensitivity(s)
	if !v.IsValid() {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unsupported sensitivity: %s", s)
	}
	return v, nil
}

func (s Sensitivity) IsValid() bool {
	_, ok := sensitivityRank[s]
	return ok
}

// AtMost reports whether s is no more sensitive than other.
func (s Sensitivity) AtMost(other Sensitivity) bool {
	return sensitivityRank[s] <= sensitivityRank[other]
}
