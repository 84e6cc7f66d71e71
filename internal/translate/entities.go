package translate

import (
	"sort"
	"strings"
)

// Known condition and data-type vocabularies. Entity extraction matches
// against these allowlists only; free text never reaches the generated
// query as an identifier.
var knownConditions = []string{
	"anxiety", "depression", "ptsd", "ocd", "bipolar",
	"insomnia", "burnout", "grief", "panic",
}

var dataTypeKeywords = map[string]string{
	"emotional":   "emotional_metrics",
	"emotion":     "emotional_metrics",
	"mood":        "emotional_metrics",
	"outcome":     "emotional_metrics",
	"technique":   "technique_usage",
	"therapeutic": "technique_usage",
	"session":     "session_metadata",
	"engagement":  "usage_metrics",
	"usage":       "usage_metrics",
	"crisis":      "crisis_flags",
	"demographic": "demographics",
	"clinical":    "clinical_notes",
	"diagnosis":   "conditions",
}

// extractEntities returns matched condition names and the data-type field
// groups a question touches.
func extractEntities(question string) (conditions []string, dataTypes []string) {
	q := strings.ToLower(question)
	for _, condition := range knownConditions {
		if strings.Contains(q, condition) {
			conditions = append(conditions, condition)
		}
	}
	seen := make(map[string]bool)
	for keyword, dataType := range dataTypeKeywords {
		if strings.Contains(q, keyword) && !seen[dataType] {
			seen[dataType] = true
			dataTypes = append(dataTypes, dataType)
		}
	}
	sort.Strings(dataTypes)
	return conditions, dataTypes
}
