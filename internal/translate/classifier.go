package translate

import (
	"context"
	"strings"

	"veil/internal/domain"
)

// IntentClassifier maps a natural-language research question to one of the
// closed intent set with a confidence score. The default implementation is
// keyword-based; an ML-backed classifier can be swapped in without touching
// the translator contract.
type IntentClassifier interface {
	Classify(ctx context.Context, question string) (domain.Intent, float64)
}

// KeywordClassifier scores intents by weighted keyword hits.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// intentKeywords is the single source of truth for keyword scoring. Weights
// favor distinctive phrasing over generic analysis words.
var intentKeywords = map[domain.Intent][]weightedKeyword{
	domain.IntentCorrelation: {
		{"correlation", 1.0}, {"correlate", 1.0}, {"relationship between", 0.9},
		{"associated with", 0.8}, {"linked to", 0.7}, {"between", 0.3},
	},
	domain.IntentTemporal: {
		{"over time", 1.0}, {"trend", 0.9}, {"trajectory", 0.9},
		{"change", 0.5}, {"progression", 0.8}, {"longitudinal", 1.0},
	},
	domain.IntentComparative: {
		{"compare", 1.0}, {"comparison", 1.0}, {"difference between", 0.9},
		{"versus", 0.9}, {" vs ", 0.9}, {"more effective", 0.7},
	},
	domain.IntentPredictive: {
		{"predict", 1.0}, {"forecast", 1.0}, {"likelihood", 0.8},
		{"risk of", 0.8}, {"probability", 0.7},
	},
}

type weightedKeyword struct {
	phrase string
	weight float64
}

func (c *KeywordClassifier) Classify(_ context.Context, question string) (domain.Intent, float64) {
	q := strings.ToLower(question)

	best := domain.IntentUnknown
	var bestScore float64
	for intent, keywords := range intentKeywords {
		var score float64
		for _, kw := range keywords {
			if strings.Contains(q, kw.phrase) {
				score += kw.weight
			}
		}
		if score > bestScore {
			best = intent
			bestScore = score
		}
	}

	if bestScore == 0 {
		return domain.IntentUnknown, 0
	}
	// Normalize into (0,1]; a single strong keyword lands around 0.5.
	confidence := bestScore / (bestScore + 1)
	return best, confidence
}
