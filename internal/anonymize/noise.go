package anonymize

import (
	"math"
	"math/rand"
)

// laplace draws one sample from the Laplace distribution with scale b via
// inverse CDF sampling.
func laplace(rng *rand.Rand, b float64) float64 {
	u := rng.Float64() - 0.5
	return -b * sign(u) * math.Log(1-2*math.Abs(u))
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// injectNoise adds Laplace noise scaled by sensitivity/epsilon to every
// configured numeric field. Non-numeric values in those fields are left
// untouched.
func injectNoise(rng *rand.Rand, rows []map[string]any, fields []string, sensitivity, epsilon float64) {
	if epsilon <= 0 {
		return
	}
	b := sensitivity / epsilon
	for _, row := range rows {
		for _, field := range fields {
			switch v := row[field].(type) {
			case float64:
				row[field] = v + laplace(rng, b)
			case int:
				row[field] = float64(v) + laplace(rng, b)
			case int64:
				row[field] = float64(v) + laplace(rng, b)
			}
		}
	}
}
