package anonymize

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// maxGeneralization is the level at which an attribute is fully suppressed.
const maxGeneralization = 2

// generalize coarsens a quasi-identifier value. Level 0 is the exact value,
// level 1 a coarse bucket, level 2 full suppression.
func generalize(value any, level int) string {
	if level >= maxGeneralization {
		return "*"
	}
	switch v := value.(type) {
	case int:
		return generalizeNumber(float64(v), level)
	case int64:
		return generalizeNumber(float64(v), level)
	case float64:
		return generalizeNumber(v, level)
	case string:
		if level == 0 {
			return v
		}
		// Coarse string bucket: keep only the leading rune so e.g. regions
		// collapse into broad areas.
		if v == "" {
			return "*"
		}
		r, _ := utf8.DecodeRuneInString(v)
		return strings.ToUpper(string(r)) + "*"
	case nil:
		return "*"
	default:
		if level == 0 {
			return fmt.Sprintf("%v", v)
		}
		return "*"
	}
}

func generalizeNumber(v float64, level int) string {
	if level == 0 {
		return fmt.Sprintf("%g", v)
	}
	// Decade bucket.
	lo := math.Floor(v/10) * 10
	return fmt.Sprintf("%g-%g", lo, lo+9)
}

// partition groups record indexes by their generalized quasi-identifier
// tuple under the given per-attribute levels.
func partition(rows []map[string]any, quasi []string, levels []int) map[string][]int {
	groups := make(map[string][]int)
	for i, row := range rows {
		var sb strings.Builder
		for qi, attr := range quasi {
			sb.WriteString(generalize(row[attr], levels[qi]))
			sb.WriteByte('|')
		}
		key := sb.String()
		groups[key] = append(groups[key], i)
	}
	return groups
}

// enforceKAnonymity returns, per surviving record index, its equivalence
// class size, plus the final generalization levels used. Partitions smaller
// than k are first merged by generalizing one more attribute (in policy
// order) for the whole batch; records still in undersized partitions after
// every attribute is fully generalized are suppressed.
func enforceKAnonymity(rows []map[string]any, quasi []string, k int) (classSize map[int]int, levels []int) {
	levels = make([]int, len(quasi))
	classSize = make(map[int]int)
	if len(rows) == 0 {
		return classSize, levels
	}

	groups := partition(rows, quasi, levels)
	next := 0
	for smallestGroup(groups) < k && next < len(quasi)*maxGeneralization {
		attr := next % len(quasi)
		if levels[attr] < maxGeneralization {
			levels[attr]++
		}
		next++
		groups = partition(rows, quasi, levels)
	}

	for _, indexes := range groups {
		if len(indexes) < k {
			// No merge possible: suppress the whole undersized partition.
			continue
		}
		for _, i := range indexes {
			classSize[i] = len(indexes)
		}
	}
	return classSize, levels
}

func smallestGroup(groups map[string][]int) int {
	smallest := math.MaxInt
	for _, indexes := range groups {
		if len(indexes) < smallest {
			smallest = len(indexes)
		}
	}
	return smallest
}

// applyGeneralization rewrites quasi-identifier values in place using the
// final levels so output rows carry the coarsened values that satisfied k.
func applyGeneralization(rows []map[string]any, quasi []string, levels []int) {
	for _, row := range rows {
		for qi, attr := range quasi {
			if _, ok := row[attr]; ok {
				row[attr] = generalize(row[attr], levels[qi])
			}
		}
	}
}

// attributeEntropy computes the Shannon entropy of one attribute's value
// distribution across the batch.
func attributeEntropy(rows []map[string]any, attr string, level int) float64 {
	if len(rows) == 0 {
		return 0
	}
	counts := make(map[string]int)
	for _, row := range rows {
		counts[generalize(row[attr], level)]++
	}
	total := float64(len(rows))
	var h float64
	for _, c := range counts {
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}

// informationLoss measures the fraction of original quasi-identifier entropy
// removed by generalization and suppression. Suppressed fields contribute
// their full entropy to the numerator.
func informationLoss(rows []map[string]any, quasi []string, levels []int, suppressed []string) float64 {
	var before, after float64
	for qi, attr := range quasi {
		h0 := attributeEntropy(rows, attr, 0)
		before += h0
		after += attributeEntropy(rows, attr, levels[qi])
	}
	for _, attr := range suppressed {
		before += attributeEntropy(rows, attr, 0)
		// Fully suppressed: zero entropy remains.
	}
	if before == 0 {
		return 0
	}
	loss := 1 - after/before
	if loss < 0 {
		loss = 0
	}
	if loss > 1 {
		loss = 1
	}
	return loss
}
