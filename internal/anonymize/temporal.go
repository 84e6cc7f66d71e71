package anonymize

import (
	"math/rand"
	"time"
)

// obfuscateTimestamps shifts each configured timestamp field by a bounded
// random jitter, then truncates to the policy granularity. With seasonal
// masking the exact date is replaced by a season bucket.
func obfuscateTimestamps(rng *rand.Rand, rows []map[string]any, policy Policy) {
	maxJitter := time.Duration(policy.JitterHours) * time.Hour
	for _, row := range rows {
		for _, field := range policy.TimestampFields {
			ts, ok := parseTimestamp(row[field])
			if !ok {
				continue
			}
			if maxJitter > 0 {
				jitter := time.Duration(rng.Int63n(int64(2*maxJitter))) - maxJitter
				ts = ts.Add(jitter)
			}
			if policy.SeasonalMasking {
				row[field] = seasonBucket(ts)
				continue
			}
			row[field] = truncate(ts, policy.DateGranularity).Format("2006-01-02")
		}
	}
}

func parseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func truncate(ts time.Time, granularity DateGranularity) time.Time {
	switch granularity {
	case GranularityMonth:
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, ts.Location())
	case GranularityWeek:
		// Back up to Monday.
		weekday := int(ts.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		day := ts.AddDate(0, 0, -(weekday - 1))
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, ts.Location())
	default:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	}
}

// seasonBucket maps a date to a coarse season label, e.g. "2026-spring".
func seasonBucket(ts time.Time) string {
	var season string
	switch ts.Month() {
	case time.December, time.January, time.February:
		season = "winter"
	case time.March, time.April, time.May:
		season = "spring"
	case time.June, time.July, time.August:
		season = "summer"
	default:
		season = "autumn"
	}
	year := ts.Year()
	if ts.Month() == time.December {
		year++
	}
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006") + "-" + season
}
