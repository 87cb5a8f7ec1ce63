package aggregation

import (
	"strings"
	"time"

	"timeframe-chart/internal/domain"
)

// InvalidDateKey is the bucket key of a sample whose timestamp cannot be parsed.
// All such samples share this one bucket.
const InvalidDateKey = "Invalid Date"

// Bucket key layouts (UTC).
const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseTimestamp parses an ISO-8601 style timestamp and returns it in UTC.
// The boolean is false when no supported layout matches.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// BucketKey derives the bucket key of a timestamp under g.
//
//	weekly:  YYYY-MM-DD of the UTC date
//	monthly: YYYY-MM of the UTC date
//
// For raw the timestamp itself is the key. Unparseable timestamps map to
// InvalidDateKey under the bucketed granularities.
func BucketKey(timestamp string, g domain.Granularity) string {
	if !g.IsBucketed() {
		return timestamp
	}
	t, ok := ParseTimestamp(timestamp)
	if !ok {
		return InvalidDateKey
	}
	if g == domain.GranularityMonthly {
		return t.Format(monthKeyLayout)
	}
	return t.Format(dayKeyLayout)
}
