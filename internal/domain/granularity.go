package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownGranularity is returned when a granularity name is not one of
// "daily", "weekly" or "monthly".
var ErrUnknownGranularity = errors.New("unknown granularity")

// Granularity selects how samples are grouped into buckets.
type Granularity uint8

const (
	// GranularityRaw keeps the series as received ("daily" in the selector).
	GranularityRaw Granularity = iota
	// GranularityWeekly truncates timestamps to the UTC calendar day.
	// The name follows the selector label; the bucket is a day, not an ISO week.
	GranularityWeekly
	// GranularityMonthly truncates timestamps to the UTC year-month.
	GranularityMonthly
)

// Wire names exposed by the selector.
const (
	granularityDaily   = "daily"
	granularityWeekly  = "weekly"
	granularityMonthly = "monthly"
)

// Granularities lists every granularity in selector order.
func Granularities() []Granularity {
	return []Granularity{GranularityRaw, GranularityWeekly, GranularityMonthly}
}

// ParseGranularity maps a selector value to a Granularity.
// An empty string selects the default (raw).
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", granularityDaily:
		return GranularityRaw, nil
	case granularityWeekly:
		return GranularityWeekly, nil
	case granularityMonthly:
		return GranularityMonthly, nil
	default:
		return GranularityRaw, fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// String returns the selector name.
func (g Granularity) String() string {
	switch g {
	case GranularityRaw:
		return granularityDaily
	case GranularityWeekly:
		return granularityWeekly
	case GranularityMonthly:
		return granularityMonthly
	default:
		return fmt.Sprintf("granularity(%d)", uint8(g))
	}
}

// Label returns the human-readable selector label.
func (g Granularity) Label() string {
	switch g {
	case GranularityWeekly:
		return "Weekly"
	case GranularityMonthly:
		return "Monthly"
	default:
		return "Daily"
	}
}

// IsValid checks if g is one of the defined values.
func (g Granularity) IsValid() bool {
	return g <= GranularityMonthly
}

// IsBucketed reports whether samples are grouped under g.
func (g Granularity) IsBucketed() bool {
	return g == GranularityWeekly || g == GranularityMonthly
}

// MarshalText implements encoding.TextMarshaler.
func (g Granularity) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGranularity, uint8(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Granularity) UnmarshalText(text []byte) error {
	parsed, err := ParseGranularity(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
