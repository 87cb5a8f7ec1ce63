package aggregation

import (
	"testing"

	"timeframe-chart/internal/domain"
)

func TestBucketKey(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		g         domain.Granularity
		want      string
	}{
		{"utc datetime daily truncation", "2024-01-01T10:00:00Z", domain.GranularityWeekly, "2024-01-01"},
		{"offset shifts day", "2024-01-01T23:30:00-02:00", domain.GranularityWeekly, "2024-01-02"},
		{"offset shifts month", "2024-02-01T00:30:00+01:00", domain.GranularityMonthly, "2024-01"},
		{"fractional seconds", "2024-03-15T08:00:00.123Z", domain.GranularityWeekly, "2024-03-15"},
		{"date only", "2024-01-05", domain.GranularityWeekly, "2024-01-05"},
		{"date only monthly", "2024-01-05", domain.GranularityMonthly, "2024-01"},
		{"no zone read as utc", "2024-06-30T23:59:59", domain.GranularityMonthly, "2024-06"},
		{"minutes precision", "2024-06-30T23:59", domain.GranularityWeekly, "2024-06-30"},
		{"space separator", "2024-06-30 12:00:00", domain.GranularityWeekly, "2024-06-30"},
		{"year month", "2024-02", domain.GranularityMonthly, "2024-02"},
		{"year month weekly", "2024-02", domain.GranularityWeekly, "2024-02-01"},
		{"year only", "2024", domain.GranularityMonthly, "2024-01"},
		{"garbage", "not a date", domain.GranularityWeekly, InvalidDateKey},
		{"empty", "", domain.GranularityMonthly, InvalidDateKey},
		{"out of range day", "2024-02-30", domain.GranularityWeekly, InvalidDateKey},
		{"raw keeps timestamp", "whatever", domain.GranularityRaw, "whatever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BucketKey(tt.timestamp, tt.g)
			if got != tt.want {
				t.Errorf("BucketKey(%q, %v) = %q, want %q", tt.timestamp, tt.g, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp_UTC(t *testing.T) {
	ts, ok := ParseTimestamp("2024-01-01T10:00:00+05:00")
	if !ok {
		t.Fatal("Expected timestamp to parse")
	}
	if ts.Location().String() != "UTC" {
		t.Errorf("Expected UTC location, got %s", ts.Location())
	}
	if ts.Hour() != 5 {
		t.Errorf("Expected hour 5 UTC, got %d", ts.Hour())
	}
}
