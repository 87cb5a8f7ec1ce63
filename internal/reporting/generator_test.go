package reporting

import (
	"math"
	"strings"
	"testing"
	"time"

	"timeframe-chart/internal/domain"
)

func fixedGenerator() *Generator {
	return &Generator{now: func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}}
}

func input() domain.Series {
	return domain.Series{
		{Timestamp: "2024-01-15T10:00:00Z", Value: 0.1},
		{Timestamp: "2024-01-20T10:00:00Z", Value: 0.2},
		{Timestamp: "2024-02-03T00:00:00Z", Value: 7},
	}
}

func TestGenerate_Monthly(t *testing.T) {
	r := fixedGenerator().Generate(input(), domain.GranularityMonthly)

	if r.DataSummary.InputSamples != 3 {
		t.Errorf("Expected 3 input samples, got %d", r.DataSummary.InputSamples)
	}
	if r.DataSummary.Buckets != 2 {
		t.Errorf("Expected 2 buckets, got %d", r.DataSummary.Buckets)
	}
	if r.DataSummary.Total != 7.3 {
		t.Errorf("Expected exact total 7.3, got %v", r.DataSummary.Total)
	}
	if r.Points[0].Timestamp != "2024-01" || r.Points[0].Value != 0.3 {
		t.Errorf("Unexpected first point: %+v", r.Points[0])
	}
	if !r.DataQuality.AllChecksPassed {
		t.Errorf("Expected all checks to pass: %+v", r.DataQuality.Checks)
	}
	if r.DataSummary.FirstTimestamp != "2024-01-15T10:00:00Z" || r.DataSummary.LastTimestamp != "2024-02-03T00:00:00Z" {
		t.Errorf("Unexpected timestamp range: %+v", r.DataSummary)
	}
}

func TestGenerate_QualityFailures(t *testing.T) {
	in := domain.Series{
		{Timestamp: "garbage", Value: 1},
		{Timestamp: "2024-01-01", Value: math.Inf(1)},
	}
	r := fixedGenerator().Generate(in, domain.GranularityRaw)

	if r.DataQuality.AllChecksPassed {
		t.Fatal("Expected quality checks to fail")
	}
	for _, c := range r.DataQuality.Checks {
		if c.Pass {
			t.Errorf("Expected check %q to fail", c.Name)
		}
		if c.Actual != "1/2" {
			t.Errorf("Expected 1/2 for %q, got %s", c.Name, c.Actual)
		}
	}
}

func TestGenerate_Empty(t *testing.T) {
	r := fixedGenerator().Generate(nil, domain.GranularityWeekly)

	if r.DataSummary.Buckets != 0 || r.DataSummary.Total != 0 {
		t.Errorf("Unexpected summary for empty input: %+v", r.DataSummary)
	}
	if r.DataSummary.FirstTimestamp != "" {
		t.Errorf("Expected no first timestamp, got %q", r.DataSummary.FirstTimestamp)
	}
}

func TestRenderCSV(t *testing.T) {
	got := RenderCSV(domain.Series{
		{Timestamp: "2024-01", Value: 15},
		{Timestamp: "odd, stamp", Value: 0.5},
	})

	want := "timestamp,value\n2024-01,15\n\"odd, stamp\",0.5\n"
	if got != want {
		t.Errorf("RenderCSV mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestRenderMarkdown(t *testing.T) {
	r := fixedGenerator().Generate(input(), domain.GranularityMonthly)
	md := RenderMarkdown(r)

	for _, want := range []string{
		"# Series Report",
		"Generated: 2024-06-01T12:00:00Z",
		"Granularity: Monthly",
		"| Input Samples | 3 |",
		"| Total | 7.3 |",
		"| 2024-01 | 0.3 |",
		"| 2024-02 | 7 |",
		"**All checks passed.**",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q\n%s", want, md)
		}
	}
}

func TestRenderMarkdown_NoPoints(t *testing.T) {
	md := RenderMarkdown(fixedGenerator().Generate(domain.Series{}, domain.GranularityRaw))
	if !strings.Contains(md, "No points available.") {
		t.Errorf("Expected empty points notice\n%s", md)
	}
}

func TestEscapeCell(t *testing.T) {
	if got := escapeCell("a|b"); got != `a\|b` {
		t.Errorf("escapeCell = %q", got)
	}
}
