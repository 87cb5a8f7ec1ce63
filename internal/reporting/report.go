package reporting

import (
	"time"

	"timeframe-chart/internal/domain"
)

// Report summarizes one aggregated view of a series.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Granularity domain.Granularity

	// Data Summary
	DataSummary DataSummary

	// Data Quality
	DataQuality DataQualitySection

	// Aggregated points in first-occurrence order
	Points domain.Series
}

// DataSummary describes the input and the produced view.
type DataSummary struct {
	InputSamples   int
	Buckets        int
	Total          float64 // exact decimal sum of the input values
	FirstTimestamp string  // as delivered, not sorted
	LastTimestamp  string
}

// DataQualitySection lists checks on the raw input.
type DataQualitySection struct {
	Checks          []QualityCheckRow
	AllChecksPassed bool
}

// QualityCheckRow represents one input check.
type QualityCheckRow struct {
	Name   string
	Actual string
	Pass   bool
}
