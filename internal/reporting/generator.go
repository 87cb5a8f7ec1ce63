package reporting

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"timeframe-chart/internal/aggregation"
	"timeframe-chart/internal/domain"
)

// Generator builds reports from raw series.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Generate aggregates input at granularity g and summarizes the result.
func (g *Generator) Generate(input domain.Series, gran domain.Granularity) *Report {
	points := aggregation.Aggregate(input, gran)

	r := &Report{
		GeneratedAt: g.now().UTC(),
		Granularity: gran,
		Points:      points,
		DataSummary: DataSummary{
			InputSamples: len(input),
			Buckets:      len(points),
			Total:        exactTotal(input),
		},
	}
	if len(input) > 0 {
		r.DataSummary.FirstTimestamp = input[0].Timestamp
		r.DataSummary.LastTimestamp = input[len(input)-1].Timestamp
	}

	r.DataQuality = checkQuality(input)
	return r
}

func exactTotal(series domain.Series) float64 {
	sum := decimal.Zero
	special := 0.0
	for _, s := range series {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			special += s.Value
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(s.Value))
	}
	return sum.InexactFloat64() + special
}

func checkQuality(input domain.Series) DataQualitySection {
	var unparseable, nonFinite int
	for _, s := range input {
		if _, ok := aggregation.ParseTimestamp(s.Timestamp); !ok {
			unparseable++
		}
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			nonFinite++
		}
	}

	checks := []QualityCheckRow{
		{
			Name:   "Parseable timestamps",
			Actual: fmt.Sprintf("%d/%d", len(input)-unparseable, len(input)),
			Pass:   unparseable == 0,
		},
		{
			Name:   "Finite values",
			Actual: fmt.Sprintf("%d/%d", len(input)-nonFinite, len(input)),
			Pass:   nonFinite == 0,
		},
	}

	all := true
	for _, c := range checks {
		all = all && c.Pass
	}
	return DataQualitySection{Checks: checks, AllChecksPassed: all}
}
