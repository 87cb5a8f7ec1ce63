package source

import (
	"math"
	"time"

	"timeframe-chart/internal/domain"
)

// DemoSeries returns a deterministic daily series of n samples starting at start.
// It seeds the in-memory store when no data file is configured.
func DemoSeries(start time.Time, n int) domain.Series {
	series := make(domain.Series, 0, n)
	day := start.UTC().Truncate(24 * time.Hour)
	for i := 0; i < n; i++ {
		v := 100 + 25*math.Sin(float64(i)/7) + float64(i%5)
		series = append(series, domain.Sample{
			Timestamp: day.AddDate(0, 0, i).Format(time.RFC3339),
			Value:     math.Round(v*100) / 100,
		})
	}
	return series
}
