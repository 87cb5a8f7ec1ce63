package storage

import (
	"context"

	"timeframe-chart/internal/domain"
)

// DefaultSeriesID names the series served when none is requested.
const DefaultSeriesID = "default"

// SeriesStore provides read access to stored sample series.
// Stores never reorder samples: a series comes back in insertion order.
type SeriesStore interface {
	// GetSeries retrieves all samples of a series in insertion order.
	// Returns ErrNotFound if the series has no samples.
	GetSeries(ctx context.Context, seriesID string) (domain.Series, error)

	// ListSeries returns the IDs of all stored series, sorted ascending.
	ListSeries(ctx context.Context) ([]string, error)

	// GetByTimeRange retrieves samples whose raw timestamp string lies in
	// [from, to] (inclusive, lexical comparison), in insertion order.
	// An empty bound is open. Returns an empty series if nothing matches.
	GetByTimeRange(ctx context.Context, seriesID, from, to string) (domain.Series, error)
}

// InRange reports whether timestamp lies in the lexical range [from, to].
// An empty bound is open.
func InRange(timestamp, from, to string) bool {
	if from != "" && timestamp < from {
		return false
	}
	if to != "" && timestamp > to {
		return false
	}
	return true
}
