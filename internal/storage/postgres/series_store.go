package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"timeframe-chart/internal/domain"
	"timeframe-chart/internal/storage"
)

// SeriesStore implements storage.SeriesStore using PostgreSQL.
// Rows live in the samples table; seq preserves the order samples were written.
type SeriesStore struct {
	pool *Pool
}

// NewSeriesStore creates a new SeriesStore.
func NewSeriesStore(pool *Pool) *SeriesStore {
	return &SeriesStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SeriesStore = (*SeriesStore)(nil)

// GetSeries retrieves all samples of a series ordered by seq ASC.
func (s *SeriesStore) GetSeries(ctx context.Context, seriesID string) (_ domain.Series, err error) {
	start := time.Now()
	defer func() { observe("get_series", start, err) }()

	query := `
		SELECT timestamp, value
		FROM samples
		WHERE series_id = $1
		ORDER BY seq ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("get samples by series id: %w", err)
	}
	defer rows.Close()

	series, err := scanSamples(rows)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, storage.ErrNotFound
	}
	return series, nil
}

// GetByTimeRange retrieves samples with from <= timestamp <= to ordered by seq ASC.
// Empty bounds are open.
func (s *SeriesStore) GetByTimeRange(ctx context.Context, seriesID, from, to string) (_ domain.Series, err error) {
	start := time.Now()
	defer func() { observe("get_by_time_range", start, err) }()

	query := `
		SELECT timestamp, value
		FROM samples
		WHERE series_id = $1
		  AND ($2 = '' OR timestamp >= $2)
		  AND ($3 = '' OR timestamp <= $3)
		ORDER BY seq ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, seriesID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get samples by time range: %w", err)
	}
	defer rows.Close()

	series, err := scanSamples(rows)
	if err != nil {
		return nil, err
	}
	if series == nil {
		series = domain.Series{}
	}
	return series, nil
}

// ListSeries returns the IDs of all stored series, sorted ascending.
func (s *SeriesStore) ListSeries(ctx context.Context) (_ []string, err error) {
	start := time.Now()
	defer func() { observe("list_series", start, err) }()

	rows, err := s.pool.Query(ctx, `SELECT DISTINCT series_id FROM samples ORDER BY series_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan series id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series ids: %w", err)
	}

	return ids, nil
}

// scanSamples scans multiple rows into a Series.
func scanSamples(rows pgx.Rows) (domain.Series, error) {
	var series domain.Series

	for rows.Next() {
		var sample domain.Sample

		if err := rows.Scan(&sample.Timestamp, &sample.Value); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}

		series = append(series, sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample rows: %w", err)
	}

	return series, nil
}
