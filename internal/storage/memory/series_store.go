package memory

import (
	"context"
	"sort"
	"sync"

	"timeframe-chart/internal/domain"
	"timeframe-chart/internal/storage"
)

// SeriesStore is an in-memory implementation of storage.SeriesStore.
type SeriesStore struct {
	mu   sync.RWMutex
	data map[string]domain.Series // keyed by series_id
}

// NewSeriesStore creates a new in-memory series store.
func NewSeriesStore() *SeriesStore {
	return &SeriesStore{
		data: make(map[string]domain.Series),
	}
}

// Put replaces the samples of a series. An empty series removes it.
func (s *SeriesStore) Put(seriesID string, series domain.Series) error {
	if seriesID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(series) == 0 {
		delete(s.data, seriesID)
		return nil
	}
	s.data[seriesID] = series.Clone()
	return nil
}

// GetSeries retrieves all samples of a series in insertion order.
func (s *SeriesStore) GetSeries(_ context.Context, seriesID string) (domain.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.data[seriesID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return series.Clone(), nil
}

// GetByTimeRange retrieves samples with from <= timestamp <= to in insertion order.
func (s *SeriesStore) GetByTimeRange(_ context.Context, seriesID, from, to string) (domain.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := domain.Series{}
	for _, sample := range s.data[seriesID] {
		if storage.InRange(sample.Timestamp, from, to) {
			result = append(result, sample)
		}
	}
	return result, nil
}

// ListSeries returns the IDs of all stored series, sorted ascending.
func (s *SeriesStore) ListSeries(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var _ storage.SeriesStore = (*SeriesStore)(nil)
