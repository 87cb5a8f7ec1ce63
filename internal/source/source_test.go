package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeframe-chart/internal/domain"
	"timeframe-chart/internal/storage"
	"timeframe-chart/internal/storage/memory"
)

const sampleJSON = `[
	{"timestamp": "2024-01-15T10:00:00Z", "value": 10},
	{"timestamp": "2024-01-20T10:00:00Z", "value": 5, "extra": "ignored"},
	{"timestamp": "2024-02-03T00:00:00Z", "value": 7.5}
]`

func TestHTTPSource_Fetch(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL, "", WithHTTPClient(server.Client()))
	require.NoError(t, err)
	assert.Equal(t, "http", src.Name())

	series, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DefaultDataPath, gotPath)
	require.Len(t, series, 3)
	assert.Equal(t, domain.Sample{Timestamp: "2024-01-20T10:00:00Z", Value: 5}, series[1])
	assert.Equal(t, 7.5, series[2].Value)
}

func TestHTTPSource_CustomPath(t *testing.T) {
	src, err := NewHTTPSource("http://example.test/base/", "series/data.json")
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/base/series/data.json", src.URL())

	src, err = NewHTTPSource("http://example.test/base/", "/data.json")
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/data.json", src.URL())
}

func TestHTTPSource_InvalidURL(t *testing.T) {
	_, err := NewHTTPSource("ftp://example.test", "")
	assert.Error(t, err)
}

func TestHTTPSource_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL, "")
	require.NoError(t, err)

	_, err = src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestHTTPSource_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL, "")
	require.NoError(t, err)

	_, err = src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestHTTPSource_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	src := NewFileSource(path)
	series, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, series, 3)
	assert.Equal(t, "file", src.Name())
}

func TestFileSource_Missing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.json"))
	_, err := src.Fetch(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStoreSource_Fetch(t *testing.T) {
	store := memory.NewSeriesStore()
	require.NoError(t, store.Put("prices", domain.Series{
		{Timestamp: "2024-01-01", Value: 1},
		{Timestamp: "2024-02-01", Value: 2},
	}))

	src := NewStoreSource(store, "prices", "memory")
	series, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, series, 2)
	assert.Equal(t, "memory", src.Name())

	ranged, err := NewStoreSource(store, "prices", "memory").
		WithTimeRange("2024-02", "").
		Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, 2.0, ranged[0].Value)

	_, err = NewStoreSource(store, "", "memory").Fetch(context.Background())
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestDecode(t *testing.T) {
	series, err := Decode(strings.NewReader("null"))
	require.NoError(t, err)
	assert.NotNil(t, series)
	assert.Empty(t, series)

	series, err = Decode(strings.NewReader(`[{"timestamp": "2024-01-01"}]`))
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 0.0, series[0].Value)

	_, err = Decode(strings.NewReader(`[{"timestamp": 12}]`))
	assert.Error(t, err)
}

func TestDemoSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	series := DemoSeries(start, 60)

	require.Len(t, series, 60)
	assert.Equal(t, "2024-01-01T00:00:00Z", series[0].Timestamp)
	assert.Equal(t, "2024-02-29T00:00:00Z", series[59].Timestamp)
	assert.Equal(t, series, DemoSeries(start, 60), "demo data is deterministic")
}
