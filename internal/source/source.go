// Package source fetches the raw series from its data source.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"timeframe-chart/internal/domain"
	"timeframe-chart/internal/storage"
)

// DefaultDataPath is the path the series is served under.
const DefaultDataPath = "/data.json"

// Source fetches a raw series.
type Source interface {
	// Fetch returns the series in the order the source delivered it.
	Fetch(ctx context.Context) (domain.Series, error)
	// Name identifies the source kind in logs and metrics.
	Name() string
}

// HTTPSource fetches a JSON array of samples with a single GET.
// No retries; the request lives as long as ctx.
type HTTPSource struct {
	url    string
	client *http.Client
}

// HTTPOption configures HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// NewHTTPSource creates a source reading baseURL joined with path.
// An empty path uses DefaultDataPath.
func NewHTTPSource(baseURL, path string, opts ...HTTPOption) (*HTTPSource, error) {
	if path == "" {
		path = DefaultDataPath
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse data url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("parse data url: unsupported scheme %q", base.Scheme)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse data path: %w", err)
	}

	s := &HTTPSource{
		url:    base.ResolveReference(ref).String(),
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// URL returns the resolved request URL.
func (s *HTTPSource) URL() string {
	return s.url
}

// Name implements Source.
func (s *HTTPSource) Name() string {
	return "http"
}

// Fetch performs the GET and decodes the body.
func (s *HTTPSource) Fetch(ctx context.Context) (domain.Series, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("get %s: status %d: %s", s.url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	series, err := Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.url, err)
	}
	return series, nil
}

// FileSource reads a JSON array of samples from disk.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path on every fetch.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements Source.
func (s *FileSource) Name() string {
	return "file"
}

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) (domain.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	series, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return series, nil
}

// StoreSource reads one series from a SeriesStore.
type StoreSource struct {
	store    storage.SeriesStore
	seriesID string
	name     string
	from, to string
}

// NewStoreSource creates a source for seriesID. name labels the backing store.
func NewStoreSource(store storage.SeriesStore, seriesID, name string) *StoreSource {
	if seriesID == "" {
		seriesID = storage.DefaultSeriesID
	}
	return &StoreSource{store: store, seriesID: seriesID, name: name}
}

// WithTimeRange restricts fetches to samples whose timestamp string lies in [from, to].
func (s *StoreSource) WithTimeRange(from, to string) *StoreSource {
	s.from, s.to = from, to
	return s
}

// Name implements Source.
func (s *StoreSource) Name() string {
	return s.name
}

// Fetch reads the series from the store.
func (s *StoreSource) Fetch(ctx context.Context) (domain.Series, error) {
	if s.from != "" || s.to != "" {
		series, err := s.store.GetByTimeRange(ctx, s.seriesID, s.from, s.to)
		if err != nil {
			return nil, fmt.Errorf("get series %s in range: %w", s.seriesID, err)
		}
		return series, nil
	}

	series, err := s.store.GetSeries(ctx, s.seriesID)
	if err != nil {
		return nil, fmt.Errorf("get series %s: %w", s.seriesID, err)
	}
	return series, nil
}

// Decode reads a JSON array of samples. A JSON null decodes to an empty series.
// Fields other than timestamp and value are ignored.
func Decode(r io.Reader) (domain.Series, error) {
	var series domain.Series
	if err := json.NewDecoder(r).Decode(&series); err != nil {
		return nil, err
	}
	if series == nil {
		series = domain.Series{}
	}
	return series, nil
}
