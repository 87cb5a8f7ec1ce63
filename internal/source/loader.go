package source

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"timeframe-chart/internal/chartstate"
	"timeframe-chart/internal/domain"
	"timeframe-chart/internal/observability"
)

// Dispatcher receives the actions produced by a load.
type Dispatcher interface {
	Dispatch(a chartstate.Action) chartstate.State
}

// LoaderOptions configures Loader.
type LoaderOptions struct {
	Source     Source
	Dispatcher Dispatcher
	Logger     *log.Logger
}

// Loader fetches the series once per request and hands the result to the dispatcher.
// A failed fetch is logged and leaves previously loaded data in place.
type Loader struct {
	source     Source
	dispatcher Dispatcher
	logger     *log.Logger

	mu       sync.Mutex
	lastLoad time.Time
	lastErr  error
	loads    int
}

// NewLoader creates a new Loader.
func NewLoader(opts LoaderOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[loader] ", log.LstdFlags|log.Lshortfile)
	}
	return &Loader{
		source:     opts.Source,
		dispatcher: opts.Dispatcher,
		logger:     logger,
	}
}

// Load performs a single fetch and dispatches DataLoaded or FetchFailed.
// The returned error is informational; the dispatcher has already been told.
func (l *Loader) Load(ctx context.Context) (domain.Series, error) {
	start := time.Now()
	series, err := l.source.Fetch(ctx)
	observability.RecordFetch(l.source.Name(), time.Since(start).Seconds(), err)

	l.mu.Lock()
	l.lastErr = err
	if err == nil {
		l.lastLoad = time.Now()
		l.loads++
	}
	l.mu.Unlock()

	if err != nil {
		l.logger.Printf("Error fetching data from %s source: %v", l.source.Name(), err)
		l.dispatcher.Dispatch(chartstate.FetchFailed{Err: err})
		return nil, err
	}

	observability.RecordSamplesLoaded(len(series), float64(time.Now().Unix()))
	l.logger.Printf("Loaded %d samples from %s source", len(series), l.source.Name())
	l.dispatcher.Dispatch(chartstate.DataLoaded{Series: series})
	return series, nil
}

// Start runs one Load in the background and returns immediately.
// The returned channel is closed when the load finishes.
func (l *Loader) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = l.Load(ctx)
	}()
	return done
}

// Reload performs another one-shot fetch.
func (l *Loader) Reload(ctx context.Context) error {
	_, err := l.Load(ctx)
	return err
}

// LoaderStatus describes the outcome of the most recent loads.
type LoaderStatus struct {
	Source   string    `json:"source"`
	Loads    int       `json:"successful_loads"`
	LastLoad time.Time `json:"last_load,omitempty"`
	LastErr  string    `json:"last_error,omitempty"`
}

// Status returns a snapshot of loader progress.
func (l *Loader) Status() LoaderStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := LoaderStatus{
		Source:   l.source.Name(),
		Loads:    l.loads,
		LastLoad: l.lastLoad,
	}
	if l.lastErr != nil {
		st.LastErr = l.lastErr.Error()
	}
	return st
}
