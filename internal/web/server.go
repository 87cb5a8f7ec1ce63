// Package web serves the chart page, its JSON API, image exports and live
// view updates over WebSocket.
package web

import (
	"context"
	"embed"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"timeframe-chart/internal/chartstate"
	"timeframe-chart/internal/domain"
	"timeframe-chart/internal/observability"
	"timeframe-chart/internal/render"
	"timeframe-chart/internal/source"
)

//go:embed static/index.html
var staticFS embed.FS

// Loader reloads the series on request.
type Loader interface {
	Reload(ctx context.Context) error
	Status() source.LoaderStatus
}

// Options configures Server.
type Options struct {
	Addr            string
	Store           *chartstate.Store
	Loader          Loader
	Renderer        render.Renderer
	Logger          *log.Logger
	ShutdownTimeout time.Duration
}

// Server is the chart HTTP server.
type Server struct {
	web      *http.Server
	keeper   *keeper
	store    *chartstate.Store
	loader   Loader
	renderer render.Renderer
	logger   *log.Logger
	upgrader websocket.Upgrader

	shutdownTimeout time.Duration
	started         time.Time
}

// New creates a server and subscribes it to store updates.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[web] ", log.LstdFlags|log.Lshortfile)
	}
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &Server{
		web: &http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		keeper:          newKeeper(),
		store:           opts.Store,
		loader:          opts.Loader,
		renderer:        opts.Renderer,
		logger:          logger,
		shutdownTimeout: timeout,
		started:         time.Now(),
	}
	s.web.Handler = s.router()

	s.store.Subscribe(func(a chartstate.Action, st chartstate.State) {
		if _, ok := a.(chartstate.DataLoaded); ok {
			s.broadcast(st)
		}
	})

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.web.Handler
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	closed := make(chan error, 1)

	go func() {
		s.logger.Printf("Starting HTTP server on %s", s.web.Addr)
		closed <- s.web.ListenAndServe()
	}()

	select {
	case err := <-closed:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.keeper.closeAll()
		if err := s.web.Shutdown(shutdownCtx); err != nil {
			s.logger.Printf("HTTP server shutdown error: %v", err)
		}
		return ctx.Err()
	}
}

// broadcast pushes the view for each client's granularity.
func (s *Server) broadcast(st chartstate.State) {
	failed := s.keeper.walk(func(c *client, g domain.Granularity) error {
		st.Granularity = g
		return s.pushView(c, st)
	})
	for _, conn := range failed {
		s.keeper.close(conn)
	}
}

func (s *Server) pushView(c *client, st chartstate.State) error {
	view := viewOf(st)
	err := c.writeJSON(ViewMessage{
		Type:        MessageTypeView,
		Granularity: st.Granularity,
		Points:      view,
		Messages:    describe(view),
	})
	if err != nil {
		return err
	}
	observability.RecordWSMessage()
	return nil
}

// describe returns the point-click text of every point in view.
func describe(view domain.Series) []string {
	messages := make([]string, len(view))
	for i, p := range view {
		messages[i] = chartstate.Describe(p)
	}
	return messages
}

// viewOf aggregates st and records the aggregation.
func viewOf(st chartstate.State) domain.Series {
	view := st.View()
	if view == nil {
		view = domain.Series{}
	}
	observability.RecordAggregation(st.Granularity.String(), len(view))
	return view
}
