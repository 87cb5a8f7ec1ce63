package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"timeframe-chart/internal/chartstate"
	"timeframe-chart/internal/domain"
	"timeframe-chart/internal/export"
	"timeframe-chart/internal/idhash"
	"timeframe-chart/internal/render"
	"timeframe-chart/internal/source"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleData serves the raw series as loaded.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	data := s.store.Snapshot().Data
	if data == nil {
		data = domain.Series{}
	}
	if notModified(w, r, idhash.ETag(data, domain.GranularityRaw, "data")) {
		return
	}
	s.writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	st, ok := s.requestState(w, r)
	if !ok {
		return
	}
	view := viewOf(st)
	if notModified(w, r, idhash.ETag(view, st.Granularity, "json")) {
		return
	}
	s.writeJSON(w, http.StatusOK, SeriesResponse{
		Granularity: st.Granularity,
		Points:      view,
		Messages:    describe(view),
	})
}

func (s *Server) handlePoint(w http.ResponseWriter, r *http.Request) {
	st, ok := s.requestState(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid index: %w", err))
		return
	}

	p, found := st.Point(index)
	if !found {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("point %d out of range", index))
		return
	}

	s.writeJSON(w, http.StatusOK, PointResponse{
		Index:     index,
		Timestamp: p.Timestamp,
		Value:     p.Value,
		Message:   chartstate.Describe(p),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	if s.loader == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("no loader configured"))
		return
	}

	if err := s.loader.Reload(r.Context()); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"samples": len(s.store.Snapshot().Data)})
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	st, ok := s.requestState(w, r)
	if !ok {
		return
	}

	view := viewOf(st)
	surface, err := s.renderer.Render(view)
	if errors.Is(err, render.ErrNoSurface) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if notModified(w, r, idhash.ETag(view, st.Granularity, "svg")) {
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := surface.SVG(w); err != nil {
		s.logger.Printf("Error writing svg: %v", err)
	}
}

// handleExport serves the chart as a downloadable image.
// With no chart to draw it answers 204 and sends nothing.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	st, ok := s.requestState(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var opts export.Options
	if raw := q.Get("scale"); raw != "" {
		opts.Scale, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid scale: %w", err))
			return
		}
	}

	view := viewOf(st)
	surface, err := s.renderer.Render(view)
	if err != nil && !errors.Is(err, render.ErrNoSurface) {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	res, err := export.Export(surface, format, opts)
	switch {
	case errors.Is(err, export.ErrNoSurface):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, export.ErrInvalidScale):
		s.writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		s.logger.Printf("Error exporting chart: %v", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("ETag", idhash.ETag(view, st.Granularity, fmt.Sprintf("%s-%dx%d", format, res.Width, res.Height)))
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Write(res.Data)
}

// handleWS upgrades the connection and pushes views.
// The client selects a granularity by sending its name as a text message.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	st, ok := s.requestState(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := s.keeper.addConn(conn, st.Granularity)
	if err := s.pushView(c, st); err != nil {
		s.keeper.close(conn)
		return
	}

	go s.keeper.keep(c, s.onClientMessage)
}

func (s *Server) onClientMessage(c *client, text string) {
	g, err := domain.ParseGranularity(text)
	if err != nil {
		_ = c.writeJSON(ErrorMessage{Type: MessageTypeError, Error: err.Error()})
		return
	}

	s.keeper.setGranularity(c, g)

	st := s.store.Snapshot()
	st.Granularity = g
	if err := s.pushView(c, st); err != nil {
		s.logger.Printf("Error pushing view: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status             string               `json:"status"`
	Uptime             string               `json:"uptime"`
	Started            time.Time            `json:"started"`
	Samples            int                  `json:"samples"`
	DefaultGranularity domain.Granularity   `json:"default_granularity"`
	WSClients          int                  `json:"ws_clients"`
	Loader             *source.LoaderStatus `json:"loader,omitempty"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.store.Snapshot()

	resp := StatusResponse{
		Status:             "running",
		Uptime:             time.Since(s.started).String(),
		Started:            s.started,
		Samples:            len(st.Data),
		DefaultGranularity: st.Granularity,
		WSClients:          s.keeper.count(),
	}
	if s.loader != nil {
		ls := s.loader.Status()
		resp.Loader = &ls
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// requestState returns the current state with the granularity the request asks for.
// An absent granularity keeps the server default; an unknown one is a 400.
func (s *Server) requestState(w http.ResponseWriter, r *http.Request) (chartstate.State, bool) {
	st := s.store.Snapshot()

	raw := r.URL.Query().Get("granularity")
	if raw == "" {
		return st, true
	}

	g, err := domain.ParseGranularity(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return st, false
	}
	return chartstate.Reduce(st, chartstate.GranularitySelected{Granularity: g}), true
}

// notModified sets the ETag header and answers 304 when the client already has it.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	js, err := json.Marshal(v)
	if err != nil {
		s.logger.Printf("Error encoding response: %v", err)
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(js)
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, ErrorResponse{Error: err.Error()})
}
