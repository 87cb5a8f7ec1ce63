package web

import "timeframe-chart/internal/domain"

// Message types pushed over the WebSocket.
const (
	MessageTypeView  = "view"
	MessageTypeError = "error"
)

// ViewMessage carries the aggregated view for one granularity.
// Messages[i] is the point-click text of Points[i].
type ViewMessage struct {
	Type        string             `json:"type"`
	Granularity domain.Granularity `json:"granularity"`
	Points      domain.Series      `json:"points"`
	Messages    []string           `json:"messages"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// SeriesResponse is the JSON body of /api/series.
type SeriesResponse struct {
	Granularity domain.Granularity `json:"granularity"`
	Points      domain.Series      `json:"points"`
	Messages    []string           `json:"messages"`
}

// PointResponse is the JSON body of /api/point.
type PointResponse struct {
	Index     int     `json:"index"`
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
	Message   string  `json:"message"`
}

// ErrorResponse is the JSON body of failed API calls.
type ErrorResponse struct {
	Error string `json:"error"`
}
