// Package chartstate holds the chart's view state and its transitions.
//
// State is a plain value. Transitions go through Reduce, which never mutates
// its input, so callers decide where state lives and who may update it.
package chartstate

import (
	"fmt"

	"timeframe-chart/internal/aggregation"
	"timeframe-chart/internal/domain"
)

// State is the data and selection behind one rendered chart.
type State struct {
	Data        domain.Series
	Granularity domain.Granularity
}

// Action is a state transition request.
type Action interface {
	isAction()
}

// DataLoaded replaces the raw series with a freshly fetched one.
type DataLoaded struct {
	Series domain.Series
}

// FetchFailed records that a fetch did not produce data.
// The chart keeps whatever data was last set.
type FetchFailed struct {
	Err error
}

// GranularitySelected changes the aggregation policy.
type GranularitySelected struct {
	Granularity domain.Granularity
}

func (DataLoaded) isAction()          {}
func (FetchFailed) isAction()         {}
func (GranularitySelected) isAction() {}

// New returns the initial state: no data, raw granularity.
func New() State {
	return State{Granularity: domain.GranularityRaw}
}

// Reduce applies a to s and returns the resulting state.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case DataLoaded:
		s.Data = act.Series.Clone()
	case GranularitySelected:
		if act.Granularity.IsValid() {
			s.Granularity = act.Granularity
		}
	case FetchFailed:
		// data stays as last set
	}
	return s
}

// View returns the series as it should be drawn.
func (s State) View() domain.Series {
	return aggregation.Aggregate(s.Data, s.Granularity)
}

// Point returns the i-th point of the view.
func (s State) Point(i int) (domain.Sample, bool) {
	view := s.View()
	if i < 0 || i >= len(view) {
		return domain.Sample{}, false
	}
	return view[i], true
}

// Describe renders the notification shown when a point is clicked.
func Describe(p domain.Sample) string {
	return fmt.Sprintf("Timestamp: %s\nValue: %s", p.Timestamp, domain.FormatValue(p.Value))
}
