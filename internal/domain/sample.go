package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// Sample is one timestamped numeric observation as delivered by the data source.
// Timestamp is kept verbatim; it is parsed only when a bucket key is derived.
type Sample struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// MarshalJSON encodes a NaN or infinite value as null, which decodes back to 0.
func (s Sample) MarshalJSON() ([]byte, error) {
	type wire struct {
		Timestamp string   `json:"timestamp"`
		Value     *float64 `json:"value"`
	}
	w := wire{Timestamp: s.Timestamp}
	if !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0) {
		w.Value = &s.Value
	}
	return json.Marshal(w)
}

// Series is an ordered sequence of samples in the order they were received.
// It is not guaranteed to be sorted by timestamp.
type Series []Sample

// Len returns the number of samples.
func (s Series) Len() int {
	return len(s)
}

// Clone returns a copy that shares no backing array with s.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Total returns the plain float64 sum of all values.
func (s Series) Total() float64 {
	var total float64
	for _, p := range s {
		total += p.Value
	}
	return total
}

// FormatValue renders a value the way a browser prints a number:
// shortest representation, no trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
