// Package render draws an aggregated view as a line chart surface.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"timeframe-chart/internal/domain"
)

// ErrNoSurface is returned when there is nothing to draw.
var ErrNoSurface = errors.New("no chart surface")

const (
	// DefaultWidth and DefaultHeight size the surface when the renderer leaves them zero.
	DefaultWidth  = 800
	DefaultHeight = 400

	// SeriesName labels the plotted line in the legend.
	SeriesName = "value"

	minTickSpacing = 80 // pixels per x label

	// plotLimit bounds plotted magnitudes so the padded y span stays finite.
	plotLimit = math.MaxFloat64 / 4
)

var (
	lineColor = drawing.ColorFromHex("8884d8")
	gridColor = drawing.ColorFromHex("cccccc")
	gridDash  = []float64{3, 3}
)

// Renderer builds chart surfaces of a fixed size.
type Renderer struct {
	Width  int
	Height int
	Title  string
}

// Surface is a rendered chart ready to be encoded.
type Surface struct {
	chart  *chart.Chart
	points domain.Series
}

// Points returns the view the surface was drawn from.
func (s *Surface) Points() domain.Series {
	return s.points.Clone()
}

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() (width, height int) {
	return s.chart.Width, s.chart.Height
}

// SVG writes the surface as SVG.
func (s *Surface) SVG(w io.Writer) error {
	if err := s.chart.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return nil
}

// PNG writes the surface as PNG.
func (s *Surface) PNG(w io.Writer) error {
	if err := s.chart.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

// Image rasterizes the surface.
func (s *Surface) Image() (image.Image, error) {
	var buf bytes.Buffer
	if err := s.PNG(&buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode rendered png: %w", err)
	}
	return img, nil
}

// Render builds a surface for view. Points are placed at their index on the
// x axis and labelled with their timestamp or bucket key.
// Returns ErrNoSurface if view has no finite values.
func (r Renderer) Render(view domain.Series) (*Surface, error) {
	width, height := r.Width, r.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	xs := make([]float64, 0, len(view))
	ys := make([]float64, 0, len(view))
	for i, p := range view {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, math.Max(-plotLimit, math.Min(plotLimit, p.Value)))
	}
	if len(xs) == 0 {
		return nil, ErrNoSurface
	}

	grid := chart.Style{
		StrokeColor:     gridColor,
		StrokeWidth:     1,
		StrokeDashArray: gridDash,
	}

	ch := &chart.Chart{
		Title:      r.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Ticks:          axisTicks(view, width),
			Range:          &chart.ContinuousRange{Min: -0.5, Max: float64(len(view)) - 0.5},
			GridMajorStyle: grid,
		},
		YAxis: chart.YAxis{
			Range:          yRange(ys),
			ValueFormatter: yLabel,
			GridMajorStyle: grid,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: SeriesName,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					DotColor:    lineColor,
					DotWidth:    3,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}

	return &Surface{chart: ch, points: view.Clone()}, nil
}

// axisTicks brackets the labelled ticks with unlabelled ones at the axis ends.
// go-chart takes the x range from the tick extent, so a single label would
// otherwise collapse the range to zero width.
func axisTicks(view domain.Series, width int) []chart.Tick {
	labelled := xTicks(view, width)
	ticks := make([]chart.Tick, 0, len(labelled)+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	ticks = append(ticks, labelled...)
	return append(ticks, chart.Tick{Value: float64(len(view)) - 0.5})
}

// xTicks labels every point while there is room and thins labels out otherwise.
func xTicks(view domain.Series, width int) []chart.Tick {
	n := len(view)
	maxTicks := width / minTickSpacing
	if maxTicks < 1 {
		maxTicks = 1
	}
	step := (n + maxTicks - 1) / maxTicks
	if step < 1 {
		step = 1
	}

	ticks := make([]chart.Tick, 0, n/step+1)
	for i := 0; i < n; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: view[i].Timestamp})
	}
	return ticks
}

// yRange pads the value extent so flat and single-point series keep a non-zero span.
func yRange(ys []float64) *chart.ContinuousRange {
	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}

	if hi == lo {
		pad := math.Abs(hi) * 0.1
		if pad == 0 {
			pad = 1
		}
		return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}

	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// yLabel keeps large tick labels short.
func yLabel(v interface{}) string {
	if f, ok := v.(float64); ok && math.Abs(f) >= 1e9 {
		return strconv.FormatFloat(f, 'g', 4, 64)
	}
	return chart.FloatValueFormatter(v)
}
