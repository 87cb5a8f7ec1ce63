// Package export rasterizes chart surfaces into downloadable image files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"

	"timeframe-chart/internal/observability"
	"timeframe-chart/internal/render"
)

var (
	// ErrNoSurface is returned when there is no chart to export.
	// Callers treat it as a silent no-op.
	ErrNoSurface = render.ErrNoSurface

	// ErrUnknownFormat is returned for an unsupported image format.
	ErrUnknownFormat = errors.New("unknown export format")

	// ErrInvalidScale is returned for a scale outside (0, MaxScale].
	ErrInvalidScale = errors.New("invalid export scale")
)

const (
	// JPEGQuality is the encoder quality for jpg exports.
	JPEGQuality = 92

	// MaxScale bounds the resampling factor.
	MaxScale = 4.0

	baseName = "chart"
)

// Format is an export image format.
type Format uint8

const (
	FormatPNG Format = iota
	FormatJPG
)

// ParseFormat parses "png" or "jpg" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpg":
		return FormatJPG, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// String returns the format's file extension.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPG:
		return "jpg"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatJPG {
		return "image/jpeg"
	}
	return "image/png"
}

// FileName returns the download name for f, e.g. "chart.png".
func FileName(f Format) string {
	return baseName + "." + f.String()
}

// Options tunes a single export.
type Options struct {
	// Scale resamples the raster; zero means 1.
	Scale float64
}

// Result is an encoded image ready to be saved or served.
type Result struct {
	Format      Format
	FileName    string
	ContentType string
	Width       int
	Height      int
	Data        []byte
}

// Export rasterizes surface and encodes it as format.
// Exports are independent: nothing is shared between calls.
func Export(surface *render.Surface, format Format, opts Options) (*Result, error) {
	start := time.Now()

	if surface == nil {
		observability.RecordExport(format.String(), "noop", 0, 0)
		return nil, ErrNoSurface
	}

	res, err := encode(surface, format, opts)
	if err != nil {
		observability.RecordExport(format.String(), "error", 0, 0)
		return nil, err
	}

	observability.RecordExport(format.String(), "success", time.Since(start).Seconds(), len(res.Data))
	return res, nil
}

func encode(surface *render.Surface, format Format, opts Options) (*Result, error) {
	if format != FormatPNG && format != FormatJPG {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if math.IsNaN(scale) || scale < 0 || scale > MaxScale {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, opts.Scale)
	}

	img, err := surface.Image()
	if err != nil {
		return nil, fmt.Errorf("rasterize surface: %w", err)
	}
	if scale != 1 {
		img = resample(img, scale)
	}

	var buf bytes.Buffer
	switch format {
	case FormatJPG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	b := img.Bounds()
	return &Result{
		Format:      format,
		FileName:    FileName(format),
		ContentType: format.ContentType(),
		Width:       b.Dx(),
		Height:      b.Dy(),
		Data:        buf.Bytes(),
	}, nil
}

func resample(img image.Image, scale float64) image.Image {
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*scale+0.5))
	h := max(1, int(float64(b.Dy())*scale+0.5))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Save writes res into dir under its file name and returns the written path.
func Save(dir string, res *Result) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, res.FileName)
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
