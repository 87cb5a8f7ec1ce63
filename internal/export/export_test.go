package export

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeframe-chart/internal/domain"
	"timeframe-chart/internal/render"
)

func testSurface(t *testing.T) *render.Surface {
	t.Helper()
	s, err := render.Renderer{Width: 400, Height: 200}.Render(domain.Series{
		{Timestamp: "2024-01", Value: 15},
		{Timestamp: "2024-02", Value: 10},
	})
	require.NoError(t, err)
	return s
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	f, err = ParseFormat(" jpg ")
	require.NoError(t, err)
	assert.Equal(t, FormatJPG, f)

	_, err = ParseFormat("jpeg")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = ParseFormat("")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFileNameAndContentType(t *testing.T) {
	assert.Equal(t, "chart.png", FileName(FormatPNG))
	assert.Equal(t, "chart.jpg", FileName(FormatJPG))
	assert.Equal(t, "image/png", FormatPNG.ContentType())
	assert.Equal(t, "image/jpeg", FormatJPG.ContentType())
}

func TestExport_NilSurfaceIsNoop(t *testing.T) {
	res, err := Export(nil, FormatPNG, Options{})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrNoSurface))
}

func TestExport_PNG(t *testing.T) {
	res, err := Export(testSurface(t), FormatPNG, Options{})
	require.NoError(t, err)

	assert.Equal(t, "chart.png", res.FileName)
	assert.Equal(t, 400, res.Width)
	assert.Equal(t, 200, res.Height)

	img, err := png.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 200), img.Bounds())
}

func TestExport_JPGScaled(t *testing.T) {
	res, err := Export(testSurface(t), FormatJPG, Options{Scale: 2})
	require.NoError(t, err)

	assert.Equal(t, "chart.jpg", res.FileName)
	assert.Equal(t, "image/jpeg", res.ContentType)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestExport_InvalidScale(t *testing.T) {
	_, err := Export(testSurface(t), FormatPNG, Options{Scale: -1})
	assert.ErrorIs(t, err, ErrInvalidScale)

	_, err = Export(testSurface(t), FormatPNG, Options{Scale: MaxScale + 1})
	assert.ErrorIs(t, err, ErrInvalidScale)

	_, err = Export(testSurface(t), FormatPNG, Options{Scale: math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidScale)
}

func TestExport_IndependentResults(t *testing.T) {
	s := testSurface(t)

	a, err := Export(s, FormatPNG, Options{})
	require.NoError(t, err)
	b, err := Export(s, FormatPNG, Options{})
	require.NoError(t, err)

	a.Data[0] ^= 0xff
	assert.NotEqual(t, a.Data[0], b.Data[0])
}

func TestSave(t *testing.T) {
	res, err := Export(testSurface(t), FormatPNG, Options{})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	path, err := Save(dir, res)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chart.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Data, data)
}
