package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_CustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.FetchesTotal.WithLabelValues("http", "success").Inc()
	m.AggregationsTotal.WithLabelValues("weekly").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("http", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AggregationsTotal.WithLabelValues("weekly")))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
	for _, f := range families {
		assert.Contains(t, f.GetName(), "test_")
	}
}

func TestRecordFetch(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.FetchesTotal.WithLabelValues("file", "error"))

	RecordFetch("file", 0.01, errors.New("boom"))

	after := testutil.ToFloat64(DefaultMetrics.FetchesTotal.WithLabelValues("file", "error"))
	assert.Equal(t, before+1, after)
}

func TestRecordExport_NoopSkipsHistograms(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.ExportsTotal.WithLabelValues("png", "noop"))

	RecordExport("png", "noop", 0, 0)

	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.ExportsTotal.WithLabelValues("png", "noop")))
}

func TestRecordSamplesLoaded(t *testing.T) {
	RecordSamplesLoaded(42, 1700000000)

	assert.Equal(t, 42.0, testutil.ToFloat64(DefaultMetrics.SamplesLoaded))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(DefaultMetrics.LastSuccessfulFetch))
}
