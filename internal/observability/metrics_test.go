package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.BlendRuns.WithLabelValues(OutcomeSuccess).Inc()
	m.BlendRuns.WithLabelValues(OutcomeInvalid).Add(2)
	m.ObservationsDropped.Add(3)
	m.OutputTimesteps.Observe(9)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlendRuns.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BlendRuns.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ObservationsDropped))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["surge_forcing_blend_runs_total"])
	assert.True(t, names["surge_forcing_observations_dropped_total"])
	assert.True(t, names["surge_forcing_output_timesteps"])
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()
	a.DatasetsLoaded.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.DatasetsLoaded))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DatasetsLoaded))
}

func TestSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.BlendRuns.WithLabelValues(OutcomeSuccess).Add(2)
	m.BlendRuns.WithLabelValues(OutcomeError).Inc()
	m.ObservationsDropped.Add(3)
	m.BlendDuration.Observe(0.5)
	m.BlendDuration.Observe(1.5)

	fields, err := Snapshot(reg)
	require.NoError(t, err)
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}

	assert.Equal(t, 2.0, enc.Fields["surge_forcing_blend_runs_total.success"])
	assert.Equal(t, 1.0, enc.Fields["surge_forcing_blend_runs_total.error"])
	assert.Equal(t, 3.0, enc.Fields["surge_forcing_observations_dropped_total"])
	assert.Equal(t, 0.0, enc.Fields["surge_forcing_datasets_loaded_total"])
	assert.Equal(t, uint64(2), enc.Fields["surge_forcing_blend_duration_seconds_count"])
	assert.Equal(t, 2.0, enc.Fields["surge_forcing_blend_duration_seconds_sum"])
	assert.NotContains(t, enc.Fields, "surge_forcing_http_requests_total")
}
