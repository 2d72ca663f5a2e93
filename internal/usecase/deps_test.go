package usecase

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/surge-forcing/internal/domain"
	"go.ngs.io/surge-forcing/internal/observability"
)

func TestDeps_WithDefaults(t *testing.T) {
	a := Deps{}.withDefaults()
	b := Deps{}.withDefaults()
	require.NotNil(t, a.Logger)
	require.NotNil(t, a.Clock)
	require.NotNil(t, a.Metrics)

	// Each default gets its own registry.
	a.Metrics.BlendRuns.WithLabelValues(observability.OutcomeSuccess).Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.BlendRuns.WithLabelValues(observability.OutcomeSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Metrics.BlendRuns.WithLabelValues(observability.OutcomeSuccess)))
}

func TestDeps_Resolve(t *testing.T) {
	root := t.TempDir()
	d := Deps{Root: root}

	got, err := d.resolve("sandy/era5.nc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sandy", "era5.nc"), got)

	for _, p := range []string{"", "  ", "/etc/passwd", "..", "../x.nc", "a/../../x.nc"} {
		_, err := d.resolve(p)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "path %q", p)
	}

	got, err = Deps{}.resolve("/abs/era5.nc")
	require.NoError(t, err)
	assert.Equal(t, "/abs/era5.nc", got)
}
