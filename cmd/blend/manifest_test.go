package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/config"
	"go.ngs.io/surge-forcing/internal/domain"
	"go.ngs.io/surge-forcing/internal/usecase"
)

func TestManifest_Requests(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sandy.yaml")
	yml := `
jobs:
  - source: era5_20121028.nc
    observations: obs/battery.txt
    output: /abs/out1.nc
  - source: era5_20121029.nc
    observations: obs/battery.txt
    output: out2.nc
    step_count: 12
    policy: nearest
    encoding: int16
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)

	base := usecase.BlendRequest{Policy: domain.WindPairwiseAveraged, Encoding: era5.EncodingFloat32, FillValue: era5.Fill(-9999)}
	reqs, err := m.Requests(base)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, filepath.Join(dir, "era5_20121028.nc"), reqs[0].Source)
	assert.Equal(t, filepath.Join(dir, "obs", "battery.txt"), reqs[0].Observations)
	assert.Equal(t, "/abs/out1.nc", reqs[0].Output)
	assert.Equal(t, domain.WindPairwiseAveraged, reqs[0].Policy)
	assert.Equal(t, 0, reqs[0].StepCount)

	assert.Equal(t, 12, reqs[1].StepCount)
	assert.Equal(t, domain.WindNearest, reqs[1].Policy)
	assert.Equal(t, era5.EncodingPackedInt16, reqs[1].Encoding)
	require.NotNil(t, reqs[1].FillValue)
	assert.Equal(t, -9999.0, *reqs[1].FillValue)
}

func TestManifest_Invalid(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("jobs: []\n"), 0o644))
	_, err := LoadManifest(empty)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("jobs:\n  - source: a.nc\n    policy: cubic\n"), 0o644))
	m, err := LoadManifest(bad)
	require.NoError(t, err)
	_, err = m.Requests(usecase.BlendRequest{})
	require.ErrorIs(t, err, domain.ErrUnsupportedPolicy)
}

func TestBaseRequest(t *testing.T) {
	cfg := config.Default()
	cfg.LongitudeRange = "0-360"

	req, err := baseRequest(cfg, -1, "", "asc", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.WindPairwiseAveraged, req.Policy)
	assert.Equal(t, era5.EncodingFloat32, req.Encoding)
	assert.Equal(t, domain.LatitudeAscending, req.LatitudeOrder)
	assert.Equal(t, domain.Longitude360, req.LongitudeRange)
	require.NotNil(t, req.FillValue)
	assert.Equal(t, -9999.0, *req.FillValue)

	req, err = baseRequest(cfg, 6, "nearest", "", "-180-180", "packed")
	require.NoError(t, err)
	assert.Equal(t, 6, req.StepCount)
	assert.Equal(t, domain.WindNearest, req.Policy)
	assert.Equal(t, era5.EncodingPackedInt16, req.Encoding)
	assert.Equal(t, domain.Longitude180, req.LongitudeRange)

	_, err = baseRequest(cfg, -1, "", "north", "", "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	cfg.FillValue = 0
	req, err = baseRequest(cfg, -1, "", "", "", "")
	require.NoError(t, err)
	require.NotNil(t, req.FillValue)
	assert.Equal(t, 0.0, *req.FillValue)
}
