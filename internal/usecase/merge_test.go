package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/surge-forcing/internal/domain"
)

func TestMergeUseCase_Execute(t *testing.T) {
	deps, ms, _ := testDeps(t)
	ms.put(filepath.Join(deps.Root, "day2.nc"), hourlySeries(sandyStart+2*3600, 3))
	ms.put(filepath.Join(deps.Root, "day1.nc"), hourlySeries(sandyStart, 3))

	res, err := NewMergeUseCase(deps).Execute(context.Background(), MergeRequest{
		Sources: []string{"day2.nc", "day1.nc"},
		Output:  "sandy.nc",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sources)
	assert.Equal(t, 5, res.Times)

	out, _, ok := ms.get(filepath.Join(deps.Root, "sandy.nc"))
	require.True(t, ok)
	assert.Equal(t, sandyStart, out.Times[0])
	assert.Equal(t, "2012-10-29T04:00:00Z", out.Attrs.Text("stop_date"))
}

func TestMergeUseCase_Mismatch(t *testing.T) {
	deps, ms, _ := testDeps(t)
	other := hourlySeries(sandyStart+3*3600, 2)
	other.Longitudes = []float64{284, 285}
	ms.put(filepath.Join(deps.Root, "a.nc"), hourlySeries(sandyStart, 3))
	ms.put(filepath.Join(deps.Root, "b.nc"), other)

	_, err := NewMergeUseCase(deps).Execute(context.Background(), MergeRequest{
		Sources: []string{"a.nc", "b.nc"},
		Output:  "out.nc",
	})
	require.ErrorIs(t, err, domain.ErrShapeMismatch)

	_, err = NewMergeUseCase(deps).Execute(context.Background(), MergeRequest{Output: "out.nc"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
