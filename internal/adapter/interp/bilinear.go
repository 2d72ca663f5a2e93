// Package interp provides bilinear interpolation on regular grids.
package interp

import (
	"fmt"
	"math"
	"sort"

	"go.ngs.io/surge-forcing/internal/domain"
)

// GridCell represents a cell in a regular grid with four corner values.
type GridCell struct {
	X0, X1 float64 // Longitude boundaries.
	Y0, Y1 float64 // Latitude boundaries.

	// V00 is the value at (X0, Y0), V10 at (X1, Y0), V01 at (X0, Y1) and
	// V11 at (X1, Y1).
	V00, V10, V01, V11 float64
}

// BilinearInterpolate performs bilinear interpolation within a grid cell:
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
//
// with t = (x-x0)/(x1-x0) and u = (y-y0)/(y1-y0). A NaN corner yields NaN.
func BilinearInterpolate(cell GridCell, x, y float64) (float64, error) {
	if cell.X1 <= cell.X0 {
		return 0, fmt.Errorf("invalid grid cell: X1 must be > X0")
	}
	if cell.Y1 <= cell.Y0 {
		return 0, fmt.Errorf("invalid grid cell: Y1 must be > Y0")
	}

	const epsilon = 1e-9
	if x < cell.X0-epsilon || x > cell.X1+epsilon {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid cell [%.6f, %.6f]", x, cell.X0, cell.X1)
	}
	if y < cell.Y0-epsilon || y > cell.Y1+epsilon {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid cell [%.6f, %.6f]", y, cell.Y0, cell.Y1)
	}

	t := math.Max(0, math.Min(1, (x-cell.X0)/(cell.X1-cell.X0)))
	u := math.Max(0, math.Min(1, (y-cell.Y0)/(cell.Y1-cell.Y0)))

	return (1-t)*(1-u)*cell.V00 +
		t*(1-u)*cell.V10 +
		(1-t)*u*cell.V01 +
		t*u*cell.V11, nil
}

// Grid2D is one timestep of a field on an ascending latitude/longitude grid.
type Grid2D struct {
	X      []float64 // Longitudes, strictly increasing.
	Y      []float64 // Latitudes, strictly increasing.
	Values []float64 // Values[i*len(X)+j] is the value at (X[j], Y[i]).
}

// Validate checks if the grid is valid.
func (g *Grid2D) Validate() error {
	if len(g.X) < 2 {
		return fmt.Errorf("grid must have at least 2 X coordinates")
	}
	if len(g.Y) < 2 {
		return fmt.Errorf("grid must have at least 2 Y coordinates")
	}
	if len(g.Values) != len(g.X)*len(g.Y) {
		return fmt.Errorf("grid has %d values, expected %d", len(g.Values), len(g.X)*len(g.Y))
	}
	for i := 1; i < len(g.X); i++ {
		if g.X[i] <= g.X[i-1] {
			return fmt.Errorf("X coordinates must be strictly increasing")
		}
	}
	for i := 1; i < len(g.Y); i++ {
		if g.Y[i] <= g.Y[i-1] {
			return fmt.Errorf("Y coordinates must be strictly increasing")
		}
	}
	return nil
}

func (g *Grid2D) at(i, j int) float64 {
	return g.Values[i*len(g.X)+j]
}

// InterpolateAt performs bilinear interpolation at (x, y). Points outside
// the grid are rejected with domain.ErrInvalidInput.
func (g *Grid2D) InterpolateAt(x, y float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("invalid grid: %w", err)
	}

	xIdx, ok := bracket(g.X, x)
	if !ok {
		return 0, fmt.Errorf("%w: x coordinate %.6f is outside grid range [%.6f, %.6f]",
			domain.ErrInvalidInput, x, g.X[0], g.X[len(g.X)-1])
	}
	yIdx, ok := bracket(g.Y, y)
	if !ok {
		return 0, fmt.Errorf("%w: y coordinate %.6f is outside grid range [%.6f, %.6f]",
			domain.ErrInvalidInput, y, g.Y[0], g.Y[len(g.Y)-1])
	}

	cell := GridCell{
		X0:  g.X[xIdx],
		X1:  g.X[xIdx+1],
		Y0:  g.Y[yIdx],
		Y1:  g.Y[yIdx+1],
		V00: g.at(yIdx, xIdx),
		V10: g.at(yIdx, xIdx+1),
		V01: g.at(yIdx+1, xIdx),
		V11: g.at(yIdx+1, xIdx+1),
	}
	return BilinearInterpolate(cell, x, y)
}

// bracket returns k such that axis[k] <= v <= axis[k+1].
func bracket(axis []float64, v float64) (int, bool) {
	n := len(axis)
	if v < axis[0] || v > axis[n-1] {
		return 0, false
	}
	k := sort.SearchFloat64s(axis, v)
	if k == 0 {
		return 0, true
	}
	return k - 1, true
}

// InterpolateBoth interpolates two grids (e.g. u and v wind) at the same point.
func InterpolateBoth(grid1, grid2 *Grid2D, x, y float64) (float64, float64, error) {
	if len(grid1.X) != len(grid2.X) || len(grid1.Y) != len(grid2.Y) {
		return 0, 0, fmt.Errorf("grids must have the same dimensions")
	}

	val1, err := grid1.InterpolateAt(x, y)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to interpolate grid1: %w", err)
	}
	val2, err := grid2.InterpolateAt(x, y)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to interpolate grid2: %w", err)
	}
	return val1, val2, nil
}
