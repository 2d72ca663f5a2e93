package interp

import (
	"errors"
	"math"
	"testing"

	"go.ngs.io/surge-forcing/internal/domain"
)

// TestBilinearInterpolate_Cell tests corners, the centre and out-of-cell points.
func TestBilinearInterpolate_Cell(t *testing.T) {
	cell := GridCell{
		X0: 0.0, X1: 2.0,
		Y0: 0.0, Y1: 2.0,
		V00: 1.0, V10: 3.0,
		V01: 5.0, V11: 7.0,
	}

	tests := []struct {
		name     string
		x, y     float64
		expected float64
	}{
		{"bottom-left", 0, 0, 1},
		{"bottom-right", 2, 0, 3},
		{"top-left", 0, 2, 5},
		{"top-right", 2, 2, 7},
		// 0.25 * (1 + 3 + 5 + 7)
		{"centre", 1, 1, 4},
	}
	for _, tt := range tests {
		result, err := BilinearInterpolate(cell, tt.x, tt.y)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("%s: expected %.10f, got %.10f", tt.name, tt.expected, result)
		}
	}

	if _, err := BilinearInterpolate(cell, -1, 1); err == nil {
		t.Error("expected error for x outside the cell")
	}
	if _, err := BilinearInterpolate(GridCell{X0: 1, X1: 1, Y0: 0, Y1: 1}, 1, 0.5); err == nil {
		t.Error("expected error for a degenerate cell")
	}
}

// TestGrid2D_InterpolateAt tests lookup on a 3x3 grid.
func TestGrid2D_InterpolateAt(t *testing.T) {
	grid := &Grid2D{
		X: []float64{0.0, 1.0, 2.0},
		Y: []float64{0.0, 1.0, 2.0},
		Values: []float64{
			1, 2, 3, // y=0
			4, 5, 6, // y=1
			7, 8, 9, // y=2
		},
	}

	tests := []struct {
		x, y     float64
		expected float64
	}{
		{0, 0, 1},
		{2, 0, 3},
		{1, 1, 5},
		{2, 2, 9},
		{0.5, 0.5, 3},
		{1.5, 2, 8.5},
	}
	for _, tt := range tests {
		result, err := grid.InterpolateAt(tt.x, tt.y)
		if err != nil {
			t.Fatalf("At (%.1f, %.1f): unexpected error: %v", tt.x, tt.y, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("At (%.1f, %.1f): expected %.10f, got %.10f", tt.x, tt.y, tt.expected, result)
		}
	}

	_, err := grid.InterpolateAt(2.5, 1)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("outside grid: expected ErrInvalidInput, got %v", err)
	}
}

// TestGrid2D_MissingCorner tests that a NaN corner propagates.
func TestGrid2D_MissingCorner(t *testing.T) {
	grid := &Grid2D{
		X:      []float64{0, 1},
		Y:      []float64{0, 1},
		Values: []float64{1, math.NaN(), 3, 4},
	}
	v, err := grid.InterpolateAt(0.5, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(v) {
		t.Errorf("expected NaN, got %v", v)
	}
}

// TestGrid2D_Validate tests grid validation.
func TestGrid2D_Validate(t *testing.T) {
	tests := []struct {
		name    string
		grid    *Grid2D
		wantErr bool
	}{
		{"valid grid", &Grid2D{X: []float64{0, 1, 2}, Y: []float64{0, 1}, Values: []float64{1, 2, 3, 4, 5, 6}}, false},
		{"too few X coords", &Grid2D{X: []float64{0}, Y: []float64{0, 1}, Values: []float64{1, 2}}, true},
		{"wrong value count", &Grid2D{X: []float64{0, 1}, Y: []float64{0, 1}, Values: []float64{1, 2}}, true},
		{"non-increasing X", &Grid2D{X: []float64{0, 2, 1}, Y: []float64{0, 1}, Values: []float64{1, 2, 3, 4, 5, 6}}, true},
		{"descending Y", &Grid2D{X: []float64{0, 1}, Y: []float64{1, 0}, Values: []float64{1, 2, 3, 4}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
