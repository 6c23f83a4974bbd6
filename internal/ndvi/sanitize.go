package ndvi

import (
	"math"

	"github.com/verdantlabs/ndvi-report/internal/raster"
)

// NDVI is mathematically bounded to [-1, 1]; values outside this interval
// indicate sensor or decoding error.
const (
	DomainMin = -1.0
	DomainMax = 1.0
)

// Grid is a cleaned band: every element is either a finite value inside the
// NDVI domain or NaN. No nodata sentinel survives sanitization.
type Grid struct {
	Values []float64 // row-major, Rows*Cols
	Rows   int
	Cols   int
}

// Sanitize converts a decoded band into a cleaned grid. The nodata sentinel
// is substituted first so a sentinel that happens to fall inside the NDVI
// domain is still excluded. When clampBounds is set, anything outside
// [-1, 1] becomes NaN as well.
func Sanitize(h *raster.Handle, clampBounds bool) *Grid {
	g := &Grid{
		Values: make([]float64, len(h.Values)),
		Rows:   h.Rows,
		Cols:   h.Cols,
	}
	for i, v := range h.Values {
		switch {
		case h.HasNoData && v == h.NoData:
			g.Values[i] = math.NaN()
		case math.IsNaN(v) || math.IsInf(v, 0):
			g.Values[i] = math.NaN()
		case clampBounds && (v < DomainMin || v > DomainMax):
			g.Values[i] = math.NaN()
		default:
			g.Values[i] = v
		}
	}
	return g
}

// ValidValues returns the non-missing elements, in row-major order.
func (g *Grid) ValidValues() []float64 {
	valid := make([]float64, 0, len(g.Values))
	for _, v := range g.Values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	return valid
}

// At returns the element at the given row and column.
func (g *Grid) At(row, col int) float64 {
	return g.Values[row*g.Cols+col]
}
