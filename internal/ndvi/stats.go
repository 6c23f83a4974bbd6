package ndvi

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SquareMetersPerHectare converts ground area to hectares.
const SquareMetersPerHectare = 10000.0

// Stats is the immutable result of one pipeline run. Min, Max, Mean and
// StdDev are NaN when ValidCount is zero.
type Stats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64

	ValidCount  int
	PixelArea   float64
	TotalAreaM2 float64
	AreaHa      float64
}

// Compute derives statistics over the non-missing elements of g. Missing
// elements never contribute to any numerator or denominator. A grid with no
// valid elements yields NaN statistics and zero areas, not an error.
func Compute(g *Grid, pixelArea float64) Stats {
	valid := g.ValidValues()

	s := Stats{
		Min:        math.NaN(),
		Max:        math.NaN(),
		Mean:       math.NaN(),
		StdDev:     math.NaN(),
		ValidCount: len(valid),
		PixelArea:  pixelArea,
	}
	s.TotalAreaM2 = float64(s.ValidCount) * pixelArea
	s.AreaHa = s.TotalAreaM2 / SquareMetersPerHectare

	if len(valid) == 0 {
		return s
	}

	s.Min, s.Max = valid[0], valid[0]
	for _, v := range valid[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean, s.StdDev = stat.MeanStdDev(valid, nil)
	if len(valid) == 1 {
		s.StdDev = 0
	}
	return s
}

// HasValidData reports whether any pixel survived sanitization.
func (s Stats) HasValidData() bool {
	return s.ValidCount > 0
}
