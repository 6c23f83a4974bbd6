package raster

import "errors"

var (
	// ErrDecode means the input bytes could not be opened as a raster.
	ErrDecode = errors.New("decode: input is not a readable raster")

	// ErrUnsupportedBandCount means the raster does not have exactly one band.
	ErrUnsupportedBandCount = errors.New("decode: raster must have exactly one band")
)
