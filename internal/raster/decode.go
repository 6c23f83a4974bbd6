package raster

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"
)

// Handle is the decoded view of a single-band raster. It is consumed by the
// sanitization and stats stages and holds no open file resources.
type Handle struct {
	Values []float64 // row-major, Rows*Cols
	Rows   int
	Cols   int

	NoData    float64
	HasNoData bool

	CRS    string
	Extent [4]float64 // xmin, ymin, xmax, ymax

	Transform    [6]float64
	HasTransform bool

	// PixelArea is |scaleX*scaleY| in ground units squared. When the raster
	// carries no geotransform it is 1 and areas downstream are in pixel
	// counts, flagged by HasTransform=false.
	PixelArea float64
}

// Decode opens a raster byte stream and extracts band 1 together with its
// spatial metadata. The bytes are staged in a temporary file so GDAL can
// open them; the file and the dataset are always released before returning.
func Decode(data []byte) (*Handle, error) {
	godal.RegisterAll()

	tmp, err := os.CreateTemp("", "ndvi-upload-*.tif")
	if err != nil {
		return nil, fmt.Errorf("decode: failed to stage upload: %v", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("decode: failed to stage upload: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("decode: failed to stage upload: %v", err)
	}

	return DecodeFile(tmpPath)
}

// DecodeFile is Decode for rasters already on disk.
func DecodeFile(path string) (*Handle, error) {
	godal.RegisterAll()

	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer ds.Close()

	structure := ds.Structure()
	if structure.NBands != 1 {
		return nil, fmt.Errorf("%w: got %d bands in %s", ErrUnsupportedBandCount, structure.NBands, filepath.Base(path))
	}

	width, height := structure.SizeX, structure.SizeY
	band := ds.Bands()[0]

	values := make([]float64, width*height)
	if err := band.Read(0, 0, values, width, height); err != nil {
		return nil, fmt.Errorf("%w: failed to read band 1: %v", ErrDecode, err)
	}

	h := &Handle{
		Values:    values,
		Rows:      height,
		Cols:      width,
		CRS:       ds.Projection(),
		PixelArea: 1,
	}
	h.NoData, h.HasNoData = band.NoData()

	if gt, err := ds.GeoTransform(); err == nil {
		h.Transform = gt
		h.HasTransform = true
		h.PixelArea = math.Abs(gt[1] * gt[5])
	} else {
		// No geotransform: report areas in pixel-count units rather than
		// pretending one pixel covers one ground unit.
		logrus.Warnf("raster %s has no geotransform, areas will be in pixel units", filepath.Base(path))
	}

	if bounds, err := ds.Bounds(); err == nil {
		h.Extent = bounds
	} else {
		h.Extent = [4]float64{0, 0, float64(width), float64(height)}
	}

	return h, nil
}
