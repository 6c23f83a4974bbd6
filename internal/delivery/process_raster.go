package delivery

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verdantlabs/ndvi-report/internal/history"
	"github.com/verdantlabs/ndvi-report/internal/ndvi"
	"github.com/verdantlabs/ndvi-report/internal/raster"
	"github.com/verdantlabs/ndvi-report/internal/render"
	"github.com/verdantlabs/ndvi-report/internal/report"
	"github.com/verdantlabs/ndvi-report/output"
)

const (
	histogramPanelW = 640
	histogramPanelH = 420
)

// Options configures one pipeline invocation.
type Options struct {
	// OutputDir is the base directory for per-run artifact folders.
	OutputDir string
	// ClampBounds drops values outside [-1, 1] during sanitization.
	ClampBounds bool
	// Store receives the run record. Optional.
	Store history.Store
	// Now is the report timestamp source, defaulting to time.Now.
	Now func() time.Time
}

// Result points at everything one run produced.
type Result struct {
	RunID  string
	RunDir string

	Stats  ndvi.Stats
	Meta   report.Meta
	CRS    string
	Extent [4]float64

	PreviewPath   string
	HistogramPath string
	ReportPath    string
	MetadataPath  string
	FootprintPath string

	Record history.Record
}

// ProcessRaster runs the full pipeline on one uploaded raster: decode,
// sanitize, compute, render, assemble, persist. Decode and band-count
// failures happen before anything is written. Rendering happens fully in
// memory so a failed run leaves no partial artifact folder behind.
func ProcessRaster(name string, data []byte, opts Options) (*Result, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	handle, err := raster.Decode(data)
	if err != nil {
		return nil, err
	}

	grid := ndvi.Sanitize(handle, opts.ClampBounds)
	stats := ndvi.Compute(grid, handle.PixelArea)
	if !stats.HasValidData() {
		logrus.Warnf("raster %s has no valid NDVI pixels, producing a no-data report", name)
	}

	generatedAt := opts.Now()
	runID := runID(name, generatedAt)
	meta := report.Meta{
		SourceFile:       name,
		CRS:              handle.CRS,
		Extent:           handle.Extent,
		AreaInPixelUnits: !handle.HasTransform,
		GeneratedAt:      generatedAt,
	}

	preview := render.Preview(grid)
	legendPreview, err := render.PreviewWithLegend(grid)
	if err != nil {
		return nil, err
	}
	histogram, err := render.Histogram(grid.ValidValues(), stats, histogramPanelW, histogramPanelH)
	if err != nil {
		return nil, err
	}

	var reportBuf bytes.Buffer
	if err := report.Assemble(&reportBuf, legendPreview, histogram, stats, meta); err != nil {
		return nil, err
	}

	var previewBuf, histogramBuf bytes.Buffer
	if err := render.EncodePNG(&previewBuf, preview); err != nil {
		return nil, err
	}
	if err := render.EncodePNG(&histogramBuf, histogram); err != nil {
		return nil, err
	}

	// Artifacts are staged in a temp directory and renamed into place, so a
	// failed run never leaves a partial folder behind.
	runDir := filepath.Join(opts.OutputDir, runID)
	stageDir := runDir + ".tmp"
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %v", err)
	}
	defer os.RemoveAll(stageDir)

	res := &Result{
		RunID:  runID,
		RunDir: runDir,
		Stats:  stats,
		Meta:   meta,
		CRS:    handle.CRS,
		Extent: handle.Extent,
	}

	artifacts := []struct {
		name string
		data []byte
	}{
		{runID + ".tif", data},
		{"preview.png", previewBuf.Bytes()},
		{"histogram.png", histogramBuf.Bytes()},
		{"report.pdf", reportBuf.Bytes()},
		{"metadata.txt", []byte(report.MetadataText(stats, meta))},
	}
	for _, a := range artifacts {
		path := filepath.Join(stageDir, a.name)
		if err := os.WriteFile(path, a.data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %v", a.name, err)
		}
	}

	err = output.WriteFootprint(filepath.Join(stageDir, "footprint.geojson"), handle.Extent, map[string]interface{}{
		"source_file":  name,
		"mean_ndvi":    nanToNil(stats.Mean),
		"area_ha":      stats.AreaHa,
		"valid_pixels": stats.ValidCount,
	})
	if err != nil {
		return nil, err
	}

	if err := os.Rename(stageDir, runDir); err != nil {
		return nil, fmt.Errorf("failed to finalize run directory: %v", err)
	}
	res.PreviewPath = filepath.Join(runDir, "preview.png")
	res.HistogramPath = filepath.Join(runDir, "histogram.png")
	res.ReportPath = filepath.Join(runDir, "report.pdf")
	res.MetadataPath = filepath.Join(runDir, "metadata.txt")
	res.FootprintPath = filepath.Join(runDir, "footprint.geojson")

	res.Record = history.Record{
		ID:          runID,
		SourceFile:  name,
		CreatedAt:   generatedAt,
		MinNDVI:     floatPtr(stats.Min),
		MaxNDVI:     floatPtr(stats.Max),
		MeanNDVI:    floatPtr(stats.Mean),
		ValidPixels: stats.ValidCount,
		PixelArea:   stats.PixelArea,
		TotalAreaM2: stats.TotalAreaM2,
		AreaHa:      stats.AreaHa,
		CRS:         handle.CRS,
		Extent:      handle.Extent,
		PreviewPath: res.PreviewPath,
		ReportPath:  res.ReportPath,
	}
	if opts.Store != nil {
		if err := opts.Store.Append(res.Record); err != nil {
			return nil, err
		}
	}

	logrus.Infof("processed %s: %d valid pixels, %.2f ha", name, stats.ValidCount, stats.AreaHa)
	return res, nil
}

// ProcessRasterFile is ProcessRaster for a raster already on disk.
func ProcessRasterFile(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raster file: %v", err)
	}
	return ProcessRaster(filepath.Base(path), data, opts)
}

func runID(name string, t time.Time) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return fmt.Sprintf("%s_%s", base, t.Format("20060102T150405"))
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func nanToNil(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
