package delivery

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/airbusgeo/godal"

	"github.com/verdantlabs/ndvi-report/internal/history"
	"github.com/verdantlabs/ndvi-report/internal/raster"
)

func writeScenarioRaster(t *testing.T, bands int) string {
	t.Helper()
	godal.RegisterAll()

	values := []float64{
		-9999, 0.2, 0.5, 1.0,
		0.3, -9999, 0.8, -2.0,
		0.1, 0.2, 0.3, 0.4,
		0.5, 0.6, 0.7, 0.8,
	}

	path := filepath.Join(t.TempDir(), "field.tif")
	ds, err := godal.Create(godal.GTiff, path, bands, godal.Float64, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.SetGeoTransform([6]float64{500000, 10, 0, 4649816, 0, -10}); err != nil {
		t.Fatal(err)
	}
	for i := range ds.Bands() {
		band := ds.Bands()[i]
		if err := band.Write(0, 0, values, 4, 4); err != nil {
			t.Fatal(err)
		}
		if err := band.SetNoData(-9999); err != nil {
			t.Fatal(err)
		}
	}
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 5, 17, 10, 30, 0, 0, time.UTC)
	}
}

func TestProcessRasterEndToEnd(t *testing.T) {
	path := writeScenarioRaster(t, 1)
	store := history.NewMemoryStore()
	opts := Options{
		OutputDir:   t.TempDir(),
		ClampBounds: true,
		Store:       store,
		Now:         fixedClock(),
	}

	res, err := ProcessRasterFile(path, opts)
	if err != nil {
		t.Fatal(err)
	}

	if res.Stats.ValidCount != 13 {
		t.Errorf("valid count = %d, want 13", res.Stats.ValidCount)
	}
	if math.Abs(res.Stats.TotalAreaM2-1300) > 1e-9 {
		t.Errorf("total area = %v, want 1300", res.Stats.TotalAreaM2)
	}
	if math.Abs(res.Stats.AreaHa-0.13) > 1e-9 {
		t.Errorf("area ha = %v, want 0.13", res.Stats.AreaHa)
	}

	for _, p := range []string{
		res.PreviewPath, res.HistogramPath, res.ReportPath, res.MetadataPath, res.FootprintPath,
		filepath.Join(res.RunDir, res.RunID+".tif"),
	} {
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("artifact missing: %v", err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("artifact empty: %s", p)
		}
	}

	records, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d history records, want 1", len(records))
	}
	if records[0].MeanNDVI == nil {
		t.Fatal("mean missing from history record")
	}
}

func TestProcessRasterStatsDeterminism(t *testing.T) {
	path := writeScenarioRaster(t, 1)
	opts := Options{OutputDir: t.TempDir(), ClampBounds: true, Now: fixedClock()}

	a, err := ProcessRasterFile(path, opts)
	if err != nil {
		t.Fatal(err)
	}
	opts.OutputDir = t.TempDir()
	b, err := ProcessRasterFile(path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if a.Stats != b.Stats {
		t.Errorf("identical input produced different stats:\n%+v\n%+v", a.Stats, b.Stats)
	}
}

func TestProcessRasterMultiBandFailsBeforeWrites(t *testing.T) {
	path := writeScenarioRaster(t, 3)
	outDir := filepath.Join(t.TempDir(), "out")
	store := history.NewMemoryStore()

	_, err := ProcessRasterFile(path, Options{OutputDir: outDir, ClampBounds: true, Store: store})
	if !errors.Is(err, raster.ErrUnsupportedBandCount) {
		t.Fatalf("got %v, want ErrUnsupportedBandCount", err)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Errorf("output directory created despite decode-stage failure")
	}
	if records, _ := store.List(); len(records) != 0 {
		t.Errorf("history record appended despite decode-stage failure")
	}
}

func TestProcessRasterFailedRunLeavesNoPartialFolder(t *testing.T) {
	path := writeScenarioRaster(t, 1)
	outDir := t.TempDir()
	store := history.NewMemoryStore()

	// Occupy the final run path with a plain file so the finalize rename
	// fails after every artifact has been staged.
	blocker := filepath.Join(outDir, "field_20260517T103000")
	if err := os.WriteFile(blocker, []byte("in the way"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ProcessRasterFile(path, Options{
		OutputDir:   outDir,
		ClampBounds: true,
		Store:       store,
		Now:         fixedClock(),
	})
	if err == nil {
		t.Fatal("expected the run to fail when the run directory cannot be finalized")
	}

	if _, err := os.Stat(blocker + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("staging directory left behind after failed run")
	}
	info, err := os.Stat(blocker)
	if err != nil || info.IsDir() {
		t.Errorf("run path altered despite failed finalize")
	}
	if records, _ := store.List(); len(records) != 0 {
		t.Errorf("history record appended despite failed run")
	}
}

func TestProcessRasterAllNoData(t *testing.T) {
	godal.RegisterAll()

	path := filepath.Join(t.TempDir(), "empty.tif")
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.SetGeoTransform([6]float64{0, 10, 0, 0, 0, -10}); err != nil {
		t.Fatal(err)
	}
	band := ds.Bands()[0]
	if err := band.Write(0, 0, []float64{-9999, -9999, -9999, -9999}, 2, 2); err != nil {
		t.Fatal(err)
	}
	if err := band.SetNoData(-9999); err != nil {
		t.Fatal(err)
	}
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}

	store := history.NewMemoryStore()
	res, err := ProcessRasterFile(path, Options{
		OutputDir:   t.TempDir(),
		ClampBounds: true,
		Store:       store,
		Now:         fixedClock(),
	})
	if err != nil {
		t.Fatalf("all-nodata raster must still produce a complete artifact: %v", err)
	}

	if res.Stats.ValidCount != 0 {
		t.Errorf("valid count = %d, want 0", res.Stats.ValidCount)
	}
	if _, err := os.Stat(res.ReportPath); err != nil {
		t.Errorf("report artifact missing for no-data run: %v", err)
	}
	records, _ := store.List()
	if len(records) != 1 {
		t.Fatalf("got %d history records, want 1", len(records))
	}
	if records[0].MeanNDVI != nil {
		t.Errorf("no-data run persisted a mean: %v", *records[0].MeanNDVI)
	}
}
