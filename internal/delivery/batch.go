package delivery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

const batchWorkers = 4

// BatchResult collects the outcome of a directory run. Failures are
// per-file: one bad raster does not stop the rest.
type BatchResult struct {
	Results []*Result
	Errors  map[string]error
}

// Batch processes every GeoTIFF in dir, one independent pipeline per file.
// Pipelines run concurrently on a bounded pool; nothing is shared between
// them except the history store, which serializes its own appends.
func Batch(dir string, opts Options) (*BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch directory: %v", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".tif" || ext == ".tiff" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no GeoTIFF files found in %s", dir)
	}

	var (
		mu          sync.Mutex
		batch       = &BatchResult{Errors: make(map[string]error)}
		progressBar = progressbar.Default(int64(len(paths)), "Processing rasters")
	)

	wp := workerpool.New(batchWorkers)
	for _, path := range paths {
		p := path
		wp.Submit(func() {
			defer progressBar.Add(1)
			res, err := ProcessRasterFile(p, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logrus.Errorf("batch: %s: %v", filepath.Base(p), err)
				batch.Errors[filepath.Base(p)] = err
				return
			}
			batch.Results = append(batch.Results, res)
		})
	}
	wp.StopWait()

	return batch, nil
}
