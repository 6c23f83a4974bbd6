package history

import (
	"sort"
	"sync"
	"time"
)

// Record is the flat per-run entry persisted by a Store. Statistics are
// pointers so "no valid data" runs serialize as absent fields rather than
// NaN, which JSON cannot carry.
type Record struct {
	ID         string    `json:"id" csv:"id"`
	SourceFile string    `json:"source_file" csv:"source_file"`
	CreatedAt  time.Time `json:"created_at" csv:"created_at"`

	MinNDVI  *float64 `json:"min_ndvi,omitempty" csv:"min_ndvi"`
	MaxNDVI  *float64 `json:"max_ndvi,omitempty" csv:"max_ndvi"`
	MeanNDVI *float64 `json:"mean_ndvi,omitempty" csv:"mean_ndvi"`

	ValidPixels int     `json:"valid_pixels" csv:"valid_pixels"`
	PixelArea   float64 `json:"pixel_area" csv:"pixel_area"`
	TotalAreaM2 float64 `json:"total_area_m2" csv:"total_area_m2"`
	AreaHa      float64 `json:"area_ha" csv:"area_ha"`

	CRS    string     `json:"crs" csv:"crs"`
	Extent [4]float64 `json:"extent" csv:"-"`

	PreviewPath string `json:"preview_path,omitempty" csv:"preview_path"`
	ReportPath  string `json:"report_path,omitempty" csv:"report_path"`
}

// Store is the append/list contract the pipeline persists runs through.
// Implementations serialize concurrent appends.
type Store interface {
	Append(rec Record) error
	List() ([]Record, error)
}

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func sortByCreatedAt(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
