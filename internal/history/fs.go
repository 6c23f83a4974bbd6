package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const recordFileName = "record.json"

// FSStore persists one folder per run under a base directory, the record
// serialized as record.json next to the run's artifacts.
type FSStore struct {
	mu  sync.Mutex
	dir string
}

func NewFSStore(dir string) *FSStore {
	return &FSStore{dir: dir}
}

func (s *FSStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runDir := filepath.Join(s.dir, rec.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("history: failed to create run directory: %v", err)
	}
	return writeJSONAtomic(filepath.Join(runDir, recordFileName), rec)
}

func (s *FSStore) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: failed to read store directory: %v", err)
	}

	var records []Record
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name(), recordFileName))
		if err != nil {
			// Run folders without a record are artifacts of interrupted
			// runs; skip them.
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	sortByCreatedAt(records)
	return records, nil
}

// writeJSONAtomic stages to a temp file and renames so a crash never leaves
// a half-written record behind.
func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("history: failed to marshal record: %v", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("history: failed to write temp record file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("history: failed to rename temp record file: %v", err)
	}
	return nil
}
