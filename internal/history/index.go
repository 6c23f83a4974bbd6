package history

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// IndexStore persists all records in a single JSON index file. Appends
// rewrite the index atomically under a mutex.
type IndexStore struct {
	mu   sync.Mutex
	path string
}

func NewIndexStore(path string) *IndexStore {
	return &IndexStore{path: path}
}

func (s *IndexStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records = append(records, rec)
	return writeJSONAtomic(s.path, records)
}

func (s *IndexStore) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	sortByCreatedAt(records)
	return records, nil
}

func (s *IndexStore) load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: failed to read index: %v", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("history: index is corrupt: %v", err)
	}
	return records, nil
}
