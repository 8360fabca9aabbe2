package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ai-summary-be/internal/entity"
)

const maxEntries = 100

// JSONRepository keeps the upload history in a single JSON file, newest
// entry first, capped at maxEntries. Every write rewrites the whole file;
// the mutex keeps concurrent uploads from interleaving read-modify-write.
type JSONRepository struct {
	mu   sync.Mutex
	path string
}

func NewJSONRepository(path string) (*JSONRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &JSONRepository{path: path}, nil
}

// Upsert inserts the record at the head, replacing any existing record for
// the same session.
func (r *JSONRepository) Upsert(record entity.SessionHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}

	filtered := make([]entity.SessionHistory, 0, len(entries)+1)
	filtered = append(filtered, record)
	for _, e := range entries {
		if e.SessionID != record.SessionID {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) > maxEntries {
		filtered = filtered[:maxEntries]
	}

	return r.save(filtered)
}

// UpdateStatus patches an existing record in place. Unknown sessions are
// ignored; the upload may have aged out of the capped file.
func (r *JSONRepository) UpdateStatus(sessionID, status string, characters, words, readingMinutes, pages int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}

	for i := range entries {
		if entries[i].SessionID == sessionID {
			entries[i].Status = status
			entries[i].Characters = characters
			entries[i].Words = words
			entries[i].ReadingMinutes = readingMinutes
			entries[i].Pages = pages
			return r.save(entries)
		}
	}
	return nil
}

func (r *JSONRepository) Get(sessionID string) (entity.SessionHistory, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return entity.SessionHistory{}, false, err
	}
	for _, e := range entries {
		if e.SessionID == sessionID {
			return e, true, nil
		}
	}
	return entity.SessionHistory{}, false, nil
}

// ListRecent returns up to limit records, newest first. limit <= 0 means all.
func (r *JSONRepository) ListRecent(limit int) ([]entity.SessionHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *JSONRepository) load() ([]entity.SessionHistory, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var entries []entity.SessionHistory
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt file should not brick uploads; start over
		return nil, nil
	}
	return entries, nil
}

func (r *JSONRepository) save(entries []entity.SessionHistory) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return os.Rename(tmp, r.path)
}
