package vectorstore

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	graphFileName = "index.hnsw"
	metaFileName  = "chunks.gob"
)

// indexMeta is the gob-encoded sidecar next to the exported graph.
type indexMeta struct {
	Chunks []string
	Dims   int
}

// Store persists one index per session under root/<sessionID>/ and keeps
// opened indexes resident. Two racing loads of the same session may both
// read from disk; the last one to finish wins the cache slot, which is
// fine because the underlying files never change after a build.
type Store struct {
	root string

	mu       sync.RWMutex
	resident map[string]*Index
}

func NewStore(root string) *Store {
	return &Store{
		root:     root,
		resident: make(map[string]*Index),
	}
}

// Has reports whether a persisted index exists for the session. It never
// waits for a build in progress.
func (s *Store) Has(sessionID string) bool {
	s.mu.RLock()
	_, ok := s.resident[sessionID]
	s.mu.RUnlock()
	if ok {
		return true
	}

	info, err := os.Stat(filepath.Join(s.root, sessionID))
	return err == nil && info.IsDir()
}

// Persist writes the graph and its chunk metadata, then installs the index
// as resident so the first query after a build skips the disk round trip.
func (s *Store) Persist(sessionID string, ix *Index) error {
	dir := filepath.Join(s.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	graphPath := filepath.Join(dir, graphFileName)
	f, err := os.Create(graphPath)
	if err != nil {
		return fmt.Errorf("create graph file: %w", err)
	}
	if err := ix.graph.Export(f); err != nil {
		f.Close()
		os.Remove(graphPath)
		return fmt.Errorf("export graph: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close graph file: %w", err)
	}

	metaPath := filepath.Join(dir, metaFileName)
	mf, err := os.Create(metaPath)
	if err != nil {
		return fmt.Errorf("create meta file: %w", err)
	}
	if err := gob.NewEncoder(mf).Encode(indexMeta{Chunks: ix.chunks, Dims: ix.dims}); err != nil {
		mf.Close()
		os.Remove(metaPath)
		return fmt.Errorf("encode chunk metadata: %w", err)
	}
	if err := mf.Close(); err != nil {
		return fmt.Errorf("close meta file: %w", err)
	}

	s.mu.Lock()
	s.resident[sessionID] = ix
	s.mu.Unlock()
	return nil
}

// Load returns the session's index, reading it from disk on first use.
func (s *Store) Load(sessionID string) (*Index, error) {
	s.mu.RLock()
	ix, ok := s.resident[sessionID]
	s.mu.RUnlock()
	if ok {
		return ix, nil
	}

	ix, err := s.read(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.resident[sessionID] = ix
	s.mu.Unlock()
	return ix, nil
}

func (s *Store) read(sessionID string) (*Index, error) {
	dir := filepath.Join(s.root, sessionID)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("index not found for session %s: %w", sessionID, err)
	}

	mf, err := os.Open(filepath.Join(dir, metaFileName))
	if err != nil {
		return nil, fmt.Errorf("open chunk metadata: %w", err)
	}
	defer mf.Close()

	var meta indexMeta
	if err := gob.NewDecoder(mf).Decode(&meta); err != nil {
		return nil, fmt.Errorf("corrupt chunk metadata: %w", err)
	}

	gf, err := os.Open(filepath.Join(dir, graphFileName))
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer gf.Close()

	graph := newGraph()
	// bufio.Reader because Import requires an io.ByteReader
	if err := graph.Import(bufio.NewReader(gf)); err != nil {
		return nil, fmt.Errorf("corrupt graph file: %w", err)
	}

	return &Index{
		graph:  graph,
		chunks: meta.Chunks,
		dims:   meta.Dims,
	}, nil
}

// Delete removes the persisted index and evicts the resident copy.
// Removing a session that has no index is a no-op.
func (s *Store) Delete(sessionID string) error {
	s.mu.Lock()
	delete(s.resident, sessionID)
	s.mu.Unlock()
	return os.RemoveAll(filepath.Join(s.root, sessionID))
}
