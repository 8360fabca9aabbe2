package memory

import (
	"sync"

	"ai-summary-be/internal/entity"
)

// IndexStatusRepository tracks the lifecycle of background index builds.
// Statuses only move forward (pending, building, then ready or failed);
// callers set each stage explicitly.
type IndexStatusRepository struct {
	mu       sync.RWMutex
	statuses map[string]entity.IndexStatus
}

func NewIndexStatusRepository() *IndexStatusRepository {
	return &IndexStatusRepository{
		statuses: make(map[string]entity.IndexStatus),
	}
}

func (r *IndexStatusRepository) Set(status entity.IndexStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[status.SessionID] = status
}

func (r *IndexStatusRepository) Get(sessionID string) (entity.IndexStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	status, found := r.statuses[sessionID]
	return status, found
}

func (r *IndexStatusRepository) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.statuses, sessionID)
}
