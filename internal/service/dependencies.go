package service

import (
	"context"

	"ai-summary-be/internal/entity"
)

// Store contracts the services depend on. The memory and history
// repositories satisfy them; tests substitute fakes.

type SessionStore interface {
	Save(session *entity.Session)
	Get(sessionID string) (*entity.Session, bool)
	Delete(sessionID string) bool
	Count() int
}

type IndexStatusStore interface {
	Set(status entity.IndexStatus)
	Get(sessionID string) (entity.IndexStatus, bool)
	Delete(sessionID string)
}

type HistoryStore interface {
	Upsert(record entity.SessionHistory) error
	UpdateStatus(sessionID, status string, characters, words, readingMinutes, pages int) error
	ListRecent(limit int) ([]entity.SessionHistory, error)
}

// ExtractionTracker exposes the in-flight extraction set so generation
// requests can wait for a session's text instead of racing the upload.
type ExtractionTracker interface {
	Register(sessionID string) func()
	IsPending(sessionID string) bool
	AwaitIfPending(ctx context.Context, sessionID string) error
}

type ChatMemoryStore interface {
	Append(sessionID string, turns ...entity.ChatTurn)
	List(sessionID string) []entity.ChatTurn
	Clear(sessionID string) bool
}
