package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"ai-summary-be/internal/entity"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	// Sessions expire on their own; the janitor purges them every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *entity.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*entity.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*entity.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) bool {
	_, found := r.cache.Get(sessionID)
	r.cache.Delete(sessionID)
	return found
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
