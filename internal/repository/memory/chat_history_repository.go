package memory

import (
	"sync"

	"ai-summary-be/internal/entity"
)

// maxChatTurns bounds per-session conversation memory; the oldest turns
// fall off first.
const maxChatTurns = 20

// ChatHistoryRepository keeps the running conversation per session so
// follow-up chat questions see their own context.
type ChatHistoryRepository struct {
	mu    sync.Mutex
	turns map[string][]entity.ChatTurn
}

func NewChatHistoryRepository() *ChatHistoryRepository {
	return &ChatHistoryRepository{
		turns: make(map[string][]entity.ChatTurn),
	}
}

func (r *ChatHistoryRepository) Append(sessionID string, turns ...entity.ChatTurn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := append(r.turns[sessionID], turns...)
	if len(buf) > maxChatTurns {
		buf = buf[len(buf)-maxChatTurns:]
	}
	r.turns[sessionID] = buf
}

// List returns a copy; callers may hold it across later appends.
func (r *ChatHistoryRepository) List(sessionID string) []entity.ChatTurn {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := r.turns[sessionID]
	if len(buf) == 0 {
		return nil
	}
	out := make([]entity.ChatTurn, len(buf))
	copy(out, buf)
	return out
}

func (r *ChatHistoryRepository) Clear(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, found := r.turns[sessionID]
	delete(r.turns, sessionID)
	return found
}
