package memory

import (
	"context"
	"sync"
)

// TaskTracker lets request handlers wait for a session's background text
// extraction to finish. Register returns a completion func the worker calls
// exactly once; AwaitIfPending blocks any number of waiters until then.
type TaskTracker struct {
	mu      sync.Mutex
	pending map[string]chan struct{}
}

func NewTaskTracker() *TaskTracker {
	return &TaskTracker{
		pending: make(map[string]chan struct{}),
	}
}

// Register marks the session as having work in flight. The returned func
// releases all waiters and is safe to call only once.
func (t *TaskTracker) Register(sessionID string) func() {
	done := make(chan struct{})

	t.mu.Lock()
	t.pending[sessionID] = done
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		if t.pending[sessionID] == done {
			delete(t.pending, sessionID)
		}
		t.mu.Unlock()
		close(done)
	}
}

func (t *TaskTracker) IsPending(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, found := t.pending[sessionID]
	return found
}

// AwaitIfPending blocks until the session's in-flight task completes, or
// returns immediately when nothing is pending. A cancelled context unblocks
// the caller without affecting the task itself.
func (t *TaskTracker) AwaitIfPending(ctx context.Context, sessionID string) error {
	t.mu.Lock()
	done, found := t.pending[sessionID]
	t.mu.Unlock()

	if !found {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
