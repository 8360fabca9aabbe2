package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-summary-be/internal/constant"
	"ai-summary-be/internal/entity"
	"ai-summary-be/internal/pkg/logger"
	"ai-summary-be/pkg/embedding"
	"ai-summary-be/pkg/vectorstore"
)

// recordingStatusStore keeps every transition so tests can assert ordering.
type recordingStatusStore struct {
	mu          sync.Mutex
	transitions []entity.IndexStatus
}

func (r *recordingStatusStore) Set(status entity.IndexStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, status)
}

func (r *recordingStatusStore) Get(sessionID string) (entity.IndexStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.transitions) - 1; i >= 0; i-- {
		if r.transitions[i].SessionID == sessionID {
			return r.transitions[i], true
		}
	}
	return entity.IndexStatus{}, false
}

func (r *recordingStatusStore) Delete(sessionID string) {}

func (r *recordingStatusStore) sequence() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.transitions))
	for i, tr := range r.transitions {
		out[i] = tr.Status
	}
	return out
}

// fakeEmbedder maps any text to a deterministic 3-dim vector.
type fakeEmbedder struct {
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	v := float32(len(text)%7) + 1
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{v, 1, 0.5}},
	}, nil
}

func newIndexerFixture(t *testing.T, embedder embedding.EmbeddingProvider) (IIndexerService, *recordingStatusStore, *vectorstore.Store) {
	t.Helper()
	statuses := &recordingStatusStore{}
	store := vectorstore.NewStore(t.TempDir())
	svc := NewIndexerService(nil, "BUILD_SESSION_INDEX", embedder, store, statuses, 1000, 200, logger.NewNopLogger())
	return svc, statuses, store
}

func TestBuildIndexHappyPath(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc, statuses, store := newIndexerFixture(t, embedder)

	text := strings.Repeat("sentence about the topic. ", 200) // ~5200 chars
	svc.BuildIndex(context.Background(), "s1", text)

	assert.Equal(t, []string{
		constant.IndexStatusBuilding,
		constant.IndexStatusReady,
	}, statuses.sequence())

	final, found := statuses.Get("s1")
	require.True(t, found)
	assert.Equal(t, constant.IndexStatusReady, final.Status)
	assert.Greater(t, final.Chunks, 1)
	assert.Equal(t, final.Chunks, embedder.calls)

	require.True(t, store.Has("s1"), "index must be persisted")
	ix, err := store.Load("s1")
	require.NoError(t, err)
	assert.Equal(t, final.Chunks, ix.ChunkCount())
}

func TestBuildIndexEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("backend down")}
	svc, statuses, store := newIndexerFixture(t, embedder)

	svc.BuildIndex(context.Background(), "s1", "some document text")

	final, found := statuses.Get("s1")
	require.True(t, found)
	assert.Equal(t, constant.IndexStatusFailed, final.Status)
	assert.Contains(t, final.Error, "backend down")
	assert.False(t, store.Has("s1"), "no index persisted on failure")
}

func TestBuildIndexSkipsEmptyText(t *testing.T) {
	svc, statuses, _ := newIndexerFixture(t, &fakeEmbedder{})

	svc.BuildIndex(context.Background(), "s1", "")

	_, found := statuses.Get("s1")
	assert.False(t, found, "empty text must not produce any status")
}

func TestBuildIndexFailsWithoutBackend(t *testing.T) {
	svc, statuses, _ := newIndexerFixture(t, nil)

	svc.BuildIndex(context.Background(), "s1", "some document text")

	final, found := statuses.Get("s1")
	require.True(t, found, "a queued build must not be left pending")
	assert.Equal(t, constant.IndexStatusFailed, final.Status)
	assert.Contains(t, final.Error, "no embedding backend")
}
