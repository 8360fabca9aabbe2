package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-summary-be/internal/constant"
	"ai-summary-be/internal/dto"
	"ai-summary-be/internal/entity"
	"ai-summary-be/internal/pkg/logger"
	"ai-summary-be/internal/repository/memory"
	"ai-summary-be/pkg/extract"
	"ai-summary-be/pkg/vectorstore"
)

type fakeHistoryStore struct {
	mu      sync.Mutex
	records map[string]entity.SessionHistory
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{records: make(map[string]entity.SessionHistory)}
}

func (f *fakeHistoryStore) Upsert(record entity.SessionHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.SessionID] = record
	return nil
}

func (f *fakeHistoryStore) UpdateStatus(sessionID, status string, characters, words, readingMinutes, pages int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := f.records[sessionID]
	rec.SessionID = sessionID
	rec.Status = status
	rec.Characters = characters
	rec.Words = words
	rec.ReadingMinutes = readingMinutes
	rec.Pages = pages
	f.records[sessionID] = rec
	return nil
}

func (f *fakeHistoryStore) ListRecent(limit int) ([]entity.SessionHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.SessionHistory, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeHistoryStore) get(sessionID string) entity.SessionHistory {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[sessionID]
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

type documentFixture struct {
	sessions  *memory.SessionRepository
	statuses  *memory.IndexStatusRepository
	history   *fakeHistoryStore
	tracker   *memory.TaskTracker
	indexes   *vectorstore.Store
	publisher *fakePublisher
	svc       IDocumentService
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	f := &documentFixture{
		sessions:  memory.NewSessionRepository(time.Minute),
		statuses:  memory.NewIndexStatusRepository(),
		history:   newFakeHistoryStore(),
		tracker:   memory.NewTaskTracker(),
		indexes:   vectorstore.NewStore(t.TempDir()),
		publisher: &fakePublisher{},
	}
	f.svc = NewDocumentService(
		f.sessions,
		f.statuses,
		f.history,
		f.tracker,
		f.indexes,
		extract.NewPlainTextExtractor(),
		f.publisher,
		1024, // small max size to make the limit testable
		"gemma:2b",
		[]string{"gemma:2b", "llama3"},
		logger.NewNopLogger(),
	)
	return f
}

// awaitExtraction blocks until the background goroutine for the session
// has finished.
func (f *documentFixture) awaitExtraction(t *testing.T, sessionID string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.tracker.AwaitIfPending(ctx, sessionID))
}

func TestUploadValidation(t *testing.T) {
	f := newDocumentFixture(t)

	tests := []struct {
		name        string
		data        []byte
		contentType string
		wantErr     error
	}{
		{"empty file", nil, "text/plain", ErrEmptyFile},
		{"oversized file", make([]byte, 2048), "text/plain", ErrFileTooLarge},
		{"unsupported type", []byte("x"), "image/png", ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Upload(context.Background(), "doc.bin", tt.contentType, tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUploadReturnsBeforeExtraction(t *testing.T) {
	f := newDocumentFixture(t)

	res, err := f.svc.Upload(context.Background(), "doc.txt", "text/plain", []byte("the quick brown fox"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.SessionID)
	assert.Zero(t, res.Characters, "character count is not known at accept time")
	assert.Equal(t, 19, res.FileSize)

	f.awaitExtraction(t, res.SessionID)

	session, found := f.sessions.Get(res.SessionID)
	require.True(t, found)
	assert.True(t, session.Extracted)
	assert.Equal(t, "the quick brown fox", session.Text)
}

func TestUploadQueuesIndexBuild(t *testing.T) {
	f := newDocumentFixture(t)

	res, err := f.svc.Upload(context.Background(), "doc.txt", "text/plain", []byte("document worth indexing"))
	require.NoError(t, err)
	f.awaitExtraction(t, res.SessionID)

	require.Equal(t, 1, f.publisher.count())

	var msg dto.BuildIndexMessage
	require.NoError(t, json.Unmarshal(f.publisher.payloads[0], &msg))
	assert.Equal(t, res.SessionID, msg.SessionID)
	assert.Equal(t, "document worth indexing", msg.Text)

	status, found := f.statuses.Get(res.SessionID)
	require.True(t, found)
	assert.Equal(t, constant.IndexStatusPending, status.Status)

	rec := f.history.get(res.SessionID)
	assert.Equal(t, constant.HistoryStatusReady, rec.Status)
	assert.Equal(t, 23, rec.Characters)
	assert.Equal(t, 3, rec.Words)
	assert.Equal(t, 1, rec.Pages, "plain text counts as a single page")
}

func TestUploadEmptyTextSkipsIndexing(t *testing.T) {
	f := newDocumentFixture(t)

	res, err := f.svc.Upload(context.Background(), "blank.txt", "text/plain", []byte("   \n  "))
	require.NoError(t, err)
	f.awaitExtraction(t, res.SessionID)

	assert.Zero(t, f.publisher.count(), "nothing to index")
	_, found := f.statuses.Get(res.SessionID)
	assert.False(t, found, "no index status for empty text")
	assert.Equal(t, constant.HistoryStatusEmpty, f.history.get(res.SessionID).Status)
}

func TestUploadBinaryPayloadMarksFailed(t *testing.T) {
	f := newDocumentFixture(t)

	res, err := f.svc.Upload(context.Background(), "doc.pdf", "application/pdf", []byte{0xff, 0xfe, 0x80})
	require.NoError(t, err, "extraction failures surface in history, not at accept time")
	f.awaitExtraction(t, res.SessionID)

	session, found := f.sessions.Get(res.SessionID)
	require.True(t, found)
	assert.False(t, session.Extracted)
	assert.Equal(t, constant.HistoryStatusFailed, f.history.get(res.SessionID).Status)
	assert.Zero(t, f.publisher.count())
}

func TestDeleteSession(t *testing.T) {
	f := newDocumentFixture(t)

	res, err := f.svc.Upload(context.Background(), "doc.txt", "text/plain", []byte("delete me later"))
	require.NoError(t, err)
	f.awaitExtraction(t, res.SessionID)

	out, err := f.svc.Delete(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.True(t, out.Removed)

	_, found := f.sessions.Get(res.SessionID)
	assert.False(t, found)

	out, err = f.svc.Delete(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.False(t, out.Removed, "second delete finds nothing")
}

func TestIndexStatusUnknownSession(t *testing.T) {
	f := newDocumentFixture(t)

	res, found := f.svc.IndexStatus("nope")
	assert.False(t, found)
	assert.Equal(t, constant.IndexStatusNotFound, res.Status)
}

func TestIndexStatusFromPersistedIndex(t *testing.T) {
	f := newDocumentFixture(t)

	ix, err := vectorstore.Build([][]float32{{1, 0}, {0, 1}}, []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, f.indexes.Persist("old-session", ix))

	res, found := f.svc.IndexStatus("old-session")
	assert.True(t, found)
	assert.Equal(t, constant.IndexStatusReady, res.Status)
	assert.Equal(t, 2, res.Chunks)
}

func TestModelsAndHealth(t *testing.T) {
	f := newDocumentFixture(t)

	models := f.svc.Models()
	assert.Equal(t, "gemma:2b", models.Default)
	assert.Equal(t, []string{"gemma:2b", "llama3"}, models.Models)

	health := f.svc.Health()
	assert.Equal(t, "ok", health.Status)
	assert.Zero(t, health.Sessions)
}
