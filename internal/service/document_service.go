package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-summary-be/internal/constant"
	"ai-summary-be/internal/dto"
	"ai-summary-be/internal/entity"
	"ai-summary-be/internal/pkg/logger"
	"ai-summary-be/pkg/extract"
	"ai-summary-be/pkg/vectorstore"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrEmptyFile       = errors.New("uploaded file is empty")
)

// wordsPerMinute feeds the estimated reading time on the history journal.
const wordsPerMinute = 200

type IDocumentService interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (*dto.UploadResponse, error)
	Delete(ctx context.Context, sessionID string) (*dto.DeleteSessionResponse, error)
	IndexStatus(sessionID string) (*dto.IndexStatusResponse, bool)
	ListSessions(limit int) (*dto.ListSessionsResponse, error)
	Models() *dto.ModelsResponse
	Health() *dto.HealthResponse
}

type documentService struct {
	sessions         SessionStore
	statuses         IndexStatusStore
	history          HistoryStore
	tracker          ExtractionTracker
	indexes          *vectorstore.Store
	extractor        extract.TextExtractor
	publisherService IPublisherService
	maxFileSize      int
	defaultModel     string
	models           []string
	log              logger.ILogger
}

func NewDocumentService(
	sessions SessionStore,
	statuses IndexStatusStore,
	history HistoryStore,
	tracker ExtractionTracker,
	indexes *vectorstore.Store,
	extractor extract.TextExtractor,
	publisherService IPublisherService,
	maxFileSize int,
	defaultModel string,
	models []string,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		sessions:         sessions,
		statuses:         statuses,
		history:          history,
		tracker:          tracker,
		indexes:          indexes,
		extractor:        extractor,
		publisherService: publisherService,
		maxFileSize:      maxFileSize,
		defaultModel:     defaultModel,
		models:           models,
		log:              log,
	}
}

// Upload validates the payload, records the session, and hands the heavy
// work to a background goroutine. The response returns before any text has
// been extracted, so Characters is always zero here.
func (s *documentService) Upload(ctx context.Context, filename, contentType string, data []byte) (*dto.UploadResponse, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if len(data) > s.maxFileSize {
		return nil, ErrFileTooLarge
	}
	if !acceptableContentType(contentType) {
		return nil, ErrUnsupportedType
	}

	sessionID := uuid.New().String()

	record := entity.SessionHistory{
		SessionID:  sessionID,
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		Status:     constant.HistoryStatusProcessing,
		FileSize:   len(data),
	}
	if err := s.history.Upsert(record); err != nil {
		// History is a journal, not a dependency of the pipeline
		s.log.Warn("document", "Failed to record upload history", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	done := s.tracker.Register(sessionID)
	go s.extractAndStore(sessionID, data, done)

	s.log.Info("document", "Upload accepted", map[string]interface{}{
		"session_id": sessionID,
		"filename":   filename,
		"file_size":  len(data),
	})

	return &dto.UploadResponse{
		SessionID: sessionID,
		FileSize:  len(data),
	}, nil
}

func acceptableContentType(contentType string) bool {
	switch {
	case contentType == "application/pdf":
		return true
	case contentType == "application/octet-stream":
		return true
	case strings.HasPrefix(contentType, "text/"):
		return true
	}
	return false
}

// extractAndStore runs off the request path. A session entity is saved in
// every outcome so waiters always find something once the tracker releases
// them.
func (s *documentService) extractAndStore(sessionID string, data []byte, done func()) {
	defer done()

	session := &entity.Session{
		ID:        sessionID,
		CreatedAt: time.Now().UTC(),
	}

	result, err := s.extractor.Extract(data)
	if err != nil {
		s.sessions.Save(session)
		s.updateHistory(sessionID, constant.HistoryStatusFailed, "", 0)
		s.log.Error("document", "Text extraction failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	session.Text = result.Text
	session.Extracted = true
	s.sessions.Save(session)

	if result.Text == "" {
		s.updateHistory(sessionID, constant.HistoryStatusEmpty, "", 0)
		s.log.Warn("document", "No extractable text in upload", map[string]interface{}{
			"session_id": sessionID,
		})
		return
	}

	s.updateHistory(sessionID, constant.HistoryStatusReady, result.Text, result.Pages)

	// Queue the semantic index build; the consumer owns the status from
	// building onward.
	s.statuses.Set(entity.IndexStatus{
		SessionID: sessionID,
		Status:    constant.IndexStatusPending,
	})

	payload, err := json.Marshal(dto.BuildIndexMessage{
		SessionID: sessionID,
		Text:      result.Text,
	})
	if err != nil {
		s.statuses.Set(entity.IndexStatus{
			SessionID: sessionID,
			Status:    constant.IndexStatusFailed,
			Error:     "marshal build message: " + err.Error(),
		})
		return
	}
	if err := s.publisherService.Publish(context.Background(), payload); err != nil {
		s.statuses.Set(entity.IndexStatus{
			SessionID: sessionID,
			Status:    constant.IndexStatusFailed,
			Error:     "queue build: " + err.Error(),
		})
		s.log.Error("document", "Failed to queue index build", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func (s *documentService) updateHistory(sessionID, status, text string, pages int) {
	characters := len([]rune(text))
	words := len(strings.Fields(text))
	readingMinutes := 0
	if words > 0 {
		readingMinutes = words / wordsPerMinute
		if readingMinutes < 1 {
			readingMinutes = 1
		}
	}
	if err := s.history.UpdateStatus(sessionID, status, characters, words, readingMinutes, pages); err != nil {
		s.log.Warn("document", "Failed to update upload history", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

// Delete drops the session text, its build status, and any persisted
// index. Cached responses are content-addressed and left alone; they
// expire on their own.
func (s *documentService) Delete(ctx context.Context, sessionID string) (*dto.DeleteSessionResponse, error) {
	hadIndex := s.indexes.Has(sessionID)
	hadSession := s.sessions.Delete(sessionID)
	s.statuses.Delete(sessionID)

	if err := s.indexes.Delete(sessionID); err != nil {
		s.log.Warn("document", "Failed to remove persisted index", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	return &dto.DeleteSessionResponse{
		Removed: hadSession || hadIndex,
	}, nil
}

// IndexStatus reports the build state. A session with a persisted index
// but no in-memory status (earlier process run) counts as ready.
func (s *documentService) IndexStatus(sessionID string) (*dto.IndexStatusResponse, bool) {
	if status, found := s.statuses.Get(sessionID); found {
		return &dto.IndexStatusResponse{
			Status: status.Status,
			Chunks: status.Chunks,
			Error:  status.Error,
		}, true
	}

	if s.indexes.Has(sessionID) {
		resp := &dto.IndexStatusResponse{Status: constant.IndexStatusReady}
		if ix, err := s.indexes.Load(sessionID); err == nil {
			resp.Chunks = ix.ChunkCount()
		}
		return resp, true
	}

	return &dto.IndexStatusResponse{Status: constant.IndexStatusNotFound}, false
}

func (s *documentService) ListSessions(limit int) (*dto.ListSessionsResponse, error) {
	entries, err := s.history.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []entity.SessionHistory{}
	}
	return &dto.ListSessionsResponse{Sessions: entries}, nil
}

func (s *documentService) Models() *dto.ModelsResponse {
	return &dto.ModelsResponse{
		Default: s.defaultModel,
		Models:  s.models,
	}
}

func (s *documentService) Health() *dto.HealthResponse {
	return &dto.HealthResponse{
		Status:   "ok",
		Sessions: s.sessions.Count(),
	}
}
