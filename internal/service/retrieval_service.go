package service

import (
	"context"
	"errors"
	"fmt"

	"ai-summary-be/pkg/embedding"
	"ai-summary-be/pkg/vectorstore"
)

var (
	ErrIndexNotFound   = errors.New("no index exists for this session")
	ErrNoSearchBackend = errors.New("no embedding backend configured")
)

type IRetrievalService interface {
	HasIndex(sessionID string) bool
	Query(ctx context.Context, sessionID, query string, k int) ([]string, error)
}

type retrievalService struct {
	indexes           *vectorstore.Store
	embeddingProvider embedding.EmbeddingProvider
}

func NewRetrievalService(indexes *vectorstore.Store, embeddingProvider embedding.EmbeddingProvider) IRetrievalService {
	return &retrievalService{
		indexes:           indexes,
		embeddingProvider: embeddingProvider,
	}
}

func (s *retrievalService) HasIndex(sessionID string) bool {
	return s.indexes.Has(sessionID)
}

// Query embeds the search string and returns the k nearest chunk texts
// from the session's index, closest first.
func (s *retrievalService) Query(ctx context.Context, sessionID, query string, k int) ([]string, error) {
	if s.embeddingProvider == nil {
		return nil, ErrNoSearchBackend
	}
	if !s.indexes.Has(sessionID) {
		return nil, ErrIndexNotFound
	}

	resp, err := s.embeddingProvider.Generate(query, embedding.TaskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if resp == nil || len(resp.Embedding.Values) == 0 {
		return nil, ErrNoSearchBackend
	}

	ix, err := s.indexes.Load(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	return ix.Search(resp.Embedding.Values, k)
}
