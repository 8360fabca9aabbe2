package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"golang.org/x/sync/errgroup"

	"ai-summary-be/internal/constant"
	"ai-summary-be/internal/dto"
	"ai-summary-be/internal/entity"
	"ai-summary-be/internal/pkg/logger"
	"ai-summary-be/pkg/embedding"
	"ai-summary-be/pkg/utils"
	"ai-summary-be/pkg/vectorstore"
)

// embedWorkers bounds how many chunk embedding calls run at once per build.
const embedWorkers = 4

type IIndexerService interface {
	Consume(ctx context.Context) error
	BuildIndex(ctx context.Context, sessionID, text string)
}

type indexerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	embeddingProvider embedding.EmbeddingProvider
	indexes           *vectorstore.Store
	statuses          IndexStatusStore
	chunkSize         int
	chunkOverlap      int
	log               logger.ILogger
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	embeddingProvider embedding.EmbeddingProvider,
	indexes *vectorstore.Store,
	statuses IndexStatusStore,
	chunkSize int,
	chunkOverlap int,
	log logger.ILogger,
) IIndexerService {
	return &indexerService{
		pubSub:            pubSub,
		topicName:         topicName,
		embeddingProvider: embeddingProvider,
		indexes:           indexes,
		statuses:          statuses,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
		log:               log,
	}
}

func (s *indexerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	// In-process channel, no redelivery: always Ack so the subscriber
	// never stalls on a bad message.
	defer msg.Ack()

	var payload dto.BuildIndexMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.log.Error("indexer", "Failed to unmarshal build message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.BuildIndex(ctx, payload.SessionID, payload.Text)
}

// BuildIndex runs one full index build: split, embed, assemble, persist.
// Status moves building -> ready on success, building -> failed on any
// error. Empty text skips the build without touching the status; a
// missing embedding backend fails it.
func (s *indexerService) BuildIndex(ctx context.Context, sessionID, text string) {
	if text == "" {
		s.log.Warn("indexer", "Skipping build for empty text", map[string]interface{}{
			"session_id": sessionID,
		})
		return
	}
	if s.embeddingProvider == nil {
		// The uploader already marked this session pending; leave a
		// terminal status instead of stranding it there
		s.fail(sessionID, "no embedding backend configured")
		return
	}

	s.statuses.Set(entity.IndexStatus{
		SessionID: sessionID,
		Status:    constant.IndexStatusBuilding,
	})

	chunks := utils.SplitText(text, s.chunkSize, s.chunkOverlap)
	s.log.Info("indexer", "Building session index", map[string]interface{}{
		"session_id": sessionID,
		"chunks":     len(chunks),
	})

	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedWorkers)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			resp, err := s.embeddingProvider.Generate(chunk, embedding.TaskTypeDocument)
			if err != nil {
				return err
			}
			vectors[i] = resp.Embedding.Values
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.fail(sessionID, "embed chunks: "+err.Error())
		return
	}

	ix, err := vectorstore.Build(vectors, chunks)
	if err != nil {
		s.fail(sessionID, "assemble index: "+err.Error())
		return
	}

	if err := s.indexes.Persist(sessionID, ix); err != nil {
		s.fail(sessionID, "persist index: "+err.Error())
		return
	}

	s.statuses.Set(entity.IndexStatus{
		SessionID: sessionID,
		Status:    constant.IndexStatusReady,
		Chunks:    ix.ChunkCount(),
	})
	s.log.Info("indexer", "Session index ready", map[string]interface{}{
		"session_id": sessionID,
		"chunks":     ix.ChunkCount(),
		"dims":       ix.Dimensions(),
	})
}

func (s *indexerService) fail(sessionID, reason string) {
	s.statuses.Set(entity.IndexStatus{
		SessionID: sessionID,
		Status:    constant.IndexStatusFailed,
		Error:     reason,
	})
	s.log.Error("indexer", "Index build failed", map[string]interface{}{
		"session_id": sessionID,
		"error":      reason,
	})
}
