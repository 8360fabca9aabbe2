package service

import (
	"context"
	"strings"

	"ai-summary-be/internal/constant"
	"ai-summary-be/internal/dto"
	"ai-summary-be/internal/entity"
	"ai-summary-be/internal/pkg/logger"
	"ai-summary-be/pkg/cache"
	"ai-summary-be/pkg/llm"
	"ai-summary-be/pkg/prompt"
)

const (
	// retrievalK is how many chunks a retrieval-backed prompt gets.
	retrievalK = 4
	// replayChunkRunes sizes the content frames when replaying a cached
	// response, so a cache hit still arrives as a stream.
	replayChunkRunes = 800
	// inlineTextLimit is the rune count under which chat prompts carry the
	// full document instead of relying on retrieval alone.
	inlineTextLimit = 3000
)

// EmitFunc delivers one event to the client. A non-nil error means the
// client is gone and the stream must stop.
type EmitFunc func(ev dto.StreamEvent) error

type IGenerationService interface {
	Stream(ctx context.Context, req *dto.GenerationRequest, emit EmitFunc) error
	ClearMemory(sessionID string) bool
}

type generationService struct {
	sessions        SessionStore
	tracker         ExtractionTracker
	retrieval       IRetrievalService
	responses       *cache.ResponseCache
	chatMemory      ChatMemoryStore
	llmProvider     llm.LLMProvider
	defaultModel    string
	defaultLanguage string
	maxTokens       int
	log             logger.ILogger
}

func NewGenerationService(
	sessions SessionStore,
	tracker ExtractionTracker,
	retrieval IRetrievalService,
	responses *cache.ResponseCache,
	chatMemory ChatMemoryStore,
	llmProvider llm.LLMProvider,
	defaultModel string,
	defaultLanguage string,
	maxTokens int,
	log logger.ILogger,
) IGenerationService {
	return &generationService{
		sessions:        sessions,
		tracker:         tracker,
		retrieval:       retrieval,
		responses:       responses,
		chatMemory:      chatMemory,
		llmProvider:     llmProvider,
		defaultModel:    defaultModel,
		defaultLanguage: defaultLanguage,
		maxTokens:       maxTokens,
		log:             log,
	}
}

// Stream runs one generation end to end: resolve the session text, check
// the response cache, otherwise build a prompt and forward model tokens as
// they arrive. Failures after the stream opens surface as a single error
// event; a completed stream always ends with DONE.
func (s *generationService) Stream(ctx context.Context, req *dto.GenerationRequest, emit EmitFunc) error {
	if err := emit(dto.StatusEvent(constant.StreamStatusStart)); err != nil {
		return err
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	language := req.Language
	if language == "" {
		language = s.defaultLanguage
	}

	text, err := s.resolveText(ctx, req.SessionID, emit)
	if err != nil {
		return err
	}

	if req.Mode != constant.ModeChat && text == "" {
		return s.abort(emit, "no extractable text is available for this session")
	}
	if req.Mode == constant.ModeChat && req.Query == "" {
		return s.abort(emit, "chat mode requires a question")
	}

	history := s.chatHistory(req)

	// The conversation digest is part of the key: the same question after
	// new turns is a different request.
	key := s.responses.Fingerprint(text, req.Mode, model, language, req.Query, digestTurns(history))

	if cached, found := s.responses.Get(key); found {
		s.log.Info("generation", "Serving cached response", map[string]interface{}{
			"mode":  req.Mode,
			"model": model,
		})
		if err := emit(dto.StatusEvent(constant.StreamStatusCacheHit)); err != nil {
			return err
		}
		if err := s.replay(cached, emit); err != nil {
			return err
		}
		s.remember(req, cached)
		return emit(dto.StatusEvent(constant.StreamStatusDone))
	}

	promptText := s.buildPrompt(ctx, req, text, history, language)

	opts := []llm.Option{llm.WithModel(model)}
	if s.maxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(s.maxTokens))
	}

	var full strings.Builder
	streamErr := s.llmProvider.Stream(ctx, promptText, func(token string) error {
		full.WriteString(token)
		return emit(dto.ContentEvent(token))
	}, opts...)

	if streamErr != nil {
		if ctx.Err() != nil {
			// Client went away; nothing to tell it
			return streamErr
		}
		s.log.Error("generation", "Model stream failed", map[string]interface{}{
			"mode":  req.Mode,
			"model": model,
			"error": streamErr.Error(),
		})
		return s.abort(emit, "generation failed, please retry")
	}

	// Only complete responses are cacheable
	s.responses.Set(key, full.String(), 0)
	s.remember(req, full.String())

	return emit(dto.StatusEvent(constant.StreamStatusDone))
}

// ClearMemory drops the session's conversation history.
func (s *generationService) ClearMemory(sessionID string) bool {
	return s.chatMemory.Clear(sessionID)
}

// resolveText returns the session's extracted text, waiting out an
// in-flight extraction first. Requests without a session get empty text.
func (s *generationService) resolveText(ctx context.Context, sessionID string, emit EmitFunc) (string, error) {
	if sessionID == "" {
		return "", nil
	}

	if s.tracker.IsPending(sessionID) {
		if err := emit(dto.StatusEvent(constant.StreamStatusExtracting)); err != nil {
			return "", err
		}
		if err := s.tracker.AwaitIfPending(ctx, sessionID); err != nil {
			return "", err
		}
	}

	session, found := s.sessions.Get(sessionID)
	if !found || !session.Extracted {
		return "", nil
	}
	return session.Text, nil
}

// chatHistory returns prior turns for chat requests bound to a session.
func (s *generationService) chatHistory(req *dto.GenerationRequest) []entity.ChatTurn {
	if req.Mode != constant.ModeChat || req.SessionID == "" {
		return nil
	}
	return s.chatMemory.List(req.SessionID)
}

// remember records the finished exchange in conversation memory.
func (s *generationService) remember(req *dto.GenerationRequest, answer string) {
	if req.Mode != constant.ModeChat || req.SessionID == "" {
		return
	}
	s.chatMemory.Append(req.SessionID,
		entity.ChatTurn{Role: "user", Content: req.Query},
		entity.ChatTurn{Role: "assistant", Content: answer},
	)
}

func digestTurns(history []entity.ChatTurn) string {
	if len(history) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, turn := range history {
		sb.WriteString(turn.Role)
		sb.WriteString("\x1f")
		sb.WriteString(turn.Content)
		sb.WriteString("\x1e")
	}
	return sb.String()
}

func (s *generationService) buildPrompt(ctx context.Context, req *dto.GenerationRequest, text string, history []entity.ChatTurn, language string) string {
	switch req.Mode {
	case constant.ModeSummary:
		return prompt.BuildSummary(text, language)
	case constant.ModeLesson:
		retrieved := s.retrieve(ctx, req.SessionID, req.Query)
		return prompt.BuildLesson(text, retrieved, language)
	default:
		retrieved := s.retrieve(ctx, req.SessionID, req.Query)
		core := ""
		if len([]rune(text)) < inlineTextLimit {
			core = text
		}
		turns := make([]prompt.Turn, len(history))
		for i, turn := range history {
			turns[i] = prompt.Turn{Role: turn.Role, Content: turn.Content}
		}
		return prompt.BuildChat(req.Query, core, retrieved, turns, language)
	}
}

// retrieve fetches supporting chunks when an index and a query exist.
// Retrieval is best effort; a failed or missing index just means the
// prompt goes out without passages.
func (s *generationService) retrieve(ctx context.Context, sessionID, query string) []string {
	if sessionID == "" || query == "" {
		return nil
	}

	chunks, err := s.retrieval.Query(ctx, sessionID, query, retrievalK)
	if err != nil {
		s.log.Debug("generation", "Retrieval skipped", map[string]interface{}{
			"session_id": sessionID,
			"reason":     err.Error(),
		})
		return nil
	}
	return chunks
}

// replay streams a cached response back in fixed-size slices so the client
// sees the same incremental delivery as a live generation.
func (s *generationService) replay(cached string, emit EmitFunc) error {
	runes := []rune(cached)
	for start := 0; start < len(runes); start += replayChunkRunes {
		end := start + replayChunkRunes
		if end > len(runes) {
			end = len(runes)
		}
		if err := emit(dto.ContentEvent(string(runes[start:end]))); err != nil {
			return err
		}
	}
	return nil
}

// abort sends the terminal error event. The stream ends without DONE.
func (s *generationService) abort(emit EmitFunc, message string) error {
	return emit(dto.ErrorEvent(message))
}
