package controller

import (
	"bufio"
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"ai-summary-be/internal/constant"
	"ai-summary-be/internal/dto"
	"ai-summary-be/internal/pkg/logger"
	"ai-summary-be/internal/pkg/serverutils"
	"ai-summary-be/internal/service"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	Summarize(ctx *fiber.Ctx) error
	Lesson(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
	ClearChat(ctx *fiber.Ctx) error
}

type generationController struct {
	generationService service.IGenerationService
	log               logger.ILogger
}

func NewGenerationController(generationService service.IGenerationService, log logger.ILogger) IGenerationController {
	return &generationController{
		generationService: generationService,
		log:               log,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	r.Get("/summarize", c.Summarize)
	r.Get("/agent", c.Lesson)
	r.Get("/chat", c.Chat)
	r.Delete("/chat/:id", c.ClearChat)
}

func (c *generationController) Summarize(ctx *fiber.Ctx) error {
	return c.stream(ctx, constant.ModeSummary)
}

func (c *generationController) Lesson(ctx *fiber.Ctx) error {
	return c.stream(ctx, constant.ModeLesson)
}

func (c *generationController) Chat(ctx *fiber.Ctx) error {
	return c.stream(ctx, constant.ModeChat)
}

func (c *generationController) ClearChat(ctx *fiber.Ctx) error {
	cleared := c.generationService.ClearMemory(ctx.Params("id"))
	return ctx.JSON(serverutils.SuccessResponse("Chat memory cleared", dto.ClearChatResponse{
		Cleared: cleared,
	}))
}

// stream validates the request and hands the connection over to an SSE
// body writer. Once the writer starts, errors travel as stream events, not
// HTTP statuses.
func (c *generationController) stream(ctx *fiber.Ctx, mode string) error {
	req := dto.GenerationRequest{
		SessionID: ctx.Query("session_id"),
		Query:     ctx.Query("q"),
		Mode:      mode,
		Model:     ctx.Query("model"),
		Language:  ctx.Query("language"),
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// The fiber context is recycled after this handler returns; the
	// stream writer runs later and must not touch it. req is a value
	// copy, which is all the service needs.
	streamCtx, cancel := context.WithCancel(context.Background())

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		emit := func(ev dto.StreamEvent) error {
			if err := serverutils.WriteStreamEvent(w, ev); err != nil {
				cancel()
				return err
			}
			if err := w.Flush(); err != nil {
				// Flush failing means the client hung up; cancel so the
				// backend stream is torn down too
				cancel()
				return err
			}
			return nil
		}

		if err := c.generationService.Stream(streamCtx, &req, emit); err != nil {
			c.log.Debug("generation", "Stream ended early", map[string]interface{}{
				"mode":  mode,
				"error": err.Error(),
			})
		}
	}))

	return nil
}
