package controller

import (
	"errors"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ai-summary-be/internal/pkg/serverutils"
	"ai-summary-be/internal/service"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	IndexStatus(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	Models(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Post("/upload", c.Upload)
	r.Delete("/session/:id", c.Delete)
	r.Get("/index-status/:id", c.IndexStatus)
	r.Get("/sessions", c.ListSessions)
	r.Get("/models", c.Models)
	r.Get("/health", c.Health)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field 'file' is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot read uploaded file")
	}

	contentType := fileHeader.Header.Get("Content-Type")

	res, err := c.documentService.Upload(ctx.Context(), fileHeader.Filename, contentType, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUnsupportedType):
			return fiber.NewError(fiber.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, service.ErrEmptyFile):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Upload accepted", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	res, err := c.documentService.Delete(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session removed", res))
}

func (c *documentController) IndexStatus(ctx *fiber.Ctx) error {
	res, found := c.documentService.IndexStatus(ctx.Params("id"))
	if !found {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.Response{
			Success: false,
			Message: "No index for session",
			Data:    res,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Index status", res))
}

func (c *documentController) ListSessions(ctx *fiber.Ctx) error {
	limit, _ := strconv.Atoi(ctx.Query("limit", "0"))

	res, err := c.documentService.ListSessions(limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Recent sessions", res))
}

func (c *documentController) Models(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Available models", c.documentService.Models()))
}

func (c *documentController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(c.documentService.Health())
}
