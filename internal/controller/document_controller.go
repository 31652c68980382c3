package controller

import (
	"strconv"
	"strings"

	"ops-assistant-be/internal/dto"
	"ops-assistant-be/internal/pkg/apperrors"
	"ops-assistant-be/internal/pkg/serverutils"
	"ops-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	GetMeta(ctx *fiber.Ctx) error
	GetSourceChunk(ctx *fiber.Ctx) error
	SemanticSearch(ctx *fiber.Ctx) error
}

type documentController struct {
	ingestionService service.IIngestionService
	documentService  service.IDocumentService
}

func NewDocumentController(
	ingestionService service.IIngestionService,
	documentService service.IDocumentService,
) IDocumentController {
	return &documentController{
		ingestionService: ingestionService,
		documentService:  documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Post("/ingest", c.Ingest)
	h.Get("/semantic-search", c.SemanticSearch)
	h.Get("", c.GetAll)
	h.Get(":docId/meta", c.GetMeta)
	h.Get(":docId/chunks/:chunkId", c.GetSourceChunk)
	h.Delete(":docId", c.Delete)
}

func (c *documentController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestionService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success ingest document", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	docId, err := uuid.Parse(ctx.Params("docId"))
	if err != nil {
		return apperrors.NewBadRequest("docId must be a valid UUID")
	}

	if err := c.ingestionService.Delete(ctx.Context(), docId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.documentService.GetAll(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all documents", res))
}

func (c *documentController) GetMeta(ctx *fiber.Ctx) error {
	docId, err := uuid.Parse(ctx.Params("docId"))
	if err != nil {
		return apperrors.NewBadRequest("docId must be a valid UUID")
	}

	res, err := c.documentService.GetMeta(ctx.Context(), docId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get document meta", res))
}

func (c *documentController) GetSourceChunk(ctx *fiber.Ctx) error {
	docId, err := uuid.Parse(ctx.Params("docId"))
	if err != nil {
		return apperrors.NewBadRequest("docId must be a valid UUID")
	}
	chunkId, err := strconv.Atoi(ctx.Params("chunkId"))
	if err != nil || chunkId < 0 {
		return apperrors.NewBadRequest("chunkId must be a non-negative integer")
	}

	res, err := c.documentService.GetSourceChunk(ctx.Context(), docId, chunkId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get source chunk", res))
}

func (c *documentController) SemanticSearch(ctx *fiber.Ctx) error {
	req := dto.SemanticSearchRequest{
		Query: ctx.Query("q"),
		TopK:  ctx.QueryInt("top_k"),
	}
	if req.Query == "" {
		return apperrors.NewBadRequest("q query parameter is required")
	}
	if raw := ctx.Query("doc_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return apperrors.NewBadRequest("doc_ids must be comma-separated UUIDs")
			}
			req.DocIds = append(req.DocIds, id)
		}
	}

	res, err := c.documentService.SemanticSearch(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success semantic search", res))
}
