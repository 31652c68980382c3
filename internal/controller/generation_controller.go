package controller

import (
	"ops-assistant-be/internal/dto"
	"ops-assistant-be/internal/pkg/apperrors"
	"ops-assistant-be/internal/pkg/serverutils"
	"ops-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	GetRun(ctx *fiber.Ctx) error
	GetAllRuns(ctx *fiber.Ctx) error
}

type generationController struct {
	service service.IGenerationService
}

func NewGenerationController(service service.IGenerationService) IGenerationController {
	return &generationController{service: service}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/generation/v1")
	h.Post("/generate", c.Generate)
	h.Get("/runs", c.GetAllRuns)
	h.Get("/runs/:id", c.GetRun)
}

func (c *generationController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate document", res))
}

func (c *generationController) GetRun(ctx *fiber.Ctx) error {
	runId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperrors.NewBadRequest("run id must be a valid UUID")
	}

	res, err := c.service.GetRun(ctx.Context(), runId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get generation run", res))
}

func (c *generationController) GetAllRuns(ctx *fiber.Ctx) error {
	res, err := c.service.GetAllRuns(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get generation runs", res))
}
