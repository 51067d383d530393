package controller

import (
	"ai-botbuilder-be/internal/dto"
	"ai-botbuilder-be/internal/pkg/serverutils"
	"ai-botbuilder-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IBuilderController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	Repair(ctx *fiber.Ctx) error
	ListRuns(ctx *fiber.Ctx) error
	ShowRun(ctx *fiber.Ctx) error
}

type builderController struct {
	builderService service.IBuilderService
}

func NewBuilderController(builderService service.IBuilderService) IBuilderController {
	return &builderController{
		builderService: builderService,
	}
}

func (c *builderController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/builder/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("generate", c.Generate)
	h.Post("repair", c.Repair)
	h.Get("runs", c.ListRuns)
	h.Get("runs/:id", c.ShowRun)
}

func (c *builderController) Generate(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.GenerateBotRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.builderService.Generate(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Bot generated", res))
}

func (c *builderController) Repair(ctx *fiber.Ctx) error {
	var req dto.RepairRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.builderService.Repair(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Repair attempted", res))
}

func (c *builderController) ListRuns(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.builderService.ListRuns(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Generation runs", res))
}

func (c *builderController) ShowRun(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid run ID"))
	}

	res, err := c.builderService.ShowRun(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Run not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Run details", res))
}
