package controller

import (
	"strconv"

	"dorm-assistant-be/internal/dto"
	"dorm-assistant-be/internal/pkg/serverutils"
	"dorm-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Answer(ctx *fiber.Ctx) error
	ActiveSession(ctx *fiber.Ctx) error
	EndSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	SessionTurns(ctx *fiber.Ctx) error
	Cleanup(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
}

func NewAssistantController(assistantService service.IAssistantService) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("answer", c.Answer)
	h.Get("session", c.ActiveSession)
	h.Post("session/:id/end", c.EndSession)
	h.Delete("session/:id", c.DeleteSession)
	h.Get("session/:id/turns", c.SessionTurns)
	h.Post("cleanup", c.Cleanup)
}

func (c *assistantController) Answer(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(int64)

	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.Answer(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer query", res))
}

func (c *assistantController) ActiveSession(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(int64)

	res, err := c.assistantService.ActiveSession(ctx.Context(), userId)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.JSON(serverutils.SuccessResponse("No active session", nil))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get active session", res))
}

func (c *assistantController) EndSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	if err := c.assistantService.EndSession(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success end session", nil))
}

func (c *assistantController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	if err := c.assistantService.DeleteSession(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete session", nil))
}

func (c *assistantController) SessionTurns(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	limit, _ := strconv.Atoi(ctx.Query("limit", "10"))

	res, err := c.assistantService.SessionTurns(ctx.Context(), id, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session turns", res))
}

func (c *assistantController) Cleanup(ctx *fiber.Ctx) error {
	retentionDays, _ := strconv.Atoi(ctx.Query("retention_days", "7"))

	res, err := c.assistantService.Cleanup(ctx.Context(), retentionDays)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success cleanup sessions", res))
}
