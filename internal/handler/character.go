package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/scriptforge/api/internal/middleware"
	"github.com/scriptforge/api/internal/model"
	"github.com/scriptforge/api/internal/service"
	"github.com/scriptforge/api/pkg/response"
)

type CharacterHandler struct {
	service   *service.CharacterService
	validator *validator.Validate
}

func NewCharacterHandler(svc *service.CharacterService, v *validator.Validate) *CharacterHandler {
	return &CharacterHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /api/characters
func (h *CharacterHandler) Create(c *fiber.Ctx) error {
	var req model.CharacterCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Create(c.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		return serviceError(c, err)
	}

	return response.Created(c, result)
}

// List handles GET /api/characters
func (h *CharacterHandler) List(c *fiber.Ctx) error {
	result, err := h.service.List(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, fiber.Map{"characters": result})
}

// Get handles GET /api/characters/:characterId
func (h *CharacterHandler) Get(c *fiber.Ctx) error {
	id := c.Params("characterId")
	if id == "" {
		return response.ValidationError(c, "Character ID is required", nil)
	}

	result, err := h.service.Get(c.Context(), middleware.GetUserID(c), id)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

// Update handles PATCH /api/characters/:characterId
func (h *CharacterHandler) Update(c *fiber.Ctx) error {
	id := c.Params("characterId")
	if id == "" {
		return response.ValidationError(c, "Character ID is required", nil)
	}

	var req model.CharacterUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Update(c.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

// Delete handles DELETE /api/characters/:characterId
func (h *CharacterHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("characterId")
	if id == "" {
		return response.ValidationError(c, "Character ID is required", nil)
	}

	if err := h.service.Delete(c.Context(), middleware.GetUserID(c), id); err != nil {
		return serviceError(c, err)
	}

	return response.NoContent(c)
}
