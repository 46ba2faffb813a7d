package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/scriptforge/api/internal/middleware"
	"github.com/scriptforge/api/internal/model"
	"github.com/scriptforge/api/internal/service"
	"github.com/scriptforge/api/pkg/response"
)

type ScriptHandler struct {
	service   *service.ScriptService
	validator *validator.Validate
}

func NewScriptHandler(svc *service.ScriptService, v *validator.Validate) *ScriptHandler {
	return &ScriptHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /api/scripts
func (h *ScriptHandler) Create(c *fiber.Ctx) error {
	var req model.ScriptCreateRequest
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

// List handles GET /api/scripts
func (h *ScriptHandler) List(c *fiber.Ctx) error {
	result, err := h.service.List(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, fiber.Map{"scripts": result})
}

// Get handles GET /api/scripts/:scriptId
func (h *ScriptHandler) Get(c *fiber.Ctx) error {
	id := c.Params("scriptId")
	if id == "" {
		return response.ValidationError(c, "Script ID is required", nil)
	}

	result, err := h.service.Detail(c.Context(), middleware.GetUserID(c), id)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

// Update handles PATCH /api/scripts/:scriptId
func (h *ScriptHandler) Update(c *fiber.Ctx) error {
	id := c.Params("scriptId")
	if id == "" {
		return response.ValidationError(c, "Script ID is required", nil)
	}

	var req model.ScriptUpdateRequest
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

// Delete handles DELETE /api/scripts/:scriptId
func (h *ScriptHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("scriptId")
	if id == "" {
		return response.ValidationError(c, "Script ID is required", nil)
	}

	if err := h.service.Delete(c.Context(), middleware.GetUserID(c), id); err != nil {
		return serviceError(c, err)
	}

	return response.NoContent(c)
}

// ListVersions handles GET /api/scripts/:scriptId/versions
func (h *ScriptHandler) ListVersions(c *fiber.Ctx) error {
	id := c.Params("scriptId")
	if id == "" {
		return response.ValidationError(c, "Script ID is required", nil)
	}

	result, err := h.service.ListVersions(c.Context(), middleware.GetUserID(c), id)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, fiber.Map{"versions": result})
}

// AddVersion handles POST /api/scripts/:scriptId/versions (manual draft)
func (h *ScriptHandler) AddVersion(c *fiber.Ctx) error {
	id := c.Params("scriptId")
	if id == "" {
		return response.ValidationError(c, "Script ID is required", nil)
	}

	var req struct {
		Content string `json:"content" validate:"required"`
		Notes   string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.AddVersion(c.Context(), middleware.GetUserID(c), id, req.Content, req.Notes)
	if err != nil {
		return serviceError(c, err)
	}

	return response.Created(c, result)
}

// GetVersion handles GET /api/scripts/:scriptId/versions/:versionNumber
func (h *ScriptHandler) GetVersion(c *fiber.Ctx) error {
	id := c.Params("scriptId")
	number, err := strconv.Atoi(c.Params("versionNumber"))
	if id == "" || err != nil || number < 1 {
		return response.ValidationError(c, "Valid script ID and version number are required", nil)
	}

	result, err := h.service.GetVersion(c.Context(), middleware.GetUserID(c), id, number)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

// CreateScene handles POST /api/scripts/:scriptId/versions/:versionNumber/scenes
func (h *ScriptHandler) CreateScene(c *fiber.Ctx) error {
	id := c.Params("scriptId")
	number, err := strconv.Atoi(c.Params("versionNumber"))
	if id == "" || err != nil || number < 1 {
		return response.ValidationError(c, "Valid script ID and version number are required", nil)
	}

	var req model.SceneCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.CreateScene(c.Context(), middleware.GetUserID(c), id, number, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return response.Created(c, result)
}

// GetScene handles GET /api/scenes/:sceneId
func (h *ScriptHandler) GetScene(c *fiber.Ctx) error {
	id := c.Params("sceneId")
	if id == "" {
		return response.ValidationError(c, "Scene ID is required", nil)
	}

	result, err := h.service.GetScene(c.Context(), middleware.GetUserID(c), id)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

// UpdateScene handles PATCH /api/scenes/:sceneId
func (h *ScriptHandler) UpdateScene(c *fiber.Ctx) error {
	id := c.Params("sceneId")
	if id == "" {
		return response.ValidationError(c, "Scene ID is required", nil)
	}

	var req model.SceneUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.UpdateScene(c.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}
