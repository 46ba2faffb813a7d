package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/scriptforge/api/internal/client"
	"github.com/scriptforge/api/internal/service"
	"github.com/scriptforge/api/internal/store"
	"github.com/scriptforge/api/pkg/response"
)

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}

// serviceError maps service-layer sentinel errors to response envelopes.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return response.NotFound(c, "Resource not found")
	case errors.Is(err, service.ErrValidation):
		return response.ValidationError(c, err.Error(), nil)
	case errors.Is(err, client.ErrProvider):
		return response.AIError(c, err.Error())
	default:
		return response.ServiceError(c, err.Error())
	}
}
