package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"property-match-service/internal/app/service"
	"property-match-service/internal/transport/httpserver/dto"
	"property-match-service/internal/validator"
)

// ProviderHandler serves service-provider search.
type ProviderHandler struct {
	service   *service.ProviderService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(svc *service.ProviderService, v *validator.Validator, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Search handles GET /api/v1/providers/search
func (h *ProviderHandler) Search(c *fiber.Ctx) error {
	var req dto.ProviderSearchRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	page, err := h.service.SearchPage(c.UserContext(), req.ToQuery(), req.Page, req.PageSize)
	if err != nil {
		h.logger.Error("provider search failed", zap.Error(err))

		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: "failed to load service providers",
			Code:  "UPSTREAM_ERROR",
		})
	}

	return c.JSON(dto.FromPage(page))
}
