// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"property-match-service/internal/app/service"
	"property-match-service/internal/domain"
	"property-match-service/internal/transport/httpserver/dto"
	"property-match-service/internal/validator"
)

// MatchHandler handles property match HTTP requests.
type MatchHandler struct {
	service   *service.MatchService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(svc *service.MatchService, v *validator.Validator, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Match handles GET /api/v1/properties/match
func (h *MatchHandler) Match(c *fiber.Ctx) error {
	var req dto.MatchRequest
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
		h.logger.Error("property match failed", zap.Error(err))

		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: "failed to load property matches",
			Code:  "UPSTREAM_ERROR",
		})
	}

	return c.JSON(dto.FromPage(page))
}

// GetByID handles GET /api/v1/properties/:id
func (h *MatchHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "id is required",
			Code:  "MISSING_ID",
		})
	}

	detail, err := h.service.GetProperty(c.UserContext(), id)
	if errors.Is(err, domain.ErrListingNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "property not found",
			Code:  "NOT_FOUND",
		})
	}
	if err != nil {
		h.logger.Error("get property failed", zap.String("id", id), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to get property",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(detail)
}
