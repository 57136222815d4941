package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"property-match-service/internal/app/service"
	"property-match-service/internal/transport/httpserver/dto"
)

// AdminHandler handles listing mirror operations.
type AdminHandler struct {
	syncService *service.SyncService
	logger      *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(syncSvc *service.SyncService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		syncService: syncSvc,
		logger:      logger,
	}
}

// SyncAll handles POST /api/v1/admin/sync
func (h *AdminHandler) SyncAll(c *fiber.Ctx) error {
	h.logger.Info("manual sync triggered")

	results := h.syncService.SyncAll(c.UserContext())

	return c.JSON(dto.FromSyncResults(results))
}

// SyncFeed handles POST /api/v1/admin/sync/:feed
func (h *AdminHandler) SyncFeed(c *fiber.Ctx) error {
	feed := c.Params("feed")
	if feed == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "feed name is required",
			Code:  "MISSING_FEED",
		})
	}

	h.logger.Info("manual feed sync triggered", zap.String("feed", feed))

	result, err := h.syncService.SyncFeed(c.UserContext(), feed)
	if errors.Is(err, service.ErrFeedNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "feed not found",
			Code:  "FEED_NOT_FOUND",
		})
	}
	if err != nil && result == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "SYNC_FAILED",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.FromSyncResult(*result))
	}

	return c.JSON(dto.FromSyncResult(*result))
}

// Feeds handles GET /api/v1/admin/feeds
func (h *AdminHandler) Feeds(c *fiber.Ctx) error {
	health := h.syncService.FeedHealth(c.UserContext())

	return c.JSON(dto.FromFeedHealth(h.syncService.FeedNames(), health))
}
