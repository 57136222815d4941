package handler

import (
	"sort"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"property-match-service/internal/app/service"
)

// recentListings is how many rows the dashboard shows.
const recentListings = 10

// statusCount is one row of the status table.
type statusCount struct {
	Status string
	Count  int64
}

// DashboardHandler handles dashboard-related HTTP requests.
type DashboardHandler struct {
	syncService *service.SyncService
	logger      *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc *service.SyncService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		syncService: svc,
		logger:      logger,
	}
}

// Render handles GET /dashboard
// Renders mirror counts, registered feeds and recent listings.
func (h *DashboardHandler) Render(c *fiber.Ctx) error {
	data := fiber.Map{
		"Title": "Property Match Dashboard",
		"Feeds": h.syncService.FeedNames(),
	}

	stats, err := h.syncService.Stats(c.UserContext(), recentListings)
	if err != nil {
		h.logger.Warn("dashboard stats unavailable", zap.Error(err))
		data["StatsError"] = "listing mirror unavailable"
	} else {
		data["Total"] = stats.Total
		data["ByStatus"] = sortedStatuses(stats.ByStatus)
		data["Recent"] = stats.Recent
	}

	return c.Render("pages/dashboard", data, "layouts/base")
}

// Stats handles GET /api/v1/admin/stats
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.syncService.Stats(c.UserContext(), recentListings)
	if err != nil {
		h.logger.Error("loading mirror stats failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load stats",
			"code":  "INTERNAL_ERROR",
		})
	}

	return c.JSON(stats)
}

func sortedStatuses(byStatus map[string]int64) []statusCount {
	rows := make([]statusCount, 0, len(byStatus))
	for status, n := range byStatus {
		rows = append(rows, statusCount{Status: status, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Status < rows[j].Status
	})
	return rows
}
