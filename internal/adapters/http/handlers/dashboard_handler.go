package handlers

import (
	"salescrm/internal/core/services"
	"salescrm/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles reporting endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSalesDashboard returns the team-wide sales dashboard
// @Summary Sales dashboard
// @Description Team-wide pipeline, lead funnel and activity figures
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetSalesDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetSalesDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}

// GetMyDashboard returns the current user's personal dashboard
// @Summary Personal dashboard
// @Description Pipeline and activity figures scoped to the authenticated user
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard/me [get]
func (h *DashboardHandler) GetMyDashboard(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.GetRepDashboard(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
