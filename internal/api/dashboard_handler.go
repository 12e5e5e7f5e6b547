package api

import (
	"net/http"

	"fitcycle/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler holds the dashboard service dependency.
type DashboardHandler struct {
	dashboardService service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats returns the month counter and the weekly activity map.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	stats, err := h.dashboardService.GetStats(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetToday returns the next-up training resolution.
func (h *DashboardHandler) GetToday(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	today, err := h.dashboardService.GetToday(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve today's training")
		return
	}
	c.JSON(http.StatusOK, today)
}

// GetLast returns the most recently finished session of the active cycle.
// A null body means no session has been finished yet.
func (h *DashboardHandler) GetLast(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	last, err := h.dashboardService.GetLast(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load last workout")
		return
	}
	c.JSON(http.StatusOK, last)
}
