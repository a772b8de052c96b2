package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/salesdesk-api/internal/application/service"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/dto/response"
)

// DashboardHandler serves the sales overview shown on the landing page
type DashboardHandler struct {
	stats *service.DashboardService
}

func NewDashboardHandler(stats *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

// GetStats godoc
// @Summary Sales overview: counts, month revenue and the last seven days of sales
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	overview, err := h.stats.GetDashboardStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	// figures move with every invoice
	c.Header("Cache-Control", "no-store")
	response.OK(c, "Dashboard stats retrieved successfully", overview)
}
