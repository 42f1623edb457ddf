package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"irufoodflow/backend/internal/service"
	"irufoodflow/backend/pkg/response"
)

// DashboardHandler 首页统计
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Summary 当前角色的统计卡片
// GET /api/v1/dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	summary, err := h.dashboardSvc.Summary(c.Request.Context(), role, callerID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			response.Forbidden(c, 12003, "角色取值不合法")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, summary)
}
