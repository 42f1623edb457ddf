package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/service"
	"irufoodflow/backend/pkg/response"
)

// ScheduleHandler 课程表 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc    service.ScheduleService
	maxUploadBytes int64
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService, maxUploadBytes int64) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc, maxUploadBytes: maxUploadBytes}
}

// ListSlots 课程时段列表
// GET /api/v1/schedules
func (h *ScheduleHandler) ListSlots(c *gin.Context) {
	var req dto.ScheduleFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slots, err := h.scheduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

// Filters 筛选项（专业 / 班级 / 学期 / 学年）
// GET /api/v1/schedules/filters
func (h *ScheduleHandler) Filters(c *gin.Context) {
	filters, err := h.scheduleSvc.Filters(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, filters)
}

// Grid 周课表网格
// GET /api/v1/schedules/grid
func (h *ScheduleHandler) Grid(c *gin.Context) {
	var req dto.ScheduleFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	grid, err := h.scheduleSvc.Grid(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, grid)
}

// Export 导出课表 Excel
// GET /api/v1/schedules/export
func (h *ScheduleHandler) Export(c *gin.Context) {
	var req dto.ScheduleFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	data, filename, err := h.scheduleSvc.Export(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	sendXLSX(c, data, filename)
}

// Upload 上传课表 Excel 并解析
// POST /api/v1/schedules/upload?program=&class=&term=&year=&replace=
func (h *ScheduleHandler) Upload(c *gin.Context) {
	var req dto.ScheduleUploadRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	reader, ok := readUpload(c, h.maxUploadBytes)
	if !ok {
		return
	}

	result, err := h.scheduleSvc.Upload(c.Request.Context(), reader, &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// GetSlot 时段详情
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetSlot(c *gin.Context) {
	slot, err := h.scheduleSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, slot)
}

// CreateSlot 新增时段
// POST /api/v1/schedules
func (h *ScheduleHandler) CreateSlot(c *gin.Context) {
	var req dto.ScheduleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.scheduleSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, slot)
}

// UpdateSlot 更新时段
// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) UpdateSlot(c *gin.Context) {
	var req dto.ScheduleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.scheduleSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, slot)
}

// DeleteSlot 删除时段
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) DeleteSlot(c *gin.Context) {
	if err := h.scheduleSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 19001, "课程时段不存在")
	case errors.Is(err, service.ErrSlotInvalidTime):
		response.BadRequest(c, 19002, "时间格式应为 HH:MM 且开始早于结束")
	case errors.Is(err, service.ErrSlotInvalidDay):
		response.BadRequest(c, 19003, "星期取值应为 1-7")
	case errors.Is(err, service.ErrScheduleNoHeader):
		response.BadRequest(c, 19004, "未找到星期表头（Pazartesi … Pazar）")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
