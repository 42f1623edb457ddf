package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/service"
	"irufoodflow/backend/pkg/response"
)

// CalendarHandler 学术日历 HTTP 处理器
type CalendarHandler struct {
	calendarSvc    service.CalendarService
	maxUploadBytes int64
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService, maxUploadBytes int64) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc, maxUploadBytes: maxUploadBytes}
}

// ListEvents 日历事件列表
// GET /api/v1/calendar/events
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	var req dto.CalendarListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	events, err := h.calendarSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// GetEvent 事件详情
// GET /api/v1/calendar/events/:id
func (h *CalendarHandler) GetEvent(c *gin.Context) {
	event, err := h.calendarSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, event)
}

// CreateEvent 新增事件
// POST /api/v1/calendar/events
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	var req dto.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	event, err := h.calendarSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.Created(c, event)
}

// UpdateEvent 更新事件
// PUT /api/v1/calendar/events/:id
func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	var req dto.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	event, err := h.calendarSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, event)
}

// DeleteEvent 删除事件
// DELETE /api/v1/calendar/events/:id
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	if err := h.calendarSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, nil)
}

// Grid 周 × 星期网格
// GET /api/v1/calendar/grid?term=&year=
func (h *CalendarHandler) Grid(c *gin.Context) {
	var req dto.CalendarTermRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	grid, err := h.calendarSvc.Grid(c.Request.Context(), &req)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, grid)
}

// ExportExcel 导出日历 Excel
// GET /api/v1/calendar/export/xlsx
func (h *CalendarHandler) ExportExcel(c *gin.Context) {
	var req dto.CalendarTermRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	data, filename, err := h.calendarSvc.ExportExcel(c.Request.Context(), &req)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	sendXLSX(c, data, filename)
}

// ExportICS 导出 iCalendar
// GET /api/v1/calendar/export/ics?term=&year=&start_date=
func (h *CalendarHandler) ExportICS(c *gin.Context) {
	var req dto.CalendarICSRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	data, filename, err := h.calendarSvc.ExportICS(c.Request.Context(), &req)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.File(c, filename, service.ICSContentType, data)
}

// ImportICS 导入 iCalendar 文件
// POST /api/v1/calendar/import?term=&year=&start_date=
func (h *CalendarHandler) ImportICS(c *gin.Context) {
	var req dto.CalendarICSRequest
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

	result, err := h.calendarSvc.ImportICS(c.Request.Context(), reader, &req, callerID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *CalendarHandler) handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, 20001, "日历事件不存在")
	case errors.Is(err, service.ErrEventInvalidColor):
		response.BadRequest(c, 20002, "颜色标签不合法")
	case errors.Is(err, service.ErrEventInvalidDay):
		response.BadRequest(c, 20003, "星期取值应为 1-7，周次应在 1-53 之间")
	case errors.Is(err, service.ErrInvalidStartDate):
		response.BadRequest(c, 20004, "start_date 格式应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrICSBadFile):
		response.BadRequest(c, 20005, "无法解析 ICS 文件")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
