package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/service"
	"irufoodflow/backend/pkg/response"
)

// OrderHandler 采购清单 HTTP 处理器
type OrderHandler struct {
	orderSvc service.OrderService
}

// NewOrderHandler 创建 OrderHandler
func NewOrderHandler(orderSvc service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// CreateOrder 提交采购清单
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	order, err := h.orderSvc.Create(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.Created(c, order)
}

// ListOrders 订单列表（教师仅见本人）
// GET /api/v1/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req dto.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	orders, total, err := h.orderSvc.List(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.OKPage(c, orders, total, req.GetPage(), req.GetPageSize())
}

// Weeks 周次标签
// GET /api/v1/orders/weeks
func (h *OrderHandler) Weeks(c *gin.Context) {
	weeks, err := h.orderSvc.Weeks(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": weeks})
}

// GetOrder 订单详情
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	order, err := h.orderSvc.GetByID(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.OK(c, order)
}

// DeleteOrder 删除订单
// DELETE /api/v1/orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.orderSvc.Delete(c.Request.Context(), c.Param("id"), callerID, role); err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.OK(c, nil)
}

// ApproveOrder 审批通过
// PUT /api/v1/orders/:id/approve
func (h *OrderHandler) ApproveOrder(c *gin.Context) {
	h.transition(c, h.orderSvc.Approve)
}

// ReceiveOrder 确认收货
// PUT /api/v1/orders/:id/receive
func (h *OrderHandler) ReceiveOrder(c *gin.Context) {
	h.transition(c, h.orderSvc.Receive)
}

// RevertOrder 退回待审批
// PUT /api/v1/orders/:id/revert
func (h *OrderHandler) RevertOrder(c *gin.Context) {
	h.transition(c, h.orderSvc.Revert)
}

// ExportOrder 导出单个订单
// GET /api/v1/orders/:id/export
func (h *OrderHandler) ExportOrder(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	data, filename, err := h.orderSvc.Export(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	sendXLSX(c, data, filename)
}

// ── 辅助函数 ──

type transitionFunc func(ctx context.Context, id, callerID string) (*dto.OrderResponse, error)

func (h *OrderHandler) transition(c *gin.Context, fn transitionFunc) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	order, err := fn(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.OK(c, order)
}

func (h *OrderHandler) handleOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		response.NotFound(c, 15001, "订单不存在")
	case errors.Is(err, service.ErrOrderCourseRequired):
		response.BadRequest(c, 15002, "请选择课程")
	case errors.Is(err, service.ErrOrderNoItems):
		response.BadRequest(c, 15003, "至少需要一项数量大于 0 的商品")
	case errors.Is(err, service.ErrOrderCourseNotAssigned):
		response.Forbidden(c, 15004, "该课程未分配给当前教师")
	case errors.Is(err, service.ErrOrderInvalidTransition):
		response.Conflict(c, 15005, "订单状态不允许此操作")
	case errors.Is(err, service.ErrOrderNotDeletable):
		response.Forbidden(c, 15006, "只能删除待审批的本人订单")
	case errors.Is(err, service.ErrInvalidQuantity):
		response.ErrorWithDetails(c, http.StatusBadRequest, 15007, "数量格式不合法", err.Error())
	case errors.Is(err, service.ErrProductNotFound):
		response.BadRequest(c, 15008, "清单中包含不存在的商品")
	case errors.Is(err, service.ErrCourseNotFound):
		response.BadRequest(c, 15009, "课程不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
