package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/service"
	"irufoodflow/backend/pkg/response"
)

// PurchasingHandler 采购汇总 HTTP 处理器
type PurchasingHandler struct {
	purchasingSvc service.PurchasingService
}

// NewPurchasingHandler 创建 PurchasingHandler
func NewPurchasingHandler(purchasingSvc service.PurchasingService) *PurchasingHandler {
	return &PurchasingHandler{purchasingSvc: purchasingSvc}
}

// Reconcile 按周次 / 课程汇总待采购量
// GET /api/v1/purchasing/reconcile
func (h *PurchasingHandler) Reconcile(c *gin.Context) {
	var req dto.ReconcileRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.purchasingSvc.Reconcile(c.Request.Context(), &req)
	if err != nil {
		h.handlePurchasingError(c, err)
		return
	}

	response.OK(c, result)
}

// Deduct 将商品库存标记为已扣减（清零）
// POST /api/v1/purchasing/products/:id/deduct
func (h *PurchasingHandler) Deduct(c *gin.Context) {
	if err := h.purchasingSvc.Deduct(c.Request.Context(), c.Param("id")); err != nil {
		h.handlePurchasingError(c, err)
		return
	}

	response.OK(c, nil)
}

// Export 导出采购汇总
// GET /api/v1/purchasing/export
func (h *PurchasingHandler) Export(c *gin.Context) {
	var req dto.ReconcileRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	data, filename, err := h.purchasingSvc.Export(c.Request.Context(), &req)
	if err != nil {
		h.handlePurchasingError(c, err)
		return
	}

	sendXLSX(c, data, filename)
}

func (h *PurchasingHandler) handlePurchasingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		response.NotFound(c, 16001, "商品不存在")
	default:
		response.InternalError(c)
	}
}
