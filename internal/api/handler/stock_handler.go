package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/service"
	"irufoodflow/backend/pkg/response"
)

// StockHandler 仓库库存 HTTP 处理器
type StockHandler struct {
	stockSvc service.StockService
}

// NewStockHandler 创建 StockHandler
func NewStockHandler(stockSvc service.StockService) *StockHandler {
	return &StockHandler{stockSvc: stockSvc}
}

// ListStock 库存列表
// GET /api/v1/stock
func (h *StockHandler) ListStock(c *gin.Context) {
	var req dto.StockListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, err := h.stockSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// CountSequence 逐项盘点顺序
// GET /api/v1/stock/sequence
func (h *StockHandler) CountSequence(c *gin.Context) {
	var req dto.StockListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	seq, err := h.stockSvc.CountSequence(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, seq)
}

// UpdateStock 登记商品库存
// PUT /api/v1/stock/:id
func (h *StockHandler) UpdateStock(c *gin.Context) {
	var req dto.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	item, err := h.stockSvc.UpdateStock(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleStockError(c, err)
		return
	}

	response.OK(c, item)
}

func (h *StockHandler) handleStockError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		response.NotFound(c, 16001, "商品不存在")
	case errors.Is(err, service.ErrInvalidQuantity):
		response.BadRequest(c, 16002, "库存数量格式不合法（计数单位只能为非负整数）")
	default:
		response.InternalError(c)
	}
}
