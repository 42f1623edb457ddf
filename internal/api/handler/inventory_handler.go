package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/service"
	"irufoodflow/backend/pkg/response"
)

// InventoryHandler 固定资产与盘点 HTTP 处理器
type InventoryHandler struct {
	inventorySvc   service.InventoryService
	maxUploadBytes int64
}

// NewInventoryHandler 创建 InventoryHandler
func NewInventoryHandler(inventorySvc service.InventoryService, maxUploadBytes int64) *InventoryHandler {
	return &InventoryHandler{inventorySvc: inventorySvc, maxUploadBytes: maxUploadBytes}
}

// ────────────────────── 资产 ──────────────────────

// ListAssets 资产列表
// GET /api/v1/inventory/assets
func (h *InventoryHandler) ListAssets(c *gin.Context) {
	var req dto.AssetListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	assets, err := h.inventorySvc.ListAssets(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": assets})
}

// GetAsset 资产详情
// GET /api/v1/inventory/assets/:id
func (h *InventoryHandler) GetAsset(c *gin.Context) {
	asset, err := h.inventorySvc.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.OK(c, asset)
}

// CreateAsset 新增资产
// POST /api/v1/inventory/assets
func (h *InventoryHandler) CreateAsset(c *gin.Context) {
	var req dto.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	asset, err := h.inventorySvc.CreateAsset(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.Created(c, asset)
}

// UpdateAsset 更新资产
// PUT /api/v1/inventory/assets/:id
func (h *InventoryHandler) UpdateAsset(c *gin.Context) {
	var req dto.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	asset, err := h.inventorySvc.UpdateAsset(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.OK(c, asset)
}

// DeleteAsset 删除资产
// DELETE /api/v1/inventory/assets/:id
func (h *InventoryHandler) DeleteAsset(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.inventorySvc.DeleteAsset(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportAssets Excel 批量导入资产（按编码 upsert）
// POST /api/v1/inventory/assets/import
func (h *InventoryHandler) ImportAssets(c *gin.Context) {
	reader, ok := readUpload(c, h.maxUploadBytes)
	if !ok {
		return
	}

	result, err := h.inventorySvc.ImportAssets(c.Request.Context(), reader)
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.OK(c, result)
}

// AssetTemplate 下载资产导入模板
// GET /api/v1/inventory/assets/template
func (h *InventoryHandler) AssetTemplate(c *gin.Context) {
	data, filename, err := h.inventorySvc.AssetTemplate()
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	sendXLSX(c, data, filename)
}

// ExportAssets 导出资产清单
// GET /api/v1/inventory/assets/export
func (h *InventoryHandler) ExportAssets(c *gin.Context) {
	data, filename, err := h.inventorySvc.ExportAssets(c.Request.Context())
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	sendXLSX(c, data, filename)
}

// ────────────────────── 盘点会话 ──────────────────────

// StartSession 开始新一轮盘点
// POST /api/v1/inventory/sessions
func (h *InventoryHandler) StartSession(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.inventorySvc.StartSession(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.Created(c, session)
}

// ListSessions 盘点会话列表
// GET /api/v1/inventory/sessions
func (h *InventoryHandler) ListSessions(c *gin.Context) {
	sessions, err := h.inventorySvc.ListSessions(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": sessions})
}

// GetSession 会话详情（含明细与汇总）
// GET /api/v1/inventory/sessions/:id
func (h *InventoryHandler) GetSession(c *gin.Context) {
	session, err := h.inventorySvc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.OK(c, session)
}

// RecordCount 登记单项实盘数
// PUT /api/v1/inventory/sessions/:id/counts
func (h *InventoryHandler) RecordCount(c *gin.Context) {
	var req dto.RecordCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	item, err := h.inventorySvc.RecordCount(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.OK(c, item)
}

// ImportCounts Excel 批量登记实盘数
// POST /api/v1/inventory/sessions/:id/import
func (h *InventoryHandler) ImportCounts(c *gin.Context) {
	reader, ok := readUpload(c, h.maxUploadBytes)
	if !ok {
		return
	}

	result, err := h.inventorySvc.ImportCounts(c.Request.Context(), c.Param("id"), reader)
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportSession 导出盘点表
// GET /api/v1/inventory/sessions/:id/export
func (h *InventoryHandler) ExportSession(c *gin.Context) {
	data, filename, err := h.inventorySvc.ExportSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	sendXLSX(c, data, filename)
}

// CompleteSession 完成盘点并回写资产
// POST /api/v1/inventory/sessions/:id/complete
func (h *InventoryHandler) CompleteSession(c *gin.Context) {
	session, err := h.inventorySvc.CompleteSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.OK(c, session)
}

func (h *InventoryHandler) handleInventoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssetNotFound):
		response.NotFound(c, 17001, "资产不存在")
	case errors.Is(err, service.ErrAssetCodeExists):
		response.Conflict(c, 17002, "资产编码已存在")
	case errors.Is(err, service.ErrAssetInvalidQuantity):
		response.BadRequest(c, 17003, "资产数量不能为负数")
	case errors.Is(err, service.ErrInvalidCondition):
		response.BadRequest(c, 17004, "资产状况取值不合法")
	case errors.Is(err, service.ErrCountSessionNotFound):
		response.NotFound(c, 17005, "盘点会话不存在")
	case errors.Is(err, service.ErrCountSessionClosed):
		response.Conflict(c, 17006, "盘点会话已完成，不能再登记")
	case errors.Is(err, service.ErrCountItemNotFound):
		response.NotFound(c, 17007, "该资产不在本次盘点中")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
