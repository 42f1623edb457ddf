package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/service"
	"irufoodflow/backend/pkg/response"
)

// ProductHandler 商品目录 HTTP 处理器
type ProductHandler struct {
	productSvc     service.ProductService
	maxUploadBytes int64
}

// NewProductHandler 创建 ProductHandler
func NewProductHandler(productSvc service.ProductService, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{productSvc: productSvc, maxUploadBytes: maxUploadBytes}
}

// ListProducts 商品列表（分页）
// GET /api/v1/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var req dto.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	products, total, err := h.productSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, products, total, req.GetPage(), req.GetPageSize())
}

// Categories 已使用的商品分类
// GET /api/v1/products/categories
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.productSvc.Categories(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": categories})
}

// GetProduct 商品详情
// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleProductError(c, err)
		return
	}

	response.OK(c, product)
}

// CreateProduct 新增商品
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	product, err := h.productSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleProductError(c, err)
		return
	}

	response.Created(c, product)
}

// UpdateProduct 更新商品
// PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	product, err := h.productSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleProductError(c, err)
		return
	}

	response.OK(c, product)
}

// DeleteProduct 删除商品
// DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.productSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleProductError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportProducts Excel 批量导入
// POST /api/v1/products/import
func (h *ProductHandler) ImportProducts(c *gin.Context) {
	reader, ok := readUpload(c, h.maxUploadBytes)
	if !ok {
		return
	}

	result, err := h.productSvc.Import(c.Request.Context(), reader)
	if err != nil {
		h.handleProductError(c, err)
		return
	}

	response.OK(c, result)
}

// Template 下载导入模板
// GET /api/v1/products/template
func (h *ProductHandler) Template(c *gin.Context) {
	data, filename, err := h.productSvc.Template()
	if err != nil {
		h.handleProductError(c, err)
		return
	}

	sendXLSX(c, data, filename)
}

// ExportProducts 导出商品目录
// GET /api/v1/products/export
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	var req dto.ProductExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	data, filename, err := h.productSvc.Export(c.Request.Context(), req.Category)
	if err != nil {
		h.handleProductError(c, err)
		return
	}

	sendXLSX(c, data, filename)
}

func (h *ProductHandler) handleProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		response.NotFound(c, 14001, "商品不存在")
	case errors.Is(err, service.ErrProductExists):
		response.Conflict(c, 14002, "同名同品牌商品已存在")
	case errors.Is(err, service.ErrProductInvalidUnit):
		response.BadRequest(c, 14003, "计量单位不合法")
	case errors.Is(err, service.ErrProductInvalidPrice):
		response.BadRequest(c, 14004, "价格不能为负数")
	case errors.Is(err, service.ErrInvalidQuantity):
		response.BadRequest(c, 14005, "库存数量格式不合法")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
