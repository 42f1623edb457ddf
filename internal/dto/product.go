package dto

import "github.com/shopspring/decimal"

// ── 商品目录 DTO ──

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Name     string           `json:"name"     binding:"required,max=150"`
	Brand    string           `json:"brand"    binding:"omitempty,max=100"`
	Price    decimal.Decimal  `json:"price"`
	Unit     string           `json:"unit"     binding:"required,max=20"`
	Category string           `json:"category" binding:"omitempty,max=60"`
	Stock    *decimal.Decimal `json:"stock"`
	Notes    string           `json:"notes"    binding:"omitempty,max=500"`
}

// UpdateProductRequest 更新商品请求
type UpdateProductRequest struct {
	Name     *string          `json:"name"     binding:"omitempty,max=150"`
	Brand    *string          `json:"brand"    binding:"omitempty,max=100"`
	Price    *decimal.Decimal `json:"price"`
	Unit     *string          `json:"unit"     binding:"omitempty,max=20"`
	Category *string          `json:"category" binding:"omitempty,max=60"`
	Notes    *string          `json:"notes"    binding:"omitempty,max=500"`
}

// ProductListRequest 商品列表查询参数
type ProductListRequest struct {
	PaginationRequest
	Category string `form:"category" binding:"omitempty,max=60"`
	Keyword  string `form:"keyword"  binding:"omitempty,max=50"`
}

// ProductExportRequest 商品导出参数
type ProductExportRequest struct {
	Category string `form:"category" binding:"omitempty,max=60"`
}

// ProductResponse 商品信息响应
type ProductResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand"`
	Price          decimal.Decimal `json:"price"`
	Unit           string          `json:"unit"`
	UnitKind       string          `json:"unit_kind"` // measure | count
	Category       string          `json:"category"`
	Stock          decimal.Decimal `json:"stock"`
	StockUpdatedAt *string         `json:"stock_updated_at,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}
