package dto

import "github.com/shopspring/decimal"

// ── 固定资产与盘点 DTO ──

// CreateAssetRequest 创建资产请求
type CreateAssetRequest struct {
	Code      string          `json:"code"      binding:"required,max=40"`
	Name      string          `json:"name"      binding:"required,max=150"`
	Category  string          `json:"category"  binding:"omitempty,max=60"`
	Location  string          `json:"location"  binding:"omitempty,max=100"`
	Quantity  decimal.Decimal `json:"quantity"`
	Condition string          `json:"condition" binding:"omitempty,oneof=iyi yipranmis arizali kayip"`
	Notes     string          `json:"notes"     binding:"omitempty,max=500"`
}

// UpdateAssetRequest 更新资产请求
type UpdateAssetRequest struct {
	Code      *string          `json:"code"      binding:"omitempty,max=40"`
	Name      *string          `json:"name"      binding:"omitempty,max=150"`
	Category  *string          `json:"category"  binding:"omitempty,max=60"`
	Location  *string          `json:"location"  binding:"omitempty,max=100"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Condition *string          `json:"condition" binding:"omitempty,oneof=iyi yipranmis arizali kayip"`
	Notes     *string          `json:"notes"     binding:"omitempty,max=500"`
}

// AssetListRequest 资产列表查询参数
type AssetListRequest struct {
	Category string `form:"category" binding:"omitempty,max=60"`
	Keyword  string `form:"keyword"  binding:"omitempty,max=50"`
}

// AssetResponse 资产响应
type AssetResponse struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Location  string          `json:"location"`
	Quantity  decimal.Decimal `json:"quantity"`
	Condition string          `json:"condition"`
	Notes     string          `json:"notes,omitempty"`
	UpdatedAt string          `json:"updated_at"`
}

// StartSessionRequest 开始盘点请求
type StartSessionRequest struct {
	Title string `json:"title" binding:"required,max=150"`
}

// RecordCountRequest 登记盘点结果请求
type RecordCountRequest struct {
	AssetID    string          `json:"asset_id"    binding:"required,uuid"`
	CountedQty decimal.Decimal `json:"counted_qty"`
	Condition  string          `json:"condition"   binding:"omitempty,oneof=iyi yipranmis arizali kayip"`
	Note       string          `json:"note"        binding:"omitempty,max=500"`
}

// CountSessionResponse 盘点会话表头
type CountSessionResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Version     int     `json:"version"`
	Status      string  `json:"status"`
	CountedBy   *string `json:"counted_by,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// CountSessionDetailResponse 盘点会话详情（表头 + 明细 + 汇总）
type CountSessionDetailResponse struct {
	CountSessionResponse
	Items   []CountItemResponse `json:"items"`
	Summary CountSummary        `json:"summary"`
}

// CountItemResponse 盘点明细行
type CountItemResponse struct {
	AssetID     string           `json:"asset_id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Location    string           `json:"location"`
	ExpectedQty decimal.Decimal  `json:"expected_qty"`
	CountedQty  *decimal.Decimal `json:"counted_qty,omitempty"`
	Difference  *decimal.Decimal `json:"difference,omitempty"` // counted - expected
	Condition   string           `json:"condition,omitempty"`
	Note        string           `json:"note,omitempty"`
	CountedAt   *string          `json:"counted_at,omitempty"`
}

// CountSummary 盘点汇总
type CountSummary struct {
	Total   int `json:"total"`
	Counted int `json:"counted"`
	Pending int `json:"pending"`
	Matched int `json:"matched"`
	Missing int `json:"missing"` // 实盘少于账面
	Surplus int `json:"surplus"` // 实盘多于账面
}
