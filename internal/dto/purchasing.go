package dto

import "github.com/shopspring/decimal"

// ── 采购对账 / 库存 DTO ──

// ReconcileRequest 对账查询参数（为空表示全部）
type ReconcileRequest struct {
	Week            string `form:"week"             binding:"omitempty,max=30"`
	CourseID        string `form:"course_id"        binding:"omitempty,uuid"`
	IncludeReceived bool   `form:"include_received"`
}

// ReconcileLine 对账明细行（按商品汇总）
type ReconcileLine struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Brand         string          `json:"brand"`
	Unit          string          `json:"unit"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Requested     decimal.Decimal `json:"requested"`
	RequestedCost decimal.Decimal `json:"requested_cost"`
	OnHand        decimal.Decimal `json:"on_hand"`
	ToPurchase    decimal.Decimal `json:"to_purchase"`
	PurchaseCost  decimal.Decimal `json:"purchase_cost"`
	OrderCount    int             `json:"order_count"`
	CourseCodes   []string        `json:"course_codes"`
}

// ReconcileResponse 对账结果
type ReconcileResponse struct {
	Week               string          `json:"week,omitempty"`
	CourseID           string          `json:"course_id,omitempty"`
	OrderCount         int             `json:"order_count"`
	Lines              []ReconcileLine `json:"lines"`
	TotalRequestedCost decimal.Decimal `json:"total_requested_cost"`
	TotalPurchaseCost  decimal.Decimal `json:"total_purchase_cost"`
}

// StockListRequest 库存列表查询参数
type StockListRequest struct {
	Category string `form:"category" binding:"omitempty,max=60"`
	Keyword  string `form:"keyword"  binding:"omitempty,max=50"`
}

// UpdateStockRequest 更新库存请求
type UpdateStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// StockItemResponse 库存行
type StockItemResponse struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand"`
	Unit           string          `json:"unit"`
	UnitKind       string          `json:"unit_kind"`
	Category       string          `json:"category"`
	Stock          decimal.Decimal `json:"stock"`
	StockUpdatedAt *string         `json:"stock_updated_at,omitempty"`
}

// CountSequenceResponse 逐项盘点顺序
type CountSequenceResponse struct {
	Total      int      `json:"total"`
	ProductIDs []string `json:"product_ids"`
}
