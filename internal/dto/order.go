package dto

import "github.com/shopspring/decimal"

// ── 采购清单 DTO ──

// CreateOrderRequest 提交采购清单请求
// 课程与明细的必填校验由业务层完成，以返回明确的错误码
type CreateOrderRequest struct {
	CourseID string             `json:"course_id" binding:"omitempty,uuid"`
	Week     string             `json:"week"      binding:"required,max=30"`
	Items    []OrderItemRequest `json:"items"     binding:"omitempty,dive"`
	Notes    string             `json:"notes"     binding:"omitempty,max=1000"`
}

// OrderItemRequest 清单明细
type OrderItemRequest struct {
	ProductID string          `json:"product_id" binding:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// OrderListRequest 订单列表查询参数
type OrderListRequest struct {
	PaginationRequest
	Week      string `form:"week"       binding:"omitempty,max=30"`
	CourseID  string `form:"course_id"  binding:"omitempty,uuid"`
	TeacherID string `form:"teacher_id" binding:"omitempty,uuid"`
	Status    string `form:"status"     binding:"omitempty,oneof=bekliyor onaylandi teslim_alindi"`
}

// OrderResponse 订单响应
type OrderResponse struct {
	ID          string              `json:"id"`
	TeacherID   string              `json:"teacher_id"`
	TeacherName string              `json:"teacher_name,omitempty"`
	CourseID    string              `json:"course_id"`
	CourseCode  string              `json:"course_code,omitempty"`
	CourseName  string              `json:"course_name,omitempty"`
	Week        string              `json:"week"`
	Items       []OrderItemResponse `json:"items"`
	Total       decimal.Decimal     `json:"total"`
	Status      string              `json:"status"`
	Notes       string              `json:"notes,omitempty"`
	ApprovedAt  *string             `json:"approved_at,omitempty"`
	ReceivedAt  *string             `json:"received_at,omitempty"`
	Version     int                 `json:"version"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

// OrderItemResponse 订单明细响应
type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}
