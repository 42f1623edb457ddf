package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// 订单状态
const (
	OrderStatusPending  = "bekliyor"
	OrderStatusApproved = "onaylandi"
	OrderStatusReceived = "teslim_alindi"
)

// Order 采购清单表 — 对应 orders
// 明细以 JSONB 数组内嵌存储，整行读改写
type Order struct {
	OrderID    string                         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"order_id"`
	TeacherID  string                         `gorm:"type:uuid;not null"                             json:"teacher_id"`
	CourseID   string                         `gorm:"type:uuid;not null"                             json:"course_id"`
	Week       string                         `gorm:"type:varchar(30);not null"                      json:"week"` // 如 "3. Hafta"
	Items      datatypes.JSONSlice[OrderItem] `gorm:"type:jsonb;not null;default:'[]'"               json:"items"`
	Total      decimal.Decimal                `gorm:"type:numeric(12,2);not null;default:0"          json:"total"`
	Status     string                         `gorm:"type:varchar(20);not null;default:'bekliyor'"   json:"status"` // bekliyor | onaylandi | teslim_alindi
	Notes      string                         `gorm:"type:text"                                      json:"notes,omitempty"`
	ApprovedAt *time.Time                     `json:"approved_at,omitempty"`
	ApprovedBy *string                        `gorm:"type:uuid" json:"approved_by,omitempty"`
	ReceivedAt *time.Time                     `json:"received_at,omitempty"`
	ReceivedBy *string                        `gorm:"type:uuid" json:"received_by,omitempty"`
	VersionedModel

	// 关联
	Teacher *User   `gorm:"foreignKey:TeacherID;references:UserID"  json:"teacher,omitempty"`
	Course  *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string { return "orders" }

// OrderItem 订单明细（内嵌于 orders.items）
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Recalculate 重新计算每行小计与订单总额（保留两位小数）
func (o *Order) Recalculate() {
	total := decimal.Zero
	for i := range o.Items {
		o.Items[i].LineTotal = o.Items[i].Quantity.Mul(o.Items[i].UnitPrice).Round(2)
		total = total.Add(o.Items[i].LineTotal)
	}
	o.Total = total.Round(2)
}
