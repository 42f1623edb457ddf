package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product 商品目录表 — 对应 products
type Product struct {
	ProductID      string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"product_id"`
	Name           string          `gorm:"type:varchar(150);not null"                     json:"name"`
	Brand          string          `gorm:"type:varchar(100);not null;default:''"          json:"brand"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"          json:"price"`
	Unit           string          `gorm:"type:varchar(20);not null"                      json:"unit"`
	Category       string          `gorm:"type:varchar(60);not null;default:''"           json:"category"`
	Stock          decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0"          json:"stock"`
	StockUpdatedAt *time.Time      `json:"stock_updated_at,omitempty"`
	Notes          string          `gorm:"type:text"                                      json:"notes,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Product) TableName() string { return "products" }

// StockKey 仓库库存查找键：名称 + 品牌（忽略大小写与首尾空格）
func (p *Product) StockKey() string {
	return StockKey(p.Name, p.Brand)
}

// StockKey 由名称与品牌构造库存查找键
func StockKey(name, brand string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(brand))
}
