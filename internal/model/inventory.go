package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 资产状况
const (
	ConditionGood    = "iyi"
	ConditionWorn    = "yipranmis"
	ConditionBroken  = "arizali"
	ConditionMissing = "kayip"
)

// IsValidCondition 判断资产状况取值是否合法
func IsValidCondition(c string) bool {
	switch c {
	case ConditionGood, ConditionWorn, ConditionBroken, ConditionMissing:
		return true
	}
	return false
}

// 盘点会话状态
const (
	CountSessionOpen      = "acik"
	CountSessionCompleted = "tamamlandi"
)

// InventoryAsset 固定资产表 — 对应 inventory_assets
type InventoryAsset struct {
	AssetID   string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"asset_id"`
	Code      string          `gorm:"type:varchar(40);not null"                      json:"code"`
	Name      string          `gorm:"type:varchar(150);not null"                     json:"name"`
	Category  string          `gorm:"type:varchar(60);not null;default:''"           json:"category"`
	Location  string          `gorm:"type:varchar(100);not null;default:''"          json:"location"`
	Quantity  decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0"          json:"quantity"`
	Condition string          `gorm:"type:varchar(20);not null;default:'iyi'"        json:"condition"`
	Notes     string          `gorm:"type:text"                                      json:"notes,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (InventoryAsset) TableName() string { return "inventory_assets" }

// InventoryCountSession 盘点会话表头 — 对应 inventory_count_sessions
// 同一标题的会话按版本号递增
type InventoryCountSession struct {
	SessionID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	Title       string     `gorm:"type:varchar(150);not null"                     json:"title"`
	Version     int        `gorm:"not null"                                       json:"version"`
	Status      string     `gorm:"type:varchar(20);not null;default:'acik'"       json:"status"` // acik | tamamlandi
	CountedBy   *string    `gorm:"type:uuid"                                      json:"counted_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Items []InventoryCountItem `gorm:"foreignKey:SessionID" json:"items,omitempty"`
}

// TableName 指定表名
func (InventoryCountSession) TableName() string { return "inventory_count_sessions" }

// InventoryCountItem 盘点明细 — 对应 inventory_count_items
type InventoryCountItem struct {
	CountItemID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"count_item_id"`
	SessionID   string           `gorm:"type:uuid;not null"                             json:"session_id"`
	AssetID     string           `gorm:"type:uuid;not null"                             json:"asset_id"`
	ExpectedQty decimal.Decimal  `gorm:"type:numeric(12,3);not null;default:0"          json:"expected_qty"`
	CountedQty  *decimal.Decimal `gorm:"type:numeric(12,3)"                             json:"counted_qty,omitempty"` // NULL 表示尚未盘点
	Condition   string           `gorm:"type:varchar(20);not null;default:''"           json:"condition"`
	Note        string           `gorm:"type:varchar(500);not null;default:''"          json:"note"`
	CountedAt   *time.Time       `json:"counted_at,omitempty"`

	// 关联
	Asset *InventoryAsset `gorm:"foreignKey:AssetID;references:AssetID" json:"asset,omitempty"`
}

// TableName 指定表名
func (InventoryCountItem) TableName() string { return "inventory_count_items" }
