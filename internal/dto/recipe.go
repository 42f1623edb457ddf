package dto

import "github.com/shopspring/decimal"

// ── 食谱 DTO ──

// RecipeRequest 创建/更新食谱请求
type RecipeRequest struct {
	Name        string              `json:"name"        binding:"required,max=150"`
	Category    string              `json:"category"    binding:"omitempty,max=60"`
	Portions    int                 `json:"portions"    binding:"omitempty,min=1,max=1000"`
	Preparation string              `json:"preparation" binding:"omitempty,max=5000"`
	Ingredients []IngredientRequest `json:"ingredients" binding:"omitempty,dive"`
}

// IngredientRequest 食谱配料（每份用量）
type IngredientRequest struct {
	ProductID string          `json:"product_id" binding:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"       binding:"required,max=20"`
}

// RecipeListRequest 食谱列表查询参数
type RecipeListRequest struct {
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// RecipeResponse 食谱响应
type RecipeResponse struct {
	ID          string               `json:"id"`
	OwnerID     string               `json:"owner_id"`
	Name        string               `json:"name"`
	Category    string               `json:"category"`
	Portions    int                  `json:"portions"`
	Preparation string               `json:"preparation,omitempty"`
	Ingredients []IngredientResponse `json:"ingredients"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
}

// IngredientResponse 配料响应
type IngredientResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	ProductUnit string          `json:"product_unit,omitempty"`
}

// AddToListRequest 将食谱加入采购清单请求
type AddToListRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
	Week     string `json:"week"      binding:"required,max=30"`
	Portions int    `json:"portions"  binding:"required,min=1,max=10000"`
}

// AddToListResponse 加入清单结果
type AddToListResponse struct {
	Merged bool          `json:"merged"` // true 表示合并进已有待审批清单
	Order  OrderResponse `json:"order"`
}
