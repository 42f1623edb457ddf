package model

import "github.com/shopspring/decimal"

// Recipe 食谱表 — 对应 recipes
type Recipe struct {
	RecipeID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"recipe_id"`
	OwnerID     string `gorm:"type:uuid;not null"                             json:"owner_id"`
	Name        string `gorm:"type:varchar(150);not null"                     json:"name"`
	Category    string `gorm:"type:varchar(60);not null;default:''"           json:"category"`
	Portions    int    `gorm:"not null;default:1"                             json:"portions"`
	Preparation string `gorm:"type:text"                                      json:"preparation,omitempty"`
	SoftDeleteModel

	// 关联
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
}

// TableName 指定表名
func (Recipe) TableName() string { return "recipes" }

// RecipeIngredient 食谱配料表 — 对应 recipe_ingredients
// Quantity 为每份用量
type RecipeIngredient struct {
	IngredientID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"ingredient_id"`
	RecipeID     string          `gorm:"type:uuid;not null"                             json:"recipe_id"`
	ProductID    string          `gorm:"type:uuid;not null"                             json:"product_id"`
	Quantity     decimal.Decimal `gorm:"type:numeric(12,3);not null"                    json:"quantity"`
	Unit         string          `gorm:"type:varchar(20);not null"                      json:"unit"`
	SortOrder    int             `gorm:"not null;default:0"                             json:"sort_order"`

	// 关联
	Product *Product `gorm:"foreignKey:ProductID;references:ProductID" json:"product,omitempty"`
}

// TableName 指定表名
func (RecipeIngredient) TableName() string { return "recipe_ingredients" }
