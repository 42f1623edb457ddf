package repository

import (
	"context"

	"gorm.io/gorm"

	"irufoodflow/backend/internal/model"
)

// RecipeRepository 食谱数据访问接口
type RecipeRepository interface {
	// Create 同时写入配料
	Create(ctx context.Context, recipe *model.Recipe) error
	GetByID(ctx context.Context, id string) (*model.Recipe, error)
	// List ownerID 为空时返回全部
	List(ctx context.Context, ownerID, keyword string) ([]model.Recipe, error)
	// Update 在事务中改写表头并整体替换配料
	Update(ctx context.Context, recipe *model.Recipe) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

type recipeRepo struct {
	db *gorm.DB
}

// NewRecipeRepo 创建 RecipeRepository 实例
func NewRecipeRepo(db *gorm.DB) RecipeRepository {
	return &recipeRepo{db: db}
}

func (r *recipeRepo) Create(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

func (r *recipeRepo) GetByID(ctx context.Context, id string) (*model.Recipe, error) {
	var recipe model.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Ingredients.Product").
		Where("recipe_id = ?", id).
		First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepo) List(ctx context.Context, ownerID, keyword string) ([]model.Recipe, error) {
	var recipes []model.Recipe
	db := r.db.WithContext(ctx)
	if ownerID != "" {
		db = db.Where("owner_id = ?", ownerID)
	}
	if keyword != "" {
		db = db.Where("name ILIKE ?", likePattern(keyword))
	}
	err := db.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).
		Order("category ASC, name ASC").
		Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepo) Update(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Recipe{}).
			Where("recipe_id = ?", recipe.RecipeID).
			Updates(map[string]interface{}{
				"name":        recipe.Name,
				"category":    recipe.Category,
				"portions":    recipe.Portions,
				"preparation": recipe.Preparation,
				"updated_by":  recipe.UpdatedBy,
			}).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.RecipeID).
			Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}

		if len(recipe.Ingredients) == 0 {
			return nil
		}
		for i := range recipe.Ingredients {
			recipe.Ingredients[i].RecipeID = recipe.RecipeID
			recipe.Ingredients[i].IngredientID = ""
		}
		return tx.Create(&recipe.Ingredients).Error
	})
}

func (r *recipeRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Where("recipe_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recipeRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}
