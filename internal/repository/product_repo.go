package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"irufoodflow/backend/internal/model"
)

// ProductFilters 商品筛选条件
type ProductFilters struct {
	Category string
	Keyword  string
}

// ProductRepository 商品目录数据访问接口
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	GetByNameBrand(ctx context.Context, name, brand string) (*model.Product, error)
	List(ctx context.Context, filters *ProductFilters, offset, limit int) ([]model.Product, int64, error)
	// ListAll 不分页，按 category、name 排序
	ListAll(ctx context.Context, filters *ProductFilters) ([]model.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string, deletedBy string) error
	Categories(ctx context.Context) ([]string, error)
	// UpdateStock 单条 UPDATE 写入库存与时间戳，后写覆盖先写
	UpdateStock(ctx context.Context, id string, qty decimal.Decimal, at time.Time) error
	// Upsert 按 (name, brand) 批量插入或更新；withStock 为 false 时保留已有库存
	Upsert(ctx context.Context, products []model.Product, withStock bool) error
	Count(ctx context.Context) (int64, error)
	CountZeroStock(ctx context.Context) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

// NewProductRepo 创建 ProductRepository 实例
func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("product_id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByNameBrand(ctx context.Context, name, brand string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("name = ? AND brand = ?", name, brand).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) applyFilters(db *gorm.DB, filters *ProductFilters) *gorm.DB {
	if filters == nil {
		return db
	}
	if filters.Category != "" {
		db = db.Where("category = ?", filters.Category)
	}
	if filters.Keyword != "" {
		kw := likePattern(filters.Keyword)
		db = db.Where("name ILIKE ? OR brand ILIKE ?", kw, kw)
	}
	return db
}

func (r *productRepo) List(ctx context.Context, filters *ProductFilters, offset, limit int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := r.applyFilters(r.db.WithContext(ctx).Model(&model.Product{}), filters)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("category ASC, name ASC").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepo) ListAll(ctx context.Context, filters *ProductFilters) ([]model.Product, error) {
	var products []model.Product
	err := r.applyFilters(r.db.WithContext(ctx).Model(&model.Product{}), filters).
		Order("category ASC, name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("product_id = ?", id).
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

func (r *productRepo) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *productRepo) UpdateStock(ctx context.Context, id string, qty decimal.Decimal, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("product_id = ?", id).
		Updates(map[string]interface{}{
			"stock":            qty,
			"stock_updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) Upsert(ctx context.Context, products []model.Product, withStock bool) error {
	if len(products) == 0 {
		return nil
	}
	columns := []string{"price", "unit", "category", "updated_at"}
	if withStock {
		columns = append(columns, "stock", "stock_updated_at")
	}
	// 与部分唯一索引 uq_products_name_brand 的谓词一致
	activeOnly := clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "deleted_at IS NULL"}}}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "name"}, {Name: "brand"}},
			TargetWhere: activeOnly,
			DoUpdates:   clause.AssignmentColumns(columns),
		}).
		CreateInBatches(products, 200).Error
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepo) CountZeroStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("stock <= 0").
		Count(&count).Error
	return count, err
}
