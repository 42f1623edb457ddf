package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"irufoodflow/backend/internal/model"
)

// ── 固定资产 ──

// InventoryAssetRepository 固定资产数据访问接口
type InventoryAssetRepository interface {
	Create(ctx context.Context, asset *model.InventoryAsset) error
	GetByID(ctx context.Context, id string) (*model.InventoryAsset, error)
	GetByCode(ctx context.Context, code string) (*model.InventoryAsset, error)
	List(ctx context.Context, category, keyword string) ([]model.InventoryAsset, error)
	Update(ctx context.Context, asset *model.InventoryAsset) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// Upsert 按资产编码批量插入或更新
	Upsert(ctx context.Context, assets []model.InventoryAsset) error
	Count(ctx context.Context) (int64, error)
}

type inventoryAssetRepo struct {
	db *gorm.DB
}

// NewInventoryAssetRepo 创建 InventoryAssetRepository 实例
func NewInventoryAssetRepo(db *gorm.DB) InventoryAssetRepository {
	return &inventoryAssetRepo{db: db}
}

func (r *inventoryAssetRepo) Create(ctx context.Context, asset *model.InventoryAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *inventoryAssetRepo) GetByID(ctx context.Context, id string) (*model.InventoryAsset, error) {
	var asset model.InventoryAsset
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", id).
		First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *inventoryAssetRepo) GetByCode(ctx context.Context, code string) (*model.InventoryAsset, error) {
	var asset model.InventoryAsset
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *inventoryAssetRepo) List(ctx context.Context, category, keyword string) ([]model.InventoryAsset, error) {
	var assets []model.InventoryAsset
	db := r.db.WithContext(ctx)
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if keyword != "" {
		kw := likePattern(keyword)
		db = db.Where("name ILIKE ? OR code ILIKE ?", kw, kw)
	}
	err := db.Order("code ASC").Find(&assets).Error
	return assets, err
}

func (r *inventoryAssetRepo) Update(ctx context.Context, asset *model.InventoryAsset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

func (r *inventoryAssetRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&model.InventoryAsset{}).
		Where("asset_id = ?", id).
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

func (r *inventoryAssetRepo) Upsert(ctx context.Context, assets []model.InventoryAsset) error {
	if len(assets) == 0 {
		return nil
	}
	activeOnly := clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "deleted_at IS NULL"}}}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "code"}},
			TargetWhere: activeOnly,
			DoUpdates:   clause.AssignmentColumns([]string{"name", "category", "location", "quantity", "condition", "updated_at"}),
		}).
		CreateInBatches(assets, 200).Error
}

func (r *inventoryAssetRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.InventoryAsset{}).Count(&count).Error
	return count, err
}

// ── 盘点会话 ──

// InventoryCountRepository 盘点会话数据访问接口
type InventoryCountRepository interface {
	// StartSession 在事务中创建会话：版本号取同标题最大值 + 1，并为每项资产生成一行明细
	StartSession(ctx context.Context, title string, countedBy string) (*model.InventoryCountSession, error)
	GetSession(ctx context.Context, id string) (*model.InventoryCountSession, error)
	ListSessions(ctx context.Context) ([]model.InventoryCountSession, error)
	GetItem(ctx context.Context, sessionID, assetID string) (*model.InventoryCountItem, error)
	UpdateItem(ctx context.Context, item *model.InventoryCountItem) error
	// UpdateItems 批量写入多行盘点结果（单事务）
	UpdateItems(ctx context.Context, items []model.InventoryCountItem) error
	// CompleteSession 在事务中关闭会话并把已盘点数量、状况回写资产
	CompleteSession(ctx context.Context, sessionID string, at time.Time) error
	CountOpen(ctx context.Context) (int64, error)
}

type inventoryCountRepo struct {
	db *gorm.DB
}

// NewInventoryCountRepo 创建 InventoryCountRepository 实例
func NewInventoryCountRepo(db *gorm.DB) InventoryCountRepository {
	return &inventoryCountRepo{db: db}
}

func (r *inventoryCountRepo) StartSession(ctx context.Context, title string, countedBy string) (*model.InventoryCountSession, error) {
	var session *model.InventoryCountSession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxVersion int
		if err := tx.Model(&model.InventoryCountSession{}).
			Where("title = ?", title).
			Select("COALESCE(MAX(version), 0)").
			Scan(&maxVersion).Error; err != nil {
			return err
		}

		s := &model.InventoryCountSession{
			Title:   title,
			Version: maxVersion + 1,
			Status:  model.CountSessionOpen,
		}
		if countedBy != "" {
			s.CountedBy = &countedBy
		}
		if err := tx.Create(s).Error; err != nil {
			return err
		}

		var assets []model.InventoryAsset
		if err := tx.Order("code ASC").Find(&assets).Error; err != nil {
			return err
		}
		if len(assets) > 0 {
			items := make([]model.InventoryCountItem, 0, len(assets))
			for _, a := range assets {
				items = append(items, model.InventoryCountItem{
					SessionID:   s.SessionID,
					AssetID:     a.AssetID,
					ExpectedQty: a.Quantity,
				})
			}
			if err := tx.CreateInBatches(&items, 200).Error; err != nil {
				return err
			}
			s.Items = items
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *inventoryCountRepo) GetSession(ctx context.Context, id string) (*model.InventoryCountSession, error) {
	var session model.InventoryCountSession
	err := r.db.WithContext(ctx).
		Preload("Items.Asset", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *inventoryCountRepo) ListSessions(ctx context.Context) ([]model.InventoryCountSession, error) {
	var sessions []model.InventoryCountSession
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *inventoryCountRepo) GetItem(ctx context.Context, sessionID, assetID string) (*model.InventoryCountItem, error) {
	var item model.InventoryCountItem
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND asset_id = ?", sessionID, assetID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryCountRepo) UpdateItem(ctx context.Context, item *model.InventoryCountItem) error {
	return r.db.WithContext(ctx).
		Model(&model.InventoryCountItem{}).
		Where("count_item_id = ?", item.CountItemID).
		Updates(map[string]interface{}{
			"counted_qty": item.CountedQty,
			"condition":   item.Condition,
			"note":        item.Note,
			"counted_at":  item.CountedAt,
		}).Error
}

func (r *inventoryCountRepo) UpdateItems(ctx context.Context, items []model.InventoryCountItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			if err := tx.Model(&model.InventoryCountItem{}).
				Where("count_item_id = ?", items[i].CountItemID).
				Updates(map[string]interface{}{
					"counted_qty": items[i].CountedQty,
					"condition":   items[i].Condition,
					"note":        items[i].Note,
					"counted_at":  items[i].CountedAt,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *inventoryCountRepo) CompleteSession(ctx context.Context, sessionID string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.InventoryCountSession{}).
			Where("session_id = ? AND status = ?", sessionID, model.CountSessionOpen).
			Updates(map[string]interface{}{
				"status":       model.CountSessionCompleted,
				"completed_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var items []model.InventoryCountItem
		if err := tx.Where("session_id = ? AND counted_qty IS NOT NULL", sessionID).
			Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			updates := map[string]interface{}{"quantity": *item.CountedQty}
			if item.Condition != "" {
				updates["condition"] = item.Condition
			}
			if err := tx.Model(&model.InventoryAsset{}).
				Where("asset_id = ?", item.AssetID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *inventoryCountRepo) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.InventoryCountSession{}).
		Where("status = ?", model.CountSessionOpen).
		Count(&count).Error
	return count, err
}
