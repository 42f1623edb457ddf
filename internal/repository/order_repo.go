package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"irufoodflow/backend/internal/model"
	pkgerrors "irufoodflow/backend/pkg/errors"
)

// OrderFilters 订单筛选条件
type OrderFilters struct {
	Week      string
	CourseID  string
	TeacherID string
	Statuses  []string
}

// OrderRepository 采购清单数据访问接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, filters *OrderFilters, offset, limit int) ([]model.Order, int64, error)
	// ListAll 不分页，用于汇总对账
	ListAll(ctx context.Context, filters *OrderFilters) ([]model.Order, error)
	// Update 整行改写，带乐观锁；版本不匹配返回 ErrOptimisticLock
	Update(ctx context.Context, order *model.Order) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// FindPending 查询教师在同一课程、同一周下状态为 bekliyor 的最新订单
	FindPending(ctx context.Context, teacherID, courseID, week string) (*model.Order, error)
	DistinctWeeks(ctx context.Context) ([]string, error)
	// CountByStatus teacherID 为空时统计全部订单
	CountByStatus(ctx context.Context, teacherID string) (map[string]int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepo 创建 OrderRepository 实例
func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Course").
		Where("order_id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) applyFilters(db *gorm.DB, filters *OrderFilters) *gorm.DB {
	if filters == nil {
		return db
	}
	if filters.Week != "" {
		db = db.Where("week = ?", filters.Week)
	}
	if filters.CourseID != "" {
		db = db.Where("course_id = ?", filters.CourseID)
	}
	if filters.TeacherID != "" {
		db = db.Where("teacher_id = ?", filters.TeacherID)
	}
	if len(filters.Statuses) > 0 {
		db = db.Where("status IN ?", filters.Statuses)
	}
	return db
}

func (r *orderRepo) List(ctx context.Context, filters *OrderFilters, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.applyFilters(r.db.WithContext(ctx).Model(&model.Order{}), filters)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Teacher").Preload("Course").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepo) ListAll(ctx context.Context, filters *OrderFilters) ([]model.Order, error) {
	var orders []model.Order
	err := r.applyFilters(r.db.WithContext(ctx).Model(&model.Order{}), filters).
		Preload("Course").
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) Update(ctx context.Context, order *model.Order) error {
	oldVersion := order.Version
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("order_id = ? AND version = ?", order.OrderID, oldVersion).
		Updates(map[string]interface{}{
			"items":       order.Items,
			"total":       order.Total,
			"status":      order.Status,
			"notes":       order.Notes,
			"approved_at": order.ApprovedAt,
			"approved_by": order.ApprovedBy,
			"received_at": order.ReceivedAt,
			"received_by": order.ReceivedBy,
			"updated_by":  order.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	order.Version = oldVersion + 1
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("order_id = ?", id).
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

func (r *orderRepo) FindPending(ctx context.Context, teacherID, courseID, week string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND course_id = ? AND week = ? AND status = ?",
			teacherID, courseID, week, model.OrderStatusPending).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) DistinctWeeks(ctx context.Context) ([]string, error) {
	var weeks []string
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Distinct("week").
		Pluck("week", &weeks).Error
	return weeks, err
}

func (r *orderRepo) CountByStatus(ctx context.Context, teacherID string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	db := r.db.WithContext(ctx).Model(&model.Order{})
	if teacherID != "" {
		db = db.Where("teacher_id = ?", teacherID)
	}
	err := db.Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}

func (r *orderRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}
