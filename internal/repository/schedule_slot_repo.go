package repository

import (
	"context"

	"gorm.io/gorm"

	"irufoodflow/backend/internal/model"
)

// ScheduleFilter 课程表筛选条件（program/class/term/year）
type ScheduleFilter struct {
	Program   string
	ClassName string
	Term      string
	Year      string
}

// ScheduleFilterValues 课程表筛选项的去重取值
type ScheduleFilterValues struct {
	Programs []string
	Classes  []string
	Terms    []string
	Years    []string
}

// ScheduleSlotRepository 课程表时段数据访问接口
type ScheduleSlotRepository interface {
	Create(ctx context.Context, slot *model.ScheduleSlot) error
	GetByID(ctx context.Context, id string) (*model.ScheduleSlot, error)
	Update(ctx context.Context, slot *model.ScheduleSlot) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *ScheduleFilter) ([]model.ScheduleSlot, error)
	DistinctValues(ctx context.Context) (*ScheduleFilterValues, error)
	// ReplaceByFilter 在事务中写入一批时段；replace 为 true 时先删除同一筛选条件下的已有时段
	ReplaceByFilter(ctx context.Context, filter *ScheduleFilter, slots []model.ScheduleSlot, replace bool) error
}

type scheduleSlotRepo struct {
	db *gorm.DB
}

// NewScheduleSlotRepo 创建 ScheduleSlotRepository 实例
func NewScheduleSlotRepo(db *gorm.DB) ScheduleSlotRepository {
	return &scheduleSlotRepo{db: db}
}

func (r *scheduleSlotRepo) Create(ctx context.Context, slot *model.ScheduleSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *scheduleSlotRepo) GetByID(ctx context.Context, id string) (*model.ScheduleSlot, error) {
	var slot model.ScheduleSlot
	err := r.db.WithContext(ctx).
		Where("slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *scheduleSlotRepo) Update(ctx context.Context, slot *model.ScheduleSlot) error {
	return r.db.WithContext(ctx).Save(slot).Error
}

func (r *scheduleSlotRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("slot_id = ?", id).
		Delete(&model.ScheduleSlot{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func applyScheduleFilter(db *gorm.DB, filter *ScheduleFilter) *gorm.DB {
	if filter == nil {
		return db
	}
	if filter.Program != "" {
		db = db.Where("program = ?", filter.Program)
	}
	if filter.ClassName != "" {
		db = db.Where("class_name = ?", filter.ClassName)
	}
	if filter.Term != "" {
		db = db.Where("term = ?", filter.Term)
	}
	if filter.Year != "" {
		db = db.Where("year = ?", filter.Year)
	}
	return db
}

func (r *scheduleSlotRepo) List(ctx context.Context, filter *ScheduleFilter) ([]model.ScheduleSlot, error) {
	var slots []model.ScheduleSlot
	err := applyScheduleFilter(r.db.WithContext(ctx), filter).
		Order("day_of_week ASC, start_time ASC").
		Find(&slots).Error
	return slots, err
}

func (r *scheduleSlotRepo) DistinctValues(ctx context.Context) (*ScheduleFilterValues, error) {
	values := &ScheduleFilterValues{}
	targets := []struct {
		column string
		dest   *[]string
	}{
		{"program", &values.Programs},
		{"class_name", &values.Classes},
		{"term", &values.Terms},
		{"year", &values.Years},
	}
	for _, t := range targets {
		if err := r.db.WithContext(ctx).
			Model(&model.ScheduleSlot{}).
			Distinct(t.column).
			Order(t.column + " ASC").
			Pluck(t.column, t.dest).Error; err != nil {
			return nil, err
		}
	}
	return values, nil
}

func (r *scheduleSlotRepo) ReplaceByFilter(ctx context.Context, filter *ScheduleFilter, slots []model.ScheduleSlot, replace bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replace {
			if err := applyScheduleFilter(tx, filter).
				Delete(&model.ScheduleSlot{}).Error; err != nil {
				return err
			}
		}
		if len(slots) == 0 {
			return nil
		}
		return tx.CreateInBatches(&slots, 200).Error
	})
}
