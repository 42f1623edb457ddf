package repository

import (
	"context"

	"gorm.io/gorm"

	"irufoodflow/backend/internal/model"
)

// CalendarEventRepository 学期日历事件数据访问接口
type CalendarEventRepository interface {
	Create(ctx context.Context, event *model.CalendarEvent) error
	BatchCreate(ctx context.Context, events []model.CalendarEvent) error
	GetByID(ctx context.Context, id string) (*model.CalendarEvent, error)
	Update(ctx context.Context, event *model.CalendarEvent) error
	Delete(ctx context.Context, id string) error
	// List week 为 0 时不按周过滤
	List(ctx context.Context, term, year string, week int) ([]model.CalendarEvent, error)
}

type calendarEventRepo struct {
	db *gorm.DB
}

// NewCalendarEventRepo 创建 CalendarEventRepository 实例
func NewCalendarEventRepo(db *gorm.DB) CalendarEventRepository {
	return &calendarEventRepo{db: db}
}

func (r *calendarEventRepo) Create(ctx context.Context, event *model.CalendarEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *calendarEventRepo) BatchCreate(ctx context.Context, events []model.CalendarEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&events, 200).Error
}

func (r *calendarEventRepo) GetByID(ctx context.Context, id string) (*model.CalendarEvent, error) {
	var event model.CalendarEvent
	err := r.db.WithContext(ctx).
		Where("event_id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *calendarEventRepo) Update(ctx context.Context, event *model.CalendarEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *calendarEventRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("event_id = ?", id).
		Delete(&model.CalendarEvent{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *calendarEventRepo) List(ctx context.Context, term, year string, week int) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	db := r.db.WithContext(ctx)
	if term != "" {
		db = db.Where("term = ?", term)
	}
	if year != "" {
		db = db.Where("year = ?", year)
	}
	if week > 0 {
		db = db.Where("week_number = ?", week)
	}
	err := db.Order("week_number ASC, day_of_week ASC, created_at ASC").
		Find(&events).Error
	return events, err
}
