package repository

import (
	"context"

	"gorm.io/gorm"

	"irufoodflow/backend/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	List(ctx context.Context, includeInactive bool) ([]model.Course, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Count(ctx context.Context) (int64, error)
	// DeleteWithAssignments 在事务中删除课程，并从所有用户的 course_ids 中移除该课程
	// 返回被清理分配的用户数
	DeleteWithAssignments(ctx context.Context, id string) (int64, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context, includeInactive bool) ([]model.Course, error) {
	var courses []model.Course
	db := r.db.WithContext(ctx)
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("code ASC").Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("course_id IN ?", ids).
		Order("code ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Course{}).Count(&count).Error
	return count, err
}

func (r *courseRepo) DeleteWithAssignments(ctx context.Context, id string) (int64, error) {
	var cleaned int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("? = ANY(course_ids)", id).
			Update("course_ids", gorm.Expr("array_remove(course_ids, ?)", id))
		if res.Error != nil {
			return res.Error
		}
		cleaned = res.RowsAffected

		res = tx.Where("course_id = ?", id).Delete(&model.Course{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return cleaned, err
}
