package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
)

var (
	ErrCourseNotFound   = errors.New("课程不存在")
	ErrCourseCodeExists = errors.New("课程代码已存在")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error)
	// Delete 删除课程并从所有用户的分配中移除
	Delete(ctx context.Context, id string) (*dto.DeleteCourseResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	code := normalizeCourseCode(req.Code)
	if _, err := s.repo.Course.GetByCode(ctx, code); err == nil {
		return nil, ErrCourseCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	course := &model.Course{
		Code:       code,
		Name:       strings.TrimSpace(req.Name),
		ClassLevel: req.ClassLevel,
		IsActive:   true,
		BaseModel:  model.BaseModel{CreatedBy: &callerID},
	}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCourseCodeExists
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if req.Code != nil {
		code := normalizeCourseCode(*req.Code)
		if code != course.Code {
			if existing, err := s.repo.Course.GetByCode(ctx, code); err == nil && existing.CourseID != id {
				return nil, ErrCourseCodeExists
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			course.Code = code
		}
	}
	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.ClassLevel != nil {
		course.ClassLevel = *req.ClassLevel
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Update(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCourseCodeExists
		}
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id string) (*dto.DeleteCourseResponse, error) {
	cleaned, err := s.repo.Course.DeleteWithAssignments(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程已删除", zap.String("id", id), zap.Int64("cleaned_users", cleaned))
	return &dto.DeleteCourseResponse{CleanedUsers: cleaned}, nil
}

// ── 辅助函数 ──

// normalizeCourseCode 课程代码去空格并转大写（土耳其语字母）
func normalizeCourseCode(code string) string {
	return strings.ToUpperSpecial(turkishCase, strings.Join(strings.Fields(code), ""))
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	return dto.CourseResponse{
		ID:         c.CourseID,
		Code:       c.Code,
		Name:       c.Name,
		ClassLevel: c.ClassLevel,
		IsActive:   c.IsActive,
		CreatedAt:  formatTime(c.CreatedAt),
		UpdatedAt:  formatTime(c.UpdatedAt),
	}
}
