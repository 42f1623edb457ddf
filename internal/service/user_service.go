package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"irufoodflow/backend/config"
	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUsernameExists     = errors.New("用户名已存在")
	ErrInvalidRole        = errors.New("角色取值不合法")
	ErrUserSelfDelete     = errors.New("不能删除自己")
	ErrUserSelfRoleChange = errors.New("不能修改自己的角色或停用自己")
)

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	ResetPassword(ctx context.Context, id string, req *dto.ResetPasswordRequest, callerID string) error
	Delete(ctx context.Context, id string, callerID string) error
	AssignCourses(ctx context.Context, id string, req *dto.AssignCoursesRequest, callerID string) (*dto.UserResponse, error)
	// EnsureBootstrapAdmin 库中没有管理员时按配置创建初始管理员，返回是否创建
	EnsureBootstrapAdmin(ctx context.Context, seed config.AdminSeed) (bool, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	if !model.IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}

	// 检查用户名唯一性
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	courseIDs, err := s.validateCourseIDs(ctx, req.CourseIDs)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
		CourseIDs:    courseIDs,
		IsActive:     true,
	}
	if callerID != "" {
		user.CreatedBy = &callerID
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// validateCourseIDs 校验课程全部存在，返回去重后的列表
func (s *userService) validateCourseIDs(ctx context.Context, ids []string) (model.StringArray, error) {
	seen := make(map[string]bool, len(ids))
	unique := make(model.StringArray, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return unique, nil
	}

	courses, err := s.repo.Course.ListByIDs(ctx, unique)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	if len(courses) != len(unique) {
		return nil, ErrCourseNotFound
	}
	return unique, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) getUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filters := &repository.UserListFilters{
		Role:    req.Role,
		Keyword: req.Keyword,
	}

	users, total, err := s.repo.User.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if id == callerID {
		if req.Role != nil && *req.Role != user.Role {
			return nil, ErrUserSelfRoleChange
		}
		if req.IsActive != nil && !*req.IsActive {
			return nil, ErrUserSelfRoleChange
		}
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !model.IsValidRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, id string, req *dto.ResetPasswordRequest, callerID string) error {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}

	if _, err := s.getUser(ctx, id); err != nil {
		return err
	}

	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── AssignCourses ──────────────────────

func (s *userService) AssignCourses(ctx context.Context, id string, req *dto.AssignCoursesRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	courseIDs, err := s.validateCourseIDs(ctx, req.CourseIDs)
	if err != nil {
		return nil, err
	}

	user.CourseIDs = courseIDs
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("分配课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── EnsureBootstrapAdmin ──────────────────────

func (s *userService) EnsureBootstrapAdmin(ctx context.Context, seed config.AdminSeed) (bool, error) {
	if seed.Username == "" || seed.Password == "" {
		return false, nil
	}

	counts, err := s.repo.User.CountByRole(ctx)
	if err != nil {
		return false, err
	}
	if counts[model.RoleAdmin] > 0 {
		return false, nil
	}

	name := seed.Name
	if name == "" {
		name = seed.Username
	}
	_, err = s.Create(ctx, &dto.CreateUserRequest{
		Username: seed.Username,
		Name:     name,
		Password: seed.Password,
		Role:     model.RoleAdmin,
	}, "")
	if err != nil {
		return false, err
	}
	s.logger.Info("已创建初始管理员", zap.String("username", seed.Username))
	return true, nil
}

// ── 辅助函数 ──

func toUserResponse(u *model.User) dto.UserResponse {
	courseIDs := []string(u.CourseIDs)
	if courseIDs == nil {
		courseIDs = []string{}
	}
	return dto.UserResponse{
		ID:        u.UserID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		CourseIDs: courseIDs,
		IsActive:  u.IsActive,
	}
}
