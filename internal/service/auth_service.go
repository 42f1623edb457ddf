package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/rbac"
	"irufoodflow/backend/internal/repository"
	"irufoodflow/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials  = errors.New("用户名或密码错误")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrUserInactive        = errors.New("账号已停用")
	ErrRefreshTokenInvalid = errors.New("Refresh Token 无效或已失效")
)

// TokenBlacklist Token 吊销存储（Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID, jti string, expiresAt time.Time, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Me(ctx context.Context, userID string) (*dto.UserDetailResponse, error)
	Pages(role string) *dto.PagesResponse
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. 生成 Token 对
	return s.issueTokens(user)
}

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user),
		Pages:        rbac.Pages(user.Role),
	}, nil
}

// ────────────────────── Logout ──────────────────────

// Logout 作废当前 Access Token；携带本人的 Refresh Token 时一并作废
// Redis 不可用时降级为成功
func (s *authService) Logout(ctx context.Context, userID, jti string, expiresAt time.Time, refreshToken string) error {
	s.revoke(ctx, jti, expiresAt)

	if refreshToken == "" {
		return nil
	}
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh || claims.UserID != userID {
		s.logger.Debug("登出时忽略无效的 Refresh Token", zap.String("user_id", userID))
		return nil
	}
	if claims.ExpiresAt != nil {
		s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	}
	return nil
}

// revoke 将 jti 加入黑名单直至其过期，失败只记日志
func (s *authService) revoke(ctx context.Context, jti string, expiresAt time.Time) {
	if s.blacklist == nil || jti == "" {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Warn("Token 加入黑名单失败，登出降级", zap.String("jti", jti), zap.Error(err))
	}
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("检查 Token 黑名单失败", zap.Error(err))
		} else if revoked {
			return nil, ErrRefreshTokenInvalid
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 轮换：旧 Refresh Token 作废
	if claims.ExpiresAt != nil {
		s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	}

	return s.issueTokens(user)
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	courses, err := s.repo.Course.ListByIDs(ctx, user.CourseIDs)
	if err != nil {
		s.logger.Error("查询分配课程失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}
	briefs := make([]dto.CourseBrief, 0, len(courses))
	for _, c := range courses {
		briefs = append(briefs, dto.CourseBrief{ID: c.CourseID, Code: c.Code, Name: c.Name})
	}

	return &dto.UserDetailResponse{
		ID:        user.UserID,
		Username:  user.Username,
		Name:      user.Name,
		Role:      user.Role,
		IsActive:  user.IsActive,
		Courses:   briefs,
		Pages:     rbac.Pages(user.Role),
		CreatedAt: formatTime(user.CreatedAt),
	}, nil
}

// ────────────────────── Pages ──────────────────────

func (s *authService) Pages(role string) *dto.PagesResponse {
	return &dto.PagesResponse{Role: role, Pages: rbac.Pages(role)}
}
