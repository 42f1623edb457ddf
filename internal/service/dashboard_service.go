package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
)

// DashboardService 首页统计
type DashboardService interface {
	Summary(ctx context.Context, role, userID string) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

func (s *dashboardService) Summary(ctx context.Context, role, userID string) (*dto.DashboardResponse, error) {
	counts := make(map[string]int64)
	var err error
	switch role {
	case model.RoleAdmin:
		err = s.adminCounts(ctx, counts)
	case model.RoleTeacher:
		err = s.teacherCounts(ctx, userID, counts)
	case model.RoleDeptHead:
		err = s.deptHeadCounts(ctx, counts)
	case model.RolePurchasing:
		err = s.purchasingCounts(ctx, counts)
	case model.RoleStock:
		err = s.stockCounts(ctx, counts)
	default:
		return nil, ErrInvalidRole
	}
	if err != nil {
		s.logger.Error("统计首页数据失败", zap.String("role", role), zap.Error(err))
		return nil, err
	}
	return &dto.DashboardResponse{Role: role, Counts: counts}, nil
}

func (s *dashboardService) adminCounts(ctx context.Context, counts map[string]int64) error {
	byRole, err := s.repo.User.CountByRole(ctx)
	if err != nil {
		return err
	}
	for r, n := range byRole {
		counts["users"] += n
		counts["users_"+r] = n
	}
	if counts["courses"], err = s.repo.Course.Count(ctx); err != nil {
		return err
	}
	if counts["products"], err = s.repo.Product.Count(ctx); err != nil {
		return err
	}
	return s.orderCounts(ctx, "", counts)
}

func (s *dashboardService) teacherCounts(ctx context.Context, userID string, counts map[string]int64) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	counts["courses"] = int64(len(user.CourseIDs))
	if counts["recipes"], err = s.repo.Recipe.CountByOwner(ctx, userID); err != nil {
		return err
	}
	return s.orderCounts(ctx, userID, counts)
}

func (s *dashboardService) deptHeadCounts(ctx context.Context, counts map[string]int64) error {
	byStatus, err := s.repo.Order.CountByStatus(ctx, "")
	if err != nil {
		return err
	}
	counts["orders_"+model.OrderStatusPending] = byStatus[model.OrderStatusPending]
	counts["orders_this_week"], err = s.repo.Order.CountCreatedSince(ctx, startOfWeek(time.Now()))
	return err
}

func (s *dashboardService) purchasingCounts(ctx context.Context, counts map[string]int64) error {
	byStatus, err := s.repo.Order.CountByStatus(ctx, "")
	if err != nil {
		return err
	}
	counts["orders_open"] = byStatus[model.OrderStatusPending] + byStatus[model.OrderStatusApproved]
	counts["products_zero_stock"], err = s.repo.Product.CountZeroStock(ctx)
	return err
}

func (s *dashboardService) stockCounts(ctx context.Context, counts map[string]int64) error {
	var err error
	if counts["products"], err = s.repo.Product.Count(ctx); err != nil {
		return err
	}
	if counts["assets"], err = s.repo.Asset.Count(ctx); err != nil {
		return err
	}
	counts["count_sessions_open"], err = s.repo.InventoryCount.CountOpen(ctx)
	return err
}

// orderCounts 按状态统计订单，teacherID 为空时统计全部
func (s *dashboardService) orderCounts(ctx context.Context, teacherID string, counts map[string]int64) error {
	byStatus, err := s.repo.Order.CountByStatus(ctx, teacherID)
	if err != nil {
		return err
	}
	for _, st := range []string{model.OrderStatusPending, model.OrderStatusApproved, model.OrderStatusReceived} {
		counts["orders_"+st] = byStatus[st]
	}
	return nil
}

// startOfWeek 本周一零点
func startOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, 1-goWeekdayToISO(day.Weekday()))
}
