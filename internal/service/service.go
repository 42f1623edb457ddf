package service

import (
	"go.uber.org/zap"

	"irufoodflow/backend/config"
	"irufoodflow/backend/internal/repository"
	"irufoodflow/backend/pkg/events"
	"irufoodflow/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Course     CourseService
	Product    ProductService
	Order      OrderService
	Purchasing PurchasingService
	Stock      StockService
	Inventory  InventoryService
	Recipe     RecipeService
	Schedule   ScheduleService
	Calendar   CalendarService
	Dashboard  DashboardService
}

// NewService 创建 Service 聚合
// blacklist 为 nil 时登出与刷新的吊销检查降级为空操作
// 各模块日志以 Named 区分来源
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	publisher events.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, logger.Named("auth")),
		User:       NewUserService(repo, logger.Named("user")),
		Course:     NewCourseService(repo, logger.Named("course")),
		Product:    NewProductService(repo, cfg.Import.MaxRows, logger.Named("product")),
		Order:      NewOrderService(repo, publisher, logger.Named("order")),
		Purchasing: NewPurchasingService(repo, logger.Named("purchasing")),
		Stock:      NewStockService(repo, logger.Named("stock")),
		Inventory:  NewInventoryService(repo, cfg.Import.MaxRows, logger.Named("inventory")),
		Recipe:     NewRecipeService(repo, publisher, logger.Named("recipe")),
		Schedule:   NewScheduleService(repo, logger.Named("schedule")),
		Calendar:   NewCalendarService(repo, logger.Named("calendar")),
		Dashboard:  NewDashboardService(repo, logger.Named("dashboard")),
	}
}
