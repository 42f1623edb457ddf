package handler

import "irufoodflow/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Course     *CourseHandler
	Product    *ProductHandler
	Order      *OrderHandler
	Purchasing *PurchasingHandler
	Stock      *StockHandler
	Inventory  *InventoryHandler
	Recipe     *RecipeHandler
	Schedule   *ScheduleHandler
	Calendar   *CalendarHandler
	Dashboard  *DashboardHandler
}

// NewHandler 创建 Handler 聚合
// maxUploadBytes 限制 Excel / ICS 上传文件大小
func NewHandler(svc *service.Service, maxUploadBytes int64) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Course:     NewCourseHandler(svc.Course),
		Product:    NewProductHandler(svc.Product, maxUploadBytes),
		Order:      NewOrderHandler(svc.Order),
		Purchasing: NewPurchasingHandler(svc.Purchasing),
		Stock:      NewStockHandler(svc.Stock),
		Inventory:  NewInventoryHandler(svc.Inventory, maxUploadBytes),
		Recipe:     NewRecipeHandler(svc.Recipe),
		Schedule:   NewScheduleHandler(svc.Schedule, maxUploadBytes),
		Calendar:   NewCalendarHandler(svc.Calendar, maxUploadBytes),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
	}
}
