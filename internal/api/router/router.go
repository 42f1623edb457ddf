package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"irufoodflow/backend/config"
	"irufoodflow/backend/internal/api/handler"
	"irufoodflow/backend/internal/api/middleware"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/pkg/jwt"
	"irufoodflow/backend/pkg/redis"
)

const (
	admin      = model.RoleAdmin
	teacher    = model.RoleTeacher
	deptHead   = model.RoleDeptHead
	purchasing = model.RolePurchasing
	stock      = model.RoleStock
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：黑名单检查与登录限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unavailable"})
				return
			}
		}
		// Redis 可选，不可用时仅降级
		redisState := "disabled"
		if rdb != nil {
			redisState = "ok"
			if err := rdb.Ping(ctx); err != nil {
				redisState = "degraded"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": redisState})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, time.Minute, logger), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.GET("/auth/pages", h.Auth.Pages)

			authorized.GET("/dashboard", h.Dashboard.Summary)

			// 用户模块
			users := authorized.Group("/users", middleware.RoleAuth(admin))
			{
				users.GET("", h.User.ListUsers)
				users.POST("", h.User.CreateUser)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", h.User.DeleteUser)
				users.POST("/:id/reset-password", h.User.ResetPassword)
				users.PUT("/:id/courses", h.User.AssignCourses)
			}

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/:id", h.Course.GetCourse)
				courses.POST("", middleware.RoleAuth(admin), h.Course.CreateCourse)
				courses.PUT("/:id", middleware.RoleAuth(admin), h.Course.UpdateCourse)
				courses.DELETE("/:id", middleware.RoleAuth(admin), h.Course.DeleteCourse)
			}

			// 商品目录
			catalogEditors := middleware.RoleAuth(admin, deptHead, purchasing)
			products := authorized.Group("/products")
			{
				products.GET("", h.Product.ListProducts)
				products.GET("/categories", h.Product.Categories)
				products.GET("/template", catalogEditors, h.Product.Template)
				products.GET("/export", catalogEditors, h.Product.ExportProducts)
				products.POST("/import", catalogEditors, h.Product.ImportProducts)
				products.GET("/:id", h.Product.GetProduct)
				products.POST("", catalogEditors, h.Product.CreateProduct)
				products.PUT("/:id", catalogEditors, h.Product.UpdateProduct)
				products.DELETE("/:id", middleware.RoleAuth(admin, deptHead), h.Product.DeleteProduct)
			}

			// 采购清单（列表与详情在 Service 层按角色过滤）
			orders := authorized.Group("/orders")
			{
				orders.GET("", h.Order.ListOrders)
				orders.GET("/weeks", h.Order.Weeks)
				orders.POST("", middleware.RoleAuth(teacher, admin), h.Order.CreateOrder)
				orders.GET("/:id", h.Order.GetOrder)
				orders.DELETE("/:id", middleware.RoleAuth(teacher, admin), h.Order.DeleteOrder)
				orders.GET("/:id/export", h.Order.ExportOrder)
				orders.PUT("/:id/approve", middleware.RoleAuth(deptHead, admin), h.Order.ApproveOrder)
				orders.PUT("/:id/receive", middleware.RoleAuth(deptHead, purchasing, admin), h.Order.ReceiveOrder)
				orders.PUT("/:id/revert", middleware.RoleAuth(deptHead, admin), h.Order.RevertOrder)
			}

			// 采购汇总
			purchase := authorized.Group("/purchasing", middleware.RoleAuth(purchasing, deptHead, admin))
			{
				purchase.GET("/reconcile", h.Purchasing.Reconcile)
				purchase.GET("/export", h.Purchasing.Export)
				purchase.POST("/products/:id/deduct", middleware.RoleAuth(purchasing, admin), h.Purchasing.Deduct)
			}

			// 仓库库存
			stocks := authorized.Group("/stock", middleware.RoleAuth(stock, purchasing, admin))
			{
				stocks.GET("", h.Stock.ListStock)
				stocks.GET("/sequence", h.Stock.CountSequence)
				stocks.PUT("/:id", middleware.RoleAuth(stock, admin), h.Stock.UpdateStock)
			}

			// 固定资产与盘点
			inventory := authorized.Group("/inventory", middleware.RoleAuth(stock, admin))
			{
				inventory.GET("/assets", h.Inventory.ListAssets)
				inventory.POST("/assets", h.Inventory.CreateAsset)
				inventory.GET("/assets/template", h.Inventory.AssetTemplate)
				inventory.GET("/assets/export", h.Inventory.ExportAssets)
				inventory.POST("/assets/import", h.Inventory.ImportAssets)
				inventory.GET("/assets/:id", h.Inventory.GetAsset)
				inventory.PUT("/assets/:id", h.Inventory.UpdateAsset)
				inventory.DELETE("/assets/:id", h.Inventory.DeleteAsset)

				inventory.GET("/sessions", h.Inventory.ListSessions)
				inventory.POST("/sessions", h.Inventory.StartSession)
				inventory.GET("/sessions/:id", h.Inventory.GetSession)
				inventory.PUT("/sessions/:id/counts", h.Inventory.RecordCount)
				inventory.POST("/sessions/:id/import", h.Inventory.ImportCounts)
				inventory.GET("/sessions/:id/export", h.Inventory.ExportSession)
				inventory.POST("/sessions/:id/complete", h.Inventory.CompleteSession)
			}

			// 食谱（本人可见性在 Service 层校验）
			recipes := authorized.Group("/recipes", middleware.RoleAuth(teacher, deptHead, admin))
			{
				recipes.GET("", h.Recipe.ListRecipes)
				recipes.POST("", h.Recipe.CreateRecipe)
				recipes.GET("/:id", h.Recipe.GetRecipe)
				recipes.PUT("/:id", h.Recipe.UpdateRecipe)
				recipes.DELETE("/:id", h.Recipe.DeleteRecipe)
				recipes.POST("/:id/add-to-list", middleware.RoleAuth(teacher, admin), h.Recipe.AddToList)
			}

			// 课程表
			scheduleEditors := middleware.RoleAuth(admin, deptHead)
			schedules := authorized.Group("/schedules")
			{
				schedules.GET("", h.Schedule.ListSlots)
				schedules.GET("/filters", h.Schedule.Filters)
				schedules.GET("/grid", h.Schedule.Grid)
				schedules.GET("/export", h.Schedule.Export)
				schedules.POST("/upload", scheduleEditors, h.Schedule.Upload)
				schedules.GET("/:id", h.Schedule.GetSlot)
				schedules.POST("", scheduleEditors, h.Schedule.CreateSlot)
				schedules.PUT("/:id", scheduleEditors, h.Schedule.UpdateSlot)
				schedules.DELETE("/:id", scheduleEditors, h.Schedule.DeleteSlot)
			}

			// 学术日历
			calendar := authorized.Group("/calendar")
			{
				calendar.GET("/events", h.Calendar.ListEvents)
				calendar.GET("/events/:id", h.Calendar.GetEvent)
				calendar.POST("/events", scheduleEditors, h.Calendar.CreateEvent)
				calendar.PUT("/events/:id", scheduleEditors, h.Calendar.UpdateEvent)
				calendar.DELETE("/events/:id", scheduleEditors, h.Calendar.DeleteEvent)
				calendar.GET("/grid", h.Calendar.Grid)
				calendar.GET("/export/xlsx", h.Calendar.ExportExcel)
				calendar.GET("/export/ics", h.Calendar.ExportICS)
				calendar.POST("/import", scheduleEditors, h.Calendar.ImportICS)
			}
		}
	}

	return r
}
