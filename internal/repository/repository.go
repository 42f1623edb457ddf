package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User           UserRepository
	Course         CourseRepository
	Product        ProductRepository
	Order          OrderRepository
	Recipe         RecipeRepository
	Asset          InventoryAssetRepository
	InventoryCount InventoryCountRepository
	ScheduleSlot   ScheduleSlotRepository
	CalendarEvent  CalendarEventRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:           NewUserRepo(db),
		Course:         NewCourseRepo(db),
		Product:        NewProductRepo(db),
		Order:          NewOrderRepo(db),
		Recipe:         NewRecipeRepo(db),
		Asset:          NewInventoryAssetRepo(db),
		InventoryCount: NewInventoryCountRepo(db),
		ScheduleSlot:   NewScheduleSlotRepo(db),
		CalendarEvent:  NewCalendarEventRepo(db),
	}
}

// likePattern 构造 ILIKE 模糊匹配模式并转义通配符
func likePattern(keyword string) string {
	r := make([]rune, 0, len(keyword)+2)
	r = append(r, '%')
	for _, c := range keyword {
		if c == '%' || c == '_' || c == '\\' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	r = append(r, '%')
	return string(r)
}
