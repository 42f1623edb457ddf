package dto

// ── 学期日历 DTO ──

// CalendarEventRequest 创建/更新日历事件请求
type CalendarEventRequest struct {
	Term        string `json:"term"        binding:"required,max=20"`
	Year        string `json:"year"        binding:"required,max=20"`
	WeekNumber  int    `json:"week_number" binding:"required,min=1,max=53"`
	DayOfWeek   int    `json:"day_of_week" binding:"required,min=1,max=7"`
	Description string `json:"description" binding:"required,max=500"`
	Color       string `json:"color"       binding:"omitempty,oneof=mavi yesil kirmizi sari mor turuncu gri"`
}

// CalendarListRequest 日历事件查询参数
type CalendarListRequest struct {
	Term string `form:"term" binding:"omitempty,max=20"`
	Year string `form:"year" binding:"omitempty,max=20"`
	Week int    `form:"week" binding:"omitempty,min=1,max=53"`
}

// CalendarTermRequest 按学期定位日历（网格 / Excel 导出）
type CalendarTermRequest struct {
	Term string `form:"term" binding:"required,max=20"`
	Year string `form:"year" binding:"required,max=20"`
}

// CalendarICSRequest ICS 导出 / 导入参数，start_date 为第一周周一（YYYY-MM-DD）
type CalendarICSRequest struct {
	Term      string `form:"term"       binding:"required,max=20"`
	Year      string `form:"year"       binding:"required,max=20"`
	StartDate string `form:"start_date" binding:"required"`
}

// CalendarEventResponse 日历事件响应
type CalendarEventResponse struct {
	ID          string `json:"id"`
	Term        string `json:"term"`
	Year        string `json:"year"`
	WeekNumber  int    `json:"week_number"`
	DayOfWeek   int    `json:"day_of_week"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CalendarGridResponse 周 × 日网格
type CalendarGridResponse struct {
	Term  string             `json:"term"`
	Year  string             `json:"year"`
	Days  []int              `json:"days"`
	Weeks []CalendarGridWeek `json:"weeks"`
}

// CalendarGridWeek 网格的一周，Cells 与 Days 一一对应
type CalendarGridWeek struct {
	WeekNumber int                       `json:"week_number"`
	Cells      [][]CalendarEventResponse `json:"cells"`
}

// CalendarImportResponse ICS 导入结果
type CalendarImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
