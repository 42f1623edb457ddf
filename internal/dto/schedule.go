package dto

// ── 课程表 DTO ──

// ScheduleFilterRequest 课程表筛选参数
type ScheduleFilterRequest struct {
	Program   string `form:"program" binding:"omitempty,max=100"`
	ClassName string `form:"class"   binding:"omitempty,max=50"`
	Term      string `form:"term"    binding:"omitempty,max=20"`
	Year      string `form:"year"    binding:"omitempty,max=20"`
}

// ScheduleSlotRequest 创建/更新时段请求
type ScheduleSlotRequest struct {
	Program    string `json:"program"     binding:"required,max=100"`
	ClassName  string `json:"class_name"  binding:"required,max=50"`
	Term       string `json:"term"        binding:"required,max=20"`
	Year       string `json:"year"        binding:"required,max=20"`
	DayOfWeek  int    `json:"day_of_week" binding:"required,min=1,max=7"`
	StartTime  string `json:"start_time"  binding:"required"`
	EndTime    string `json:"end_time"    binding:"required"`
	CourseCode string `json:"course_code" binding:"omitempty,max=20"`
	CourseName string `json:"course_name" binding:"omitempty,max=150"`
	Room       string `json:"room"        binding:"omitempty,max=60"`
	Instructor string `json:"instructor"  binding:"omitempty,max=100"`
}

// ScheduleSlotResponse 时段响应
type ScheduleSlotResponse struct {
	ID         string `json:"id"`
	Program    string `json:"program"`
	ClassName  string `json:"class_name"`
	Term       string `json:"term"`
	Year       string `json:"year"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Room       string `json:"room"`
	Instructor string `json:"instructor"`
}

// ScheduleFiltersResponse 可选筛选值
type ScheduleFiltersResponse struct {
	Programs []string `json:"programs"`
	Classes  []string `json:"classes"`
	Terms    []string `json:"terms"`
	Years    []string `json:"years"`
}

// ScheduleGridResponse 周课表网格
type ScheduleGridResponse struct {
	Days []int             `json:"days"`
	Rows []ScheduleGridRow `json:"rows"`
}

// ScheduleGridRow 网格行：一个时间段，Cells 与 Days 一一对应
type ScheduleGridRow struct {
	StartTime string                   `json:"start_time"`
	EndTime   string                   `json:"end_time"`
	Cells     [][]ScheduleSlotResponse `json:"cells"`
}

// ScheduleUploadRequest 上传课程表的表单字段
type ScheduleUploadRequest struct {
	Program   string `form:"program" binding:"required,max=100"`
	ClassName string `form:"class"   binding:"required,max=50"`
	Term      string `form:"term"    binding:"required,max=20"`
	Year      string `form:"year"    binding:"required,max=20"`
	Replace   bool   `form:"replace"`
}

// ScheduleUploadResponse 上传解析结果
type ScheduleUploadResponse struct {
	Parsed  int           `json:"parsed"`
	Skipped []SkippedCell `json:"skipped,omitempty"`
}

// SkippedCell 未能解析的单元格
type SkippedCell struct {
	Cell   string `json:"cell"` // 如 C4
	Text   string `json:"text"`
	Reason string `json:"reason"`
}
