package model

// ScheduleSlot 课程表时段 — 对应 schedule_slots
type ScheduleSlot struct {
	SlotID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	Program    string `gorm:"type:varchar(100);not null"                     json:"program"`
	ClassName  string `gorm:"type:varchar(50);not null"                      json:"class_name"`
	Term       string `gorm:"type:varchar(20);not null"                      json:"term"`        // Güz | Bahar | Yaz
	Year       string `gorm:"type:varchar(20);not null"                      json:"year"`        // 如 2025-2026
	DayOfWeek  int    `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1-7
	StartTime  string `gorm:"type:varchar(5);not null"                       json:"start_time"`  // HH:MM
	EndTime    string `gorm:"type:varchar(5);not null"                       json:"end_time"`
	CourseCode string `gorm:"type:varchar(20);not null;default:''"           json:"course_code"`
	CourseName string `gorm:"type:varchar(150);not null;default:''"          json:"course_name"`
	Room       string `gorm:"type:varchar(60);not null;default:''"           json:"room"`
	Instructor string `gorm:"type:varchar(100);not null;default:''"          json:"instructor"`
	BaseModel
}

// TableName 指定表名
func (ScheduleSlot) TableName() string { return "schedule_slots" }
