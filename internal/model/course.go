package model

// Course 课程表 — 对应 courses
type Course struct {
	CourseID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code       string `gorm:"type:varchar(20);not null"                      json:"code"` // 如 AŞÇ101
	Name       string `gorm:"type:varchar(150);not null"                     json:"name"`
	ClassLevel string `gorm:"type:varchar(20)"                               json:"class_level,omitempty"`
	IsActive   bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
