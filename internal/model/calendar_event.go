package model

// 日历颜色标签
var CalendarColors = []string{"mavi", "yesil", "kirmizi", "sari", "mor", "turuncu", "gri"}

// 与 calendar_events 表上的约束一致
const (
	MaxWeekNumber       = 53
	MaxEventDescription = 500 // 按字符计
)

// IsValidColor 判断颜色标签是否合法
func IsValidColor(c string) bool {
	for _, v := range CalendarColors {
		if v == c {
			return true
		}
	}
	return false
}

// CalendarEvent 学期日历事件 — 对应 calendar_events
type CalendarEvent struct {
	EventID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	Term        string `gorm:"type:varchar(20);not null"                      json:"term"`
	Year        string `gorm:"type:varchar(20);not null"                      json:"year"`
	WeekNumber  int    `gorm:"type:smallint;not null"                         json:"week_number"`
	DayOfWeek   int    `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1-7
	Description string `gorm:"type:varchar(500);not null"                     json:"description"`
	Color       string `gorm:"type:varchar(20);not null;default:'mavi'"       json:"color"`
	BaseModel
}

// TableName 指定表名
func (CalendarEvent) TableName() string { return "calendar_events" }
