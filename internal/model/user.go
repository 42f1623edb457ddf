package model

// 角色取值
const (
	RoleAdmin      = "admin"
	RoleTeacher    = "ogretmen"
	RoleDeptHead   = "bolum_baskani"
	RolePurchasing = "satin_alma"
	RoleStock      = "stok"
)

// AllRoles 系统支持的全部角色
var AllRoles = []string{RoleAdmin, RoleTeacher, RoleDeptHead, RolePurchasing, RoleStock}

// IsValidRole 判断角色取值是否合法
func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User 用户表 — 对应 users
type User struct {
	UserID       string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string      `gorm:"type:varchar(50);not null"                      json:"username"`
	Name         string      `gorm:"type:varchar(100);not null"                     json:"name"`
	PasswordHash string      `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string      `gorm:"type:varchar(20);not null"                      json:"role"` // admin | ogretmen | bolum_baskani | satin_alma | stok
	CourseIDs    StringArray `gorm:"type:text[];not null;default:'{}'"              json:"course_ids"`
	IsActive     bool        `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
