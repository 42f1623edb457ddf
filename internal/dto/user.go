package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username  string   `json:"username"   binding:"required,min=3,max=50"`
	Name      string   `json:"name"       binding:"required,min=2,max=100"`
	Password  string   `json:"password"   binding:"required,min=8,max=64"`
	Role      string   `json:"role"       binding:"required,oneof=admin ogretmen bolum_baskani satin_alma stok"`
	CourseIDs []string `json:"course_ids" binding:"omitempty,dive,uuid"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin ogretmen bolum_baskani satin_alma stok"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=100"`
	Role     *string `json:"role"      binding:"omitempty,oneof=admin ogretmen bolum_baskani satin_alma stok"`
	IsActive *bool   `json:"is_active"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// AssignCoursesRequest 分配课程请求（空列表表示清空）
type AssignCoursesRequest struct {
	CourseIDs []string `json:"course_ids" binding:"omitempty,dive,uuid"`
}
