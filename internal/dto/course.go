package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Code       string `json:"code"        binding:"required,max=20"`
	Name       string `json:"name"        binding:"required,max=150"`
	ClassLevel string `json:"class_level" binding:"omitempty,max=20"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Code       *string `json:"code"        binding:"omitempty,max=20"`
	Name       *string `json:"name"        binding:"omitempty,max=150"`
	ClassLevel *string `json:"class_level" binding:"omitempty,max=20"`
	IsActive   *bool   `json:"is_active"`
}

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	ClassLevel string `json:"class_level,omitempty"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// DeleteCourseResponse 删除课程结果
type DeleteCourseResponse struct {
	CleanedUsers int64 `json:"cleaned_users"` // 被移除该课程分配的用户数
}
