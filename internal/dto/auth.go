package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest 登出请求，refresh_token 可选，提供时一并作废
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PagesResponse 角色可访问页面
type PagesResponse struct {
	Role  string   `json:"role"`
	Pages []string `json:"pages"`
}
