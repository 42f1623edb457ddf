package dto

// DashboardResponse 首页统计，Counts 的键随角色不同
type DashboardResponse struct {
	Role   string           `json:"role"`
	Counts map[string]int64 `json:"counts"`
}
