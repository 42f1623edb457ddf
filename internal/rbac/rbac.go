// Package rbac 维护角色与前端页面的访问映射
package rbac

import (
	"strings"

	"irufoodflow/backend/internal/model"
)

// rolePages 角色 → 可访问页面（路径前缀）
var rolePages = map[string][]string{
	model.RoleAdmin: {
		"/admin",
		"/admin/kullanicilar",
		"/admin/dersler",
		"/admin/urunler",
		"/admin/siparisler",
		"/admin/envanter",
		"/admin/ders-programi",
		"/admin/takvim",
		"/admin/receteler",
	},
	model.RoleTeacher: {
		"/ogretmen",
		"/ogretmen/siparis-olustur",
		"/ogretmen/siparislerim",
		"/ogretmen/receteler",
		"/ogretmen/ders-programi",
		"/ogretmen/takvim",
	},
	model.RoleDeptHead: {
		"/bolum-baskani",
		"/bolum-baskani/siparisler",
		"/bolum-baskani/urunler",
		"/bolum-baskani/ders-programi",
		"/bolum-baskani/takvim",
		"/bolum-baskani/receteler",
	},
	model.RolePurchasing: {
		"/satin-alma",
		"/satin-alma/siparisler",
		"/satin-alma/urunler",
		"/satin-alma/stok",
	},
	model.RoleStock: {
		"/stok",
		"/stok/sayim",
		"/stok/envanter",
		"/stok/urunler",
	},
}

// Pages 返回角色可访问的页面副本；未知角色返回空切片
func Pages(role string) []string {
	pages := rolePages[role]
	out := make([]string, len(pages))
	copy(out, pages)
	return out
}

// HomePage 角色登录后的默认首页
func HomePage(role string) string {
	if pages := rolePages[role]; len(pages) > 0 {
		return pages[0]
	}
	return "/"
}

// CanAccess 判断 path 是否等于某个允许页面或位于其下
func CanAccess(role, path string) bool {
	path = strings.TrimSuffix(path, "/")
	for _, p := range rolePages[role] {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
