package rbac

import (
	"testing"

	"irufoodflow/backend/internal/model"
)

func TestCanAccess(t *testing.T) {
	tests := []struct {
		role string
		path string
		want bool
	}{
		{model.RoleAdmin, "/admin/kullanicilar", true},
		{model.RoleAdmin, "/admin/kullanicilar/42", true},
		{model.RoleAdmin, "/ogretmen", false},
		{model.RoleTeacher, "/ogretmen/siparis-olustur", true},
		{model.RoleTeacher, "/ogretmen/", true},
		{model.RoleTeacher, "/ogretmenler", false},
		{model.RoleTeacher, "/admin", false},
		{model.RoleDeptHead, "/bolum-baskani/siparisler", true},
		{model.RolePurchasing, "/satin-alma/stok", true},
		{model.RolePurchasing, "/stok", false},
		{model.RoleStock, "/stok/sayim", true},
		{"misafir", "/admin", false},
	}
	for _, tt := range tests {
		if got := CanAccess(tt.role, tt.path); got != tt.want {
			t.Errorf("CanAccess(%q, %q) = %v，期望 %v", tt.role, tt.path, got, tt.want)
		}
	}
}

func TestPages_ReturnsCopy(t *testing.T) {
	pages := Pages(model.RoleStock)
	if len(pages) != 4 {
		t.Fatalf("期望 stok 角色 4 个页面，实际=%d", len(pages))
	}
	pages[0] = "/hack"
	if Pages(model.RoleStock)[0] != "/stok" {
		t.Error("Pages 应返回副本")
	}
	if len(Pages("bilinmeyen")) != 0 {
		t.Error("未知角色应无页面")
	}
	if HomePage(model.RoleTeacher) != "/ogretmen" {
		t.Errorf("期望教师首页 /ogretmen，实际=%s", HomePage(model.RoleTeacher))
	}
}
