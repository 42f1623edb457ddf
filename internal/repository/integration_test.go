//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
	"irufoodflow/backend/pkg/database"
	pkgerrors "irufoodflow/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=irufoodflow_test sslmode=disable TimeZone=Europe/Istanbul"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取底层连接失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "执行迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func uniq(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func createTeacher(t *testing.T, courseIDs ...string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     uniq("ogr"),
		Name:         "Test Öğretmen",
		PasswordHash: "$2a$10$placeholder",
		Role:         model.RoleTeacher,
		CourseIDs:    model.StringArray(courseIDs),
		IsActive:     true,
	}
	if err := testDB.Create(u).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	t.Cleanup(func() { testDB.Unscoped().Where("user_id = ?", u.UserID).Delete(&model.User{}) })
	return u
}

// ═══════════════════════════════════════════════════════════
// Test: Course delete cleans assignments
// ═══════════════════════════════════════════════════════════

func TestCourse_DeleteWithAssignments(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	course := &model.Course{Code: uniq("AŞÇ"), Name: "Temel Mutfak", IsActive: true}
	other := &model.Course{Code: uniq("PST"), Name: "Pastacılık", IsActive: true}
	if err := repo.Course.Create(ctx, course); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	if err := repo.Course.Create(ctx, other); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	defer testDB.Where("course_id = ?", other.CourseID).Delete(&model.Course{})

	u1 := createTeacher(t, course.CourseID, other.CourseID)
	u2 := createTeacher(t, course.CourseID)

	cleaned, err := repo.Course.DeleteWithAssignments(ctx, course.CourseID)
	if err != nil {
		t.Fatalf("DeleteWithAssignments 失败: %v", err)
	}
	if cleaned != 2 {
		t.Errorf("期望清理 2 个用户，实际=%d", cleaned)
	}

	got1, _ := repo.User.GetByID(ctx, u1.UserID)
	got2, _ := repo.User.GetByID(ctx, u2.UserID)
	if got1.CourseIDs.Contains(course.CourseID) || got2.CourseIDs.Contains(course.CourseID) {
		t.Error("删除课程后用户仍保留该课程")
	}
	if !got1.CourseIDs.Contains(other.CourseID) {
		t.Error("其他课程分配不应被移除")
	}

	if _, err := repo.Course.GetByID(ctx, course.CourseID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望课程已删除，实际 err=%v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOrder_OptimisticLock(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	teacher := createTeacher(t)
	order := &model.Order{
		TeacherID: teacher.UserID,
		CourseID:  teacher.UserID, // 课程外键未约束，复用 uuid
		Week:      "3. Hafta",
		Status:    model.OrderStatusPending,
	}
	if err := repo.Order.Create(ctx, order); err != nil {
		t.Fatalf("创建订单失败: %v", err)
	}
	defer testDB.Unscoped().Where("order_id = ?", order.OrderID).Delete(&model.Order{})

	copy1, _ := repo.Order.GetByID(ctx, order.OrderID)
	copy2, _ := repo.Order.GetByID(ctx, order.OrderID)

	copy1.Status = model.OrderStatusApproved
	if err := repo.Order.Update(ctx, copy1); err != nil {
		t.Fatalf("首次更新应成功: %v", err)
	}
	if copy1.Version != 2 {
		t.Errorf("期望 version=2，实际=%d", copy1.Version)
	}

	copy2.Notes = "çakışma"
	if err := repo.Order.Update(ctx, copy2); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际=%v", err)
	}

	pending, err := repo.Order.FindPending(ctx, teacher.UserID, teacher.UserID, "3. Hafta")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("已审批订单不应作为待合并订单返回: %v %v", pending, err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Product upsert
// ═══════════════════════════════════════════════════════════

func TestProduct_Upsert(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	name := uniq("Tereyağı")
	first := []model.Product{{Name: name, Brand: "Sütaş", Price: decimal.NewFromInt(150), Unit: model.UnitKg, Stock: decimal.NewFromInt(3)}}
	if err := repo.Product.Upsert(ctx, first, true); err != nil {
		t.Fatalf("首次 Upsert 失败: %v", err)
	}
	defer testDB.Unscoped().Where("name = ?", name).Delete(&model.Product{})

	second := []model.Product{{Name: name, Brand: "Sütaş", Price: decimal.NewFromInt(175), Unit: model.UnitKg}}
	if err := repo.Product.Upsert(ctx, second, false); err != nil {
		t.Fatalf("二次 Upsert 失败: %v", err)
	}

	got, err := repo.Product.GetByNameBrand(ctx, name, "Sütaş")
	if err != nil {
		t.Fatalf("查询商品失败: %v", err)
	}
	if !got.Price.Equal(decimal.NewFromInt(175)) {
		t.Errorf("期望价格更新为 175，实际=%s", got.Price)
	}
	if !got.Stock.Equal(decimal.NewFromInt(3)) {
		t.Errorf("withStock=false 时库存应保持 3，实际=%s", got.Stock)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Inventory count session
// ═══════════════════════════════════════════════════════════

func TestInventory_SessionLifecycle(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	asset := &model.InventoryAsset{Code: uniq("DMB"), Name: "Döküm Tencere", Quantity: decimal.NewFromInt(4), Condition: model.ConditionGood}
	if err := repo.Asset.Create(ctx, asset); err != nil {
		t.Fatalf("创建资产失败: %v", err)
	}
	defer testDB.Unscoped().Where("asset_id = ?", asset.AssetID).Delete(&model.InventoryAsset{})

	title := uniq("Dönem Sonu Sayım")
	s1, err := repo.InventoryCount.StartSession(ctx, title, "")
	if err != nil {
		t.Fatalf("StartSession 失败: %v", err)
	}
	s2, err := repo.InventoryCount.StartSession(ctx, title, "")
	if err != nil {
		t.Fatalf("StartSession 失败: %v", err)
	}
	defer testDB.Where("title = ?", title).Delete(&model.InventoryCountSession{})

	if s1.Version != 1 || s2.Version != 2 {
		t.Errorf("期望版本 1、2，实际=%d、%d", s1.Version, s2.Version)
	}

	item, err := repo.InventoryCount.GetItem(ctx, s2.SessionID, asset.AssetID)
	if err != nil {
		t.Fatalf("会话应包含资产明细: %v", err)
	}
	counted := decimal.NewFromInt(3)
	now := time.Now()
	item.CountedQty = &counted
	item.Condition = model.ConditionWorn
	item.CountedAt = &now
	if err := repo.InventoryCount.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem 失败: %v", err)
	}

	if err := repo.InventoryCount.CompleteSession(ctx, s2.SessionID, now); err != nil {
		t.Fatalf("CompleteSession 失败: %v", err)
	}
	if err := repo.InventoryCount.CompleteSession(ctx, s2.SessionID, now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("重复完成应返回 ErrRecordNotFound，实际=%v", err)
	}

	got, _ := repo.Asset.GetByID(ctx, asset.AssetID)
	if !got.Quantity.Equal(counted) || got.Condition != model.ConditionWorn {
		t.Errorf("资产未回写: quantity=%s condition=%s", got.Quantity, got.Condition)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Schedule replace
// ═══════════════════════════════════════════════════════════

func TestScheduleSlot_ReplaceByFilter(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	filter := &repository.ScheduleFilter{Program: uniq("Aşçılık"), ClassName: "1", Term: "Güz", Year: "2025-2026"}
	defer testDB.Where("program = ?", filter.Program).Delete(&model.ScheduleSlot{})

	mk := func(day int, code string) model.ScheduleSlot {
		return model.ScheduleSlot{
			Program: filter.Program, ClassName: filter.ClassName, Term: filter.Term, Year: filter.Year,
			DayOfWeek: day, StartTime: "08:30", EndTime: "09:20", CourseCode: code,
		}
	}

	if err := repo.ScheduleSlot.ReplaceByFilter(ctx, filter, []model.ScheduleSlot{mk(1, "AŞÇ101"), mk(2, "AŞÇ102")}, false); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}
	if err := repo.ScheduleSlot.ReplaceByFilter(ctx, filter, []model.ScheduleSlot{mk(3, "AŞÇ103")}, true); err != nil {
		t.Fatalf("替换写入失败: %v", err)
	}

	slots, err := repo.ScheduleSlot.List(ctx, filter)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(slots) != 1 || slots[0].CourseCode != "AŞÇ103" {
		t.Errorf("期望仅剩 AŞÇ103，实际=%+v", slots)
	}
}
