package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
	"irufoodflow/backend/pkg/events"
)

// recordingPublisher 记录已发布的订单事件
type recordingPublisher struct {
	events []events.OrderEvent
}

func (p *recordingPublisher) PublishOrder(_ context.Context, evt events.OrderEvent) {
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) last() string {
	if len(p.events) == 0 {
		return ""
	}
	return p.events[len(p.events)-1].Event
}

type orderFixture struct {
	svc       OrderService
	repo      *repository.Repository
	mocks     *mockRepos
	publisher *recordingPublisher
	course    *model.Course
	teacher   *model.User
	butter    *model.Product
	eggs      *model.Product
}

func setupTestOrderService() *orderFixture {
	repo, mocks := newMockRepos()
	pub := &recordingPublisher{}
	f := &orderFixture{
		svc:       NewOrderService(repo, pub, zap.NewNop()),
		repo:      repo,
		mocks:     mocks,
		publisher: pub,
	}
	f.course = seedCourse(mocks, "AŞÇ101", "Temel Mutfak")
	f.teacher = seedTeacher(mocks, "ayse", f.course.CourseID)
	f.butter = seedProduct(mocks, "Tereyağı", "Pınar", model.UnitKg, "Süt Ürünleri", "150", "0")
	f.eggs = seedProduct(mocks, "Yumurta", "", model.UnitAdet, "Temel Gıda", "5", "0")
	return f
}

func (f *orderFixture) createOrder(t *testing.T) *dto.OrderResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), &dto.CreateOrderRequest{
		CourseID: f.course.CourseID,
		Week:     "3. Hafta",
		Items: []dto.OrderItemRequest{
			{ProductID: f.butter.ProductID, Quantity: dec("2")},
			{ProductID: f.eggs.ProductID, Quantity: dec("3")},
		},
	}, f.teacher.UserID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	return resp
}

// ────────────────────── Create ──────────────────────

func TestOrderCreate_ComputesTotal(t *testing.T) {
	f := setupTestOrderService()

	resp := f.createOrder(t)

	if !resp.Total.Equal(dec("315")) {
		t.Errorf("期望 Total=315.00，实际=%s", resp.Total.StringFixed(2))
	}
	if resp.Status != model.OrderStatusPending {
		t.Errorf("期望状态 bekliyor，实际=%s", resp.Status)
	}
	if len(resp.Items) != 2 || !resp.Items[0].LineTotal.Equal(dec("300")) {
		t.Errorf("明细小计不正确: %+v", resp.Items)
	}
	if resp.CourseCode != "AŞÇ101" || resp.TeacherName == "" {
		t.Errorf("响应应包含课程与教师信息: %+v", resp)
	}
	if f.publisher.last() != events.OrderCreated {
		t.Errorf("期望发布 created 事件，实际=%q", f.publisher.last())
	}
}

func TestOrderCreate_RejectsWithoutWriting(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.CreateOrderRequest
		wantErr error
	}{
		{
			name:    "未选择课程",
			req:     dto.CreateOrderRequest{Week: "1. Hafta", Items: []dto.OrderItemRequest{{ProductID: "product-1", Quantity: dec("1")}}},
			wantErr: ErrOrderCourseRequired,
		},
		{
			name:    "没有明细",
			req:     dto.CreateOrderRequest{CourseID: "course-AŞÇ101", Week: "1. Hafta"},
			wantErr: ErrOrderNoItems,
		},
		{
			name: "数量全部为 0",
			req: dto.CreateOrderRequest{CourseID: "course-AŞÇ101", Week: "1. Hafta", Items: []dto.OrderItemRequest{
				{ProductID: "product-1", Quantity: dec("0")},
			}},
			wantErr: ErrOrderNoItems,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestOrderService()
			_, err := f.svc.Create(context.Background(), &tt.req, f.teacher.UserID, model.RoleTeacher)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
			if f.mocks.order.creates != 0 {
				t.Errorf("校验失败时不应写库，实际写入 %d 次", f.mocks.order.creates)
			}
		})
	}
}

func TestOrderCreate_UnassignedCourse(t *testing.T) {
	f := setupTestOrderService()
	other := seedCourse(f.mocks, "AŞÇ205", "Pastacılık")

	_, err := f.svc.Create(context.Background(), &dto.CreateOrderRequest{
		CourseID: other.CourseID,
		Week:     "1. Hafta",
		Items:    []dto.OrderItemRequest{{ProductID: f.butter.ProductID, Quantity: dec("1")}},
	}, f.teacher.UserID, model.RoleTeacher)
	if !errors.Is(err, ErrOrderCourseNotAssigned) {
		t.Errorf("期望 ErrOrderCourseNotAssigned，实际: %v", err)
	}
	if f.mocks.order.creates != 0 {
		t.Error("未分配课程时不应写库")
	}
}

func TestOrderCreate_FractionalCountUnit(t *testing.T) {
	f := setupTestOrderService()

	_, err := f.svc.Create(context.Background(), &dto.CreateOrderRequest{
		CourseID: f.course.CourseID,
		Week:     "1. Hafta",
		Items:    []dto.OrderItemRequest{{ProductID: f.eggs.ProductID, Quantity: dec("1.5")}},
	}, f.teacher.UserID, model.RoleTeacher)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("计数单位的小数数量应被拒绝，实际: %v", err)
	}
}

func TestOrderCreate_MergesDuplicateProducts(t *testing.T) {
	f := setupTestOrderService()

	resp, err := f.svc.Create(context.Background(), &dto.CreateOrderRequest{
		CourseID: f.course.CourseID,
		Week:     "1. Hafta",
		Items: []dto.OrderItemRequest{
			{ProductID: f.butter.ProductID, Quantity: dec("1")},
			{ProductID: f.butter.ProductID, Quantity: dec("0.5")},
		},
	}, f.teacher.UserID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if len(resp.Items) != 1 || !resp.Items[0].Quantity.Equal(dec("1.5")) {
		t.Errorf("同一商品应合并为一行 1.5，实际: %+v", resp.Items)
	}
}

func TestOrderCreate_SecondSubmissionIsSeparate(t *testing.T) {
	f := setupTestOrderService()

	first := f.createOrder(t)
	second := f.createOrder(t)

	if first.ID == second.ID {
		t.Error("再次提交应生成新的订单")
	}
	if f.mocks.order.creates != 2 {
		t.Errorf("期望写入 2 个订单，实际=%d", f.mocks.order.creates)
	}
}

// ────────────────────── 状态流转 ──────────────────────

func TestOrderTransitions(t *testing.T) {
	f := setupTestOrderService()
	ctx := context.Background()
	order := f.createOrder(t)

	if _, err := f.svc.Receive(ctx, order.ID, "purchasing-1"); !errors.Is(err, ErrOrderInvalidTransition) {
		t.Errorf("未审批的订单不能收货，实际: %v", err)
	}

	approved, err := f.svc.Approve(ctx, order.ID, "head-1")
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if approved.Status != model.OrderStatusApproved || approved.ApprovedAt == nil {
		t.Errorf("期望状态 onaylandi 且记录审批时间，实际: %+v", approved)
	}
	if _, err := f.svc.Approve(ctx, order.ID, "head-1"); !errors.Is(err, ErrOrderInvalidTransition) {
		t.Errorf("重复审批应被拒绝，实际: %v", err)
	}

	received, err := f.svc.Receive(ctx, order.ID, "purchasing-1")
	if err != nil {
		t.Fatalf("Receive 应成功: %v", err)
	}
	if received.Status != model.OrderStatusReceived {
		t.Errorf("期望状态 teslim_alindi，实际=%s", received.Status)
	}

	reverted, err := f.svc.Revert(ctx, order.ID, "admin-1")
	if err != nil {
		t.Fatalf("Revert 应成功: %v", err)
	}
	if reverted.Status != model.OrderStatusPending || reverted.ApprovedAt != nil || reverted.ReceivedAt != nil {
		t.Errorf("撤回后应回到 bekliyor 并清空时间戳，实际: %+v", reverted)
	}
	if f.publisher.last() != events.OrderReverted {
		t.Errorf("期望发布 reverted 事件，实际=%q", f.publisher.last())
	}

	if _, err := f.svc.Revert(ctx, order.ID, "admin-1"); !errors.Is(err, ErrOrderInvalidTransition) {
		t.Errorf("待审批订单不能撤回，实际: %v", err)
	}
}

// ────────────────────── 可见性 / 删除 ──────────────────────

func TestOrderList_TeacherSeesOwnOnly(t *testing.T) {
	f := setupTestOrderService()
	ctx := context.Background()
	f.createOrder(t)

	other := seedTeacher(f.mocks, "ali", f.course.CourseID)
	if _, err := f.svc.Create(ctx, &dto.CreateOrderRequest{
		CourseID: f.course.CourseID,
		Week:     "3. Hafta",
		Items:    []dto.OrderItemRequest{{ProductID: f.eggs.ProductID, Quantity: dec("10")}},
	}, other.UserID, model.RoleTeacher); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	list, total, err := f.svc.List(ctx, &dto.OrderListRequest{}, f.teacher.UserID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].TeacherID != f.teacher.UserID {
		t.Errorf("教师只能看到自己的订单，实际 total=%d", total)
	}

	_, total, _ = f.svc.List(ctx, &dto.OrderListRequest{}, "head-1", model.RoleDeptHead)
	if total != 2 {
		t.Errorf("系主任应看到全部订单，实际=%d", total)
	}

	if _, err := f.svc.GetByID(ctx, list[0].ID, other.UserID, model.RoleTeacher); !errors.Is(err, ErrNoPermission) {
		t.Errorf("教师不能查看他人订单，实际: %v", err)
	}
}

func TestOrderDelete(t *testing.T) {
	f := setupTestOrderService()
	ctx := context.Background()
	order := f.createOrder(t)

	if _, err := f.svc.Approve(ctx, order.ID, "head-1"); err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if err := f.svc.Delete(ctx, order.ID, f.teacher.UserID, model.RoleTeacher); !errors.Is(err, ErrOrderNotDeletable) {
		t.Errorf("已审批的订单教师不能删除，实际: %v", err)
	}
	if err := f.svc.Delete(ctx, order.ID, "admin-1", model.RoleAdmin); err != nil {
		t.Errorf("管理员应可删除任意订单: %v", err)
	}
	if _, err := f.svc.GetByID(ctx, order.ID, "admin-1", model.RoleAdmin); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("删除后应查询不到，实际: %v", err)
	}
}

// ────────────────────── Weeks / Export ──────────────────────

func TestOrderWeeks_DefaultAndUsed(t *testing.T) {
	f := setupTestOrderService()
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, &dto.CreateOrderRequest{
		CourseID: f.course.CourseID,
		Week:     "18. Hafta",
		Items:    []dto.OrderItemRequest{{ProductID: f.eggs.ProductID, Quantity: dec("1")}},
	}, f.teacher.UserID, model.RoleTeacher); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	weeks, err := f.svc.Weeks(ctx)
	if err != nil {
		t.Fatalf("Weeks 应成功: %v", err)
	}
	if len(weeks) != 17 {
		t.Fatalf("期望 16 个默认周次加 1 个已用周次，实际=%d", len(weeks))
	}
	if weeks[0] != "1. Hafta" || weeks[16] != "18. Hafta" {
		t.Errorf("周次应按序号排序，实际首尾=%s/%s", weeks[0], weeks[16])
	}
}

func TestOrderExport(t *testing.T) {
	f := setupTestOrderService()
	order := f.createOrder(t)

	data, filename, err := f.svc.Export(context.Background(), order.ID, f.teacher.UserID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("Export 应成功: %v", err)
	}
	if len(data) == 0 {
		t.Error("导出内容不应为空")
	}
	if filename != "siparis_AŞÇ101_3.Hafta.xlsx" {
		t.Errorf("文件名不符合预期: %s", filename)
	}
}
