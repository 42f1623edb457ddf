package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
	"irufoodflow/backend/pkg/events"
)

var (
	ErrOrderNotFound          = errors.New("订单不存在")
	ErrOrderCourseRequired    = errors.New("请选择课程")
	ErrOrderNoItems           = errors.New("至少需要一项数量大于 0 的商品")
	ErrOrderCourseNotAssigned = errors.New("该课程未分配给当前教师")
	ErrOrderInvalidTransition = errors.New("订单状态不允许此操作")
	ErrOrderNotDeletable      = errors.New("只能删除待审批的本人订单")
)

// defaultWeekCount 默认周次标签数量（1. Hafta … 16. Hafta）
const defaultWeekCount = 16

// 状态流转：动作 → (允许的起始状态, 目标状态)
var orderTransitions = map[string]struct {
	from []string
	to   string
}{
	events.OrderApproved: {from: []string{model.OrderStatusPending}, to: model.OrderStatusApproved},
	events.OrderReceived: {from: []string{model.OrderStatusApproved}, to: model.OrderStatusReceived},
	events.OrderReverted: {from: []string{model.OrderStatusApproved, model.OrderStatusReceived}, to: model.OrderStatusPending},
}

// OrderService 采购清单业务接口
type OrderService interface {
	Create(ctx context.Context, req *dto.CreateOrderRequest, callerID, callerRole string) (*dto.OrderResponse, error)
	GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.OrderResponse, error)
	List(ctx context.Context, req *dto.OrderListRequest, callerID, callerRole string) ([]dto.OrderResponse, int64, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
	Weeks(ctx context.Context) ([]string, error)
	Approve(ctx context.Context, id, callerID string) (*dto.OrderResponse, error)
	Receive(ctx context.Context, id, callerID string) (*dto.OrderResponse, error)
	Revert(ctx context.Context, id, callerID string) (*dto.OrderResponse, error)
	Export(ctx context.Context, id, callerID, callerRole string) ([]byte, string, error)
}

type orderService struct {
	repo      *repository.Repository
	publisher events.Publisher
	logger    *zap.Logger
}

// NewOrderService 创建 OrderService 实例
func NewOrderService(repo *repository.Repository, publisher events.Publisher, logger *zap.Logger) OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &orderService{repo: repo, publisher: publisher, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *orderService) Create(ctx context.Context, req *dto.CreateOrderRequest, callerID, callerRole string) (*dto.OrderResponse, error) {
	// 1. 必填校验（不接触数据库写操作）
	courseID := strings.TrimSpace(req.CourseID)
	if courseID == "" {
		return nil, ErrOrderCourseRequired
	}
	requested := make([]dto.OrderItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity.IsPositive() {
			requested = append(requested, it)
		}
	}
	if len(requested) == 0 {
		return nil, ErrOrderNoItems
	}

	// 2. 课程归属
	if err := checkCourseAccess(ctx, s.repo, courseID, callerID, callerRole); err != nil {
		return nil, err
	}

	// 3. 以下单时目录价格生成明细
	items, err := s.buildItems(ctx, requested)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		TeacherID: callerID,
		CourseID:  courseID,
		Week:      strings.TrimSpace(req.Week),
		Items:     items,
		Status:    model.OrderStatusPending,
		Notes:     req.Notes,
	}
	order.CreatedBy = &callerID
	order.Recalculate()

	if err := s.repo.Order.Create(ctx, order); err != nil {
		s.logger.Error("创建订单失败", zap.Error(err))
		return nil, err
	}

	publishOrderEvent(ctx, s.publisher, events.OrderCreated, order)
	return s.reload(ctx, order.OrderID)
}

// buildItems 查询目录商品，校验数量并合并同一商品的重复行
func (s *orderService) buildItems(ctx context.Context, reqs []dto.OrderItemRequest) ([]model.OrderItem, error) {
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ProductID)
	}
	products, err := s.repo.Product.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询商品失败", zap.Error(err))
		return nil, err
	}
	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ProductID] = &products[i]
	}

	additions := make([]model.OrderItem, 0, len(reqs))
	for _, r := range reqs {
		p, ok := byID[r.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if !model.ValidQuantity(p.Unit, r.Quantity) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidQuantity, p.Name)
		}
		additions = append(additions, newOrderItem(p, r.Quantity))
	}
	return mergeOrderItems(nil, additions), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *orderService) GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.OrderResponse, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerRole == model.RoleTeacher && order.TeacherID != callerID {
		return nil, ErrNoPermission
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderService) getOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.repo.Order.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error("查询订单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (s *orderService) reload(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderService) List(ctx context.Context, req *dto.OrderListRequest, callerID, callerRole string) ([]dto.OrderResponse, int64, error) {
	filters := &repository.OrderFilters{
		Week:      req.Week,
		CourseID:  req.CourseID,
		TeacherID: req.TeacherID,
	}
	if req.Status != "" {
		filters.Statuses = []string{req.Status}
	}
	// 教师只能看到自己的订单
	if callerRole == model.RoleTeacher {
		filters.TeacherID = callerID
	}

	orders, total, err := s.repo.Order.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出订单失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, toOrderResponse(&orders[i]))
	}
	return result, total, nil
}

// ────────────────────── Delete ──────────────────────

func (s *orderService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return err
	}

	if callerRole != model.RoleAdmin {
		if order.TeacherID != callerID || order.Status != model.OrderStatusPending {
			return ErrOrderNotDeletable
		}
	}

	if err := s.repo.Order.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		s.logger.Error("删除订单失败", zap.String("id", id), zap.Error(err))
		return err
	}

	publishOrderEvent(ctx, s.publisher, events.OrderDeleted, order)
	return nil
}

// ────────────────────── Weeks ──────────────────────

// Weeks 默认 16 周标签并入已使用的周次，按周序号排序
func (s *orderService) Weeks(ctx context.Context) ([]string, error) {
	used, err := s.repo.Order.DistinctWeeks(ctx)
	if err != nil {
		s.logger.Error("查询周次失败", zap.Error(err))
		return nil, err
	}

	seen := make(map[string]bool, defaultWeekCount+len(used))
	weeks := make([]string, 0, defaultWeekCount+len(used))
	for i := 1; i <= defaultWeekCount; i++ {
		w := weekLabel(i)
		seen[w] = true
		weeks = append(weeks, w)
	}
	for _, w := range used {
		if w != "" && !seen[w] {
			seen[w] = true
			weeks = append(weeks, w)
		}
	}

	sort.SliceStable(weeks, func(i, j int) bool {
		ni, nj := weekNumber(weeks[i]), weekNumber(weeks[j])
		if ni != nj {
			return ni < nj
		}
		return weeks[i] < weeks[j]
	})
	return weeks, nil
}

// ────────────────────── 状态流转 ──────────────────────

func (s *orderService) Approve(ctx context.Context, id, callerID string) (*dto.OrderResponse, error) {
	return s.transition(ctx, id, callerID, events.OrderApproved)
}

func (s *orderService) Receive(ctx context.Context, id, callerID string) (*dto.OrderResponse, error) {
	return s.transition(ctx, id, callerID, events.OrderReceived)
}

func (s *orderService) Revert(ctx context.Context, id, callerID string) (*dto.OrderResponse, error) {
	return s.transition(ctx, id, callerID, events.OrderReverted)
}

func (s *orderService) transition(ctx context.Context, id, callerID, action string) (*dto.OrderResponse, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	rule := orderTransitions[action]
	allowed := false
	for _, from := range rule.from {
		if order.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrOrderInvalidTransition
	}

	now := time.Now()
	switch action {
	case events.OrderApproved:
		order.ApprovedAt = &now
		order.ApprovedBy = &callerID
	case events.OrderReceived:
		order.ReceivedAt = &now
		order.ReceivedBy = &callerID
	case events.OrderReverted:
		order.ApprovedAt, order.ApprovedBy = nil, nil
		order.ReceivedAt, order.ReceivedBy = nil, nil
	}
	order.Status = rule.to
	order.UpdatedBy = &callerID

	if err := s.repo.Order.Update(ctx, order); err != nil {
		s.logger.Warn("更新订单状态失败",
			zap.String("id", id),
			zap.String("action", action),
			zap.Error(err),
		)
		return nil, err
	}

	publishOrderEvent(ctx, s.publisher, action, order)
	resp := toOrderResponse(order)
	return &resp, nil
}

// ────────────────────── Export ──────────────────────

func (s *orderService) Export(ctx context.Context, id, callerID, callerRole string) ([]byte, string, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if callerRole == model.RoleTeacher && order.TeacherID != callerID {
		return nil, "", ErrNoPermission
	}

	courseLabel := order.CourseID
	if order.Course != nil {
		courseLabel = order.Course.Code + " " + order.Course.Name
	}
	teacherName := ""
	if order.Teacher != nil {
		teacherName = order.Teacher.Name
	}

	w := newSheetWriter("Sipariş")
	w.widths(28, 18, 18, 10, 12, 14, 14)
	w.title(fmt.Sprintf("%s - %s Sipariş Listesi", courseLabel, order.Week), 7)
	w.writeRow("Öğretmen", teacherName, "Durum", order.Status)
	w.skip(1)
	w.header("Ürün", "Marka", "Kategori", "Birim", "Miktar", "Birim Fiyat", "Tutar")
	for _, it := range order.Items {
		w.writeRow(it.ProductName, it.Brand, it.Category, it.Unit, it.Quantity, it.UnitPrice, it.LineTotal)
	}
	w.writeRow("", "", "", "", "", "Toplam", order.Total)

	data, err := w.bytes()
	if err != nil {
		s.logger.Error("导出订单失败", zap.String("id", id), zap.Error(err))
		return nil, "", err
	}

	code := order.CourseID
	if order.Course != nil {
		code = order.Course.Code
	}
	filename := fmt.Sprintf("siparis_%s_%s.xlsx", code, strings.ReplaceAll(order.Week, " ", ""))
	return data, filename, nil
}

// ── 辅助函数 ──

// checkCourseAccess 课程存在且（教师角色时）已分配给当前用户
func checkCourseAccess(ctx context.Context, repo *repository.Repository, courseID, callerID, callerRole string) error {
	if _, err := repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	if callerRole != model.RoleTeacher {
		return nil
	}
	user, err := repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.CourseIDs.Contains(courseID) {
		return ErrOrderCourseNotAssigned
	}
	return nil
}

func newOrderItem(p *model.Product, qty decimal.Decimal) model.OrderItem {
	return model.OrderItem{
		ProductID:   p.ProductID,
		ProductName: p.Name,
		Brand:       p.Brand,
		Unit:        p.Unit,
		Category:    p.Category,
		Quantity:    qty,
		UnitPrice:   p.Price,
	}
}

// mergeOrderItems 按商品 ID 合并：已有商品累加数量，新商品追加到末尾
// 结果中同一商品只出现一次，小计需由调用方重新计算
func mergeOrderItems(existing, additions []model.OrderItem) []model.OrderItem {
	merged := make([]model.OrderItem, 0, len(existing)+len(additions))
	index := make(map[string]int, len(existing)+len(additions))
	for _, it := range existing {
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity = merged[i].Quantity.Add(it.Quantity)
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	for _, it := range additions {
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity = merged[i].Quantity.Add(it.Quantity)
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged
}

func weekLabel(n int) string {
	return fmt.Sprintf("%d. Hafta", n)
}

// weekNumber 解析 "3. Hafta" 的周序号，无法解析时排在最后
func weekNumber(label string) int {
	end := 0
	for end < len(label) && label[end] >= '0' && label[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(label[:end])
	if err != nil {
		return 1 << 30
	}
	return n
}

func publishOrderEvent(ctx context.Context, publisher events.Publisher, event string, o *model.Order) {
	publisher.PublishOrder(ctx, events.OrderEvent{
		Event:     event,
		OrderID:   o.OrderID,
		TeacherID: o.TeacherID,
		CourseID:  o.CourseID,
		Week:      o.Week,
		Status:    o.Status,
		Total:     o.Total.StringFixed(2),
		At:        time.Now().UTC(),
	})
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Brand:       it.Brand,
			Unit:        it.Unit,
			Category:    it.Category,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}

	resp := dto.OrderResponse{
		ID:         o.OrderID,
		TeacherID:  o.TeacherID,
		CourseID:   o.CourseID,
		Week:       o.Week,
		Items:      items,
		Total:      o.Total,
		Status:     o.Status,
		Notes:      o.Notes,
		ApprovedAt: formatTimePtr(o.ApprovedAt),
		ReceivedAt: formatTimePtr(o.ReceivedAt),
		Version:    o.Version,
		CreatedAt:  formatTime(o.CreatedAt),
		UpdatedAt:  formatTime(o.UpdatedAt),
	}
	if o.Teacher != nil {
		resp.TeacherName = o.Teacher.Name
	}
	if o.Course != nil {
		resp.CourseCode = o.Course.Code
		resp.CourseName = o.Course.Name
	}
	return resp
}
