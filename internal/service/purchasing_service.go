package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
)

// PurchasingService 采购对账业务接口
type PurchasingService interface {
	// Reconcile 汇总订单需求并与仓库库存对比
	Reconcile(ctx context.Context, req *dto.ReconcileRequest) (*dto.ReconcileResponse, error)
	// Deduct 将商品库存直接置零（无审计记录）
	Deduct(ctx context.Context, productID string) error
	Export(ctx context.Context, req *dto.ReconcileRequest) ([]byte, string, error)
}

type purchasingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPurchasingService 创建 PurchasingService 实例
func NewPurchasingService(repo *repository.Repository, logger *zap.Logger) PurchasingService {
	return &purchasingService{repo: repo, logger: logger}
}

// ────────────────────── Reconcile ──────────────────────

func (s *purchasingService) Reconcile(ctx context.Context, req *dto.ReconcileRequest) (*dto.ReconcileResponse, error) {
	statuses := []string{model.OrderStatusPending, model.OrderStatusApproved}
	if req.IncludeReceived {
		statuses = append(statuses, model.OrderStatusReceived)
	}

	orders, err := s.repo.Order.ListAll(ctx, &repository.OrderFilters{
		Week:     req.Week,
		CourseID: req.CourseID,
		Statuses: statuses,
	})
	if err != nil {
		s.logger.Error("查询订单失败", zap.Error(err))
		return nil, err
	}

	products, err := s.repo.Product.ListAll(ctx, nil)
	if err != nil {
		s.logger.Error("查询商品失败", zap.Error(err))
		return nil, err
	}

	resp := reconcile(orders, products)
	resp.Week = req.Week
	resp.CourseID = req.CourseID
	return resp, nil
}

// lineAcc 对账行累加器
type lineAcc struct {
	line    dto.ReconcileLine
	orders  map[string]bool
	courses map[string]bool
}

// reconcile 按商品 ID 汇总需求，按 名称|品牌 键查找库存
// to_purchase = max(0, requested - on_hand)
func reconcile(orders []model.Order, products []model.Product) *dto.ReconcileResponse {
	catalog := make(map[string]*model.Product, len(products))
	onHand := make(map[string]decimal.Decimal, len(products))
	for i := range products {
		p := &products[i]
		catalog[p.ProductID] = p
		key := p.StockKey()
		onHand[key] = onHand[key].Add(p.Stock)
	}

	accs := make(map[string]*lineAcc)
	for _, o := range orders {
		courseCode := o.CourseID
		if o.Course != nil {
			courseCode = o.Course.Code
		}
		for _, it := range o.Items {
			acc, ok := accs[it.ProductID]
			if !ok {
				acc = &lineAcc{
					line: dto.ReconcileLine{
						ProductID:     it.ProductID,
						ProductName:   it.ProductName,
						Brand:         it.Brand,
						Unit:          it.Unit,
						Category:      it.Category,
						Price:         it.UnitPrice,
						Requested:     decimal.Zero,
						RequestedCost: decimal.Zero,
					},
					orders:  make(map[string]bool),
					courses: make(map[string]bool),
				}
				// 目录中仍存在时以当前目录信息为准
				if p, found := catalog[it.ProductID]; found {
					acc.line.ProductName = p.Name
					acc.line.Brand = p.Brand
					acc.line.Unit = p.Unit
					acc.line.Category = p.Category
					acc.line.Price = p.Price
				}
				accs[it.ProductID] = acc
			}
			acc.line.Requested = acc.line.Requested.Add(it.Quantity)
			acc.line.RequestedCost = acc.line.RequestedCost.Add(it.LineTotal)
			acc.orders[o.OrderID] = true
			acc.courses[courseCode] = true
		}
	}

	resp := &dto.ReconcileResponse{
		OrderCount:         len(orders),
		Lines:              make([]dto.ReconcileLine, 0, len(accs)),
		TotalRequestedCost: decimal.Zero,
		TotalPurchaseCost:  decimal.Zero,
	}
	for _, acc := range accs {
		line := acc.line
		line.OnHand = onHand[model.StockKey(line.ProductName, line.Brand)]
		line.ToPurchase = decimal.Max(decimal.Zero, line.Requested.Sub(line.OnHand))
		line.PurchaseCost = line.ToPurchase.Mul(line.Price).Round(2)
		line.RequestedCost = line.RequestedCost.Round(2)
		line.OrderCount = len(acc.orders)
		line.CourseCodes = sortedKeys(acc.courses)

		resp.TotalRequestedCost = resp.TotalRequestedCost.Add(line.RequestedCost)
		resp.TotalPurchaseCost = resp.TotalPurchaseCost.Add(line.PurchaseCost)
		resp.Lines = append(resp.Lines, line)
	}

	sort.Slice(resp.Lines, func(i, j int) bool {
		a, b := resp.Lines[i], resp.Lines[j]
		ca, cb := strings.ToLowerSpecial(turkishCase, a.Category), strings.ToLowerSpecial(turkishCase, b.Category)
		if ca != cb {
			return ca < cb
		}
		na, nb := strings.ToLowerSpecial(turkishCase, a.ProductName), strings.ToLowerSpecial(turkishCase, b.ProductName)
		if na != nb {
			return na < nb
		}
		return a.Brand < b.Brand
	})
	return resp
}

// ────────────────────── Deduct ──────────────────────

func (s *purchasingService) Deduct(ctx context.Context, productID string) error {
	if err := s.repo.Product.UpdateStock(ctx, productID, decimal.Zero, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		s.logger.Error("扣减库存失败", zap.String("product_id", productID), zap.Error(err))
		return err
	}
	s.logger.Info("库存已扣减为 0", zap.String("product_id", productID))
	return nil
}

// ────────────────────── Export ──────────────────────

func (s *purchasingService) Export(ctx context.Context, req *dto.ReconcileRequest) ([]byte, string, error) {
	result, err := s.Reconcile(ctx, req)
	if err != nil {
		return nil, "", err
	}

	scope := "Tüm Haftalar"
	if req.Week != "" {
		scope = req.Week
	}

	w := newSheetWriter("Satın Alma")
	w.widths(20, 28, 16, 8, 12, 12, 12, 12, 14, 14, 10, 24)
	w.title(fmt.Sprintf("Satın Alma Listesi - %s", scope), 12)
	w.header("Kategori", "Ürün", "Marka", "Birim", "Fiyat", "İstenen", "Stok", "Alınacak",
		"İstenen Tutar", "Alım Tutarı", "Sipariş", "Dersler")
	for _, l := range result.Lines {
		w.writeRow(l.Category, l.ProductName, l.Brand, l.Unit, l.Price, l.Requested, l.OnHand, l.ToPurchase,
			l.RequestedCost, l.PurchaseCost, l.OrderCount, strings.Join(l.CourseCodes, ", "))
	}
	w.writeRow("", "", "", "", "", "", "", "Toplam", result.TotalRequestedCost, result.TotalPurchaseCost)

	data, err := w.bytes()
	if err != nil {
		s.logger.Error("导出对账表失败", zap.Error(err))
		return nil, "", err
	}

	filename := "satin_alma.xlsx"
	if req.Week != "" {
		filename = fmt.Sprintf("satin_alma_%s.xlsx", strings.ReplaceAll(req.Week, " ", ""))
	}
	return data, filename, nil
}

// ── 辅助函数 ──

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
