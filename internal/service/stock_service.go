package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
)

// StockService 仓库库存盘点业务接口
type StockService interface {
	List(ctx context.Context, req *dto.StockListRequest) ([]dto.StockItemResponse, error)
	// UpdateStock 按单位类型校验数量后写入库存与时间戳
	UpdateStock(ctx context.Context, productID string, req *dto.UpdateStockRequest) (*dto.StockItemResponse, error)
	// CountSequence 按盘点顺序（分类、名称）返回商品 ID，供逐项盘点使用
	CountSequence(ctx context.Context, req *dto.StockListRequest) (*dto.CountSequenceResponse, error)
}

type stockService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStockService 创建 StockService 实例
func NewStockService(repo *repository.Repository, logger *zap.Logger) StockService {
	return &stockService{repo: repo, logger: logger}
}

func (s *stockService) list(ctx context.Context, req *dto.StockListRequest) ([]model.Product, error) {
	products, err := s.repo.Product.ListAll(ctx, &repository.ProductFilters{
		Category: req.Category,
		Keyword:  req.Keyword,
	})
	if err != nil {
		s.logger.Error("查询库存失败", zap.Error(err))
		return nil, err
	}
	return products, nil
}

// ────────────────────── List ──────────────────────

func (s *stockService) List(ctx context.Context, req *dto.StockListRequest) ([]dto.StockItemResponse, error) {
	products, err := s.list(ctx, req)
	if err != nil {
		return nil, err
	}
	result := make([]dto.StockItemResponse, 0, len(products))
	for i := range products {
		result = append(result, toStockItemResponse(&products[i]))
	}
	return result, nil
}

// ────────────────────── UpdateStock ──────────────────────

func (s *stockService) UpdateStock(ctx context.Context, productID string, req *dto.UpdateStockRequest) (*dto.StockItemResponse, error) {
	product, err := s.repo.Product.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		s.logger.Error("查询商品失败", zap.String("id", productID), zap.Error(err))
		return nil, err
	}

	if !model.ValidQuantity(product.Unit, req.Quantity) {
		return nil, ErrInvalidQuantity
	}

	now := time.Now()
	if err := s.repo.Product.UpdateStock(ctx, productID, req.Quantity, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		s.logger.Error("更新库存失败", zap.String("id", productID), zap.Error(err))
		return nil, err
	}

	product.Stock = req.Quantity
	product.StockUpdatedAt = &now
	resp := toStockItemResponse(product)
	return &resp, nil
}

// ────────────────────── CountSequence ──────────────────────

func (s *stockService) CountSequence(ctx context.Context, req *dto.StockListRequest) (*dto.CountSequenceResponse, error) {
	products, err := s.list(ctx, req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ProductID)
	}
	return &dto.CountSequenceResponse{Total: len(ids), ProductIDs: ids}, nil
}

// ── 辅助函数 ──

func toStockItemResponse(p *model.Product) dto.StockItemResponse {
	return dto.StockItemResponse{
		ProductID:      p.ProductID,
		Name:           p.Name,
		Brand:          p.Brand,
		Unit:           p.Unit,
		UnitKind:       model.UnitKind(p.Unit),
		Category:       p.Category,
		Stock:          p.Stock,
		StockUpdatedAt: formatTimePtr(p.StockUpdatedAt),
	}
}
