package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
)

var (
	ErrProductNotFound     = errors.New("商品不存在")
	ErrProductExists       = errors.New("同名同品牌商品已存在")
	ErrProductInvalidUnit  = errors.New("计量单位不合法")
	ErrProductInvalidPrice = errors.New("价格不能为负数")
	ErrInvalidQuantity     = errors.New("数量格式不合法（计数单位只能为非负整数）")
)

// productImportAliases 商品导入表头别名（小写）
var productImportAliases = map[string][]string{
	"name":     {"ürün adı", "ürün", "urun adi", "name"},
	"brand":    {"marka", "brand"},
	"price":    {"fiyat", "birim fiyat", "price"},
	"unit":     {"birim", "unit"},
	"category": {"kategori", "category"},
	"stock":    {"stok", "stock"},
}

var productSheetHeader = []string{"Ürün Adı", "Marka", "Fiyat", "Birim", "Kategori", "Stok"}

// ProductService 商品目录业务接口
type ProductService interface {
	Create(ctx context.Context, req *dto.CreateProductRequest, callerID string) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProductResponse, error)
	List(ctx context.Context, req *dto.ProductListRequest) ([]dto.ProductResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateProductRequest, callerID string) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	Categories(ctx context.Context) ([]string, error)
	// Import 先整体校验再写入，非法行返回行号与原因
	Import(ctx context.Context, reader io.Reader) (*dto.ImportResult, error)
	Template() ([]byte, string, error)
	Export(ctx context.Context, category string) ([]byte, string, error)
}

type productService struct {
	repo    *repository.Repository
	maxRows int
	logger  *zap.Logger
}

// NewProductService 创建 ProductService 实例
func NewProductService(repo *repository.Repository, maxRows int, logger *zap.Logger) ProductService {
	return &productService{repo: repo, maxRows: maxRows, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *productService) Create(ctx context.Context, req *dto.CreateProductRequest, callerID string) (*dto.ProductResponse, error) {
	unit := model.NormalizeUnit(req.Unit)
	if unit == "" {
		return nil, ErrProductInvalidUnit
	}
	if req.Price.IsNegative() {
		return nil, ErrProductInvalidPrice
	}

	name := strings.TrimSpace(req.Name)
	brand := strings.TrimSpace(req.Brand)
	if _, err := s.repo.Product.GetByNameBrand(ctx, name, brand); err == nil {
		return nil, ErrProductExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product := &model.Product{
		Name:     name,
		Brand:    brand,
		Price:    req.Price.Round(2),
		Unit:     unit,
		Category: strings.TrimSpace(req.Category),
		Notes:    req.Notes,
	}
	product.CreatedBy = &callerID
	if req.Stock != nil {
		if !model.ValidQuantity(unit, *req.Stock) {
			return nil, ErrInvalidQuantity
		}
		now := time.Now()
		product.Stock = *req.Stock
		product.StockUpdatedAt = &now
	}

	if err := s.repo.Product.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProductExists
		}
		s.logger.Error("创建商品失败", zap.Error(err))
		return nil, err
	}

	resp := toProductResponse(product)
	return &resp, nil
}

// ────────────────────── GetByID / List / Categories ──────────────────────

func (s *productService) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *productService) getProduct(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.repo.Product.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		s.logger.Error("查询商品失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, req *dto.ProductListRequest) ([]dto.ProductResponse, int64, error) {
	filters := &repository.ProductFilters{Category: req.Category, Keyword: req.Keyword}
	products, total, err := s.repo.Product.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出商品失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		result = append(result, toProductResponse(&products[i]))
	}
	return result, total, nil
}

func (s *productService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Product.Categories(ctx)
	if err != nil {
		s.logger.Error("查询商品分类失败", zap.Error(err))
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// ────────────────────── Update ──────────────────────

func (s *productService) Update(ctx context.Context, id string, req *dto.UpdateProductRequest, callerID string) (*dto.ProductResponse, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Brand != nil {
		product.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrProductInvalidPrice
		}
		product.Price = req.Price.Round(2)
	}
	if req.Unit != nil {
		unit := model.NormalizeUnit(*req.Unit)
		if unit == "" {
			return nil, ErrProductInvalidUnit
		}
		product.Unit = unit
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Notes != nil {
		product.Notes = *req.Notes
	}
	product.UpdatedBy = &callerID

	if err := s.repo.Product.Update(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProductExists
		}
		s.logger.Error("更新商品失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toProductResponse(product)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *productService) Delete(ctx context.Context, id string, callerID string) error {
	if err := s.repo.Product.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		s.logger.Error("删除商品失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Import ──────────────────────

func (s *productService) Import(ctx context.Context, reader io.Reader) (*dto.ImportResult, error) {
	rows, err := readFirstSheet(reader)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(rows[0], productImportAliases)
	if colIndex["name"] < 0 || colIndex["price"] < 0 || colIndex["unit"] < 0 {
		return nil, fmt.Errorf("%w（Ürün Adı / Fiyat / Birim）", ErrImportBadHeader)
	}

	// 第一阶段：逐行校验，不写库
	resp := &dto.ImportResult{}
	now := time.Now()
	seen := make(map[string]int)
	var withStock, withoutStock []model.Product

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		resp.Total++
		if resp.Total > s.maxRows {
			return nil, fmt.Errorf("%w %d 行", ErrImportTooManyRows, s.maxRows)
		}
		rowNum := i + 1

		fail := func(reason string) {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportRowError{Row: rowNum, Reason: reason})
		}

		name := cellAt(row, colIndex["name"])
		brand := cellAt(row, colIndex["brand"])
		if name == "" {
			fail("Ürün Adı 为空")
			continue
		}
		unit := model.NormalizeUnit(cellAt(row, colIndex["unit"]))
		if unit == "" {
			fail(fmt.Sprintf("未知单位: %s", cellAt(row, colIndex["unit"])))
			continue
		}
		price, err := parseDecimalCell(cellAt(row, colIndex["price"]))
		if err != nil || price.IsNegative() {
			fail(fmt.Sprintf("价格不合法: %s", cellAt(row, colIndex["price"])))
			continue
		}

		key := model.StockKey(name, brand)
		if prev, dup := seen[key]; dup {
			fail(fmt.Sprintf("与第 %d 行重复", prev))
			continue
		}
		seen[key] = rowNum

		p := model.Product{
			Name:     name,
			Brand:    brand,
			Price:    price.Round(2),
			Unit:     unit,
			Category: cellAt(row, colIndex["category"]),
		}

		stockText := cellAt(row, colIndex["stock"])
		if stockText == "" {
			withoutStock = append(withoutStock, p)
			resp.Success++
			continue
		}
		stock, err := parseDecimalCell(stockText)
		if err != nil || !model.ValidQuantity(unit, stock) {
			fail(fmt.Sprintf("库存不合法: %s", stockText))
			continue
		}
		p.Stock = stock
		p.StockUpdatedAt = &now
		withStock = append(withStock, p)
		resp.Success++
	}

	if resp.Total == 0 {
		return nil, ErrImportNoData
	}

	// 第二阶段：按 (name, brand) 批量写入
	if err := s.repo.Product.Upsert(ctx, withStock, true); err != nil {
		s.logger.Error("导入商品失败", zap.Error(err))
		return nil, err
	}
	if err := s.repo.Product.Upsert(ctx, withoutStock, false); err != nil {
		s.logger.Error("导入商品失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("商品导入完成",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// ────────────────────── Template / Export ──────────────────────

func (s *productService) Template() ([]byte, string, error) {
	w := newSheetWriter("Ürünler")
	w.widths(28, 18, 12, 10, 20, 10)
	w.header(productSheetHeader...)
	w.writeRow("Tereyağı", "Sütaş", 150, model.UnitKg, "Süt Ürünleri", 0)

	data, err := w.bytes()
	if err != nil {
		s.logger.Error("生成商品模板失败", zap.Error(err))
		return nil, "", err
	}
	return data, "urun_sablonu.xlsx", nil
}

func (s *productService) Export(ctx context.Context, category string) ([]byte, string, error) {
	products, err := s.repo.Product.ListAll(ctx, &repository.ProductFilters{Category: category})
	if err != nil {
		s.logger.Error("查询商品失败", zap.Error(err))
		return nil, "", err
	}

	w := newSheetWriter("Ürünler")
	w.widths(28, 18, 12, 10, 20, 10)
	w.header(productSheetHeader...)
	for _, p := range products {
		w.writeRow(p.Name, p.Brand, p.Price, p.Unit, p.Category, p.Stock)
	}

	data, err := w.bytes()
	if err != nil {
		s.logger.Error("导出商品失败", zap.Error(err))
		return nil, "", err
	}

	filename := "urunler.xlsx"
	if category != "" {
		filename = fmt.Sprintf("urunler_%s.xlsx", category)
	}
	return data, filename, nil
}

// ── 辅助函数 ──

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:             p.ProductID,
		Name:           p.Name,
		Brand:          p.Brand,
		Price:          p.Price,
		Unit:           p.Unit,
		UnitKind:       model.UnitKind(p.Unit),
		Category:       p.Category,
		Stock:          p.Stock,
		StockUpdatedAt: formatTimePtr(p.StockUpdatedAt),
		Notes:          p.Notes,
	}
}
