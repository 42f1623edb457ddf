package service

import (
	"context"
	"errors"
	"fmt"
	"io"
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

var (
	ErrAssetNotFound        = errors.New("资产不存在")
	ErrAssetCodeExists      = errors.New("资产编码已存在")
	ErrAssetInvalidQuantity = errors.New("资产数量不能为负数")
	ErrInvalidCondition     = errors.New("资产状况取值不合法")
	ErrCountSessionNotFound = errors.New("盘点会话不存在")
	ErrCountSessionClosed   = errors.New("盘点会话已完成，不能再登记")
	ErrCountItemNotFound    = errors.New("该资产不在本次盘点中")
)

var assetImportAliases = map[string][]string{
	"code":      {"kod", "demirbaş kodu", "code"},
	"name":      {"ad", "demirbaş adı", "name"},
	"category":  {"kategori", "category"},
	"location":  {"konum", "location"},
	"quantity":  {"miktar", "adet", "quantity"},
	"condition": {"durum", "condition"},
}

var countImportAliases = map[string][]string{
	"code":      {"kod", "demirbaş kodu", "code"},
	"counted":   {"sayılan", "sayilan", "counted"},
	"condition": {"durum", "condition"},
	"note":      {"not", "note"},
}

var assetSheetHeader = []string{"Kod", "Ad", "Kategori", "Konum", "Miktar", "Durum"}

// InventoryService 固定资产与盘点业务接口
type InventoryService interface {
	CreateAsset(ctx context.Context, req *dto.CreateAssetRequest, callerID string) (*dto.AssetResponse, error)
	GetAsset(ctx context.Context, id string) (*dto.AssetResponse, error)
	ListAssets(ctx context.Context, req *dto.AssetListRequest) ([]dto.AssetResponse, error)
	UpdateAsset(ctx context.Context, id string, req *dto.UpdateAssetRequest, callerID string) (*dto.AssetResponse, error)
	DeleteAsset(ctx context.Context, id string, callerID string) error
	ImportAssets(ctx context.Context, reader io.Reader) (*dto.ImportResult, error)
	AssetTemplate() ([]byte, string, error)
	ExportAssets(ctx context.Context) ([]byte, string, error)

	StartSession(ctx context.Context, req *dto.StartSessionRequest, callerID string) (*dto.CountSessionDetailResponse, error)
	ListSessions(ctx context.Context) ([]dto.CountSessionResponse, error)
	GetSession(ctx context.Context, id string) (*dto.CountSessionDetailResponse, error)
	RecordCount(ctx context.Context, sessionID string, req *dto.RecordCountRequest) (*dto.CountItemResponse, error)
	ImportCounts(ctx context.Context, sessionID string, reader io.Reader) (*dto.ImportResult, error)
	ExportSession(ctx context.Context, sessionID string) ([]byte, string, error)
	// CompleteSession 关闭会话并把盘点结果回写资产
	CompleteSession(ctx context.Context, sessionID string) (*dto.CountSessionDetailResponse, error)
}

type inventoryService struct {
	repo    *repository.Repository
	maxRows int
	logger  *zap.Logger
}

// NewInventoryService 创建 InventoryService 实例
func NewInventoryService(repo *repository.Repository, maxRows int, logger *zap.Logger) InventoryService {
	return &inventoryService{repo: repo, maxRows: maxRows, logger: logger}
}

// ────────────────────── 资产 CRUD ──────────────────────

func (s *inventoryService) CreateAsset(ctx context.Context, req *dto.CreateAssetRequest, callerID string) (*dto.AssetResponse, error) {
	condition, err := resolveCondition(req.Condition)
	if err != nil {
		return nil, err
	}
	if req.Quantity.IsNegative() || !model.QuantityFits(req.Quantity) {
		return nil, ErrAssetInvalidQuantity
	}

	code := strings.TrimSpace(req.Code)
	if _, err := s.repo.Asset.GetByCode(ctx, code); err == nil {
		return nil, ErrAssetCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	asset := &model.InventoryAsset{
		Code:      code,
		Name:      strings.TrimSpace(req.Name),
		Category:  strings.TrimSpace(req.Category),
		Location:  strings.TrimSpace(req.Location),
		Quantity:  req.Quantity,
		Condition: condition,
		Notes:     req.Notes,
	}
	asset.CreatedBy = &callerID

	if err := s.repo.Asset.Create(ctx, asset); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAssetCodeExists
		}
		s.logger.Error("创建资产失败", zap.Error(err))
		return nil, err
	}

	resp := toAssetResponse(asset)
	return &resp, nil
}

func (s *inventoryService) getAsset(ctx context.Context, id string) (*model.InventoryAsset, error) {
	asset, err := s.repo.Asset.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		s.logger.Error("查询资产失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return asset, nil
}

func (s *inventoryService) GetAsset(ctx context.Context, id string) (*dto.AssetResponse, error) {
	asset, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAssetResponse(asset)
	return &resp, nil
}

func (s *inventoryService) ListAssets(ctx context.Context, req *dto.AssetListRequest) ([]dto.AssetResponse, error) {
	assets, err := s.repo.Asset.List(ctx, req.Category, req.Keyword)
	if err != nil {
		s.logger.Error("列出资产失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		result = append(result, toAssetResponse(&assets[i]))
	}
	return result, nil
}

func (s *inventoryService) UpdateAsset(ctx context.Context, id string, req *dto.UpdateAssetRequest, callerID string) (*dto.AssetResponse, error) {
	asset, err := s.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code != asset.Code {
			if existing, err := s.repo.Asset.GetByCode(ctx, code); err == nil && existing.AssetID != id {
				return nil, ErrAssetCodeExists
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			asset.Code = code
		}
	}
	if req.Name != nil {
		asset.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		asset.Category = strings.TrimSpace(*req.Category)
	}
	if req.Location != nil {
		asset.Location = strings.TrimSpace(*req.Location)
	}
	if req.Quantity != nil {
		if req.Quantity.IsNegative() || !model.QuantityFits(*req.Quantity) {
			return nil, ErrAssetInvalidQuantity
		}
		asset.Quantity = *req.Quantity
	}
	if req.Condition != nil {
		condition, err := resolveCondition(*req.Condition)
		if err != nil {
			return nil, err
		}
		asset.Condition = condition
	}
	if req.Notes != nil {
		asset.Notes = *req.Notes
	}
	asset.UpdatedBy = &callerID

	if err := s.repo.Asset.Update(ctx, asset); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAssetCodeExists
		}
		s.logger.Error("更新资产失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toAssetResponse(asset)
	return &resp, nil
}

func (s *inventoryService) DeleteAsset(ctx context.Context, id string, callerID string) error {
	if err := s.repo.Asset.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssetNotFound
		}
		s.logger.Error("删除资产失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 资产导入导出 ──────────────────────

func (s *inventoryService) ImportAssets(ctx context.Context, reader io.Reader) (*dto.ImportResult, error) {
	rows, err := readFirstSheet(reader)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(rows[0], assetImportAliases)
	if colIndex["code"] < 0 || colIndex["name"] < 0 {
		return nil, fmt.Errorf("%w（Kod / Ad）", ErrImportBadHeader)
	}

	resp := &dto.ImportResult{}
	seen := make(map[string]int)
	var valid []model.InventoryAsset

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

		code := cellAt(row, colIndex["code"])
		name := cellAt(row, colIndex["name"])
		if code == "" || name == "" {
			fail("Kod 或 Ad 为空")
			continue
		}
		if prev, dup := seen[code]; dup {
			fail(fmt.Sprintf("与第 %d 行编码重复", prev))
			continue
		}

		qty := decimal.Zero
		if text := cellAt(row, colIndex["quantity"]); text != "" {
			q, err := parseDecimalCell(text)
			if err != nil || q.IsNegative() || !model.QuantityFits(q) {
				fail(fmt.Sprintf("数量不合法: %s", text))
				continue
			}
			qty = q
		}
		condition, err := resolveCondition(cellAt(row, colIndex["condition"]))
		if err != nil {
			fail(fmt.Sprintf("状况不合法: %s", cellAt(row, colIndex["condition"])))
			continue
		}

		seen[code] = rowNum
		valid = append(valid, model.InventoryAsset{
			Code:      code,
			Name:      name,
			Category:  cellAt(row, colIndex["category"]),
			Location:  cellAt(row, colIndex["location"]),
			Quantity:  qty,
			Condition: condition,
		})
		resp.Success++
	}

	if resp.Total == 0 {
		return nil, ErrImportNoData
	}

	if err := s.repo.Asset.Upsert(ctx, valid); err != nil {
		s.logger.Error("导入资产失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("资产导入完成", zap.Int("total", resp.Total), zap.Int("success", resp.Success))
	return resp, nil
}

func (s *inventoryService) AssetTemplate() ([]byte, string, error) {
	w := newSheetWriter("Demirbaşlar")
	w.widths(14, 28, 18, 18, 10, 12)
	w.header(assetSheetHeader...)
	w.writeRow("MTF-001", "Endüstriyel Mikser", "Mutfak Ekipmanı", "Mutfak 1", 1, model.ConditionGood)

	data, err := w.bytes()
	if err != nil {
		s.logger.Error("生成资产模板失败", zap.Error(err))
		return nil, "", err
	}
	return data, "demirbas_sablonu.xlsx", nil
}

func (s *inventoryService) ExportAssets(ctx context.Context) ([]byte, string, error) {
	assets, err := s.repo.Asset.List(ctx, "", "")
	if err != nil {
		s.logger.Error("查询资产失败", zap.Error(err))
		return nil, "", err
	}

	w := newSheetWriter("Demirbaşlar")
	w.widths(14, 28, 18, 18, 10, 12)
	w.header(assetSheetHeader...)
	for _, a := range assets {
		w.writeRow(a.Code, a.Name, a.Category, a.Location, a.Quantity, a.Condition)
	}

	data, err := w.bytes()
	if err != nil {
		s.logger.Error("导出资产失败", zap.Error(err))
		return nil, "", err
	}
	return data, "demirbaslar.xlsx", nil
}

// ────────────────────── 盘点会话 ──────────────────────

func (s *inventoryService) StartSession(ctx context.Context, req *dto.StartSessionRequest, callerID string) (*dto.CountSessionDetailResponse, error) {
	session, err := s.repo.InventoryCount.StartSession(ctx, strings.TrimSpace(req.Title), callerID)
	if err != nil {
		s.logger.Error("创建盘点会话失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("盘点会话已创建",
		zap.String("session_id", session.SessionID),
		zap.String("title", session.Title),
		zap.Int("version", session.Version),
	)
	return s.GetSession(ctx, session.SessionID)
}

func (s *inventoryService) ListSessions(ctx context.Context) ([]dto.CountSessionResponse, error) {
	sessions, err := s.repo.InventoryCount.ListSessions(ctx)
	if err != nil {
		s.logger.Error("列出盘点会话失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CountSessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, toCountSessionResponse(&sessions[i]))
	}
	return result, nil
}

func (s *inventoryService) getSession(ctx context.Context, id string) (*model.InventoryCountSession, error) {
	session, err := s.repo.InventoryCount.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCountSessionNotFound
		}
		s.logger.Error("查询盘点会话失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	sort.SliceStable(session.Items, func(i, j int) bool {
		return itemCode(&session.Items[i]) < itemCode(&session.Items[j])
	})
	return session, nil
}

func (s *inventoryService) GetSession(ctx context.Context, id string) (*dto.CountSessionDetailResponse, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCountSessionDetail(session), nil
}

// ────────────────────── RecordCount ──────────────────────

func (s *inventoryService) RecordCount(ctx context.Context, sessionID string, req *dto.RecordCountRequest) (*dto.CountItemResponse, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.CountSessionOpen {
		return nil, ErrCountSessionClosed
	}
	if req.CountedQty.IsNegative() || !model.QuantityFits(req.CountedQty) {
		return nil, ErrAssetInvalidQuantity
	}

	var item *model.InventoryCountItem
	for i := range session.Items {
		if session.Items[i].AssetID == req.AssetID {
			item = &session.Items[i]
			break
		}
	}
	if item == nil {
		return nil, ErrCountItemNotFound
	}

	if err := applyCount(item, req.CountedQty, req.Condition, req.Note); err != nil {
		return nil, err
	}
	if err := s.repo.InventoryCount.UpdateItem(ctx, item); err != nil {
		s.logger.Error("登记盘点结果失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	resp := toCountItemResponse(item)
	return &resp, nil
}

// applyCount 写入实盘数量、状况与备注
func applyCount(item *model.InventoryCountItem, counted decimal.Decimal, condition, note string) error {
	if condition != "" {
		c, err := resolveCondition(condition)
		if err != nil {
			return err
		}
		item.Condition = c
	}
	now := time.Now()
	item.CountedQty = &counted
	item.Note = note
	item.CountedAt = &now
	return nil
}

// ────────────────────── ImportCounts / ExportSession ──────────────────────

func (s *inventoryService) ImportCounts(ctx context.Context, sessionID string, reader io.Reader) (*dto.ImportResult, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.CountSessionOpen {
		return nil, ErrCountSessionClosed
	}

	rows, err := readFirstSheet(reader)
	if err != nil {
		return nil, err
	}
	// 导出文件首行为标题，定位真正的表头行
	headerRow := -1
	var colIndex map[string]int
	for i := 0; i < len(rows) && i < 5; i++ {
		idx := parseHeaderIndex(rows[i], countImportAliases)
		if idx["code"] >= 0 && idx["counted"] >= 0 {
			headerRow, colIndex = i, idx
			break
		}
	}
	if headerRow < 0 {
		return nil, fmt.Errorf("%w（Kod / Sayılan）", ErrImportBadHeader)
	}

	byCode := make(map[string]*model.InventoryCountItem, len(session.Items))
	for i := range session.Items {
		byCode[itemCode(&session.Items[i])] = &session.Items[i]
	}

	resp := &dto.ImportResult{}
	var updated []model.InventoryCountItem
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		countedText := cellAt(row, colIndex["counted"])
		if countedText == "" {
			// 未填写实盘数量的行视为尚未盘点
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

		code := cellAt(row, colIndex["code"])
		item, ok := byCode[code]
		if !ok {
			fail(fmt.Sprintf("资产编码不在本次盘点中: %s", code))
			continue
		}
		counted, err := parseDecimalCell(countedText)
		if err != nil || counted.IsNegative() || !model.QuantityFits(counted) {
			fail(fmt.Sprintf("实盘数量不合法: %s", countedText))
			continue
		}
		if err := applyCount(item, counted, cellAt(row, colIndex["condition"]), cellAt(row, colIndex["note"])); err != nil {
			fail(fmt.Sprintf("状况不合法: %s", cellAt(row, colIndex["condition"])))
			continue
		}
		updated = append(updated, *item)
		resp.Success++
	}

	if len(updated) > 0 {
		if err := s.repo.InventoryCount.UpdateItems(ctx, updated); err != nil {
			s.logger.Error("导入盘点结果失败", zap.String("session_id", sessionID), zap.Error(err))
			return nil, err
		}
	}
	return resp, nil
}

func (s *inventoryService) ExportSession(ctx context.Context, sessionID string) ([]byte, string, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	w := newSheetWriter("Sayım")
	w.widths(14, 28, 18, 18, 12, 12, 10, 12, 30)
	w.title(fmt.Sprintf("%s (v%d)", session.Title, session.Version), 9)
	w.header("Kod", "Ad", "Kategori", "Konum", "Beklenen", "Sayılan", "Fark", "Durum", "Not")
	for i := range session.Items {
		r := toCountItemResponse(&session.Items[i])
		w.writeRow(r.Code, r.Name, r.Category, r.Location, r.ExpectedQty, r.CountedQty, r.Difference, r.Condition, r.Note)
	}

	data, err := w.bytes()
	if err != nil {
		s.logger.Error("导出盘点表失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, "", err
	}
	return data, fmt.Sprintf("sayim_%s_v%d.xlsx", strings.ReplaceAll(session.Title, " ", "_"), session.Version), nil
}

// ────────────────────── CompleteSession ──────────────────────

func (s *inventoryService) CompleteSession(ctx context.Context, sessionID string) (*dto.CountSessionDetailResponse, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.CountSessionOpen {
		return nil, ErrCountSessionClosed
	}

	if err := s.repo.InventoryCount.CompleteSession(ctx, sessionID, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCountSessionClosed
		}
		s.logger.Error("完成盘点失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("盘点已完成", zap.String("session_id", sessionID))
	return s.GetSession(ctx, sessionID)
}

// ── 辅助函数 ──

// resolveCondition 规范资产状况（兼容土耳其语写法），空值视为 iyi
func resolveCondition(c string) (string, error) {
	key := strings.ToLowerSpecial(turkishCase, strings.TrimSpace(c))
	switch key {
	case "":
		return model.ConditionGood, nil
	case "yıpranmış":
		return model.ConditionWorn, nil
	case "arızalı":
		return model.ConditionBroken, nil
	case "kayıp":
		return model.ConditionMissing, nil
	}
	if model.IsValidCondition(key) {
		return key, nil
	}
	return "", ErrInvalidCondition
}

func itemCode(it *model.InventoryCountItem) string {
	if it.Asset == nil {
		return ""
	}
	return it.Asset.Code
}

func toAssetResponse(a *model.InventoryAsset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:        a.AssetID,
		Code:      a.Code,
		Name:      a.Name,
		Category:  a.Category,
		Location:  a.Location,
		Quantity:  a.Quantity,
		Condition: a.Condition,
		Notes:     a.Notes,
		UpdatedAt: formatTime(a.UpdatedAt),
	}
}

func toCountSessionResponse(s *model.InventoryCountSession) dto.CountSessionResponse {
	return dto.CountSessionResponse{
		ID:          s.SessionID,
		Title:       s.Title,
		Version:     s.Version,
		Status:      s.Status,
		CountedBy:   s.CountedBy,
		CompletedAt: formatTimePtr(s.CompletedAt),
		CreatedAt:   formatTime(s.CreatedAt),
	}
}

func toCountItemResponse(it *model.InventoryCountItem) dto.CountItemResponse {
	resp := dto.CountItemResponse{
		AssetID:     it.AssetID,
		ExpectedQty: it.ExpectedQty,
		CountedQty:  it.CountedQty,
		Condition:   it.Condition,
		Note:        it.Note,
		CountedAt:   formatTimePtr(it.CountedAt),
	}
	if it.Asset != nil {
		resp.Code = it.Asset.Code
		resp.Name = it.Asset.Name
		resp.Category = it.Asset.Category
		resp.Location = it.Asset.Location
	}
	if it.CountedQty != nil {
		diff := it.CountedQty.Sub(it.ExpectedQty)
		resp.Difference = &diff
	}
	return resp
}

// toCountSessionDetail 构造详情并统计 matched / missing / surplus
func toCountSessionDetail(s *model.InventoryCountSession) *dto.CountSessionDetailResponse {
	detail := &dto.CountSessionDetailResponse{
		CountSessionResponse: toCountSessionResponse(s),
		Items:                make([]dto.CountItemResponse, 0, len(s.Items)),
	}
	for i := range s.Items {
		it := &s.Items[i]
		detail.Items = append(detail.Items, toCountItemResponse(it))

		detail.Summary.Total++
		if it.CountedQty == nil {
			detail.Summary.Pending++
			continue
		}
		detail.Summary.Counted++
		switch it.CountedQty.Cmp(it.ExpectedQty) {
		case 0:
			detail.Summary.Matched++
		case -1:
			detail.Summary.Missing++
		default:
			detail.Summary.Surplus++
		}
	}
	return detail
}
