package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
)

func setupTestInventoryService() (InventoryService, *mockRepos) {
	repo, mocks := newMockRepos()
	return NewInventoryService(repo, 100, zap.NewNop()), mocks
}

func seedAsset(t *testing.T, svc InventoryService, code, name, qty string) *dto.AssetResponse {
	t.Helper()
	resp, err := svc.CreateAsset(context.Background(), &dto.CreateAssetRequest{
		Code: code, Name: name, Category: "Mutfak Ekipmanı", Location: "Mutfak 1", Quantity: dec(qty),
	}, "stok-1")
	if err != nil {
		t.Fatalf("CreateAsset 应成功: %v", err)
	}
	return resp
}

func TestCreateAsset_Validation(t *testing.T) {
	svc, _ := setupTestInventoryService()
	asset := seedAsset(t, svc, "MTF-001", "Mikser", "2")

	if asset.Condition != model.ConditionGood {
		t.Errorf("未填写状况时默认 iyi，实际=%s", asset.Condition)
	}

	_, err := svc.CreateAsset(context.Background(), &dto.CreateAssetRequest{Code: "MTF-001", Name: "Kopya"}, "stok-1")
	if !errors.Is(err, ErrAssetCodeExists) {
		t.Errorf("期望 ErrAssetCodeExists，实际: %v", err)
	}
	_, err = svc.CreateAsset(context.Background(), &dto.CreateAssetRequest{Code: "MTF-002", Name: "Fırın", Quantity: dec("-1")}, "stok-1")
	if !errors.Is(err, ErrAssetInvalidQuantity) {
		t.Errorf("期望 ErrAssetInvalidQuantity，实际: %v", err)
	}
	_, err = svc.CreateAsset(context.Background(), &dto.CreateAssetRequest{Code: "MTF-003", Name: "Fırın", Condition: "yeni"}, "stok-1")
	if !errors.Is(err, ErrInvalidCondition) {
		t.Errorf("期望 ErrInvalidCondition，实际: %v", err)
	}
}

func TestResolveCondition_TurkishSpelling(t *testing.T) {
	tests := map[string]string{
		"":          model.ConditionGood,
		"İYİ":       model.ConditionGood,
		"Yıpranmış": model.ConditionWorn,
		"ARIZALI":   model.ConditionBroken,
		"kayip":     model.ConditionMissing,
	}
	for in, want := range tests {
		got, err := resolveCondition(in)
		if err != nil || got != want {
			t.Errorf("resolveCondition(%q) 期望 %s，实际=%s err=%v", in, want, got, err)
		}
	}
}

func TestCountSession_Lifecycle(t *testing.T) {
	svc, mocks := setupTestInventoryService()
	ctx := context.Background()
	mixer := seedAsset(t, svc, "MTF-001", "Mikser", "2")
	oven := seedAsset(t, svc, "MTF-002", "Fırın", "1")
	pans := seedAsset(t, svc, "MTF-003", "Tava", "10")

	session, err := svc.StartSession(ctx, &dto.StartSessionRequest{Title: "Güz Sayımı"}, "stok-1")
	if err != nil {
		t.Fatalf("StartSession 应成功: %v", err)
	}
	if session.Version != 1 || session.Summary.Total != 3 || session.Summary.Pending != 3 {
		t.Fatalf("新会话应为 v1 且 3 项待盘点，实际=%+v", session.Summary)
	}

	record := func(assetID, qty string) {
		t.Helper()
		if _, err := svc.RecordCount(ctx, session.ID, &dto.RecordCountRequest{AssetID: assetID, CountedQty: dec(qty)}); err != nil {
			t.Fatalf("RecordCount 应成功: %v", err)
		}
	}
	record(mixer.ID, "2")
	record(oven.ID, "0")

	item, err := svc.RecordCount(ctx, session.ID, &dto.RecordCountRequest{AssetID: pans.ID, CountedQty: dec("12"), Condition: "yipranmis"})
	if err != nil {
		t.Fatalf("RecordCount 应成功: %v", err)
	}
	if item.Difference == nil || !item.Difference.Equal(dec("2")) {
		t.Errorf("期望差异 +2，实际=%v", item.Difference)
	}

	detail, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession 应成功: %v", err)
	}
	want := dto.CountSummary{Total: 3, Counted: 3, Matched: 1, Missing: 1, Surplus: 1}
	if detail.Summary != want {
		t.Errorf("汇总不正确，期望 %+v，实际 %+v", want, detail.Summary)
	}

	completed, err := svc.CompleteSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("CompleteSession 应成功: %v", err)
	}
	if completed.Status != model.CountSessionCompleted || completed.CompletedAt == nil {
		t.Errorf("会话应已完成，实际=%+v", completed.CountSessionResponse)
	}
	if a := mocks.asset.assets[pans.ID]; !a.Quantity.Equal(dec("12")) || a.Condition != model.ConditionWorn {
		t.Errorf("完成后应回写资产数量与状况，实际=%s/%s", a.Quantity, a.Condition)
	}

	if _, err := svc.RecordCount(ctx, session.ID, &dto.RecordCountRequest{AssetID: mixer.ID, CountedQty: dec("1")}); !errors.Is(err, ErrCountSessionClosed) {
		t.Errorf("已完成的会话不能再登记，实际: %v", err)
	}
	if _, err := svc.CompleteSession(ctx, session.ID); !errors.Is(err, ErrCountSessionClosed) {
		t.Errorf("重复完成应被拒绝，实际: %v", err)
	}

	next, err := svc.StartSession(ctx, &dto.StartSessionRequest{Title: "Güz Sayımı"}, "stok-1")
	if err != nil {
		t.Fatalf("StartSession 应成功: %v", err)
	}
	if next.Version != 2 {
		t.Errorf("同名会话版本号应递增为 2，实际=%d", next.Version)
	}
	for _, it := range next.Items {
		if it.AssetID == pans.ID && !it.ExpectedQty.Equal(dec("12")) {
			t.Errorf("新会话的账面数量应取回写后的值，实际=%s", it.ExpectedQty)
		}
	}
}

func TestRecordCount_UnknownAsset(t *testing.T) {
	svc, _ := setupTestInventoryService()
	ctx := context.Background()
	seedAsset(t, svc, "MTF-001", "Mikser", "2")
	session, _ := svc.StartSession(ctx, &dto.StartSessionRequest{Title: "Bahar"}, "stok-1")

	_, err := svc.RecordCount(ctx, session.ID, &dto.RecordCountRequest{AssetID: "asset-missing", CountedQty: dec("1")})
	if !errors.Is(err, ErrCountItemNotFound) {
		t.Errorf("期望 ErrCountItemNotFound，实际: %v", err)
	}
	if _, err := svc.GetSession(ctx, "session-missing"); !errors.Is(err, ErrCountSessionNotFound) {
		t.Errorf("期望 ErrCountSessionNotFound，实际: %v", err)
	}
}

func TestImportCounts_AfterTitleRow(t *testing.T) {
	svc, _ := setupTestInventoryService()
	ctx := context.Background()
	seedAsset(t, svc, "MTF-001", "Mikser", "2")
	seedAsset(t, svc, "MTF-002", "Fırın", "1")
	session, _ := svc.StartSession(ctx, &dto.StartSessionRequest{Title: "Bahar"}, "stok-1")

	reader := buildWorkbook(t, [][]interface{}{
		{"Bahar (v1)"},
		{"Kod", "Ad", "Kategori", "Konum", "Beklenen", "Sayılan", "Fark", "Durum", "Not"},
		{"MTF-001", "Mikser", "", "", 2, 1, "", "Arızalı", "motor yanık"},
		{"MTF-002", "Fırın", "", "", 1, "", "", "", ""},
		{"MTF-999", "Yok", "", "", 0, 3, "", "", ""},
	})

	resp, err := svc.ImportCounts(ctx, session.ID, reader)
	if err != nil {
		t.Fatalf("ImportCounts 应成功: %v", err)
	}
	if resp.Total != 2 || resp.Success != 1 || resp.Failed != 1 {
		t.Errorf("期望 total=2 success=1 failed=1（空实盘行跳过），实际=%+v", resp)
	}

	detail, _ := svc.GetSession(ctx, session.ID)
	if detail.Summary.Counted != 1 || detail.Summary.Missing != 1 {
		t.Errorf("期望 1 项已盘点且短缺，实际=%+v", detail.Summary)
	}
	if detail.Items[0].Condition != model.ConditionBroken || detail.Items[0].Note != "motor yanık" {
		t.Errorf("状况与备注应写入，实际=%+v", detail.Items[0])
	}
}

func TestExportSession(t *testing.T) {
	svc, _ := setupTestInventoryService()
	ctx := context.Background()
	seedAsset(t, svc, "MTF-002", "Fırın", "1")
	seedAsset(t, svc, "MTF-001", "Mikser", "2")
	session, _ := svc.StartSession(ctx, &dto.StartSessionRequest{Title: "Güz Sayımı"}, "stok-1")

	data, filename, err := svc.ExportSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("ExportSession 应成功: %v", err)
	}
	if filename != "sayim_Güz_Sayımı_v1.xlsx" {
		t.Errorf("文件名不符合预期: %s", filename)
	}
	rows := readWorkbook(t, data)
	if len(rows) != 4 || rows[0][0] != "Güz Sayımı (v1)" || rows[2][0] != "MTF-001" {
		t.Errorf("导出内容应含标题、表头并按编码排序: %v", rows)
	}
}

func TestImportAssets(t *testing.T) {
	svc, mocks := setupTestInventoryService()
	seedAsset(t, svc, "MTF-001", "Mikser", "2")

	reader := buildWorkbook(t, [][]interface{}{
		{"Kod", "Ad", "Kategori", "Konum", "Miktar", "Durum"},
		{"MTF-001", "Planet Mikser", "Ekipman", "Mutfak 2", 3, "İyi"},
		{"MTF-010", "Bıçak Seti", "Ekipman", "Mutfak 1", 12, ""},
		{"MTF-010", "Bıçak Seti", "", "", 1, ""},
		{"MTF-011", "", "", "", 1, ""},
		{"MTF-012", "Tencere", "", "", -2, ""},
	})

	resp, err := svc.ImportAssets(context.Background(), reader)
	if err != nil {
		t.Fatalf("ImportAssets 应成功: %v", err)
	}
	if resp.Success != 2 || resp.Failed != 3 {
		t.Errorf("期望 success=2 failed=3，实际=%+v", resp)
	}
	existing, _ := mocks.asset.GetByCode(context.Background(), "MTF-001")
	if existing.Name != "Planet Mikser" || !existing.Quantity.Equal(dec("3")) {
		t.Errorf("已有编码应被更新，实际=%+v", existing)
	}
	if len(mocks.asset.assets) != 2 {
		t.Errorf("期望共 2 个资产，实际=%d", len(mocks.asset.assets))
	}
}

func TestRecordCount_RejectsUnstorableQuantity(t *testing.T) {
	svc, _ := setupTestInventoryService()
	ctx := context.Background()
	mixer := seedAsset(t, svc, "MTF-002", "Hamur Makinesi", "1")
	session, _ := svc.StartSession(ctx, &dto.StartSessionRequest{Title: "Yaz"}, "stok-1")

	for _, qty := range []string{"1.2345", "1000000000"} {
		_, err := svc.RecordCount(ctx, session.ID, &dto.RecordCountRequest{AssetID: mixer.ID, CountedQty: dec(qty)})
		if !errors.Is(err, ErrAssetInvalidQuantity) {
			t.Errorf("数量 %s 期望 ErrAssetInvalidQuantity，实际: %v", qty, err)
		}
	}
}
