package service

import (
	"context"
	"errors"
	"testing"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/apperr"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/testutil"
	"github.com/google/uuid"
)

func TestMRPRunWithShortages(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)
	// 关键外购件：每台4个，库存只有40
	testutil.SeedBOMItem(t, db, &entity.BOMItem{
		ProductID:    p.ID,
		ItemType:     entity.ItemTypeBoughtOut,
		MaterialID:   "M-BOLT",
		MaterialCode: "M-BOLT",
		MaterialName: "高强螺栓",
		QtyPerUnit:   4,
		UnitCost:     0.8,
		IsCritical:   true,
	})
	loc := testutil.SeedLocation(t, db, "RM-01", entity.LocationKindRaw)
	testutil.SeedInventory(t, db, "M-BOLT", loc.ID, 40)

	result, err := services.MRP.Run(context.Background(), &RunMRPRequest{
		ProductID: p.ID,
		Quantity:  25,
	}, "tester")
	if err != nil {
		t.Fatalf("MRP run failed: %v", err)
	}
	if result.Demand.CanProceed {
		t.Error("demand with shortages must not proceed")
	}
	if result.Demand.TotalShortages != 2 {
		t.Errorf("total shortages = %d, want 2", result.Demand.TotalShortages)
	}
	// 螺栓是关键件，板材不是
	if result.Demand.CriticalShortages != 1 {
		t.Errorf("critical shortages = %d, want 1", result.Demand.CriticalShortages)
	}

	byMaterial := map[string]entity.MaterialRequisition{}
	for _, r := range result.Requirements {
		byMaterial[r.MaterialID] = r
	}

	// 下料件折算为板材张数需求: ceil(52.5/10) = 6
	sheet, ok := byMaterial["SHEET-Q235"]
	if !ok {
		t.Fatal("missing SHEET-Q235 requisition")
	}
	if sheet.RequiredQty != 6 || sheet.Unit != "sheet" {
		t.Errorf("sheet requisition = %v %s, want 6 sheet", sheet.RequiredQty, sheet.Unit)
	}
	if sheet.ShortageQty != 6 || sheet.Status != entity.ReqStatusPending {
		t.Errorf("sheet shortage = %v status %s, want 6 PENDING", sheet.ShortageQty, sheet.Status)
	}

	bolt, ok := byMaterial["M-BOLT"]
	if !ok {
		t.Fatal("missing M-BOLT requisition")
	}
	if bolt.RequiredQty != 100 || bolt.AvailableQty != 40 || bolt.ShortageQty != 60 {
		t.Errorf("bolt requisition = %+v, want required 100 available 40 shortage 60", bolt)
	}
	// 关键件短缺提升优先级
	if bolt.Priority != entity.ReqPriorityHigh {
		t.Errorf("bolt priority = %s, want HIGH", bolt.Priority)
	}
	// 6张 × 3.5 + 60个 × 0.8
	if result.Demand.ShortageCost != 69 {
		t.Errorf("shortage cost = %v, want 69", result.Demand.ShortageCost)
	}
}

func TestMRPRunFullyCovered(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)
	loc := testutil.SeedLocation(t, db, "RM-01", entity.LocationKindRaw)
	testutil.SeedInventory(t, db, "SHEET-Q235", loc.ID, 20)

	result, err := services.MRP.Run(context.Background(), &RunMRPRequest{
		ProductID: p.ID,
		Quantity:  25,
	}, "tester")
	if err != nil {
		t.Fatalf("MRP run failed: %v", err)
	}
	if !result.Demand.CanProceed {
		t.Error("fully covered demand should proceed")
	}
	if result.Demand.TotalShortages != 0 {
		t.Errorf("total shortages = %d, want 0", result.Demand.TotalShortages)
	}
	for _, r := range result.Requirements {
		if r.Status != entity.ReqStatusFulfilled {
			t.Errorf("requisition %s status = %s, want FULFILLED", r.MaterialID, r.Status)
		}
	}

	// 无短缺不生成采购需求
	if _, err := services.MRP.GeneratePurchaseRequisitions(context.Background(), result.Demand.ID, "tester"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("PR generation without shortages should fail validation, got %v", err)
	}
}

func TestSaveRunRollsBackDemand(t *testing.T) {
	_, db := newTestServices(t)
	repos := repository.NewRepositories(db)

	// 重复主键让请购单批量插入失败，需求头必须一并回滚
	dup := uuid.NewString()
	demand := &entity.MRPDemand{
		RunCode:   "MRP-ATOMIC-1",
		ProductID: uuid.NewString(),
		Quantity:  1,
		Status:    entity.DemandStatusOpen,
		CreatedBy: "tester",
	}
	reqs := []entity.MaterialRequisition{
		{ID: dup, MaterialID: "M-A", RequiredQty: 1, Unit: "pcs", Priority: entity.ReqPriorityNormal, Status: entity.ReqStatusPending},
		{ID: dup, MaterialID: "M-B", RequiredQty: 1, Unit: "pcs", Priority: entity.ReqPriorityNormal, Status: entity.ReqStatusPending},
	}
	if err := repos.Requisition.SaveRun(demand, reqs); err == nil {
		t.Fatal("duplicate requisition ids should fail the insert")
	}
	var count int64
	db.Model(&entity.MRPDemand{}).Where("run_code = ?", "MRP-ATOMIC-1").Count(&count)
	if count != 0 {
		t.Errorf("demand rows after failed run = %d, want 0", count)
	}
}

func TestSavePRsRollsBackOnFailure(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)
	repos := repository.NewRepositories(db)

	result, err := services.MRP.Run(context.Background(), &RunMRPRequest{ProductID: p.ID, Quantity: 25}, "tester")
	if err != nil {
		t.Fatalf("MRP run failed: %v", err)
	}

	// 重复PR编号让插入失败，需求状态不得翻成已处理
	demand := result.Demand
	demand.Status = entity.DemandStatusProcessed
	prs := []entity.PurchaseRequisition{
		{PRCode: "PR-DUP", MaterialID: "SHEET-Q235", Quantity: 6, Unit: "sheet", Priority: entity.ReqPriorityNormal, Status: entity.PRStatusDraft, Source: "MRP", SourceID: demand.ID, CreatedBy: "tester"},
		{PRCode: "PR-DUP", MaterialID: "M-OTHER", Quantity: 1, Unit: "pcs", Priority: entity.ReqPriorityNormal, Status: entity.PRStatusDraft, Source: "MRP", SourceID: demand.ID, CreatedBy: "tester"},
	}
	if err := repos.Requisition.SavePRs(demand, prs); err == nil {
		t.Fatal("duplicate PR codes should fail the insert")
	}

	fresh, err := repos.Requisition.GetDemandByID(demand.ID)
	if err != nil {
		t.Fatalf("GetDemandByID failed: %v", err)
	}
	if fresh.Status != entity.DemandStatusOpen {
		t.Errorf("demand status after failed PR save = %s, want OPEN", fresh.Status)
	}
	var count int64
	db.Model(&entity.PurchaseRequisition{}).Where("source_id = ?", demand.ID).Count(&count)
	if count != 0 {
		t.Errorf("PR rows after rollback = %d, want 0", count)
	}
}

func TestGeneratePurchaseRequisitions(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)
	testutil.SeedBOMItem(t, db, &entity.BOMItem{
		ProductID:    p.ID,
		ItemType:     entity.ItemTypeBoughtOut,
		MaterialID:   "M-BOLT",
		MaterialCode: "M-BOLT",
		QtyPerUnit:   4,
		UnitCost:     0.8,
		IsCritical:   true,
	})

	result, err := services.MRP.Run(context.Background(), &RunMRPRequest{ProductID: p.ID, Quantity: 25}, "tester")
	if err != nil {
		t.Fatalf("MRP run failed: %v", err)
	}

	prs, err := services.MRP.GeneratePurchaseRequisitions(context.Background(), result.Demand.ID, "tester")
	if err != nil {
		t.Fatalf("GeneratePurchaseRequisitions failed: %v", err)
	}
	if len(prs) != 2 {
		t.Fatalf("generated PRs = %d, want 2", len(prs))
	}
	byMaterial := map[string]entity.PurchaseRequisition{}
	for _, pr := range prs {
		if pr.PRCode == "" {
			t.Error("PR code must be generated")
		}
		if pr.Source != "MRP" || pr.SourceID != result.Demand.ID {
			t.Errorf("PR source = %s/%s, want MRP/%s", pr.Source, pr.SourceID, result.Demand.ID)
		}
		byMaterial[pr.MaterialID] = pr
	}
	if byMaterial["M-BOLT"].Quantity != 100 || byMaterial["M-BOLT"].Priority != entity.ReqPriorityHigh {
		t.Errorf("bolt PR = %+v, want qty 100 HIGH", byMaterial["M-BOLT"])
	}
	if byMaterial["SHEET-Q235"].Quantity != 6 {
		t.Errorf("sheet PR qty = %v, want 6", byMaterial["SHEET-Q235"].Quantity)
	}

	// 已处理的需求不允许重复生成
	demand, err := services.MRP.GetDemand(result.Demand.ID)
	if err != nil {
		t.Fatalf("GetDemand failed: %v", err)
	}
	if demand.Demand.Status != entity.DemandStatusProcessed {
		t.Errorf("demand status = %s, want PROCESSED", demand.Demand.Status)
	}
	if _, err := services.MRP.GeneratePurchaseRequisitions(context.Background(), result.Demand.ID, "tester"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("repeat PR generation should conflict, got %v", err)
	}

	listed, total, err := services.MRP.ListPurchaseRequisitions(result.Demand.ID, 1, 20)
	if err != nil {
		t.Fatalf("ListPurchaseRequisitions failed: %v", err)
	}
	if total != 2 || len(listed) != 2 {
		t.Errorf("listed PRs = %d (total %d), want 2", len(listed), total)
	}
}
