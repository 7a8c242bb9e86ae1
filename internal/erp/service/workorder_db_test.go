package service

import (
	"errors"
	"testing"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/apperr"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewServices(repos, nil, nil, nil, zap.NewNop()), db
}

// seedTankProduct 储罐产品：一条下料件BOM + 对应下料规格
func seedTankProduct(t *testing.T, db *gorm.DB) *entity.Product {
	t.Helper()
	p := testutil.SeedProduct(t, db, "TANK-01", "储罐总成")
	blank := testutil.SeedBlank(t, db, p.ID, "罐体", "SHEET-Q235", 10)
	testutil.SeedBOMItem(t, db, &entity.BOMItem{
		ProductID:         p.ID,
		ItemType:          entity.ItemTypeCutPart,
		BlankID:           &blank.ID,
		MaterialID:        "CP-BODY",
		MaterialCode:      "CP-BODY",
		QtyPerUnit:        2,
		ScrapAllowancePct: 5,
		UnitCost:          3.5,
		SubAssembly:       "罐体",
	})
	return p
}

func TestWorkOrderLifecycle(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)

	master, err := services.WorkOrder.CreateMaster(&CreateMasterRequest{
		ProductID: p.ID,
		Quantity:  25,
	}, "tester")
	if err != nil {
		t.Fatalf("CreateMaster failed: %v", err)
	}
	if master.Status != entity.WOStatusPlanned {
		t.Errorf("master status = %s, want PLANNED", master.Status)
	}
	if len(master.Materials) != 1 {
		t.Fatalf("master materials = %d, want 1", len(master.Materials))
	}
	// 2 × 25 × 1.05
	if got := master.Materials[0].RequiredQty; got != 52.5 {
		t.Errorf("material required qty = %v, want 52.5", got)
	}

	// 主工单不允许直接完工
	if _, err := services.WorkOrder.UpdateStatus(master.ID, entity.WOStatusCompleted, "tester"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("PLANNED -> COMPLETED should be rejected, got %v", err)
	}

	cutting, err := services.WorkOrder.CreateChild(&CreateChildRequest{
		ParentWOID:    master.ID,
		OperationType: entity.OpCutting,
	}, "tester")
	if err != nil {
		t.Fatalf("CreateChild CUTTING failed: %v", err)
	}
	if cutting.Quantity != 25 {
		t.Errorf("child quantity = %v, want inherited 25", cutting.Quantity)
	}
	forming, err := services.WorkOrder.CreateChild(&CreateChildRequest{
		ParentWOID:    master.ID,
		OperationType: entity.OpForming,
	}, "tester")
	if err != nil {
		t.Fatalf("CreateChild FORMING failed: %v", err)
	}

	// 下料未完工，成型不能开工
	dep, err := services.WorkOrder.CheckDependencies(forming.ID)
	if err != nil {
		t.Fatalf("CheckDependencies failed: %v", err)
	}
	if dep.CanStart {
		t.Error("FORMING should be blocked before CUTTING completes")
	}
	if _, err := services.WorkOrder.UpdateStatus(forming.ID, entity.WOStatusInProgress, "tester"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("starting blocked FORMING should conflict, got %v", err)
	}

	// 未报工不能完工
	if _, err := services.WorkOrder.RecordOutput(cutting.ID, &RecordOutputRequest{Quantity: 25}, "tester"); err != nil {
		t.Fatalf("RecordOutput failed: %v", err)
	}
	result, err := services.WorkOrder.UpdateStatus(cutting.ID, entity.WOStatusCompleted, "tester")
	if err != nil {
		t.Fatalf("complete CUTTING failed: %v", err)
	}
	if result.MasterCompleted {
		t.Error("master must not complete while FORMING is open")
	}
	// 下料完工顺带拉起成型
	if len(result.Triggered) != 1 || result.Triggered[0].OperationType != entity.OpForming {
		t.Fatalf("triggered = %+v, want FORMING", result.Triggered)
	}
	if result.Triggered[0].Status != entity.WOStatusInProgress {
		t.Errorf("triggered FORMING status = %s, want IN_PROGRESS", result.Triggered[0].Status)
	}

	// 报工推动了主工单进入执行中
	parent, _ := services.WorkOrder.Get(master.ID)
	if parent.Status != entity.WOStatusInProgress {
		t.Errorf("master status = %s, want IN_PROGRESS", parent.Status)
	}

	dep, _ = services.WorkOrder.CheckDependencies(forming.ID)
	if !dep.CanStart {
		t.Errorf("FORMING dependencies should be met after CUTTING, missing %v", dep.MissingOperations)
	}

	// 无报工完工被拒
	if _, err := services.WorkOrder.UpdateStatus(forming.ID, entity.WOStatusCompleted, "tester"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("completing FORMING without output should fail validation, got %v", err)
	}

	if _, err := services.WorkOrder.RecordOutput(forming.ID, &RecordOutputRequest{Quantity: 25}, "tester"); err != nil {
		t.Fatalf("RecordOutput FORMING failed: %v", err)
	}
	result, err = services.WorkOrder.UpdateStatus(forming.ID, entity.WOStatusCompleted, "tester")
	if err != nil {
		t.Fatalf("complete FORMING failed: %v", err)
	}
	if !result.MasterCompleted {
		t.Error("master should cascade to COMPLETED after all children complete")
	}

	parent, _ = services.WorkOrder.Get(master.ID)
	if parent.Status != entity.WOStatusCompleted {
		t.Errorf("master status = %s, want COMPLETED", parent.Status)
	}
	if parent.CompletedQty != parent.Quantity {
		t.Errorf("master completed qty = %v, want %v", parent.CompletedQty, parent.Quantity)
	}

	// 终态不可再流转
	if _, err := services.WorkOrder.UpdateStatus(cutting.ID, entity.WOStatusInProgress, "tester"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("COMPLETED -> IN_PROGRESS should conflict, got %v", err)
	}
}

func TestQATransferOnMasterCompletion(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)

	// 成品库预置产出，完工后移入质检库位
	fg := testutil.SeedLocation(t, db, entity.LocationCodeFG, entity.LocationKindFG)
	testutil.SeedInventory(t, db, p.ID, fg.ID, 30)

	master, err := services.WorkOrder.CreateMaster(&CreateMasterRequest{ProductID: p.ID, Quantity: 25}, "tester")
	if err != nil {
		t.Fatalf("CreateMaster failed: %v", err)
	}
	cutting, err := services.WorkOrder.CreateChild(&CreateChildRequest{ParentWOID: master.ID, OperationType: entity.OpCutting}, "tester")
	if err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}
	if _, err := services.WorkOrder.RecordOutput(cutting.ID, &RecordOutputRequest{Quantity: 25}, "tester"); err != nil {
		t.Fatalf("RecordOutput failed: %v", err)
	}
	result, err := services.WorkOrder.UpdateStatus(cutting.ID, entity.WOStatusCompleted, "tester")
	if err != nil {
		t.Fatalf("complete CUTTING failed: %v", err)
	}
	if !result.MasterCompleted {
		t.Fatal("single completed child should cascade master completion")
	}
	if result.QATransfer == nil {
		t.Fatal("expected QA transfer with FG stock available")
	}
	if result.QATransfer.Quantity != 25 {
		t.Errorf("QA transfer qty = %v, want 25", result.QATransfer.Quantity)
	}

	// 成品库剩 5，质检库位 25
	repos := repository.NewRepositories(db)
	fgInv, err := repos.Inventory.GetByMaterialAndLocation(p.ID, fg.ID)
	if err != nil {
		t.Fatalf("read FG inventory failed: %v", err)
	}
	if fgInv.AvailableQty != 5 {
		t.Errorf("FG available = %v, want 5", fgInv.AvailableQty)
	}
}

func TestQATransferFailureKeepsCompletion(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)

	// 成品库无库存，移库失败但完工状态保留
	master, _ := services.WorkOrder.CreateMaster(&CreateMasterRequest{ProductID: p.ID, Quantity: 25}, "tester")
	cutting, _ := services.WorkOrder.CreateChild(&CreateChildRequest{ParentWOID: master.ID, OperationType: entity.OpCutting}, "tester")
	services.WorkOrder.RecordOutput(cutting.ID, &RecordOutputRequest{Quantity: 25}, "tester")

	result, err := services.WorkOrder.UpdateStatus(cutting.ID, entity.WOStatusCompleted, "tester")
	if err != nil {
		t.Fatalf("complete CUTTING failed: %v", err)
	}
	if !result.MasterCompleted {
		t.Error("master should complete even when QA transfer fails")
	}
	if result.QATransfer != nil {
		t.Error("QA transfer should be nil without FG stock")
	}
	parent, _ := services.WorkOrder.Get(master.ID)
	if parent.Status != entity.WOStatusCompleted {
		t.Errorf("master status = %s, want COMPLETED despite transfer failure", parent.Status)
	}
}

func TestMasterManualCompletionGuard(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)
	repos := repository.NewRepositories(db)

	// 无子工单的主工单不能完工
	lone, err := services.WorkOrder.CreateMaster(&CreateMasterRequest{ProductID: p.ID, Quantity: 10}, "tester")
	if err != nil {
		t.Fatalf("CreateMaster failed: %v", err)
	}
	wo, _ := repos.WorkOrder.GetByID(lone.ID)
	wo.Status = entity.WOStatusInProgress
	if err := repos.WorkOrder.UpdateStatus(wo); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if _, err := services.WorkOrder.UpdateStatus(lone.ID, entity.WOStatusCompleted, "tester"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("master without children should not complete, got %v", err)
	}

	// 子工单未完工时主工单不能手工完工
	master, _ := services.WorkOrder.CreateMaster(&CreateMasterRequest{ProductID: p.ID, Quantity: 25}, "tester")
	cutting, _ := services.WorkOrder.CreateChild(&CreateChildRequest{ParentWOID: master.ID, OperationType: entity.OpCutting}, "tester")
	wo, _ = repos.WorkOrder.GetByID(master.ID)
	wo.Status = entity.WOStatusInProgress
	if err := repos.WorkOrder.UpdateStatus(wo); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if _, err := services.WorkOrder.UpdateStatus(master.ID, entity.WOStatusCompleted, "tester"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("master with open child should not complete, got %v", err)
	}
	got, _ := services.WorkOrder.Get(master.ID)
	if got.Status != entity.WOStatusInProgress {
		t.Errorf("master status = %s, want unchanged IN_PROGRESS", got.Status)
	}

	// 子工单全部完工后手工完工放行
	cw, _ := repos.WorkOrder.GetByID(cutting.ID)
	cw.CompletedQty = 25
	if err := repos.WorkOrder.Update(cw); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	cw.Status = entity.WOStatusCompleted
	if err := repos.WorkOrder.UpdateStatus(cw); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	result, err := services.WorkOrder.UpdateStatus(master.ID, entity.WOStatusCompleted, "tester")
	if err != nil {
		t.Fatalf("manual master completion failed: %v", err)
	}
	if !result.MasterCompleted {
		t.Error("manual completion should report master as completed")
	}
	if result.WorkOrder.Status != entity.WOStatusCompleted || result.WorkOrder.CompletedQty != 25 {
		t.Errorf("master = %s/%v, want COMPLETED with qty 25", result.WorkOrder.Status, result.WorkOrder.CompletedQty)
	}
}

func TestRecordOutputHonorsDependencies(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)

	master, _ := services.WorkOrder.CreateMaster(&CreateMasterRequest{ProductID: p.ID, Quantity: 25}, "tester")
	services.WorkOrder.CreateChild(&CreateChildRequest{ParentWOID: master.ID, OperationType: entity.OpCutting}, "tester")
	forming, err := services.WorkOrder.CreateChild(&CreateChildRequest{ParentWOID: master.ID, OperationType: entity.OpForming}, "tester")
	if err != nil {
		t.Fatalf("CreateChild FORMING failed: %v", err)
	}

	// 下料未完工，成型不能借报工开工
	if _, err := services.WorkOrder.RecordOutput(forming.ID, &RecordOutputRequest{Quantity: 5}, "tester"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("output on blocked FORMING should conflict, got %v", err)
	}
	got, _ := services.WorkOrder.Get(forming.ID)
	if got.Status != entity.WOStatusPlanned || got.CompletedQty != 0 {
		t.Errorf("blocked FORMING = %s/%v, want PLANNED with no output", got.Status, got.CompletedQty)
	}
}

func TestScrapGenerationIdempotent(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)
	repos := repository.NewRepositories(db)

	master, _ := services.WorkOrder.CreateMaster(&CreateMasterRequest{ProductID: p.ID, Quantity: 25}, "tester")
	cutting, _ := services.WorkOrder.CreateChild(&CreateChildRequest{ParentWOID: master.ID, OperationType: entity.OpCutting}, "tester")

	// 绕过服务层直接置完工，避免异步废料与本测试竞争
	wo, _ := repos.WorkOrder.GetByID(cutting.ID)
	wo.CompletedQty = 25
	if err := repos.WorkOrder.Update(wo); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	wo.Status = entity.WOStatusCompleted
	if err := repos.WorkOrder.UpdateStatus(wo); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	if err := services.Scrap.ProcessCuttingCompletion(cutting.ID); err != nil {
		t.Fatalf("first scrap generation failed: %v", err)
	}
	if err := services.Scrap.ProcessCuttingCompletion(cutting.ID); err != nil {
		t.Fatalf("second scrap generation should be a no-op, got %v", err)
	}

	records, err := services.Scrap.ListByWorkOrder(cutting.ID)
	if err != nil {
		t.Fatalf("ListByWorkOrder failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("scrap records = %d, want exactly 1", len(records))
	}
	rec := records[0]
	// ceil(25×2/10) = 5 张 × 46.7 × 20% = 46.7kg
	if rec.WeightKg != 46.7 {
		t.Errorf("scrap weight = %v, want 46.7", rec.WeightKg)
	}
	if rec.SheetCount != 5 {
		t.Errorf("scrap sheets = %d, want 5", rec.SheetCount)
	}
	if rec.MaterialID != "SHEET-Q235" {
		t.Errorf("scrap material = %s, want SHEET-Q235", rec.MaterialID)
	}
	if rec.Status != entity.ScrapStatusAvailable {
		t.Errorf("scrap status = %s, want AVAILABLE", rec.Status)
	}
	if rec.Origin == nil || rec.Origin.SheetsUsed != 5 {
		t.Errorf("scrap origin = %+v, want sheets_used 5", rec.Origin)
	}
}

func TestScrapRegenerationAfterDeletion(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)
	repos := repository.NewRepositories(db)

	master, _ := services.WorkOrder.CreateMaster(&CreateMasterRequest{ProductID: p.ID, Quantity: 25}, "tester")
	cutting, _ := services.WorkOrder.CreateChild(&CreateChildRequest{ParentWOID: master.ID, OperationType: entity.OpCutting}, "tester")
	wo, _ := repos.WorkOrder.GetByID(cutting.ID)
	wo.CompletedQty = 25
	if err := repos.WorkOrder.Update(wo); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	wo.Status = entity.WOStatusCompleted
	if err := repos.WorkOrder.UpdateStatus(wo); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if err := services.Scrap.ProcessCuttingCompletion(cutting.ID); err != nil {
		t.Fatalf("scrap generation failed: %v", err)
	}

	// 废料记录是硬删除，删除后不残留唯一索引占位，可以再生成
	if err := db.Where("reference_wo_id = ?", cutting.ID).Delete(&entity.ScrapRecord{}).Error; err != nil {
		t.Fatalf("delete scrap records failed: %v", err)
	}
	if err := services.Scrap.ProcessCuttingCompletion(cutting.ID); err != nil {
		t.Fatalf("regeneration after deletion failed: %v", err)
	}
	records, err := services.Scrap.ListByWorkOrder(cutting.ID)
	if err != nil {
		t.Fatalf("ListByWorkOrder failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("scrap records after regeneration = %d, want 1", len(records))
	}
}

func TestDeleteCascade(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)

	master, _ := services.WorkOrder.CreateMaster(&CreateMasterRequest{ProductID: p.ID, Quantity: 10}, "tester")
	services.WorkOrder.CreateChild(&CreateChildRequest{ParentWOID: master.ID, OperationType: entity.OpCutting}, "tester")
	services.WorkOrder.CreateChild(&CreateChildRequest{ParentWOID: master.ID, OperationType: entity.OpForming}, "tester")

	if err := services.WorkOrder.Delete(master.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := services.WorkOrder.Get(master.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted master should be gone, got %v", err)
	}

	var count int64
	db.Model(&entity.WorkOrder{}).Where("parent_wo_id = ? AND deleted_at IS NULL", master.ID).Count(&count)
	if count != 0 {
		t.Errorf("children remaining after cascade delete = %d, want 0", count)
	}
}

func TestIssueMaterialsDeductsStock(t *testing.T) {
	services, db := newTestServices(t)
	p := seedTankProduct(t, db)

	loc := testutil.SeedLocation(t, db, "RM-01", entity.LocationKindRaw)
	testutil.SeedInventory(t, db, "CP-BODY", loc.ID, 100)

	master, _ := services.WorkOrder.CreateMaster(&CreateMasterRequest{ProductID: p.ID, Quantity: 25}, "tester")

	req := &IssueMaterialsRequest{LocationCode: "RM-01"}
	req.Items = append(req.Items, struct {
		MaterialID string  `json:"material_id" binding:"required"`
		Quantity   float64 `json:"quantity" binding:"required"`
	}{MaterialID: "CP-BODY", Quantity: 52.5})

	wo, err := services.WorkOrder.IssueMaterials(master.ID, req, "tester")
	if err != nil {
		t.Fatalf("IssueMaterials failed: %v", err)
	}
	if wo.Status != entity.WOStatusInProgress {
		t.Errorf("work order status = %s, want IN_PROGRESS after first issue", wo.Status)
	}
	if len(wo.Materials) != 1 || wo.Materials[0].IssuedQty != 52.5 {
		t.Errorf("issued qty = %+v, want 52.5", wo.Materials)
	}

	available, _ := services.Inventory.GetAvailable("CP-BODY")
	if available != 47.5 {
		t.Errorf("remaining available = %v, want 47.5", available)
	}

	// 再次超量发料触发条件扣减失败
	req2 := &IssueMaterialsRequest{LocationCode: "RM-01"}
	req2.Items = append(req2.Items, struct {
		MaterialID string  `json:"material_id" binding:"required"`
		Quantity   float64 `json:"quantity" binding:"required"`
	}{MaterialID: "CP-BODY", Quantity: 60})
	if _, err := services.WorkOrder.IssueMaterials(master.ID, req2, "tester"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("over-issue should conflict, got %v", err)
	}
}
