package service

import (
	"testing"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
)

func TestCollectLeavesMergesByMaterial(t *testing.T) {
	// 主产品与子装配用到同一种板材，需求按物料合并
	child := &ExplosionResult{
		ProductID: "s1",
		CutParts: []ExplodedCutPart{
			{
				ExplodedItem: ExplodedItem{
					ItemType: entity.ItemTypeCutPart, MaterialCode: "Q235",
					IsCritical: true, UnitCost: 120,
				},
				SheetMaterialID: "SHEET-Q235", SheetsRequired: 2,
			},
		},
	}
	root := &ExplosionResult{
		ProductID: "p1",
		CutParts: []ExplodedCutPart{
			{
				ExplodedItem: ExplodedItem{
					ItemType: entity.ItemTypeCutPart, MaterialCode: "Q235",
					UnitCost: 110,
				},
				SheetMaterialID: "SHEET-Q235", SheetsRequired: 6,
			},
		},
		BoughtOuts: []ExplodedItem{
			{ItemType: entity.ItemTypeBoughtOut, MaterialID: "M-BOLT", RequiredQty: 100, Unit: "pcs", UnitCost: 0.8},
		},
		SubAssemblies: []ExplodedSubAssembly{
			{ChildProductID: "s1", RequiredQty: 25, Result: child},
		},
	}

	merged := map[string]*entity.MaterialRequisition{}
	var order []string
	collectLeaves(root, merged, &order)

	if len(order) != 2 {
		t.Fatalf("expected 2 merged materials, got %d: %v", len(order), order)
	}
	sheet := merged["SHEET-Q235"]
	if sheet == nil {
		t.Fatal("SHEET-Q235 missing from merged leaves")
	}
	if sheet.RequiredQty != 8 {
		t.Errorf("sheet required qty = %v, want 8 (6 + 2)", sheet.RequiredQty)
	}
	// 任一来源标关键件即整体关键
	if !sheet.IsCritical {
		t.Error("sheet should inherit critical flag from sub-assembly usage")
	}
	// 合并取最高单价
	if sheet.UnitCost != 120 {
		t.Errorf("sheet unit cost = %v, want 120", sheet.UnitCost)
	}
	if sheet.Unit != "sheet" {
		t.Errorf("sheet unit = %s, want sheet", sheet.Unit)
	}

	bolt := merged["M-BOLT"]
	if bolt == nil || bolt.RequiredQty != 100 {
		t.Errorf("bolt requisition = %+v, want qty 100", bolt)
	}
}

func TestCollectLeavesSkipsEmptyMaterial(t *testing.T) {
	root := &ExplosionResult{
		BoughtOuts: []ExplodedItem{
			{ItemType: entity.ItemTypeBoughtOut, MaterialID: "", RequiredQty: 5},
		},
	}
	merged := map[string]*entity.MaterialRequisition{}
	var order []string
	collectLeaves(root, merged, &order)
	if len(order) != 0 {
		t.Errorf("expected empty material skipped, got %v", order)
	}
}

func TestSumShortageCost(t *testing.T) {
	reqs := []entity.MaterialRequisition{
		{ShortageQty: 10, UnitCost: 2.5},
		{ShortageQty: 0, UnitCost: 100}, // 无短缺不计
		{ShortageQty: 3, UnitCost: 0.8},
	}
	got, _ := sumShortageCost(reqs).Float64()
	if got != 27.4 {
		t.Errorf("shortage cost = %v, want 27.4", got)
	}
}
