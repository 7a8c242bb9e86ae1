package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/apperr"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
)

// fakeBOMSource 内存BOM数据源，测试展开逻辑不依赖数据库
type fakeBOMSource struct {
	products map[string]*entity.Product
	items    map[string][]entity.BOMItem
	blanks   map[string]*entity.BlankSpec
}

func (f *fakeBOMSource) GetProduct(id string) (*entity.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("not found")
}

func (f *fakeBOMSource) GetBOMItems(productID string) ([]entity.BOMItem, error) {
	return f.items[productID], nil
}

func (f *fakeBOMSource) GetBlank(id string) (*entity.BlankSpec, error) {
	if b, ok := f.blanks[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("not found")
}

func strPtr(s string) *string { return &s }

func newExplosionFixture() *fakeBOMSource {
	return &fakeBOMSource{
		products: map[string]*entity.Product{
			"p1": {ID: "p1", Code: "TANK-01", Name: "储罐总成"},
			"s1": {ID: "s1", Code: "LID-01", Name: "罐盖组件"},
		},
		blanks: map[string]*entity.BlankSpec{
			"b1": {
				ID: "b1", ProductID: "p1", SubAssembly: "罐体",
				BlankWidthMM: 500, BlankLengthMM: 600, ThicknessMM: 2,
				SheetWidthMM: 1220, SheetLengthMM: 2440,
				PiecesPerSheet: 10, SheetWeightKg: 46.7, ConsumptionPct: 80,
				MaterialID: "SHEET-Q235",
			},
		},
		items: map[string][]entity.BOMItem{
			"p1": {
				{
					ID: "i1", ProductID: "p1", ItemType: entity.ItemTypeCutPart,
					BlankID: strPtr("b1"), MaterialID: "CP-BODY",
					QtyPerUnit: 2, ScrapAllowancePct: 5, UnitCost: 3.5,
					SubAssembly: "罐体",
				},
				{
					ID: "i2", ProductID: "p1", ItemType: entity.ItemTypeBoughtOut,
					MaterialID: "M-BOLT", QtyPerUnit: 4, UnitCost: 0.8,
				},
				{
					ID: "i3", ProductID: "p1", ItemType: entity.ItemTypeSubAssembly,
					ChildProductID: strPtr("s1"), QtyPerUnit: 1,
				},
			},
			"s1": {
				{
					ID: "i4", ProductID: "s1", ItemType: entity.ItemTypeConsumable,
					MaterialID: "M-PAINT", QtyPerUnit: 0.5, UnitCost: 12,
				},
			},
		},
	}
}

func TestExplodeBOM(t *testing.T) {
	src := newExplosionFixture()

	result, err := ExplodeBOM(src, "p1", 25)
	if err != nil {
		t.Fatalf("ExplodeBOM failed: %v", err)
	}

	if len(result.CutParts) != 1 {
		t.Fatalf("expected 1 cut part, got %d", len(result.CutParts))
	}
	cp := result.CutParts[0]
	if cp.TotalQty != 50 {
		t.Errorf("cut part total qty = %v, want 50", cp.TotalQty)
	}
	if cp.ScrapQty != 2.5 {
		t.Errorf("cut part scrap qty = %v, want 2.5", cp.ScrapQty)
	}
	if cp.RequiredQty != 52.5 {
		t.Errorf("cut part required qty = %v, want 52.5", cp.RequiredQty)
	}
	// ceil(52.5 / 10) = 6 张板，实际产出 60 件
	if cp.SheetsRequired != 6 {
		t.Errorf("sheets required = %d, want 6", cp.SheetsRequired)
	}
	if cp.ActualProduced != 60 {
		t.Errorf("actual produced = %v, want 60", cp.ActualProduced)
	}
	if cp.ExtraQty != 7.5 {
		t.Errorf("extra qty = %v, want 7.5", cp.ExtraQty)
	}
	if cp.SheetMaterialID != "SHEET-Q235" {
		t.Errorf("sheet material = %s, want SHEET-Q235", cp.SheetMaterialID)
	}
	// 6张 × 46.7kg × 20% = 56.04
	if cp.EstScrapWeightKg != 56.04 {
		t.Errorf("est scrap weight = %v, want 56.04", cp.EstScrapWeightKg)
	}

	if len(result.BoughtOuts) != 1 {
		t.Fatalf("expected 1 bought-out, got %d", len(result.BoughtOuts))
	}
	if got := result.BoughtOuts[0].RequiredQty; got != 100 {
		t.Errorf("bolt required qty = %v, want 100", got)
	}

	if len(result.SubAssemblies) != 1 {
		t.Fatalf("expected 1 sub-assembly, got %d", len(result.SubAssemblies))
	}
	sa := result.SubAssemblies[0]
	if sa.RequiredQty != 25 {
		t.Errorf("sub-assembly required qty = %v, want 25", sa.RequiredQty)
	}
	if len(sa.Result.Consumables) != 1 {
		t.Fatalf("expected 1 consumable in child, got %d", len(sa.Result.Consumables))
	}
	if got := sa.Result.Consumables[0].RequiredQty; got != 12.5 {
		t.Errorf("paint required qty = %v, want 12.5", got)
	}

	// 52.5×3.5 + 100×0.8 + 12.5×12 = 183.75 + 80 + 150
	if result.TotalCost != 413.75 {
		t.Errorf("total cost = %v, want 413.75", result.TotalCost)
	}
	if result.Summary.TotalItems != 3 {
		t.Errorf("summary total items = %d, want 3", result.Summary.TotalItems)
	}
	if result.Summary.TotalSheets != 6 {
		t.Errorf("summary total sheets = %d, want 6", result.Summary.TotalSheets)
	}
}

func TestExplodeBOMCycle(t *testing.T) {
	src := &fakeBOMSource{
		products: map[string]*entity.Product{
			"a": {ID: "a", Code: "A"},
			"b": {ID: "b", Code: "B"},
		},
		items: map[string][]entity.BOMItem{
			"a": {{ID: "ab", ProductID: "a", ItemType: entity.ItemTypeSubAssembly, ChildProductID: strPtr("b"), QtyPerUnit: 1}},
			"b": {{ID: "ba", ProductID: "b", ItemType: entity.ItemTypeSubAssembly, ChildProductID: strPtr("a"), QtyPerUnit: 1}},
		},
	}

	_, err := ExplodeBOM(src, "a", 1)
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	var cyclic *apperr.CyclicBOMError
	if !errors.As(err, &cyclic) {
		t.Fatalf("expected CyclicBOMError, got %T: %v", err, err)
	}
	if cyclic.ProductID != "a" {
		t.Errorf("cycle product = %s, want a", cyclic.ProductID)
	}
	if len(cyclic.Path) != 3 || cyclic.Path[0] != "a" || cyclic.Path[1] != "b" || cyclic.Path[2] != "a" {
		t.Errorf("cycle path = %v, want [a b a]", cyclic.Path)
	}
}

func TestExplodeBOMSelfReference(t *testing.T) {
	src := &fakeBOMSource{
		products: map[string]*entity.Product{"a": {ID: "a", Code: "A"}},
		items: map[string][]entity.BOMItem{
			"a": {{ID: "aa", ProductID: "a", ItemType: entity.ItemTypeSubAssembly, ChildProductID: strPtr("a"), QtyPerUnit: 1}},
		},
	}

	_, err := ExplodeBOM(src, "a", 1)
	var cyclic *apperr.CyclicBOMError
	if !errors.As(err, &cyclic) {
		t.Fatalf("expected CyclicBOMError for self reference, got %v", err)
	}
}

func TestExplodeBOMValidation(t *testing.T) {
	src := newExplosionFixture()
	src.items["p1"][0].QtyPerUnit = 0

	_, err := ExplodeBOM(src, "p1", 10)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for zero qty_per_unit, got %v", err)
	}
}

func TestExplodeBOMMissingBlank(t *testing.T) {
	src := newExplosionFixture()
	src.items["p1"][0].BlankID = nil

	_, err := ExplodeBOM(src, "p1", 10)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for cut part without blank, got %v", err)
	}
}

func TestExplodeBOMUnknownProduct(t *testing.T) {
	src := newExplosionFixture()
	_, err := ExplodeBOM(src, "missing", 1)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}
