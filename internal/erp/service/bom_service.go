package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/apperr"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/audit"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BOMSource BOM展开所需的数据访问接口
type BOMSource interface {
	GetProduct(id string) (*entity.Product, error)
	GetBOMItems(productID string) ([]entity.BOMItem, error)
	GetBlank(id string) (*entity.BlankSpec, error)
}

// BOMService BOM展开服务
type BOMService struct {
	repo     *repository.ProductRepository
	rdb      *redis.Client   // 可为nil，BOM行缓存
	archiver *audit.Archiver // 可为nil，展开结果审计归档
	logger   *zap.Logger
}

func NewBOMService(repo *repository.ProductRepository, rdb *redis.Client, archiver *audit.Archiver, logger *zap.Logger) *BOMService {
	return &BOMService{repo: repo, rdb: rdb, archiver: archiver, logger: logger}
}

const bomCacheTTL = 5 * time.Minute

// ExplodedItem 展开后的单条物料需求
type ExplodedItem struct {
	BOMItemID    string  `json:"bom_item_id"`
	ItemType     string  `json:"item_type"`
	MaterialID   string  `json:"material_id"`
	MaterialCode string  `json:"material_code"`
	MaterialName string  `json:"material_name"`
	QtyPerUnit   float64 `json:"qty_per_unit"`
	TotalQty     float64 `json:"total_qty"`    // qty_per_unit × 需求数量
	ScrapQty     float64 `json:"scrap_qty"`    // total_qty × 损耗率
	RequiredQty  float64 `json:"required_qty"` // total + scrap
	Unit         string  `json:"unit"`
	UnitCost     float64 `json:"unit_cost"`
	Cost         float64 `json:"cost"`
	IsCritical   bool    `json:"is_critical"`
	SubAssembly  string  `json:"sub_assembly"`
	StepSeq      int     `json:"step_seq"`
}

// ExplodedCutPart 下料件展开结果，含板材换算
type ExplodedCutPart struct {
	ExplodedItem
	BlankID          string  `json:"blank_id"`
	SheetMaterialID  string  `json:"sheet_material_id"`
	PiecesPerSheet   int     `json:"pieces_per_sheet"`
	SheetsRequired   int     `json:"sheets_required"`   // ceil(required / pieces_per_sheet)
	ActualProduced   float64 `json:"actual_produced"`   // sheets × pieces_per_sheet
	ExtraQty         float64 `json:"extra_qty"`         // actual - required
	EstScrapWeightKg float64 `json:"est_scrap_weight_kg"`
}

// ExplodedSubAssembly 子装配展开结果（递归）
type ExplodedSubAssembly struct {
	BOMItemID      string           `json:"bom_item_id"`
	ChildProductID string           `json:"child_product_id"`
	ProductCode    string           `json:"product_code"`
	ProductName    string           `json:"product_name"`
	SubAssembly    string           `json:"sub_assembly"`
	RequiredQty    float64          `json:"required_qty"`
	Result         *ExplosionResult `json:"result"`
}

// ExplosionSummary 展开汇总
type ExplosionSummary struct {
	TotalItems    int     `json:"total_items"`
	TotalSheets   int     `json:"total_sheets"`
	CriticalItems int     `json:"critical_items"`
	TotalCost     float64 `json:"total_cost"`
}

// ExplosionResult BOM展开结果，原样落审计日志（只追加）
type ExplosionResult struct {
	ProductID     string                `json:"product_id"`
	ProductCode   string                `json:"product_code"`
	ProductName   string                `json:"product_name"`
	Quantity      float64               `json:"quantity"`
	CutParts      []ExplodedCutPart     `json:"cut_parts"`
	BoughtOuts    []ExplodedItem        `json:"bought_outs"`
	Consumables   []ExplodedItem        `json:"consumables"`
	SubAssemblies []ExplodedSubAssembly `json:"sub_assemblies"`
	TotalCost     float64               `json:"total_cost"`
	Summary       ExplosionSummary      `json:"summary"`
	ExplodedAt    time.Time             `json:"exploded_at"`
}

// Explode 将产品×数量展开为物料需求树
func (s *BOMService) Explode(ctx context.Context, productID string, quantity float64) (*ExplosionResult, error) {
	if productID == "" {
		return nil, apperr.Validationf("产品ID不能为空")
	}
	if quantity <= 0 {
		return nil, apperr.Validationf("展开数量必须大于0: %v", quantity)
	}

	result, err := ExplodeBOM(s, productID, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("BOM展开完成",
		zap.String("product_id", productID),
		zap.Float64("quantity", quantity),
		zap.Int("total_items", result.Summary.TotalItems),
		zap.Int("total_sheets", result.Summary.TotalSheets),
		zap.Float64("total_cost", result.TotalCost),
	)

	// 审计归档尽力而为，失败只记日志
	if s.archiver != nil {
		s.archiver.ArchiveExplosion(ctx, productID, result)
	}
	return result, nil
}

// ExplodeBOM 纯展开逻辑：遍历BOM行并递归子装配，递归路径上做环检测
func ExplodeBOM(src BOMSource, productID string, quantity float64) (*ExplosionResult, error) {
	onPath := map[string]bool{productID: true}
	return explodeNode(src, productID, quantity, onPath, []string{productID})
}

func explodeNode(src BOMSource, productID string, quantity float64, onPath map[string]bool, path []string) (*ExplosionResult, error) {
	product, err := src.GetProduct(productID)
	if err != nil {
		return nil, apperr.NotFoundf("产品 %s: %v", productID, err)
	}
	items, err := src.GetBOMItems(productID)
	if err != nil {
		return nil, fmt.Errorf("读取BOM失败: %w", err)
	}

	result := &ExplosionResult{
		ProductID:   product.ID,
		ProductCode: product.Code,
		ProductName: product.Name,
		Quantity:    quantity,
		ExplodedAt:  time.Now(),
	}
	totalCost := decimal.Zero

	for _, item := range items {
		if item.QtyPerUnit <= 0 {
			return nil, apperr.Validationf("BOM行 %s 的单位用量必须大于0", item.ID)
		}

		totalQty := item.QtyPerUnit * quantity
		scrapQty := totalQty * item.ScrapAllowancePct / 100
		requiredQty := totalQty + scrapQty

		base := ExplodedItem{
			BOMItemID:    item.ID,
			ItemType:     item.ItemType,
			MaterialID:   item.MaterialID,
			MaterialCode: item.MaterialCode,
			MaterialName: item.MaterialName,
			QtyPerUnit:   item.QtyPerUnit,
			TotalQty:     totalQty,
			ScrapQty:     scrapQty,
			RequiredQty:  requiredQty,
			Unit:         item.Unit,
			UnitCost:     item.UnitCost,
			IsCritical:   item.IsCritical,
			SubAssembly:  item.SubAssembly,
			StepSeq:      item.StepSeq,
		}
		cost := decimal.NewFromFloat(requiredQty).Mul(decimal.NewFromFloat(item.UnitCost)).Round(2)
		base.Cost, _ = cost.Float64()

		switch item.ItemType {
		case entity.ItemTypeCutPart:
			if item.BlankID == nil {
				return nil, apperr.Validationf("下料件BOM行 %s 缺少下料规格", item.ID)
			}
			blank, err := src.GetBlank(*item.BlankID)
			if err != nil {
				return nil, apperr.NotFoundf("下料规格 %s: %v", *item.BlankID, err)
			}
			cp := ExplodedCutPart{
				ExplodedItem:    base,
				BlankID:         blank.ID,
				SheetMaterialID: blank.MaterialID,
				PiecesPerSheet:  blank.PiecesPerSheet,
			}
			if blank.PiecesPerSheet > 0 {
				cp.SheetsRequired = int(math.Ceil(requiredQty / float64(blank.PiecesPerSheet)))
				cp.ActualProduced = float64(cp.SheetsRequired * blank.PiecesPerSheet)
				cp.ExtraQty = cp.ActualProduced - requiredQty
			}
			if blank.ConsumptionPct > 0 && blank.SheetWeightKg > 0 {
				w := decimal.NewFromFloat(float64(cp.SheetsRequired)).
					Mul(decimal.NewFromFloat(blank.SheetWeightKg)).
					Mul(decimal.NewFromFloat(100 - blank.ConsumptionPct)).
					Div(decimal.NewFromInt(100)).Round(2)
				cp.EstScrapWeightKg, _ = w.Float64()
			}
			result.CutParts = append(result.CutParts, cp)
			totalCost = totalCost.Add(cost)

		case entity.ItemTypeBoughtOut:
			result.BoughtOuts = append(result.BoughtOuts, base)
			totalCost = totalCost.Add(cost)

		case entity.ItemTypeConsumable:
			result.Consumables = append(result.Consumables, base)
			totalCost = totalCost.Add(cost)

		case entity.ItemTypeSubAssembly:
			if item.ChildProductID == nil {
				return nil, apperr.Validationf("子装配BOM行 %s 未引用子产品", item.ID)
			}
			childID := *item.ChildProductID
			if onPath[childID] {
				return nil, &apperr.CyclicBOMError{ProductID: childID, Path: append(append([]string{}, path...), childID)}
			}
			onPath[childID] = true
			childResult, err := explodeNode(src, childID, requiredQty, onPath, append(path, childID))
			delete(onPath, childID)
			if err != nil {
				return nil, err
			}
			result.SubAssemblies = append(result.SubAssemblies, ExplodedSubAssembly{
				BOMItemID:      item.ID,
				ChildProductID: childID,
				ProductCode:    childResult.ProductCode,
				ProductName:    childResult.ProductName,
				SubAssembly:    item.SubAssembly,
				RequiredQty:    requiredQty,
				Result:         childResult,
			})
			totalCost = totalCost.Add(decimal.NewFromFloat(childResult.TotalCost))

		default:
			return nil, apperr.Validationf("未知的BOM行类型: %s", item.ItemType)
		}
	}

	result.TotalCost, _ = totalCost.Round(2).Float64()
	result.Summary = summarize(result)
	return result, nil
}

func summarize(r *ExplosionResult) ExplosionSummary {
	sum := ExplosionSummary{TotalCost: r.TotalCost}
	for _, cp := range r.CutParts {
		sum.TotalItems++
		sum.TotalSheets += cp.SheetsRequired
		if cp.IsCritical {
			sum.CriticalItems++
		}
	}
	for _, it := range r.BoughtOuts {
		sum.TotalItems++
		if it.IsCritical {
			sum.CriticalItems++
		}
	}
	for _, it := range r.Consumables {
		sum.TotalItems++
		if it.IsCritical {
			sum.CriticalItems++
		}
	}
	for _, sa := range r.SubAssemblies {
		child := summarize(sa.Result)
		sum.TotalItems += child.TotalItems
		sum.TotalSheets += child.TotalSheets
		sum.CriticalItems += child.CriticalItems
	}
	return sum
}

// ===== BOMSource 实现（仓库 + 可选redis缓存） =====

func (s *BOMService) GetProduct(id string) (*entity.Product, error) {
	return s.repo.GetByID(id)
}

func (s *BOMService) GetBOMItems(productID string) ([]entity.BOMItem, error) {
	key := "bom:items:" + productID
	if s.rdb != nil {
		if raw, err := s.rdb.Get(context.Background(), key).Result(); err == nil {
			var items []entity.BOMItem
			if json.Unmarshal([]byte(raw), &items) == nil {
				return items, nil
			}
		}
	}
	items, err := s.repo.GetBOMItems(productID)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if raw, err := json.Marshal(items); err == nil {
			s.rdb.Set(context.Background(), key, raw, bomCacheTTL)
		}
	}
	return items, nil
}

func (s *BOMService) GetBlank(id string) (*entity.BlankSpec, error) {
	return s.repo.GetBlankByID(id)
}

// clearBOMCache 导入后失效产品的BOM行缓存
func (s *BOMService) clearBOMCache(ctx context.Context, productID string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, "bom:items:"+productID)
	}
}

// GetBlanksWithQty 返回产品全部下料规格及匹配到的BOM单位用量
// 匹配规则：子装配名称完全一致优先，否则前缀匹配
func (s *BOMService) GetBlanksWithQty(productID string) ([]BlankUsage, error) {
	blanks, err := s.repo.GetBlankSpecs(productID)
	if err != nil {
		return nil, fmt.Errorf("读取下料规格失败: %w", err)
	}
	items, err := s.GetBOMItems(productID)
	if err != nil {
		return nil, fmt.Errorf("读取BOM失败: %w", err)
	}
	var usages []BlankUsage
	for _, b := range blanks {
		if item, ok := matchBOMItem(items, b.SubAssembly); ok {
			usages = append(usages, BlankUsage{
				Blank:       b,
				QtyPerUnit:  item.QtyPerUnit,
				SubAssembly: b.SubAssembly,
			})
		}
	}
	return usages, nil
}

func matchBOMItem(items []entity.BOMItem, subAssembly string) (entity.BOMItem, bool) {
	for _, it := range items {
		if it.ItemType == entity.ItemTypeCutPart && it.SubAssembly == subAssembly {
			return it, true
		}
	}
	for _, it := range items {
		if it.ItemType != entity.ItemTypeCutPart {
			continue
		}
		if hasPrefixFold(it.SubAssembly, subAssembly) || hasPrefixFold(subAssembly, it.SubAssembly) {
			return it, true
		}
	}
	return entity.BOMItem{}, false
}

func hasPrefixFold(s, prefix string) bool {
	if prefix == "" || len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}
