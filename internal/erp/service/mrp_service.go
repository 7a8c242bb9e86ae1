package service

import (
	"context"
	"fmt"
	"time"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/apperr"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/mirror"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MRPService 物料需求运算服务
type MRPService struct {
	repo       *repository.RequisitionRepository
	invRepo    *repository.InventoryRepository
	salesRepo  *repository.SalesRepository
	bomService *BOMService
	mirror     *mirror.Client // 可为nil，采购需求镜像推送
	logger     *zap.Logger
}

func NewMRPService(repo *repository.RequisitionRepository, invRepo *repository.InventoryRepository,
	salesRepo *repository.SalesRepository, bomService *BOMService, mc *mirror.Client, logger *zap.Logger) *MRPService {
	return &MRPService{repo: repo, invRepo: invRepo, salesRepo: salesRepo, bomService: bomService, mirror: mc, logger: logger}
}

// RunMRPRequest MRP运算入参：产品直下 或 按销售订单下达
type RunMRPRequest struct {
	ProductID    string     `json:"product_id"`
	Quantity     float64    `json:"quantity"`
	SalesOrderID string     `json:"sales_order_id"`
	RequiredBy   *time.Time `json:"required_by"`
}

// MRPResult MRP运算结果
type MRPResult struct {
	Demand       *entity.MRPDemand            `json:"demand"`
	Requirements []entity.MaterialRequisition `json:"requirements"`
	Shortages    []entity.MaterialRequisition `json:"shortages"`
}

type demandLine struct {
	productID string
	quantity  float64
}

// Run 执行MRP：BOM展开 → 合并叶子物料 → 对比可用库存 → 生成物料请购单
func (s *MRPService) Run(ctx context.Context, req *RunMRPRequest, userID string) (*MRPResult, error) {
	lines, demand, err := s.resolveDemand(req, userID)
	if err != nil {
		return nil, err
	}

	merged := map[string]*entity.MaterialRequisition{}
	var order []string
	totalCost := decimal.Zero

	for _, line := range lines {
		result, err := s.bomService.Explode(ctx, line.productID, line.quantity)
		if err != nil {
			return nil, err
		}
		totalCost = totalCost.Add(decimal.NewFromFloat(result.TotalCost))
		collectLeaves(result, merged, &order)
	}

	reqs := make([]entity.MaterialRequisition, 0, len(order))

	for _, materialID := range order {
		r := merged[materialID]
		r.RequiredBy = req.RequiredBy

		available, err := s.invRepo.GetTotalAvailable(materialID)
		if err != nil {
			return nil, fmt.Errorf("查询库存失败 %s: %w", materialID, err)
		}
		r.AvailableQty = available
		if shortage := r.RequiredQty - available; shortage > 0 {
			r.ShortageQty = shortage
			r.Status = entity.ReqStatusPending
			if r.IsCritical {
				r.Priority = entity.ReqPriorityHigh
			} else {
				r.Priority = entity.ReqPriorityNormal
			}
		} else {
			r.ShortageQty = 0
			r.Status = entity.ReqStatusFulfilled
			r.Priority = entity.ReqPriorityNormal
		}
		reqs = append(reqs, *r)
		if r.ShortageQty > 0 {
			demand.TotalShortages++
			if r.IsCritical {
				demand.CriticalShortages++
			}
		}
	}

	demand.CanProceed = demand.TotalShortages == 0
	demand.TotalItems = len(reqs)
	demand.TotalCost, _ = totalCost.Round(2).Float64()
	demand.ShortageCost, _ = sumShortageCost(reqs).Round(2).Float64()

	// 需求头与请购单行同一事务落库，失败不留孤儿需求
	if err := s.repo.SaveRun(demand, reqs); err != nil {
		return nil, fmt.Errorf("保存MRP运算结果失败: %w", err)
	}

	var shortages []entity.MaterialRequisition
	for _, r := range reqs {
		if r.ShortageQty > 0 {
			shortages = append(shortages, r)
		}
	}

	s.logger.Info("MRP运算完成",
		zap.String("run_code", demand.RunCode),
		zap.Int("total_items", demand.TotalItems),
		zap.Int("shortages", demand.TotalShortages),
		zap.Bool("can_proceed", demand.CanProceed),
	)
	return &MRPResult{Demand: demand, Requirements: reqs, Shortages: shortages}, nil
}

// resolveDemand 解析需求来源：产品直下或销售订单
func (s *MRPService) resolveDemand(req *RunMRPRequest, userID string) ([]demandLine, *entity.MRPDemand, error) {
	demand := &entity.MRPDemand{
		RunCode:    generateRunCode(),
		RequiredBy: req.RequiredBy,
		Status:     entity.DemandStatusOpen,
		CreatedBy:  userID,
	}

	if req.SalesOrderID != "" {
		so, err := s.salesRepo.GetByID(req.SalesOrderID)
		if err != nil {
			return nil, nil, apperr.NotFoundf("销售订单 %s 不存在", req.SalesOrderID)
		}
		if len(so.Items) == 0 {
			return nil, nil, apperr.Validationf("销售订单 %s 无明细", so.SOCode)
		}
		if req.RequiredBy == nil && so.DeliveryDate != nil {
			demand.RequiredBy = so.DeliveryDate
		}
		demand.SalesOrderID = so.ID
		lines := make([]demandLine, 0, len(so.Items))
		var total float64
		for _, item := range so.Items {
			lines = append(lines, demandLine{productID: item.ProductID, quantity: item.Quantity})
			total += item.Quantity
		}
		demand.ProductID = so.Items[0].ProductID
		demand.ProductCode = so.Items[0].ProductCode
		demand.Quantity = total
		return lines, demand, nil
	}

	if req.ProductID == "" {
		return nil, nil, apperr.Validationf("必须指定产品或销售订单")
	}
	if req.Quantity <= 0 {
		return nil, nil, apperr.Validationf("需求数量必须大于0: %v", req.Quantity)
	}
	product, err := s.bomService.GetProduct(req.ProductID)
	if err != nil {
		return nil, nil, apperr.NotFoundf("产品 %s 不存在", req.ProductID)
	}
	demand.ProductID = product.ID
	demand.ProductCode = product.Code
	demand.Quantity = req.Quantity
	return []demandLine{{productID: product.ID, quantity: req.Quantity}}, demand, nil
}

// collectLeaves 递归收集叶子物料并按物料ID合并
// 下料件核算对象是板材原料（需求量=张数），外购件/辅料核算自身物料
func collectLeaves(result *ExplosionResult, merged map[string]*entity.MaterialRequisition, order *[]string) {
	add := func(materialID, code, name, itemType, unit string, qty, unitCost float64, critical bool) {
		if materialID == "" || qty <= 0 {
			return
		}
		r, ok := merged[materialID]
		if !ok {
			r = &entity.MaterialRequisition{
				MaterialID:   materialID,
				MaterialCode: code,
				MaterialName: name,
				ItemType:     itemType,
				Unit:         unit,
			}
			merged[materialID] = r
			*order = append(*order, materialID)
		}
		r.RequiredQty += qty
		if unitCost > r.UnitCost {
			r.UnitCost = unitCost
		}
		r.IsCritical = r.IsCritical || critical
	}

	for _, cp := range result.CutParts {
		add(cp.SheetMaterialID, cp.MaterialCode, cp.MaterialName, cp.ItemType, "sheet", float64(cp.SheetsRequired), cp.UnitCost, cp.IsCritical)
	}
	for _, it := range result.BoughtOuts {
		add(it.MaterialID, it.MaterialCode, it.MaterialName, it.ItemType, it.Unit, it.RequiredQty, it.UnitCost, it.IsCritical)
	}
	for _, it := range result.Consumables {
		add(it.MaterialID, it.MaterialCode, it.MaterialName, it.ItemType, it.Unit, it.RequiredQty, it.UnitCost, it.IsCritical)
	}
	for _, sa := range result.SubAssemblies {
		collectLeaves(sa.Result, merged, order)
	}
}

// sumShortageCost 短缺金额 = Σ 短缺量 × 单价
func sumShortageCost(reqs []entity.MaterialRequisition) decimal.Decimal {
	total := decimal.Zero
	for _, r := range reqs {
		if r.ShortageQty <= 0 {
			continue
		}
		total = total.Add(decimal.NewFromFloat(r.ShortageQty).Mul(decimal.NewFromFloat(r.UnitCost)))
	}
	return total
}

// GetDemand 查询MRP需求及其请购单
func (s *MRPService) GetDemand(demandID string) (*MRPResult, error) {
	demand, err := s.repo.GetDemandByID(demandID)
	if err != nil {
		return nil, apperr.NotFoundf("MRP需求 %s 不存在", demandID)
	}
	reqs, err := s.repo.GetRequisitionsByDemand(demandID)
	if err != nil {
		return nil, fmt.Errorf("查询请购单失败: %w", err)
	}
	var shortages []entity.MaterialRequisition
	for _, r := range reqs {
		if r.ShortageQty > 0 {
			shortages = append(shortages, r)
		}
	}
	return &MRPResult{Demand: demand, Requirements: reqs, Shortages: shortages}, nil
}

// ListDemands 分页查询MRP需求
func (s *MRPService) ListDemands(page, size int) ([]entity.MRPDemand, int64, error) {
	return s.repo.ListDemands(page, size)
}

// GeneratePurchaseRequisitions 将需求下的PENDING短缺按物料汇总生成采购需求
// 同一物料数量求和、取最早需求日期；镜像推送失败不阻断
func (s *MRPService) GeneratePurchaseRequisitions(ctx context.Context, demandID, userID string) ([]entity.PurchaseRequisition, error) {
	demand, err := s.repo.GetDemandByID(demandID)
	if err != nil {
		return nil, apperr.NotFoundf("MRP需求 %s 不存在", demandID)
	}
	if demand.Status == entity.DemandStatusProcessed {
		return nil, apperr.Conflictf("MRP需求 %s 已生成过采购需求", demand.RunCode)
	}

	pending, err := s.repo.GetPendingRequisitions(demandID)
	if err != nil {
		return nil, fmt.Errorf("查询短缺请购单失败: %w", err)
	}
	if len(pending) == 0 {
		return nil, apperr.Validationf("需求 %s 无短缺，无需采购", demand.RunCode)
	}

	type group struct {
		pr *entity.PurchaseRequisition
	}
	groups := map[string]*group{}
	var order []string
	for _, r := range pending {
		g, ok := groups[r.MaterialID]
		if !ok {
			g = &group{pr: &entity.PurchaseRequisition{
				MaterialID:   r.MaterialID,
				MaterialCode: r.MaterialCode,
				MaterialName: r.MaterialName,
				Unit:         r.Unit,
				Priority:     r.Priority,
				RequiredDate: r.RequiredBy,
				Status:       entity.PRStatusDraft,
				Source:       "MRP",
				SourceID:     demand.ID,
				CreatedBy:    userID,
			}}
			groups[r.MaterialID] = g
			order = append(order, r.MaterialID)
		}
		g.pr.Quantity += r.ShortageQty
		if r.Priority == entity.ReqPriorityHigh {
			g.pr.Priority = entity.ReqPriorityHigh
		}
		if r.RequiredBy != nil && (g.pr.RequiredDate == nil || r.RequiredBy.Before(*g.pr.RequiredDate)) {
			g.pr.RequiredDate = r.RequiredBy
		}
	}

	prs := make([]entity.PurchaseRequisition, 0, len(order))
	for i, materialID := range order {
		pr := groups[materialID].pr
		pr.PRCode = fmt.Sprintf("PR-%s-%03d", time.Now().Format("20060102150405"), i+1)
		prs = append(prs, *pr)
	}

	// 采购需求与需求状态翻转同一事务提交，镜像推送在事务外尽力而为
	demand.Status = entity.DemandStatusProcessed
	if err := s.repo.SavePRs(demand, prs); err != nil {
		return nil, fmt.Errorf("创建采购需求失败: %w", err)
	}

	if s.mirror != nil {
		for i := range prs {
			if err := s.mirror.PushPR(ctx, &prs[i]); err != nil {
				s.logger.Warn("采购需求镜像推送失败",
					zap.String("pr_code", prs[i].PRCode),
					zap.Error(err),
				)
			}
		}
	}

	s.logger.Info("采购需求已生成",
		zap.String("run_code", demand.RunCode),
		zap.Int("count", len(prs)),
	)
	return prs, nil
}

// ListPurchaseRequisitions 分页查询采购需求
func (s *MRPService) ListPurchaseRequisitions(sourceID string, page, size int) ([]entity.PurchaseRequisition, int64, error) {
	return s.repo.ListPRs(sourceID, page, size)
}

func generateRunCode() string {
	return fmt.Sprintf("MRP-%s-%s", time.Now().Format("20060102"), uuid.New().String()[:8])
}
