package service

import (
	"fmt"
	"time"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/apperr"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// opDependencies 工序前置依赖表
// 外层切片为"与"关系，内层切片为"或"关系：每组内任一工序完工即满足该组
var opDependencies = map[string][][]string{
	entity.OpCutting:   {},
	entity.OpForming:   {{entity.OpCutting}},
	entity.OpWelding:   {{entity.OpForming}},
	entity.OpAssembly:  {{entity.OpForming, entity.OpCutting}},
	entity.OpQC:        {{entity.OpAssembly, entity.OpWelding}},
	entity.OpPainting:  {{entity.OpQC}},
	entity.OpPackaging: {{entity.OpPainting, entity.OpQC}},
}

// opTriggers 工序完工后顺带拉起的后续工序
// 被拉起的工序仍需通过依赖检查，表里只列直接后继
var opTriggers = map[string][]string{
	entity.OpCutting:  {entity.OpForming},
	entity.OpForming:  {entity.OpAssembly, entity.OpWelding},
	entity.OpAssembly: {entity.OpQC},
	entity.OpWelding:  {entity.OpQC},
	entity.OpQC:       {entity.OpPainting, entity.OpPackaging},
	entity.OpPainting: {entity.OpPackaging},
}

// WorkOrderService 工单服务
type WorkOrderService struct {
	repo         *repository.WorkOrderRepository
	bomService   *BOMService
	invService   *InventoryService
	scrapService *ScrapService
	logger       *zap.Logger
}

func NewWorkOrderService(repo *repository.WorkOrderRepository, bomService *BOMService,
	invService *InventoryService, scrapService *ScrapService, logger *zap.Logger) *WorkOrderService {
	return &WorkOrderService{
		repo:         repo,
		bomService:   bomService,
		invService:   invService,
		scrapService: scrapService,
		logger:       logger,
	}
}

// CreateMasterRequest 创建主工单
type CreateMasterRequest struct {
	ProductID      string     `json:"product_id" binding:"required"`
	Quantity       float64    `json:"quantity" binding:"required"`
	ScheduledStart *time.Time `json:"scheduled_start"`
	ScheduledEnd   *time.Time `json:"scheduled_end"`
	CustomerID     string     `json:"customer_id"`
	SalesOrderID   string     `json:"sales_order_id"`
	PONumber       string     `json:"po_number"`
	Notes          string     `json:"notes"`
}

// CreateMaster 创建主工单，按BOM生成领料需求行
func (s *WorkOrderService) CreateMaster(req *CreateMasterRequest, userID string) (*entity.WorkOrder, error) {
	if req.Quantity <= 0 {
		return nil, apperr.Validationf("工单数量必须大于0: %v", req.Quantity)
	}
	product, err := s.bomService.GetProduct(req.ProductID)
	if err != nil {
		return nil, apperr.NotFoundf("产品 %s 不存在", req.ProductID)
	}

	// 领料需求 = BOM直接行 × 工单数量（子装配行不领料，由其子工单自理）
	items, err := s.bomService.GetBOMItems(product.ID)
	if err != nil {
		return nil, fmt.Errorf("读取BOM失败: %w", err)
	}
	var materials []entity.WorkOrderMaterial
	for _, item := range items {
		if item.ItemType == entity.ItemTypeSubAssembly || item.MaterialID == "" {
			continue
		}
		materials = append(materials, entity.WorkOrderMaterial{
			MaterialID:   item.MaterialID,
			MaterialCode: item.MaterialCode,
			MaterialName: item.MaterialName,
			RequiredQty:  item.QtyPerUnit * req.Quantity * (1 + item.ScrapAllowancePct/100),
			Unit:         item.Unit,
		})
	}

	wo := &entity.WorkOrder{
		WONumber:       generateWONumber(),
		ProductID:      product.ID,
		ProductCode:    product.Code,
		ProductName:    product.Name,
		Quantity:       req.Quantity,
		Status:         entity.WOStatusPlanned,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		CustomerID:     req.CustomerID,
		SalesOrderID:   req.SalesOrderID,
		PONumber:       req.PONumber,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}
	if err := s.repo.CreateWithMaterials(wo, materials); err != nil {
		return nil, fmt.Errorf("创建工单失败: %w", err)
	}

	s.logger.Info("主工单已创建",
		zap.String("wo_number", wo.WONumber),
		zap.String("product_code", wo.ProductCode),
		zap.Float64("quantity", wo.Quantity),
	)
	return s.repo.GetByID(wo.ID)
}

// CreateChildRequest 创建子工单，ParentWOID 由路由参数填入
type CreateChildRequest struct {
	ParentWOID    string  `json:"parent_wo_id"`
	OperationType string  `json:"operation_type" binding:"required"`
	Quantity      float64 `json:"quantity"`
	Notes         string  `json:"notes"`
}

// CreateChild 在主工单下创建工序子工单，继承产品与排程
func (s *WorkOrderService) CreateChild(req *CreateChildRequest, userID string) (*entity.WorkOrder, error) {
	if !entity.ValidOperation(req.OperationType) {
		return nil, apperr.Validationf("无效的工序类型: %s", req.OperationType)
	}
	parent, err := s.repo.GetByID(req.ParentWOID)
	if err != nil {
		return nil, apperr.NotFoundf("主工单 %s 不存在", req.ParentWOID)
	}
	if !parent.IsMaster() {
		return nil, apperr.Validationf("工单 %s 不是主工单，不能挂子工单", parent.WONumber)
	}
	if parent.Status == entity.WOStatusCompleted || parent.Status == entity.WOStatusCancelled {
		return nil, apperr.Conflictf("主工单 %s 已关闭，不能再添加子工单", parent.WONumber)
	}

	qty := req.Quantity
	if qty <= 0 {
		qty = parent.Quantity
	}
	children, err := s.repo.GetChildren(parent.ID)
	if err != nil {
		return nil, fmt.Errorf("查询子工单失败: %w", err)
	}

	child := &entity.WorkOrder{
		WONumber:       fmt.Sprintf("%s-%s%02d", parent.WONumber, opShort(req.OperationType), len(children)+1),
		ProductID:      parent.ProductID,
		ProductCode:    parent.ProductCode,
		ProductName:    parent.ProductName,
		Quantity:       qty,
		Status:         entity.WOStatusPlanned,
		OperationType:  req.OperationType,
		ParentWOID:     &parent.ID,
		ScheduledStart: parent.ScheduledStart,
		ScheduledEnd:   parent.ScheduledEnd,
		CustomerID:     parent.CustomerID,
		SalesOrderID:   parent.SalesOrderID,
		PONumber:       parent.PONumber,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}
	if err := s.repo.Create(child); err != nil {
		return nil, fmt.Errorf("创建子工单失败: %w", err)
	}

	s.logger.Info("子工单已创建",
		zap.String("wo_number", child.WONumber),
		zap.String("operation", child.OperationType),
		zap.String("parent", parent.WONumber),
	)
	return child, nil
}

// Get 查询工单（含物料与报工）
func (s *WorkOrderService) Get(woID string) (*entity.WorkOrder, error) {
	wo, err := s.repo.GetByID(woID)
	if err != nil {
		return nil, apperr.NotFoundf("工单 %s 不存在", woID)
	}
	if wo.IsMaster() {
		children, err := s.repo.GetChildren(wo.ID)
		if err != nil {
			return nil, fmt.Errorf("查询子工单失败: %w", err)
		}
		wo.Children = children
	}
	return wo, nil
}

// List 分页查询工单
func (s *WorkOrderService) List(params repository.WOListParams) ([]entity.WorkOrder, int64, error) {
	return s.repo.List(params)
}

// DependencyStatus 工序依赖检查结果
type DependencyStatus struct {
	WorkOrderID         string     `json:"work_order_id"`
	OperationType       string     `json:"operation_type"`
	CanStart            bool       `json:"can_start"`
	RequiredOperations  [][]string `json:"required_operations"` // 每组内任一完工即可
	CompletedOperations []string   `json:"completed_operations"`
	MissingOperations   []string   `json:"missing_operations"`
}

// CheckDependencies 检查子工单的前置工序是否满足，这是开工的权威判定
func (s *WorkOrderService) CheckDependencies(woID string) (*DependencyStatus, error) {
	wo, err := s.repo.GetByID(woID)
	if err != nil {
		return nil, apperr.NotFoundf("工单 %s 不存在", woID)
	}
	if wo.IsMaster() {
		return &DependencyStatus{WorkOrderID: wo.ID, CanStart: true}, nil
	}

	siblings, err := s.repo.GetChildren(*wo.ParentWOID)
	if err != nil {
		return nil, fmt.Errorf("查询兄弟工单失败: %w", err)
	}
	completed := map[string]bool{}
	for _, sib := range siblings {
		if sib.ID != wo.ID && sib.Status == entity.WOStatusCompleted {
			completed[sib.OperationType] = true
		}
	}

	status := &DependencyStatus{
		WorkOrderID:        wo.ID,
		OperationType:      wo.OperationType,
		RequiredOperations: opDependencies[wo.OperationType],
		CanStart:           true,
	}
	for op := range completed {
		status.CompletedOperations = append(status.CompletedOperations, op)
	}
	for _, group := range opDependencies[wo.OperationType] {
		satisfied := false
		for _, op := range group {
			if completed[op] {
				satisfied = true
				break
			}
		}
		if !satisfied {
			status.CanStart = false
			status.MissingOperations = append(status.MissingOperations, group...)
		}
	}
	return status, nil
}

// IssueMaterialsRequest 工单发料
type IssueMaterialsRequest struct {
	LocationCode string `json:"location_code" binding:"required"`
	Items        []struct {
		MaterialID string  `json:"material_id" binding:"required"`
		Quantity   float64 `json:"quantity" binding:"required"`
	} `json:"items" binding:"required"`
}

// IssueMaterials 按需求行发料：条件扣减库存，首次发料推动工单开工
func (s *WorkOrderService) IssueMaterials(woID string, req *IssueMaterialsRequest, userID string) (*entity.WorkOrder, error) {
	wo, err := s.repo.GetByID(woID)
	if err != nil {
		return nil, apperr.NotFoundf("工单 %s 不存在", woID)
	}
	if wo.Status != entity.WOStatusPlanned && wo.Status != entity.WOStatusInProgress {
		return nil, apperr.Conflictf("工单 %s 当前状态 %s 不允许发料", wo.WONumber, wo.Status)
	}
	if !wo.IsMaster() {
		if dep, err := s.CheckDependencies(wo.ID); err != nil {
			return nil, err
		} else if !dep.CanStart {
			return nil, apperr.Conflictf("工单 %s 前置工序未完工: %v", wo.WONumber, dep.MissingOperations)
		}
	}

	loc, err := s.invService.repo.GetOrCreateLocation(req.LocationCode, req.LocationCode, entity.LocationKindRaw)
	if err != nil {
		return nil, fmt.Errorf("获取库位失败: %w", err)
	}

	byMaterial := map[string]*entity.WorkOrderMaterial{}
	for i := range wo.Materials {
		byMaterial[wo.Materials[i].MaterialID] = &wo.Materials[i]
	}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validationf("发料数量必须大于0: %v", item.Quantity)
		}
		if err := s.invService.Deduct(item.MaterialID, loc.ID, item.Quantity, "WO", wo.ID, userID); err != nil {
			return nil, err
		}
		if m, ok := byMaterial[item.MaterialID]; ok {
			m.IssuedQty += item.Quantity
			if err := s.repo.UpdateMaterial(m); err != nil {
				return nil, fmt.Errorf("更新发料记录失败: %w", err)
			}
		}
	}

	if wo.Status == entity.WOStatusPlanned {
		if err := s.startWorkOrder(wo); err != nil {
			return nil, err
		}
	}

	s.logger.Info("工单发料完成",
		zap.String("wo_number", wo.WONumber),
		zap.Int("lines", len(req.Items)),
	)
	return s.repo.GetByID(wo.ID)
}

// RecordOutputRequest 工单报工
type RecordOutputRequest struct {
	Quantity float64 `json:"quantity" binding:"required"`
	ScrapQty float64 `json:"scrap_qty"`
	Notes    string  `json:"notes"`
}

// RecordOutput 记录工单产出，累加完工数量
func (s *WorkOrderService) RecordOutput(woID string, req *RecordOutputRequest, userID string) (*entity.WorkOrder, error) {
	if req.Quantity <= 0 {
		return nil, apperr.Validationf("报工数量必须大于0: %v", req.Quantity)
	}
	wo, err := s.repo.GetByID(woID)
	if err != nil {
		return nil, apperr.NotFoundf("工单 %s 不存在", woID)
	}
	if wo.Status != entity.WOStatusPlanned && wo.Status != entity.WOStatusInProgress {
		return nil, apperr.Conflictf("工单 %s 当前状态 %s 不允许报工", wo.WONumber, wo.Status)
	}
	// 报工会推动PLANNED工单开工，开工前同样要过依赖关卡
	if wo.Status == entity.WOStatusPlanned && !wo.IsMaster() {
		if dep, err := s.CheckDependencies(wo.ID); err != nil {
			return nil, err
		} else if !dep.CanStart {
			return nil, apperr.Conflictf("工单 %s 前置工序未完工: %v", wo.WONumber, dep.MissingOperations)
		}
	}

	report := &entity.WorkOrderReport{
		WorkOrderID: wo.ID,
		Quantity:    req.Quantity,
		ScrapQty:    req.ScrapQty,
		Notes:       req.Notes,
		ReportedBy:  userID,
		ReportedAt:  time.Now(),
	}
	if err := s.repo.CreateReport(report); err != nil {
		return nil, fmt.Errorf("创建报工记录失败: %w", err)
	}

	wo.CompletedQty += req.Quantity
	if err := s.repo.Update(wo); err != nil {
		return nil, fmt.Errorf("更新工单失败: %w", err)
	}
	if wo.Status == entity.WOStatusPlanned {
		if err := s.startWorkOrder(wo); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(wo.ID)
}

// StatusUpdateResult 状态更新结果，完工级联时附带质检移库信息
type StatusUpdateResult struct {
	WorkOrder       *entity.WorkOrder  `json:"work_order"`
	MasterCompleted bool               `json:"master_completed"`
	QATransfer      *TransferResult    `json:"qa_transfer,omitempty"`
	Triggered       []entity.WorkOrder `json:"triggered,omitempty"`
}

// UpdateStatus 工单状态流转
// 子工单完工时：下料工序异步生成废料；全部兄弟完工则级联完成主工单并移库质检
func (s *WorkOrderService) UpdateStatus(woID, newStatus, userID string) (*StatusUpdateResult, error) {
	if !entity.ValidWOStatus(newStatus) {
		return nil, apperr.Validationf("无效的工单状态: %s", newStatus)
	}
	wo, err := s.repo.GetByID(woID)
	if err != nil {
		return nil, apperr.NotFoundf("工单 %s 不存在", woID)
	}
	if !entity.CanTransition(wo.Status, newStatus) {
		return nil, apperr.Conflictf("工单 %s 不允许从 %s 流转到 %s", wo.WONumber, wo.Status, newStatus)
	}

	if newStatus == entity.WOStatusCompleted && !wo.IsMaster() && wo.CompletedQty <= 0 {
		return nil, apperr.Validationf("工单 %s 无产出报工，不能完工", wo.WONumber)
	}
	if newStatus == entity.WOStatusInProgress && !wo.IsMaster() {
		dep, err := s.CheckDependencies(wo.ID)
		if err != nil {
			return nil, err
		}
		if !dep.CanStart {
			return nil, apperr.Conflictf("工单 %s 前置工序未完工: %v", wo.WONumber, dep.MissingOperations)
		}
	}

	// 主工单手工完工必须等全部子工单完工，走与级联相同的完工路径
	if newStatus == entity.WOStatusCompleted && wo.IsMaster() {
		children, err := s.repo.GetChildren(wo.ID)
		if err != nil {
			return nil, fmt.Errorf("查询子工单失败: %w", err)
		}
		if len(children) == 0 {
			return nil, apperr.Conflictf("主工单 %s 没有子工单，不能完工", wo.WONumber)
		}
		for _, c := range children {
			if c.Status != entity.WOStatusCompleted {
				return nil, apperr.Conflictf("主工单 %s 的子工单 %s 尚未完工，不能完工", wo.WONumber, c.WONumber)
			}
		}
		result := &StatusUpdateResult{}
		s.cascadeMasterCompletion(wo.ID, userID, result)
		updated, err := s.repo.GetByID(wo.ID)
		if err != nil {
			return nil, fmt.Errorf("查询工单失败: %w", err)
		}
		if updated.Status != entity.WOStatusCompleted {
			return nil, fmt.Errorf("主工单 %s 完工失败", wo.WONumber)
		}
		result.WorkOrder = updated
		s.logger.Info("工单状态已更新",
			zap.String("wo_number", updated.WONumber),
			zap.String("status", newStatus),
			zap.Bool("master_completed", result.MasterCompleted),
		)
		return result, nil
	}

	now := time.Now()
	wo.Status = newStatus
	switch newStatus {
	case entity.WOStatusInProgress:
		if wo.ActualStart == nil {
			wo.ActualStart = &now
		}
	case entity.WOStatusCompleted, entity.WOStatusCancelled:
		wo.ActualEnd = &now
	}
	if err := s.repo.UpdateStatus(wo); err != nil {
		return nil, fmt.Errorf("更新工单状态失败: %w", err)
	}

	result := &StatusUpdateResult{WorkOrder: wo}

	if newStatus == entity.WOStatusInProgress && !wo.IsMaster() {
		s.bumpParentInProgress(*wo.ParentWOID)
	}

	if newStatus == entity.WOStatusCompleted && !wo.IsMaster() {
		if wo.OperationType == entity.OpCutting {
			// 废料生成异步执行，自带事务与幂等护栏，失败只记日志
			go s.runScrapGeneration(wo.ID, wo.WONumber)
		}
		triggered, err := s.TriggerNext(wo.ID)
		if err != nil {
			s.logger.Warn("拉起后续工序失败", zap.String("wo_number", wo.WONumber), zap.Error(err))
		} else {
			result.Triggered = triggered
		}
		s.cascadeMasterCompletion(*wo.ParentWOID, userID, result)
	}

	s.logger.Info("工单状态已更新",
		zap.String("wo_number", wo.WONumber),
		zap.String("status", newStatus),
		zap.Bool("master_completed", result.MasterCompleted),
	)
	return result, nil
}

// TriggerNext 完工工序的直接后继中，PLANNED状态的兄弟工单直接拉起开工
// 尽力而为的快捷通道，不重查依赖；显式开工仍以 CheckDependencies 为准
func (s *WorkOrderService) TriggerNext(woID string) ([]entity.WorkOrder, error) {
	wo, err := s.repo.GetByID(woID)
	if err != nil {
		return nil, apperr.NotFoundf("工单 %s 不存在", woID)
	}
	if wo.IsMaster() || wo.Status != entity.WOStatusCompleted {
		return nil, nil
	}
	nextOps := map[string]bool{}
	for _, op := range opTriggers[wo.OperationType] {
		nextOps[op] = true
	}
	if len(nextOps) == 0 {
		return nil, nil
	}

	siblings, err := s.repo.GetChildren(*wo.ParentWOID)
	if err != nil {
		return nil, fmt.Errorf("查询兄弟工单失败: %w", err)
	}

	now := time.Now()
	var triggered []entity.WorkOrder
	for i := range siblings {
		sib := &siblings[i]
		if sib.Status != entity.WOStatusPlanned || !nextOps[sib.OperationType] {
			continue
		}
		sib.Status = entity.WOStatusInProgress
		if sib.ActualStart == nil {
			sib.ActualStart = &now
		}
		if sib.ScheduledStart == nil {
			sib.ScheduledStart = &now
		}
		if err := s.repo.UpdateStatus(sib); err != nil {
			return nil, fmt.Errorf("拉起工单 %s 失败: %w", sib.WONumber, err)
		}
		s.logger.Info("后续工序已拉起",
			zap.String("wo_number", sib.WONumber),
			zap.String("operation", sib.OperationType),
			zap.String("completed", wo.WONumber),
		)
		triggered = append(triggered, *sib)
	}
	return triggered, nil
}

// Delete 删除主工单并级联删除全部子工单
func (s *WorkOrderService) Delete(woID string) error {
	wo, err := s.repo.GetByID(woID)
	if err != nil {
		return apperr.NotFoundf("工单 %s 不存在", woID)
	}
	if wo.Status == entity.WOStatusInProgress {
		return apperr.Conflictf("工单 %s 进行中，不能删除", wo.WONumber)
	}
	if err := s.repo.DeleteCascade(wo); err != nil {
		return fmt.Errorf("删除工单失败: %w", err)
	}
	s.logger.Info("工单已删除", zap.String("wo_number", wo.WONumber))
	return nil
}

// startWorkOrder PLANNED工单开工并推动主工单进入执行
func (s *WorkOrderService) startWorkOrder(wo *entity.WorkOrder) error {
	now := time.Now()
	wo.Status = entity.WOStatusInProgress
	if wo.ActualStart == nil {
		wo.ActualStart = &now
	}
	if err := s.repo.UpdateStatus(wo); err != nil {
		return fmt.Errorf("工单开工失败: %w", err)
	}
	if !wo.IsMaster() {
		s.bumpParentInProgress(*wo.ParentWOID)
	}
	return nil
}

// bumpParentInProgress 首个子工单开工时主工单同步进入执行中
func (s *WorkOrderService) bumpParentInProgress(parentID string) {
	parent, err := s.repo.GetByID(parentID)
	if err != nil {
		s.logger.Warn("查询主工单失败", zap.String("parent_id", parentID), zap.Error(err))
		return
	}
	if parent.Status != entity.WOStatusPlanned {
		return
	}
	now := time.Now()
	parent.Status = entity.WOStatusInProgress
	parent.ActualStart = &now
	if err := s.repo.UpdateStatus(parent); err != nil {
		s.logger.Warn("主工单开工失败", zap.String("wo_number", parent.WONumber), zap.Error(err))
	}
}

// cascadeMasterCompletion 全部子工单完工则完成主工单并把成品移入质检库位
// 质检移库失败不回滚状态，只记日志留待人工补账
func (s *WorkOrderService) cascadeMasterCompletion(parentID, userID string, result *StatusUpdateResult) {
	children, err := s.repo.GetChildren(parentID)
	if err != nil {
		s.logger.Warn("查询子工单失败", zap.String("parent_id", parentID), zap.Error(err))
		return
	}
	if len(children) == 0 {
		return
	}
	for _, c := range children {
		if c.Status != entity.WOStatusCompleted {
			return
		}
	}

	parent, err := s.repo.GetByID(parentID)
	if err != nil {
		s.logger.Warn("查询主工单失败", zap.String("parent_id", parentID), zap.Error(err))
		return
	}
	if parent.Status == entity.WOStatusCompleted {
		return
	}
	if !entity.CanTransition(parent.Status, entity.WOStatusCompleted) {
		s.logger.Warn("主工单状态不允许完工",
			zap.String("wo_number", parent.WONumber),
			zap.String("status", parent.Status),
		)
		return
	}

	now := time.Now()
	parent.Status = entity.WOStatusCompleted
	parent.CompletedQty = parent.Quantity
	parent.ActualEnd = &now
	if err := s.repo.UpdateStatus(parent); err != nil {
		s.logger.Warn("主工单完工失败", zap.String("wo_number", parent.WONumber), zap.Error(err))
		return
	}
	result.MasterCompleted = true
	s.logger.Info("主工单级联完工", zap.String("wo_number", parent.WONumber))

	if parent.Quantity <= 0 {
		s.logger.Warn("主工单数量为0，跳过质检移库", zap.String("wo_number", parent.WONumber))
		return
	}
	transfer, err := s.invService.TransferByCode(
		parent.ProductID, parent.ProductCode, parent.ProductName, parent.Quantity,
		entity.LocationCodeFG, entity.LocationKindFG,
		entity.LocationCodeQA, entity.LocationKindQA,
		"WO", parent.ID, parent.WONumber, userID,
	)
	if err != nil {
		s.logger.Warn("质检移库失败，状态已保留",
			zap.String("wo_number", parent.WONumber),
			zap.Error(err),
		)
		return
	}
	result.QATransfer = transfer
}

func (s *WorkOrderService) runScrapGeneration(woID, woNumber string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("废料生成异常退出", zap.String("wo_number", woNumber), zap.Any("panic", r))
		}
	}()
	if err := s.scrapService.ProcessCuttingCompletion(woID); err != nil {
		s.logger.Warn("废料生成失败", zap.String("wo_number", woNumber), zap.Error(err))
	}
}

func generateWONumber() string {
	return fmt.Sprintf("WO-%s-%s", time.Now().Format("20060102"), uuid.New().String()[:8])
}

func opShort(op string) string {
	if len(op) >= 3 {
		return op[:3]
	}
	return op
}
