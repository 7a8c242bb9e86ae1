package service

import (
	"fmt"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/apperr"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InventoryService 库存服务
type InventoryService struct {
	repo   *repository.InventoryRepository
	logger *zap.Logger
}

func NewInventoryService(repo *repository.InventoryRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{repo: repo, logger: logger}
}

// GetAvailable 物料全库位可用量
func (s *InventoryService) GetAvailable(materialID string) (float64, error) {
	return s.repo.GetTotalAvailable(materialID)
}

// InboundRequest 入库入参
type InboundRequest struct {
	MaterialID   string  `json:"material_id" binding:"required"`
	MaterialCode string  `json:"material_code"`
	MaterialName string  `json:"material_name"`
	LocationCode string  `json:"location_code" binding:"required"`
	LocationKind string  `json:"location_kind"`
	Quantity     float64 `json:"quantity" binding:"required"`
	Unit         string  `json:"unit"`
	TxType       string  `json:"tx_type"`
	ReferenceID  string  `json:"reference_id"`
	Notes        string  `json:"notes"`
}

// Inbound 入库：增加库存并记交易
func (s *InventoryService) Inbound(req *InboundRequest, userID string) (*entity.Inventory, error) {
	if req.Quantity <= 0 {
		return nil, apperr.Validationf("入库数量必须大于0: %v", req.Quantity)
	}
	kind := req.LocationKind
	if kind == "" {
		kind = entity.LocationKindRaw
	}
	loc, err := s.repo.GetOrCreateLocation(req.LocationCode, req.LocationCode, kind)
	if err != nil {
		return nil, fmt.Errorf("获取库位失败: %w", err)
	}

	txType := req.TxType
	if txType == "" {
		txType = entity.TxTypePurchaseIn
	}
	var inv *entity.Inventory
	err = s.repo.DB().Transaction(func(tx *gorm.DB) error {
		inv = &entity.Inventory{
			MaterialID:   req.MaterialID,
			MaterialCode: req.MaterialCode,
			MaterialName: req.MaterialName,
			LocationID:   loc.ID,
			Unit:         defaultUnit(req.Unit),
		}
		if err := s.repo.AddQuantity(tx, inv, req.Quantity); err != nil {
			return fmt.Errorf("库存入账失败: %w", err)
		}
		return s.repo.CreateTransaction(tx, &entity.InventoryTransaction{
			MaterialID:      req.MaterialID,
			MaterialCode:    req.MaterialCode,
			MaterialName:    req.MaterialName,
			LocationID:      loc.ID,
			TransactionType: txType,
			Quantity:        req.Quantity,
			ReferenceType:   "ADJUST",
			ReferenceID:     firstNonEmpty(req.ReferenceID, "MANUAL"),
			Notes:           req.Notes,
			CreatedBy:       userID,
		})
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Deduct 扣减库存，条件更新不足额即失败
func (s *InventoryService) Deduct(materialID, locationID string, qty float64, refType, refID, userID string) error {
	if qty <= 0 {
		return apperr.Validationf("扣减数量必须大于0: %v", qty)
	}
	return s.repo.DB().Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.DeductConditional(tx, materialID, locationID, qty)
		if err != nil {
			return fmt.Errorf("扣减库存失败: %w", err)
		}
		if !ok {
			return apperr.Conflictf("物料 %s 可用库存不足，需要 %v", materialID, qty)
		}
		return s.repo.CreateTransaction(tx, &entity.InventoryTransaction{
			MaterialID:      materialID,
			LocationID:      locationID,
			TransactionType: entity.TxTypeProductionOut,
			Quantity:        -qty,
			ReferenceType:   refType,
			ReferenceID:     refID,
			CreatedBy:       userID,
		})
	})
}

// TransferResult 调拨结果
type TransferResult struct {
	MaterialID   string  `json:"material_id"`
	Quantity     float64 `json:"quantity"`
	FromLocation string  `json:"from_location"`
	ToLocation   string  `json:"to_location"`
	ReferenceID  string  `json:"reference_id"`
}

// TransferByCode 按库位编码调拨：源库位条件扣减，目标库位入账，成对记交易
func (s *InventoryService) TransferByCode(materialID, materialCode, materialName string, qty float64,
	fromCode, fromKind, toCode, toKind, refType, refID, refCode, userID string) (*TransferResult, error) {
	if qty <= 0 {
		return nil, apperr.Validationf("调拨数量必须大于0: %v", qty)
	}
	from, err := s.repo.GetOrCreateLocation(fromCode, fromCode, fromKind)
	if err != nil {
		return nil, fmt.Errorf("获取源库位失败: %w", err)
	}
	to, err := s.repo.GetOrCreateLocation(toCode, toCode, toKind)
	if err != nil {
		return nil, fmt.Errorf("获取目标库位失败: %w", err)
	}

	err = s.repo.DB().Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.DeductConditional(tx, materialID, from.ID, qty)
		if err != nil {
			return fmt.Errorf("源库位扣减失败: %w", err)
		}
		if !ok {
			return apperr.Conflictf("库位 %s 物料 %s 可用量不足 %v", fromCode, materialID, qty)
		}
		inv := &entity.Inventory{
			MaterialID:   materialID,
			MaterialCode: materialCode,
			MaterialName: materialName,
			LocationID:   to.ID,
			Unit:         "pcs",
		}
		if err := s.repo.AddQuantity(tx, inv, qty); err != nil {
			return fmt.Errorf("目标库位入账失败: %w", err)
		}
		out := &entity.InventoryTransaction{
			MaterialID:      materialID,
			MaterialCode:    materialCode,
			MaterialName:    materialName,
			LocationID:      from.ID,
			TransactionType: entity.TxTypeTransfer,
			Quantity:        -qty,
			ReferenceType:   refType,
			ReferenceID:     refID,
			ReferenceCode:   refCode,
			CreatedBy:       userID,
		}
		if err := s.repo.CreateTransaction(tx, out); err != nil {
			return err
		}
		in := &entity.InventoryTransaction{
			MaterialID:      materialID,
			MaterialCode:    materialCode,
			MaterialName:    materialName,
			LocationID:      to.ID,
			TransactionType: entity.TxTypeTransfer,
			Quantity:        qty,
			ReferenceType:   refType,
			ReferenceID:     refID,
			ReferenceCode:   refCode,
			CreatedBy:       userID,
		}
		return s.repo.CreateTransaction(tx, in)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("库存调拨完成",
		zap.String("material_id", materialID),
		zap.Float64("quantity", qty),
		zap.String("from", fromCode),
		zap.String("to", toCode),
		zap.String("reference", refID),
	)
	return &TransferResult{
		MaterialID:   materialID,
		Quantity:     qty,
		FromLocation: fromCode,
		ToLocation:   toCode,
		ReferenceID:  refID,
	}, nil
}

// List 分页查询库存
func (s *InventoryService) List(params repository.InventoryListParams) ([]entity.Inventory, int64, error) {
	return s.repo.List(params)
}

// ListTransactions 分页查询库存交易
func (s *InventoryService) ListTransactions(materialID string, page, size int) ([]entity.InventoryTransaction, int64, error) {
	return s.repo.ListTransactions(materialID, page, size)
}

func defaultUnit(u string) string {
	if u == "" {
		return "pcs"
	}
	return u
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
