package repository

import (
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"gorm.io/gorm"
)

type RequisitionRepository struct {
	db *gorm.DB
}

func NewRequisitionRepository(db *gorm.DB) *RequisitionRepository {
	return &RequisitionRepository{db: db}
}

// SaveRun 单事务落库一次MRP运算：需求头连同全部请购单行
func (r *RequisitionRepository) SaveRun(d *entity.MRPDemand, reqs []entity.MaterialRequisition) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		if len(reqs) == 0 {
			return nil
		}
		for i := range reqs {
			reqs[i].DemandID = d.ID
		}
		return tx.Create(&reqs).Error
	})
}

func (r *RequisitionRepository) GetDemandByID(id string) (*entity.MRPDemand, error) {
	var d entity.MRPDemand
	err := r.db.Where("id = ?", id).First(&d).Error
	return &d, err
}

func (r *RequisitionRepository) ListDemands(page, size int) ([]entity.MRPDemand, int64, error) {
	query := r.db.Model(&entity.MRPDemand{})
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var demands []entity.MRPDemand
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&demands).Error
	return demands, total, err
}

func (r *RequisitionRepository) GetRequisitionsByDemand(demandID string) ([]entity.MaterialRequisition, error) {
	var reqs []entity.MaterialRequisition
	err := r.db.Where("demand_id = ?", demandID).
		Order("is_critical DESC, material_code ASC").Find(&reqs).Error
	return reqs, err
}

// GetPendingRequisitions 返回需求下仍有短缺的请购单
func (r *RequisitionRepository) GetPendingRequisitions(demandID string) ([]entity.MaterialRequisition, error) {
	var reqs []entity.MaterialRequisition
	err := r.db.Where("demand_id = ? AND status = ? AND shortage_qty > 0", demandID, entity.ReqStatusPending).
		Order("required_by ASC NULLS LAST").Find(&reqs).Error
	return reqs, err
}

// SavePRs 单事务创建采购需求并把MRP需求置为已处理
// 半途失败整体回滚，避免重试时重复生成已覆盖物料的采购需求
func (r *RequisitionRepository) SavePRs(d *entity.MRPDemand, prs []entity.PurchaseRequisition) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(prs) > 0 {
			if err := tx.Create(&prs).Error; err != nil {
				return err
			}
		}
		return tx.Save(d).Error
	})
}

func (r *RequisitionRepository) ListPRs(sourceID string, page, size int) ([]entity.PurchaseRequisition, int64, error) {
	query := r.db.Model(&entity.PurchaseRequisition{}).Where("deleted_at IS NULL")
	if sourceID != "" {
		query = query.Where("source_id = ?", sourceID)
	}
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var prs []entity.PurchaseRequisition
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&prs).Error
	return prs, total, err
}
