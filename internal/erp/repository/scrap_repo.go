package repository

import (
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"gorm.io/gorm"
)

type ScrapRepository struct {
	db *gorm.DB
}

func NewScrapRepository(db *gorm.DB) *ScrapRepository {
	return &ScrapRepository{db: db}
}

// ExistsForWorkOrder 幂等探测：该工单是否已有废料记录
func (r *ScrapRepository) ExistsForWorkOrder(tx *gorm.DB, woID string) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	var count int64
	err := tx.Model(&entity.ScrapRecord{}).
		Where("reference_wo_id = ?", woID).Count(&count).Error
	return count > 0, err
}

func (r *ScrapRepository) CreateRecord(tx *gorm.DB, rec *entity.ScrapRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(rec).Error
}

func (r *ScrapRepository) CreateOrigin(tx *gorm.DB, origin *entity.ScrapOrigin) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(origin).Error
}

func (r *ScrapRepository) GetByWorkOrder(woID string) ([]entity.ScrapRecord, error) {
	var recs []entity.ScrapRecord
	err := r.db.Preload("Origin").
		Where("reference_wo_id = ?", woID).
		Order("material_code ASC").Find(&recs).Error
	return recs, err
}

type ScrapListParams struct {
	MaterialID string
	Status     string
	Page       int
	Size       int
}

func (r *ScrapRepository) List(params ScrapListParams) ([]entity.ScrapRecord, int64, error) {
	query := r.db.Model(&entity.ScrapRecord{})
	if params.MaterialID != "" {
		query = query.Where("material_id = ?", params.MaterialID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var recs []entity.ScrapRecord
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&recs).Error
	return recs, total, err
}

// DB 返回底层db用于事务
func (r *ScrapRepository) DB() *gorm.DB {
	return r.db
}
