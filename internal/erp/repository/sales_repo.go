package repository

import (
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"gorm.io/gorm"
)

type SalesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

func (r *SalesRepository) GetByID(id string) (*entity.SalesOrder, error) {
	var so entity.SalesOrder
	err := r.db.Preload("Items").Preload("Customer").
		Where("id = ? AND deleted_at IS NULL", id).First(&so).Error
	return &so, err
}

func (r *SalesRepository) Create(so *entity.SalesOrder) error {
	return r.db.Create(so).Error
}

func (r *SalesRepository) List(page, size int) ([]entity.SalesOrder, int64, error) {
	query := r.db.Model(&entity.SalesOrder{}).Where("deleted_at IS NULL")
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var sos []entity.SalesOrder
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&sos).Error
	return sos, total, err
}

// DB 返回底层db用于事务
func (r *SalesRepository) DB() *gorm.DB {
	return r.db
}
