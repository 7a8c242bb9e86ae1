package repository

import (
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetByID(id string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&p).Error
	return &p, err
}

func (r *ProductRepository) GetByCode(code string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.Where("code = ? AND deleted_at IS NULL", code).First(&p).Error
	return &p, err
}

func (r *ProductRepository) Create(p *entity.Product) error {
	return r.db.Create(p).Error
}

// GetBOMItems 按工序顺序号返回产品的全部BOM行
func (r *ProductRepository) GetBOMItems(productID string) ([]entity.BOMItem, error) {
	var items []entity.BOMItem
	err := r.db.Where("product_id = ? AND deleted_at IS NULL", productID).
		Order("step_seq ASC, created_at ASC").Find(&items).Error
	return items, err
}

// GetBlankSpecs 返回产品的全部下料规格
func (r *ProductRepository) GetBlankSpecs(productID string) ([]entity.BlankSpec, error) {
	var blanks []entity.BlankSpec
	err := r.db.Where("product_id = ? AND deleted_at IS NULL", productID).
		Order("sub_assembly ASC").Find(&blanks).Error
	return blanks, err
}

func (r *ProductRepository) GetBlankByID(id string) (*entity.BlankSpec, error) {
	var b entity.BlankSpec
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&b).Error
	return &b, err
}

func (r *ProductRepository) CreateBOMItem(item *entity.BOMItem) error {
	return r.db.Create(item).Error
}

func (r *ProductRepository) BatchCreateBOMItems(items []entity.BOMItem) error {
	return r.db.Create(&items).Error
}

func (r *ProductRepository) CreateBlankSpec(b *entity.BlankSpec) error {
	return r.db.Create(b).Error
}

// ReplaceBOM 在一个事务内清空并重建产品BOM（导入用）
// blanks 传nil表示保留现有下料规格不动
func (r *ProductRepository) ReplaceBOM(productID string, items []entity.BOMItem, blanks []entity.BlankSpec) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&entity.BOMItem{}).Error; err != nil {
			return err
		}
		if blanks != nil {
			if err := tx.Where("product_id = ?", productID).Delete(&entity.BlankSpec{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&blanks).Error; err != nil {
				return err
			}
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DB 返回底层db用于事务
func (r *ProductRepository) DB() *gorm.DB {
	return r.db
}
