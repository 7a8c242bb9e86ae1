package repository

import (
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"gorm.io/gorm"
)

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(wo *entity.WorkOrder) error {
	return r.db.Create(wo).Error
}

// CreateWithMaterials 单事务创建工单及其领料需求行
func (r *WorkOrderRepository) CreateWithMaterials(wo *entity.WorkOrder, materials []entity.WorkOrderMaterial) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(wo).Error; err != nil {
			return err
		}
		if len(materials) == 0 {
			return nil
		}
		for i := range materials {
			materials[i].WorkOrderID = wo.ID
		}
		return tx.Create(&materials).Error
	})
}

func (r *WorkOrderRepository) GetByID(id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.Preload("Materials").Preload("Reports").
		Where("id = ? AND deleted_at IS NULL", id).First(&wo).Error
	return &wo, err
}

func (r *WorkOrderRepository) Update(wo *entity.WorkOrder) error {
	return r.db.Save(wo).Error
}

type WOListParams struct {
	Status       string
	ProductID    string
	ParentWOID   string
	Operation    string
	MastersOnly  bool
	Keyword      string
	Page         int
	Size         int
}

func (r *WorkOrderRepository) List(params WOListParams) ([]entity.WorkOrder, int64, error) {
	query := r.db.Model(&entity.WorkOrder{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.ParentWOID != "" {
		query = query.Where("parent_wo_id = ?", params.ParentWOID)
	}
	if params.Operation != "" {
		query = query.Where("operation_type = ?", params.Operation)
	}
	if params.MastersOnly {
		query = query.Where("parent_wo_id IS NULL")
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("wo_number ILIKE ? OR product_name ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var wos []entity.WorkOrder
	err := query.Order("created_at DESC").Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&wos).Error
	return wos, total, err
}

// GetChildren 重新读库返回主工单的全部子工单
// 兄弟完工检查必须走这里，不得依赖内存中的旧状态
func (r *WorkOrderRepository) GetChildren(parentWOID string) ([]entity.WorkOrder, error) {
	var children []entity.WorkOrder
	err := r.db.Where("parent_wo_id = ? AND deleted_at IS NULL", parentWOID).
		Order("created_at ASC").Find(&children).Error
	return children, err
}

// UpdateStatus 只更新状态及时间戳字段
func (r *WorkOrderRepository) UpdateStatus(wo *entity.WorkOrder) error {
	return r.db.Model(&entity.WorkOrder{}).Where("id = ?", wo.ID).
		Updates(map[string]interface{}{
			"status":          wo.Status,
			"actual_start":    wo.ActualStart,
			"actual_end":      wo.ActualEnd,
			"scheduled_start": wo.ScheduledStart,
			"updated_at":      wo.UpdatedAt,
		}).Error
}

// DeleteCascade 删除主工单及其全部子工单（含其领料/报工行），单事务
// 独立删除子工单不触碰主工单
func (r *WorkOrderRepository) DeleteCascade(wo *entity.WorkOrder) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		ids := []string{wo.ID}
		if wo.ParentWOID == nil {
			var children []entity.WorkOrder
			if err := tx.Where("parent_wo_id = ?", wo.ID).Find(&children).Error; err != nil {
				return err
			}
			for _, c := range children {
				ids = append(ids, c.ID)
			}
		}
		if err := tx.Where("work_order_id IN ?", ids).Delete(&entity.WorkOrderMaterial{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_order_id IN ?", ids).Delete(&entity.WorkOrderReport{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&entity.WorkOrder{}).Error
	})
}

func (r *WorkOrderRepository) UpdateMaterial(m *entity.WorkOrderMaterial) error {
	return r.db.Save(m).Error
}

func (r *WorkOrderRepository) CreateReport(report *entity.WorkOrderReport) error {
	return r.db.Create(report).Error
}

// DB 返回底层db用于事务
func (r *WorkOrderRepository) DB() *gorm.DB {
	return r.db
}
