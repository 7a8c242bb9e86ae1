package repository

import (
	"time"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetTotalAvailable 物料在全部库位的可用数量合计
func (r *InventoryRepository) GetTotalAvailable(materialID string) (float64, error) {
	var result struct{ Total float64 }
	err := r.db.Raw(`
		SELECT COALESCE(SUM(available_qty), 0) as total
		FROM erp_inventory
		WHERE material_id = ? AND deleted_at IS NULL
	`, materialID).Scan(&result).Error
	return result.Total, err
}

func (r *InventoryRepository) GetByMaterialAndLocation(materialID, locationID string) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := r.db.Where("material_id = ? AND location_id = ? AND deleted_at IS NULL", materialID, locationID).
		First(&inv).Error
	return &inv, err
}

// DeductConditional 条件扣减：仅当可用数量足额时生效，返回是否扣减成功
// 这是系统唯一的乐观并发护栏，不加行锁
func (r *InventoryRepository) DeductConditional(tx *gorm.DB, materialID, locationID string, qty float64) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	now := time.Now()
	res := tx.Model(&entity.Inventory{}).
		Where("material_id = ? AND location_id = ? AND available_qty >= ? AND deleted_at IS NULL",
			materialID, locationID, qty).
		Updates(map[string]interface{}{
			"quantity":      gorm.Expr("quantity - ?", qty),
			"available_qty": gorm.Expr("available_qty - ?", qty),
			"last_moved_at": now,
			"updated_at":    now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddQuantity 向 (物料, 库位) 增加数量，不存在则创建
func (r *InventoryRepository) AddQuantity(tx *gorm.DB, inv *entity.Inventory, qty float64) error {
	if tx == nil {
		tx = r.db
	}
	now := time.Now()
	res := tx.Model(&entity.Inventory{}).
		Where("material_id = ? AND location_id = ? AND deleted_at IS NULL", inv.MaterialID, inv.LocationID).
		Updates(map[string]interface{}{
			"quantity":      gorm.Expr("quantity + ?", qty),
			"available_qty": gorm.Expr("available_qty + ?", qty),
			"last_moved_at": now,
			"updated_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	inv.Quantity = qty
	inv.AvailableQty = qty
	inv.LastMovedAt = &now
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "material_id"}, {Name: "location_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":      gorm.Expr("erp_inventory.quantity + ?", qty),
			"available_qty": gorm.Expr("erp_inventory.available_qty + ?", qty),
			"last_moved_at": now,
			"updated_at":    now,
		}),
	}).Create(inv).Error
}

func (r *InventoryRepository) CreateTransaction(tx *gorm.DB, t *entity.InventoryTransaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(t).Error
}

// GetOrCreateLocation 按编码取库位，不存在则创建
func (r *InventoryRepository) GetOrCreateLocation(code, name, kind string) (*entity.StockLocation, error) {
	var loc entity.StockLocation
	err := r.db.Where("code = ? AND deleted_at IS NULL", code).First(&loc).Error
	if err == nil {
		return &loc, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	loc = entity.StockLocation{Code: code, Name: name, Kind: kind, Status: "ACTIVE"}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&loc).Error; err != nil {
		return nil, err
	}
	// 并发创建时 DoNothing 不回填行，重查一次
	if err := r.db.Where("code = ? AND deleted_at IS NULL", code).First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

type InventoryListParams struct {
	MaterialID string
	LocationID string
	Keyword    string
	Page       int
	Size       int
}

func (r *InventoryRepository) List(params InventoryListParams) ([]entity.Inventory, int64, error) {
	query := r.db.Model(&entity.Inventory{}).Where("deleted_at IS NULL")
	if params.MaterialID != "" {
		query = query.Where("material_id = ?", params.MaterialID)
	}
	if params.LocationID != "" {
		query = query.Where("location_id = ?", params.LocationID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("material_code ILIKE ? OR material_name ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var items []entity.Inventory
	err := query.Preload("Location").Order("updated_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&items).Error
	return items, total, err
}

func (r *InventoryRepository) ListTransactions(materialID string, page, size int) ([]entity.InventoryTransaction, int64, error) {
	query := r.db.Model(&entity.InventoryTransaction{})
	if materialID != "" {
		query = query.Where("material_id = ?", materialID)
	}
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var txs []entity.InventoryTransaction
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&txs).Error
	return txs, total, err
}

// DB 返回底层db用于事务
func (r *InventoryRepository) DB() *gorm.DB {
	return r.db
}
