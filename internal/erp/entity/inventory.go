package entity

import (
	"time"
)

// LocationKind 库位用途
const (
	LocationKindRaw   = "RAW"   // 原材料
	LocationKindWIP   = "WIP"   // 半成品
	LocationKindFG    = "FG"    // 成品
	LocationKindQA    = "QA"    // 质检待验
	LocationKindScrap = "SCRAP" // 废料
)

// 固定库位编码，按需创建
const (
	LocationCodeFG = "FG-STORE"
	LocationCodeQA = "QA-HOLD"
)

// TransactionType 库存交易类型
const (
	TxTypePurchaseIn    = "PURCHASE_IN"    // 采购入库
	TxTypeProductionIn  = "PRODUCTION_IN"  // 生产入库
	TxTypeProductionOut = "PRODUCTION_OUT" // 生产领料
	TxTypeSalesOut      = "SALES_OUT"      // 销售出库
	TxTypeScrapIn       = "SCRAP_IN"       // 废料入账
	TxTypeTransfer      = "TRANSFER"       // 库位调拨
	TxTypeAdjust        = "ADJUST"         // 库存调整
)

// StockLocation 库位
type StockLocation struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code      string     `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name      string     `json:"name" gorm:"size:100;not null"`
	Kind      string     `json:"kind" gorm:"size:10;not null;default:RAW"`
	Status    string     `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (StockLocation) TableName() string {
	return "erp_stock_locations"
}

// Inventory 库存记录（物料 × 库位）
// 扣减走条件更新（available_qty 足额才生效），这是系统中唯一的乐观并发护栏
type Inventory struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MaterialID   string     `json:"material_id" gorm:"size:64;not null;index;uniqueIndex:ux_inventory_material_location"`
	MaterialCode string     `json:"material_code" gorm:"size:64"`
	MaterialName string     `json:"material_name" gorm:"size:128"`
	LocationID   string     `json:"location_id" gorm:"type:uuid;not null;index;uniqueIndex:ux_inventory_material_location"`
	Quantity     float64    `json:"quantity" gorm:"type:decimal(12,4);not null;default:0"`
	ReservedQty  float64    `json:"reserved_qty" gorm:"type:decimal(12,4);default:0"`
	AvailableQty float64    `json:"available_qty" gorm:"type:decimal(12,4);default:0"`
	UnitCost     float64    `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	Unit         string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	LastMovedAt  *time.Time `json:"last_moved_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`

	Location *StockLocation `json:"location,omitempty" gorm:"foreignKey:LocationID"`
}

func (Inventory) TableName() string {
	return "erp_inventory"
}

// InventoryTransaction 库存交易记录（正=入，负=出）
type InventoryTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MaterialID      string    `json:"material_id" gorm:"size:64;not null;index"`
	MaterialCode    string    `json:"material_code" gorm:"size:64"`
	MaterialName    string    `json:"material_name" gorm:"size:128"`
	LocationID      string    `json:"location_id" gorm:"type:uuid;not null;index"`
	TransactionType string    `json:"transaction_type" gorm:"size:20;not null"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	ReferenceType   string    `json:"reference_type" gorm:"size:50;not null"` // WO, SO, PR, ADJUST
	ReferenceID     string    `json:"reference_id" gorm:"size:64;not null"`
	ReferenceCode   string    `json:"reference_code" gorm:"size:50"`
	Notes           string    `json:"notes" gorm:"type:text"`
	CreatedBy       string    `json:"created_by" gorm:"size:64;not null"`
	CreatedAt       time.Time `json:"created_at"`
}

func (InventoryTransaction) TableName() string {
	return "erp_inventory_transactions"
}
