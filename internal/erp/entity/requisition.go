package entity

import (
	"time"
)

// MRPDemandStatus MRP需求状态
const (
	DemandStatusOpen      = "OPEN"
	DemandStatusProcessed = "PROCESSED" // 已生成采购需求
	DemandStatusClosed    = "CLOSED"
)

// MRPDemand MRP需求锚点，每次runMRP产生一条
// 物料请购单通过 DemandID 归属于它
type MRPDemand struct {
	ID                string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	RunCode           string     `json:"run_code" gorm:"size:50;not null;uniqueIndex"`
	ProductID         string     `json:"product_id" gorm:"type:uuid;index"`
	ProductCode       string     `json:"product_code" gorm:"size:64"`
	SalesOrderID      string     `json:"sales_order_id" gorm:"size:64;index"` // 按销售订单下达时填写
	Quantity          float64    `json:"quantity" gorm:"type:decimal(12,4);not null"`
	RequiredBy        *time.Time `json:"required_by"`
	CanProceed        bool       `json:"can_proceed" gorm:"default:false"`
	TotalCost         float64    `json:"total_cost" gorm:"type:decimal(14,2);default:0"`
	ShortageCost      float64    `json:"shortage_cost" gorm:"type:decimal(14,2);default:0"`
	TotalItems        int        `json:"total_items" gorm:"default:0"`
	TotalShortages    int        `json:"total_shortages" gorm:"default:0"`
	CriticalShortages int        `json:"critical_shortages" gorm:"default:0"` // 关键件短缺数
	Status            string     `json:"status" gorm:"size:20;not null;default:OPEN"`
	CreatedBy         string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (MRPDemand) TableName() string {
	return "erp_mrp_demands"
}

// RequisitionStatus 物料请购单状态
const (
	ReqStatusPending   = "PENDING"
	ReqStatusFulfilled = "FULFILLED"
)

// RequisitionPriority 物料请购单优先级
const (
	ReqPriorityNormal = "NORMAL"
	ReqPriorityHigh   = "HIGH"
)

// MaterialRequisition 物料请购单，每 (需求, 物料) 一条
// ShortageQty = max(0, RequiredQty - AvailableQty)
type MaterialRequisition struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	DemandID     string     `json:"demand_id" gorm:"type:uuid;not null;index"`
	MaterialID   string     `json:"material_id" gorm:"size:64;not null;index"`
	MaterialCode string     `json:"material_code" gorm:"size:64"`
	MaterialName string     `json:"material_name" gorm:"size:128"`
	ItemType     string     `json:"item_type" gorm:"size:20"`
	RequiredQty  float64    `json:"required_qty" gorm:"type:decimal(12,4);not null"`
	AvailableQty float64    `json:"available_qty" gorm:"type:decimal(12,4);default:0"`
	ShortageQty  float64    `json:"shortage_qty" gorm:"type:decimal(12,4);default:0"`
	UnitCost     float64    `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	Unit         string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	IsCritical   bool       `json:"is_critical" gorm:"default:false"`
	Priority     string     `json:"priority" gorm:"size:10;not null;default:NORMAL"`
	Status       string     `json:"status" gorm:"size:20;not null;default:PENDING"`
	RequiredBy   *time.Time `json:"required_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (MaterialRequisition) TableName() string {
	return "erp_material_requisitions"
}

// PurchaseRequisitionStatus 采购需求状态
const (
	PRStatusDraft    = "DRAFT"
	PRStatusPending  = "PENDING"
	PRStatusApproved = "APPROVED"
	PRStatusOrdered  = "ORDERED"
	PRStatusClosed   = "CLOSED"
)

// PurchaseRequisition 采购需求（PR）
// 由短缺汇总生成：同一物料的短缺合并为一条，数量求和，取最早需求日期
type PurchaseRequisition struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PRCode       string     `json:"pr_code" gorm:"size:50;not null;uniqueIndex"`
	MaterialID   string     `json:"material_id" gorm:"size:64;not null;index"`
	MaterialCode string     `json:"material_code" gorm:"size:64"`
	MaterialName string     `json:"material_name" gorm:"size:128"`
	Quantity     float64    `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit         string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	Priority     string     `json:"priority" gorm:"size:10;not null;default:NORMAL"`
	RequiredDate *time.Time `json:"required_date"`
	Status       string     `json:"status" gorm:"size:20;not null;default:DRAFT"`
	Source       string     `json:"source" gorm:"size:20"`    // MRP, MANUAL
	SourceID     string     `json:"source_id" gorm:"size:64"` // MRP需求ID
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`
}

func (PurchaseRequisition) TableName() string {
	return "erp_purchase_requisitions"
}
