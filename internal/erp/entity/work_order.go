package entity

import (
	"time"
)

// WorkOrderStatus 工单状态（封闭集合，非法流转一律拒绝）
const (
	WOStatusPlanned    = "PLANNED"
	WOStatusInProgress = "IN_PROGRESS"
	WOStatusCompleted  = "COMPLETED"
	WOStatusCancelled  = "CANCELLED"
)

// woTransitions 状态流转表：当前状态 -> 允许的目标状态
// COMPLETED 与 CANCELLED 为终态
var woTransitions = map[string][]string{
	WOStatusPlanned:    {WOStatusInProgress, WOStatusCancelled},
	WOStatusInProgress: {WOStatusCompleted, WOStatusCancelled},
	WOStatusCompleted:  {},
	WOStatusCancelled:  {},
}

// ValidWOStatus 判断是否为合法状态值
func ValidWOStatus(s string) bool {
	_, ok := woTransitions[s]
	return ok
}

// CanTransition 判断状态流转是否合法
func CanTransition(from, to string) bool {
	for _, next := range woTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OperationType 子工单工序类型（主工单无工序类型）
const (
	OpCutting   = "CUTTING"
	OpForming   = "FORMING"
	OpWelding   = "WELDING"
	OpAssembly  = "ASSEMBLY"
	OpQC        = "QC"
	OpPainting  = "PAINTING"
	OpPackaging = "PACKAGING"
)

// Operations 全部工序类型
var Operations = []string{OpCutting, OpForming, OpWelding, OpAssembly, OpQC, OpPainting, OpPackaging}

// ValidOperation 判断是否为合法工序类型
func ValidOperation(op string) bool {
	for _, o := range Operations {
		if o == op {
			return true
		}
	}
	return false
}

// WorkOrder 工单
// 主工单: ParentWOID 为空、OperationType 为空，代表一条需求的总量
// 子工单: 归属唯一主工单，承载单个工序
type WorkOrder struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WONumber       string     `json:"wo_number" gorm:"size:50;not null;uniqueIndex"`
	ProductID      string     `json:"product_id" gorm:"type:uuid;not null;index"`
	ProductCode    string     `json:"product_code" gorm:"size:64"`
	ProductName    string     `json:"product_name" gorm:"size:128"`
	Quantity       float64    `json:"quantity" gorm:"type:decimal(12,4);not null"`
	CompletedQty   float64    `json:"completed_qty" gorm:"type:decimal(12,4);default:0"`
	Status         string     `json:"status" gorm:"size:20;not null;default:PLANNED"`
	OperationType  string     `json:"operation_type" gorm:"size:20;index"` // 空 = 主工单
	ParentWOID     *string    `json:"parent_wo_id" gorm:"type:uuid;index"`
	ScheduledStart *time.Time `json:"scheduled_start"`
	ScheduledEnd   *time.Time `json:"scheduled_end"`
	ActualStart    *time.Time `json:"actual_start"`
	ActualEnd      *time.Time `json:"actual_end"`
	CustomerID     string     `json:"customer_id" gorm:"size:64"`
	SalesOrderID   string     `json:"sales_order_id" gorm:"size:64;index"`
	PONumber       string     `json:"po_number" gorm:"size:64"`
	Notes          string     `json:"notes" gorm:"type:text"`
	CreatedBy      string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at" gorm:"index"`

	Children  []WorkOrder         `json:"children,omitempty" gorm:"foreignKey:ParentWOID"`
	Materials []WorkOrderMaterial `json:"materials,omitempty" gorm:"foreignKey:WorkOrderID"`
	Reports   []WorkOrderReport   `json:"reports,omitempty" gorm:"foreignKey:WorkOrderID"`
}

func (WorkOrder) TableName() string {
	return "erp_work_orders"
}

// IsMaster 是否为主工单
func (w *WorkOrder) IsMaster() bool {
	return w.ParentWOID == nil
}

// WorkOrderMaterial 工单领料需求/发料记录
type WorkOrderMaterial struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WorkOrderID  string    `json:"work_order_id" gorm:"type:uuid;not null;index"`
	MaterialID   string    `json:"material_id" gorm:"size:64;not null"`
	MaterialCode string    `json:"material_code" gorm:"size:64"`
	MaterialName string    `json:"material_name" gorm:"size:128"`
	RequiredQty  float64   `json:"required_qty" gorm:"type:decimal(12,4);not null"`
	IssuedQty    float64   `json:"issued_qty" gorm:"type:decimal(12,4);default:0"`
	Unit         string    `json:"unit" gorm:"size:20;not null;default:pcs"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (WorkOrderMaterial) TableName() string {
	return "erp_work_order_materials"
}

// WorkOrderReport 工单产出报工记录
// 子工单必须有产出报工（CompletedQty > 0）才允许流转到 COMPLETED
type WorkOrderReport struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WorkOrderID string    `json:"work_order_id" gorm:"type:uuid;not null;index"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	ScrapQty    float64   `json:"scrap_qty" gorm:"type:decimal(12,4);default:0"`
	Notes       string    `json:"notes" gorm:"type:text"`
	ReportedBy  string    `json:"reported_by" gorm:"size:64;not null"`
	ReportedAt  time.Time `json:"reported_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (WorkOrderReport) TableName() string {
	return "erp_work_order_reports"
}
