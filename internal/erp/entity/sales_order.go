package entity

import (
	"time"
)

// SalesOrderStatus 销售订单状态
const (
	SOStatusPending   = "PENDING"
	SOStatusConfirmed = "CONFIRMED"
	SOStatusShipped   = "SHIPPED"
	SOStatusCompleted = "COMPLETED"
	SOStatusCancelled = "CANCELLED"
)

// SalesOrder 销售订单（需求来源之一，MRP可按订单下达）
type SalesOrder struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SOCode       string     `json:"so_code" gorm:"size:50;not null;uniqueIndex"`
	CustomerID   string     `json:"customer_id" gorm:"type:uuid;not null;index"`
	Status       string     `json:"status" gorm:"size:20;not null;default:PENDING"`
	OrderDate    *time.Time `json:"order_date"`
	DeliveryDate *time.Time `json:"delivery_date"` // 交期，作为MRP的默认需求日期
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []SOItem  `json:"items,omitempty" gorm:"foreignKey:SOID"`
}

func (SalesOrder) TableName() string {
	return "erp_sales_orders"
}

// SOItem 销售订单明细
type SOItem struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SOID        string    `json:"so_id" gorm:"type:uuid;not null;index"`
	ProductID   string    `json:"product_id" gorm:"type:uuid;not null"`
	ProductCode string    `json:"product_code" gorm:"size:64"`
	ProductName string    `json:"product_name" gorm:"size:128"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit        string    `json:"unit" gorm:"size:20;not null;default:pcs"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	SalesOrder *SalesOrder `json:"sales_order,omitempty" gorm:"foreignKey:SOID"`
}

func (SOItem) TableName() string {
	return "erp_so_items"
}

// Customer 客户（只读引用数据）
type Customer struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code      string     `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name      string     `json:"name" gorm:"size:200;not null"`
	Contact   string     `json:"contact" gorm:"size:64"`
	Phone     string     `json:"phone" gorm:"size:50"`
	Status    string     `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (Customer) TableName() string {
	return "erp_customers"
}
