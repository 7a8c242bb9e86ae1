package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移全部生产计划相关表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 主数据
		&Product{},
		&BOMItem{},
		&BlankSpec{},
		&Customer{},

		// 库存
		&StockLocation{},
		&Inventory{},
		&InventoryTransaction{},

		// MRP
		&MRPDemand{},
		&MaterialRequisition{},
		&PurchaseRequisition{},

		// 生产
		&WorkOrder{},
		&WorkOrderMaterial{},
		&WorkOrderReport{},

		// 废料
		&ScrapRecord{},
		&ScrapOrigin{},

		// 销售
		&SalesOrder{},
		&SOItem{},
	)
}
