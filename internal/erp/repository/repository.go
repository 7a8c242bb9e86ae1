package repository

import "gorm.io/gorm"

// Repositories 生产计划引擎的仓库集合
type Repositories struct {
	Product     *ProductRepository
	WorkOrder   *WorkOrderRepository
	Requisition *RequisitionRepository
	Scrap       *ScrapRepository
	Inventory   *InventoryRepository
	Sales       *SalesRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:     NewProductRepository(db),
		WorkOrder:   NewWorkOrderRepository(db),
		Requisition: NewRequisitionRepository(db),
		Scrap:       NewScrapRepository(db),
		Inventory:   NewInventoryRepository(db),
		Sales:       NewSalesRepository(db),
	}
}
