package service

import (
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/audit"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/mirror"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	BOM       *BOMService
	MRP       *MRPService
	WorkOrder *WorkOrderService
	Scrap     *ScrapService
	Inventory *InventoryService
	Sales     *SalesService
}

// NewServices 创建所有服务，rdb/archiver/mirror 允许为nil（降级运行）
func NewServices(repos *repository.Repositories, rdb *redis.Client, archiver *audit.Archiver,
	mc *mirror.Client, logger *zap.Logger) *Services {
	bomService := NewBOMService(repos.Product, rdb, archiver, logger)
	invService := NewInventoryService(repos.Inventory, logger)
	scrapService := NewScrapService(repos.Scrap, repos.WorkOrder, bomService, logger)
	return &Services{
		BOM:       bomService,
		MRP:       NewMRPService(repos.Requisition, repos.Inventory, repos.Sales, bomService, mc, logger),
		WorkOrder: NewWorkOrderService(repos.WorkOrder, bomService, invService, scrapService, logger),
		Scrap:     scrapService,
		Inventory: invService,
		Sales:     NewSalesService(repos.Sales, bomService, logger),
	}
}
