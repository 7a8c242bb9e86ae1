package handler

import (
	"errors"
	"net/http"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/apperr"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/service"
	"github.com/gin-gonic/gin"
)

// Handlers ERP HTTP处理器集合
type Handlers struct {
	BOM       *BOMHandler
	MRP       *MRPHandler
	WorkOrder *WorkOrderHandler
	Scrap     *ScrapHandler
	Inventory *InventoryHandler
	Sales     *SalesHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		BOM:       NewBOMHandler(services.BOM),
		MRP:       NewMRPHandler(services.MRP),
		WorkOrder: NewWorkOrderHandler(services.WorkOrder),
		Scrap:     NewScrapHandler(services.Scrap),
		Inventory: NewInventoryHandler(services.Inventory),
		Sales:     NewSalesHandler(services.Sales),
	}
}

// respondErr 服务层错误映射为响应码
func respondErr(c *gin.Context, err error) {
	var cyclic *apperr.CyclicBOMError
	switch {
	case errors.As(err, &cyclic):
		c.JSON(http.StatusBadRequest, gin.H{"code": 10005, "message": cyclic.Error()})
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"code": 10004, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}

func bindErr(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
}

func currentUser(c *gin.Context) string {
	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "system"
}
