package handler

import (
	"strconv"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// List GET /api/v1/inventory
func (h *InventoryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.InventoryListParams{
		MaterialID: c.Query("material_id"),
		LocationID: c.Query("location_id"),
		Keyword:    c.Query("keyword"),
		Page:       page,
		Size:       size,
	}
	items, total, err := h.svc.List(params)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"items": items, "total": total, "page": page, "size": size})
}

// GetAvailable GET /api/v1/inventory/:materialId/available
func (h *InventoryHandler) GetAvailable(c *gin.Context) {
	available, err := h.svc.GetAvailable(c.Param("materialId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"material_id": c.Param("materialId"), "available_qty": available})
}

// Inbound POST /api/v1/inventory/inbound
func (h *InventoryHandler) Inbound(c *gin.Context) {
	var req service.InboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	inv, err := h.svc.Inbound(&req, currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, inv)
}

// ListTransactions GET /api/v1/inventory/transactions
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	txs, total, err := h.svc.ListTransactions(c.Query("material_id"), page, size)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"items": txs, "total": total, "page": page, "size": size})
}
