package handler

import (
	"strconv"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type WorkOrderHandler struct {
	svc *service.WorkOrderService
}

func NewWorkOrderHandler(svc *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc}
}

// CreateMaster POST /api/v1/work-orders
func (h *WorkOrderHandler) CreateMaster(c *gin.Context) {
	var req service.CreateMasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	wo, err := h.svc.CreateMaster(&req, currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, wo)
}

// CreateChild POST /api/v1/work-orders/:id/children
func (h *WorkOrderHandler) CreateChild(c *gin.Context) {
	var req service.CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	req.ParentWOID = c.Param("id")
	wo, err := h.svc.CreateChild(&req, currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, wo)
}

// Get GET /api/v1/work-orders/:id
func (h *WorkOrderHandler) Get(c *gin.Context) {
	wo, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, wo)
}

// List GET /api/v1/work-orders
func (h *WorkOrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.WOListParams{
		Status:      c.Query("status"),
		Operation:   c.Query("operation"),
		ProductID:   c.Query("product_id"),
		ParentWOID:  c.Query("parent_wo_id"),
		Keyword:     c.Query("keyword"),
		MastersOnly: c.Query("masters_only") == "true",
		Page:        page,
		Size:        size,
	}
	wos, total, err := h.svc.List(params)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"items": wos, "total": total, "page": page, "size": size})
}

// UpdateStatus PUT /api/v1/work-orders/:id/status
func (h *WorkOrderHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	result, err := h.svc.UpdateStatus(c.Param("id"), req.Status, currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, result)
}

// TriggerNext POST /api/v1/work-orders/:id/trigger-next
func (h *WorkOrderHandler) TriggerNext(c *gin.Context) {
	triggered, err := h.svc.TriggerNext(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, triggered)
}

// CheckDependencies GET /api/v1/work-orders/:id/dependencies
func (h *WorkOrderHandler) CheckDependencies(c *gin.Context) {
	status, err := h.svc.CheckDependencies(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, status)
}

// IssueMaterials POST /api/v1/work-orders/:id/issue
func (h *WorkOrderHandler) IssueMaterials(c *gin.Context) {
	var req service.IssueMaterialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	wo, err := h.svc.IssueMaterials(c.Param("id"), &req, currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, wo)
}

// RecordOutput POST /api/v1/work-orders/:id/reports
func (h *WorkOrderHandler) RecordOutput(c *gin.Context) {
	var req service.RecordOutputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	wo, err := h.svc.RecordOutput(c.Param("id"), &req, currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, wo)
}

// Delete DELETE /api/v1/work-orders/:id
func (h *WorkOrderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, nil)
}
