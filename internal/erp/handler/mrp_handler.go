package handler

import (
	"strconv"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type MRPHandler struct {
	svc *service.MRPService
}

func NewMRPHandler(svc *service.MRPService) *MRPHandler {
	return &MRPHandler{svc: svc}
}

// Run POST /api/v1/mrp/run
func (h *MRPHandler) Run(c *gin.Context) {
	var req service.RunMRPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	result, err := h.svc.Run(c.Request.Context(), &req, currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, result)
}

// GetDemand GET /api/v1/mrp/demands/:id
func (h *MRPHandler) GetDemand(c *gin.Context) {
	result, err := h.svc.GetDemand(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, result)
}

// ListDemands GET /api/v1/mrp/demands
func (h *MRPHandler) ListDemands(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	demands, total, err := h.svc.ListDemands(page, size)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"items": demands, "total": total, "page": page, "size": size})
}

// GeneratePRs POST /api/v1/mrp/demands/:id/purchase-requisitions
func (h *MRPHandler) GeneratePRs(c *gin.Context) {
	prs, err := h.svc.GeneratePurchaseRequisitions(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, prs)
}

// ListPRs GET /api/v1/mrp/purchase-requisitions
func (h *MRPHandler) ListPRs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	prs, total, err := h.svc.ListPurchaseRequisitions(c.Query("source_id"), page, size)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"items": prs, "total": total, "page": page, "size": size})
}
