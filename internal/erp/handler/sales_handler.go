package handler

import (
	"strconv"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	svc *service.SalesService
}

func NewSalesHandler(svc *service.SalesService) *SalesHandler {
	return &SalesHandler{svc: svc}
}

// Create POST /api/v1/sales-orders
func (h *SalesHandler) Create(c *gin.Context) {
	var req service.CreateSORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	so, err := h.svc.Create(&req, currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, so)
}

// Get GET /api/v1/sales-orders/:id
func (h *SalesHandler) Get(c *gin.Context) {
	so, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, so)
}

// List GET /api/v1/sales-orders
func (h *SalesHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	sos, total, err := h.svc.List(page, size)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"items": sos, "total": total, "page": page, "size": size})
}
