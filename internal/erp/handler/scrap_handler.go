package handler

import (
	"strconv"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type ScrapHandler struct {
	svc *service.ScrapService
}

func NewScrapHandler(svc *service.ScrapService) *ScrapHandler {
	return &ScrapHandler{svc: svc}
}

// List GET /api/v1/scrap
func (h *ScrapHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.ScrapListParams{
		MaterialID: c.Query("material_id"),
		Status:     c.Query("status"),
		Page:       page,
		Size:       size,
	}
	records, total, err := h.svc.List(params)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"items": records, "total": total, "page": page, "size": size})
}

// ListByWorkOrder GET /api/v1/scrap/work-orders/:id
func (h *ScrapHandler) ListByWorkOrder(c *gin.Context) {
	records, err := h.svc.ListByWorkOrder(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, records)
}

// Preview GET /api/v1/scrap/work-orders/:id/preview?blank_id=xxx&sheets=6
func (h *ScrapHandler) Preview(c *gin.Context) {
	sheets, err := strconv.Atoi(c.DefaultQuery("sheets", "1"))
	if err != nil {
		bindErr(c, err)
		return
	}
	data, err := h.svc.GenerateFromCutting(c.Param("id"), c.Query("blank_id"), sheets)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, data)
}

// Regenerate POST /api/v1/scrap/work-orders/:id/regenerate
// 幂等：已生成过的工单直接返回既有记录
func (h *ScrapHandler) Regenerate(c *gin.Context) {
	if err := h.svc.ProcessCuttingCompletion(c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	records, err := h.svc.ListByWorkOrder(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, records)
}
