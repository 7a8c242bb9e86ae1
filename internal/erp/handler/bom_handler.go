package handler

import (
	"strconv"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type BOMHandler struct {
	svc *service.BOMService
}

func NewBOMHandler(svc *service.BOMService) *BOMHandler {
	return &BOMHandler{svc: svc}
}

// Explode POST /api/v1/bom/:productId/explode?quantity=25
func (h *BOMHandler) Explode(c *gin.Context) {
	qty, err := strconv.ParseFloat(c.DefaultQuery("quantity", "1"), 64)
	if err != nil {
		bindErr(c, err)
		return
	}
	result, err := h.svc.Explode(c.Request.Context(), c.Param("productId"), qty)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, result)
}

// Import POST /api/v1/bom/:productId/import (multipart file)
func (h *BOMHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		bindErr(c, err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		bindErr(c, err)
		return
	}
	defer f.Close()

	result, err := h.svc.ImportBOM(c.Request.Context(), c.Param("productId"), f, fileHeader.Filename)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, result)
}
