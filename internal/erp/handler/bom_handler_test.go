package handler

import (
	"net/http"
	"testing"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/service"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupBOMRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, nil, nil, nil, zap.NewNop())
	handlers := NewHandlers(services)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	bom := api.Group("/bom")
	bom.POST("/:productId/explode", handlers.BOM.Explode)
	return r, db
}

func TestExplodeEndpoint(t *testing.T) {
	r, db := setupBOMRouter(t)
	p := testutil.SeedProduct(t, db, "TANK-01", "储罐总成")
	testutil.SeedBOMItem(t, db, &entity.BOMItem{
		ProductID:    p.ID,
		ItemType:     entity.ItemTypeBoughtOut,
		MaterialID:   "M-BOLT",
		MaterialCode: "M-BOLT",
		QtyPerUnit:   4,
		UnitCost:     0.8,
	})

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/bom/"+p.ID+"/explode?quantity=25", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 0 {
		t.Errorf("envelope code = %v, want 0", resp["code"])
	}
	data := resp["data"].(map[string]interface{})
	summary := data["summary"].(map[string]interface{})
	if summary["total_items"].(float64) != 1 {
		t.Errorf("summary total_items = %v, want 1", summary["total_items"])
	}
}

func TestExplodeEndpointUnauthorized(t *testing.T) {
	r, _ := setupBOMRouter(t)
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/bom/some-id/explode", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestExplodeEndpointNotFound(t *testing.T) {
	r, _ := setupBOMRouter(t)
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/bom/b6f1f6ce-0000-4000-8000-000000000000/explode", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 10002 {
		t.Errorf("envelope code = %v, want 10002", resp["code"])
	}
}

func TestExplodeEndpointCycle(t *testing.T) {
	r, db := setupBOMRouter(t)
	a := testutil.SeedProduct(t, db, "ASSY-A", "总成A")
	b := testutil.SeedProduct(t, db, "ASSY-B", "总成B")
	testutil.SeedBOMItem(t, db, &entity.BOMItem{
		ProductID:      a.ID,
		ItemType:       entity.ItemTypeSubAssembly,
		ChildProductID: &b.ID,
		QtyPerUnit:     1,
	})
	testutil.SeedBOMItem(t, db, &entity.BOMItem{
		ProductID:      b.ID,
		ItemType:       entity.ItemTypeSubAssembly,
		ChildProductID: &a.ID,
		QtyPerUnit:     1,
	})

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/bom/"+a.ID+"/explode", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 10005 {
		t.Errorf("envelope code = %v, want 10005", resp["code"])
	}
}
