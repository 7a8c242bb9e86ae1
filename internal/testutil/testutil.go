package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_erp"
	JWTSecret  = "erp-test-jwt-secret-key-2024"
)

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "erp")
	password := getEnv("DB_PASSWORD", "erp123")
	dbname := getEnv("DB_NAME", "erp_planning")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// Create a unique test schema for isolation
	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	// First: create schema using a temporary connection
	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("database unavailable, skipping: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// Second: open connection with search_path in DSN so ALL pooled connections use test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	// Cleanup on test completion
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		// Reconnect to drop the schema
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name string, roles []string) string {
	if roles == nil {
		roles = []string{}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"dept":  "production",
		"roles": roles,
		"iss":   "erp-planning",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default admin test user
func DefaultTestToken() string {
	return GenerateTestToken("test-user-001", "Test Admin", []string{"erp_admin"})
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedProduct creates a product for tests
func SeedProduct(t *testing.T, db *gorm.DB, code, name string) *entity.Product {
	t.Helper()
	p := &entity.Product{Code: code, Name: name, Unit: "pcs", Status: "ACTIVE"}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return p
}

// SeedBlank creates a blank spec for tests
func SeedBlank(t *testing.T, db *gorm.DB, productID, subAssembly, materialID string, piecesPerSheet int) *entity.BlankSpec {
	t.Helper()
	b := &entity.BlankSpec{
		ProductID:      productID,
		SubAssembly:    subAssembly,
		BlankWidthMM:   500,
		BlankLengthMM:  600,
		ThicknessMM:    2,
		SheetWidthMM:   1220,
		SheetLengthMM:  2440,
		PiecesPerSheet: piecesPerSheet,
		SheetWeightKg:  46.7,
		ConsumptionPct: 80,
		DensityKgM3:    7850,
		CutDirection:   entity.CutAlongLength,
		MaterialID:     materialID,
		MaterialCode:   materialID,
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("Failed to seed blank spec: %v", err)
	}
	return b
}

// SeedBOMItem creates a BOM row for tests
func SeedBOMItem(t *testing.T, db *gorm.DB, item *entity.BOMItem) *entity.BOMItem {
	t.Helper()
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to seed BOM item: %v", err)
	}
	return item
}

// SeedInventory adds stock at a location for tests
func SeedInventory(t *testing.T, db *gorm.DB, materialID, locationID string, qty float64) *entity.Inventory {
	t.Helper()
	inv := &entity.Inventory{
		MaterialID:   materialID,
		MaterialCode: materialID,
		LocationID:   locationID,
		Quantity:     qty,
		AvailableQty: qty,
		Unit:         "pcs",
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("Failed to seed inventory: %v", err)
	}
	return inv
}

// SeedLocation creates a stock location for tests
func SeedLocation(t *testing.T, db *gorm.DB, code, kind string) *entity.StockLocation {
	t.Helper()
	loc := &entity.StockLocation{Code: code, Name: code, Kind: kind, Status: "ACTIVE"}
	if err := db.Create(loc).Error; err != nil {
		t.Fatalf("Failed to seed location: %v", err)
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
