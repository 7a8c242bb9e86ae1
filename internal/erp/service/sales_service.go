package service

import (
	"fmt"
	"time"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/apperr"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesService 销售订单服务（需求录入口，MRP按订单下达）
type SalesService struct {
	repo       *repository.SalesRepository
	bomService *BOMService
	logger     *zap.Logger
}

func NewSalesService(repo *repository.SalesRepository, bomService *BOMService, logger *zap.Logger) *SalesService {
	return &SalesService{repo: repo, bomService: bomService, logger: logger}
}

// CreateSORequest 创建销售订单
type CreateSORequest struct {
	CustomerID   string     `json:"customer_id" binding:"required"`
	OrderDate    *time.Time `json:"order_date"`
	DeliveryDate *time.Time `json:"delivery_date"`
	Notes        string     `json:"notes"`
	Items        []struct {
		ProductID string  `json:"product_id" binding:"required"`
		Quantity  float64 `json:"quantity" binding:"required"`
	} `json:"items" binding:"required"`
}

// Create 创建销售订单及明细
func (s *SalesService) Create(req *CreateSORequest, userID string) (*entity.SalesOrder, error) {
	if len(req.Items) == 0 {
		return nil, apperr.Validationf("销售订单至少需要一条明细")
	}

	so := &entity.SalesOrder{
		SOCode:       fmt.Sprintf("SO-%s-%s", time.Now().Format("20060102"), uuid.New().String()[:8]),
		CustomerID:   req.CustomerID,
		Status:       entity.SOStatusPending,
		OrderDate:    req.OrderDate,
		DeliveryDate: req.DeliveryDate,
		Notes:        req.Notes,
		CreatedBy:    userID,
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validationf("明细数量必须大于0: %v", item.Quantity)
		}
		product, err := s.bomService.GetProduct(item.ProductID)
		if err != nil {
			return nil, apperr.NotFoundf("产品 %s 不存在", item.ProductID)
		}
		so.Items = append(so.Items, entity.SOItem{
			ProductID:   product.ID,
			ProductCode: product.Code,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			Unit:        product.Unit,
		})
	}

	if err := s.repo.Create(so); err != nil {
		return nil, fmt.Errorf("创建销售订单失败: %w", err)
	}
	s.logger.Info("销售订单已创建",
		zap.String("so_code", so.SOCode),
		zap.Int("items", len(so.Items)),
	)
	return s.repo.GetByID(so.ID)
}

// Get 查询销售订单
func (s *SalesService) Get(id string) (*entity.SalesOrder, error) {
	so, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.NotFoundf("销售订单 %s 不存在", id)
	}
	return so, nil
}

// List 分页查询销售订单
func (s *SalesService) List(page, size int) ([]entity.SalesOrder, int64, error) {
	return s.repo.List(page, size)
}
