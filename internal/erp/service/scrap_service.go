package service

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/apperr"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ScrapService 下料废料服务
type ScrapService struct {
	repo       *repository.ScrapRepository
	woRepo     *repository.WorkOrderRepository
	bomService *BOMService
	logger     *zap.Logger
}

func NewScrapService(repo *repository.ScrapRepository, woRepo *repository.WorkOrderRepository, bomService *BOMService, logger *zap.Logger) *ScrapService {
	return &ScrapService{repo: repo, woRepo: woRepo, bomService: bomService, logger: logger}
}

// BlankUsage 下料规格与其BOM单位用量
type BlankUsage struct {
	Blank       entity.BlankSpec
	QtyPerUnit  float64
	SubAssembly string
}

// ScrapContributor 单条下料规格对废料重量的贡献
type ScrapContributor struct {
	SubAssembly string  `json:"sub_assembly"`
	BlankID     string  `json:"blank_id"`
	Sheets      int     `json:"sheets"`
	WeightKg    float64 `json:"weight_kg"`
}

// ScrapAggregate 按板材物料汇总的废料
type ScrapAggregate struct {
	MaterialID   string             `json:"material_id"`
	MaterialCode string             `json:"material_code"`
	MaterialName string             `json:"material_name"`
	WeightKg     float64            `json:"weight_kg"`
	Sheets       int                `json:"sheets"`
	Contributors []ScrapContributor `json:"contributors"`
}

// CalculateCuttingScrap 纯计算：按工单数量推算每种板材的废料重量
// 优先使用标定的材料利用率，缺省时退回排样几何估算
func CalculateCuttingScrap(woQuantity float64, usages []BlankUsage) []ScrapAggregate {
	byMaterial := map[string]*ScrapAggregate{}
	var order []string

	for _, u := range usages {
		b := u.Blank
		if b.PiecesPerSheet <= 0 || u.QtyPerUnit <= 0 {
			continue
		}
		blanksNeeded := woQuantity * u.QtyPerUnit
		sheets := int(math.Ceil(blanksNeeded / float64(b.PiecesPerSheet)))
		perSheet := scrapWeightPerSheet(b)
		weight := decimal.NewFromFloat(perSheet).Mul(decimal.NewFromInt(int64(sheets))).Round(2)
		wf, _ := weight.Float64()

		agg, ok := byMaterial[b.MaterialID]
		if !ok {
			agg = &ScrapAggregate{
				MaterialID:   b.MaterialID,
				MaterialCode: b.MaterialCode,
				MaterialName: b.MaterialName,
			}
			byMaterial[b.MaterialID] = agg
			order = append(order, b.MaterialID)
		}
		total := decimal.NewFromFloat(agg.WeightKg).Add(decimal.NewFromFloat(wf)).Round(2)
		agg.WeightKg, _ = total.Float64()
		agg.Sheets += sheets
		agg.Contributors = append(agg.Contributors, ScrapContributor{
			SubAssembly: u.SubAssembly,
			BlankID:     b.ID,
			Sheets:      sheets,
			WeightKg:    wf,
		})
	}

	result := make([]ScrapAggregate, 0, len(order))
	for _, id := range order {
		result = append(result, *byMaterial[id])
	}
	return result
}

// scrapWeightPerSheet 单张板的废料重量（kg）
func scrapWeightPerSheet(b entity.BlankSpec) float64 {
	if b.ConsumptionPct > 0 && b.SheetWeightKg > 0 {
		w := decimal.NewFromFloat(b.SheetWeightKg).
			Mul(decimal.NewFromFloat(100 - b.ConsumptionPct)).
			Div(decimal.NewFromInt(100)).Round(4)
		f, _ := w.Float64()
		return f
	}
	return geometricScrapPerSheet(b)
}

// geometricScrapPerSheet 按排样余料条带估算：板宽方向排 floor(板宽/坯料宽)，
// 板长方向排 floor(板长/坯料长)，剩余两条L形条带折算体积×密度
func geometricScrapPerSheet(b entity.BlankSpec) float64 {
	if b.BlankWidthMM <= 0 || b.BlankLengthMM <= 0 || b.SheetWidthMM <= 0 || b.SheetLengthMM <= 0 {
		return 0
	}
	across := math.Floor(b.SheetWidthMM / b.BlankWidthMM)
	along := math.Floor(b.SheetLengthMM / b.BlankLengthMM)
	if across < 1 || along < 1 {
		// 坯料放不进整板，视为整板报废
		return sheetWeight(b, b.SheetWidthMM*b.SheetLengthMM)
	}
	stripW := b.SheetWidthMM - across*b.BlankWidthMM   // 宽方向余料条
	stripL := b.SheetLengthMM - along*b.BlankLengthMM  // 长方向余料条
	areaMM2 := stripW*b.SheetLengthMM + stripL*(b.SheetWidthMM-stripW)
	return sheetWeight(b, areaMM2)
}

func sheetWeight(b entity.BlankSpec, areaMM2 float64) float64 {
	density := b.DensityKgM3
	if density <= 0 {
		density = entity.DefaultSteelDensity
	}
	volumeM3 := areaMM2 / 1e6 * b.ThicknessMM / 1000
	w := decimal.NewFromFloat(volumeM3 * density).Round(4)
	f, _ := w.Float64()
	return f
}

// GenerateFromCutting 预览某下料工单按指定规格加工指定张数产生的废料，纯计算不落库
func (s *ScrapService) GenerateFromCutting(woID, blankID string, sheetsProcessed int) (*ScrapContributor, error) {
	if sheetsProcessed <= 0 {
		return nil, apperr.Validationf("加工张数必须大于0: %d", sheetsProcessed)
	}
	wo, err := s.woRepo.GetByID(woID)
	if err != nil {
		return nil, apperr.NotFoundf("工单 %s 不存在", woID)
	}
	if wo.OperationType != entity.OpCutting {
		return nil, apperr.Validationf("工单 %s 不是下料工单", wo.WONumber)
	}
	blank, err := s.bomService.GetBlank(blankID)
	if err != nil {
		return nil, apperr.NotFoundf("下料规格 %s 不存在", blankID)
	}
	w := decimal.NewFromFloat(scrapWeightPerSheet(*blank)).
		Mul(decimal.NewFromInt(int64(sheetsProcessed))).Round(2)
	wf, _ := w.Float64()
	return &ScrapContributor{
		SubAssembly: blank.SubAssembly,
		BlankID:     blank.ID,
		Sheets:      sheetsProcessed,
		WeightKg:    wf,
	}, nil
}

// ProcessCuttingCompletion 下料工单完工时生成废料记录
// 幂等：同一工单只生成一次，事务内先查后插，配合唯一索引兜底并发
func (s *ScrapService) ProcessCuttingCompletion(woID string) error {
	wo, err := s.woRepo.GetByID(woID)
	if err != nil {
		return apperr.NotFoundf("工单 %s 不存在", woID)
	}
	if wo.OperationType != entity.OpCutting {
		return apperr.Validationf("工单 %s 不是下料工单", wo.WONumber)
	}
	if wo.Status != entity.WOStatusCompleted {
		return apperr.Validationf("工单 %s 尚未完工", wo.WONumber)
	}

	usages, err := s.bomService.GetBlanksWithQty(wo.ProductID)
	if err != nil {
		return err
	}
	aggregates := CalculateCuttingScrap(wo.Quantity, usages)
	if len(aggregates) == 0 {
		s.logger.Info("下料工单无可计算的废料", zap.String("wo", wo.WONumber))
		return nil
	}

	return s.repo.DB().Transaction(func(tx *gorm.DB) error {
		exists, err := s.repo.ExistsForWorkOrder(tx, wo.ID)
		if err != nil {
			return fmt.Errorf("查询废料记录失败: %w", err)
		}
		if exists {
			s.logger.Info("工单废料已生成，跳过", zap.String("wo", wo.WONumber))
			return nil
		}
		for _, agg := range aggregates {
			record := &entity.ScrapRecord{
				MaterialID:    agg.MaterialID,
				MaterialCode:  agg.MaterialCode,
				MaterialName:  agg.MaterialName,
				WeightKg:      agg.WeightKg,
				SheetCount:    agg.Sheets,
				ReferenceWOID: wo.ID,
				Status:        entity.ScrapStatusAvailable,
			}
			if err := s.repo.CreateRecord(tx, record); err != nil {
				return fmt.Errorf("创建废料记录失败: %w", err)
			}
			// 行级只记第一个贡献子装配，其余汇总在 Contributors JSON
			contributors, _ := json.Marshal(agg.Contributors)
			origin := &entity.ScrapOrigin{
				ScrapRecordID: record.ID,
				SubAssembly:   agg.Contributors[0].SubAssembly,
				BlankID:       agg.Contributors[0].BlankID,
				SheetsUsed:    agg.Sheets,
				Contributors:  string(contributors),
			}
			if err := s.repo.CreateOrigin(tx, origin); err != nil {
				return fmt.Errorf("创建废料来源失败: %w", err)
			}
		}
		s.logger.Info("下料废料已生成",
			zap.String("wo", wo.WONumber),
			zap.Int("materials", len(aggregates)),
		)
		return nil
	})
}

// ListByWorkOrder 查询工单的废料记录
func (s *ScrapService) ListByWorkOrder(woID string) ([]entity.ScrapRecord, error) {
	return s.repo.GetByWorkOrder(woID)
}

// List 分页查询废料记录
func (s *ScrapService) List(params repository.ScrapListParams) ([]entity.ScrapRecord, int64, error) {
	return s.repo.List(params)
}
