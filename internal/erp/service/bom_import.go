package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/apperr"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ImportResult BOM导入结果
type ImportResult struct {
	ProductID string   `json:"product_id"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

// ImportBOM 从Excel(.xlsx)或CSV文件导入产品BOM，整表替换
// 列顺序：类型 物料编码 物料名称 单位用量 损耗率 单位 单价 关键件 子装配 工步 子产品编码
func (s *BOMService) ImportBOM(ctx context.Context, productID string, r io.Reader, filename string) (*ImportResult, error) {
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return nil, apperr.NotFoundf("产品 %s 不存在", productID)
	}

	var rows [][]string
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		rows, err = readXLSX(r)
	} else {
		rows, err = readCSV(r)
	}
	if err != nil {
		return nil, apperr.Validationf("解析文件失败: %v", err)
	}
	if len(rows) < 2 {
		return nil, apperr.Validationf("文件不含有效数据行")
	}

	blanks, err := s.repo.GetBlankSpecs(product.ID)
	if err != nil {
		return nil, fmt.Errorf("读取下料规格失败: %w", err)
	}

	result := &ImportResult{ProductID: productID}
	var items []entity.BOMItem
	for i, row := range rows[1:] { // 跳过表头
		item, err := parseBOMRow(s, product.ID, row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: %v", i+2, err))
			continue
		}
		if item.ItemType == entity.ItemTypeCutPart {
			blank, ok := matchBlank(blanks, item.SubAssembly)
			if !ok {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 子装配 %q 无下料规格", i+2, item.SubAssembly))
				continue
			}
			item.BlankID = &blank.ID
		}
		item.StepSeq = len(items) + 1
		items = append(items, *item)
	}
	if len(items) == 0 {
		return nil, apperr.Validationf("没有可导入的BOM行: %s", strings.Join(result.Errors, "; "))
	}

	if err := s.repo.ReplaceBOM(product.ID, items, nil); err != nil {
		return nil, fmt.Errorf("写入BOM失败: %w", err)
	}
	s.clearBOMCache(ctx, product.ID)
	result.Imported = len(items)

	s.logger.Info("BOM导入完成",
		zap.String("product_id", product.ID),
		zap.String("file", filename),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("工作簿为空")
	}
	return f.GetRows(sheets[0])
}

// readCSV 非UTF-8内容按GBK解码（国内Excel导出的常见编码）
func readCSV(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(raw) {
		decoded, derr := io.ReadAll(transform.NewReader(strings.NewReader(string(raw)), simplifiedchinese.GBK.NewDecoder()))
		if derr != nil {
			return nil, fmt.Errorf("GBK解码失败: %w", derr)
		}
		raw = decoded
	}
	return parseCSVBytes(raw)
}

func parseCSVBytes(raw []byte) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func parseBOMRow(s *BOMService, productID string, row []string) (*entity.BOMItem, error) {
	if len(row) < 4 {
		return nil, fmt.Errorf("列数不足")
	}
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	itemType := strings.ToUpper(cell(0))
	switch itemType {
	case entity.ItemTypeCutPart, entity.ItemTypeBoughtOut, entity.ItemTypeConsumable, entity.ItemTypeSubAssembly:
	default:
		return nil, fmt.Errorf("无效类型 %q", cell(0))
	}

	qty, err := strconv.ParseFloat(cell(3), 64)
	if err != nil || qty <= 0 {
		return nil, fmt.Errorf("单位用量无效 %q", cell(3))
	}
	scrapPct, _ := strconv.ParseFloat(cell(4), 64)
	unitCost, _ := strconv.ParseFloat(cell(6), 64)
	critical := cell(7) == "是" || strings.EqualFold(cell(7), "Y") || strings.EqualFold(cell(7), "true")

	item := &entity.BOMItem{
		ProductID:         productID,
		ItemType:          itemType,
		MaterialCode:      cell(1),
		MaterialName:      cell(2),
		QtyPerUnit:        qty,
		ScrapAllowancePct: scrapPct,
		Unit:              cell(5),
		UnitCost:          unitCost,
		IsCritical:        critical,
		SubAssembly:       cell(8),
	}

	if itemType == entity.ItemTypeSubAssembly {
		childCode := cell(10)
		if childCode == "" {
			return nil, fmt.Errorf("子装配行缺少子产品编码")
		}
		child, err := s.repo.GetByCode(childCode)
		if err != nil {
			return nil, fmt.Errorf("子产品编码 %q 不存在", childCode)
		}
		item.ChildProductID = &child.ID
	} else {
		if item.MaterialCode == "" {
			return nil, fmt.Errorf("物料编码不能为空")
		}
		item.MaterialID = item.MaterialCode
	}
	return item, nil
}

func matchBlank(blanks []entity.BlankSpec, subAssembly string) (entity.BlankSpec, bool) {
	for _, b := range blanks {
		if b.SubAssembly == subAssembly {
			return b, true
		}
	}
	for _, b := range blanks {
		if hasPrefixFold(b.SubAssembly, subAssembly) || hasPrefixFold(subAssembly, b.SubAssembly) {
			return b, true
		}
	}
	return entity.BlankSpec{}, false
}
