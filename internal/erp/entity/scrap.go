package entity

import (
	"time"
)

// ScrapStatus 废料状态
const (
	ScrapStatusAvailable = "AVAILABLE" // 可回用
	ScrapStatusConsumed  = "CONSUMED"  // 已消耗
)

// ScrapRecord 废料库存记录
// 不变式: 每 (来源工单, 物料) 至多一条，唯一索引兜底幂等探测的并发竞争
// 不走软删除：删除标记会占住唯一索引槽位，永久堵死该工单物料的再生成
type ScrapRecord struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MaterialID    string    `json:"material_id" gorm:"size:64;not null;index;uniqueIndex:ux_scrap_wo_material"`
	MaterialCode  string    `json:"material_code" gorm:"size:64"`
	MaterialName  string    `json:"material_name" gorm:"size:128"`
	WeightKg      float64   `json:"weight_kg" gorm:"type:decimal(12,2);not null"`
	SheetCount    int       `json:"sheet_count" gorm:"default:0"`
	Status        string    `json:"status" gorm:"size:20;not null;default:AVAILABLE"`
	ReferenceWOID string    `json:"reference_wo_id" gorm:"type:uuid;not null;index;uniqueIndex:ux_scrap_wo_material"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Origin *ScrapOrigin `json:"origin,omitempty" gorm:"foreignKey:ScrapRecordID"`
}

func (ScrapRecord) TableName() string {
	return "erp_scrap_records"
}

// ScrapOrigin 废料来源审计，与废料记录一对一
// 同一物料有多个子装配贡献时只行级记录第一个，其余汇总在 Contributors JSON 中
type ScrapOrigin struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ScrapRecordID string    `json:"scrap_record_id" gorm:"type:uuid;not null;uniqueIndex"`
	SubAssembly   string    `json:"sub_assembly" gorm:"size:128"`
	BlankID       string    `json:"blank_id" gorm:"type:uuid"`
	SheetsUsed    int       `json:"sheets_used" gorm:"default:0"`
	Contributors  string    `json:"contributors" gorm:"type:text"` // 全部贡献子装配的JSON汇总
	CreatedAt     time.Time `json:"created_at"`
}

func (ScrapOrigin) TableName() string {
	return "erp_scrap_origins"
}
