package entity

import (
	"time"
)

// BOMItemType BOM行类型
const (
	ItemTypeCutPart     = "CUT_PART"     // 下料件（从板材裁切）
	ItemTypeBoughtOut   = "BOUGHT_OUT"   // 外购件
	ItemTypeConsumable  = "CONSUMABLE"   // 辅料耗材
	ItemTypeSubAssembly = "SUB_ASSEMBLY" // 子装配（引用另一产品）
)

// CuttingDirection 裁切方向
const (
	CutAlongWidth  = "WIDTH"
	CutAlongLength = "LENGTH"
)

// DefaultSteelDensity 普通碳钢密度 kg/m³，下料规格未标定密度时使用
const DefaultSteelDensity = 7850.0

// Product 产品主数据（只读引用，CRUD由主数据模块维护）
type Product struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code      string     `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	Unit      string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	Status    string     `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	BOMItems []BOMItem   `json:"bom_items,omitempty" gorm:"foreignKey:ProductID"`
	Blanks   []BlankSpec `json:"blanks,omitempty" gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string {
	return "erp_products"
}

// BOMItem BOM行项
// 不变式: QtyPerUnit > 0；SUB_ASSEMBLY 行必须引用另一产品且不得指回祖先（展开时做环检测）
type BOMItem struct {
	ID                string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProductID         string     `json:"product_id" gorm:"type:uuid;not null;index"`
	ItemType          string     `json:"item_type" gorm:"size:20;not null"`
	BlankID           *string    `json:"blank_id" gorm:"type:uuid"`         // CUT_PART 行引用的下料规格
	ChildProductID    *string    `json:"child_product_id" gorm:"type:uuid"` // SUB_ASSEMBLY 行引用的子产品
	MaterialID        string     `json:"material_id" gorm:"size:64;index"`  // 叶子物料（MRP核算对象）
	MaterialCode      string     `json:"material_code" gorm:"size:64"`
	MaterialName      string     `json:"material_name" gorm:"size:128"`
	QtyPerUnit        float64    `json:"qty_per_unit" gorm:"type:decimal(12,4);not null"`
	ScrapAllowancePct float64    `json:"scrap_allowance_pct" gorm:"type:decimal(6,2);default:0"`
	UnitCost          float64    `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	Unit              string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	IsCritical        bool       `json:"is_critical" gorm:"default:false"`
	SubAssembly       string     `json:"sub_assembly" gorm:"size:128"` // 所属子装配名称
	StepSeq           int        `json:"step_seq" gorm:"default:0"`    // 工序顺序号
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at" gorm:"index"`
}

func (BOMItem) TableName() string {
	return "erp_bom_items"
}

// BlankSpec 下料件裁切规格（展开与废料计算的几何依据，展开期间只读）
type BlankSpec struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProductID      string     `json:"product_id" gorm:"type:uuid;not null;index"`
	SubAssembly    string     `json:"sub_assembly" gorm:"size:128;not null"`
	BlankWidthMM   float64    `json:"blank_width_mm" gorm:"type:decimal(10,2);not null"`
	BlankLengthMM  float64    `json:"blank_length_mm" gorm:"type:decimal(10,2);not null"`
	ThicknessMM    float64    `json:"thickness_mm" gorm:"type:decimal(10,2);not null"`
	SheetWidthMM   float64    `json:"sheet_width_mm" gorm:"type:decimal(10,2);not null"`
	SheetLengthMM  float64    `json:"sheet_length_mm" gorm:"type:decimal(10,2);not null"`
	PiecesPerSheet int        `json:"pieces_per_sheet" gorm:"not null;default:1"`
	SheetWeightKg  float64    `json:"sheet_weight_kg" gorm:"type:decimal(10,3);default:0"`
	ConsumptionPct float64    `json:"consumption_pct" gorm:"type:decimal(6,2);default:0"` // 0 表示无利用率数据，回退几何算法
	DensityKgM3    float64    `json:"density_kg_m3" gorm:"type:decimal(10,2);default:7850"`
	CutDirection   string     `json:"cut_direction" gorm:"size:10;default:LENGTH"`
	MaterialID     string     `json:"material_id" gorm:"size:64;not null;index"` // 原材料板材
	MaterialCode   string     `json:"material_code" gorm:"size:64"`
	MaterialName   string     `json:"material_name" gorm:"size:128"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at" gorm:"index"`
}

func (BlankSpec) TableName() string {
	return "erp_blank_specs"
}
