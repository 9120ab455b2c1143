package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/elameta/quoteregistry/pkg/enums"
)

// Position is one quotation entry for a client part: geometry, coating
// process parameters, commercial terms and the cached current price.
type Position struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Client  string `gorm:"column:client;size:255;not null;default:'';index"`
	Project string `gorm:"column:project;size:255;not null;default:''"`
	Code    string `gorm:"column:code;size:255;not null;default:'';index"`
	Name    string `gorm:"column:name;size:255;not null;default:''"`

	Metal          string              `gorm:"column:metal;size:255;not null;default:''"`
	MetalThickness decimal.NullDecimal `gorm:"column:metal_thickness;type:numeric(10,2)"`
	Area           decimal.NullDecimal `gorm:"column:area;type:numeric(12,4)"`
	Weight         decimal.NullDecimal `gorm:"column:weight;type:numeric(12,4)"`
	XMM            decimal.NullDecimal `gorm:"column:x_mm;type:numeric(10,2)"`
	YMM            decimal.NullDecimal `gorm:"column:y_mm;type:numeric(10,2)"`
	ZMM            decimal.NullDecimal `gorm:"column:z_mm;type:numeric(10,2)"`

	ServiceKTL    bool `gorm:"column:service_ktl;not null;default:false"`
	ServicePowder bool `gorm:"column:service_powder;not null;default:false"`
	ServicePrep   bool `gorm:"column:service_prep;not null;default:false"`

	KTLHangingMethod      enums.HangingMethod `gorm:"column:ktl_hanging_method;size:32;not null;default:''"`
	KTLFrameHanging       string              `gorm:"column:ktl_frame_hanging;size:255;not null;default:''"`
	KTLPartsPerFrame      *int                `gorm:"column:ktl_parts_per_frame"`
	KTLActualPerFrame     *int                `gorm:"column:ktl_actual_per_frame"`
	KTLLengthMM           decimal.NullDecimal `gorm:"column:ktl_length_mm;type:numeric(10,1)"`
	KTLHeightMM           decimal.NullDecimal `gorm:"column:ktl_height_mm;type:numeric(10,1)"`
	KTLDepthMM            decimal.NullDecimal `gorm:"column:ktl_depth_mm;type:numeric(10,1)"`
	KTLDimensionProduct   decimal.NullDecimal `gorm:"column:ktl_dimension_product;type:numeric(20,3)"`
	KTLHangingDescription string              `gorm:"column:ktl_hanging_description;type:text;not null;default:''"`
	KTLThicknessUM        decimal.NullDecimal `gorm:"column:ktl_thickness_um;type:numeric(10,1)"`
	KTLThicknessText      string              `gorm:"column:ktl_thickness_txt;size:64;not null;default:''"`
	KTLNotes              string              `gorm:"column:ktl_notes;type:text;not null;default:''"`

	PowderQtyPerHour         decimal.NullDecimal `gorm:"column:powder_qty_per_hour;type:numeric(10,1)"`
	PowderActualPerHour      decimal.NullDecimal `gorm:"column:powder_actual_per_hour;type:numeric(10,1)"`
	PowderPartsPerFrame      *int                `gorm:"column:powder_parts_per_frame"`
	PowderActualPerFrame     *int                `gorm:"column:powder_actual_per_frame"`
	PowderHangingDescription string              `gorm:"column:powder_hanging_description;type:text;not null;default:''"`
	PowderThicknessUM        decimal.NullDecimal `gorm:"column:powder_thickness_um;type:numeric(10,1)"`
	PowderThicknessText      string              `gorm:"column:powder_thickness_txt;size:64;not null;default:''"`
	PowderNotes              string              `gorm:"column:powder_notes;type:text;not null;default:''"`
	PowderCode               string              `gorm:"column:powder_code;size:255;not null;default:''"`
	PowderColor              string              `gorm:"column:powder_color;size:255;not null;default:''"`
	PowderSupplier           string              `gorm:"column:powder_supplier;size:255;not null;default:''"`
	PowderGloss              string              `gorm:"column:powder_gloss;size:255;not null;default:''"`
	PowderPrice              decimal.NullDecimal `gorm:"column:powder_price;type:numeric(12,4)"`

	Color           string `gorm:"column:color;size:255;not null;default:''"`
	Preparation     string `gorm:"column:preparation;size:255;not null;default:''"`
	Coating         string `gorm:"column:coating;size:255;not null;default:''"`
	CoatingStandard string `gorm:"column:coating_standard;size:255;not null;default:''"`
	ServiceNotes    string `gorm:"column:service_notes;type:text;not null;default:''"`

	BatchSizes      string     `gorm:"column:batch_sizes;size:255;not null;default:''"`
	AnnualQtyFrom   *int       `gorm:"column:annual_qty_from"`
	AnnualQtyTo     *int       `gorm:"column:annual_qty_to"`
	ProjectLifeFrom *time.Time `gorm:"column:project_life_from;type:date"`
	ProjectLifeTo   *time.Time `gorm:"column:project_life_to;type:date"`
	LeadTimeDays    *int       `gorm:"column:lead_time_days"`
	LeadTimeDate    *time.Time `gorm:"column:lead_time_date;type:date"`
	QualityTests    string     `gorm:"column:quality_tests;type:text;not null;default:''"`

	PackagingType enums.PackagingType `gorm:"column:packaging_type;size:32;not null;default:''"`
	Packaging     string              `gorm:"column:packaging;type:text;not null;default:''"`
	Instructions  string              `gorm:"column:instructions;type:text;not null;default:''"`

	ExtraServices            enums.ExtraServices `gorm:"column:extra_services;size:8;not null;default:'no'"`
	ExtraServicesDescription string              `gorm:"column:extra_services_description;type:text;not null;default:''"`

	MaskingType enums.MaskingType `gorm:"column:masking_type;size:16;not null;default:'none'"`
	Masking     string            `gorm:"column:masking;type:text;not null;default:''"`
	Notes       string            `gorm:"column:notes;type:text;not null;default:''"`

	CurrentPrice decimal.NullDecimal `gorm:"column:current_price;type:numeric(12,4)"`

	PriceLines          []PriceLine          `gorm:"foreignKey:PositionID;constraint:OnDelete:CASCADE"`
	Drawings            []Drawing            `gorm:"foreignKey:PositionID;constraint:OnDelete:CASCADE"`
	MaskingLines        []MaskingLine        `gorm:"foreignKey:PositionID;constraint:OnDelete:CASCADE"`
	MetalThicknessLines []MetalThicknessLine `gorm:"foreignKey:PositionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime;index"`
}

func (Position) TableName() string { return "positions" }

// All lists every registry model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Position{},
		&PriceLine{},
		&Drawing{},
		&MaskingLine{},
		&MetalThicknessLine{},
	}
}
