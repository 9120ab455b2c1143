package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/elameta/quoteregistry/pkg/enums"
)

// MaskingLine describes one masked spot for a given coating service.
type MaskingLine struct {
	ID          int64                `gorm:"column:id;primaryKey;autoIncrement"`
	PositionID  int64                `gorm:"column:position_id;not null;index"`
	Service     enums.MaskingService `gorm:"column:service;size:16;not null"`
	Mask        string               `gorm:"column:mask;size:255;not null;default:''"`
	Places      *int                 `gorm:"column:places"`
	Description string               `gorm:"column:description;type:text;not null;default:''"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (MaskingLine) TableName() string { return "masking_lines" }

// MetalThicknessLine is one of the metal thicknesses a position ships in.
type MetalThicknessLine struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	PositionID  int64           `gorm:"column:position_id;not null;index"`
	ThicknessMM decimal.Decimal `gorm:"column:thickness_mm;type:numeric(10,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (MetalThicknessLine) TableName() string { return "metal_thickness_lines" }
