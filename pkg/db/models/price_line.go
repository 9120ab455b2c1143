package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/elameta/quoteregistry/pkg/enums"
)

// PriceLine is one tier of a position's price list.
type PriceLine struct {
	ID         int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	PositionID int64                 `gorm:"column:position_id;not null;index"`
	Price      decimal.NullDecimal   `gorm:"column:price;type:numeric(12,4)"`
	Unit       enums.Unit            `gorm:"column:unit;size:16;not null;default:'piece'"`
	IsFixed    bool                  `gorm:"column:is_fixed;not null;default:false"`
	FixedQty   *int                  `gorm:"column:fixed_qty"`
	QtyFrom    *int                  `gorm:"column:qty_from"`
	QtyTo      *int                  `gorm:"column:qty_to"`
	ValidFrom  *time.Time            `gorm:"column:valid_from;type:date"`
	ValidTo    *time.Time            `gorm:"column:valid_to;type:date"`
	Status     enums.PriceLineStatus `gorm:"column:status;size:16;not null;default:'active';index"`
	Priority   int                   `gorm:"column:priority;not null;default:0"`
	Note       string                `gorm:"column:note;type:text;not null;default:''"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (PriceLine) TableName() string { return "price_lines" }

// IsActive reports whether the line takes part in price resolution.
func (p PriceLine) IsActive() bool {
	return p.Status == enums.PriceLineStatusActive
}
