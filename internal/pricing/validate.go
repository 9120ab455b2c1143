package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/elameta/quoteregistry/internal/expr"
	"github.com/elameta/quoteregistry/pkg/db/models"
	"github.com/elameta/quoteregistry/pkg/enums"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/types"
)

// PriceScale is the number of fractional digits stored for prices.
const PriceScale = 4

// LineInput is one submitted price line of a batch edit. A nil ID marks a new line.
type LineInput struct {
	ID           *int64           `json:"id,omitempty"`
	Delete       bool             `json:"delete,omitempty"`
	Price        *decimal.Decimal `json:"price"`
	Unit         string           `json:"unit"`
	QtyFrom      *int             `json:"qty_from"`
	QtyTo        *int             `json:"qty_to"`
	ValidFrom    *types.Date      `json:"valid_from"`
	ValidTo      *types.Date      `json:"valid_to"`
	StatusToggle string           `json:"status"`
	Priority     int              `json:"priority"`
	Note         string           `json:"note"`
}

// Action is what persisting a validated line amounts to.
type Action string

const (
	ActionSkip   Action = "skip"
	ActionDelete Action = "delete"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// Planned pairs a submitted line with its resolved action and the row to write.
type Planned struct {
	Index  int
	Action Action
	Line   models.PriceLine
}

// IsNew reports whether the line has no identity yet.
func (in LineInput) IsNew() bool {
	return in.ID == nil || *in.ID == 0
}

// IsEffectivelyEmpty reports whether every core field is blank.
func (in LineInput) IsEffectivelyEmpty() bool {
	return in.Price == nil &&
		in.QtyFrom == nil &&
		in.QtyTo == nil &&
		in.ValidFrom.TimePtr() == nil &&
		in.ValidTo.TimePtr() == nil &&
		strings.TrimSpace(in.Note) == ""
}

// ValidateLine checks one line and returns its action plus any field errors.
// Errors on independent fields accumulate.
func ValidateLine(in LineInput) (Action, pkgerrors.FieldErrors) {
	if in.Delete {
		if in.IsNew() {
			return ActionSkip, nil
		}
		return ActionDelete, nil
	}
	if in.IsNew() && in.IsEffectivelyEmpty() {
		return ActionSkip, nil
	}

	errs := pkgerrors.FieldErrors{}
	switch {
	case in.Price == nil:
		errs.Add("price", "price is required")
	case !expr.IsPlainDecimal(*in.Price):
		errs.Add("price", "price must be a plain decimal number")
	case in.Price.IsNegative():
		errs.Add("price", "price must not be negative")
	}

	if in.QtyFrom != nil || in.QtyTo != nil {
		if in.QtyFrom == nil {
			errs.Add("qty_from", "qty_from is required when a quantity range is given")
		}
		if in.QtyTo == nil {
			errs.Add("qty_to", "qty_to is required when a quantity range is given")
		}
		if in.QtyFrom != nil && *in.QtyFrom < 0 {
			errs.Add("qty_from", "qty_from must not be negative")
		}
		if in.QtyTo != nil && *in.QtyTo < 0 {
			errs.Add("qty_to", "qty_to must not be negative")
		}
		if in.QtyFrom != nil && in.QtyTo != nil && *in.QtyFrom > *in.QtyTo {
			errs.Add("qty_to", "qty_to must be greater than or equal to qty_from")
		}
	}

	if from, to := in.ValidFrom.TimePtr(), in.ValidTo.TimePtr(); from != nil && to != nil && from.After(*to) {
		errs.Add("valid_to", "valid_to must not be before valid_from")
	}

	if strings.TrimSpace(in.Unit) != "" {
		if _, err := enums.ParseUnit(in.Unit); err != nil {
			errs.Add("unit", "unit must be one of piece, kg, set")
		}
	}

	if in.IsNew() {
		return ActionCreate, errs
	}
	return ActionUpdate, errs
}

// ToModel builds the row to persist for a validated line. The legacy
// fixed-quantity pair is always cleared.
func (in LineInput) ToModel(positionID int64) models.PriceLine {
	unit := enums.UnitPiece
	if parsed, err := enums.ParseUnit(in.Unit); err == nil {
		unit = parsed
	}
	line := models.PriceLine{
		PositionID: positionID,
		Unit:       unit,
		IsFixed:    false,
		FixedQty:   nil,
		QtyFrom:    in.QtyFrom,
		QtyTo:      in.QtyTo,
		ValidFrom:  in.ValidFrom.TimePtr(),
		ValidTo:    in.ValidTo.TimePtr(),
		Status:     enums.StatusFromToggle(in.StatusToggle),
		Priority:   in.Priority,
		Note:       strings.TrimSpace(in.Note),
	}
	if in.Price != nil {
		line.Price = decimal.NewNullDecimal(in.Price.Round(PriceScale))
	}
	if in.ID != nil {
		line.ID = *in.ID
	}
	return line
}

// PlanBatch validates every submitted line and returns the write plan. Field
// errors are keyed "lines[i].field" and the whole batch is rejected when any exist.
func PlanBatch(positionID int64, inputs []LineInput) ([]Planned, error) {
	all := pkgerrors.FieldErrors{}
	plan := make([]Planned, 0, len(inputs))
	for i, in := range inputs {
		action, errs := ValidateLine(in)
		all.Merge(fmt.Sprintf("lines[%d].", i), errs)
		if action == ActionSkip || len(errs) > 0 {
			continue
		}
		plan = append(plan, Planned{Index: i, Action: action, Line: in.ToModel(positionID)})
	}
	if err := all.Err("price lines are invalid"); err != nil {
		return nil, err
	}
	return plan, nil
}
