package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/elameta/quoteregistry/pkg/db/models"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
)

// ResolveActivePrice returns the first active line applicable to quantity, or
// nil. A line with a fixed quantity matches only that exact quantity; otherwise
// a missing lower bound is 0 and a missing upper bound is unbounded. Lines are
// scanned in the given order and overlapping tiers resolve to the first match.
func ResolveActivePrice(lines []models.PriceLine, quantity int) *models.PriceLine {
	for i := range lines {
		line := &lines[i]
		if !line.IsActive() {
			continue
		}
		if line.FixedQty != nil {
			if quantity == *line.FixedQty {
				return line
			}
			continue
		}
		from := 0
		if line.QtyFrom != nil {
			from = *line.QtyFrom
		}
		if quantity < from {
			continue
		}
		if line.QtyTo != nil && quantity > *line.QtyTo {
			continue
		}
		return line
	}
	return nil
}

// CurrentPrice is the price shown as a position's headline price: the active
// line with the highest priority, newest id first on ties.
func CurrentPrice(lines []models.PriceLine) decimal.NullDecimal {
	var best *models.PriceLine
	for i := range lines {
		line := &lines[i]
		if !line.IsActive() {
			continue
		}
		if best == nil ||
			line.Priority > best.Priority ||
			(line.Priority == best.Priority && line.ID > best.ID) {
			best = line
		}
	}
	if best == nil {
		return decimal.NullDecimal{}
	}
	return best.Price
}

// PriceSpan returns the lowest and highest price among active lines.
func PriceSpan(lines []models.PriceLine) (lo, hi decimal.NullDecimal) {
	for _, line := range lines {
		if !line.IsActive() || !line.Price.Valid {
			continue
		}
		if !lo.Valid || line.Price.Decimal.LessThan(lo.Decimal) {
			lo = line.Price
		}
		if !hi.Valid || line.Price.Decimal.GreaterThan(hi.Decimal) {
			hi = line.Price
		}
	}
	return lo, hi
}

// Overlap names two lines whose quantity windows intersect.
type Overlap struct {
	First  models.PriceLine
	Second models.PriceLine
}

// CheckOverlaps sorts lines by their lower bound and reports the first pair
// where a line's upper bound reaches the next line's lower bound. Open-ended
// bounds never overlap.
func CheckOverlaps(lines []models.PriceLine) error {
	if overlap := FindOverlap(lines); overlap != nil {
		msg := fmt.Sprintf("price ranges overlap: %d >= %d", *overlap.First.QtyTo, *overlap.Second.QtyFrom)
		return pkgerrors.New(pkgerrors.CodeConflict, msg).WithDetails(map[string]any{
			"first_line_id":  overlap.First.ID,
			"second_line_id": overlap.Second.ID,
		})
	}
	return nil
}

// FindOverlap returns the first overlapping pair or nil.
func FindOverlap(lines []models.PriceLine) *Overlap {
	sorted := make([]models.PriceLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lowerBound(sorted[i]) < lowerBound(sorted[j])
	})
	for i := 0; i+1 < len(sorted); i++ {
		cur, next := sorted[i], sorted[i+1]
		if cur.QtyTo == nil || next.QtyFrom == nil {
			continue
		}
		if *cur.QtyTo >= *next.QtyFrom {
			return &Overlap{First: cur, Second: next}
		}
	}
	return nil
}

func lowerBound(line models.PriceLine) int {
	if line.QtyFrom == nil {
		return 0
	}
	return *line.QtyFrom
}
