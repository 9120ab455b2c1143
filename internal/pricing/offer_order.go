package pricing

import (
	"sort"
	"time"

	"github.com/elameta/quoteregistry/pkg/db/models"
)

// SelectForOffer keeps the active lines, restricted to ids when ids is
// non-empty, ordered by unit, qty_from, qty_to, valid_from, valid_to and then
// newest first. Missing bounds sort after present ones.
func SelectForOffer(lines []models.PriceLine, ids []int64) []models.PriceLine {
	var allowed map[int64]struct{}
	if len(ids) > 0 {
		allowed = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			allowed[id] = struct{}{}
		}
	}

	out := make([]models.PriceLine, 0, len(lines))
	for _, line := range lines {
		if !line.IsActive() {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[line.ID]; !ok {
				continue
			}
		}
		out = append(out, line)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		if c := compareInt(a.QtyFrom, b.QtyFrom); c != 0 {
			return c < 0
		}
		if c := compareInt(a.QtyTo, b.QtyTo); c != 0 {
			return c < 0
		}
		if c := compareDate(a.ValidFrom, b.ValidFrom); c != 0 {
			return c < 0
		}
		if c := compareDate(a.ValidTo, b.ValidTo); c != 0 {
			return c < 0
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}

func compareInt(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

func compareDate(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}
