package listing

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// virtualSortKeys are logical keys sortable even though no column carries them.
var virtualSortKeys = []string{"current_price", "ktl_thickness_display", "powder_thickness_display"}

// SortPlan is a resolved, whitelisted ordering. Default is set when the
// request asked for nothing usable.
type SortPlan struct {
	Key     string
	Target  Target
	Desc    bool
	Default bool
}

// sortable maps every whitelisted sort key onto its bound target.
var sortable = buildSortable()

func buildSortable() map[string]Target {
	out := map[string]Target{}
	for _, col := range Columns {
		if !col.Sortable {
			continue
		}
		if _, derived := col.Source.(Derived); derived {
			continue
		}
		candidate := col.OrderField
		if candidate == "" {
			candidate = col.Key
		}
		if path := ResolveField(candidate, knownFields); path != "" {
			if target, ok := bindTarget(path); ok {
				out[col.Key] = target
			}
		}
	}
	for _, key := range virtualSortKeys {
		if path := ResolveField(key, knownFields); path != "" {
			if target, ok := bindTarget(path); ok {
				out[key] = target
			}
		}
	}
	return out
}

// IsSortable reports whether key can be sorted on.
func IsSortable(key string) bool {
	_, ok := sortable[key]
	return ok
}

// BuildSortPlan resolves key through the whitelist. Unknown keys fall back to
// the default order. Only "desc" (any case) sorts descending.
func BuildSortPlan(key, dir string) SortPlan {
	key = strings.TrimSpace(key)
	if key == "" {
		return SortPlan{Default: true}
	}
	target, ok := sortable[key]
	if !ok {
		return SortPlan{Default: true}
	}
	return SortPlan{
		Key:    key,
		Target: target,
		Desc:   strings.EqualFold(strings.TrimSpace(dir), "desc"),
	}
}

// Apply orders a positions query. The default is newest update first and the
// id descending tie-break always closes the ordering. Rows without a value
// sort last in either direction, on sqlite and postgres alike.
func (p SortPlan) Apply(db *gorm.DB) *gorm.DB {
	if p.Default {
		return db.Order("positions.updated_at DESC").Order("positions.id DESC")
	}
	direction := "ASC"
	if p.Desc {
		direction = "DESC"
	}
	expression := p.orderExpression()
	return db.Order(expression + " IS NULL").
		Order(expression + " " + direction).
		Order("positions.id DESC")
}

// orderExpression collapses one-to-many targets to a single value per
// position so joined rows never multiply: MIN when ascending, MAX when descending.
func (p SortPlan) orderExpression() string {
	if !p.Target.IsRelated() {
		return p.Target.QualifiedColumn()
	}
	rel := p.Target.Relation
	agg := "MIN"
	if p.Desc {
		agg = "MAX"
	}
	scope := ""
	if rel.Scope != "" {
		scope = " AND " + rel.Scope
	}
	return fmt.Sprintf("(SELECT %s(%s) FROM %s %s WHERE %s.position_id = positions.id%s)",
		agg, p.Target.QualifiedColumn(), rel.Table, rel.Alias, rel.Alias, scope)
}
