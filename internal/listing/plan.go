package listing

import "gorm.io/gorm"

const (
	OutcomeOK            = "ok"
	OutcomeInvalidFilter = "invalid_filter"
)

// Plan is a listing request resolved against the column schema.
type Plan struct {
	Filters FilterPlan
	Sort    SortPlan
	Columns []Column
}

// NewPlan resolves filters, ordering and visible columns for req.
func NewPlan(req Request) Plan {
	return Plan{
		Filters: BuildFilterPlan(req.Query, req.Filters),
		Sort:    BuildSortPlan(req.Sort, req.Dir),
		Columns: VisibleColumns(req.Cols, req.ColsGiven),
	}
}

// Outcome labels the plan for logs and metrics.
func (p Plan) Outcome() string {
	if p.Filters.Invalid {
		return OutcomeInvalidFilter
	}
	return OutcomeOK
}

// Where applies only the filters, for counts and aggregates.
func (p Plan) Where(db *gorm.DB) *gorm.DB {
	return p.Filters.Apply(db)
}

// Scope applies filters and ordering to a positions query.
func (p Plan) Scope(db *gorm.DB) *gorm.DB {
	return p.Sort.Apply(p.Filters.Apply(db))
}
