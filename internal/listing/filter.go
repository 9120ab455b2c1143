package listing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/elameta/quoteregistry/internal/expr"
)

// Filter is one f[key]=value pair from a listing request.
type Filter struct {
	Key   string
	Value string
}

// Predicate is a typed condition on one resolved target.
type Predicate struct {
	Target  Target
	Type    FieldType
	Text    string
	Decimal expr.DecimalRange
	Int     expr.IntRange
	Exact   any
}

// FilterPlan is the pure result of interpreting a listing's filters. When
// Invalid is set the listing must come back empty.
type FilterPlan struct {
	Query      string
	Predicates []Predicate
	Ignored    []string
	Invalid    bool
	InvalidKey string
}

// BuildFilterPlan resolves and types every filter. Unknown keys are ignored;
// the first unparseable range value marks the whole plan invalid and stops.
func BuildFilterPlan(query string, filters []Filter) FilterPlan {
	plan := FilterPlan{Query: strings.TrimSpace(query)}
	for _, f := range filters {
		value := strings.TrimSpace(f.Value)
		if f.Key == "" || value == "" {
			continue
		}
		path := ResolveField(f.Key, knownFields)
		if path == "" {
			plan.Ignored = append(plan.Ignored, f.Key)
			continue
		}
		target, ok := bindTarget(path)
		if !ok {
			plan.Ignored = append(plan.Ignored, f.Key)
			continue
		}

		pred, err := buildPredicate(target, value)
		if err != nil {
			plan.Predicates = nil
			plan.Invalid = true
			plan.InvalidKey = f.Key
			return plan
		}
		if pred == nil {
			continue
		}
		plan.Predicates = append(plan.Predicates, *pred)
	}
	return plan
}

func buildPredicate(target Target, value string) (*Predicate, error) {
	fieldType, declared := fieldTypes[target.Path]
	if !declared {
		fieldType = FieldExact
	}
	pred := &Predicate{Target: target, Type: fieldType}
	switch fieldType {
	case FieldText:
		pred.Text = value
	case FieldDecimalRange:
		r, err := expr.ParseDecimalRange(value)
		if err != nil {
			return nil, err
		}
		if r.IsZero() {
			return nil, nil
		}
		pred.Decimal = r
	case FieldIntRange:
		r, err := expr.ParseIntRange(value)
		if err != nil {
			return nil, err
		}
		if r.IsZero() {
			return nil, nil
		}
		pred.Int = r
	default:
		exact, err := parseExact(target.Kind, value)
		if err != nil {
			return nil, err
		}
		pred.Exact = exact
	}
	return pred, nil
}

func parseExact(kind Kind, value string) (any, error) {
	switch kind {
	case KindDecimal:
		d, err := expr.ParseDecimal(value)
		if err != nil {
			return nil, expr.ErrInvalidRange
		}
		return d, nil
	case KindInt:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, expr.ErrInvalidRange
		}
		return v, nil
	case KindBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, expr.ErrInvalidRange
		}
		return v, nil
	case KindDate:
		v, err := time.Parse(time.DateOnly, value)
		if err != nil {
			return nil, expr.ErrInvalidRange
		}
		return v, nil
	default:
		return value, nil
	}
}

// Apply adds the plan's conditions to a positions query.
func (p FilterPlan) Apply(db *gorm.DB) *gorm.DB {
	if p.Invalid {
		return db.Where("1 = 0")
	}
	if p.Query != "" {
		pattern := likePattern(p.Query)
		clauses := make([]string, 0, len(searchColumns))
		args := make([]any, 0, len(searchColumns))
		for _, col := range searchColumns {
			clauses = append(clauses, fmt.Sprintf("LOWER(positions.%s) LIKE ? ESCAPE '\\'", col))
			args = append(args, pattern)
		}
		db = db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	for _, pred := range p.Predicates {
		cond, args := pred.condition()
		if cond == "" {
			continue
		}
		if pred.Target.IsRelated() {
			rel := pred.Target.Relation
			scope := ""
			if rel.Scope != "" {
				scope = " AND " + rel.Scope
			}
			cond = fmt.Sprintf("EXISTS (SELECT 1 FROM %s %s WHERE %s.position_id = positions.id%s AND %s)",
				rel.Table, rel.Alias, rel.Alias, scope, cond)
		}
		db = db.Where(cond, args...)
	}
	return db
}

func (p Predicate) condition() (string, []any) {
	col := p.Target.QualifiedColumn()
	switch p.Type {
	case FieldText:
		return fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", col), []any{likePattern(p.Text)}
	case FieldDecimalRange:
		return rangeCondition(col, decimalBound(p.Decimal.Min), decimalBound(p.Decimal.Max))
	case FieldIntRange:
		return rangeCondition(col, intBound(p.Int.Min), intBound(p.Int.Max))
	default:
		// a date matches the whole day, whether the column holds dates or timestamps
		if day, ok := p.Exact.(time.Time); ok {
			return fmt.Sprintf("%s >= ? AND %s < ?", col, col), []any{day, day.AddDate(0, 0, 1)}
		}
		return fmt.Sprintf("%s = ?", col), []any{p.Exact}
	}
}

func rangeCondition(col string, lo, hi any) (string, []any) {
	var parts []string
	var args []any
	if lo != nil {
		parts = append(parts, col+" >= ?")
		args = append(args, lo)
	}
	if hi != nil {
		parts = append(parts, col+" <= ?")
		args = append(args, hi)
	}
	return strings.Join(parts, " AND "), args
}

func decimalBound(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

func intBound(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(value string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
}
