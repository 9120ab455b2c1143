package listing

import "strings"

// PathSeparator splits a relation name from the related column in a field path.
const PathSeparator = "."

// FieldType decides how a filter value is interpreted.
type FieldType int

const (
	// FieldExact compares the raw value for equality after parsing it by column kind.
	FieldExact FieldType = iota
	FieldText
	FieldDecimalRange
	FieldIntRange
)

func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldDecimalRange:
		return "decimal_range"
	case FieldIntRange:
		return "int_range"
	default:
		return "exact"
	}
}

// Kind is the storage kind of a positions column.
type Kind int

const (
	KindText Kind = iota
	KindDecimal
	KindInt
	KindBool
	KindDate
)

// Relation describes a one-to-many table hanging off positions. Only rows
// matching Scope take part in filters and sort aggregates.
type Relation struct {
	Name  string
	Table string
	Alias string
	Scope string
}

var relations = map[string]Relation{
	"price_lines":           {Name: "price_lines", Table: "price_lines", Alias: "pl", Scope: "pl.status = 'active'"},
	"drawings":              {Name: "drawings", Table: "drawings", Alias: "dr"},
	"masking_lines":         {Name: "masking_lines", Table: "masking_lines", Alias: "ml"},
	"metal_thickness_lines": {Name: "metal_thickness_lines", Table: "metal_thickness_lines", Alias: "mt"},
}

// positionColumns is every stored positions column with its storage kind.
var positionColumns = map[string]Kind{
	"id": KindInt, "client": KindText, "project": KindText, "code": KindText, "name": KindText,
	"metal": KindText, "metal_thickness": KindDecimal, "area": KindDecimal, "weight": KindDecimal,
	"x_mm": KindDecimal, "y_mm": KindDecimal, "z_mm": KindDecimal,
	"service_ktl": KindBool, "service_powder": KindBool, "service_prep": KindBool,
	"ktl_hanging_method": KindText, "ktl_frame_hanging": KindText,
	"ktl_parts_per_frame": KindInt, "ktl_actual_per_frame": KindInt,
	"ktl_length_mm": KindDecimal, "ktl_height_mm": KindDecimal, "ktl_depth_mm": KindDecimal,
	"ktl_dimension_product": KindDecimal, "ktl_hanging_description": KindText,
	"ktl_thickness_um": KindDecimal, "ktl_thickness_txt": KindText, "ktl_notes": KindText,
	"powder_qty_per_hour": KindDecimal, "powder_actual_per_hour": KindDecimal,
	"powder_parts_per_frame": KindInt, "powder_actual_per_frame": KindInt,
	"powder_hanging_description": KindText, "powder_thickness_um": KindDecimal,
	"powder_thickness_txt": KindText, "powder_notes": KindText, "powder_code": KindText,
	"powder_color": KindText, "powder_supplier": KindText, "powder_gloss": KindText,
	"powder_price": KindDecimal,
	"color": KindText, "preparation": KindText, "coating": KindText, "coating_standard": KindText,
	"service_notes": KindText, "batch_sizes": KindText,
	"annual_qty_from": KindInt, "annual_qty_to": KindInt,
	"project_life_from": KindDate, "project_life_to": KindDate,
	"lead_time_days": KindInt, "lead_time_date": KindDate, "quality_tests": KindText,
	"packaging_type": KindText, "packaging": KindText, "instructions": KindText,
	"extra_services": KindText, "extra_services_description": KindText,
	"masking_type": KindText, "masking": KindText, "notes": KindText,
	"current_price": KindDecimal, "created_at": KindDate, "updated_at": KindDate,
}

// relatedColumns lists the related columns that may be filtered or sorted on.
var relatedColumns = map[string]Kind{
	"price_lines.price": KindDecimal,
}

// virtualKeys maps UI-facing logical keys onto real field paths.
var virtualKeys = map[string]string{
	"current_price":            "price_lines" + PathSeparator + "price",
	"ktl_thickness_display":    "ktl_thickness_txt",
	"powder_thickness_display": "powder_thickness_txt",
}

// fieldTypes declares how filter values for a path are read.
var fieldTypes = map[string]FieldType{
	"client":               FieldText,
	"project":              FieldText,
	"code":                 FieldText,
	"name":                 FieldText,
	"metal":                FieldText,
	"coating":              FieldText,
	"coating_standard":     FieldText,
	"color":                FieldText,
	"batch_sizes":          FieldText,
	"packaging":            FieldText,
	"masking":              FieldText,
	"quality_tests":        FieldText,
	"ktl_thickness_txt":    FieldText,
	"powder_thickness_txt": FieldText,
	"area":                 FieldDecimalRange,
	"weight":               FieldDecimalRange,
	"price_lines.price":    FieldDecimalRange,
	"lead_time_days":       FieldIntRange,
}

// searchColumns are OR-combined for the free-text query.
var searchColumns = []string{"client", "project", "code", "name"}

// KnownFields returns every stored column key plus the reverse relation names.
func KnownFields() map[string]struct{} {
	known := make(map[string]struct{}, len(positionColumns)+len(relations))
	for key := range positionColumns {
		known[key] = struct{}{}
	}
	for name := range relations {
		known[name] = struct{}{}
	}
	return known
}

var knownFields = KnownFields()

// ResolveField maps a raw key through the virtual key table and checks that
// the path's base field is known. It returns "" when the key is unresolved.
func ResolveField(rawKey string, known map[string]struct{}) string {
	if rawKey == "" {
		return ""
	}
	mapped, ok := virtualKeys[rawKey]
	if !ok {
		mapped = rawKey
	}
	base, _, _ := strings.Cut(mapped, PathSeparator)
	if _, ok := known[base]; !ok {
		return ""
	}
	return mapped
}

// Target is a resolved path bound to something that can be put into SQL.
// Only identifiers from the static tables above ever reach a query.
type Target struct {
	Path     string
	Column   string
	Kind     Kind
	Relation *Relation
}

// bindTarget turns a resolved path into a queryable target. The bool is false
// for relation names without a column and for related columns that are not
// whitelisted.
func bindTarget(path string) (Target, bool) {
	base, rest, hasRest := strings.Cut(path, PathSeparator)
	if rel, ok := relations[base]; ok {
		if !hasRest {
			return Target{}, false
		}
		kind, ok := relatedColumns[path]
		if !ok {
			return Target{}, false
		}
		r := rel
		return Target{Path: path, Column: rest, Kind: kind, Relation: &r}, true
	}
	if hasRest {
		return Target{}, false
	}
	kind, ok := positionColumns[base]
	if !ok {
		return Target{}, false
	}
	return Target{Path: path, Column: base, Kind: kind}, true
}

// QualifiedColumn is the column reference as it appears in SQL.
func (t Target) QualifiedColumn() string {
	if t.Relation != nil {
		return t.Relation.Alias + "." + t.Column
	}
	return "positions." + t.Column
}

// IsRelated reports whether the target crosses a one-to-many relation.
func (t Target) IsRelated() bool {
	return t.Relation != nil
}
