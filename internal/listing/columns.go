package listing

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elameta/quoteregistry/pkg/db/models"
)

// Row is one listing entry: the position plus its per-row annotations.
type Row struct {
	Position     models.Position
	DrawingCount int64
	PriceMin     decimal.NullDecimal
	PriceMax     decimal.NullDecimal
}

// ColumnType hints the renderer how to present a column.
type ColumnType string

const (
	ColumnText    ColumnType = "text"
	ColumnNumber  ColumnType = "number"
	ColumnBool    ColumnType = "bool"
	ColumnDate    ColumnType = "date"
	ColumnVirtual ColumnType = "virtual"
)

// Source says where a column's value comes from. It is either Stored or Derived.
type Source interface {
	isSource()
}

// Stored columns read a positions field that the filter and sort engines can address.
type Stored struct {
	Path  string
	Value func(models.Position) string
}

// Derived columns are computed per row and can not be filtered or sorted on.
type Derived struct {
	Compute func(Row) string
}

func (Stored) isSource()  {}
func (Derived) isSource() {}

// Column is one entry of the listing schema.
type Column struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	LabelLT    string     `json:"label_lt"`
	Type       ColumnType `json:"type"`
	Default    bool       `json:"default"`
	Sortable   bool       `json:"sortable"`
	OrderField string     `json:"order_field,omitempty"`
	Source     Source     `json:"-"`
}

// Value renders the column for row.
func (c Column) Value(row Row) string {
	switch src := c.Source.(type) {
	case Stored:
		return src.Value(row.Position)
	case Derived:
		return src.Compute(row)
	}
	return ""
}

func text(path string, get func(models.Position) string) Stored {
	return Stored{Path: path, Value: get}
}

func dec(path string, places int32, get func(models.Position) decimal.NullDecimal) Stored {
	return Stored{Path: path, Value: func(p models.Position) string { return FormatDecimal(get(p), places) }}
}

func integer(path string, get func(models.Position) *int) Stored {
	return Stored{Path: path, Value: func(p models.Position) string { return FormatInt(get(p)) }}
}

func flag(path string, get func(models.Position) bool) Stored {
	return Stored{Path: path, Value: func(p models.Position) string { return FormatBool(get(p)) }}
}

func date(path string, get func(models.Position) *time.Time) Stored {
	return Stored{Path: path, Value: func(p models.Position) string { return FormatDate(get(p)) }}
}

// Columns is the ordered listing schema.
var Columns = []Column{
	{Key: "id", Label: "ID", LabelLT: "ID", Type: ColumnNumber, Sortable: true,
		Source: Stored{Path: "id", Value: func(p models.Position) string { return strconv.FormatInt(p.ID, 10) }}},
	{Key: "client", Label: "Client", LabelLT: "Klientas", Type: ColumnText, Default: true, Sortable: true,
		Source: text("client", func(p models.Position) string { return p.Client })},
	{Key: "project", Label: "Project", LabelLT: "Projektas", Type: ColumnText, Default: true, Sortable: true,
		Source: text("project", func(p models.Position) string { return p.Project })},
	{Key: "code", Label: "Position code", LabelLT: "Pozicijos kodas", Type: ColumnText, Default: true, Sortable: true,
		Source: text("code", func(p models.Position) string { return p.Code })},
	{Key: "name", Label: "Part name", LabelLT: "Pozicijos pavadinimas", Type: ColumnText, Default: true, Sortable: true,
		Source: text("name", func(p models.Position) string { return p.Name })},
	{Key: "metal", Label: "Metal", LabelLT: "Metalas", Type: ColumnText, Default: true, Sortable: true,
		Source: text("metal", func(p models.Position) string { return p.Metal })},
	{Key: "metal_thickness", Label: "Metal thickness, mm", LabelLT: "Metalo storis, mm", Type: ColumnNumber, Sortable: true,
		Source: dec("metal_thickness", 2, func(p models.Position) decimal.NullDecimal { return p.MetalThickness })},
	{Key: "area", Label: "Area, m²", LabelLT: "Plotas, m²", Type: ColumnNumber, Default: true, Sortable: true,
		Source: dec("area", -1, func(p models.Position) decimal.NullDecimal { return p.Area })},
	{Key: "weight", Label: "Weight, kg", LabelLT: "Svoris, kg", Type: ColumnNumber, Sortable: true,
		Source: dec("weight", -1, func(p models.Position) decimal.NullDecimal { return p.Weight })},
	{Key: "x_mm", Label: "X, mm", LabelLT: "X, mm", Type: ColumnNumber, Sortable: true,
		Source: dec("x_mm", -1, func(p models.Position) decimal.NullDecimal { return p.XMM })},
	{Key: "y_mm", Label: "Y, mm", LabelLT: "Y, mm", Type: ColumnNumber, Sortable: true,
		Source: dec("y_mm", -1, func(p models.Position) decimal.NullDecimal { return p.YMM })},
	{Key: "z_mm", Label: "Z, mm", LabelLT: "Z, mm", Type: ColumnNumber, Sortable: true,
		Source: dec("z_mm", -1, func(p models.Position) decimal.NullDecimal { return p.ZMM })},
	{Key: "service_ktl", Label: "KTL", LabelLT: "KTL", Type: ColumnBool, Sortable: true,
		Source: flag("service_ktl", func(p models.Position) bool { return p.ServiceKTL })},
	{Key: "service_powder", Label: "Powder", LabelLT: "Miltai", Type: ColumnBool, Sortable: true,
		Source: flag("service_powder", func(p models.Position) bool { return p.ServicePowder })},
	{Key: "service_prep", Label: "Preparation", LabelLT: "Paruošimas", Type: ColumnBool, Sortable: true,
		Source: flag("service_prep", func(p models.Position) bool { return p.ServicePrep })},
	{Key: "ktl_thickness_display", Label: "KTL thickness, µm", LabelLT: "KTL dangos storis, µm", Type: ColumnVirtual,
		Source: Derived{Compute: func(r Row) string {
			return ThicknessDisplay(r.Position.KTLThicknessText, r.Position.KTLThicknessUM)
		}}},
	{Key: "powder_thickness_display", Label: "Powder thickness, µm", LabelLT: "Miltelių dangos storis, µm", Type: ColumnVirtual,
		Source: Derived{Compute: func(r Row) string {
			return ThicknessDisplay(r.Position.PowderThicknessText, r.Position.PowderThicknessUM)
		}}},
	{Key: "preparation", Label: "Preparation", LabelLT: "Paruošimas", Type: ColumnText, Sortable: true,
		Source: text("preparation", func(p models.Position) string { return p.Preparation })},
	{Key: "coating", Label: "Coating", LabelLT: "Padengimas", Type: ColumnText, Default: true, Sortable: true,
		Source: text("coating", func(p models.Position) string { return p.Coating })},
	{Key: "coating_standard", Label: "Coating standard", LabelLT: "Padengimo standartas", Type: ColumnText, Sortable: true,
		Source: text("coating_standard", func(p models.Position) string { return p.CoatingStandard })},
	{Key: "color", Label: "Color", LabelLT: "Spalva", Type: ColumnText, Default: true, Sortable: true,
		Source: text("color", func(p models.Position) string { return p.Color })},
	{Key: "powder_code", Label: "Powder code", LabelLT: "Miltelių kodas", Type: ColumnText, Sortable: true,
		Source: text("powder_code", func(p models.Position) string { return p.PowderCode })},
	{Key: "powder_supplier", Label: "Powder supplier", LabelLT: "Miltelių tiekėjas", Type: ColumnText, Sortable: true,
		Source: text("powder_supplier", func(p models.Position) string { return p.PowderSupplier })},
	{Key: "batch_sizes", Label: "Batch sizes", LabelLT: "Partijų dydžiai", Type: ColumnText, Sortable: true,
		Source: text("batch_sizes", func(p models.Position) string { return p.BatchSizes })},
	{Key: "annual_qty_from", Label: "Annual qty from", LabelLT: "Metinis kiekis nuo", Type: ColumnNumber, Sortable: true,
		Source: integer("annual_qty_from", func(p models.Position) *int { return p.AnnualQtyFrom })},
	{Key: "annual_qty_to", Label: "Annual qty to", LabelLT: "Metinis kiekis iki", Type: ColumnNumber, Sortable: true,
		Source: integer("annual_qty_to", func(p models.Position) *int { return p.AnnualQtyTo })},
	{Key: "lead_time_days", Label: "Lead time, days", LabelLT: "Atlikimo terminas, d.d.", Type: ColumnNumber, Sortable: true,
		Source: integer("lead_time_days", func(p models.Position) *int { return p.LeadTimeDays })},
	{Key: "quality_tests", Label: "Quality tests", LabelLT: "Testai / kokybė", Type: ColumnText,
		Source: text("quality_tests", func(p models.Position) string { return p.QualityTests })},
	{Key: "packaging", Label: "Packaging", LabelLT: "Pakavimas", Type: ColumnText,
		Source: text("packaging", func(p models.Position) string { return p.Packaging })},
	{Key: "masking", Label: "Masking", LabelLT: "Maskavimas", Type: ColumnText,
		Source: text("masking", func(p models.Position) string { return p.Masking })},
	{Key: "project_life_to", Label: "Project life until", LabelLT: "Projekto gyvavimas iki", Type: ColumnDate, Sortable: true,
		Source: date("project_life_to", func(p models.Position) *time.Time { return p.ProjectLifeTo })},
	{Key: "current_price", Label: "Price, EUR", LabelLT: "Kaina, EUR", Type: ColumnNumber, Default: true, Sortable: true,
		Source: dec("current_price", 4, func(p models.Position) decimal.NullDecimal { return p.CurrentPrice })},
	{Key: "price_range", Label: "Price range, EUR", LabelLT: "Kainų intervalas, EUR", Type: ColumnVirtual,
		Source: Derived{Compute: func(r Row) string { return FormatPriceRange(r.PriceMin, r.PriceMax) }}},
	{Key: "drawings", Label: "Drawings", LabelLT: "Brėžiniai", Type: ColumnVirtual, Default: true,
		Source: Derived{Compute: func(r Row) string { return strconv.FormatInt(r.DrawingCount, 10) }}},
	{Key: "notes", Label: "Notes", LabelLT: "Pastabos", Type: ColumnText,
		Source: text("notes", func(p models.Position) string { return p.Notes })},
	{Key: "created_at", Label: "Created", LabelLT: "Sukurta", Type: ColumnDate, Sortable: true,
		Source: Stored{Path: "created_at", Value: func(p models.Position) string { return FormatTimestamp(p.CreatedAt) }}},
	{Key: "updated_at", Label: "Updated", LabelLT: "Atnaujinta", Type: ColumnDate, Sortable: true,
		Source: Stored{Path: "updated_at", Value: func(p models.Position) string { return FormatTimestamp(p.UpdatedAt) }}},
}

var columnIndex = func() map[string]Column {
	out := make(map[string]Column, len(Columns))
	for _, c := range Columns {
		out[c.Key] = c
	}
	return out
}()

// ColumnByKey looks a column up by key.
func ColumnByKey(key string) (Column, bool) {
	c, ok := columnIndex[key]
	return c, ok
}

// DefaultColumns returns the columns shown when the request selects none.
func DefaultColumns() []Column {
	out := make([]Column, 0, len(Columns))
	for _, c := range Columns {
		if c.Default {
			out = append(out, c)
		}
	}
	return out
}

// VisibleColumns picks the requested columns. When cols was not sent at all the
// defaults apply; otherwise unknown and repeated keys are dropped and order is kept.
func VisibleColumns(cols []string, given bool) []Column {
	if !given {
		return DefaultColumns()
	}
	seen := make(map[string]struct{}, len(cols))
	out := make([]Column, 0, len(cols))
	for _, key := range cols {
		key = strings.TrimSpace(key)
		c, ok := columnIndex[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// FormatDecimal renders d with places fractional digits, or as stored when places < 0.
func FormatDecimal(d decimal.NullDecimal, places int32) string {
	if !d.Valid {
		return ""
	}
	if places < 0 {
		return d.Decimal.String()
	}
	return d.Decimal.StringFixed(places)
}

// FormatInt renders an optional integer.
func FormatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// FormatBool renders a service flag.
func FormatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// FormatDate renders an optional calendar date.
func FormatDate(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(time.DateOnly)
}

// FormatTimestamp renders a timestamp to the minute.
func FormatTimestamp(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format("2006-01-02 15:04")
}

// FormatPriceRange renders "min–max", or a single price when both ends agree.
func FormatPriceRange(lo, hi decimal.NullDecimal) string {
	switch {
	case !lo.Valid && !hi.Valid:
		return ""
	case !hi.Valid || (lo.Valid && lo.Decimal.Equal(hi.Decimal)):
		return FormatDecimal(lo, 2)
	case !lo.Valid:
		return FormatDecimal(hi, 2)
	}
	return FormatDecimal(lo, 2) + "–" + FormatDecimal(hi, 2)
}

// ThicknessDisplay prefers the canonical text and falls back to the numeric value.
func ThicknessDisplay(txt string, value decimal.NullDecimal) string {
	if strings.TrimSpace(txt) != "" {
		return txt
	}
	return FormatDecimal(value, 1)
}
