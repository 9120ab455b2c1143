package listing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveField(t *testing.T) {
	cases := map[string]string{
		"client":                   "client",
		"current_price":            "price_lines.price",
		"ktl_thickness_display":    "ktl_thickness_txt",
		"powder_thickness_display": "powder_thickness_txt",
		"price_lines.price":        "price_lines.price",
		"drawings":                 "drawings",
		"nonexistent_field":        "",
		"nope.price":               "",
		"":                         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ResolveField(in, knownFields), "key %q", in)
	}
}

func TestBuildFilterPlanIgnoresUnknownKeys(t *testing.T) {
	plan := BuildFilterPlan("", []Filter{
		{Key: "nonexistent_field", Value: "foo"},
		{Key: "drawings", Value: "3"},
		{Key: "price_lines.note", Value: "x"},
		{Key: "client", Value: "   "},
	})
	assert.False(t, plan.Invalid)
	assert.Empty(t, plan.Predicates)
	assert.Equal(t, []string{"nonexistent_field", "drawings", "price_lines.note"}, plan.Ignored)
}

func TestBuildFilterPlanFailsClosedOnBadRange(t *testing.T) {
	plan := BuildFilterPlan("acme", []Filter{
		{Key: "client", Value: "acme"},
		{Key: "area", Value: "abc"},
		{Key: "weight", Value: "1..2"},
	})
	assert.True(t, plan.Invalid)
	assert.Equal(t, "area", plan.InvalidKey)
	assert.Empty(t, plan.Predicates)

	plan = BuildFilterPlan("", []Filter{{Key: "lead_time_days", Value: "1.5"}})
	assert.True(t, plan.Invalid)

	plan = BuildFilterPlan("", []Filter{{Key: "service_ktl", Value: "maybe"}})
	assert.True(t, plan.Invalid, "unparseable exact value on a typed column")
}

func TestBuildFilterPlanTypes(t *testing.T) {
	plan := BuildFilterPlan("", []Filter{
		{Key: "client", Value: "Volvo"},
		{Key: "area", Value: "10..20"},
		{Key: "current_price", Value: ">=4,5"},
		{Key: "lead_time_days", Value: "<=10"},
		{Key: "service_ktl", Value: "true"},
		{Key: "weight", Value: ".."},
	})
	require.False(t, plan.Invalid)
	require.Len(t, plan.Predicates, 5)

	assert.Equal(t, FieldText, plan.Predicates[0].Type)
	assert.Equal(t, FieldDecimalRange, plan.Predicates[1].Type)
	assert.True(t, plan.Predicates[1].Decimal.Min.Equal(decimal.NewFromInt(10)))

	price := plan.Predicates[2]
	assert.True(t, price.Target.IsRelated())
	assert.Equal(t, "pl.price", price.Target.QualifiedColumn())
	assert.True(t, price.Decimal.Min.Equal(decimal.RequireFromString("4.5")))

	assert.Equal(t, FieldIntRange, plan.Predicates[3].Type)
	assert.Equal(t, FieldExact, plan.Predicates[4].Type)
	assert.Equal(t, true, plan.Predicates[4].Exact)
}

func TestBuildSortPlan(t *testing.T) {
	plan := BuildSortPlan("", "asc")
	assert.True(t, plan.Default)

	plan = BuildSortPlan("unknown_key", "desc")
	assert.True(t, plan.Default)

	plan = BuildSortPlan("drawings", "asc")
	assert.True(t, plan.Default, "derived columns are not sortable")

	plan = BuildSortPlan("client", "DESC")
	require.False(t, plan.Default)
	assert.True(t, plan.Desc)
	assert.Equal(t, "positions.client", plan.orderExpression())

	plan = BuildSortPlan("ktl_thickness_display", "asc")
	require.False(t, plan.Default)
	assert.Equal(t, "positions.ktl_thickness_txt", plan.orderExpression())

	plan = BuildSortPlan("current_price", "asc")
	require.False(t, plan.Default)
	assert.Contains(t, plan.orderExpression(), "MIN(pl.price)")
	plan = BuildSortPlan("current_price", "desc")
	assert.Contains(t, plan.orderExpression(), "MAX(pl.price)")
	assert.Contains(t, plan.orderExpression(), "pl.status = 'active'")
}

func TestVisibleColumns(t *testing.T) {
	defaults := VisibleColumns(nil, false)
	require.NotEmpty(t, defaults)
	for _, c := range defaults {
		assert.True(t, c.Default)
	}

	cols := VisibleColumns([]string{"code", "bogus", "client", "code"}, true)
	keys := make([]string, 0, len(cols))
	for _, c := range cols {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"code", "client"}, keys)

	assert.Empty(t, VisibleColumns(nil, true), "an explicit empty selection stays empty")
}

func TestParseRequest(t *testing.T) {
	req := ParseRequest("q=+acme+&f%5Barea%5D=10..20&f[client]=Vol&sort=code&dir=desc&cols=code,,client&page=2&page_size=50&f[area]=5..6&f[]=x")
	assert.Equal(t, "acme", req.Query)
	assert.Equal(t, []Filter{{Key: "area", Value: "5..6"}, {Key: "client", Value: "Vol"}}, req.Filters)
	assert.Equal(t, "code", req.Sort)
	assert.Equal(t, "desc", req.Dir)
	assert.True(t, req.ColsGiven)
	assert.Equal(t, []string{"code", "client"}, req.Cols)
	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 50, req.PageSize)

	empty := ParseRequest("")
	assert.False(t, empty.ColsGiven)
	assert.Empty(t, empty.Filters)
}

func TestColumnValues(t *testing.T) {
	row := Row{
		DrawingCount: 2,
		PriceMin:     decimal.NewNullDecimal(decimal.RequireFromString("4.5")),
		PriceMax:     decimal.NewNullDecimal(decimal.RequireFromString("6")),
	}
	row.Position.Code = "P-1"
	row.Position.KTLThicknessUM = decimal.NewNullDecimal(decimal.RequireFromString("20"))

	get := func(key string) string {
		c, ok := ColumnByKey(key)
		require.True(t, ok, key)
		return c.Value(row)
	}
	assert.Equal(t, "P-1", get("code"))
	assert.Equal(t, "2", get("drawings"))
	assert.Equal(t, "4.50–6.00", get("price_range"))
	assert.Equal(t, "20.0", get("ktl_thickness_display"))
	assert.Equal(t, "no", get("service_ktl"))
	assert.Equal(t, "", get("current_price"))

	row.Position.KTLThicknessText = "18-22"
	assert.Equal(t, "18-22", get("ktl_thickness_display"))
}

func TestFormatPriceRange(t *testing.T) {
	five := decimal.NewNullDecimal(decimal.NewFromInt(5))
	assert.Equal(t, "", FormatPriceRange(decimal.NullDecimal{}, decimal.NullDecimal{}))
	assert.Equal(t, "5.00", FormatPriceRange(five, five))
	assert.Equal(t, "5.00", FormatPriceRange(five, decimal.NullDecimal{}))
}
