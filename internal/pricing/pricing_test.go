package pricing

import (
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elameta/quoteregistry/pkg/db/models"
	"github.com/elameta/quoteregistry/pkg/enums"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/types"
)

func intPtr(v int) *int { return &v }
func idPtr(v int64) *int64 { return &v }
func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func activeLine(id int64, p string, from, to *int) models.PriceLine {
	return models.PriceLine{
		ID:      id,
		Price:   decimal.NewNullDecimal(decimal.RequireFromString(p)),
		Status:  enums.PriceLineStatusActive,
		Unit:    enums.UnitPiece,
		QtyFrom: from,
		QtyTo:   to,
	}
}

func TestValidateLineEmptyNewIsSkipped(t *testing.T) {
	action, errs := ValidateLine(LineInput{Unit: "piece", StatusToggle: "active", Note: "   "})
	assert.Equal(t, ActionSkip, action)
	assert.Empty(t, errs)
}

func TestValidateLineDeleteSkipsValidation(t *testing.T) {
	action, errs := ValidateLine(LineInput{ID: idPtr(4), Delete: true, QtyFrom: intPtr(20), QtyTo: intPtr(1)})
	assert.Equal(t, ActionDelete, action)
	assert.Empty(t, errs)

	action, _ = ValidateLine(LineInput{Delete: true, QtyFrom: intPtr(5)})
	assert.Equal(t, ActionSkip, action)
}

func TestValidateLinePriceMandatory(t *testing.T) {
	action, errs := ValidateLine(LineInput{QtyFrom: intPtr(10), QtyTo: intPtr(20)})
	assert.Equal(t, ActionCreate, action)
	assert.True(t, errs.Has("price"))
	assert.Len(t, errs, 1)

	_, errs = ValidateLine(LineInput{ID: idPtr(3)})
	assert.True(t, errs.Has("price"), "existing lines can not become empty")
}

func TestValidateLineRejectsExponentPrice(t *testing.T) {
	var in LineInput
	require.NoError(t, json.Unmarshal([]byte(`{"price": 1e999999999}`), &in))
	_, errs := ValidateLine(in)
	assert.True(t, errs.Has("price"))

	_, errs = ValidateLine(LineInput{Price: price("1e-999999999")})
	assert.True(t, errs.Has("price"))

	_, err := PlanBatch(1, []LineInput{in})
	require.Error(t, err)

	_, errs = ValidateLine(LineInput{Price: price("12.3456")})
	assert.Empty(t, errs)
}

func TestValidateLineQuantityRange(t *testing.T) {
	_, errs := ValidateLine(LineInput{Price: price("5"), QtyFrom: intPtr(5)})
	assert.True(t, errs.Has("qty_to"))
	assert.False(t, errs.Has("qty_from"))

	_, errs = ValidateLine(LineInput{Price: price("5"), QtyFrom: intPtr(20), QtyTo: intPtr(10)})
	assert.True(t, errs.Has("qty_to"))

	_, errs = ValidateLine(LineInput{QtyTo: intPtr(10)})
	assert.True(t, errs.Has("price"))
	assert.True(t, errs.Has("qty_from"), "errors on independent fields accumulate")

	action, errs := ValidateLine(LineInput{ID: idPtr(9), Price: price("5"), QtyFrom: intPtr(10), QtyTo: intPtr(10)})
	assert.Equal(t, ActionUpdate, action)
	assert.Empty(t, errs)
}

func TestValidateLineRejectsBadUnitAndDates(t *testing.T) {
	from := types.NewDate(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	to := types.NewDate(from.AddDate(0, 0, -1))
	_, errs := ValidateLine(LineInput{Price: price("1"), Unit: "litre", ValidFrom: &from, ValidTo: &to})
	assert.True(t, errs.Has("unit"))
	assert.True(t, errs.Has("valid_to"))
}

func TestToModelForcesLegacyFieldsAndStatus(t *testing.T) {
	line := LineInput{ID: idPtr(7), Price: price("1.234567"), Unit: "kg", StatusToggle: "inactive"}.ToModel(42)
	assert.EqualValues(t, 42, line.PositionID)
	assert.EqualValues(t, 7, line.ID)
	assert.False(t, line.IsFixed)
	assert.Nil(t, line.FixedQty)
	assert.Equal(t, enums.PriceLineStatusSuperseded, line.Status)
	assert.Equal(t, enums.UnitKg, line.Unit)
	assert.Equal(t, "1.2346", line.Price.Decimal.StringFixed(4))

	defaulted := LineInput{Price: price("1"), StatusToggle: "active"}.ToModel(1)
	assert.Equal(t, enums.UnitPiece, defaulted.Unit)
	assert.Equal(t, enums.PriceLineStatusActive, defaulted.Status)
}

func TestPlanBatchAccumulatesIndexedErrors(t *testing.T) {
	_, err := PlanBatch(1, []LineInput{
		{Price: price("5"), QtyFrom: intPtr(1), QtyTo: intPtr(10), StatusToggle: "active"},
		{},
		{QtyFrom: intPtr(5)},
		{Price: price("4"), QtyFrom: intPtr(20), QtyTo: intPtr(10)},
	})
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.True(t, stderrors.As(err, &typed))
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "lines[2].price")
	assert.Contains(t, details, "lines[2].qty_to")
	assert.Contains(t, details, "lines[3].qty_to")
	assert.NotContains(t, details, "lines[1].price")
}

func TestPlanBatchBuildsActions(t *testing.T) {
	plan, err := PlanBatch(3, []LineInput{
		{Price: price("5"), StatusToggle: "active"},
		{},
		{ID: idPtr(11), Delete: true},
		{ID: idPtr(12), Price: price("4")},
	})
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, ActionCreate, plan[0].Action)
	assert.Equal(t, 0, plan[0].Index)
	assert.Equal(t, ActionDelete, plan[1].Action)
	assert.Equal(t, ActionUpdate, plan[2].Action)
	assert.Equal(t, 3, plan[2].Index)
}

func TestResolveActivePriceRangeMatch(t *testing.T) {
	lines := []models.PriceLine{
		activeLine(1, "5", intPtr(1), intPtr(10)),
		activeLine(2, "4", intPtr(11), nil),
	}
	got := ResolveActivePrice(lines, 5)
	require.NotNil(t, got)
	assert.EqualValues(t, 1, got.ID)

	got = ResolveActivePrice(lines, 50)
	require.NotNil(t, got)
	assert.EqualValues(t, 2, got.ID)

	assert.Nil(t, ResolveActivePrice(lines, 0))
}

func TestResolveActivePriceFixedMatch(t *testing.T) {
	fixed := activeLine(1, "3", nil, nil)
	fixed.IsFixed = true
	fixed.FixedQty = intPtr(100)
	lines := []models.PriceLine{fixed}

	got := ResolveActivePrice(lines, 100)
	require.NotNil(t, got)
	assert.EqualValues(t, 1, got.ID)
	assert.Nil(t, ResolveActivePrice(lines, 99))
}

func TestResolveActivePriceSkipsInactiveAndTakesFirstOverlap(t *testing.T) {
	old := activeLine(1, "9", nil, nil)
	old.Status = enums.PriceLineStatusSuperseded
	lines := []models.PriceLine{
		old,
		activeLine(2, "6", nil, nil),
		activeLine(3, "5", intPtr(0), intPtr(1000)),
	}
	got := ResolveActivePrice(lines, 10)
	require.NotNil(t, got)
	assert.EqualValues(t, 2, got.ID)
}

func TestCurrentPricePrefersPriorityThenNewest(t *testing.T) {
	a := activeLine(1, "5", nil, nil)
	b := activeLine(2, "6", nil, nil)
	c := activeLine(3, "7", nil, nil)
	c.Status = enums.PriceLineStatusProposal
	got := CurrentPrice([]models.PriceLine{a, b, c})
	require.True(t, got.Valid)
	assert.Equal(t, "6", got.Decimal.String())

	a.Priority = 10
	got = CurrentPrice([]models.PriceLine{a, b, c})
	assert.Equal(t, "5", got.Decimal.String())

	assert.False(t, CurrentPrice(nil).Valid)
}

func TestPriceSpan(t *testing.T) {
	inactive := activeLine(9, "1", nil, nil)
	inactive.Status = enums.PriceLineStatusSuperseded
	lo, hi := PriceSpan([]models.PriceLine{
		activeLine(1, "5.5", nil, nil),
		activeLine(2, "4.25", nil, nil),
		activeLine(3, "7", nil, nil),
		inactive,
	})
	assert.Equal(t, "4.25", lo.Decimal.String())
	assert.Equal(t, "7", hi.Decimal.String())
}

func TestCheckOverlaps(t *testing.T) {
	ok := []models.PriceLine{
		activeLine(2, "4", intPtr(11), intPtr(20)),
		activeLine(1, "5", intPtr(1), intPtr(10)),
		activeLine(3, "3", intPtr(21), nil),
	}
	assert.NoError(t, CheckOverlaps(ok))

	bad := []models.PriceLine{
		activeLine(1, "5", intPtr(1), intPtr(10)),
		activeLine(2, "4", intPtr(10), intPtr(20)),
	}
	err := CheckOverlaps(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "10 >= 10")

	var typed *pkgerrors.Error
	require.True(t, stderrors.As(err, &typed))
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestSelectForOfferOrdersAndFilters(t *testing.T) {
	now := time.Now()
	a := activeLine(1, "5", intPtr(100), intPtr(200))
	b := activeLine(2, "6", intPtr(1), intPtr(99))
	c := activeLine(3, "7", nil, nil)
	d := activeLine(4, "8", intPtr(1), intPtr(99))
	d.Unit = enums.UnitKg
	e := activeLine(5, "9", intPtr(1), intPtr(99))
	e.CreatedAt = now.Add(time.Hour)
	b.CreatedAt = now
	old := activeLine(6, "1", nil, nil)
	old.Status = enums.PriceLineStatusSuperseded

	got := SelectForOffer([]models.PriceLine{a, b, c, d, e, old}, nil)
	ids := make([]int64, 0, len(got))
	for _, line := range got {
		ids = append(ids, line.ID)
	}
	assert.Equal(t, []int64{4, 5, 2, 1, 3}, ids)

	subset := SelectForOffer([]models.PriceLine{a, b, c, old}, []int64{3, 6})
	require.Len(t, subset, 1)
	assert.EqualValues(t, 3, subset[0].ID)
}
