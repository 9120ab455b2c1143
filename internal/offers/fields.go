package offers

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/elameta/quoteregistry/internal/listing"
	"github.com/elameta/quoteregistry/internal/pricing"
	"github.com/elameta/quoteregistry/pkg/db/models"
)

// NoValue marks an empty cell or an empty price range.
const NoValue = "—"

// FieldRow is one label/value pair of the main information table.
type FieldRow struct {
	Label string
	Value string
	price bool
}

type fieldSource struct {
	label fieldLabel
	value func(p *models.Position, lang Lang, l Labels) string
	price bool
}

var fieldSources = []fieldSource{
	{label: labelClient, value: func(p *models.Position, _ Lang, _ Labels) string { return p.Client }},
	{label: labelProject, value: func(p *models.Position, _ Lang, _ Labels) string { return p.Project }},
	{label: labelCode, value: func(p *models.Position, _ Lang, _ Labels) string { return p.Code }},
	{label: labelName, value: func(p *models.Position, _ Lang, _ Labels) string { return p.Name }},
	{label: labelMetal, value: func(p *models.Position, _ Lang, _ Labels) string { return p.Metal }},
	{label: labelMetalThickness, value: func(p *models.Position, _ Lang, _ Labels) string { return metalThicknesses(p) }},
	{label: labelArea, value: func(p *models.Position, _ Lang, _ Labels) string { return trimmedDecimal(p.Area) }},
	{label: labelWeight, value: func(p *models.Position, _ Lang, _ Labels) string { return trimmedDecimal(p.Weight) }},
	{label: labelServiceKTL, value: func(p *models.Position, _ Lang, l Labels) string { return yesNo(p.ServiceKTL, l) }},
	{label: labelServicePowder, value: func(p *models.Position, _ Lang, l Labels) string { return yesNo(p.ServicePowder, l) }},
	{label: labelServicePrep, value: func(p *models.Position, _ Lang, l Labels) string { return yesNo(p.ServicePrep, l) }},
	{label: labelHanging, value: func(p *models.Position, lang Lang, _ Labels) string {
		if label, ok := hangingLabels[p.KTLHangingMethod]; ok {
			return label.in(lang)
		}
		return string(p.KTLHangingMethod)
	}},
	{label: labelKTLThickness, value: func(p *models.Position, _ Lang, _ Labels) string {
		if !p.ServiceKTL {
			return ""
		}
		return listing.ThicknessDisplay(p.KTLThicknessText, p.KTLThicknessUM)
	}},
	{label: labelPowderThickness, value: func(p *models.Position, _ Lang, _ Labels) string {
		if !p.ServicePowder {
			return ""
		}
		return listing.ThicknessDisplay(p.PowderThicknessText, p.PowderThicknessUM)
	}},
	{label: labelPreparation, value: func(p *models.Position, _ Lang, _ Labels) string { return p.Preparation }},
	{label: labelCoating, value: func(p *models.Position, _ Lang, _ Labels) string { return p.Coating }},
	{label: labelCoatingStandard, value: func(p *models.Position, _ Lang, _ Labels) string { return p.CoatingStandard }},
	{label: labelColor, value: func(p *models.Position, _ Lang, _ Labels) string { return p.Color }},
	{label: labelPowderCode, value: func(p *models.Position, _ Lang, _ Labels) string { return p.PowderCode }},
	{label: labelBatchSizes, value: func(p *models.Position, _ Lang, _ Labels) string { return p.BatchSizes }},
	{label: labelQualityTests, value: func(p *models.Position, _ Lang, _ Labels) string { return p.QualityTests }},
	{label: labelPackaging, value: func(p *models.Position, lang Lang, _ Labels) string { return packagingText(p, lang) }},
	{label: labelExtraServices, value: func(p *models.Position, _ Lang, _ Labels) string { return p.ExtraServicesDescription }},
	{label: labelLeadTime, value: func(p *models.Position, _ Lang, l Labels) string {
		if p.LeadTimeDays == nil {
			return ""
		}
		return fmt.Sprintf("%d %s", *p.LeadTimeDays, l.WorkingDays)
	}},
	{label: labelPrice, price: true, value: func(p *models.Position, _ Lang, _ Labels) string { return trimmedDecimal(p.CurrentPrice) }},
}

// BuildFieldRows lists the non-empty customer facing fields of p in display
// order. The price row shows the span of the offered lines when there are
// any, and notes follow the price row.
func BuildFieldRows(p *models.Position, lines []models.PriceLine, lang Lang, extraNotes string) []FieldRow {
	labels := LabelsFor(lang)
	rows := make([]FieldRow, 0, len(fieldSources)+1)
	for _, src := range fieldSources {
		value := strings.TrimSpace(src.value(p, lang, labels))
		if value == "" {
			continue
		}
		rows = append(rows, FieldRow{Label: src.label.in(lang), Value: humanize(value), price: src.price})
	}

	if span := PriceRange(lines); span != NoValue {
		for i := range rows {
			if rows[i].price {
				rows[i].Value = span
				break
			}
		}
	}

	notes := joinNotes(p.Notes, extraNotes)
	if notes == "" {
		return rows
	}
	at := len(rows)
	for i := range rows {
		if rows[i].price {
			at = i + 1
			break
		}
	}
	notesRow := FieldRow{Label: labelNotes.in(lang), Value: notes}
	rows = append(rows[:at], append([]FieldRow{notesRow}, rows[at:]...)...)
	return rows
}

// PriceRange renders the min–max span of the offered lines with trailing
// zeros trimmed.
func PriceRange(lines []models.PriceLine) string {
	lo, hi := pricing.PriceSpan(lines)
	if !lo.Valid {
		return NoValue
	}
	if lo.Decimal.Equal(hi.Decimal) {
		return lo.Decimal.String()
	}
	return lo.Decimal.String() + "–" + hi.Decimal.String()
}

func joinNotes(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "\n\n")
}

// humanize capitalizes values typed entirely in lower case.
func humanize(value string) string {
	if value != strings.ToLower(value) {
		return value
	}
	r := []rune(value)
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

func yesNo(v bool, l Labels) string {
	if v {
		return l.Yes
	}
	return l.No
}

func trimmedDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func metalThicknesses(p *models.Position) string {
	if len(p.MetalThicknessLines) == 0 {
		return trimmedDecimal(p.MetalThickness)
	}
	values := make([]string, 0, len(p.MetalThicknessLines))
	for _, line := range p.MetalThicknessLines {
		values = append(values, line.ThicknessMM.String())
	}
	return strings.Join(values, ", ")
}

func packagingText(p *models.Position, lang Lang) string {
	kind := ""
	if label, ok := packagingLabels[p.PackagingType]; ok {
		kind = label.in(lang)
	}
	return joinNonEmpty(": ", kind, strings.TrimSpace(p.Packaging))
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
