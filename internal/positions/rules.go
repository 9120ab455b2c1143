package positions

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/elameta/quoteregistry/internal/expr"
	"github.com/elameta/quoteregistry/pkg/db/models"
	"github.com/elameta/quoteregistry/pkg/enums"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
)

const (
	DefaultPreparation = "Gardobond 24T"
	DefaultKTLCoating  = "KTL BASF CG 570"
)

var (
	metalThicknessScale = int32(2)
	dimensionScale      = int32(3)
)

// Draft is a position with its owned collections, ready to persist.
type Draft struct {
	Position         models.Position
	MaskingLines     []models.MaskingLine
	MetalThicknesses []decimal.Decimal
}

// BuildDraft applies the position business rules to in. Field errors
// accumulate and are returned as one validation error.
func BuildDraft(in PositionInput) (Draft, error) {
	errs := pkgerrors.FieldErrors{}
	p := models.Position{
		Client:  strings.TrimSpace(in.Client),
		Project: strings.TrimSpace(in.Project),
		Code:    strings.TrimSpace(in.Code),
		Name:    strings.TrimSpace(in.Name),

		Metal:  strings.TrimSpace(in.Metal),
		Area:   optionalDecimal(in.Area, "area", errs),
		Weight: optionalDecimal(in.Weight, "weight", errs),
		XMM:    optionalDecimal(in.XMM, "x_mm", errs),
		YMM:    optionalDecimal(in.YMM, "y_mm", errs),
		ZMM:    optionalDecimal(in.ZMM, "z_mm", errs),

		ServiceKTL:    in.ServiceKTL,
		ServicePowder: in.ServicePowder,
		ServicePrep:   in.ServicePrep,

		KTLFrameHanging:       strings.TrimSpace(in.KTLFrameHanging),
		KTLPartsPerFrame:      in.KTLPartsPerFrame,
		KTLActualPerFrame:     in.KTLActualPerFrame,
		KTLLengthMM:           optionalDecimal(in.KTLLengthMM, "ktl_length_mm", errs),
		KTLHeightMM:           optionalDecimal(in.KTLHeightMM, "ktl_height_mm", errs),
		KTLDepthMM:            optionalDecimal(in.KTLDepthMM, "ktl_depth_mm", errs),
		KTLHangingDescription: strings.TrimSpace(in.KTLHangingDescription),
		KTLNotes:              strings.TrimSpace(in.KTLNotes),

		PowderQtyPerHour:         optionalDecimal(in.PowderQtyPerHour, "powder_qty_per_hour", errs),
		PowderActualPerHour:      optionalDecimal(in.PowderActualPerHour, "powder_actual_per_hour", errs),
		PowderPartsPerFrame:      in.PowderPartsPerFrame,
		PowderActualPerFrame:     in.PowderActualPerFrame,
		PowderHangingDescription: strings.TrimSpace(in.PowderHangingDescription),
		PowderNotes:              strings.TrimSpace(in.PowderNotes),
		PowderCode:               strings.TrimSpace(in.PowderCode),
		PowderColor:              strings.TrimSpace(in.PowderColor),
		PowderSupplier:           strings.TrimSpace(in.PowderSupplier),
		PowderGloss:              strings.TrimSpace(in.PowderGloss),
		PowderPrice:              optionalDecimal(in.PowderPrice, "powder_price", errs),

		Color:           strings.TrimSpace(in.Color),
		Preparation:     strings.TrimSpace(in.Preparation),
		Coating:         strings.TrimSpace(in.Coating),
		CoatingStandard: strings.TrimSpace(in.CoatingStandard),
		ServiceNotes:    strings.TrimSpace(in.ServiceNotes),

		BatchSizes:      strings.TrimSpace(in.BatchSizes),
		AnnualQtyFrom:   in.AnnualQtyFrom,
		AnnualQtyTo:     in.AnnualQtyTo,
		ProjectLifeFrom: in.ProjectLifeFrom.TimePtr(),
		ProjectLifeTo:   in.ProjectLifeTo.TimePtr(),
		LeadTimeDays:    in.LeadTimeDays,
		LeadTimeDate:    in.LeadTimeDate.TimePtr(),
		QualityTests:    strings.TrimSpace(in.QualityTests),

		Packaging:    strings.TrimSpace(in.Packaging),
		Instructions: strings.TrimSpace(in.Instructions),

		Masking: strings.TrimSpace(in.Masking),
		Notes:   strings.TrimSpace(in.Notes),
	}

	if method, err := enums.ParseHangingMethod(in.KTLHangingMethod); err != nil {
		errs.Add("ktl_hanging_method", err.Error())
	} else {
		p.KTLHangingMethod = method
	}
	if packaging, err := enums.ParsePackagingType(in.PackagingType); err != nil {
		errs.Add("packaging_type", err.Error())
	} else {
		p.PackagingType = packaging
	}

	applyThickness(in.KTLThickness, "ktl_thickness", &p.KTLThicknessText, &p.KTLThicknessUM, errs)
	applyThickness(in.PowderThickness, "powder_thickness", &p.PowderThicknessText, &p.PowderThicknessUM, errs)

	applyServiceDefaults(&p)
	applyExtraServices(&p, in, errs)
	checkRanges(p, errs)

	p.KTLDimensionProduct = DimensionProduct(p.KTLLengthMM, p.KTLHeightMM, p.KTLDepthMM)

	thicknesses := ParseMetalThicknesses(in.MetalThicknesses)
	if len(thicknesses) > 0 {
		p.MetalThickness = decimal.NewNullDecimal(thicknesses[0])
	}

	masks, maskErrs := buildMaskingLines(in.MaskingLines)
	errs.Merge("", maskErrs)
	SyncMaskingType(&p, len(masks) > 0)

	if err := errs.Err("position is invalid"); err != nil {
		return Draft{}, err
	}
	return Draft{Position: p, MaskingLines: masks, MetalThicknesses: thicknesses}, nil
}

func optionalDecimal(v *decimal.Decimal, field string, errs pkgerrors.FieldErrors) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	if !expr.IsPlainDecimal(*v) {
		errs.Add(field, field+" must be a plain decimal number")
		return decimal.NullDecimal{}
	}
	if v.IsNegative() {
		errs.Add(field, field+" must not be negative")
	}
	return decimal.NewNullDecimal(*v)
}

func applyThickness(raw, field string, text *string, value *decimal.NullDecimal, errs pkgerrors.FieldErrors) {
	parsed, err := expr.ParseThickness(raw)
	if err != nil {
		errs.Add(field, err.Error())
		return
	}
	*text = parsed.Text
	*value = parsed.Value
}

func applyServiceDefaults(p *models.Position) {
	if p.ServiceKTL || p.ServicePowder {
		p.ServicePrep = true
	}
	if p.ServicePrep && !p.ServiceKTL && !p.ServicePowder && p.Preparation == "" {
		p.Preparation = DefaultPreparation
	}
	if p.ServiceKTL && p.Coating == "" {
		p.Coating = DefaultKTLCoating
	}
	switch {
	case p.ServicePowder && p.PowderColor != "":
		p.Color = p.PowderColor
	case !p.ServicePowder:
		p.Color = ""
	}
}

func applyExtraServices(p *models.Position, in PositionInput, errs pkgerrors.FieldErrors) {
	p.ExtraServices = enums.NormalizeExtraServices(in.ExtraServices)
	description := strings.TrimSpace(in.ExtraServicesDescription)
	if p.ExtraServices == enums.ExtraServicesNo {
		p.ExtraServicesDescription = ""
		return
	}
	if description == "" {
		errs.Add("extra_services_description", "a description is required when extra services are requested")
	}
	p.ExtraServicesDescription = description
}

func checkRanges(p models.Position, errs pkgerrors.FieldErrors) {
	if p.AnnualQtyFrom != nil && p.AnnualQtyTo != nil && *p.AnnualQtyFrom > *p.AnnualQtyTo {
		errs.Add("annual_qty_from", "annual_qty_from must not exceed annual_qty_to")
		errs.Add("annual_qty_to", "annual_qty_to must not be below annual_qty_from")
	}
	if p.ProjectLifeFrom != nil && p.ProjectLifeTo != nil && p.ProjectLifeFrom.After(*p.ProjectLifeTo) {
		errs.Add("project_life_from", "project_life_from must not be after project_life_to")
		errs.Add("project_life_to", "project_life_to must not be before project_life_from")
	}
}

// DimensionProduct multiplies the KTL hanging dimensions, or returns null
// when any factor is missing.
func DimensionProduct(length, height, depth decimal.NullDecimal) decimal.NullDecimal {
	if !length.Valid || !height.Valid || !depth.Valid {
		return decimal.NullDecimal{}
	}
	product := length.Decimal.Mul(height.Decimal).Mul(depth.Decimal)
	return decimal.NewNullDecimal(product.Round(dimensionScale))
}

// ParseMetalThicknesses keeps the parseable, non-negative values in order,
// quantized to hundredths. Commas are accepted as decimal separators.
func ParseMetalThicknesses(raw []string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(raw))
	for _, value := range raw {
		if strings.TrimSpace(value) == "" {
			continue
		}
		d, err := expr.ParseDecimal(value)
		if err != nil || d.IsNegative() {
			continue
		}
		out = append(out, d.Round(metalThicknessScale))
	}
	return out
}

func buildMaskingLines(inputs []MaskingInput) ([]models.MaskingLine, pkgerrors.FieldErrors) {
	errs := pkgerrors.FieldErrors{}
	lines := make([]models.MaskingLine, 0, len(inputs))
	for i, in := range inputs {
		mask := strings.TrimSpace(in.Mask)
		description := strings.TrimSpace(in.Description)
		if mask == "" && in.Places == nil && description == "" {
			continue
		}
		service, err := enums.ParseMaskingService(in.Service)
		if err != nil {
			errs.Add(maskingField(i, "service"), err.Error())
			continue
		}
		if in.Places != nil && *in.Places < 0 {
			errs.Add(maskingField(i, "places"), "places must not be negative")
		}
		lines = append(lines, models.MaskingLine{
			Service:     service,
			Mask:        mask,
			Places:      in.Places,
			Description: description,
		})
	}
	return lines, errs
}

func maskingField(i int, field string) string {
	return fmt.Sprintf("masking_lines[%d].%s", i, field)
}

// SyncMaskingType marks masking present when any masking row exists and
// clears the free-text masking note otherwise.
func SyncMaskingType(p *models.Position, hasRows bool) {
	if hasRows {
		p.MaskingType = enums.MaskingTypePresent
		return
	}
	p.MaskingType = enums.MaskingTypeNone
	p.Masking = ""
}
