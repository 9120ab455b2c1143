package imports

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/elameta/quoteregistry/internal/expr"
	"github.com/elameta/quoteregistry/internal/listing"
	"github.com/elameta/quoteregistry/internal/positions"
	"github.com/elameta/quoteregistry/internal/pricing"
	"github.com/elameta/quoteregistry/pkg/types"
)

type setter func(in *positions.PositionInput, raw string) error

type field struct {
	key     string
	aliases []string
	set     setter
}

func textField(key string, get func(in *positions.PositionInput) *string, aliases ...string) field {
	return field{key: key, aliases: aliases, set: func(in *positions.PositionInput, raw string) error {
		*get(in) = raw
		return nil
	}}
}

func decimalField(key string, get func(in *positions.PositionInput) **decimal.Decimal, aliases ...string) field {
	return field{key: key, aliases: aliases, set: func(in *positions.PositionInput, raw string) error {
		d, err := parseDecimal(raw)
		if err != nil {
			return err
		}
		*get(in) = &d
		return nil
	}}
}

func intField(key string, get func(in *positions.PositionInput) **int, aliases ...string) field {
	return field{key: key, aliases: aliases, set: func(in *positions.PositionInput, raw string) error {
		v, err := parseInt(raw)
		if err != nil {
			return err
		}
		*get(in) = &v
		return nil
	}}
}

func boolField(key string, get func(in *positions.PositionInput) *bool, aliases ...string) field {
	return field{key: key, aliases: aliases, set: func(in *positions.PositionInput, raw string) error {
		v, err := parseBool(raw)
		if err != nil {
			return err
		}
		*get(in) = v
		return nil
	}}
}

func dateField(key string, get func(in *positions.PositionInput) **types.Date, aliases ...string) field {
	return field{key: key, aliases: aliases, set: func(in *positions.PositionInput, raw string) error {
		d, err := types.ParseDate(raw)
		if err != nil {
			return fmt.Errorf("expected a date like 2006-01-02")
		}
		*get(in) = &d
		return nil
	}}
}

// priceKey and unitKey collect a single price line per row.
const (
	priceKey = "current_price"
	unitKey  = "unit"
)

var fields = []field{
	textField("client", func(in *positions.PositionInput) *string { return &in.Client }),
	textField("project", func(in *positions.PositionInput) *string { return &in.Project }),
	textField("code", func(in *positions.PositionInput) *string { return &in.Code }, "drawing code", "brėžinio kodas"),
	textField("name", func(in *positions.PositionInput) *string { return &in.Name }, "detalės pavadinimas"),
	textField("metal", func(in *positions.PositionInput) *string { return &in.Metal }, "metalo tipas"),
	{key: "metal_thickness", aliases: []string{"metal_thicknesses"}, set: func(in *positions.PositionInput, raw string) error {
		in.MetalThicknesses = splitList(raw)
		return nil
	}},
	decimalField("area", func(in *positions.PositionInput) **decimal.Decimal { return &in.Area }),
	decimalField("weight", func(in *positions.PositionInput) **decimal.Decimal { return &in.Weight }),
	decimalField("x_mm", func(in *positions.PositionInput) **decimal.Decimal { return &in.XMM }),
	decimalField("y_mm", func(in *positions.PositionInput) **decimal.Decimal { return &in.YMM }),
	decimalField("z_mm", func(in *positions.PositionInput) **decimal.Decimal { return &in.ZMM }),
	boolField("service_ktl", func(in *positions.PositionInput) *bool { return &in.ServiceKTL }),
	boolField("service_powder", func(in *positions.PositionInput) *bool { return &in.ServicePowder }),
	boolField("service_prep", func(in *positions.PositionInput) *bool { return &in.ServicePrep }),
	textField("ktl_hanging_method", func(in *positions.PositionInput) *string { return &in.KTLHangingMethod }, "kabinimo būdas", "hanging method"),
	textField("ktl_thickness_display", func(in *positions.PositionInput) *string { return &in.KTLThickness }, "ktl_thickness", "ktl_thickness_txt"),
	textField("powder_thickness_display", func(in *positions.PositionInput) *string { return &in.PowderThickness }, "powder_thickness", "powder_thickness_txt"),
	textField("preparation", func(in *positions.PositionInput) *string { return &in.Preparation }, "paruošimas"),
	textField("coating", func(in *positions.PositionInput) *string { return &in.Coating }),
	textField("coating_standard", func(in *positions.PositionInput) *string { return &in.CoatingStandard }),
	textField("color", func(in *positions.PositionInput) *string { return &in.Color }),
	textField("powder_code", func(in *positions.PositionInput) *string { return &in.PowderCode }),
	textField("powder_color", func(in *positions.PositionInput) *string { return &in.PowderColor }),
	textField("powder_supplier", func(in *positions.PositionInput) *string { return &in.PowderSupplier }),
	textField("batch_sizes", func(in *positions.PositionInput) *string { return &in.BatchSizes }),
	intField("annual_qty_from", func(in *positions.PositionInput) **int { return &in.AnnualQtyFrom }),
	intField("annual_qty_to", func(in *positions.PositionInput) **int { return &in.AnnualQtyTo }),
	dateField("project_life_from", func(in *positions.PositionInput) **types.Date { return &in.ProjectLifeFrom }),
	dateField("project_life_to", func(in *positions.PositionInput) **types.Date { return &in.ProjectLifeTo }),
	intField("lead_time_days", func(in *positions.PositionInput) **int { return &in.LeadTimeDays }),
	textField("quality_tests", func(in *positions.PositionInput) *string { return &in.QualityTests }),
	textField("packaging_type", func(in *positions.PositionInput) *string { return &in.PackagingType }),
	textField("packaging", func(in *positions.PositionInput) *string { return &in.Packaging }),
	textField("instructions", func(in *positions.PositionInput) *string { return &in.Instructions }),
	textField("masking", func(in *positions.PositionInput) *string { return &in.Masking }),
	textField("extra_services", func(in *positions.PositionInput) *string { return &in.ExtraServices }),
	textField("extra_services_description", func(in *positions.PositionInput) *string { return &in.ExtraServicesDescription }),
	textField("notes", func(in *positions.PositionInput) *string { return &in.Notes }),
	{key: priceKey, aliases: []string{"price", "kaina"}, set: func(in *positions.PositionInput, raw string) error {
		d, err := parseDecimal(raw)
		if err != nil {
			return err
		}
		line := firstPriceLine(in)
		line.Price = &d
		return nil
	}},
	{key: unitKey, aliases: []string{"matas"}, set: func(in *positions.PositionInput, raw string) error {
		firstPriceLine(in).Unit = raw
		return nil
	}},
}

// fieldIndex maps every normalized header alias to its field. Keys and
// explicit aliases win over listing labels, and a label shared by two
// columns maps to neither.
var fieldIndex = func() map[string]field {
	out := make(map[string]field, len(fields)*4)
	for _, f := range fields {
		for _, name := range append([]string{f.key}, f.aliases...) {
			out[normalizeHeader(name)] = f
		}
	}
	labels := map[string][]field{}
	for _, f := range fields {
		c, ok := listing.ColumnByKey(f.key)
		if !ok {
			continue
		}
		for _, name := range []string{c.Label, c.LabelLT} {
			norm := normalizeHeader(name)
			if len(labels[norm]) > 0 && labels[norm][0].key == f.key {
				continue
			}
			labels[norm] = append(labels[norm], f)
		}
	}
	for norm, candidates := range labels {
		if _, taken := out[norm]; taken || len(candidates) != 1 {
			continue
		}
		out[norm] = candidates[0]
	}
	return out
}()

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimSuffix(h, "*")
	return strings.TrimSpace(h)
}

// mapHeaders resolves each header to a field. Unmatched headers are returned
// separately and their cells ignored.
func mapHeaders(headers []string) ([]*field, []string) {
	mapped := make([]*field, len(headers))
	var unrecognized []string
	seen := map[string]struct{}{}
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			continue
		}
		f, ok := fieldIndex[normalizeHeader(h)]
		if !ok {
			unrecognized = append(unrecognized, h)
			continue
		}
		if _, dup := seen[f.key]; dup {
			unrecognized = append(unrecognized, h)
			continue
		}
		seen[f.key] = struct{}{}
		mapped[i] = &f
	}
	return mapped, unrecognized
}

func firstPriceLine(in *positions.PositionInput) *pricing.LineInput {
	if len(in.PriceLines) == 0 {
		in.PriceLines = append(in.PriceLines, pricing.LineInput{})
	}
	return &in.PriceLines[0]
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	d, err := expr.ParseDecimal(strings.ReplaceAll(raw, " ", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("expected a number")
	}
	return d, nil
}

func parseInt(raw string) (int, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if v, err := strconv.Atoi(clean); err == nil {
		return v, nil
	}
	// spreadsheets often hand integers back as "12.0"
	d, err := parseDecimal(clean)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("expected a whole number")
	}
	return int(d.IntPart()), nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "x", "taip", "yra", "+":
		return true, nil
	case "0", "false", "no", "n", "ne", "nėra", "-":
		return false, nil
	}
	return false, fmt.Errorf("expected yes or no")
}

func splitList(raw string) []string {
	// commas stay inside values as decimal separators
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '/' || r == '|' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
