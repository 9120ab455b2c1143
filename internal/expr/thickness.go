package expr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ThicknessFormats lists the accepted coating thickness notations.
const ThicknessFormats = "12.5, 12-13, 3<>6, 33 +/- 5, >=12"

// ThicknessKind classifies a parsed thickness expression.
type ThicknessKind string

const (
	ThicknessEmpty      ThicknessKind = "empty"
	ThicknessPlain      ThicknessKind = "plain"
	ThicknessRange      ThicknessKind = "range"
	ThicknessTolerance  ThicknessKind = "tolerance"
	ThicknessComparison ThicknessKind = "comparison"
)

// Thickness is a normalized coating thickness. Value is set only for plain numbers.
type Thickness struct {
	Kind  ThicknessKind
	Text  string
	Value decimal.NullDecimal
}

// ParseError reports input that does not match any accepted notation.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

var (
	numPattern = `\d+(?:\.\d+)?`

	thicknessNumRe   = regexp.MustCompile(`^` + numPattern + `$`)
	thicknessRangeRe = regexp.MustCompile(`^(` + numPattern + `)(?:-|<>)(` + numPattern + `)$`)
	thicknessPMRe    = regexp.MustCompile(`^(` + numPattern + `)\+/-(-?` + numPattern + `)$`)
	thicknessCmpRe   = regexp.MustCompile(`^(>=|<=|>|<)(` + numPattern + `)$`)

	dashVariants  = strings.NewReplacer("–", "-", "—", "-", "−", "-", "±", "+/-")
	toWordRe      = regexp.MustCompile(`(?i)\bto\b`)
	spaceRunRe    = regexp.MustCompile(`\s+`)
	spacedDashRe  = regexp.MustCompile(`\s*-\s*`)
	spacedDiamRe  = regexp.MustCompile(`\s*<>\s*`)
	spacedPMRe    = regexp.MustCompile(`\s*\+/-\s*`)
	leadingCmpRe  = regexp.MustCompile(`^(>=|<=|>|<)\s*`)
	oneDecimal    = int32(1)
	thicknessHint = "invalid format, accepted: " + ThicknessFormats
)

// NormalizeThickness rewrites free-text input into the canonical notation.
// It is idempotent on every accepted notation. Malformed input such as
// "1,,2" may change again on a second pass; ParseThickness rejects it either way.
func NormalizeThickness(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = dashVariants.Replace(s)
	s = strings.ReplaceAll(s, "..", "-")
	s = toWordRe.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
	s = spacedDashRe.ReplaceAllString(s, "-")
	s = spacedDiamRe.ReplaceAllString(s, "<>")
	s = spacedPMRe.ReplaceAllString(s, "+/-")
	s = leadingCmpRe.ReplaceAllString(s, "$1")
	return s
}

// ParseThickness normalizes raw and classifies it. Blank input is a valid,
// unconstrained thickness.
func ParseThickness(raw string) (Thickness, error) {
	s := NormalizeThickness(raw)
	if s == "" {
		return Thickness{Kind: ThicknessEmpty}, nil
	}

	if thicknessNumRe.MatchString(s) {
		value, err := decimal.NewFromString(s)
		if err != nil {
			return Thickness{}, &ParseError{Input: raw, Reason: thicknessHint}
		}
		return Thickness{
			Kind:  ThicknessPlain,
			Text:  s,
			Value: decimal.NewNullDecimal(RoundHalfUp(value, oneDecimal)),
		}, nil
	}

	if m := thicknessRangeRe.FindStringSubmatch(s); m != nil {
		lo, hi := decimal.RequireFromString(m[1]), decimal.RequireFromString(m[2])
		if lo.GreaterThan(hi) {
			return Thickness{}, &ParseError{Input: raw, Reason: "range start must not exceed range end"}
		}
		return Thickness{Kind: ThicknessRange, Text: s}, nil
	}

	if m := thicknessPMRe.FindStringSubmatch(s); m != nil {
		if decimal.RequireFromString(m[2]).IsNegative() {
			return Thickness{}, &ParseError{Input: raw, Reason: "tolerance after +/- must not be negative"}
		}
		return Thickness{Kind: ThicknessTolerance, Text: s}, nil
	}

	if thicknessCmpRe.MatchString(s) {
		return Thickness{Kind: ThicknessComparison, Text: s}, nil
	}

	return Thickness{}, &ParseError{Input: raw, Reason: thicknessHint}
}

// RoundHalfUp rounds d to places fractional digits, halves away from zero.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// String renders the canonical text, or a dash placeholder when empty.
func (t Thickness) String() string {
	if t.Text == "" {
		return "-"
	}
	return t.Text
}

// Describe returns "<text> <unit>" for display, or "" when unconstrained.
func (t Thickness) Describe(unit string) string {
	if t.Text == "" {
		return ""
	}
	return fmt.Sprintf("%s %s", t.Text, unit)
}
