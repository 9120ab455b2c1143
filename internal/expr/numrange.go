package expr

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidRange is returned for filter values that are not a range expression.
var ErrInvalidRange = errors.New("invalid range expression")

// ErrInvalidNumber is returned for values that are not a plain decimal number.
var ErrInvalidNumber = errors.New("invalid number")

// MaxFractionDigits bounds the scale accepted from user input.
const MaxFractionDigits = 12

// plainDecimalRe has no exponent form: "1e9" or "NaN" never reach the decimal parser.
var plainDecimalRe = regexp.MustCompile(`^[+-]?\d{1,30}(?:\.\d{1,12})?$`)

// ParseDecimal parses a plain decimal number. A decimal comma is accepted.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if !plainDecimalRe.MatchString(s) {
		return decimal.Decimal{}, ErrInvalidNumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidNumber
	}
	return d, nil
}

// IsPlainDecimal reports whether d could have been written without an
// exponent and with at most MaxFractionDigits fractional digits. Decoded
// JSON numbers are checked with it before they are rounded or stored.
func IsPlainDecimal(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp <= 0 && exp >= -MaxFractionDigits
}

// DecimalRange is an inclusive bound pair; nil means unbounded on that side.
type DecimalRange struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// IntRange is the integer counterpart of DecimalRange.
type IntRange struct {
	Min *int64
	Max *int64
}

// IsZero reports whether neither bound is set.
func (r DecimalRange) IsZero() bool { return r.Min == nil && r.Max == nil }

// IsZero reports whether neither bound is set.
func (r IntRange) IsZero() bool { return r.Min == nil && r.Max == nil }

// Contains reports whether v lies within the inclusive bounds.
func (r DecimalRange) Contains(v decimal.Decimal) bool {
	if r.Min != nil && v.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && v.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// Contains reports whether v lies within the inclusive bounds.
func (r IntRange) Contains(v int64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

type rangeBounds struct {
	lo, hi       string
	hasLo, hasHi bool
}

// splitRange recognizes A..B, >=A, <=A, =A, >A, <A and a bare A. The strict
// operators are inclusive, matching how the listing has always read them.
func splitRange(raw string) (rangeBounds, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return rangeBounds{}, ErrInvalidRange
	}
	switch {
	case strings.Contains(s, ".."):
		left, right, _ := strings.Cut(s, "..")
		left, right = strings.TrimSpace(left), strings.TrimSpace(right)
		return rangeBounds{lo: left, hi: right, hasLo: left != "", hasHi: right != ""}, nil
	case strings.HasPrefix(s, ">="):
		return oneSided(s[2:], true)
	case strings.HasPrefix(s, "<="):
		return oneSided(s[2:], false)
	case strings.HasPrefix(s, "="):
		v := strings.TrimSpace(s[1:])
		return rangeBounds{lo: v, hi: v, hasLo: true, hasHi: true}, nil
	case strings.HasPrefix(s, ">"):
		return oneSided(s[1:], true)
	case strings.HasPrefix(s, "<"):
		return oneSided(s[1:], false)
	default:
		return rangeBounds{lo: s, hi: s, hasLo: true, hasHi: true}, nil
	}
}

func oneSided(value string, lower bool) (rangeBounds, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return rangeBounds{}, ErrInvalidRange
	}
	if lower {
		return rangeBounds{lo: value, hasLo: true}, nil
	}
	return rangeBounds{hi: value, hasHi: true}, nil
}

// ParseDecimalRange parses a decimal filter expression. A decimal comma is accepted.
func ParseDecimalRange(raw string) (DecimalRange, error) {
	b, err := splitRange(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return DecimalRange{}, err
	}
	var r DecimalRange
	if b.hasLo {
		v, err := ParseDecimal(b.lo)
		if err != nil {
			return DecimalRange{}, ErrInvalidRange
		}
		r.Min = &v
	}
	if b.hasHi {
		v, err := ParseDecimal(b.hi)
		if err != nil {
			return DecimalRange{}, ErrInvalidRange
		}
		r.Max = &v
	}
	return r, nil
}

// ParseIntRange parses an integer filter expression.
func ParseIntRange(raw string) (IntRange, error) {
	b, err := splitRange(raw)
	if err != nil {
		return IntRange{}, err
	}
	var r IntRange
	if b.hasLo {
		v, err := strconv.ParseInt(b.lo, 10, 64)
		if err != nil {
			return IntRange{}, ErrInvalidRange
		}
		r.Min = &v
	}
	if b.hasHi {
		v, err := strconv.ParseInt(b.hi, 10, 64)
		if err != nil {
			return IntRange{}, ErrInvalidRange
		}
		r.Max = &v
	}
	return r, nil
}
