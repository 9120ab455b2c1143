package enums

import (
	"fmt"
	"strings"
)

// MaskingService is the coating process a masking line belongs to.
type MaskingService string

const (
	MaskingServiceKTL    MaskingService = "ktl"
	MaskingServicePowder MaskingService = "powder"
)

func (s MaskingService) IsValid() bool {
	return s == MaskingServiceKTL || s == MaskingServicePowder
}

// ParseMaskingService converts raw input into a MaskingService.
func ParseMaskingService(value string) (MaskingService, error) {
	candidate := MaskingService(strings.ToLower(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid masking service %q", value)
}

// MaskingType says whether a position carries any masking at all.
type MaskingType string

const (
	MaskingTypeNone    MaskingType = "none"
	MaskingTypePresent MaskingType = "present"
)

// PackagingType classifies how finished parts are packed.
type PackagingType string

const (
	PackagingTypeLoose    PackagingType = "loose"
	PackagingTypeStandard PackagingType = "standard"
	PackagingTypeGood     PackagingType = "good"
	PackagingTypeCustom   PackagingType = "custom"
)

var validPackagingTypes = []PackagingType{
	PackagingTypeLoose,
	PackagingTypeStandard,
	PackagingTypeGood,
	PackagingTypeCustom,
}

func (p PackagingType) IsValid() bool {
	for _, candidate := range validPackagingTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePackagingType converts raw input into a PackagingType. Blank is allowed.
func ParsePackagingType(value string) (PackagingType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", nil
	}
	candidate := PackagingType(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid packaging type %q", value)
}

// ExtraServices is the yes/no switch for services beyond coating.
type ExtraServices string

const (
	ExtraServicesNo  ExtraServices = "no"
	ExtraServicesYes ExtraServices = "yes"
)

// NormalizeExtraServices maps anything but "yes" to "no".
func NormalizeExtraServices(value string) ExtraServices {
	if strings.EqualFold(strings.TrimSpace(value), string(ExtraServicesYes)) {
		return ExtraServicesYes
	}
	return ExtraServicesNo
}

// HangingMethod is how parts are hung on the KTL line.
type HangingMethod string

const (
	HangingMethodGarlands HangingMethod = "garlands"
	HangingMethodTraverse HangingMethod = "traverse"
	HangingMethodHangers  HangingMethod = "hangers"
	HangingMethodSpecial  HangingMethod = "special"
)

var validHangingMethods = []HangingMethod{
	HangingMethodGarlands,
	HangingMethodTraverse,
	HangingMethodHangers,
	HangingMethodSpecial,
}

// ParseHangingMethod converts raw input into a HangingMethod. Blank is allowed.
func ParseHangingMethod(value string) (HangingMethod, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", nil
	}
	for _, candidate := range validHangingMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid hanging method %q", value)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
