package enums

import "fmt"

// PriceLineStatus is the lifecycle state of a tiered price line.
type PriceLineStatus string

const (
	PriceLineStatusActive     PriceLineStatus = "active"
	PriceLineStatusSuperseded PriceLineStatus = "superseded"
	PriceLineStatusProposal   PriceLineStatus = "proposal"
)

var validPriceLineStatuses = []PriceLineStatus{
	PriceLineStatusActive,
	PriceLineStatusSuperseded,
	PriceLineStatusProposal,
}

// String implements fmt.Stringer.
func (s PriceLineStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PriceLineStatus.
func (s PriceLineStatus) IsValid() bool {
	for _, candidate := range validPriceLineStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePriceLineStatus converts raw input into a PriceLineStatus.
func ParsePriceLineStatus(value string) (PriceLineStatus, error) {
	for _, candidate := range validPriceLineStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price line status %q", value)
}

// StatusFromToggle maps the two-state UI toggle onto a stored status.
// Only "active" stays active; every other value supersedes the line.
func StatusFromToggle(toggle string) PriceLineStatus {
	if toggle == string(PriceLineStatusActive) {
		return PriceLineStatusActive
	}
	return PriceLineStatusSuperseded
}

// Unit is the unit of measure a price applies to.
type Unit string

const (
	UnitPiece Unit = "piece"
	UnitKg    Unit = "kg"
	UnitSet   Unit = "set"
)

var validUnits = []Unit{UnitPiece, UnitKg, UnitSet}

var unitLabels = map[string]map[Unit]string{
	"lt": {UnitPiece: "Vnt.", UnitKg: "kg", UnitSet: "komplektas"},
	"en": {UnitPiece: "pcs", UnitKg: "kg", UnitSet: "set"},
}

func (u Unit) String() string {
	return string(u)
}

func (u Unit) IsValid() bool {
	for _, candidate := range validUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// Label returns the human label of the unit for lang ("lt" or "en").
func (u Unit) Label(lang string) string {
	labels, ok := unitLabels[lang]
	if !ok {
		labels = unitLabels["lt"]
	}
	if label, ok := labels[u]; ok {
		return label
	}
	return string(u)
}

// ParseUnit accepts the stored value or any of its labels, case-insensitively.
func ParseUnit(value string) (Unit, error) {
	for _, candidate := range validUnits {
		if equalFold(string(candidate), value) {
			return candidate, nil
		}
		for _, labels := range unitLabels {
			if equalFold(labels[candidate], value) {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("invalid unit %q", value)
}
