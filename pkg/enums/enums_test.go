package enums

import "testing"

func TestStatusFromToggle(t *testing.T) {
	cases := map[string]PriceLineStatus{
		"active":   PriceLineStatusActive,
		"inactive": PriceLineStatusSuperseded,
		"":         PriceLineStatusSuperseded,
		"proposal": PriceLineStatusSuperseded,
	}
	for in, want := range cases {
		if got := StatusFromToggle(in); got != want {
			t.Fatalf("toggle %q: expected %s got %s", in, want, got)
		}
	}
}

func TestParseUnitAcceptsLabels(t *testing.T) {
	cases := map[string]Unit{
		"piece":      UnitPiece,
		"Vnt.":       UnitPiece,
		"pcs":        UnitPiece,
		"KG":         UnitKg,
		"komplektas": UnitSet,
		"set":        UnitSet,
	}
	for in, want := range cases {
		got, err := ParseUnit(in)
		if err != nil {
			t.Fatalf("unit %q: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("unit %q: expected %s got %s", in, want, got)
		}
	}
	if _, err := ParseUnit("litre"); err == nil {
		t.Fatal("expected error for unknown unit")
	}
	if UnitSet.Label("en") != "set" || UnitPiece.Label("lt") != "Vnt." || UnitKg.Label("xx") != "kg" {
		t.Fatal("unexpected unit labels")
	}
}

func TestParsePriceLineStatus(t *testing.T) {
	if _, err := ParsePriceLineStatus("proposal"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParsePriceLineStatus("old"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestNormalizeExtraServices(t *testing.T) {
	if NormalizeExtraServices(" YES ") != ExtraServicesYes {
		t.Fatal("expected yes")
	}
	if NormalizeExtraServices("maybe") != ExtraServicesNo {
		t.Fatal("expected unknown to map to no")
	}
}

func TestParsePackagingAndHanging(t *testing.T) {
	if v, err := ParsePackagingType(""); err != nil || v != "" {
		t.Fatalf("blank packaging should be allowed, got %q %v", v, err)
	}
	if _, err := ParsePackagingType("box"); err == nil {
		t.Fatal("expected error for unknown packaging")
	}
	if v, err := ParseHangingMethod("Traverse"); err != nil || v != HangingMethodTraverse {
		t.Fatalf("unexpected hanging method %q %v", v, err)
	}
	if _, err := ParseMaskingService("paint"); err == nil {
		t.Fatal("expected error for unknown masking service")
	}
}
