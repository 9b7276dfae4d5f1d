package assignments

import "testing"

func TestUnitKeyNormalizesCaseAndWhitespace(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Cabin 12", "cabin 12"},
		{"  CABIN   12  ", "cabin 12"},
		{"Anneks", "anneks"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := UnitKey(tc.in); got != tc.want {
			t.Fatalf("UnitKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCabinNoUsesFirstTokenCarryingADigit(t *testing.T) {
	if got := CabinNo("12 Fjellheim"); got != "12" {
		t.Fatalf("expected first token, got %q", got)
	}
	if got := CabinNo("Cabin 12"); got != "12" {
		t.Fatalf("expected digit token, got %q", got)
	}
	if got := CabinNo("Anneks"); got != "Anneks" {
		t.Fatalf("expected full name when no token has a digit, got %q", got)
	}
	if got := CabinNo("   "); got != UnknownCabinNo {
		t.Fatalf("expected %q for blank name, got %q", UnknownCabinNo, got)
	}
}

func TestCleaningTitle(t *testing.T) {
	if got := CleaningTitle("Cabin 12"); got != "Sluttrengjøring Cabin 12" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestLinenTitleAddsCountSuffixOnlyAboveOne(t *testing.T) {
	if got := LinenTitle("Cabin 3", 1); got != "Sengetøy Cabin 3" {
		t.Fatalf("unexpected title for single set: %q", got)
	}
	if got := LinenTitle("Cabin 3", 3); got != "Sengetøy Cabin 3 x3" {
		t.Fatalf("unexpected title for three sets: %q", got)
	}
}

func TestUnknownUnitNameEmbedsSpaceID(t *testing.T) {
	if got := UnknownUnitName("space-9"); got != "Ukjent enhet (space-9)" {
		t.Fatalf("unexpected placeholder %q", got)
	}
}

func TestValidTypeAndStatus(t *testing.T) {
	if !ValidType(TypeCleaning) || !ValidType(TypeLinen) {
		t.Fatal("known types must validate")
	}
	if ValidType("laundry") {
		t.Fatal("unknown type must not validate")
	}
	if !ValidStatus(StatusNotStarted) || !ValidStatus(StatusInProgress) || !ValidStatus(StatusDone) {
		t.Fatal("known statuses must validate")
	}
	if ValidStatus("paused") {
		t.Fatal("unknown status must not validate")
	}
}
