package tier

import "testing"

func TestParse(t *testing.T) {
	cases := map[string]Tier{
		"lite":       Lite,
		" Standard ": Standard,
		"UNLIMITED":  Unlimited,
	}
	for raw, want := range cases {
		got, err := Parse(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", raw, want, got)
		}
	}
	if _, err := Parse("premium"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
	if _, err := Parse(""); err == nil {
		t.Fatal("expected error for empty tier")
	}
}

func TestOrderAndMultiplier(t *testing.T) {
	for i, tr := range All() {
		if tr.Order() != i {
			t.Fatalf("expected %s at %d, got %d", tr, i, tr.Order())
		}
		if tr.Multiplier() != float64(i+1) {
			t.Fatalf("expected multiplier %d for %s, got %v", i+1, tr, tr.Multiplier())
		}
	}
	if Tier("gold").Order() != -1 {
		t.Fatal("expected unknown tier order -1")
	}
}
