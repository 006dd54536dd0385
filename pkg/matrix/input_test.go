package matrix

import "testing"

func TestIsValidInput(t *testing.T) {
	valid := []string{"", "0", "12", "12.", ".5", ".", "12.50", "007"}
	for _, s := range valid {
		if !IsValidInput(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	invalid := []string{"12.5.3", "a", "-1", "1e3", " 1", "1 ", "1,5", "..", "+2"}
	for _, s := range invalid {
		if IsValidInput(s) {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestParseInput(t *testing.T) {
	cases := map[string]float64{
		"":     0,
		".":    0,
		"5":    5,
		"12.":  12,
		".25":  0.25,
		"3.75": 3.75,
	}
	for in, want := range cases {
		got, err := ParseInput(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %v, got %v", in, want, got)
		}
	}
	if _, err := ParseInput("1.2.3"); err == nil {
		t.Fatal("expected error for invalid input")
	}
}
