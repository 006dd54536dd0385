// Package tier defines the fixed plan tiers that make up the columns of a
// pricing matrix.
package tier

import (
	"fmt"
	"strings"
)

// Tier identifies a plan column.
type Tier string

const (
	// Lite is the entry plan. Writing it derives the other tiers.
	Lite Tier = "lite"
	// Standard is priced at twice the lite value when derived.
	Standard Tier = "standard"
	// Unlimited is priced at three times the lite value when derived.
	Unlimited Tier = "unlimited"
)

// All returns the supported tiers in display order.
func All() []Tier {
	return []Tier{
		Lite,
		Standard,
		Unlimited,
	}
}

// Parse converts a string to a Tier or returns an error for unknown values.
func Parse(raw string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range All() {
		if candidate == t {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("tier: unknown tier %q", raw)
}

// MustParse parses the input and panics on error. Intended for tests/config.
func MustParse(raw string) Tier {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Order returns the display position of t, or -1 when t is unknown.
func (t Tier) Order() int {
	for i, candidate := range All() {
		if candidate == t {
			return i
		}
	}
	return -1
}

// Multiplier is the factor applied to the lite value when t is derived from it.
func (t Tier) Multiplier() float64 {
	switch t {
	case Lite:
		return 1
	case Standard:
		return 2
	case Unlimited:
		return 3
	default:
		return 0
	}
}

func (t Tier) String() string {
	return string(t)
}

// Strings returns the tier names, useful for flag completion and MCP enums.
func Strings() []string {
	all := All()
	out := make([]string, len(all))
	for i, t := range all {
		out[i] = string(t)
	}
	return out
}
