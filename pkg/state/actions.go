package state

import (
	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/tier"
)

// Action is a discrete transition applied by Store.Dispatch.
type Action interface {
	apply(State) State
}

// ReplaceOriginal sets the baseline to Payload. Working is untouched.
type ReplaceOriginal struct {
	Payload matrix.Matrix
}

// ResetWorking rebuilds the working copy from the baseline. With ResetToEmpty
// every cell is set to 0 instead, keeping the key structure.
type ResetWorking struct {
	ResetToEmpty bool
}

// SetCell writes a single working cell. Cells outside the current key set are
// ignored.
type SetCell struct {
	Row   string
	Tier  tier.Tier
	Value matrix.Value
}

// SetRowFromLite writes the lite cell and derives standard and unlimited from
// Derived in one transition.
type SetRowFromLite struct {
	Row     string
	Lite    matrix.Value
	Derived float64
}

func (a ReplaceOriginal) apply(s State) State {
	s.Original = a.Payload.Clone()
	return s
}

func (a ResetWorking) apply(s State) State {
	if a.ResetToEmpty {
		s.Working = s.Working.Zeroed()
		return s
	}
	s.Working = s.Original.Clone()
	return s
}

func (a SetCell) apply(s State) State {
	if !s.Working.Has(a.Row, a.Tier) {
		return s
	}
	s.Working = withCells(s.Working, a.Row, map[tier.Tier]matrix.Value{a.Tier: a.Value})
	return s
}

func (a SetRowFromLite) apply(s State) State {
	if !s.Working.Has(a.Row, tier.Lite) {
		return s
	}
	cells := map[tier.Tier]matrix.Value{tier.Lite: a.Lite}
	for _, t := range []tier.Tier{tier.Standard, tier.Unlimited} {
		if s.Working.Has(a.Row, t) {
			cells[t] = matrix.Number(a.Derived * t.Multiplier())
		}
	}
	s.Working = withCells(s.Working, a.Row, cells)
	return s
}

// withCells returns a copy of m with the given cells of row replaced. Rows
// other than row are shared with m; stored matrices are never mutated.
func withCells(m matrix.Matrix, row string, cells map[tier.Tier]matrix.Value) matrix.Matrix {
	out := make(matrix.Matrix, len(m))
	for name, r := range m {
		out[name] = r
	}
	r := make(matrix.Row, len(m[row]))
	for t, v := range m[row] {
		r[t] = v
	}
	for t, v := range cells {
		r[t] = v
	}
	out[row] = r
	return out
}
