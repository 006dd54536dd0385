// Package matrix models the pricing table: rows keyed by package price name,
// columns keyed by plan tier.
package matrix

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/pricematrix/pkg/tier"
)

// ErrUnknownTier is returned when a document names a column outside tier.All.
var ErrUnknownTier = errors.New("matrix: unknown tier")

// Row maps a tier to its cell value.
type Row map[tier.Tier]Value

// Matrix maps a row name to its cells.
type Matrix map[string]Row

// New builds a matrix with every tier of every row set to 0.
func New(rows ...string) Matrix {
	m := make(Matrix, len(rows))
	for _, name := range rows {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r := make(Row, len(tier.All()))
		for _, t := range tier.All() {
			r[t] = Number(0)
		}
		m[name] = r
	}
	return m
}

// Clone returns a structurally independent copy. A nil matrix clones to an
// empty one.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for name, r := range m {
		cp := make(Row, len(r))
		for t, v := range r {
			cp[t] = v
		}
		out[name] = cp
	}
	return out
}

// Zeroed returns a copy with the same keys and every value set to 0.
func (m Matrix) Zeroed() Matrix {
	out := make(Matrix, len(m))
	for name, r := range m {
		cp := make(Row, len(r))
		for t := range r {
			cp[t] = Number(0)
		}
		out[name] = cp
	}
	return out
}

// Committed returns a copy with every draft parsed to a number.
func (m Matrix) Committed() Matrix {
	out := make(Matrix, len(m))
	for name, r := range m {
		cp := make(Row, len(r))
		for t, v := range r {
			cp[t] = v.Commit()
		}
		out[name] = cp
	}
	return out
}

// Has reports whether the cell exists.
func (m Matrix) Has(row string, t tier.Tier) bool {
	r, ok := m[row]
	if !ok {
		return false
	}
	_, ok = r[t]
	return ok
}

// Get returns the cell value and whether it exists.
func (m Matrix) Get(row string, t tier.Tier) (Value, bool) {
	r, ok := m[row]
	if !ok {
		return Value{}, false
	}
	v, ok := r[t]
	return v, ok
}

// Rows returns the row names sorted alphabetically.
func (m Matrix) Rows() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tiers returns the tiers present in row, in display order.
func (m Matrix) Tiers(row string) []tier.Tier {
	r := m[row]
	out := make([]tier.Tier, 0, len(r))
	for t := range r {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Order() < out[j].Order()
	})
	return out
}

// Columns returns the union of tiers across all rows, in display order.
func (m Matrix) Columns() []tier.Tier {
	seen := make(map[tier.Tier]struct{})
	for _, r := range m {
		for t := range r {
			seen[t] = struct{}{}
		}
	}
	out := make([]tier.Tier, 0, len(seen))
	for _, t := range tier.All() {
		if _, ok := seen[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of cells.
func (m Matrix) Len() int {
	n := 0
	for _, r := range m {
		n += len(r)
	}
	return n
}

// SameShape reports whether both matrices have identical row and tier keys.
func (m Matrix) SameShape(o Matrix) bool {
	if len(m) != len(o) {
		return false
	}
	for name, r := range m {
		or, ok := o[name]
		if !ok || len(r) != len(or) {
			return false
		}
		for t := range r {
			if _, ok := or[t]; !ok {
				return false
			}
		}
	}
	return true
}

// Equal reports whether both matrices have the same shape and values.
func (m Matrix) Equal(o Matrix) bool {
	if !m.SameShape(o) {
		return false
	}
	for name, r := range m {
		for t, v := range r {
			if !v.Equal(o[name][t]) {
				return false
			}
		}
	}
	return true
}

// ShapeDiff describes how o's keys differ from m's, or returns "" when the
// shapes match.
func (m Matrix) ShapeDiff(o Matrix) string {
	var missing, extra []string
	for name, r := range m {
		or, ok := o[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		for t := range r {
			if _, ok := or[t]; !ok {
				missing = append(missing, name+"."+t.String())
			}
		}
	}
	for name, or := range o {
		r, ok := m[name]
		if !ok {
			extra = append(extra, name)
			continue
		}
		for t := range or {
			if _, ok := r[t]; !ok {
				extra = append(extra, name+"."+t.String())
			}
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return ""
	}
	sort.Strings(missing)
	sort.Strings(extra)
	parts := make([]string, 0, 2)
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(extra, ", "))
	}
	return strings.Join(parts, "; ")
}

// UnmarshalJSON rejects columns that are not known tiers.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Row, len(raw))
	for key, v := range raw {
		t, err := tier.Parse(key)
		if err != nil {
			return fmt.Errorf("%w %q", ErrUnknownTier, key)
		}
		out[t] = v
	}
	*r = out
	return nil
}

// Decode parses a matrix document. Row names must be non-empty.
func Decode(data []byte) (Matrix, error) {
	var m Matrix
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("matrix: document is empty")
	}
	for name := range m {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("matrix: row name required")
		}
	}
	return m, nil
}

// Encode serialises the matrix. Drafts are committed first so stored
// documents only ever hold numbers.
func Encode(m Matrix) ([]byte, error) {
	return json.Marshal(m.Committed())
}
