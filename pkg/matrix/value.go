package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a single cell. It is either a committed number or a draft holding
// the raw text of a field that is still being typed into.
type Value struct {
	draft  bool
	text   string
	number float64
}

// Number returns a committed value.
func Number(f float64) Value {
	return Value{number: f}
}

// Draft returns a value that keeps the raw text until it is committed.
func Draft(text string) Value {
	return Value{draft: true, text: text}
}

// IsDraft reports whether the value still holds typed text.
func (v Value) IsDraft() bool {
	return v.draft
}

// Float returns the numeric form of the value. Drafts are parsed with
// ParseInput; text that does not parse yields 0.
func (v Value) Float() float64 {
	if !v.draft {
		return v.number
	}
	f, err := ParseInput(v.text)
	if err != nil {
		return 0
	}
	return f
}

// Text returns what an input field bound to the value should display.
func (v Value) Text() string {
	if v.draft {
		return v.text
	}
	return strconv.FormatFloat(v.number, 'f', -1, 64)
}

// Commit settles a draft into its numeric form.
func (v Value) Commit() Value {
	if !v.draft {
		return v
	}
	return Number(v.Float())
}

// Equal compares kind and content.
func (v Value) Equal(o Value) bool {
	if v.draft != o.draft {
		return false
	}
	if v.draft {
		return v.text == o.text
	}
	return v.number == o.number
}

func (v Value) String() string {
	if v.draft {
		return strconv.Quote(v.text)
	}
	return v.Text()
}

// MarshalJSON writes numbers as JSON numbers and drafts as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.draft {
		return json.Marshal(v.text)
	}
	return json.Marshal(v.number)
}

// UnmarshalJSON accepts numbers and numeric strings. Strings are normalised to
// committed numbers; the store never keeps drafts. null is rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("matrix: value must be a number: null")
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("matrix: value must be a number: %s", string(data))
	}
	f, err := ParseInput(s)
	if err != nil {
		return fmt.Errorf("matrix: value must be a number: %w", err)
	}
	*v = Number(f)
	return nil
}
