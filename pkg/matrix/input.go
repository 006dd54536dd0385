package matrix

import (
	"fmt"
	"regexp"
	"strconv"
)

// inputPattern accepts digits with at most one decimal point, including the
// empty string and partial input such as "12." or ".".
var inputPattern = regexp.MustCompile(`^[0-9]*\.?[0-9]*$`)

// IsValidInput reports whether s is acceptable text for a cell.
func IsValidInput(s string) bool {
	return inputPattern.MatchString(s)
}

// ParseInput converts valid cell text into a number. The empty string and a
// lone "." both mean 0.
func ParseInput(s string) (float64, error) {
	if !IsValidInput(s) {
		return 0, fmt.Errorf("matrix: invalid input %q", s)
	}
	if s == "" || s == "." {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
