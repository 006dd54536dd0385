// Package rules validates matrix cells against CEL expressions. Each rule sees
// the variables value (double), row (string) and tier (string) and must
// evaluate to a bool.
package rules

import (
	"fmt"
	"strings"

	celgo "github.com/google/cel-go/cel"

	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/tier"
)

// DefaultRules rejects negative prices.
var DefaultRules = []string{"value >= 0.0"}

// Violation describes a cell that failed a rule.
type Violation struct {
	Row   string
	Tier  tier.Tier
	Value float64
	Rule  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s/%s = %g violates %q", v.Row, v.Tier, v.Value, v.Rule)
}

type rule struct {
	expression string
	program    celgo.Program
}

// Set is a compiled, immutable list of rules. The zero value accepts every
// matrix.
type Set struct {
	rules []rule
}

// Compile type-checks every expression. Blank expressions are skipped.
func Compile(expressions ...string) (*Set, error) {
	env, err := celgo.NewEnv(
		celgo.Variable("value", celgo.DoubleType),
		celgo.Variable("row", celgo.StringType),
		celgo.Variable("tier", celgo.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("rules: build environment: %w", err)
	}

	set := &Set{}
	for _, expression := range expressions {
		expression = strings.TrimSpace(expression)
		if expression == "" {
			continue
		}
		ast, issues := env.Compile(expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rules: compile %q: %w", expression, issues.Err())
		}
		if !ast.OutputType().IsExactType(celgo.BoolType) {
			return nil, fmt.Errorf("rules: %q must evaluate to bool, got %s", expression, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rules: program %q: %w", expression, err)
		}
		set.rules = append(set.rules, rule{expression: expression, program: prg})
	}
	return set, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(expressions ...string) *Set {
	s, err := Compile(expressions...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len reports how many rules are in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Check evaluates a single cell. The first failing rule is returned.
func (s *Set) Check(row string, t tier.Tier, value float64) (*Violation, error) {
	if s == nil {
		return nil, nil
	}
	activation := map[string]any{
		"value": value,
		"row":   row,
		"tier":  t.String(),
	}
	for _, r := range s.rules {
		out, _, err := r.program.Eval(activation)
		if err != nil {
			return nil, fmt.Errorf("rules: evaluate %q: %w", r.expression, err)
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return nil, fmt.Errorf("rules: %q returned %T", r.expression, out.Value())
		}
		if !ok {
			return &Violation{Row: row, Tier: t, Value: value, Rule: r.expression}, nil
		}
	}
	return nil, nil
}

// Validate checks every cell of m in row then tier order and returns all
// violations.
func (s *Set) Validate(m matrix.Matrix) ([]Violation, error) {
	if s.Len() == 0 {
		return nil, nil
	}
	var violations []Violation
	for _, row := range m.Rows() {
		for _, t := range m.Tiers(row) {
			v, err := s.Check(row, t, m[row][t].Float())
			if err != nil {
				return nil, err
			}
			if v != nil {
				violations = append(violations, *v)
			}
		}
	}
	return violations, nil
}
