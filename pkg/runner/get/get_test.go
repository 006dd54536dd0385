package get

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/tier"
)

type fakeBackend struct {
	m   matrix.Matrix
	err error
}

func (f *fakeBackend) LoadMatrix(context.Context) (matrix.Matrix, error) {
	return f.m, f.err
}

func (f *fakeBackend) SaveMatrix(_ context.Context, m matrix.Matrix) (matrix.Matrix, error) {
	return m, nil
}

func init() {
	color.NoColor = true
}

func seeded() matrix.Matrix {
	m := matrix.New("basic")
	m["basic"][tier.Lite] = matrix.Number(5)
	m["basic"][tier.Standard] = matrix.Number(10)
	m["basic"][tier.Unlimited] = matrix.Number(15)
	return m
}

func TestGetTable(t *testing.T) {
	var buf bytes.Buffer
	g := Get{Backend: &fakeBackend{m: seeded()}, Out: &buf}
	if err := g.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Pricing", "basic", "lite", "15"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGetJSON(t *testing.T) {
	var buf bytes.Buffer
	g := Get{Backend: &fakeBackend{m: seeded()}, Out: &buf, JSON: true}
	if err := g.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	var got map[string]map[string]float64
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if got["basic"]["unlimited"] != 15 {
		t.Errorf("unlimited = %v, want 15", got["basic"]["unlimited"])
	}
}

func TestGetErrors(t *testing.T) {
	g := Get{}
	if err := g.Do(context.Background()); err == nil {
		t.Fatal("expected error without backend")
	}
	boom := errors.New("boom")
	g = Get{Backend: &fakeBackend{err: boom}, Out: &bytes.Buffer{}}
	if err := g.Do(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
