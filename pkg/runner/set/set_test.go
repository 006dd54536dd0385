package set

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/tier"
)

type memoryBackend struct {
	stored matrix.Matrix
	saves  int
}

func (m *memoryBackend) LoadMatrix(context.Context) (matrix.Matrix, error) {
	return m.stored.Clone(), nil
}

func (m *memoryBackend) SaveMatrix(_ context.Context, in matrix.Matrix) (matrix.Matrix, error) {
	m.saves++
	m.stored = in.Clone()
	return in.Clone(), nil
}

func init() {
	color.NoColor = true
}

func TestSetPrintsSavedMatrix(t *testing.T) {
	b := &memoryBackend{stored: matrix.New("basic")}
	var buf bytes.Buffer
	s := Set{Row: "basic", Tier: "lite", Value: "4", Backend: b, Out: &buf}
	if err := s.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	if b.saves != 1 {
		t.Fatalf("saves = %d, want 1", b.saves)
	}
	if v, _ := b.stored.Get("basic", tier.Unlimited); v.Float() != 12 {
		t.Errorf("unlimited = %v, want 12", v)
	}
	if !strings.Contains(buf.String(), "12") {
		t.Errorf("output missing saved price:\n%s", buf.String())
	}
}

func TestSetWithoutBackend(t *testing.T) {
	s := Set{Row: "basic", Tier: "lite", Value: "4"}
	if err := s.Do(context.Background()); err == nil {
		t.Fatal("expected error without backend")
	}
}
