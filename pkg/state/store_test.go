package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/tier"
)

func basic(lite, standard, unlimited float64) matrix.Matrix {
	return matrix.Matrix{
		"basic": matrix.Row{
			tier.Lite:      matrix.Number(lite),
			tier.Standard:  matrix.Number(standard),
			tier.Unlimited: matrix.Number(unlimited),
		},
	}
}

func loaded(m matrix.Matrix) *Store {
	s := New()
	s.Dispatch(ReplaceOriginal{Payload: m})
	s.Dispatch(ResetWorking{})
	return s
}

func TestReplaceOriginalLeavesWorking(t *testing.T) {
	s := New()
	s.Dispatch(ReplaceOriginal{Payload: basic(1, 2, 3)})
	st := s.State()
	if len(st.Working) != 0 {
		t.Fatalf("expected working untouched, got %v", st.Working)
	}
	if diff := cmp.Diff(basic(1, 2, 3), st.Original); diff != "" {
		t.Fatalf("unexpected original (-want +got):\n%s", diff)
	}
}

func TestResetWorkingCopiesOriginal(t *testing.T) {
	payload := basic(10, 20, 30)
	s := loaded(payload)
	payload["basic"][tier.Lite] = matrix.Number(99)

	st := s.State()
	if diff := cmp.Diff(basic(10, 20, 30), st.Working); diff != "" {
		t.Fatalf("unexpected working (-want +got):\n%s", diff)
	}

	s.Dispatch(SetCell{Row: "basic", Tier: tier.Standard, Value: matrix.Number(7)})
	if got := s.State().Original["basic"][tier.Standard].Float(); got != 20 {
		t.Fatalf("cell write aliased original: standard=%v", got)
	}
}

func TestResetWorkingToEmpty(t *testing.T) {
	s := loaded(basic(10, 20, 30))
	s.Dispatch(ResetWorking{ResetToEmpty: true})
	st := s.State()
	if diff := cmp.Diff(basic(0, 0, 0), st.Working); diff != "" {
		t.Fatalf("unexpected working (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(basic(10, 20, 30), st.Original); diff != "" {
		t.Fatalf("clear touched original (-want +got):\n%s", diff)
	}
	if !st.Dirty() {
		t.Fatal("expected cleared state to be dirty")
	}
}

func TestSetCellIgnoresUnknownKeys(t *testing.T) {
	s := loaded(basic(1, 2, 3))
	s.Dispatch(SetCell{Row: "missing", Tier: tier.Lite, Value: matrix.Number(5)})
	s.Dispatch(SetCell{Row: "basic", Tier: tier.Tier("gold"), Value: matrix.Number(5)})
	st := s.State()
	if !st.Working.SameShape(st.Original) {
		t.Fatalf("key set changed: %s", st.Original.ShapeDiff(st.Working))
	}
	if st.Dirty() {
		t.Fatal("expected no change")
	}
}

func TestSetRowFromLiteIsOneTransition(t *testing.T) {
	s := loaded(basic(10, 20, 30))
	var seen []State
	unsubscribe := s.Subscribe(func(st State) {
		seen = append(seen, st)
	})
	defer unsubscribe()

	s.Dispatch(SetRowFromLite{Row: "basic", Lite: matrix.Draft("5"), Derived: 5})

	if len(seen) != 1 {
		t.Fatalf("expected a single notification, got %d", len(seen))
	}
	want := matrix.Matrix{"basic": matrix.Row{
		tier.Lite:      matrix.Draft("5"),
		tier.Standard:  matrix.Number(10),
		tier.Unlimited: matrix.Number(15),
	}}
	if diff := cmp.Diff(want, seen[0].Working); diff != "" {
		t.Fatalf("unexpected working (-want +got):\n%s", diff)
	}
}

func TestSetRowFromLiteSkipsMissingTiers(t *testing.T) {
	m := matrix.Matrix{"solo": matrix.Row{tier.Lite: matrix.Number(1)}}
	s := loaded(m)
	s.Dispatch(SetRowFromLite{Row: "solo", Lite: matrix.Number(4), Derived: 4})
	st := s.State()
	if !st.Working.SameShape(st.Original) {
		t.Fatalf("cascade added cells: %s", st.Original.ShapeDiff(st.Working))
	}
	if got := st.Working["solo"][tier.Lite].Float(); got != 4 {
		t.Fatalf("expected lite 4, got %v", got)
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	s := New()
	calls := 0
	unsubscribe := s.Subscribe(func(State) { calls++ })
	s.Dispatch(ReplaceOriginal{Payload: basic(1, 1, 1)})
	unsubscribe()
	unsubscribe()
	s.Dispatch(ResetWorking{})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestStateSnapshotsAreCopies(t *testing.T) {
	s := loaded(basic(1, 2, 3))
	st := s.State()
	st.Working["basic"][tier.Lite] = matrix.Number(42)
	if got := s.State().Working["basic"][tier.Lite].Float(); got != 1 {
		t.Fatalf("snapshot aliased store: lite=%v", got)
	}
}
