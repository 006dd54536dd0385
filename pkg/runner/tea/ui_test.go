package teaui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/ansi"

	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/session"
	"tableflip.dev/pricematrix/pkg/store"
	"tableflip.dev/pricematrix/pkg/tier"
)

type fakeBackend struct {
	mu      sync.Mutex
	stored  matrix.Matrix
	saveErr error
	loads   int
}

func (f *fakeBackend) LoadMatrix(context.Context) (matrix.Matrix, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.stored.Clone(), nil
}

func (f *fakeBackend) SaveMatrix(_ context.Context, m matrix.Matrix) (matrix.Matrix, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.stored = m.Clone()
	return m.Clone(), nil
}

func basic(lite, standard, unlimited float64) matrix.Matrix {
	return matrix.Matrix{
		"basic": matrix.Row{
			tier.Lite:      matrix.Number(lite),
			tier.Standard:  matrix.Number(standard),
			tier.Unlimited: matrix.Number(unlimited),
		},
	}
}

func newTestModel(t *testing.T, stored matrix.Matrix) (Model, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{stored: stored}
	sess := session.New(b, session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err := sess.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return New(context.Background(), sess, nil), b
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

func stripANSI(s string) string {
	var b strings.Builder
	ansiSeq := false
	for _, r := range s {
		if r == ansi.Marker {
			ansiSeq = true
			continue
		}
		if ansiSeq {
			if ansi.IsTerminator(r) {
				ansiSeq = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestViewSwapsEditLabelAndHint(t *testing.T) {
	m, _ := newTestModel(t, basic(10, 20, 30))

	view := stripANSI(m.View())
	if !strings.Contains(view, "[e] Edit") {
		t.Fatalf("expected Edit button; view=%q", view)
	}
	if strings.Contains(view, editHint) {
		t.Fatalf("hint shown outside edit mode; view=%q", view)
	}

	m, _ = press(m, "e")
	view = stripANSI(m.View())
	if !strings.Contains(view, "[e] Cancel") {
		t.Fatalf("expected Cancel button in edit mode; view=%q", view)
	}
	if !strings.Contains(view, editHint) {
		t.Fatalf("expected hint in edit mode; view=%q", view)
	}
}

func TestTypingLiteCascades(t *testing.T) {
	m, _ := newTestModel(t, basic(0, 0, 0))

	m, _ = press(m, "e", "enter", "5")
	w := m.view.Working["basic"]
	if !w[tier.Lite].IsDraft() || w[tier.Lite].Text() != "5" {
		t.Fatalf("expected lite draft \"5\", got %v", w[tier.Lite])
	}
	if w[tier.Standard].Float() != 10 || w[tier.Unlimited].Float() != 15 {
		t.Fatalf("expected cascade 10/15, got %v", w)
	}

	m, _ = press(m, "enter")
	if m.editing {
		t.Fatal("expected cell to blur on enter")
	}
	if v := m.view.Working["basic"][tier.Lite]; v.IsDraft() || v.Float() != 5 {
		t.Fatalf("expected committed 5 after blur, got %v", v)
	}
	if !m.view.Changed || !m.view.CanSave() {
		t.Fatalf("expected save enabled after edit: %+v", m.view.Flags)
	}
}

func TestInvalidInputIsRejected(t *testing.T) {
	m, _ := newTestModel(t, basic(0, 0, 0))

	m, _ = press(m, "e", "right", "enter", "1", ".", "2", ".")
	if got := m.input.Value(); got != "1.2" {
		t.Fatalf("expected second dot rejected, input=%q", got)
	}
	if got := m.view.Working["basic"][tier.Standard].Text(); got != "1.2" {
		t.Fatalf("expected cell unchanged at 1.2, got %q", got)
	}
	if !strings.Contains(stripANSI(m.View()), session.InvalidInputNote) {
		t.Fatalf("expected invalid input note in view")
	}

	m, _ = press(m, "a")
	if got := m.input.Value(); got != "1.2" {
		t.Fatalf("expected letter rejected, input=%q", got)
	}
}

func TestCellsLockedOutsideEditMode(t *testing.T) {
	m, _ := newTestModel(t, basic(1, 2, 3))

	m, _ = press(m, "enter")
	if m.editing {
		t.Fatal("cell focused outside edit mode")
	}
	m, _ = press(m, "c")
	if m.view.Working["basic"][tier.Lite].Float() != 1 {
		t.Fatal("clear applied outside edit mode")
	}
	if !strings.Contains(m.status, "only available while editing") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestClearAndCancel(t *testing.T) {
	m, _ := newTestModel(t, basic(1, 2, 3))

	m, _ = press(m, "e", "c")
	if !m.view.Working.Equal(basic(0, 0, 0)) {
		t.Fatalf("expected zeroed working copy, got %v", m.view.Working)
	}
	m, _ = press(m, "e")
	if m.view.EditMode || !m.view.Working.Equal(basic(1, 2, 3)) {
		t.Fatalf("expected cancel to restore original, got %v", m.view.Working)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	m, b := newTestModel(t, basic(0, 0, 0))

	m, _ = press(m, "e", "enter", "2", "enter")
	m, cmd := press(m, "s")
	if cmd == nil {
		t.Fatal("expected save command")
	}
	if !m.view.Saving || !strings.Contains(stripANSI(m.View()), "Saving…") {
		t.Fatalf("expected saving state, flags=%+v", m.view.Flags)
	}

	// A second save while one is pending does nothing.
	if _, again := press(m, "s"); again != nil {
		t.Fatal("expected no second save command")
	}

	next, _ := m.Update(cmd())
	m = next.(Model)
	if m.view.Saving || m.view.EditMode {
		t.Fatalf("unexpected flags after save: %+v", m.view.Flags)
	}
	if !b.stored.Equal(basic(2, 4, 6)) {
		t.Fatalf("backend stored %v", b.stored)
	}
	if m.status != "Saved" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestSaveFailureShowsNote(t *testing.T) {
	m, b := newTestModel(t, basic(0, 0, 0))
	b.saveErr = errors.New("disk full")

	m, _ = press(m, "e", "enter", "2", "enter")
	m, cmd := press(m, "s")
	next, _ := m.Update(cmd())
	m = next.(Model)

	if !m.view.EditMode || m.view.Saving {
		t.Fatalf("expected edit mode restored: %+v", m.view.Flags)
	}
	if !strings.Contains(stripANSI(m.View()), session.SaveFailedNote) {
		t.Fatal("expected save failure note in view")
	}
}

func TestStoreChangeReloadsWhenIdle(t *testing.T) {
	m, b := newTestModel(t, basic(1, 2, 3))
	watch := make(chan store.Event, 1)
	m.watch = watch

	b.stored = basic(4, 8, 12)
	next, cmd := m.Update(storeChangedMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected reload command")
	}

	if err := m.sess.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	next, _ = m.Update(reloadedMsg{})
	m = next.(Model)
	if !m.view.Original.Equal(basic(4, 8, 12)) {
		t.Fatalf("expected reloaded matrix, got %v", m.view.Original)
	}
}

func TestStoreChangeIgnoredWhileEditing(t *testing.T) {
	m, b := newTestModel(t, basic(1, 2, 3))
	m, _ = press(m, "e")
	before := b.loads

	_, cmd := m.Update(storeChangedMsg{})
	if cmd != nil {
		t.Fatal("expected no reload while editing")
	}
	if b.loads != before {
		t.Fatal("backend reloaded while editing")
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, basic(1, 2, 3))
	m, _ = press(m, "?")
	if !m.showHelp {
		t.Fatal("expected help shown")
	}
	if !strings.Contains(stripANSI(m.View()), "Pricing editor") {
		t.Fatal("expected rendered help content")
	}
	m, _ = press(m, "q")
	if m.showHelp {
		t.Fatal("expected q to close help")
	}
}

func TestEmptyMatrixView(t *testing.T) {
	m, _ := newTestModel(t, matrix.Matrix{})
	if !strings.Contains(stripANSI(m.View()), "No pricing rows") {
		t.Fatal("expected empty placeholder")
	}
	m, _ = press(m, "e", "enter", "j", "l")
	if m.editing {
		t.Fatal("no cell to edit in an empty matrix")
	}
}

func TestReloadLandingDuringEditKeepsEdits(t *testing.T) {
	m, b := newTestModel(t, basic(1, 2, 3))
	watch := make(chan store.Event, 1)
	m.watch = watch

	next, cmd := m.Update(storeChangedMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected reload command")
	}

	// The user starts editing before the reload completes.
	m, _ = press(m, "e", "enter", "5", "enter")
	b.mu.Lock()
	b.stored = basic(4, 8, 12)
	b.mu.Unlock()

	err := m.sess.Reload(context.Background())
	if !errors.Is(err, session.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	next, _ = m.Update(reloadedMsg{err: err})
	m = next.(Model)

	if !m.view.EditMode || !m.view.Changed {
		t.Fatalf("edit state lost: %+v", m.view.Flags)
	}
	if got := m.view.Working["basic"][tier.Unlimited].Float(); got != 15 {
		t.Fatalf("expected edited unlimited 15, got %v", got)
	}
	if !strings.Contains(m.status, "reload") {
		t.Fatalf("expected skipped reload status, got %q", m.status)
	}
}

func TestClearOnEmptyMatrixReportsStatus(t *testing.T) {
	m, _ := newTestModel(t, matrix.Matrix{})
	m, _ = press(m, "e", "c")
	if m.view.CanSave() {
		t.Fatal("clearing nothing must not offer save")
	}
	if m.status != "No pricing rows to clear" {
		t.Fatalf("unexpected status %q", m.status)
	}
}
