package teaui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/session"
	"tableflip.dev/pricematrix/pkg/store"
	"tableflip.dev/pricematrix/pkg/tier"
)

const (
	editHint   = "Edit the values in the cells"
	cellWidth  = 12
	labelWidth = 14
	idleStatus = "e edit · s save · c clear · hjkl move · enter edit cell · ? help · q quit"
)

// messages
type loadedMsg struct{ err error }
type reloadedMsg struct{ err error }
type savedMsg struct{ err error }
type storeChangedMsg struct{}
type watchClosedMsg struct{}

// Model is the matrix editor. All matrix changes go through the session.
type Model struct {
	sess  *session.Session
	ctx   context.Context
	watch <-chan store.Event

	view session.View
	rows []string
	cols []tier.Tier

	row, col int

	// editing is true while a cell has the text input.
	editing bool
	input   textinput.Model

	status   string
	showHelp bool
	help     *helpModel

	termWidth  int
	termHeight int

	theme Theme
}

// New creates a model over sess. watch may be nil.
func New(ctx context.Context, sess *session.Session, watch <-chan store.Event) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	theme := DefaultTheme()
	ti := textinput.New()
	ti.Placeholder = "0"
	ti.CharLimit = 32
	ti.Prompt = ""
	ti.Styles.Cursor.Color = lipgloss.Color("218")

	m := Model{
		sess:   sess,
		ctx:    ctx,
		watch:  watch,
		input:  ti,
		status: idleStatus,
		cols:   tier.All(),
		help:   newHelp(60, 16, theme.Help),
		theme:  theme,
	}
	m.sync()
	return m
}

// Init loads the stored matrix and starts listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForChange())
}

func (m Model) load() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: sess.Initialize(ctx)}
	}
}

func (m Model) reload() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return reloadedMsg{err: sess.Reload(ctx)}
	}
}

func (m Model) waitForChange() tea.Cmd {
	if m.watch == nil {
		return nil
	}
	watch := m.watch
	return func() tea.Msg {
		if _, ok := <-watch; !ok {
			return watchClosedMsg{}
		}
		return storeChangedMsg{}
	}
}

func (m Model) save(payload matrix.Matrix) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return savedMsg{err: sess.CompleteSave(ctx, payload)}
	}
}

// sync refreshes the snapshot from the session and clamps the cursor.
func (m *Model) sync() {
	m.view = m.sess.View()
	m.rows = m.view.Working.Rows()
	if m.row >= len(m.rows) {
		m.row = max(len(m.rows)-1, 0)
	}
	if m.col >= len(m.cols) {
		m.col = max(len(m.cols)-1, 0)
	}
	if m.editing && !m.view.CanEditCells() {
		m.editing = false
		m.input.Blur()
	}
}

func (m Model) current() (string, tier.Tier, bool) {
	if len(m.rows) == 0 || len(m.cols) == 0 {
		return "", "", false
	}
	row, t := m.rows[m.row], m.cols[m.col]
	if !m.view.Working.Has(row, t) {
		return "", "", false
	}
	return row, t, true
}

// Update handles messages and keybindings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.help.SetSize(msg.Width-4, msg.Height-4)
	case loadedMsg:
		if msg.err != nil {
			m.status = "Load failed: " + msg.err.Error()
		} else {
			m.status = idleStatus
		}
		m.sync()
	case reloadedMsg:
		switch {
		case errors.Is(msg.err, session.ErrBusy):
			m.status = "Store changed, reload with r when done editing"
		case msg.err != nil:
			m.status = "Reload failed: " + msg.err.Error()
		default:
			m.status = idleStatus
		}
		m.sync()
	case savedMsg:
		if msg.err == nil {
			m.status = "Saved"
		} else {
			m.status = idleStatus
		}
		m.sync()
	case storeChangedMsg:
		// Only pick up outside changes when nothing local would be lost.
		if !m.view.EditMode && !m.view.Saving {
			cmds = append(cmds, m.reload())
		}
		cmds = append(cmds, m.waitForChange())
	case watchClosedMsg:
		m.watch = nil
	case tea.KeyPressMsg:
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case m.showHelp:
			cmds = append(cmds, m.updateHelp(msg))
		case m.editing:
			cmds = append(cmds, m.updateCell(msg))
		default:
			cmds = append(cmds, m.updateNormal(msg))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateHelp(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "?", "q", "esc":
		m.showHelp = false
		return nil
	}
	return m.help.Update(msg)
}

func (m *Model) updateNormal(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "?":
		m.showHelp = true
	case "h", "left":
		if m.col > 0 {
			m.col--
		}
	case "l", "right":
		if m.col < len(m.cols)-1 {
			m.col++
		}
	case "k", "up":
		if m.row > 0 {
			m.row--
		}
	case "j", "down":
		if m.row < len(m.rows)-1 {
			m.row++
		}
	case "e":
		if err := m.sess.EditToggle(); err != nil {
			m.status = describe(err)
		}
		m.sync()
	case "esc":
		if m.view.EditMode {
			if err := m.sess.Cancel(); err != nil {
				m.status = describe(err)
			}
			m.sync()
		}
	case "c":
		if !m.view.CanClear() {
			m.status = "Clear is only available while editing"
			return nil
		}
		if err := m.sess.Clear(); err != nil {
			m.status = describe(err)
		}
		m.sync()
	case "s":
		if !m.view.CanSave() {
			m.status = "Nothing to save"
			return nil
		}
		payload, err := m.sess.BeginSave()
		if err != nil {
			m.status = describe(err)
			return nil
		}
		m.status = "Saving…"
		m.sync()
		return m.save(payload)
	case "r":
		if m.view.EditMode || m.view.Saving {
			m.status = "Finish editing before reloading"
			return nil
		}
		return m.reload()
	case "enter", "i":
		return m.focusCell()
	}
	return nil
}

func (m *Model) focusCell() tea.Cmd {
	if !m.view.CanEditCells() {
		m.status = "Press e to edit"
		return nil
	}
	row, t, ok := m.current()
	if !ok {
		return nil
	}
	m.editing = true
	// A committed zero starts empty so typing replaces it.
	text := ""
	if v := m.view.Working[row][t]; v.IsDraft() || v.Float() != 0 {
		text = v.Text()
	}
	m.input.SetValue(text)
	m.input.CursorEnd()
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

// blurCell commits the focused cell.
func (m *Model) blurCell() {
	row, t, ok := m.current()
	m.editing = false
	m.input.Blur()
	if ok {
		_ = m.sess.Blur(row, t, m.input.Value())
	}
	m.sync()
}

func (m *Model) updateCell(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc", "tab":
		m.blurCell()
		return nil
	case "up", "down":
		m.blurCell()
		return m.updateNormal(msg)
	}

	row, t, ok := m.current()
	if !ok {
		m.editing = false
		return nil
	}
	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if next := m.input.Value(); next != prev {
		if err := m.sess.Type(row, t, next); err != nil {
			// Rejected input leaves the cell unchanged.
			m.input.SetValue(prev)
		}
		m.sync()
	}
	return cmd
}

// View renders the matrix, the action bar and any note.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Title.Render("Pricing"))
	b.WriteString("\n")
	if m.view.EditMode {
		b.WriteString(m.theme.Header.Hint.Render(editHint))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	b.WriteString(m.renderActions())

	if m.view.ErrorNote != "" {
		b.WriteString("\n\n")
		b.WriteString(m.theme.Footer.Note.Render(m.view.ErrorNote))
	}
	if m.showHelp {
		b.WriteString("\n\n")
		b.WriteString(m.help.View())
	}
	b.WriteString("\n\n")
	b.WriteString(m.theme.Footer.Status.Render(m.status))
	return b.String()
}

func (m Model) renderTable() string {
	if len(m.rows) == 0 {
		return m.theme.Table.Disabled.Render("No pricing rows. Run `pricematrix init --row NAME` to create some.") + "\n"
	}

	var b strings.Builder
	b.WriteString(fit("", labelWidth))
	for _, t := range m.cols {
		b.WriteString(m.theme.Table.Label.Render(fit(t.String(), cellWidth)))
	}
	b.WriteString("\n")

	for ri, row := range m.rows {
		b.WriteString(m.theme.Table.Label.Render(fit(row, labelWidth)))
		for ci, t := range m.cols {
			b.WriteString(m.renderCell(ri, ci, row, t))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderCell(ri, ci int, row string, t tier.Tier) string {
	v, ok := m.view.Working.Get(row, t)
	if !ok {
		return m.theme.Table.Disabled.Render(fit("-", cellWidth))
	}
	focused := ri == m.row && ci == m.col
	if focused && m.editing {
		return fit(m.input.View(), cellWidth)
	}

	cell := fit(v.Text(), cellWidth-1) + " "

	switch {
	case focused:
		return m.theme.Table.Cursor.Render(cell)
	case !m.view.CanEditCells():
		return m.theme.Table.Disabled.Render(cell)
	case v.IsDraft():
		return m.theme.Table.Draft.Render(cell)
	default:
		return cell
	}
}

func (m Model) renderActions() string {
	if m.view.Saving {
		return m.theme.Footer.Button.Render("Saving…")
	}
	label := "Edit"
	if m.view.EditMode {
		label = "Cancel"
	}
	buttons := []string{
		m.button("e", label, true),
		m.button("s", "Save", m.view.CanSave()),
		m.button("c", "Clear", m.view.CanClear()),
	}
	return strings.Join(buttons, "  ")
}

func (m Model) button(key, label string, enabled bool) string {
	text := fmt.Sprintf("[%s] %s", key, label)
	if !enabled {
		return m.theme.Footer.ButtonDisabled.Render(text)
	}
	return m.theme.Footer.Button.Render(text)
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	s = truncate.StringWithTail(s, uint(width), "…")
	return padding.String(s, uint(width))
}

func describe(err error) string {
	switch {
	case errors.Is(err, session.ErrSaveInFlight):
		return "A save is in progress"
	case errors.Is(err, session.ErrNotEditing):
		return "Not editing"
	case errors.Is(err, session.ErrEmpty):
		return "No pricing rows to clear"
	case errors.Is(err, session.ErrBusy):
		return "Finish editing before reloading"
	default:
		return err.Error()
	}
}
