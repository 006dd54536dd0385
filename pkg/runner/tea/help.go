package teaui

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/v2"
)

//go:embed help.md
var helpMarkdown string

// helpModel renders the key reference inside a bordered viewport.
type helpModel struct {
	viewport viewport.Model
	width    int
	height   int

	frame lipgloss.Style
	err   error
}

func newHelp(width, height int, frame lipgloss.Style) *helpModel {
	vp := viewport.New(
		viewport.WithWidth(max(width, 1)),
		viewport.WithHeight(max(height, 1)),
	)
	h := &helpModel{
		viewport: vp,
		frame:    frame,
	}
	h.SetSize(width, height)
	return h
}

func (h *helpModel) Update(msg tea.Msg) tea.Cmd {
	vp, cmd := h.viewport.Update(msg)
	h.viewport = vp
	return cmd
}

func (h *helpModel) View() string {
	body := h.viewport.View()
	if body == "" && h.err != nil {
		body = "help unavailable: " + h.err.Error()
	}
	return h.frame.Width(h.width).Height(h.height).Render(body)
}

// SetSize resizes the overlay and re-renders the markdown to fit.
func (h *helpModel) SetSize(width, height int) {
	width = max(width, 32)
	height = max(height, 8)
	if h.width == width && h.height == height {
		return
	}
	h.width = width
	h.height = height

	innerWidth := max(width-h.frame.GetHorizontalFrameSize(), 1)
	innerHeight := max(height-h.frame.GetVerticalFrameSize(), 1)
	h.viewport.SetWidth(innerWidth)
	h.viewport.SetHeight(innerHeight)
	h.render(innerWidth)
}

func (h *helpModel) render(wrap int) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(wrap, 10)),
	)
	if err != nil {
		h.err = err
		h.viewport.SetContent("help unavailable: " + err.Error())
		return
	}
	content, err := renderer.Render(strings.TrimSpace(helpMarkdown))
	if err != nil {
		h.err = err
		h.viewport.SetContent("help unavailable: " + err.Error())
		return
	}
	h.err = nil
	h.viewport.SetContent(content)
	h.viewport.SetYOffset(0)
}
