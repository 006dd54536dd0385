// Package teaui is the interactive terminal editor for the pricing matrix.
package teaui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/pricematrix/pkg/session"
	"tableflip.dev/pricematrix/pkg/store"
)

// Run launches the editor and blocks until the user quits.
func Run(ctx context.Context, sess *session.Session, watch <-chan store.Event) error {
	p := tea.NewProgram(New(ctx, sess, watch), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
