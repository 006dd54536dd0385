package set

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/pricematrix/pkg/app"
	"tableflip.dev/pricematrix/pkg/printers"
	"tableflip.dev/pricematrix/pkg/session"
)

// Set writes one price and prints the saved matrix. A lite price cascades
// into the rest of its row.
type Set struct {
	Row   string
	Tier  string
	Value string

	Backend session.Backend
	Options []session.Option
	Out     io.Writer
}

func (n *Set) Do(ctx context.Context) error {
	if n.Backend == nil {
		return errors.New("can not set, no backend")
	}
	e := app.Editor{Backend: n.Backend, Options: n.Options}
	m, err := e.SetPrice(ctx, n.Row, n.Tier, n.Value)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Title("Pricing")
	pp.Matrix(m)
	return nil
}
