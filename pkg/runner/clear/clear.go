package clear

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/pricematrix/pkg/app"
	"tableflip.dev/pricematrix/pkg/printers"
	"tableflip.dev/pricematrix/pkg/session"
)

type Clear struct {
	Backend session.Backend
	Options []session.Option
	Out     io.Writer
}

func (n *Clear) Do(ctx context.Context) error {
	if n.Backend == nil {
		return errors.New("can not clear, no backend")
	}
	e := app.Editor{Backend: n.Backend, Options: n.Options}
	m, err := e.Clear(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Title("Pricing")
	pp.Matrix(m)
	return nil
}
