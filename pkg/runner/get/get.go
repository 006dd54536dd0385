package get

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/pricematrix/pkg/printers"
	"tableflip.dev/pricematrix/pkg/session"
)

type Get struct {
	JSON    bool
	Backend session.Backend
	Out     io.Writer
}

func (n *Get) Do(ctx context.Context) error {
	if n.Backend == nil {
		return errors.New("can not get, no backend")
	}
	m, err := n.Backend.LoadMatrix(ctx)
	if err != nil {
		return err
	}

	out := n.Out
	if out == nil {
		out = color.Output
	}
	if n.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}

	pp := printers.PrettyPrint{Out: out}
	pp.NewLine()
	pp.Title("Pricing")
	pp.Matrix(m)
	return nil
}
