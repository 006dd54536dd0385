package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	apperrors "tableflip.dev/pricematrix/pkg/errors"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
	// Out receives JSON error documents. Defaults to color.Output.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// HandleError prints err as a JSON document when --json is set, keeping the
// structured type and context of backend errors.
func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		out := map[string]any{
			"error": err.Error(),
		}
		var se *apperrors.Error
		if errors.As(err, &se) {
			resp := se.ToResponse()
			out["error"] = resp.Error
			out["type"] = resp.Type
			if len(resp.Context) > 0 {
				out["context"] = resp.Context
			}
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		w := o.Out
		if w == nil {
			w = color.Output
		}
		_, _ = fmt.Fprintln(w, string(b))
		return nil
	}
	return err
}
