package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/pricematrix/pkg/commands/options"
	clearrunner "tableflip.dev/pricematrix/pkg/runner/clear"
)

func addClear(topLevel *cobra.Command) {
	ro := &options.RemoteOptions{}
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "set every price to zero and save",
		Example: `
pricematrix clear
pricematrix clear --yes
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := co.Confirm("Set every price to 0")
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing cleared.")
				return nil
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx, envOptions{remote: ro.Remote})
			if err != nil {
				return err
			}
			defer e.Close()

			c := clearrunner.Clear{
				Backend: e.backend(),
				Options: e.sessionOptions(),
				Out:     cmd.OutOrStdout(),
			}
			return c.Do(ctx)
		},
	}

	options.AddConfirmArg(cmd, co)
	options.AddRemoteArg(cmd, ro)
	topLevel.AddCommand(cmd)
}
