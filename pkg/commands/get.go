package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/pricematrix/pkg/commands/options"
	"tableflip.dev/pricematrix/pkg/runner/get"
)

func addGet(topLevel *cobra.Command) {
	ro := &options.RemoteOptions{}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "print the stored pricing matrix",
		Example: `
pricematrix get
pricematrix get --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			oo.Out = cmd.OutOrStdout()
			ctx := cmd.Context()
			e, err := openEnv(ctx, envOptions{remote: ro.Remote})
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			g := get.Get{
				JSON:    oo.JSON,
				Backend: e.backend(),
				Out:     cmd.OutOrStdout(),
			}
			return oo.HandleError(g.Do(ctx))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddRemoteArg(cmd, ro)
	topLevel.AddCommand(cmd)
}
