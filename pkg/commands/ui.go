package commands

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/pricematrix/pkg/commands/options"
	teaui "tableflip.dev/pricematrix/pkg/runner/tea"
	"tableflip.dev/pricematrix/pkg/session"
)

func addUI(topLevel *cobra.Command) {
	ro := &options.RemoteOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the pricing editor",
		Example: `
pricematrix ui
pricematrix ui --remote http://127.0.0.1:8080
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			fd := os.Stdout.Fd()
			if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
				return errors.New("ui needs an interactive terminal, use get or set instead")
			}
			ctx := cmd.Context()
			e, err := openEnv(ctx, envOptions{remote: ro.Remote, quiet: true})
			if err != nil {
				return err
			}
			defer e.Close()

			sess := session.New(e.backend(), e.sessionOptions()...)
			return teaui.Run(ctx, sess, e.watch(ctx))
		},
	}

	options.AddRemoteArg(cmd, ro)
	topLevel.AddCommand(cmd)
}
