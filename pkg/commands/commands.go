package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/pricematrix/pkg/commands/options"
)

var (
	oo = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "pricematrix",
		Short: base.Wrap80("Edit a pricing matrix of packages and plan tiers from the terminal, over HTTP, or through MCP."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addGet(topLevel)
	addSet(topLevel)
	addClear(topLevel)
	addInit(topLevel)
	addServe(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
}
