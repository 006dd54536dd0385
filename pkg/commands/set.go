package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/pricematrix/pkg/commands/options"
	"tableflip.dev/pricematrix/pkg/runner/set"
	"tableflip.dev/pricematrix/pkg/tier"
)

func addSet(topLevel *cobra.Command) {
	ro := &options.RemoteOptions{}

	long := strings.Builder{}
	long.WriteString("Set one price and save.\n\n")
	long.WriteString("Tiers:\n")
	for _, t := range tier.All() {
		if t == tier.Lite {
			long.WriteString(fmt.Sprintf("%s: also sets the rest of the row\n", t))
			continue
		}
		long.WriteString(fmt.Sprintf("%s: %gx lite when derived\n", t, t.Multiplier()))
	}

	cmd := &cobra.Command{
		Use:   "set ROW TIER VALUE",
		Short: "set a price",
		Long:  long.String(),
		Example: `
pricematrix set basic lite 5
pricematrix set pro unlimited 42.5
`,
		Args: cobra.ExactArgs(3),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return tier.Strings(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, envOptions{remote: ro.Remote})
			if err != nil {
				return err
			}
			defer e.Close()

			s := set.Set{
				Row:     args[0],
				Tier:    args[1],
				Value:   args[2],
				Backend: e.backend(),
				Options: e.sessionOptions(),
				Out:     cmd.OutOrStdout(),
			}
			return s.Do(ctx)
		},
	}

	options.AddRemoteArg(cmd, ro)
	topLevel.AddCommand(cmd)
}
