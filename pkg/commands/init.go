package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/pricematrix/pkg/printers"
)

func addInit(topLevel *cobra.Command) {
	var (
		rows  []string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "create the pricing document with zeroed rows",
		Example: `
pricematrix init --row basic --row pro
pricematrix init --row basic,pro,enterprise --force
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, envOptions{local: true})
			if err != nil {
				return err
			}
			defer e.Close()
			if e.service == nil {
				return errors.New("init needs a local store")
			}

			m, err := e.service.Init(ctx, rows, force)
			if err != nil {
				return err
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.Title("Pricing")
			pp.Matrix(m)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&rows, "row", nil, "Row (package price) name. Repeat or comma-separate for several.")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing document.")
	_ = cmd.MarkFlagRequired("row")

	topLevel.AddCommand(cmd)
}
