package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/pricematrix/pkg/server"
)

const shutdownTimeout = 5 * time.Second

func addServe(topLevel *cobra.Command) {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the pricing HTTP API",
		Long: `Serve GET /api/pricing, POST /api/save-pricing, /healthz and /metrics
over the local store.`,
		Example: `
pricematrix serve
pricematrix serve --listen 0.0.0.0:9000
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
				return errors.New("serve needs a local store")
			}

			addr := listen
			if addr == "" {
				addr = e.cfg.Listen
			}
			srv := server.New(e.service,
				server.WithListen(addr),
				server.WithTimeout(e.cfg.IOTimeout),
			)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pricing API listening on http://%s\n", srv.Addr())

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			e.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", `Address to listen on. Defaults to the "listen" config key.`)

	topLevel.AddCommand(cmd)
}
