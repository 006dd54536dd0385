package options

import (
	"strings"

	"github.com/spf13/cobra"
)

// RemoteOptions
type RemoteOptions struct {
	Remote string
}

func AddRemoteArg(cmd *cobra.Command, o *RemoteOptions) {
	cmd.Flags().StringVar(&o.Remote, "remote", "",
		`Base URL of a pricematrix server, e.g. http://127.0.0.1:8080. Overrides the "remote" config key.`)
}

// Resolve returns the flag value when set, falling back to configured.
func (o *RemoteOptions) Resolve(configured string) string {
	if r := strings.TrimRight(strings.TrimSpace(o.Remote), "/"); r != "" {
		return r
	}
	return configured
}
