package commands

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/pricematrix/pkg/commands/options"
	"tableflip.dev/pricematrix/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	var (
		transport   string
		httpHost    string
		httpPort    int
		httpPath    string
		httpTLSCert string
		httpTLSKey  string
	)
	ro := &options.RemoteOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes the pricing matrix and the set_price and
clear_pricing tools through the Model Context Protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := strings.ToLower(strings.TrimSpace(transport))
			// stdio carries the protocol, so logs must stay off stdout.
			e, err := openEnv(cmd.Context(), envOptions{remote: ro.Remote, quiet: t == string(mcp.TransportStdio)})
			if err != nil {
				return err
			}
			defer e.Close()

			path := strings.TrimSpace(httpPath)
			if path == "" {
				path = "/mcp"
			}
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			runner := mcp.Runner{
				Backend: e.backend(),
				Name:    "pricematrix",
				Version: version,
				Timeout: e.cfg.IOTimeout,
				HTTP: mcp.HTTPOptions{
					Path:     path,
					CertFile: strings.TrimSpace(httpTLSCert),
					KeyFile:  strings.TrimSpace(httpTLSKey),
				},
			}

			switch t {
			case "", string(mcp.TransportHTTP):
				host := strings.TrimSpace(httpHost)
				if host == "" {
					host = "127.0.0.1"
				}
				port := httpPort
				if port < 0 || port > 65535 {
					return fmt.Errorf("invalid http-port %d", port)
				}

				useTLS, err := runner.HTTP.TLS()
				if err != nil {
					return err
				}
				addr := net.JoinHostPort(host, strconv.Itoa(port))
				runner.Transport = mcp.TransportHTTP
				runner.HTTP.Addr = addr
				runner.HTTP.OnListening = func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP HTTP server listening on %s\n",
						listenURL(a, host, addr, path, useTLS))
				}
			case string(mcp.TransportStdio):
				runner.Transport = mcp.TransportStdio
			default:
				return fmt.Errorf("unsupported transport %q (expected http or stdio)", transport)
			}

			return runner.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportHTTP), "transport to use: http or stdio")
	cmd.Flags().StringVar(&httpHost, "http-host", "127.0.0.1", "host/interface for HTTP transport")
	cmd.Flags().IntVar(&httpPort, "http-port", 8090, "port for HTTP transport (use 0 for random)")
	cmd.Flags().StringVar(&httpPath, "http-path", "/mcp", "HTTP endpoint path")
	cmd.Flags().StringVar(&httpTLSCert, "http-tls-cert", "", "TLS certificate file for HTTPS")
	cmd.Flags().StringVar(&httpTLSKey, "http-tls-key", "", "TLS private key file for HTTPS")
	options.AddRemoteArg(cmd, ro)

	topLevel.AddCommand(cmd)
}

// listenURL renders the bound address, replacing wildcard hosts with
// something a client can dial.
func listenURL(a net.Addr, host, addr, path string, tls bool) string {
	scheme := "http"
	if tls {
		scheme = "https"
	}
	tcpAddr, ok := a.(*net.TCPAddr)
	if !ok {
		return fmt.Sprintf("%s://%s%s", scheme, addr, path)
	}

	displayHost := host
	if displayHost == "" || displayHost == "0.0.0.0" || displayHost == "::" {
		if tcpAddr.IP != nil && !tcpAddr.IP.IsUnspecified() {
			displayHost = tcpAddr.IP.String()
		} else {
			displayHost = "127.0.0.1"
		}
	}
	if strings.Contains(displayHost, ":") && !strings.HasPrefix(displayHost, "[") {
		displayHost = "[" + displayHost + "]"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, displayHost, tcpAddr.Port, path)
}
