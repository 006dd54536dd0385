package mcp

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/pricematrix/pkg/session"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"
)

// DefaultHTTPAddr is used when HTTPOptions.Addr is empty.
const DefaultHTTPAddr = "127.0.0.1:8090"

// HTTPOptions configures the streamable HTTP transport.
type HTTPOptions struct {
	Addr     string
	Path     string
	CertFile string
	KeyFile  string
	// OnListening is called with the bound address before serving starts.
	OnListening func(net.Addr)
}

// TLS reports whether both halves of a key pair were given. One half alone
// is an error.
func (o HTTPOptions) TLS() (bool, error) {
	switch {
	case o.CertFile != "" && o.KeyFile != "":
		return true, nil
	case o.CertFile != "" || o.KeyFile != "":
		return false, errors.New("mcp: both tls cert and key must be provided")
	default:
		return false, nil
	}
}

// Runner coordinates MCP server startup.
type Runner struct {
	Backend session.Backend
	Name    string
	Version string
	// Timeout bounds each backend call made by a tool.
	Timeout time.Duration

	Transport Transport
	HTTP      HTTPOptions
}

// Run starts the Model Context Protocol server using stdio transport.
func Run(ctx context.Context, backend session.Backend) error {
	r := Runner{
		Backend:   backend,
		Transport: TransportStdio,
	}
	return r.Do(ctx)
}

// Do executes the runner.
func (r Runner) Do(ctx context.Context) error {
	srv, err := r.newServer()
	if err != nil {
		return err
	}

	switch t := r.Transport; t {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}
}

func (r Runner) newServer() (*server.MCPServer, error) {
	if r.Backend == nil {
		return nil, errors.New("mcp runner requires a backend")
	}
	name := r.Name
	if name == "" {
		name = "pricematrix"
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}

	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Read and edit the pricing matrix. Prices are per row (plan) and tier; lite prices set standard to 2x and unlimited to 3x."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)

	svc := &Service{Backend: r.Backend, Timeout: r.Timeout}
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv, nil
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	useTLS, err := r.HTTP.TLS()
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cmp.Or(r.HTTP.Addr, DefaultHTTPAddr))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(cmp.Or(r.HTTP.Path, "/mcp"), server.NewStreamableHTTPServer(srv))
	hs := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	if r.HTTP.OnListening != nil {
		r.HTTP.OnListening(ln.Addr())
	}
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	})
	defer stop()

	if useTLS {
		err = hs.ServeTLS(ln, r.HTTP.CertFile, r.HTTP.KeyFile)
	} else {
		err = hs.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
