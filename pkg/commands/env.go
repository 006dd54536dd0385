package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"tableflip.dev/pricematrix/pkg/app"
	"tableflip.dev/pricematrix/pkg/client"
	"tableflip.dev/pricematrix/pkg/config"
	"tableflip.dev/pricematrix/pkg/logging"
	"tableflip.dev/pricematrix/pkg/rules"
	"tableflip.dev/pricematrix/pkg/session"
	"tableflip.dev/pricematrix/pkg/store"
)

// env is what a command needs to reach the matrix: the loaded config, a
// logger, and either the local service or a remote client.
type env struct {
	cfg     *config.Config
	log     *slog.Logger
	service *app.Service
	remote  *client.Client

	closers []io.Closer
}

type envOptions struct {
	// remote overrides cfg.Remote when set.
	remote string
	// quiet discards logs unless log_file is configured. The TUI owns the
	// terminal, so it cannot share stderr with the logger.
	quiet bool
	// local forces the local store even when a remote is configured.
	local bool
}

func openEnv(ctx context.Context, opts envOptions) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	var w io.Writer = os.Stderr
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		e.closers = append(e.closers, f)
		w = f
	case opts.quiet:
		w = io.Discard
	}
	e.log = logging.InitLogger(cfg.LogLevel, cfg.LogFormat, w)

	remote := cfg.Remote
	if opts.remote != "" {
		remote = opts.remote
	}
	if remote != "" && !opts.local {
		e.remote = client.New(remote, &http.Client{Timeout: cfg.IOTimeout})
		e.log.Debug("using remote backend", "remote", remote)
		return e, nil
	}

	set, err := rules.Compile(cfg.Rules...)
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	p, err := store.Open(ctx, cfg)
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	e.closers = append(e.closers, p)
	e.service = &app.Service{Persistence: p, Rules: set}
	e.log.Debug("using local backend", "backend", cfg.Backend(), "rules", set.Len())
	return e, nil
}

// backend returns the remote client when one is configured, otherwise the
// local service.
func (e *env) backend() session.Backend {
	if e.remote != nil {
		return e.remote
	}
	return e.service
}

// sessionOptions applies the configured timeout and logger to sessions.
func (e *env) sessionOptions() []session.Option {
	return []session.Option{
		session.WithTimeout(e.cfg.IOTimeout),
		session.WithLogger(e.log),
	}
}

// watch subscribes to store changes. Remote backends have no change feed and
// get a nil channel.
func (e *env) watch(ctx context.Context) <-chan store.Event {
	if e.service == nil {
		return nil
	}
	ch, err := e.service.Watch(ctx)
	if err != nil {
		e.log.Warn("watch unavailable", "error", err)
		return nil
	}
	return ch
}

func (e *env) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}
