// The gateway command runs the LifeOS web gateway: a stateless HTTP layer
// that authenticates callers, enforces CSRF and shared-secret invariants, and
// forwards requests to the downstream LifeOS API with trust headers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/lifeos-home/gateway/internal/authn"
	"github.com/lifeos-home/gateway/internal/config"
	"github.com/lifeos-home/gateway/internal/httpapi"
	"github.com/lifeos-home/gateway/internal/logger"
	"github.com/lifeos-home/gateway/internal/proxy"
	"github.com/lifeos-home/gateway/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.LogLevel)

	resolver, err := authn.NewResolver(cfg.SigningSecret(), cfg.Bypass)
	if err != nil {
		return fmt.Errorf("build resolver: %w", err)
	}

	forwarder, err := proxy.New(cfg.Proxy, proxy.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build forwarder: %w", err)
	}

	api, err := httpapi.New(httpapi.Deps{
		Resolver:       resolver,
		Forwarder:      forwarder,
		InternalAPIKey: cfg.InternalAPIKey,
		SigningSecret:  cfg.SigningSecret(),
		OAuth:          cfg.OAuth,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("build api: %w", err)
	}

	srv, err := server.New(cfg.Server, server.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	log.Info("gateway starting",
		logger.Component("gateway"),
		"addr", cfg.Server.Addr,
		"downstream", cfg.Proxy.BaseURL,
		"env", cfg.Environment,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(ctx, api.Handler()))
	return g.Wait()
}
