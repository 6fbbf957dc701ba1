package main

import (
	"context"
	"errors"
	"fmt"
	nhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-currency-exchange/exchange"
	"go-currency-exchange/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the exchange over HTTP",
		Long: `Serve balances, rates, quotes and exchanges as JSON over HTTP.
Rates are loaded on startup and refreshed in the background.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, newApp(cfg, logger), cfg.Listen, cfg.RefreshInterval)
		},
	}
}

// serve runs the loop, the periodic refresh and the HTTP server until ctx is done or one
// of them fails
func serve(ctx context.Context, a *app, listen string, refreshInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.loop.Run(ctx)
	})

	g.Go(func() error {
		refreshLogger := log.With(a.logger, "component", "refresh")
		ok, err := exchange.LoadRatesAndWait(ctx, a.loop, a.model)
		switch {
		case err != nil:
			return nil
		case !ok:
			level.Warn(refreshLogger).Log("msg", "initial rates not loaded, retrying on next refresh")
		}
		exchange.RefreshPeriodically(ctx, a.loop, a.model, refreshInterval, refreshLogger)
		return nil
	})

	server := &nhttp.Server{
		Addr:    listen,
		Handler: http.NewServer(a.loop, a.model, log.With(a.logger, "component", "http")),
	}
	g.Go(func() error {
		level.Info(a.logger).Log("msg", "listening", "addr", listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nhttp.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	level.Info(a.logger).Log("msg", "stopped")
	return nil
}
