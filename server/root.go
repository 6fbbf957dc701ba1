package main

import (
	"context"
	"io"
	"strings"

	"go-currency-exchange/config"
	"go-currency-exchange/ecb"
	"go-currency-exchange/exchange"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
)

// configLoader returns the configuration selected by the persistent flags
type configLoader func() (config.Config, error)

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "exchange",
		Short:         "Exchange money between EUR, USD and GBP at ECB reference rates",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to yaml config")

	load := func() (config.Config, error) {
		return config.Load(cfgFile)
	}
	rootCmd.AddCommand(newServeCmd(load))
	rootCmd.AddCommand(newRatesCmd(load))
	rootCmd.AddCommand(newQuoteCmd(load))
	return rootCmd
}

// newLogger logfmt logger writing to w, dropping entries below lvl
func newLogger(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	var option level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		option = level.AllowDebug()
	case "warn":
		option = level.AllowWarn()
	case "error":
		option = level.AllowError()
	default:
		option = level.AllowInfo()
	}
	return level.NewFilter(logger, option)
}

// app the engine and everything it needs, wired from a Config
type app struct {
	loop   *exchange.Loop
	model  exchange.Model
	logger log.Logger
}

func newApp(cfg config.Config, logger log.Logger) *app {
	feed := ecb.NewService(cfg.FeedURL, cfg.FeedTimeout)
	feed = ecb.NewLoggingService(log.With(logger, "component", "ecb_http"), feed)
	feed = ecb.NewCachingService(cfg.CacheTTL, log.With(logger, "component", "ecb_cache"), feed)

	loop := exchange.NewLoop()
	var model exchange.Model = exchange.New(feed, loop, exchange.SeedStore(cfg.StartingBalance), log.With(logger, "component", "engine"))
	model = exchange.NewLoggingModel(log.With(logger, "component", "exchange"), model)

	return &app{
		loop:   loop,
		model:  model,
		logger: logger,
	}
}

// withLoadedRates runs the loop while fn executes. fn is only called once rates loaded.
func (a *app) withLoadedRates(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx) // must cancel to stop the loop go-routine
	defer cancel()
	go func() { _ = a.loop.Run(ctx) }()

	ok, err := exchange.LoadRatesAndWait(ctx, a.loop, a.model)
	if err != nil {
		return err
	}
	if !ok {
		return errNoRates
	}
	return fn(ctx)
}
