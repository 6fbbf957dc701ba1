package main

import (
	"context"
	"errors"
	"fmt"

	"go-currency-exchange/domain"
	"go-currency-exchange/session"

	"github.com/spf13/cobra"
)

var errNoRates = errors.New("no rates could be loaded")

func newRatesCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Print the current rates between every pair of currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a := newApp(cfg, newLogger(cmd.ErrOrStderr(), cfg.LogLevel))
			return a.withLoadedRates(cmd.Context(), func(ctx context.Context) error {
				var lines []string
				err := a.loop.Do(ctx, func() {
					lines = rateLines(session.New(a.model))
				})
				if err != nil {
					return err
				}
				for _, line := range lines {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				return nil
			})
		},
	}
}

// rateLines one line per ordered pair of distinct currencies, must run on the loop
func rateLines(s *session.Session) []string {
	var lines []string
	for from := range s.Currencies() {
		for to := range s.Currencies() {
			if from == to {
				continue
			}
			s.TransitionedToCurrency(from, domain.SideFrom)
			s.TransitionedToCurrency(to, domain.SideTo)
			line := s.ExchangeRateString()
			if line == "" {
				line = fmt.Sprintf("%s -> %s: no rate", s.From(), s.To())
			}
			lines = append(lines, line)
		}
	}
	return lines
}
