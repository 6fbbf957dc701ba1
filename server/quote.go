package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-currency-exchange/domain"
	"go-currency-exchange/session"

	"github.com/spf13/cobra"
)

var errCannotExchange = errors.New("exchange not possible with these amounts")

type quoteRunner struct {
	a       *app
	side    domain.Side
	amount  string
	from    domain.Currency
	to      domain.Currency
	perform bool
}

func newQuoteCmd(load configLoader) *cobra.Command {
	var sideFlag string
	var perform bool

	cmd := &cobra.Command{
		Use:   "quote <amount> <from> <to>",
		Short: "Calculate an exchange and optionally perform it",
		Long: `Calculate how much of <to> is received for <amount> of <from>, or with --side to how
much of <from> is needed to receive <amount> of <to>. Balances live in memory only.`,
		Example: `  exchange quote 10 EUR USD
  exchange quote --side to 1,79 GBP EUR --perform`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := domain.ParseSide(sideFlag)
			if err != nil {
				return err
			}
			from, err := domain.ParseCurrency(args[1])
			if err != nil {
				return err
			}
			to, err := domain.ParseCurrency(args[2])
			if err != nil {
				return err
			}
			if !session.ValidateInput("", args[0]) {
				return fmt.Errorf("amount %q: too many digits or separators", args[0])
			}
			if _, err := session.ParseAmount(args[0]); err != nil {
				return err
			}
			cfg, err := load()
			if err != nil {
				return err
			}

			runner := &quoteRunner{
				a:       newApp(cfg, newLogger(cmd.ErrOrStderr(), cfg.LogLevel)),
				side:    side,
				amount:  args[0],
				from:    from,
				to:      to,
				perform: perform,
			}
			return runner.a.withLoadedRates(cmd.Context(), func(ctx context.Context) error {
				var out []string
				var runErr error
				if err := runner.a.loop.Do(ctx, func() { out, runErr = runner.Run() }); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, "\n"))
				return runErr
			})
		},
	}

	cmd.Flags().StringVarP(&sideFlag, "side", "s", "from", "side the amount is entered on: from or to")
	cmd.Flags().BoolVarP(&perform, "perform", "p", false, "perform the exchange")
	return cmd
}

// Run must run on the loop
func (r *quoteRunner) Run() ([]string, error) {
	s := session.New(r.a.model)
	s.TransitionedToCurrency(currencyIndex(s, r.from), domain.SideFrom)
	s.TransitionedToCurrency(currencyIndex(s, r.to), domain.SideTo)
	if s.IsExchangingSameCurrency() {
		return nil, fmt.Errorf("can't exchange %s to itself", r.from)
	}
	if err := s.EditedAmount(r.side, session.AddSign(r.side, r.amount)); err != nil {
		return nil, err
	}

	lines := []string{
		viewLine(s.CurrencyView(r.from, domain.SideFrom)),
		viewLine(s.CurrencyView(r.to, domain.SideTo)),
		s.ExchangeRateString(),
	}
	if !r.perform {
		return lines, nil
	}
	if !s.CanExchange() || !s.PerformExchange() {
		return lines, errCannotExchange
	}
	return append(lines,
		"exchanged, balances now",
		viewLine(s.CurrencyView(r.from, domain.SideFrom)),
		viewLine(s.CurrencyView(r.to, domain.SideTo)),
	), nil
}

func currencyIndex(s *session.Session, c domain.Currency) int {
	for i, currency := range s.Currencies() {
		if currency == c {
			return i
		}
	}
	panic(fmt.Sprintf("%s is not exchangeable", c))
}

func viewLine(v session.CurrencyView) string {
	line := fmt.Sprintf("%s %-10s %-10s %s", v.CurrencyString, v.AmountLeftString, v.ExchangeAmountString, v.ExchangeRateString)
	line = strings.TrimRight(line, " ")
	if v.ShowInsufficientFunds {
		line += " (insufficient funds)"
	}
	return line
}
