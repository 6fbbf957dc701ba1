package exchange

import (
	"context"
	"fmt"

	"go-currency-exchange/domain"
	"go-currency-exchange/money"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/shopspring/decimal"
)

// DefaultStartingBalance what a new account holds in every currency
var DefaultStartingBalance = money.Units(100)

// maxSearchSteps bounds the reverse amount search. The truncated estimate the search starts
// from is within a cent or two of the answer, hitting the bound means that no longer holds.
const maxSearchSteps = 100

// SeedStore returns a store holding balance in every supported currency
func SeedStore(balance money.Amount) money.Store {
	store := money.NewStore()
	for _, c := range domain.Currencies {
		if err := store.Add(balance, c); err != nil {
			panic(err)
		}
	}
	return store
}

// Engine exchanges money between the currencies of one account using pivot based rates.
type Engine struct {
	// account the only account, owned for the lifetime of the engine
	account *money.Account

	// rates empty until the first successful LoadRates
	rates rateTable

	// loading true between LoadRates and its completion
	loading bool

	// source rate feed
	source RatesSource

	// dispatch posts rate refresh results back to the owning goroutine
	dispatch Dispatcher

	logger log.Logger
}

// New constructs an Engine whose account starts with store
func New(source RatesSource, dispatch Dispatcher, store money.Store, logger log.Logger) *Engine {
	return &Engine{
		account:  money.NewAccount(store),
		rates:    rateTable{},
		source:   source,
		dispatch: dispatch,
		logger:   logger,
	}
}

// HasRatesData reports whether the last refresh succeeded. Pairs the feed left out still
// have no rate, see CurrencyModel.
func (e *Engine) HasRatesData() bool {
	return len(e.rates) > 0
}

// IsLoading reports whether a LoadRates completion is pending
func (e *Engine) IsLoading() bool {
	return e.loading
}

// AmountLeft balance of currency in the account
func (e *Engine) AmountLeft(currency domain.Currency) money.Amount {
	return e.account.AmountOf(currency)
}

// Rate panics when a rate needed for the pair is missing. Callers check that the Rate of
// CurrencyModel is valid first. Rate(c, c) is 1 even when nothing is loaded.
func (e *Engine) Rate(from, to domain.Currency) decimal.Decimal {
	rate, ok := e.rates.rate(from, to)
	if !ok {
		panic(fmt.Sprintf("exchange: no rate from %s to %s", from, to))
	}
	return rate
}

// LoadRates fetches rates on a new goroutine. The result is applied on the dispatcher: a
// successful fetch replaces the table, a failed or empty one clears it.
func (e *Engine) LoadRates(ctx context.Context, completion func(ok bool)) {
	e.loading = true
	go func() {
		rates, err := e.source.Rates(ctx)
		e.dispatch.Post(func() {
			ok := e.applyRates(rates, err)
			if completion != nil {
				completion(ok)
			}
		})
	}()
}

func (e *Engine) applyRates(rates []domain.ExchangeRate, err error) bool {
	e.loading = false
	if err != nil {
		level.Warn(e.logger).Log("msg", "loading rates failed", "err", err)
		e.rates = rateTable{}
		return false
	}
	table := newRateTable(rates, e.logger)
	if len(table) == 0 {
		level.Warn(e.logger).Log("msg", "rate feed had no usable rates", "entries", len(rates))
		e.rates = rateTable{}
		return false
	}
	e.rates = table
	level.Debug(e.logger).Log("msg", "rates loaded", "currencies", len(table))
	return true
}

// PerformExchange validates the exchange against the current rates again, then subtracts
// amountFrom and adds amountTo in one transaction.
func (e *Engine) PerformExchange(from domain.Currency, amountFrom money.Amount, to domain.Currency, amountTo money.Amount) bool {
	if !e.validateExchange(from, amountFrom, to, amountTo) {
		return false
	}
	err := e.account.Transact(
		money.Debit(amountFrom, from),
		money.Credit(amountTo, to),
	)
	if err != nil {
		level.Debug(e.logger).Log("msg", "exchange transaction failed", "err", err)
		return false
	}
	return true
}

// CalculateExchangeAmount on SideFrom truncates amount times the rate. On SideTo it
// searches the smallest from amount that still yields amount. Panics without a rate for
// the pair, like Rate.
func (e *Engine) CalculateExchangeAmount(from, to domain.Currency, amount money.Amount, side domain.Side) money.Amount {
	if from == to {
		return amount
	}
	if side == domain.SideFrom {
		return amount.Mul(e.Rate(from, to))
	}

	// Smallest amountFrom with amountFrom * rate(from, to) >= amount. The inverse rate gives
	// a truncated estimate, step up a cent at a time until the exchange is valid.
	result := amount.Mul(e.Rate(to, from))
	for steps := 0; !e.validateExchange(from, result, to, amount); steps++ {
		if steps == maxSearchSteps {
			panic(fmt.Sprintf("exchange: no valid %s amount for %s %s within %d steps", from, amount, to, maxSearchSteps))
		}
		result = result.Add(money.LeastPositiveAmount)
	}
	return result
}

// CurrencyModel balance of the currency on side, the amount shown there and the rate from
// -> to when the loaded feed covers the pair
func (e *Engine) CurrencyModel(from, to domain.Currency, side domain.Side, exchangeAmount money.Amount) CurrencyModel {
	currency := from
	if side == domain.SideTo {
		currency = to
	}
	m := CurrencyModel{
		AmountLeft:     e.AmountLeft(currency),
		ExchangeAmount: exchangeAmount,
	}
	if rate, ok := e.rates.rate(from, to); ok {
		m.Rate = decimal.NewNullDecimal(rate)
	}
	return m
}

// validateExchange an exchange is valid when the user does not get more than entering
// amountFrom on the from side would give. Without a rate for the pair nothing is valid.
func (e *Engine) validateExchange(from domain.Currency, amountFrom money.Amount, to domain.Currency, amountTo money.Amount) bool {
	rate, ok := e.rates.rate(from, to)
	if !ok {
		level.Error(e.logger).Log("msg", "exchange validated without rate", "from", from, "to", to)
		return false
	}
	return amountTo.LessThanOrEqual(amountFrom.Mul(rate))
}
