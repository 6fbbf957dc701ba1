package exchange

import (
	"context"

	"go-currency-exchange/domain"
	"go-currency-exchange/money"

	"github.com/shopspring/decimal"
)

// Model the exchange operations offered to the presentation layer.
//
// Implementations are not safe for concurrent use: every method must be called from the
// goroutine running the Loop the model was built with.
type Model interface {
	// HasRatesData reports whether rates have been loaded successfully
	HasRatesData() bool

	// IsLoading reports whether a LoadRates call has not completed yet
	IsLoading() bool

	// AmountLeft balance of currency
	AmountLeft(currency domain.Currency) money.Amount

	// Rate what to multiply one from by, to get to. Panics when the rates needed are not loaded.
	Rate(from, to domain.Currency) decimal.Decimal

	// LoadRates refreshes the rates in the background. completion runs on the loop goroutine.
	LoadRates(ctx context.Context, completion func(ok bool))

	// PerformExchange reports whether the exchange was committed
	PerformExchange(from domain.Currency, amountFrom money.Amount, to domain.Currency, amountTo money.Amount) bool

	// CalculateExchangeAmount returns the amount on the other side of the exchange:
	// the to amount when side is SideFrom, the from amount when side is SideTo.
	CalculateExchangeAmount(from, to domain.Currency, amount money.Amount, side domain.Side) money.Amount

	// CurrencyModel returns a snapshot for displaying one side of the exchange
	CurrencyModel(from, to domain.Currency, side domain.Side, exchangeAmount money.Amount) CurrencyModel
}

// CurrencyModel what one side of the exchange screen shows
type CurrencyModel struct {
	// AmountLeft balance of the currency of the side
	AmountLeft money.Amount

	// ExchangeAmount amount being exchanged on the side
	ExchangeAmount money.Amount

	// Rate from -> to, not valid when rates are not loaded
	Rate decimal.NullDecimal
}

// RatesSource provides a rate feed. Every rate is expected to start at domain.Pivot.
// ecb.Service satisfies it.
type RatesSource interface {
	Rates(ctx context.Context) ([]domain.ExchangeRate, error)
}

// Dispatcher runs functions on the goroutine owning a Model
type Dispatcher interface {
	Post(fn func())
}
