package exchange

import (
	"context"
	"time"

	"go-currency-exchange/domain"
	"go-currency-exchange/money"

	"github.com/go-kit/log"
	"github.com/shopspring/decimal"
)

// loggingModel decorates a Model with logging
type loggingModel struct {
	logger log.Logger
	next   Model
}

// NewLoggingModel returns a new instance of a logging Model
func NewLoggingModel(logger log.Logger, m Model) Model {
	return &loggingModel{
		next:   m,
		logger: logger,
	}
}

func (m *loggingModel) HasRatesData() bool { return m.next.HasRatesData() }

func (m *loggingModel) IsLoading() bool { return m.next.IsLoading() }

func (m *loggingModel) AmountLeft(currency domain.Currency) money.Amount {
	return m.next.AmountLeft(currency)
}

func (m *loggingModel) Rate(from, to domain.Currency) decimal.Decimal {
	return m.next.Rate(from, to)
}

func (m *loggingModel) CurrencyModel(from, to domain.Currency, side domain.Side, exchangeAmount money.Amount) CurrencyModel {
	return m.next.CurrencyModel(from, to, side, exchangeAmount)
}

func (m *loggingModel) LoadRates(ctx context.Context, completion func(ok bool)) {
	begin := time.Now()
	m.next.LoadRates(ctx, func(ok bool) {
		m.logger.Log(
			"method", "load_rates",
			"ok", ok,
			"took", time.Since(begin),
		)
		if completion != nil {
			completion(ok)
		}
	})
}

func (m *loggingModel) PerformExchange(from domain.Currency, amountFrom money.Amount, to domain.Currency, amountTo money.Amount) (ok bool) {
	defer func(begin time.Time) {
		m.logger.Log(
			"method", "perform_exchange",
			"from", from,
			"amount_from", amountFrom,
			"to", to,
			"amount_to", amountTo,
			"ok", ok,
			"took", time.Since(begin),
		)
	}(time.Now())
	return m.next.PerformExchange(from, amountFrom, to, amountTo)
}

func (m *loggingModel) CalculateExchangeAmount(from, to domain.Currency, amount money.Amount, side domain.Side) (result money.Amount) {
	defer func(begin time.Time) {
		m.logger.Log(
			"method", "calculate_exchange_amount",
			"from", from,
			"to", to,
			"side", side,
			"amount", amount,
			"result", result,
			"took", time.Since(begin),
		)
	}(time.Now())
	return m.next.CalculateExchangeAmount(from, to, amount, side)
}
