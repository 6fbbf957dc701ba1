package session

import (
	"fmt"

	"go-currency-exchange/domain"
	"go-currency-exchange/exchange"
	"go-currency-exchange/format"
)

// CurrencyView what one page of a currency carousel shows
type CurrencyView struct {
	Currency domain.Currency

	// CurrencyString the currency code, e.g. EUR
	CurrencyString string

	// AmountLeftString the balance, e.g. €100
	AmountLeftString string

	// ExchangeRateString the inverse rate shown under the to side, e.g. $1 = €0.81.
	// Empty on the from side or when not applicable.
	ExchangeRateString string

	// ExchangeAmountString the typed text when the page is being edited, otherwise the
	// signed amount, e.g. + 12.24. Empty when there is nothing to exchange.
	ExchangeAmountString string

	// ShowInsufficientFunds the from amount exceeds the balance
	ShowInsufficientFunds bool
}

func newCurrencyView(from, to domain.Currency, side domain.Side, text string, m exchange.CurrencyModel) CurrencyView {
	currency := from
	if side == domain.SideTo {
		currency = to
	}
	v := CurrencyView{
		Currency:         currency,
		CurrencyString:   currency.String(),
		AmountLeftString: currency.Symbol() + format.Money(m.AmountLeft),
	}

	if side == domain.SideTo && from != to && m.Rate.Valid && m.Rate.Decimal.IsPositive() {
		inverse := one.Div(m.Rate.Decimal)
		v.ExchangeRateString = fmt.Sprintf("%s1 = %s%s", to.Symbol(), from.Symbol(), format.Decimal(inverse, format.TwoDigits))
	}

	switch {
	case text != "":
		v.ExchangeAmountString = text
	case from == to || m.ExchangeAmount.IsZero():
	default:
		v.ExchangeAmountString = side.Sign() + " " + format.Money(m.ExchangeAmount)
	}

	v.ShowInsufficientFunds = side == domain.SideFrom && m.AmountLeft.LessThan(m.ExchangeAmount)
	return v
}
