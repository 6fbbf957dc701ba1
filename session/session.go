// Package session keeps the state of one exchange screen: which currencies are being
// exchanged, which side the user is typing into, and the amounts on both sides.
//
// A Session is driven from the goroutine running the exchange.Loop of its model.
package session

import (
	"context"
	"fmt"

	"go-currency-exchange/domain"
	"go-currency-exchange/exchange"
	"go-currency-exchange/format"
	"go-currency-exchange/money"

	"github.com/shopspring/decimal"
)

type loadingState int

const (
	// stateInitial no rates were requested yet
	stateInitial loadingState = iota
	// stateNormal the last request succeeded
	stateNormal
	// stateLoading a request is in flight
	stateLoading
	// stateError the last request failed and no new one started yet
	stateError
)

// Session presentation state over an exchange.Model
type Session struct {
	model exchange.Model
	state loadingState

	from domain.Currency
	to   domain.Currency

	amountFrom money.Amount
	amountTo   money.Amount

	// editedSide the side the user is typing into
	editedSide domain.Side
	// editedText what the user typed, "" when nothing
	editedText string
	// editedAmount editedText parsed
	editedAmount money.Amount
}

// New returns a Session exchanging GBP to USD with nothing entered. A model that already
// holds rates starts the session in the loaded state.
func New(model exchange.Model) *Session {
	s := &Session{
		model:      model,
		from:       domain.GBP,
		to:         domain.USD,
		editedSide: domain.SideFrom,
	}
	if model.HasRatesData() {
		s.state = stateNormal
	}
	return s
}

// Currencies that can be exchanged, in carousel order
func (s *Session) Currencies() []domain.Currency {
	return domain.Currencies
}

func (s *Session) From() domain.Currency { return s.from }

func (s *Session) To() domain.Currency { return s.to }

// Amounts currently on the from and to sides
func (s *Session) Amounts() (from, to money.Amount) {
	return s.amountFrom, s.amountTo
}

// EditedSide the side whose amount the user is editing
func (s *Session) EditedSide() domain.Side { return s.editedSide }

func (s *Session) IsLoading() bool { return s.state == stateLoading }

// IsLoadingError the last rate request failed and no new one was started
func (s *Session) IsLoadingError() bool { return s.state == stateError }

func (s *Session) IsExchangingSameCurrency() bool {
	return s.from == s.to
}

// CanExchange reports whether PerformExchange is expected to succeed with the current rates and amounts
func (s *Session) CanExchange() bool {
	if s.IsExchangingSameCurrency() || s.state != stateNormal {
		return false
	}
	nonZeroFrom := s.amountFrom.GreaterThanOrEqual(money.LeastPositiveAmount)
	nonZeroTo := s.amountTo.GreaterThanOrEqual(money.LeastPositiveAmount)
	enoughFunds := s.model.AmountLeft(s.from).GreaterThanOrEqual(s.amountFrom)
	return nonZeroFrom && nonZeroTo && enoughFunds
}

// PerformExchange exchanges the current amounts. On success the amounts and input are cleared.
func (s *Session) PerformExchange() bool {
	ok := s.model.PerformExchange(s.from, s.amountFrom, s.to, s.amountTo)
	if ok {
		s.amountFrom = money.Amount{}
		s.amountTo = money.Amount{}
		s.editedText = ""
		s.editedAmount = money.Amount{}
	}
	return ok
}

// LoadExchangeRates requests fresh rates unless a request is already in flight, in which
// case nothing happens and completion is not called.
func (s *Session) LoadExchangeRates(ctx context.Context, completion func(ok bool)) {
	if s.IsLoading() {
		return
	}
	s.state = stateLoading
	s.model.LoadRates(ctx, func(ok bool) {
		if ok {
			s.state = stateNormal
		} else {
			s.state = stateError
		}
		s.updateAmounts()
		if completion != nil {
			completion(ok)
		}
	})
}

// CurrentCurrencyIndex index in Currencies of the currency on side
func (s *Session) CurrentCurrencyIndex(side domain.Side) int {
	currency := s.from
	if side == domain.SideTo {
		currency = s.to
	}
	for i, c := range s.Currencies() {
		if c == currency {
			return i
		}
	}
	panic(fmt.Sprintf("session: %s is not exchangeable", currency))
}

// StartedEditing must be called when the input of side gets focus
func (s *Session) StartedEditing(side domain.Side, text string) error {
	amount, err := ParseAmount(text)
	if err != nil {
		return err
	}
	s.editedSide = side
	s.editedText = text
	s.editedAmount = amount
	return nil
}

// EditedAmount must be called when the user changes the amount of side.
// The other side is recalculated.
func (s *Session) EditedAmount(side domain.Side, text string) error {
	if err := s.StartedEditing(side, text); err != nil {
		return err
	}
	s.updateAmounts()
	return nil
}

// TransitionedToCurrency must be called when the user picks the currency at index for side
func (s *Session) TransitionedToCurrency(index int, side domain.Side) {
	currencies := s.Currencies()
	if index < 0 || index >= len(currencies) {
		panic(fmt.Sprintf("session: currency index %d out of range", index))
	}
	if s.editedSide == side && index != s.CurrentCurrencyIndex(side) {
		// The edited currency changed, the typed text no longer belongs to it.
		// The amount is kept and shown recalculated instead.
		s.editedText = ""
	}
	switch side {
	case domain.SideFrom:
		s.from = currencies[index]
		s.amountFrom = s.calculateExchangeResult(s.amountTo, side.Opposite())
	case domain.SideTo:
		s.to = currencies[index]
		s.amountTo = s.calculateExchangeResult(s.amountFrom, side.Opposite())
	}
	if s.editedSide == domain.SideFrom {
		s.editedAmount = s.amountFrom
	} else {
		s.editedAmount = s.amountTo
	}
}

// ExchangeRateString e.g. €1 = $1.2249. Empty when exchanging the same currency or when
// there is no loaded rate for the pair.
func (s *Session) ExchangeRateString() string {
	if s.IsExchangingSameCurrency() || s.state != stateNormal {
		return ""
	}
	rate, ok := s.rate()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s1 = %s%s", s.from.Symbol(), s.to.Symbol(), format.Decimal(rate, format.FourDigits))
}

// CurrencyView what to show for currency placed on side
func (s *Session) CurrencyView(currency domain.Currency, side domain.Side) CurrencyView {
	from, to, amount := currency, s.to, s.amountFrom
	if side == domain.SideTo {
		from, to, amount = s.from, currency, s.amountTo
	}
	text := ""
	if s.shouldProvideAmountText(currency, side) {
		text = s.editedText
	}
	if !s.shouldProvideAmount(currency) {
		amount = money.Amount{}
	}
	model := s.model.CurrencyModel(from, to, side, amount)
	return newCurrencyView(from, to, side, text, model)
}

func (s *Session) updateAmounts() {
	amount := s.editedAmount
	result := s.calculateExchangeResult(amount, s.editedSide)
	switch s.editedSide {
	case domain.SideFrom:
		s.amountFrom, s.amountTo = amount, result
	case domain.SideTo:
		s.amountFrom, s.amountTo = result, amount
	}
}

// shouldProvideAmountText only the field being edited shows the typed text
func (s *Session) shouldProvideAmountText(currency domain.Currency, side domain.Side) bool {
	if side != s.editedSide {
		return false
	}
	if side == domain.SideFrom {
		return currency == s.from
	}
	return currency == s.to
}

func (s *Session) shouldProvideAmount(currency domain.Currency) bool {
	if currency == s.from && s.editedSide == domain.SideFrom {
		// Always provided so that insufficient funds show even after a loading error
		return true
	}
	exchanging := currency == s.from || currency == s.to
	return exchanging && s.state == stateNormal
}

// calculateExchangeResult the amount on the other side of amount entered on side, zero
// when there is no rate for the pair
func (s *Session) calculateExchangeResult(amount money.Amount, side domain.Side) money.Amount {
	if _, ok := s.rate(); !ok {
		return money.Amount{}
	}
	return s.model.CalculateExchangeAmount(s.from, s.to, amount, side)
}

// rate from -> to, false when the loaded feed does not cover the pair
func (s *Session) rate() (decimal.Decimal, bool) {
	rate := s.model.CurrencyModel(s.from, s.to, domain.SideFrom, money.Amount{}).Rate
	return rate.Decimal, rate.Valid
}
