package money

import (
	"go-currency-exchange/domain"

	"github.com/pkg/errors"
)

var (
	// ErrNegativeAmount an operand of a store mutation was negative.
	// Amount can't be negative today, the check stays in case it ever can.
	ErrNegativeAmount = errors.New("negative amount")

	// ErrInsufficientFunds a subtraction would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Store balances per currency. A currency that was never added holds zero.
//
// Store is a value but owns a map, use Clone to get an independent copy.
type Store struct {
	amounts map[domain.Currency]Amount
}

// NewStore returns an empty store
func NewStore() Store {
	return Store{amounts: map[domain.Currency]Amount{}}
}

// AmountOf returns the balance held in currency
func (s Store) AmountOf(currency domain.Currency) Amount {
	return s.amounts[currency]
}

// Add credits amount to currency. The currency does not need to be stored already.
func (s *Store) Add(amount Amount, currency domain.Currency) error {
	if amount.Decimal().IsNegative() {
		return errors.Wrapf(ErrNegativeAmount, "add %s %s", amount, currency)
	}
	s.set(currency, s.AmountOf(currency).Add(amount))
	return nil
}

// Subtract debits amount from currency. Fails with ErrInsufficientFunds, leaving the
// balance untouched, when less than amount is stored.
func (s *Store) Subtract(amount Amount, currency domain.Currency) error {
	if amount.Decimal().IsNegative() {
		return errors.Wrapf(ErrNegativeAmount, "subtract %s %s", amount, currency)
	}
	current := s.AmountOf(currency)
	if current.LessThan(amount) {
		return errors.Wrapf(ErrInsufficientFunds, "subtract %s %s, have %s", amount, currency, current)
	}
	s.set(currency, current.Sub(amount))
	return nil
}

// Clone returns a copy sharing no state with s
func (s Store) Clone() Store {
	c := NewStore()
	for currency, amount := range s.amounts {
		c.amounts[currency] = amount
	}
	return c
}

func (s *Store) set(currency domain.Currency, amount Amount) {
	if s.amounts == nil {
		s.amounts = map[domain.Currency]Amount{}
	}
	s.amounts[currency] = amount
}
