package money

import "go-currency-exchange/domain"

// Op one step of a transaction
type Op func(store *Store) error

// Credit an Op adding amount to currency
func Credit(amount Amount, currency domain.Currency) Op {
	return func(store *Store) error {
		return store.Add(amount, currency)
	}
}

// Debit an Op subtracting amount from currency
func Debit(amount Amount, currency domain.Currency) Op {
	return func(store *Store) error {
		return store.Subtract(amount, currency)
	}
}

// Account owns a Store. Transactions are the only way to change it.
type Account struct {
	store Store
}

// NewAccount constructs an Account holding a copy of store
func NewAccount(store Store) *Account {
	return &Account{store: store.Clone()}
}

// Store returns a snapshot of the balances. Changing the snapshot does not change the account.
func (a *Account) Store() Store {
	return a.store.Clone()
}

// AmountOf returns the committed balance of currency
func (a *Account) AmountOf(currency domain.Currency) Amount {
	return a.store.AmountOf(currency)
}

// Transact applies ops in order to a private copy of the store and commits the copy only if
// every op succeeds. On failure the first error is returned and the account is unchanged.
func (a *Account) Transact(ops ...Op) error {
	working := a.store.Clone()
	for _, op := range ops {
		if err := op(&working); err != nil {
			return err
		}
	}
	a.store = working
	return nil
}

// PerformTransaction is Transact reporting only whether the transaction was committed.
func (a *Account) PerformTransaction(ops ...Op) bool {
	return a.Transact(ops...) == nil
}
