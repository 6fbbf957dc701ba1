package money

import (
	"errors"
	"testing"

	"go-currency-exchange/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkBalances(t *testing.T, account *Account, eur, usd, gbp Amount) {
	t.Helper()
	assert.Equal(t, eur, account.AmountOf(domain.EUR), "EUR")
	assert.Equal(t, usd, account.AmountOf(domain.USD), "USD")
	assert.Equal(t, gbp, account.AmountOf(domain.GBP), "GBP")
}

func TestAccount_PerformTransaction(t *testing.T) {
	account := NewAccount(NewStore())

	ok := account.PerformTransaction(Credit(Units(1), domain.USD))

	assert.True(t, ok)
	checkBalances(t, account, Units(0), Units(1), Units(0))
}

func TestAccount_PerformTransactionFailureIsAtomic(t *testing.T) {
	account := NewAccount(NewStore())

	ok := account.PerformTransaction(
		Credit(Units(1), domain.USD),
		Debit(Units(2), domain.USD),
	)

	assert.False(t, ok)
	checkBalances(t, account, Units(0), Units(0), Units(0))
}

func TestAccount_TransactReturnsFirstError(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(Units(5), domain.EUR))
	account := NewAccount(store)

	calledAfterFailure := false
	err := account.Transact(
		Credit(Units(1), domain.GBP),
		Debit(Units(6), domain.EUR),
		func(*Store) error {
			calledAfterFailure = true
			return nil
		},
	)

	assert.True(t, errors.Is(err, ErrInsufficientFunds), "got %v", err)
	assert.False(t, calledAfterFailure)
	checkBalances(t, account, Units(5), Units(0), Units(0))
}

func TestAccount_Exchange(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(Units(100), domain.EUR))
	account := NewAccount(store)

	err := account.Transact(
		Debit(NewAmount(96, 44), domain.EUR),
		Credit(NewAmount(118, 12), domain.USD),
	)

	require.NoError(t, err)
	checkBalances(t, account, NewAmount(3, 56), NewAmount(118, 12), Units(0))
}

func TestAccount_StoreIsSnapshot(t *testing.T) {
	account := NewAccount(NewStore())

	snapshot := account.Store()
	require.NoError(t, snapshot.Add(Units(50), domain.EUR))

	assert.Equal(t, Units(0), account.AmountOf(domain.EUR))
	assert.Equal(t, Units(0), account.Store().AmountOf(domain.EUR))
}

func TestNewAccount_CopiesStore(t *testing.T) {
	store := NewStore()
	account := NewAccount(store)

	require.NoError(t, store.Add(Units(7), domain.GBP))

	assert.Equal(t, Units(0), account.AmountOf(domain.GBP))
}
