package money

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Amount a non-negative amount of money with exactly two fractional digits, currency agnostic.
//
// Every operation goes through decimal.Decimal and is truncated back to whole cents, so an
// amount shown to the user is always the amount that is stored. Digits below the cent are
// dropped, never rounded up.
type Amount struct {
	// major integral part, 23 for 23.67
	major uint64
	// minor cents, 67 for 23.67. Always in [0, 99].
	minor uint64
}

// LeastPositiveAmount the smallest non-zero amount, one cent.
var LeastPositiveAmount = Amount{major: 0, minor: 1}

var hundred = decimal.NewFromInt(100)

// ErrAmountOutOfRange the integral part does not fit in the major units of an Amount
var ErrAmountOutOfRange = errors.New("amount out of range")

// NewAmount constructs an Amount from its parts. minor must be below 100.
func NewAmount(major, minor uint64) Amount {
	if minor > 99 {
		panic(fmt.Sprintf("money: minor units out of range: %d", minor))
	}
	return Amount{major: major, minor: minor}
}

// Units constructs a whole amount, e.g. Units(100) is 100.00.
func Units(major uint64) Amount {
	return Amount{major: major}
}

// FromDecimal keeps the two most significant fractional digits of d, the rest is ignored.
// d must not be negative and its integral part must fit in a uint64.
func FromDecimal(d decimal.Decimal) Amount {
	a, err := CheckedFromDecimal(d)
	if err != nil {
		panic(fmt.Sprintf("money: %v", err))
	}
	return a
}

// CheckedFromDecimal is FromDecimal returning ErrNegativeAmount or ErrAmountOutOfRange
// instead of panicking.
func CheckedFromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, errors.Wrapf(ErrNegativeAmount, "%s", d)
	}
	whole := d.Floor()
	major := whole.BigInt()
	if !major.IsUint64() {
		return Amount{}, errors.Wrapf(ErrAmountOutOfRange, "%s", d)
	}
	cents := d.Sub(whole).Mul(hundred).Floor()
	return Amount{
		major: major.Uint64(),
		minor: cents.BigInt().Uint64(),
	}, nil
}

// Major integral part
func (a Amount) Major() uint64 { return a.major }

// Minor fractional part in cents
func (a Amount) Minor() uint64 { return a.minor }

// Decimal exact decimal value of the amount
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromUint64(a.major).Add(decimal.New(int64(a.minor), -2))
}

func (a Amount) IsZero() bool {
	return a.major == 0 && a.minor == 0
}

// Add panics when the sum no longer fits, see FromDecimal.
func (a Amount) Add(b Amount) Amount {
	return FromDecimal(a.Decimal().Add(b.Decimal()))
}

// Sub returns a - b. a must be greater than or equal to b.
func (a Amount) Sub(b Amount) Amount {
	if a.LessThan(b) {
		panic(fmt.Sprintf("money: %s - %s would be negative", a, b))
	}
	return FromDecimal(a.Decimal().Sub(b.Decimal()))
}

// Mul multiplies by a non-negative coefficient, truncating the product to whole cents.
// It panics when the product no longer fits, see FromDecimal.
func (a Amount) Mul(coef decimal.Decimal) Amount {
	if coef.IsNegative() {
		panic(fmt.Sprintf("money: negative coefficient %s", coef))
	}
	return FromDecimal(a.Decimal().Mul(coef))
}

// Cmp returns -1, 0 or +1 when a is less than, equal to or greater than b.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a.major < b.major:
		return -1
	case a.major > b.major:
		return 1
	case a.minor < b.minor:
		return -1
	case a.minor > b.minor:
		return 1
	}
	return 0
}

func (a Amount) Equal(b Amount) bool              { return a.Cmp(b) == 0 }
func (a Amount) LessThan(b Amount) bool           { return a.Cmp(b) < 0 }
func (a Amount) LessThanOrEqual(b Amount) bool    { return a.Cmp(b) <= 0 }
func (a Amount) GreaterThan(b Amount) bool        { return a.Cmp(b) > 0 }
func (a Amount) GreaterThanOrEqual(b Amount) bool { return a.Cmp(b) >= 0 }

func (a Amount) String() string {
	return fmt.Sprintf("%d.%02d", a.major, a.minor)
}
