// Package format renders amounts and rates for display.
//
// Numbers are truncated to the requested precision, never rounded, trailing fractional
// zeros are dropped and no grouping separator is used.
package format

import (
	"fmt"

	"go-currency-exchange/money"

	"github.com/shopspring/decimal"
)

// Precision number of fractional digits kept
type Precision int32

const (
	// TwoDigits money amounts and the per-currency rate
	TwoDigits Precision = 2
	// FourDigits the headline rate
	FourDigits Precision = 4
)

// Money renders an amount, e.g. 1.1 for 1.10 and 3 for 3.00.
func Money(amount money.Amount) string {
	return Decimal(amount.Decimal(), TwoDigits)
}

// Decimal renders a non-negative d keeping at most precision fractional digits.
func Decimal(d decimal.Decimal, precision Precision) string {
	if d.IsNegative() {
		panic(fmt.Sprintf("format: negative number %s", d))
	}
	return d.Truncate(int32(precision)).String()
}
