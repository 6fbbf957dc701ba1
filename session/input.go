package session

import (
	"strings"

	"go-currency-exchange/domain"
	"go-currency-exchange/money"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	maxIntegralDigits   = 6
	maxFractionalDigits = 2

	// signChars may surround a typed amount, they carry no value
	signChars = "+- "
)

var (
	one = decimal.NewFromInt(1)
	// maxAmount first amount with too many integral digits
	maxAmount = decimal.New(1, maxIntegralDigits)
)

// ErrInvalidAmount the text is not a non-negative number
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount reads a typed amount such as "- 10", "+ 1,57" or "3.". Signs and spaces around
// the number are ignored, a comma is read as the decimal separator and digits past the
// cents are truncated. Empty text is zero, more than six integral digits are invalid.
func ParseAmount(text string) (money.Amount, error) {
	cleaned := strings.Trim(text, signChars)
	if cleaned == "" {
		return money.Amount{}, nil
	}
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	cleaned = strings.TrimSuffix(cleaned, ".")
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() || strings.ContainsAny(cleaned, "eE") {
		return money.Amount{}, errors.Wrapf(ErrInvalidAmount, "%q", text)
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return money.Amount{}, errors.Wrapf(ErrInvalidAmount, "%q has more than %d integral digits", text, maxIntegralDigits)
	}
	return money.FromDecimal(d), nil
}

// ValidateInput reports whether an amount field showing current may change to resulting.
// Deletions are always allowed. Otherwise the number may hold one separator, which can't
// come first, at most six integral digits and at most two fractional digits.
func ValidateInput(current, resulting string) bool {
	if len(resulting) < len(current) {
		return true
	}
	number := strings.Trim(resulting, signChars)
	if number == "" {
		return true
	}
	integral, fractional, hasSeparator := cutSeparator(number)
	if hasSeparator && integral == "" {
		return false
	}
	if strings.ContainsAny(fractional, ".,") {
		return false
	}
	if !digitsOnly(integral) || !digitsOnly(fractional) {
		return false
	}
	return len(integral) <= maxIntegralDigits && len(fractional) <= maxFractionalDigits
}

// AddSign prefixes a typed amount with the sign of side, "10" on the from side becomes
// "- 10". Text without a number becomes empty.
func AddSign(side domain.Side, text string) string {
	number := strings.Trim(text, signChars)
	if number == "" {
		return ""
	}
	return side.Sign() + " " + number
}

func cutSeparator(s string) (integral, fractional string, found bool) {
	i := strings.IndexAny(s, ".,")
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
