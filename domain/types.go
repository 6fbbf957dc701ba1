package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency a currency code
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	GBP Currency = "GBP"
)

// Pivot the currency every feed rate is expressed against.
// Rates between two other currencies are composed through it.
const Pivot = EUR

// Currencies in display order
var Currencies = []Currency{EUR, GBP, USD}

// Symbol returns the display symbol, e.g. € for EUR.
func (c Currency) Symbol() string {
	switch c {
	case EUR:
		return "€"
	case USD:
		return "$"
	case GBP:
		return "£"
	default:
		return string(c)
	}
}

func (c Currency) String() string {
	return string(c)
}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	switch c {
	case EUR, USD, GBP:
		return true
	}
	return false
}

// ParseCurrency parses a currency code, ignoring case and surrounding spaces.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown currency: %q", s)
	}
	return c, nil
}

// Side of an exchange the user entered an amount for
type Side int

const (
	SideFrom Side = iota
	SideTo
)

func (s Side) Opposite() Side {
	if s == SideFrom {
		return SideTo
	}
	return SideFrom
}

// Sign shown in front of an amount on this side: money leaves on the from side and arrives on the to side.
func (s Side) Sign() string {
	if s == SideFrom {
		return "-"
	}
	return "+"
}

func (s Side) String() string {
	if s == SideFrom {
		return "from"
	}
	return "to"
}

// ParseSide parses "from" or "to".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "from":
		return SideFrom, nil
	case "to":
		return SideTo, nil
	}
	return 0, fmt.Errorf("unknown side: %q", s)
}

// ExchangeRate one entry of a rate feed: one unit of From buys Rate units of To.
type ExchangeRate struct {
	From Currency
	To   Currency
	Rate decimal.Decimal
}
