package exchange

import (
	"go-currency-exchange/domain"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// rateTable units of a currency one unit of domain.Pivot buys.
// The pivot itself is never a key.
//
// Feed rates only connect the pivot with one other currency, so any pair is at most two hops
// away: from -> pivot -> to.
type rateTable map[domain.Currency]decimal.Decimal

// newRateTable keeps the feed entries starting at the pivot. Entries of any other shape are
// skipped, one bad entry does not spoil the batch.
func newRateTable(rates []domain.ExchangeRate, logger log.Logger) rateTable {
	table := rateTable{}
	for _, r := range rates {
		switch {
		case r.From != domain.Pivot:
			level.Debug(logger).Log("msg", "skipping rate", "reason", "not from pivot", "from", r.From, "to", r.To)
		case r.To == domain.Pivot:
			level.Debug(logger).Log("msg", "skipping rate", "reason", "pivot to itself", "from", r.From, "to", r.To)
		case !r.To.Valid():
			level.Debug(logger).Log("msg", "skipping rate", "reason", "unknown currency", "to", r.To)
		case !r.Rate.IsPositive():
			level.Debug(logger).Log("msg", "skipping rate", "reason", "not positive", "to", r.To, "rate", r.Rate)
		default:
			table[r.To] = r.Rate
		}
	}
	return table
}

// rate composes the rate between any two currencies without truncating intermediate results
func (t rateTable) rate(from, to domain.Currency) (decimal.Decimal, bool) {
	if from == to {
		return one, true
	}
	switch {
	case from == domain.Pivot:
		r, ok := t[to]
		return r, ok
	case to == domain.Pivot:
		r, ok := t[from]
		if !ok {
			return decimal.Decimal{}, false
		}
		return one.Div(r), true
	}
	fromToPivot, ok := t.rate(from, domain.Pivot)
	if !ok {
		return decimal.Decimal{}, false
	}
	pivotToTo, ok := t.rate(domain.Pivot, to)
	if !ok {
		return decimal.Decimal{}, false
	}
	return fromToPivot.Mul(pivotToTo), true
}
