package ecb

import (
	"encoding/xml"
	"io"

	"go-currency-exchange/domain"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	cubeTag     = "Cube"
	currencyKey = "currency"
	rateKey     = "rate"
)

// ErrEmptyFeed the feed held no XML document at all
var ErrEmptyFeed = errors.New("empty feed")

// Parse decodes the ECB reference rate document:
//
//	<gesmes:Envelope>
//	  <Cube>
//	    <Cube time="2018-02-07">
//	      <Cube currency="USD" rate="1.2249"/>
//
// Every Cube element carrying a currency and a rate yields a rate from EUR. Currencies that
// are not supported and rates that don't parse are skipped. Malformed XML is an error.
func Parse(r io.Reader) ([]domain.ExchangeRate, error) {
	decoder := xml.NewDecoder(r)
	rates := []domain.ExchangeRate{}
	seenElement := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading xml token")
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		seenElement = true
		if start.Name.Local != cubeTag {
			continue
		}
		if rate, ok := cubeRate(start.Attr); ok {
			rates = append(rates, rate)
		}
	}
	if !seenElement {
		return nil, ErrEmptyFeed
	}
	return rates, nil
}

func cubeRate(attrs []xml.Attr) (domain.ExchangeRate, bool) {
	var currencyValue, rateValue string
	for _, attr := range attrs {
		switch attr.Name.Local {
		case currencyKey:
			currencyValue = attr.Value
		case rateKey:
			rateValue = attr.Value
		}
	}
	if currencyValue == "" || rateValue == "" {
		return domain.ExchangeRate{}, false
	}
	currency := domain.Currency(currencyValue)
	if !currency.Valid() {
		return domain.ExchangeRate{}, false
	}
	rate, err := decimal.NewFromString(rateValue)
	if err != nil {
		return domain.ExchangeRate{}, false
	}
	return domain.ExchangeRate{From: domain.EUR, To: currency, Rate: rate}, true
}
