package ecb

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go-currency-exchange/domain"

	"github.com/pkg/errors"
)

// DailyRatesURL the European Central Bank reference rates, published once per working day
const DailyRatesURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

// DefaultTimeout for a single feed request
const DefaultTimeout = 10 * time.Second

// Service provides the current EUR based exchange rates
type Service interface {
	Rates(ctx context.Context) ([]domain.ExchangeRate, error)
}

// service ECB daily feed over HTTP
type service struct {
	// url of the XML feed
	url string

	// client for HTTP requests
	client http.Client
}

// NewService constructs a valid ecb Service reading url.
func NewService(url string, timeout time.Duration) Service {
	return &service{
		url: url,
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// Rates downloads and decodes the feed. Every rate returned is from domain.EUR.
func (s *service) Rates(ctx context.Context) ([]domain.ExchangeRate, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building http request")
	}
	request.Header.Set("Cache-Control", "no-cache")

	httpResponse, err := s.client.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "http get")
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return nil, fmt.Errorf("http get: unexpected status %s", httpResponse.Status)
	}

	rates, err := Parse(httpResponse.Body)
	if err != nil {
		return nil, errors.Wrap(err, "decoding xml")
	}
	return rates, nil
}
