package ecb

import (
	"context"
	"strings"
	"time"

	"go-currency-exchange/domain"

	"github.com/go-kit/log"
)

type loggingService struct {
	next   Service
	logger log.Logger
}

// NewLoggingService logs every feed request with the currencies it returned
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Rates(ctx context.Context) (rates []domain.ExchangeRate, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "rates",
			"currencies", currencies(rates),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Rates(ctx)
}

// currencies e.g. EUR>USD,EUR>GBP, the pairs a feed covers
func currencies(rates []domain.ExchangeRate) string {
	pairs := make([]string, 0, len(rates))
	for _, r := range rates {
		pairs = append(pairs, r.From.String()+">"+r.To.String())
	}
	return strings.Join(pairs, ",")
}
