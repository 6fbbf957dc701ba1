package ecb

import (
	"context"
	"sync"
	"time"

	"go-currency-exchange/domain"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// cachingService decorates an ecb.Service with a cache of the last successful feed.
// The cachingService is concurrency safe. Failed fetches are never cached.
type cachingService struct {
	// next the service being decorated with a cache
	next Service

	// rates the cached feed, nil until the first successful fetch
	rates []domain.ExchangeRate

	// fetchedAt when rates was fetched
	fetchedAt time.Time

	// ttl how long cached rates are served without asking next
	ttl time.Duration

	// lock synchronizes access to the cache to make it concurrency safe
	lock sync.RWMutex

	// now the clock, replaced in tests
	now func() time.Time

	logger log.Logger
}

// NewCachingService returns a new caching Service
func NewCachingService(ttl time.Duration, logger log.Logger, s Service) Service {
	return &cachingService{
		next:   s,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Rates returns the cached feed while it is fresh, otherwise fetches and caches a new one
func (s *cachingService) Rates(ctx context.Context) ([]domain.ExchangeRate, error) {
	s.lock.RLock()
	rates, fresh := s.rates, s.rates != nil && s.now().Sub(s.fetchedAt) < s.ttl
	s.lock.RUnlock()

	if fresh {
		level.Debug(s.logger).Log("msg", "serving cached rates", "entries", len(rates))
		return rates, nil
	}

	// Note: concurrent callers that all find the cache stale will each fetch. The feed
	// changes once a day and refreshes are suppressed upstream while one is in flight.
	return s.refreshNow(ctx)
}

// refreshNow refreshes the cached feed immediately
func (s *cachingService) refreshNow(ctx context.Context) ([]domain.ExchangeRate, error) {
	rates, err := s.next.Rates(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "refreshing rates")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.rates = rates
	s.fetchedAt = s.now()
	return rates, nil
}
