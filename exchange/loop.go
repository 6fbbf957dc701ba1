package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ErrAlreadyLoading a rate refresh was requested while another one is in flight
var ErrAlreadyLoading = errors.New("rates are already loading")

// ErrLoopStopped the loop is not running any more
var ErrLoopStopped = errors.New("loop stopped")

// Loop runs functions one at a time on the goroutine executing Run. A Model and everything
// built on it is only touched from inside the loop.
type Loop struct {
	tasks chan func()
	done  chan struct{}
}

// NewLoop constructs a Loop. Nothing runs until Run is called.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Run executes posted functions until ctx is cancelled. Run must be called once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Post queues fn to run on the loop. fn is dropped if the loop has stopped.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}
	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadRatesAndWait asks m for fresh rates and waits for the outcome. A refresh is never
// started while another one is in flight, ErrAlreadyLoading is returned instead.
func LoadRatesAndWait(ctx context.Context, l *Loop, m Model) (bool, error) {
	result := make(chan bool, 1)
	var started bool
	err := l.Do(ctx, func() {
		if m.IsLoading() {
			return
		}
		started = true
		m.LoadRates(ctx, func(ok bool) {
			result <- ok
		})
	})
	if err != nil {
		return false, err
	}
	if !started {
		return false, ErrAlreadyLoading
	}
	select {
	case ok := <-result:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// RefreshPeriodically reloads rates every interval until ctx is done.
// Failures are logged and retried on the next tick.
func RefreshPeriodically(ctx context.Context, l *Loop, m Model, interval time.Duration, logger log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ok, err := LoadRatesAndWait(ctx, l, m)
			switch {
			case errors.Is(err, ErrAlreadyLoading):
				level.Debug(logger).Log("msg", "periodic refresh skipped", "reason", err)
			case err != nil:
				level.Warn(logger).Log("msg", "periodic refresh failed", "err", err)
			case !ok:
				// Don't return, just log and hope this is a transient error
				level.Warn(logger).Log("msg", "periodic refresh returned no rates")
			}
		case <-ctx.Done():
			level.Info(logger).Log("msg", "shutting down periodic refresh")
			return
		}
	}
}
