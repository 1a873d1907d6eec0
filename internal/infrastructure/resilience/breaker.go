// Package resilience guards summarizer backends with circuit breakers.
// Calls are made exactly once; a summary is user triggered and is never
// repeated on the caller's behalf.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sony/gobreaker/v2"
)

// FailureFilter reports whether err says something about the backend's
// health. Errors caused by the input itself should not trip the breaker.
type FailureFilter func(err error) bool

type Breakers struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewBreakers(cfg Config) *Breakers {
	return &Breakers{
		cfg:      cfg.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

// Disabled returns a pass-through guard.
func Disabled() *Breakers {
	return NewBreakers(Config{Enabled: false})
}

// Call runs fn once under the breaker named backend. When the breaker is
// open fn is skipped and the returned error satisfies IsOpen.
func (b *Breakers) Call(ctx context.Context, backend string, fn func(context.Context) error, counts FailureFilter) error {
	if fn == nil {
		return fmt.Errorf("resilience: call for %s is nil", backend)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.cfg.Enabled {
		return fn(ctx)
	}

	name := strings.TrimSpace(backend)
	if name == "" {
		name = "unknown"
	}
	if counts == nil {
		counts = countAll
	}

	_, err := b.breaker(name, counts).Execute(func() (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	if IsOpen(err) {
		return fmt.Errorf("%s: %w", name, err)
	}
	return err
}

func (b *Breakers) breaker(name string, counts FailureFilter) *gobreaker.CircuitBreaker[struct{}] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if breaker, ok := b.breakers[name]; ok {
		return breaker
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: b.cfg.HalfOpenMaxCalls,
		Timeout:     b.cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if c.Requests < b.cfg.MinRequests {
				return false
			}
			return float64(c.TotalFailures)/float64(c.Requests) >= b.cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			return !counts(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("summarizer_breaker_state_change", "backend", name, "from", from.String(), "to", to.String())
		},
	})
	b.breakers[name] = breaker
	return breaker
}

// State reports the breaker state of backend; "closed" before its first call
// or when breakers are disabled.
func (b *Breakers) State(backend string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	breaker, ok := b.breakers[strings.TrimSpace(backend)]
	if !ok {
		return gobreaker.StateClosed.String()
	}
	return breaker.State().String()
}

// IsOpen reports whether err was returned without calling the backend.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func countAll(error) bool { return true }
