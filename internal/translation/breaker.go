package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerTranslator fails fast once the wrapped translator has failed
// threshold times in a row. It never retries.
type BreakerTranslator struct {
	next Translator
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerTranslator wraps next in a circuit breaker. After cooldown the
// breaker lets a single trial request through.
func NewBreakerTranslator(next Translator, threshold uint32, cooldown time.Duration, logger *zap.Logger) *BreakerTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "translation",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A cancelled request says nothing about the service's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BreakerTranslator{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Translate implements Translator
func (b *BreakerTranslator) Translate(ctx context.Context, req Request) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Translate(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// State reports the breaker state ("closed", "half-open" or "open")
func (b *BreakerTranslator) State() string {
	return b.cb.State().String()
}
