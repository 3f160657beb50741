package api

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

// BreakerConfig tunes the optional request guard.
type BreakerConfig struct {
	Name string
	// Failures is the number of consecutive transport failures that open the breaker.
	Failures uint32
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
	Logger   *zap.Logger
}

// NewBreaker builds a circuit breaker that only counts transport failures.
// Server errors with a status code leave it closed.
func NewBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if cfg.Name == "" {
		cfg.Name = "attendance-api"
	}
	if cfg.Failures == 0 {
		cfg.Failures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	failures := cfg.Failures
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !attendance.IsNetwork(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}
