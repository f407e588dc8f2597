package persistence

import (
	"context"
	"errors"
	"time"

	"flowboard/application/ports"
	"flowboard/domain/core/aggregates"
	pkgerrors "flowboard/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings tunes ResilientStore
type BreakerSettings struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// ResilientStore puts a circuit breaker in front of a remote store. While the
// breaker is open calls fail fast with a STORE_UNAVAILABLE error.
type ResilientStore struct {
	inner   ports.DocumentStore
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewResilientStore wraps inner
func NewResilientStore(inner ports.DocumentStore, settings BreakerSettings, logger *zap.Logger) *ResilientStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	threshold := settings.FailureThreshold

	return &ResilientStore{
		inner:  inner,
		logger: logger,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        settings.Name,
			MaxRequests: settings.MaxRequests,
			Interval:    settings.Interval,
			Timeout:     settings.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// a caller giving up is not a store failure
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Store circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
	}
}

// State returns the breaker state
func (s *ResilientStore) State() gobreaker.State {
	return s.breaker.State()
}

// Load implements ports.DocumentStore
func (s *ResilientStore) Load(ctx context.Context, key string) (*aggregates.DocumentState, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Load(ctx, key)
	})
	if err != nil {
		return nil, s.wrap(err)
	}
	state, _ := result.(*aggregates.DocumentState)
	return state, nil
}

// Save implements ports.DocumentStore
func (s *ResilientStore) Save(ctx context.Context, key string, state aggregates.DocumentState) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.inner.Save(ctx, key, state)
	})
	return s.wrap(err)
}

// Close implements ports.ClosableStore
func (s *ResilientStore) Close() error {
	if c, ok := s.inner.(ports.ClosableStore); ok {
		return c.Close()
	}
	return nil
}

func (s *ResilientStore) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.StoreUnavailable(err)
	}
	return err
}
