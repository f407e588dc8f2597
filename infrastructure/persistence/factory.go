package persistence

import (
	"context"
	"fmt"

	"flowboard/application/ports"
	"flowboard/infrastructure/config"

	"go.uber.org/zap"
)

// Open builds the store named by cfg.Driver. Remote drivers get a circuit
// breaker when cfg.Breaker.Enabled is set.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (ports.ClosableStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store  ports.ClosableStore
		remote bool
		err    error
	)
	switch Driver(cfg.Driver) {
	case DriverMemory:
		store = NewMemoryStore()
	case DriverFile:
		store, err = NewFileStore(cfg.Path)
	case DriverSQLite:
		store, err = NewSQLiteStore(cfg.DSN)
	case DriverRedis:
		store, err = DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		remote = true
	case DriverDynamoDB:
		store, err = DialDynamoDB(ctx, cfg.Region, cfg.Endpoint, cfg.Table)
		remote = true
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if remote && cfg.Breaker.Enabled {
		store = NewResilientStore(store, BreakerSettings{
			Name:             cfg.Driver,
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		}, logger)
	}

	logger.Info("Document store opened", zap.String("driver", cfg.Driver), zap.Bool("breaker", remote && cfg.Breaker.Enabled))
	return store, nil
}
