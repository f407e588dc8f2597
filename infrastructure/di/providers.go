package di

import (
	"context"
	"fmt"

	"flowboard/application/commands"
	"flowboard/application/commands/bus"
	"flowboard/application/editor"
	appevents "flowboard/application/events"
	"flowboard/application/ports"
	"flowboard/domain/config"
	"flowboard/domain/services/layout"
	appconfig "flowboard/infrastructure/config"
	"flowboard/infrastructure/observability"
	"flowboard/infrastructure/persistence"
	"flowboard/infrastructure/textmetrics"

	"go.uber.org/zap"
)

// MetricsNamespace prefixes every exported metric
const MetricsNamespace = "flowboard"

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(MetricsNamespace)
}

// ProvideTracing starts span export when enabled
func ProvideTracing(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, cfg.Tracing, cfg.Environment)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("Failed to shut down tracing", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideStore opens the configured document store
func ProvideStore(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (ports.ClosableStore, func(), error) {
	store, err := persistence.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideMeasurer builds the text measurer. A nil measurer is valid.
func ProvideMeasurer(cfg *appconfig.Config) (layout.TextMeasurer, error) {
	return textmetrics.New(cfg.Fonts.Measurer)
}

// ProvideLayoutEngine creates the layout engine
func ProvideLayoutEngine(measurer layout.TextMeasurer) *layout.Engine {
	return layout.NewEngine(config.DefaultLayoutConfig(), measurer)
}

// ProvideEventBus creates the in-process event bus
func ProvideEventBus(logger *zap.Logger) *appevents.Bus {
	return appevents.NewBus(logger)
}

// ProvideSession opens the configured board and attaches metrics to its events.
// The cleanup settles pending work into the store.
func ProvideSession(
	ctx context.Context,
	cfg *appconfig.Config,
	engine *layout.Engine,
	store ports.ClosableStore,
	events *appevents.Bus,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*editor.Session, func(), error) {
	detach := metrics.Attach(events)
	session, err := editor.Open(ctx, editor.Options{
		BoardKey: cfg.Board.Key,
		Config:   cfg.EditorDomain(),
		Layout:   engine,
		Store:    store,
		Bus:      events,
		Logger:   logger,
		Seed:     cfg.Board.Seed,
	})
	if err != nil {
		detach()
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Editor.SaveTimeout)
		defer cancel()
		if err := session.Close(ctx); err != nil {
			logger.Warn("Failed to flush board on close", zap.Error(err))
		}
		detach()
	}
	return session, cleanup, nil
}

// ProvideCommandBus registers the board handlers behind the standard middleware:
// logging outermost, then validation, metrics and tracing.
func ProvideCommandBus(
	session *editor.Session,
	metrics *observability.Collector,
	tracing *observability.TracerProvider,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	b := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.ValidationMiddleware(),
		bus.MetricsMiddleware(metrics),
		bus.TracingMiddleware(tracing.Tracer()),
	)
	if err := commands.NewHandlers(session).Register(b); err != nil {
		return nil, fmt.Errorf("failed to register command handlers: %w", err)
	}
	return b, nil
}
