//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"flowboard/application/commands/bus"
	"flowboard/application/editor"
	appevents "flowboard/application/events"
	"flowboard/application/ports"
	"flowboard/domain/services/layout"
	"flowboard/infrastructure/config"
	"flowboard/infrastructure/observability"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Collector
	Tracing    *observability.TracerProvider
	Store      ports.ClosableStore
	Layout     *layout.Engine
	Events     *appevents.Bus
	Session    *editor.Session
	CommandBus *bus.CommandBus
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideMetrics,
	ProvideTracing,
	ProvideStore,
	ProvideMeasurer,
	ProvideLayoutEngine,
	ProvideEventBus,
	ProvideSession,
	ProvideCommandBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The returned cleanup
// flushes the board before the store is closed.
func InitializeContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
