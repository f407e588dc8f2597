package rest

import (
	"net/http"

	"flowboard/application/commands/bus"
	"flowboard/infrastructure/config"
	"flowboard/infrastructure/observability"
	"flowboard/interfaces/http/rest/handlers"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	board      handlers.Board
	exporter   handlers.Exporter
	metrics    *observability.Collector
	tracer     trace.Tracer
	cfg        config.ServerConfig
	logger     *zap.Logger
}

// NewRouter creates a new router instance. exporter, metrics and tracer are optional.
func NewRouter(
	commandBus *bus.CommandBus,
	board handlers.Board,
	exporter handlers.Exporter,
	metrics *observability.Collector,
	tracer trace.Tracer,
	cfg config.ServerConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		board:      board,
		exporter:   exporter,
		metrics:    metrics,
		tracer:     tracer,
		cfg:        cfg,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(observability.RequestLogger(rt.logger))
	if rt.metrics != nil {
		router.Use(rt.metrics.HTTPMetrics)
	}
	if rt.tracer != nil {
		router.Use(observability.HTTPTracing(rt.tracer))
	}

	origins := rt.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: !allowsAny(origins),
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	router.Route("/api/v1/board", func(r chi.Router) {
		h := handlers.NewBoardHandler(rt.commandBus, rt.board, rt.exporter, rt.logger)
		r.Get("/", h.GetBoard)
		r.Get("/export.png", h.Export)

		r.Post("/nodes", h.AddNode)
		r.Patch("/nodes/{nodeID}", h.UpdateNode)
		r.Post("/edges", h.Connect)
		r.Delete("/edges/{edgeID}", h.DeleteEdge)

		r.Post("/selection", h.Select)
		r.Post("/commands/{name}", h.RunCommand)
		r.Post("/undo", h.Undo)
		r.Post("/redo", h.Redo)
		r.Put("/viewport", h.SetViewport)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// credentials cannot be combined with a wildcard origin
func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
