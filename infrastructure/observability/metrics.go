package observability

import (
	"net/http"
	"strconv"
	"time"

	appevents "flowboard/application/events"
	"flowboard/domain/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// Command metrics
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Board metrics
	DocumentEvents *prometheus.CounterVec
	Notices        *prometheus.CounterVec
	HistoryDepth   prometheus.Gauge
	HistoryReplays *prometheus.CounterVec

	// Persistence metrics
	Persists        *prometheus.CounterVec
	PersistDuration prometheus.Histogram

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates a collector on its own registry
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of editor commands by outcome",
			},
			[]string{"command", "outcome"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Editor command latency in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"command"},
		),
		DocumentEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "document_events_total",
				Help:      "Domain events raised by boards",
			},
			[]string{"type"},
		),
		Notices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notices_total",
				Help:      "User-facing notices raised by refused commands",
			},
			[]string{"code"},
		),
		HistoryDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "history_depth",
				Help:      "Entries currently held in the undo history",
			},
		),
		HistoryReplays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_replays_total",
				Help:      "Undo and redo replays",
			},
			[]string{"direction"},
		),
		Persists: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persist_total",
				Help:      "Board writes to the document store by outcome",
			},
			[]string{"outcome"},
		),
		PersistDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "persist_duration_seconds",
				Help:      "Successful board write latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	c.registry.MustRegister(
		c.Commands,
		c.CommandDuration,
		c.DocumentEvents,
		c.Notices,
		c.HistoryDepth,
		c.HistoryReplays,
		c.Persists,
		c.PersistDuration,
		c.HTTPRequests,
		c.HTTPDuration,
		prometheus.NewGoCollector(),
	)
	return c
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordCommand implements bus.Recorder
func (c *Collector) RecordCommand(name string, took time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "refused"
	}
	c.Commands.WithLabelValues(name, outcome).Inc()
	c.CommandDuration.WithLabelValues(name).Observe(took.Seconds())
}

// RecordHTTPRequest records one served request
func (c *Collector) RecordHTTPRequest(method, route string, status int, took time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// Attach subscribes the collector to a board's event bus. The returned func detaches it.
func (c *Collector) Attach(bus *appevents.Bus) func() {
	unsubs := []appevents.Unsubscribe{
		bus.SubscribeAll(func(e events.DomainEvent) {
			c.DocumentEvents.WithLabelValues(e.GetEventType()).Inc()
		}),
		appevents.Subscribe(bus, func(e events.NoticeRaised) {
			c.Notices.WithLabelValues(e.Code).Inc()
		}),
		appevents.Subscribe(bus, func(e events.HistoryRecorded) {
			c.HistoryDepth.Set(float64(e.Depth))
		}),
		appevents.Subscribe(bus, func(e events.HistoryReplayed) {
			c.HistoryReplays.WithLabelValues(e.Direction).Inc()
		}),
		appevents.Subscribe(bus, func(e events.DocumentSaved) {
			c.Persists.WithLabelValues("ok").Inc()
			c.PersistDuration.Observe(e.Duration.Seconds())
		}),
		appevents.Subscribe(bus, func(events.PersistFailed) {
			c.Persists.WithLabelValues("failed").Inc()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
