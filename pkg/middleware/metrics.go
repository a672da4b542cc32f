package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errs "github.com/erebus-go/erebus/internal/errors"
	"github.com/erebus-go/erebus/pkg/router"
)

// MetricsConfig configures a Collector.
type MetricsConfig struct {
	// Namespace prefixes every metric name. Default: "erebus".
	Namespace string

	// Subsystem goes between namespace and name. Default: none.
	Subsystem string

	// Registry receives the metrics. Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures a Collector.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metric namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metric subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithRegistry registers the metrics on r instead of the default registerer.
func WithRegistry(r prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = r }
}

// Collector records dispatch and live session metrics:
//
//	<ns>_dispatches_total{pattern,status}       counter, status is success or error
//	<ns>_dispatch_duration_seconds{pattern}     histogram
//	<ns>_dispatch_errors_total{pattern,code}    counter, code is an erebus error code
//	<ns>_active_sessions                        gauge
//	<ns>_sessions_total                         counter
type Collector struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	failures   *prometheus.CounterVec
	active     prometheus.Gauge
	opened     prometheus.Counter
}

// The default registerer rejects duplicate registration, so every collector
// targeting it is the same value.
var (
	sharedMu        sync.Mutex
	sharedCollector *Collector
)

// NewCollector creates and registers the metrics.
func NewCollector(opts ...MetricsOption) *Collector {
	cfg := MetricsConfig{Namespace: "erebus", Registry: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry != prometheus.DefaultRegisterer {
		return buildCollector(cfg)
	}

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedCollector == nil {
		sharedCollector = buildCollector(cfg)
	}
	return sharedCollector
}

func buildCollector(cfg MetricsConfig) *Collector {
	f := promauto.With(cfg.Registry)
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help}
	}
	durationOpts := opts("dispatch_duration_seconds", "Time spent serving a route dispatch.")

	return &Collector{
		dispatches: f.NewCounterVec(prometheus.CounterOpts(opts("dispatches_total", "Route dispatches served.")),
			[]string{"pattern", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: durationOpts.Namespace,
			Subsystem: durationOpts.Subsystem,
			Name:      durationOpts.Name,
			Help:      durationOpts.Help,
			Buckets:   prometheus.DefBuckets,
		}, []string{"pattern"}),
		failures: f.NewCounterVec(prometheus.CounterOpts(opts("dispatch_errors_total", "Failed dispatches by error code.")),
			[]string{"pattern", "code"}),
		active: f.NewGauge(prometheus.GaugeOpts(opts("active_sessions", "Connected live sessions."))),
		opened: f.NewCounter(prometheus.CounterOpts(opts("sessions_total", "Live sessions opened."))),
	}
}

// Prometheus returns the dispatch middleware of NewCollector(opts...).
func Prometheus(opts ...MetricsOption) router.Middleware {
	return NewCollector(opts...).Middleware()
}

// Middleware returns router middleware recording into c.
func (c *Collector) Middleware() router.Middleware {
	return router.MiddlewareFunc(func(ctx context.Context, d *router.Dispatch, next func(context.Context) error) error {
		label := patternLabel(d)
		began := time.Now()
		err := next(ctx)
		c.duration.WithLabelValues(label).Observe(time.Since(began).Seconds())

		if err != nil {
			c.failures.WithLabelValues(label, errorCode(err)).Inc()
			c.dispatches.WithLabelValues(label, "error").Inc()
			return err
		}
		c.dispatches.WithLabelValues(label, "success").Inc()
		return nil
	})
}

// SessionOpened counts a connected live session.
func (c *Collector) SessionOpened() {
	c.opened.Inc()
	c.active.Inc()
}

// SessionClosed counts a disconnected live session.
func (c *Collector) SessionClosed() { c.active.Dec() }

// patternLabel names the root pattern "/" rather than the empty string.
func patternLabel(d *router.Dispatch) string {
	if d.Pattern == "" {
		return "/"
	}
	return d.Pattern
}

// errorCode maps err onto a small label set: an erebus code when present,
// otherwise canceled, timeout or internal.
func errorCode(err error) string {
	if code := errs.CodeOf(err); code != "" {
		return code
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "internal"
}
