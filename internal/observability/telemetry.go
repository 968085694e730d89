// Package observability provides logging, metrics, and tracing capabilities
// for the finding aggregator.
package observability

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Telemetry provides unified observability
type Telemetry struct {
	logger       *zap.Logger
	tracer       trace.Tracer
	metrics      *Metrics
	config       Config
	shutdownOnce sync.Once
	shutdownFns  []func(context.Context) error
}

// Config configures telemetry
type Config struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	Environment    string `yaml:"environment"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json, console

	// Tracing
	TracingEnabled bool    `yaml:"tracing_enabled"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint"`
	SamplingRate   float64 `yaml:"sampling_rate"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`
	MetricsPort    int  `yaml:"metrics_port"`

	// Health
	HealthPort int `yaml:"health_port"`
}

// Metrics holds Prometheus metrics for the aggregation pipeline.
type Metrics struct {
	// Finding metrics
	FindingsEmitted *prometheus.CounterVec

	// Adapter metrics
	AdapterParseDuration *prometheus.HistogramVec
	AdapterErrors        *prometheus.CounterVec
	AdapterCacheHits     *prometheus.CounterVec
	AdapterCacheMisses   *prometheus.CounterVec

	// Pipeline metrics
	PipelineRuns     *prometheus.CounterVec
	PipelineDuration *prometheus.HistogramVec
	ActiveWorkers    prometheus.Gauge

	// Schema validation
	SchemaValidationFailures *prometheus.CounterVec

	// System metrics
	GoroutineCount prometheus.Gauge
	MemoryUsage    prometheus.Gauge

	// Health metrics
	HealthStatus    *prometheus.GaugeVec
	LastHealthCheck prometheus.Gauge
}

// New creates a new Telemetry instance
func New(cfg Config) (*Telemetry, error) {
	t := &Telemetry{
		config: cfg,
	}

	// Initialize logger
	logger, err := t.initLogger()
	if err != nil {
		return nil, err
	}
	t.logger = logger

	// Initialize tracer
	if cfg.TracingEnabled {
		if err := t.initTracer(); err != nil {
			logger.Warn("Failed to initialize tracer", zap.Error(err))
		}
	}
	t.tracer = otel.Tracer(cfg.ServiceName)

	// Initialize metrics
	if cfg.MetricsEnabled {
		t.metrics = t.initMetrics()
	}

	return t, nil
}

// initLogger initializes structured logging
func (t *Telemetry) initLogger() (*zap.Logger, error) {
	var config zap.Config

	if t.config.LogFormat == "console" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	// Set log level
	switch t.config.LogLevel {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Add standard fields
	config.InitialFields = map[string]interface{}{
		"service":     t.config.ServiceName,
		"version":     t.config.ServiceVersion,
		"environment": t.config.Environment,
	}

	return config.Build()
}

// initTracer initializes OpenTelemetry tracing
func (t *Telemetry) initTracer() error {
	ctx := context.Background()

	// Create OTLP exporter
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(t.config.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return err
	}

	// Create resource
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(t.config.ServiceName),
			semconv.ServiceVersion(t.config.ServiceVersion),
			attribute.String("environment", t.config.Environment),
		),
	)
	if err != nil {
		return err
	}

	// Create trace provider
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(t.config.SamplingRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.shutdownFns = append(t.shutdownFns, tp.Shutdown)

	return nil
}

// initMetrics initializes Prometheus metrics
func (t *Telemetry) initMetrics() *Metrics {
	namespace := "secfindings"

	return &Metrics{
		FindingsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "findings_emitted_total",
				Help:      "Total findings emitted, by tool and severity",
			},
			[]string{"tool", "severity"},
		),
		AdapterParseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "adapter_parse_duration_seconds",
				Help:      "Adapter Parse() duration by adapter name",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"adapter"},
		),
		AdapterErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "adapter_errors_total",
				Help:      "Total adapter invocation failures by adapter and kind",
			},
			[]string{"adapter", "kind"},
		),
		AdapterCacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "adapter_cache_hits_total",
				Help:      "Total parse-result cache hits by adapter",
			},
			[]string{"adapter"},
		),
		AdapterCacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "adapter_cache_misses_total",
				Help:      "Total parse-result cache misses by adapter",
			},
			[]string{"adapter"},
		),
		PipelineRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Total aggregation pipeline runs by outcome",
			},
			[]string{"status"},
		),
		PipelineDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_duration_seconds",
				Help:      "End-to-end aggregation pipeline run duration",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"status"},
		),
		ActiveWorkers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_workers",
				Help:      "Worker pool size of the aggregation run in progress (0 when idle)",
			},
		),
		SchemaValidationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_validation_failures_total",
				Help:      "Total aggregation runs in which schema validation reported a failing finding",
			},
			[]string{"tool"},
		),
		GoroutineCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "goroutine_count",
				Help:      "Current goroutine count",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage in bytes",
			},
		),
		HealthStatus: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "health_status",
				Help:      "Health status of components (1=healthy, 0=unhealthy)",
			},
			[]string{"component"},
		),
		LastHealthCheck: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_health_check_timestamp",
				Help:      "Timestamp of last health check",
			},
		),
	}
}

// Logger returns the logger
func (t *Telemetry) Logger() *zap.Logger {
	return t.logger
}

// Tracer returns the tracer
func (t *Telemetry) Tracer() trace.Tracer {
	return t.tracer
}

// Metrics returns the metrics
func (t *Telemetry) Metrics() *Metrics {
	return t.metrics
}

// StartSpan starts a new trace span
func (t *Telemetry) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// RecordError records an error to the current span and logs it
func (t *Telemetry) RecordError(ctx context.Context, err error, fields ...zap.Field) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(err)
	}
	t.logger.Error(err.Error(), fields...)
}

// MetricsHandler returns the Prometheus metrics handler
func (t *Telemetry) MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// StartSystemMetricsCollector starts collecting system metrics
func (t *Telemetry) StartSystemMetricsCollector(ctx context.Context) {
	if t.metrics == nil {
		return
	}

	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				// Goroutines
				t.metrics.GoroutineCount.Set(float64(runtime.NumGoroutine()))

				// Memory
				var m runtime.MemStats
				runtime.ReadMemStats(&m)
				t.metrics.MemoryUsage.Set(float64(m.Alloc))
			}
		}
	}()
}

// Shutdown gracefully shuts down telemetry
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var err error
	t.shutdownOnce.Do(func() {
		for _, fn := range t.shutdownFns {
			if e := fn(ctx); e != nil {
				err = e
			}
		}
		t.logger.Sync()
	})
	return err
}
