package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "festivalpulse"
	ServiceVersion = "1.0.0"
	MeterName      = "festivalpulse"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "stdout",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
	}
}

// InitializeOTel initializes OpenTelemetry tracing and metrics
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.PrometheusHTTP = promhttp.Handler()

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

		otel.SetMeterProvider(mp)

	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "metrics initialized",
		slog.String("exporter", cfg.MetricExporter))

	return nil
}

// DashboardMetrics holds application-specific metrics
type DashboardMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	DatasetUploadsTotal   metric.Int64Counter
	DatasetUploadDuration metric.Float64Histogram
	DatasetUploadFailures metric.Int64Counter
	DatasetPostsLoaded    metric.Int64Counter

	ChartRequestsTotal metric.Int64Counter
	ChartBuildDuration metric.Float64Histogram

	ActiveSessions metric.Int64UpDownCounter
}

// CreateDashboardMetrics creates application-specific metrics
func CreateDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	datasetUploadsTotal, err := meter.Int64Counter(
		"dataset_uploads_total",
		metric.WithDescription("Total number of dataset uploads"),
	)
	if err != nil {
		return nil, err
	}

	datasetUploadDuration, err := meter.Float64Histogram(
		"dataset_upload_duration_seconds",
		metric.WithDescription("Dataset upload and parse duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	datasetUploadFailures, err := meter.Int64Counter(
		"dataset_upload_failures_total",
		metric.WithDescription("Total number of failed dataset uploads"),
	)
	if err != nil {
		return nil, err
	}

	datasetPostsLoaded, err := meter.Int64Counter(
		"dataset_posts_loaded_total",
		metric.WithDescription("Total number of posts loaded from datasets"),
	)
	if err != nil {
		return nil, err
	}

	chartRequestsTotal, err := meter.Int64Counter(
		"chart_requests_total",
		metric.WithDescription("Total number of chart spec requests"),
	)
	if err != nil {
		return nil, err
	}

	chartBuildDuration, err := meter.Float64Histogram(
		"chart_build_duration_seconds",
		metric.WithDescription("Chart spec build duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeSessions, err := meter.Int64UpDownCounter(
		"active_sessions",
		metric.WithDescription("Number of active dashboard sessions"),
	)
	if err != nil {
		return nil, err
	}

	return &DashboardMetrics{
		HTTPRequestsTotal:     httpRequestsTotal,
		HTTPRequestDuration:   httpRequestDuration,
		HTTPActiveRequests:    httpActiveRequests,
		DatasetUploadsTotal:   datasetUploadsTotal,
		DatasetUploadDuration: datasetUploadDuration,
		DatasetUploadFailures: datasetUploadFailures,
		DatasetPostsLoaded:    datasetPostsLoaded,
		ChartRequestsTotal:    chartRequestsTotal,
		ChartBuildDuration:    chartBuildDuration,
		ActiveSessions:        activeSessions,
	}, nil
}

// RecordUploadMetrics records metrics for a dataset upload
func RecordUploadMetrics(ctx context.Context, metrics *DashboardMetrics, source string, posts int, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("source", source),
	}

	metrics.DatasetUploadsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	statusAttr := attribute.String("status", "success")
	if err != nil {
		statusAttr = attribute.String("status", "failure")
		metrics.DatasetUploadFailures.Add(ctx, 1, metric.WithAttributes(
			append(attrs, attribute.String("error.type", fmt.Sprintf("%T", err)))...))
	} else {
		metrics.DatasetPostsLoaded.Add(ctx, int64(posts), metric.WithAttributes(attrs...))
	}

	metrics.DatasetUploadDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(append(attrs, statusAttr)...))
}

// RecordChartMetrics records metrics for a chart spec build
func RecordChartMetrics(ctx context.Context, metrics *DashboardMetrics, chart string, duration time.Duration) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("chart", chart),
	}

	metrics.ChartRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.ChartBuildDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts the span trace ID from context for log correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
