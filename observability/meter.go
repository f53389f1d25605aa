package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/guidegen/logger"
)

// InitMeter installs a global meter provider exporting over OTLP HTTP.
func InitMeter(ctx context.Context, cfg Config, svc ServiceInfo) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(svc)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricsInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", svc.Name,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricsInterval.String(),
	))
	return mp, nil
}

// Metrics holds the instruments recorded by the pipeline, the limiters,
// the resolver and the HTTP layer.
type Metrics struct {
	stepTotal      metric.Int64Counter
	stepDuration   metric.Float64Histogram
	limiterDenied  metric.Int64Counter
	resolveTotal   metric.Int64Counter
	framesDropped  metric.Int64Counter
	requestTotal   metric.Int64Counter
	requestLatency metric.Float64Histogram
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	if m.stepTotal, err = meter.Int64Counter("pipeline.step.total",
		metric.WithDescription("Pipeline steps finished, by step and status")); err != nil {
		return nil, fmt.Errorf("creating pipeline.step.total: %w", err)
	}
	if m.stepDuration, err = meter.Float64Histogram("pipeline.step.duration",
		metric.WithDescription("Pipeline step duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating pipeline.step.duration: %w", err)
	}
	if m.limiterDenied, err = meter.Int64Counter("ratelimit.denied.total",
		metric.WithDescription("Admissions denied by a window limiter")); err != nil {
		return nil, fmt.Errorf("creating ratelimit.denied.total: %w", err)
	}
	if m.resolveTotal, err = meter.Int64Counter("geocode.resolve.total",
		metric.WithDescription("Geocode resolutions, by winning strategy or miss")); err != nil {
		return nil, fmt.Errorf("creating geocode.resolve.total: %w", err)
	}
	if m.framesDropped, err = meter.Int64Counter("sse.frames.dropped",
		metric.WithDescription("Progress frames dropped for slow consumers")); err != nil {
		return nil, fmt.Errorf("creating sse.frames.dropped: %w", err)
	}
	if m.requestTotal, err = meter.Int64Counter("http.request.total",
		metric.WithDescription("HTTP requests served")); err != nil {
		return nil, fmt.Errorf("creating http.request.total: %w", err)
	}
	if m.requestLatency, err = meter.Float64Histogram("http.request.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating http.request.duration: %w", err)
	}
	return &m, nil
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns instruments on the global meter provider. Before
// InitMeter runs these are no-ops.
func Default() *Metrics {
	defaultOnce.Do(func() {
		m, err := NewMetrics(otel.Meter(instrumentationName))
		if err != nil {
			logger.Warn("metrics unavailable", logger.Fields("error", err.Error()))
			return
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordStep records a finished pipeline step.
func (m *Metrics) RecordStep(ctx context.Context, stepID, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrStepID, stepID), attribute.String(AttrStatus, status))
	m.stepTotal.Add(ctx, 1, attrs)
	m.stepDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordDenied records a denied limiter admission.
func (m *Metrics) RecordDenied(ctx context.Context, limiter string) {
	if m == nil {
		return
	}
	m.limiterDenied.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrLimiter, limiter)))
}

// RecordResolve records a geocode outcome. strategy is empty for a miss.
func (m *Metrics) RecordResolve(ctx context.Context, strategy string) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "miss"
	}
	m.resolveTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStrategy, strategy)))
}

// RecordDroppedFrame records a progress frame dropped by a stream.
func (m *Metrics) RecordDroppedFrame(ctx context.Context) {
	if m == nil {
		return
	}
	m.framesDropped.Add(ctx, 1)
}

// RecordRequest records a served HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrRoute, route), attribute.Int(AttrStatus, status))
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestLatency.Record(ctx, d.Seconds(), attrs)
}
