package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
	instrumentFactory = newOtelInstruments
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and optional OTLP exporter.
// It returns a Recorder, the Prometheus HTTP handler, and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "league-engine"
	}

	promReader, promHandler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(promReader)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := otlpReaderFactory(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)

	otelInst, err := instrumentFactory(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	rec := newRecorder(otelInst)
	shutdown := func(c context.Context) error {
		return provider.Shutdown(c)
	}

	return rec, promHandler, shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

type otelInstruments struct {
	ctx              context.Context
	meter            metric.Meter
	requests         metric.Int64Counter
	requestLatencyMs metric.Float64Histogram
	halves           metric.Int64Counter
	halfErrors       metric.Int64Counter
	halfLatencyMs    metric.Float64Histogram
	matchesPlayed    metric.Int64Counter
	windows          metric.Int64Counter
	windowErrors     metric.Int64Counter
	windowLatencyMs  metric.Float64Histogram
	windowIterations metric.Int64Counter
	transfersDone    metric.Int64Counter
	seasons          metric.Int64Counter
	seasonErrors     metric.Int64Counter
	seasonLatencyMs  metric.Float64Histogram
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return promExp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter("league-engine")
	ctx := context.Background()

	requests, err := meter.Int64Counter("http_requests_total")
	if err != nil {
		return nil, err
	}
	requestLatency, err := meter.Float64Histogram("http_request_duration_ms")
	if err != nil {
		return nil, err
	}

	halves, err := meter.Int64Counter("simulation_halves_total")
	if err != nil {
		return nil, err
	}
	halfErrors, err := meter.Int64Counter("simulation_half_errors_total")
	if err != nil {
		return nil, err
	}
	halfLatency, err := meter.Float64Histogram("simulation_half_duration_ms")
	if err != nil {
		return nil, err
	}
	matchesPlayed, err := meter.Int64Counter("matches_played_total")
	if err != nil {
		return nil, err
	}
	windows, err := meter.Int64Counter("transfer_windows_total")
	if err != nil {
		return nil, err
	}
	windowErrors, err := meter.Int64Counter("transfer_window_errors_total")
	if err != nil {
		return nil, err
	}
	windowLatency, err := meter.Float64Histogram("transfer_window_duration_ms")
	if err != nil {
		return nil, err
	}
	windowIterations, err := meter.Int64Counter("transfer_window_iterations_total")
	if err != nil {
		return nil, err
	}
	transfersDone, err := meter.Int64Counter("transfers_executed_total")
	if err != nil {
		return nil, err
	}
	seasons, err := meter.Int64Counter("seasons_total")
	if err != nil {
		return nil, err
	}
	seasonErrors, err := meter.Int64Counter("season_errors_total")
	if err != nil {
		return nil, err
	}
	seasonLatency, err := meter.Float64Histogram("season_duration_ms")
	if err != nil {
		return nil, err
	}

	return &otelInstruments{
		ctx:              ctx,
		meter:            meter,
		requests:         requests,
		requestLatencyMs: requestLatency,
		halves:           halves,
		halfErrors:       halfErrors,
		halfLatencyMs:    halfLatency,
		matchesPlayed:    matchesPlayed,
		windows:          windows,
		windowErrors:     windowErrors,
		windowLatencyMs:  windowLatency,
		windowIterations: windowIterations,
		transfersDone:    transfersDone,
		seasons:          seasons,
		seasonErrors:     seasonErrors,
		seasonLatencyMs:  seasonLatency,
	}, nil
}

func (o *otelInstruments) recordHTTPRequest(method, path string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, method),
		attribute.String(AttrPath, path),
		attribute.Int(AttrStatus, status),
	}
	o.recordCounter(o.requests, 1, attrs...)
	o.recordHistogram(o.requestLatencyMs, float64(duration.Milliseconds()), attrs...)
}

func (o *otelInstruments) recordHalf(duration time.Duration, matches int, err error) {
	if o == nil {
		return
	}
	o.recordCounter(o.halves, 1)
	o.recordCounter(o.matchesPlayed, int64(matches))
	o.recordHistogram(o.halfLatencyMs, float64(duration.Milliseconds()))
	if err != nil {
		o.recordCounter(o.halfErrors, 1)
	}
}

func (o *otelInstruments) recordWindow(duration time.Duration, iterations, transfers int, err error) {
	if o == nil {
		return
	}
	o.recordCounter(o.windows, 1)
	o.recordCounter(o.windowIterations, int64(iterations))
	o.recordCounter(o.transfersDone, int64(transfers))
	o.recordHistogram(o.windowLatencyMs, float64(duration.Milliseconds()))
	if err != nil {
		o.recordCounter(o.windowErrors, 1)
	}
}

func (o *otelInstruments) recordSeason(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.recordCounter(o.seasons, 1)
	o.recordHistogram(o.seasonLatencyMs, float64(duration.Milliseconds()))
	if err != nil {
		o.recordCounter(o.seasonErrors, 1)
	}
}

func (o *otelInstruments) recordCounter(counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	counter.Add(o.ctx, value, metric.WithAttributes(attrs...))
}

func (o *otelInstruments) recordHistogram(hist metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	hist.Record(o.ctx, value, metric.WithAttributes(attrs...))
}
