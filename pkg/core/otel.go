package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type OtelService interface {
	SpanFromContext(c context.Context) trace.Span
	LoggerProvider() log.LoggerProvider
	Shutdown(c context.Context, logger *slog.Logger)
}

type otelService struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	logProvider    *sdklog.LoggerProvider
	shutdown       func(context.Context) error
}

var _ OtelService = (*otelService)(nil)

func NewOtelService(ctx context.Context, cfg *Config) (OtelService, error) {
	if cfg.Otel.Disable {
		return NewNoopOtelService(), nil
	}

	res, err := newResource(ctx)
	if err != nil {
		return nil, err
	}

	var exporters exporterSet
	switch cfg.Otel.Exporter {
	case "stdout":
		exporters, err = newStdoutExporters()
	default:
		exporters, err = newOtlpExporters(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	traceProvider := newTraceProvider(res, exporters.span)
	meterProvider := newMeterProvider(res, exporters.metric)

	logOpts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	if exporters.log != nil {
		logOpts = append(logOpts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exporters.log)))
	}
	logProvider := sdklog.NewLoggerProvider(logOpts...)
	global.SetLoggerProvider(logProvider)

	shutdown := func(shutdownCtx context.Context) error {
		return errors.Join(
			traceProvider.Shutdown(shutdownCtx),
			meterProvider.Shutdown(shutdownCtx),
			logProvider.Shutdown(shutdownCtx),
		)
	}

	return &otelService{
		meterProvider:  meterProvider,
		tracerProvider: traceProvider,
		logProvider:    logProvider,
		shutdown:       shutdown,
	}, nil
}

// NewNoopOtelService keeps the global no-op providers in place and exports nothing.
func NewNoopOtelService() OtelService {
	return &otelService{
		logProvider: sdklog.NewLoggerProvider(),
		shutdown:    func(context.Context) error { return nil },
	}
}

func (s *otelService) LoggerProvider() log.LoggerProvider {
	return s.logProvider
}

func (*otelService) SpanFromContext(c context.Context) trace.Span {
	return trace.SpanFromContext(c)
}

func (s *otelService) Shutdown(c context.Context, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(c, 5*time.Second)
	defer cancel()

	err := s.shutdown(shutdownCtx)
	if err != nil {
		logger.ErrorContext(
			c,
			"Error shutting down otel",
			"err",
			err,
		)
	}
}

var ServiceVersion string

type exporterSet struct {
	span   sdktrace.SpanExporter
	metric sdkmetric.Exporter
	log    sdklog.Exporter
}

func newConn(cfg *Config) (*grpc.ClientConn, error) {
	conn, e := grpc.NewClient(
		cfg.Otel.OtlpExporter.Endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)

	if e != nil {
		return nil, fmt.Errorf("failed to create GRPC connection: %w", e)
	}

	return conn, nil
}

func newOtlpExporters(ctx context.Context, cfg *Config) (exporterSet, error) {
	conn, err := newConn(cfg)
	if err != nil {
		return exporterSet{}, err
	}

	spanExp, e := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if e != nil {
		return exporterSet{}, fmt.Errorf("failed to create trace exporter: %w", e)
	}

	metricExp, e := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if e != nil {
		return exporterSet{}, fmt.Errorf("failed to create meter exporter: %w", e)
	}

	// logs reach the collector through stdout scraping in this mode
	return exporterSet{span: spanExp, metric: metricExp}, nil
}

func newStdoutExporters() (exporterSet, error) {
	spanExp, e := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if e != nil {
		return exporterSet{}, fmt.Errorf("failed to create stdout trace exporter: %w", e)
	}

	metricExp, e := stdoutmetric.New()
	if e != nil {
		return exporterSet{}, fmt.Errorf("failed to create stdout meter exporter: %w", e)
	}

	logExp, e := stdoutlog.New()
	if e != nil {
		return exporterSet{}, fmt.Errorf("failed to create stdout log exporter: %w", e)
	}

	return exporterSet{span: spanExp, metric: metricExp, log: logExp}, nil
}

func newResource(ctx context.Context) (*resource.Resource, error) {
	res, e := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithOS(),
		resource.WithProcess(),
		resource.WithContainer(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceVersion(ServiceVersion),
		),
	)

	// detectors that find nothing on this host still leave a usable resource
	if e == nil || errors.Is(e, resource.ErrPartialResource) {
		return res, nil
	}
	return nil, fmt.Errorf("failed to create telemetry resource: %w", e)
}

func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

func newTraceProvider(res *resource.Resource, exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	bsp := sdktrace.NewBatchSpanProcessor(exp)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(newPropagator())

	return provider
}

func newMeterProvider(res *resource.Resource, exp sdkmetric.Exporter) *sdkmetric.MeterProvider {
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(provider)

	return provider
}
