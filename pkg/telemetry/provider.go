// SPDX-License-Identifier: BSD-3-Clause

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const cfgDialTimeout = 5 * time.Second

// Provider encapsulates OpenTelemetry trace and metric providers for one
// process. It is safe to hold a single Provider for the whole conductor
// and derive per-component Tracer/Meter instances from it.
type Provider struct {
	config        *Config
	traceProvider *trace.TracerProvider
	meterProvider *sdkmetric.MeterProvider
}

// NewProvider builds a Provider from the given options, falling back to
// no-op trace/metric providers for any signal without a configured
// collector endpoint.
func NewProvider(opts ...Option) (*Provider, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, resourceAttributes(cfg)...),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExporterSetupFailed, err)
	}

	p := &Provider{config: cfg}

	if cfg.enableTraces && cfg.grpcEndpoint != "" {
		if err := p.setupTraceProvider(res); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExporterSetupFailed, err)
		}
	}
	if cfg.enableMetrics && cfg.grpcEndpoint != "" {
		if err := p.setupMeterProvider(res); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExporterSetupFailed, err)
		}
	}

	if p.traceProvider != nil {
		otel.SetTracerProvider(p.traceProvider)
	}
	if p.meterProvider != nil {
		otel.SetMeterProvider(p.meterProvider)
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return p, nil
}

func resourceAttributes(cfg *Config) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.serviceName),
	}
	if cfg.serviceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.serviceVersion))
	}
	for k, v := range cfg.resourceAttrs {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}

func (p *Provider) setupTraceProvider(res *resource.Resource) error {
	if p.config.grpcEndpoint == "" {
		p.traceProvider = trace.NewTracerProvider(trace.WithResource(res))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfgDialTimeout)
	defer cancel()

	exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(p.config.grpcEndpoint)}
	if p.config.insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return err
	}

	p.traceProvider = trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(p.config.samplingRatio)),
		trace.WithBatcher(exporter, trace.WithBatchTimeout(p.config.batchTimeout)),
	)
	return nil
}

func (p *Provider) setupMeterProvider(res *resource.Resource) error {
	if p.config.grpcEndpoint == "" {
		p.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfgDialTimeout)
	defer cancel()

	exporterOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(p.config.grpcEndpoint)}
	if p.config.insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return err
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	return nil
}

// Tracer returns a named tracer, backed by a no-op provider if tracing is
// disabled or unconfigured.
func (p *Provider) Tracer(name string) oteltrace.Tracer {
	if p.traceProvider == nil {
		return tracenoop.NewTracerProvider().Tracer(name)
	}
	return p.traceProvider.Tracer(name)
}

// Meter returns a named meter, backed by a no-op provider if metrics are
// disabled or unconfigured.
func (p *Provider) Meter(name string) metric.Meter {
	if p.meterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return p.meterProvider.Meter(name)
}

// Shutdown flushes and releases both providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var firstErr error
	if p.traceProvider != nil {
		if err := p.traceProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
