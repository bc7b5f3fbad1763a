// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package telemetry configures OpenTelemetry tracing for a server.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Supported span exporters.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLP     = "otlp"
	ExporterOTLPHTTP = "otlphttp"
)

// Settings describes how spans are sampled and exported.
type Settings struct {
	Exporter    string  `config:"exporter" validate:"omitempty,oneof=none stdout otlp otlphttp"`
	Endpoint    string  `config:"endpoint"`
	Insecure    bool    `config:"insecure"`
	SampleRatio float64 `config:"sample_ratio" validate:"gte=0,lte=1"`
	ServiceName string  `config:"service_name"`
}

// Enabled reports whether spans will be exported at all.
func (s Settings) Enabled() bool {
	return s.Exporter != "" && s.Exporter != ExporterNone
}

// Provider owns the global tracer provider installed by [Init].
type Provider struct {
	tp *sdktrace.TracerProvider
}

// UnknownExporterError occurs when [Settings.Exporter] names an exporter
// this package does not know how to build.
type UnknownExporterError struct {
	Exporter string
}

// Error implements the [error] interface.
func (e UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown span exporter: %q", e.Exporter)
}

// Option configures [Init].
type Option func(*options)

type options struct {
	stdout io.Writer
}

// StdoutWriter overrides where the stdout exporter writes spans.
func StdoutWriter(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// Init builds a tracer provider from s and installs it, along with the W3C
// trace context and baggage propagators, as the global OpenTelemetry provider.
// A nil Provider and nil error are returned when s is not [Settings.Enabled].
func Init(ctx context.Context, s Settings, opts ...Option) (*Provider, error) {
	if !s.Enabled() {
		return nil, nil
	}

	o := options{stdout: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	exp, err := newExporter(ctx, s, o)
	if err != nil {
		return nil, err
	}

	name := s.ServiceName
	if name == "" && len(os.Args) > 0 {
		name = os.Args[0]
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(name),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.SampleRatio))),
		sdktrace.WithBatcher(exp),
	)

	otel.SetTracerProvider(tp)
	// need to set this so traces can propagate
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &Provider{tp: tp}, nil
}

func newExporter(ctx context.Context, s Settings, o options) (sdktrace.SpanExporter, error) {
	switch s.Exporter {
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithWriter(o.stdout))
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{}
		if s.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(s.Endpoint))
		}
		if s.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	case ExporterOTLPHTTP:
		opts := []otlptracehttp.Option{}
		if s.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(s.Endpoint))
		}
		if s.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, UnknownExporterError{Exporter: s.Exporter}
	}
}

// Shutdown flushes any buffered spans and stops the tracer provider.
// It is safe to call on a nil Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
