package bridge

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc/credentials/insecure"
)

// OTLPConfig configures optional passthrough export of the full span stream
// to an OTLP collector, alongside the event conversion.
type OTLPConfig struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint"` // host:port; empty disables export
	Insecure bool          `json:"insecure" yaml:"insecure"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// ProviderConfig configures NewTracerProvider.
type ProviderConfig struct {
	// ServiceName identifies the workload in the trace resource.
	// Default: "callisto".
	ServiceName string

	// Processor is the span bridge to register. Required.
	Processor *SpanProcessor

	// OTLP, when its endpoint is set, additionally exports spans over OTLP
	// gRPC so an existing collector keeps receiving the raw trace stream.
	OTLP OTLPConfig

	// SetGlobal installs the provider as the process-wide default and wires
	// W3C trace-context propagation.
	SetGlobal bool
}

// NewTracerProvider builds a TracerProvider with the bridge registered as a
// span processor. Callers that already own a provider can skip this and
// register cfg.Processor themselves.
func NewTracerProvider(cfg *ProviderConfig) (*sdktrace.TracerProvider, error) {
	if cfg == nil || cfg.Processor == nil {
		return nil, fmt.Errorf("bridge: span processor is required")
	}
	name := cfg.ServiceName
	if name == "" {
		name = "callisto"
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(name),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(cfg.Processor),
	}

	if cfg.OTLP.Endpoint != "" {
		exporter, err := newOTLPExporter(cfg.OTLP)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)

	if cfg.SetGlobal {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(
			propagation.NewCompositeTextMapPropagator(
				propagation.TraceContext{},
				propagation.Baggage{},
			),
		)
	}

	return tp, nil
}

// newOTLPExporter creates the OTLP gRPC exporter for passthrough export.
func newOTLPExporter(cfg OTLPConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.Timeout))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := otlptracegrpc.NewClient(opts...)
	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	return exporter, nil
}
