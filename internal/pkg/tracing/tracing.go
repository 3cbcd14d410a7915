// Package tracing настраивает OpenTelemetry: провайдер трейсов со stdout-экспортёром и
// W3C-пропагатор. Выключенный трейсинг даёт no-op провайдер.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config — настройки трейсинга. Переменные: HEAVY_TRACING_ENABLED, HEAVY_TRACING_SERVICE_NAME, HEAVY_TRACING_SAMPLE_RATIO.
type Config struct {
	Enabled     bool    `envconfig:"ENABLED" default:"false"`
	ServiceName string  `envconfig:"SERVICE_NAME" default:"heavyCalc"`
	SampleRatio float64 `envconfig:"SAMPLE_RATIO" default:"1"`
	Pretty      bool    `envconfig:"PRETTY" default:"false"`
}

// ShutdownFunc сбрасывает буфер экспортёра и останавливает провайдер.
type ShutdownFunc func(ctx context.Context) error

// Setup создаёт провайдер и делает его глобальным (otel.SetTracerProvider). Спаны пишутся в w; nil — stdout.
func Setup(cfg Config, w io.Writer) (trace.TracerProvider, ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func(context.Context) error { return nil }, nil
	}

	if w == nil {
		w = os.Stdout
	}
	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if cfg.Pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("stdout exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))),
	)
	otel.SetTracerProvider(tp)
	return tp, tp.Shutdown, nil
}
