package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"

	DefaultSampleRatio = 0.1
)

// TracingConfig is the tracing section of the service config.
type TracingConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Exporter    string            `yaml:"exporter"`
	Endpoint    string            `yaml:"endpoint"`
	Headers     map[string]string `yaml:"headers"`
	Insecure    bool              `yaml:"insecure"`
	SampleRatio float64           `yaml:"sample_ratio"`
}

// ExporterName resolves the exporter. An endpoint without an explicit exporter means OTLP.
func (t TracingConfig) ExporterName() string {
	switch name := strings.ToLower(strings.TrimSpace(t.Exporter)); name {
	case "":
		if strings.TrimSpace(t.Endpoint) != "" {
			return ExporterOTLP
		}
		return ExporterStdout
	default:
		return name
	}
}

func (t TracingConfig) Validate() error {
	if t.SampleRatio < 0 || t.SampleRatio > 1 {
		return fmt.Errorf("sample_ratio must be within [0,1], got %v", t.SampleRatio)
	}
	switch t.ExporterName() {
	case ExporterStdout:
	case ExporterOTLP:
		if strings.TrimSpace(t.Endpoint) == "" {
			return fmt.Errorf("otlp exporter needs an endpoint")
		}
	default:
		return fmt.Errorf("unsupported exporter %q", t.Exporter)
	}
	return nil
}

// ParseHeaders reads the "k1=v1,k2=v2" form of OTEL_EXPORTER_OTLP_HEADERS. Malformed pairs are dropped.
func ParseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			continue
		}
		headers[key] = val
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
	Tracing     TracingConfig
}

func noopShutdown(context.Context) error { return nil }

// InitOTel installs the global tracer provider for a lecture-studio process.
// Disabled tracing leaves the no-op provider in place. The returned shutdown is never nil.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) (func(context.Context) error, error) {
	if !cfg.Tracing.Enabled {
		return noopShutdown, nil
	}
	if err := cfg.Tracing.Validate(); err != nil {
		return noopShutdown, fmt.Errorf("tracing: %w", err)
	}
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "lecture-studio"
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
		attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
	))
	if err != nil && log != nil {
		log.Warn("otel resource init failed (continuing)", "error", err)
	}

	exporter, err := newExporter(ctx, cfg.Tracing)
	if err != nil {
		return noopShutdown, fmt.Errorf("tracing exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Tracing.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if log != nil {
		log.Info("otel tracing initialized",
			"service", serviceName,
			"exporter", cfg.Tracing.ExporterName(),
			"sample_ratio", cfg.Tracing.SampleRatio,
		)
	}
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, t TracingConfig) (sdktrace.SpanExporter, error) {
	if t.ExporterName() == ExporterStdout {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(strings.TrimSpace(t.Endpoint))}
	if t.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(t.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(t.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}
