package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	ExporterNone   = "none"
)

// Config holds the telemetry settings of the console.
type Config struct {
	ServiceName    string        `env:"OTEL_SERVICE_NAME" envDefault:"orgconsole"`
	ServiceVersion string        `env:"OTEL_SERVICE_VERSION" envDefault:"0.1.0"`
	Environment    string        `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	Exporter       string        `env:"OTEL_EXPORTER" envDefault:"stdout"`
	SampleRatio    float64       `env:"OTEL_TRACES_SAMPLE_RATIO" envDefault:"1"`
	MetricInterval time.Duration `env:"OTEL_METRIC_INTERVAL" envDefault:"1m"`

	// Insecure selects plain HTTP for OTLP. Only set in development.
	Insecure bool
}

// ConfigFromEnv reads Config from the environment. Unparseable values fall
// back to the defaults.
func ConfigFromEnv() Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		cfg = Config{
			ServiceName:    "orgconsole",
			ServiceVersion: "0.1.0",
			Environment:    "development",
			Exporter:       ExporterStdout,
			SampleRatio:    1,
			MetricInterval: time.Minute,
		}
	}
	cfg.Insecure = cfg.Environment == "development"
	return cfg
}

func (c Config) validate() error {
	switch c.Exporter {
	case ExporterStdout, ExporterOTLP, ExporterNone:
	default:
		return fmt.Errorf("unsupported exporter %q (use %q, %q or %q)", c.Exporter, ExporterStdout, ExporterOTLP, ExporterNone)
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("sample ratio %v outside [0, 1]", c.SampleRatio)
	}
	return nil
}

// Providers holds the installed providers. Shutdown flushes pending
// telemetry and must be called on exit.
type Providers struct {
	Tracer   *trace.TracerProvider
	Meter    *metric.MeterProvider
	Shutdown func(ctx context.Context) error
}

// Setup builds the tracer and meter providers and installs them, with the
// W3C propagators, as the process globals.
func Setup(ctx context.Context, cfg Config) (*Providers, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating otel resource: %w", err)
	}

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("creating tracer provider: %w", err)
	}
	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("creating meter provider: %w", err)
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Providers{
		Tracer: tp,
		Meter:  mp,
		Shutdown: func(ctx context.Context) error {
			return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
		},
	}, nil
}

func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*trace.TracerProvider, error) {
	opts := []trace.TracerProviderOption{
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SampleRatio))),
	}

	var (
		exporter trace.SpanExporter
		err      error
	)
	switch cfg.Exporter {
	case ExporterOTLP:
		var o []otlptracehttp.Option
		if cfg.Insecure {
			o = append(o, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, o...)
	case ExporterStdout:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		opts = append(opts, trace.WithBatcher(exporter))
	}
	return trace.NewTracerProvider(opts...), nil
}

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*metric.MeterProvider, error) {
	opts := []metric.Option{metric.WithResource(res)}

	var (
		exporter metric.Exporter
		err      error
	)
	switch cfg.Exporter {
	case ExporterOTLP:
		var o []otlpmetrichttp.Option
		if cfg.Insecure {
			o = append(o, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, o...)
	case ExporterStdout:
		exporter, err = stdoutmetric.New()
	}
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		var ro []metric.PeriodicReaderOption
		if cfg.MetricInterval > 0 {
			ro = append(ro, metric.WithInterval(cfg.MetricInterval))
		}
		opts = append(opts, metric.WithReader(metric.NewPeriodicReader(exporter, ro...)))
	}
	return metric.NewMeterProvider(opts...), nil
}
