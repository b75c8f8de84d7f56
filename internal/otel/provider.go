// Package otel sets up the OpenTelemetry log pipeline and hands out meters.
package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/OCAP2/airfight/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	defaultServiceName  = "airfight"
	defaultBatchTimeout = 5 * time.Second
)

// ErrNoExporter is returned when OTel is enabled with neither a log file nor
// an OTLP endpoint to export to.
var ErrNoExporter = errors.New("otel enabled but no log writer or endpoint configured")

// Config selects where campaign logs are exported.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	BatchTimeout   time.Duration
	// LogWriter receives one JSON record per line.
	LogWriter io.Writer
	Endpoint  string // OTLP/HTTP collector, host:port
	Insecure  bool
}

// FromSettings builds a Config from the otel.* settings, exporting to
// logWriter as well as to the endpoint when one is set.
func FromSettings(s config.OTelConfig, logWriter io.Writer) Config {
	return Config{
		Enabled:      s.Enabled,
		ServiceName:  s.ServiceName,
		BatchTimeout: s.BatchTimeout,
		LogWriter:    logWriter,
		Endpoint:     s.Endpoint,
		Insecure:     s.Insecure,
	}
}

func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = defaultBatchTimeout
	}
	return c
}

// Provider owns the log pipeline and the meter provider the combat engine
// and the dispatcher count with. A disabled Provider exports nothing.
type Provider struct {
	cfg    Config
	logs   *sdklog.LoggerProvider
	meters metric.MeterProvider
}

// New builds the pipeline described by cfg.
func New(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{cfg: cfg, meters: noop.NewMeterProvider()}, nil
	}
	cfg = cfg.withDefaults()

	ctx := context.Background()
	attrs := []resource.Option{resource.WithAttributes(semconv.ServiceName(cfg.ServiceName))}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersion(cfg.ServiceVersion)))
	}
	res, err := resource.New(ctx, attrs...)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporters, err := logExporters(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	for _, exp := range exporters {
		opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exp, sdklog.WithExportTimeout(cfg.BatchTimeout))))
	}

	return &Provider{
		cfg:    cfg,
		logs:   sdklog.NewLoggerProvider(opts...),
		meters: otel.GetMeterProvider(),
	}, nil
}

// logExporters returns the file exporter and the OTLP exporter, whichever
// cfg asks for.
func logExporters(ctx context.Context, cfg Config) ([]sdklog.Exporter, error) {
	var out []sdklog.Exporter
	if cfg.LogWriter != nil {
		exp, err := stdoutlog.New(stdoutlog.WithWriter(cfg.LogWriter))
		if err != nil {
			return nil, fmt.Errorf("failed to create file log exporter: %w", err)
		}
		out = append(out, exp)
	}
	if cfg.Endpoint != "" {
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		exp, err := otlploghttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		out = append(out, exp)
	}
	if len(out) == 0 {
		return nil, ErrNoExporter
	}
	return out, nil
}

// LoggerProvider feeds the otelslog bridge. It is nil when disabled.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logs
}

// Meter returns a named meter; a no-op one when disabled.
func (p *Provider) Meter(name string) metric.Meter {
	return p.meters.Meter(name)
}

func (p *Provider) Flush(ctx context.Context) error {
	if p.logs == nil {
		return nil
	}
	if err := p.logs.ForceFlush(ctx); err != nil {
		return fmt.Errorf("log flush failed: %w", err)
	}
	return nil
}

// Shutdown flushes and stops the exporters. The Provider is unusable after.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.logs == nil {
		return nil
	}
	if err := p.logs.Shutdown(ctx); err != nil {
		return fmt.Errorf("log shutdown failed: %w", err)
	}
	return nil
}

func (p *Provider) Enabled() bool {
	return p.cfg.Enabled
}
