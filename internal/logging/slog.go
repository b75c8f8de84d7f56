package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// ServiceName identifies airfight records in the OTel log pipeline.
const ServiceName = "airfight"

// SlogManager owns the process logger: a text sink (the log file, or the
// console before one is open), the OTel bridge, and the campaign tags.
type SlogManager struct {
	logger  *slog.Logger
	console io.Writer

	logProvider *sdklog.LoggerProvider
	context     ContextProvider
}

// NewSlogManager returns a manager that logs to stdout until Setup is given a file.
func NewSlogManager() *SlogManager {
	return &SlogManager{console: os.Stdout}
}

// parseLevel accepts slog level names in any case ("debug", "WARN",
// "info+2"). Anything else is info.
func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}

// Setup rebuilds the logger. Records go to file, or to the console when
// file is nil, and to provider when it is set.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	m.logProvider = provider

	sink := file
	if sink == nil {
		sink = m.console
	}
	text := slog.NewTextHandler(sink, &slog.HandlerOptions{Level: parseLevel(level), ReplaceAttr: utcTime})

	var otelHandler slog.Handler
	if provider != nil {
		otelHandler = otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(provider))
	}

	handler := newFanout(text, otelHandler)
	if m.context != nil {
		handler = &contextHandler{inner: handler, provider: m.context}
	}
	m.logger = slog.New(handler)
	m.logger.Info("Logging initialized", "level", level)
}

// SetContext makes every record carry the attributes returned by p. It
// applies to loggers created by later Setup calls.
func (m *SlogManager) SetContext(p ContextProvider) {
	m.context = p
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush pushes pending OTel records out.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider == nil {
		return nil
	}
	return m.logProvider.ForceFlush(ctx)
}

// WriteLog logs data at level, tagged with the function that produced it.
// Storage and worker loops use it for their one-line status reports.
func (m *SlogManager) WriteLog(function, data, level string) {
	if m.logger == nil {
		return
	}
	m.logger.Log(context.Background(), parseLevel(level), data, "function", function)
}
