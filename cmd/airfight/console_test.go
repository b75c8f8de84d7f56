package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/OCAP2/airfight/internal/config"
	"github.com/OCAP2/airfight/internal/dispatcher"
	"github.com/OCAP2/airfight/internal/logging"
	"github.com/OCAP2/airfight/internal/storage/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T) *app {
	t.Helper()
	a := &app{slog: logging.NewSlogManager()}
	a.logger = a.slog.Logger()
	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop()))
	require.NoError(t, err)
	a.dispatcher = d
	a.registerCommands(d)
	return a
}

func TestHTTPToWS(t *testing.T) {
	assert.Equal(t, "ws://localhost:5000", httpToWS("http://localhost:5000/"))
	assert.Equal(t, "wss://example.com/app", httpToWS("https://example.com/app"))
}

func TestExecute(t *testing.T) {
	a := testApp(t)
	var out bytes.Buffer

	assert.False(t, a.execute("VERSION", &out))
	assert.Contains(t, out.String(), "airfight "+Version)

	out.Reset()
	assert.False(t, a.execute("help", &out))
	assert.Contains(t, out.String(), "metric")
	assert.Contains(t, out.String(), "quit")

	out.Reset()
	assert.False(t, a.execute("metric combat_events shots field::int::n::1", &out))
	assert.Contains(t, out.String(), "error: influx telemetry is disabled")

	out.Reset()
	assert.False(t, a.execute("nosuchcommand", &out))
	assert.Contains(t, out.String(), "error:")

	out.Reset()
	assert.False(t, a.execute("   # comment", &out))
	assert.Empty(t, out.String())

	assert.True(t, a.execute("quit", &out))
	assert.True(t, a.execute("Exit now", &out))
}

func TestConsole(t *testing.T) {
	a := testApp(t)
	var out bytes.Buffer

	quit := a.console(context.Background(), strings.NewReader("version\nquit\nversion\n"), &out)
	assert.True(t, quit)
	assert.Equal(t, 1, strings.Count(out.String(), "airfight "))

	out.Reset()
	assert.False(t, a.console(context.Background(), strings.NewReader("version\n"), &out))
	assert.Contains(t, out.String(), "airfight ")
}

func TestConsole_ContextCancelled(t *testing.T) {
	a := testApp(t)
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool)
	go func() {
		done <- a.console(ctx, pr, &bytes.Buffer{})
	}()
	cancel()
	select {
	case quit := <-done:
		assert.False(t, quit)
	case <-time.After(2 * time.Second):
		t.Fatal("console did not return after cancel")
	}
}

func TestCreateStorageBackend(t *testing.T) {
	a := testApp(t)

	b, err := a.createStorageBackend(config.StorageConfig{Type: "memory", Memory: config.MemoryConfig{OutputDir: t.TempDir()}})
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	b, err = a.createStorageBackend(config.StorageConfig{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	_, err = a.createStorageBackend(config.StorageConfig{Type: "tape"})
	assert.ErrorContains(t, err, "unknown storage type")
}
