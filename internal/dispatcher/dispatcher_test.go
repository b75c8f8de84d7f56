package dispatcher

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) add(level, msg string, keysAndValues []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("%s: %s %v", level, msg, keysAndValues))
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) { l.add("DEBUG", msg, keysAndValues) }
func (l *testLogger) Info(msg string, keysAndValues ...any)  { l.add("INFO", msg, keysAndValues) }
func (l *testLogger) Error(msg string, keysAndValues ...any) { l.add("ERROR", msg, keysAndValues) }

func (l *testLogger) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func (l *testLogger) hasPrefix(prefix string) bool {
	for _, m := range l.all() {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	t.Helper()
	logger := &testLogger{}
	d, err := New(logger)
	require.NoError(t, err)
	return d, logger
}

func TestParseLine(t *testing.T) {
	e, ok := ParseLine("  LOAD   thunder  ")
	require.True(t, ok)
	assert.Equal(t, "load", e.Command)
	assert.Equal(t, []string{"thunder"}, e.Args)
	assert.False(t, e.Timestamp.IsZero())

	e, ok = ParseLine("debug_listprojectile")
	require.True(t, ok)
	assert.Empty(t, e.Args)

	e, ok = ParseLine(`load "Operation Thunder"`)
	require.True(t, ok)
	assert.Equal(t, []string{"Operation Thunder"}, e.Args)

	for _, line := range []string{"", "   ", "# comment", "#save"} {
		_, ok := ParseLine(line)
		assert.False(t, ok, line)
	}
}

func TestDispatcher_SyncHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got Event
	d.Register("status", func(e Event) (any, error) {
		got = e
		return "result", nil
	})

	result, err := d.Dispatch(Event{Command: "status", Args: []string{"arg1"}})
	require.NoError(t, err)
	assert.Equal(t, "result", result)
	assert.Equal(t, []string{"arg1"}, got.Args)
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)
	_, err := d.Dispatch(Event{Command: "launch"})
	assert.ErrorContains(t, err, "unknown command")
}

func TestDispatcher_BufferedHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var processed atomic.Int32
	var wg sync.WaitGroup
	wg.Add(3)

	d.Register("metric", func(e Event) (any, error) {
		processed.Add(1)
		wg.Done()
		return nil, nil
	}, Buffered(100))

	for i := 0; i < 3; i++ {
		result, err := d.Dispatch(Event{Command: "metric"})
		require.NoError(t, err)
		assert.Equal(t, "queued", result)
	}

	wg.Wait()
	assert.Equal(t, int32(3), processed.Load())
}

func TestDispatcher_BufferedDropsWhenFull(t *testing.T) {
	d, _ := newTestDispatcher(t)

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	d.Register("metric", func(e Event) (any, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
		return nil, nil
	}, Buffered(2))
	defer close(block)

	_, _ = d.Dispatch(Event{Command: "metric"}) // being processed
	<-started
	_, _ = d.Dispatch(Event{Command: "metric"}) // queued
	_, _ = d.Dispatch(Event{Command: "metric"}) // queued

	_, err := d.Dispatch(Event{Command: "metric"})
	assert.ErrorContains(t, err, "queue full")
}

func TestDispatcher_BufferedBlocking(t *testing.T) {
	d, _ := newTestDispatcher(t)

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	d.Register("metric", func(e Event) (any, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
		return nil, nil
	}, Buffered(1), Blocking())

	_, _ = d.Dispatch(Event{Command: "metric"})
	<-started
	_, _ = d.Dispatch(Event{Command: "metric"})

	done := make(chan struct{})
	go func() {
		_, _ = d.Dispatch(Event{Command: "metric"})
		close(done)
	}()

	select {
	case <-done:
		t.Error("dispatch should have blocked")
	case <-time.After(50 * time.Millisecond):
	}

	close(block)
	<-done
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register("save", func(e Event) (any, error) {
		return "ok", nil
	}, Logged())

	_, err := d.Dispatch(Event{Command: "save", Args: []string{"a", "b"}})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(logger.all()), 2)
}

func TestDispatcher_LoggedHandlerError(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register("load", func(e Event) (any, error) {
		return nil, errors.New("no such campaign")
	}, Logged())

	_, err := d.Dispatch(Event{Command: "load"})
	assert.Error(t, err)
	assert.True(t, logger.hasPrefix("ERROR"))
}

func TestDispatcher_BufferedErrorIsLogged(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register("metric", func(e Event) (any, error) {
		return nil, errors.New("bad metric")
	}, Buffered(1))

	_, err := d.Dispatch(Event{Command: "metric"})
	require.NoError(t, err)
	d.Close()
	assert.True(t, logger.hasPrefix("ERROR: buffered event failed"))
}

func TestDispatcher_HasHandlerAndCommands(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register("status", func(e Event) (any, error) { return nil, nil })
	d.Register("debug_listprojectile", func(e Event) (any, error) { return nil, nil })

	assert.True(t, d.HasHandler("status"))
	assert.False(t, d.HasHandler("launch"))
	assert.Equal(t, []string{"debug_listprojectile", "status"}, d.Commands())
}

func TestDispatcher_CombinedOptions(t *testing.T) {
	d, logger := newTestDispatcher(t)

	var processed atomic.Int32
	d.Register("metric", func(e Event) (any, error) {
		processed.Add(1)
		return "done", nil
	}, Buffered(100), Logged())

	result, err := d.Dispatch(Event{Command: "metric"})
	require.NoError(t, err)
	assert.Equal(t, "queued", result)

	d.Close()
	assert.Equal(t, int32(1), processed.Load())
	assert.GreaterOrEqual(t, len(logger.all()), 2)
}

func TestDispatcher_CloseDrainsAndRejects(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var processed atomic.Int32
	d.Register("metric", func(e Event) (any, error) {
		time.Sleep(time.Millisecond)
		processed.Add(1)
		return nil, nil
	}, Buffered(10))

	for i := 0; i < 5; i++ {
		_, err := d.Dispatch(Event{Command: "metric"})
		require.NoError(t, err)
	}
	d.Close()
	assert.Equal(t, int32(5), processed.Load())

	_, err := d.Dispatch(Event{Command: "metric"})
	assert.ErrorContains(t, err, "closed")
	d.Close()
}
