// Package worker moves combat events from the engine's outbox into storage
// and telemetry, and serves the console commands that touch storage.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCAP2/airfight/internal/airfight"
	"github.com/OCAP2/airfight/internal/logging"
	"github.com/OCAP2/airfight/internal/queue"
	"github.com/OCAP2/airfight/internal/savegame"
	"github.com/OCAP2/airfight/internal/storage"
	"github.com/OCAP2/airfight/pkg/core"
)

const (
	DefaultBatchSize = 500
	DefaultInterval  = time.Second
)

// EventSink receives every drained combat event next to the storage
// backend. The influx manager is one.
type EventSink interface {
	WriteCombatEvent(ctx context.Context, e core.CombatEvent) error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Events     *queue.Queue[core.CombatEvent]
	Backend    storage.Backend
	Sink       EventSink
	Engine     *airfight.Engine
	Loader     *savegame.Loader
	LogManager *logging.SlogManager
	BatchSize  int
	Interval   time.Duration
}

// Manager drains the combat event outbox on its own goroutine.
type Manager struct {
	deps Dependencies

	processed   atomic.Int64
	failed      atomic.Int64
	lastDrainNs atomic.Int64

	drainMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) *Manager {
	if deps.Events == nil {
		deps.Events = queue.New[core.CombatEvent]()
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = DefaultBatchSize
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Manager{deps: deps}
}

// Start launches the drain goroutine. Calling it twice has no effect.
func (m *Manager) Start() {
	if m.stopChan != nil {
		return
	}
	m.stopChan = make(chan struct{})
	m.done = make(chan struct{})
	go m.loop()
}

// Stop ends the drain goroutine and drains what is left.
func (m *Manager) Stop() {
	if m.stopChan != nil {
		close(m.stopChan)
		<-m.done
		m.stopChan = nil
	}
	m.Drain()
}

func (m *Manager) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.Drain()
		}
	}
}

// Drain hands every queued event to the backend and the sink, in batches,
// and returns how many events it took off the queue.
func (m *Manager) Drain() int {
	m.drainMu.Lock()
	defer m.drainMu.Unlock()

	start := time.Now()
	total := 0
	for {
		batch := m.deps.Events.PopN(m.deps.BatchSize)
		if len(batch) == 0 {
			break
		}
		total += len(batch)
		for i := range batch {
			m.handle(&batch[i])
		}
	}
	if total > 0 {
		m.lastDrainNs.Store(int64(time.Since(start)))
	}
	return total
}

func (m *Manager) handle(e *core.CombatEvent) {
	ok := true
	if m.deps.Backend != nil {
		if err := m.deps.Backend.RecordCombatEvent(e); err != nil {
			ok = false
			m.deps.LogManager.WriteLog(":WORKER:", fmt.Sprintf("Failed to record %s event: %v", e.Type, err), "ERROR")
		}
	}
	if m.deps.Sink != nil {
		if err := m.deps.Sink.WriteCombatEvent(context.Background(), *e); err != nil {
			ok = false
			m.deps.LogManager.WriteLog(":WORKER:", fmt.Sprintf("Failed to write %s event to sink: %v", e.Type, err), "WARN")
		}
	}
	if ok {
		m.processed.Add(1)
	} else {
		m.failed.Add(1)
	}
}

// Queued returns how many events wait in the outbox.
func (m *Manager) Queued() int {
	return m.deps.Events.Len()
}

// Processed returns how many events were handled without error.
func (m *Manager) Processed() int64 {
	return m.processed.Load()
}

// Failed returns how many events the backend or the sink rejected.
func (m *Manager) Failed() int64 {
	return m.failed.Load()
}

// GetLastDrainDuration returns how long the last non-empty drain took.
func (m *Manager) GetLastDrainDuration() time.Duration {
	return time.Duration(m.lastDrainNs.Load())
}
