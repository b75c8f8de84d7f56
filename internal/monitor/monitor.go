// Package monitor samples the running campaign and the event pipeline,
// writing the result to a status file and to InfluxDB.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/OCAP2/airfight/internal/airfight"
	"github.com/OCAP2/airfight/internal/dispatcher"
	"github.com/OCAP2/airfight/internal/influx"
	"github.com/OCAP2/airfight/internal/logging"
	"github.com/OCAP2/airfight/internal/worker"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

// DefaultInterval is how often the status is sampled when none is configured.
const DefaultInterval = time.Second

// PointWriter receives the sampled status. The influx manager is one.
type PointWriter interface {
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Engine     *airfight.Engine
	Worker     *worker.Manager
	Points     PointWriter
	LogManager *logging.SlogManager
	// StatusPath is rewritten on every sample; empty disables the file.
	StatusPath string
	Interval   time.Duration
}

// Status is one sample of the campaign and the event pipeline.
type Status struct {
	Time          time.Time `json:"time"`
	Campaign      string    `json:"campaign"`
	Clock         int64     `json:"clock"`
	Aircraft      int       `json:"aircraft"`
	UFOs          int       `json:"ufos"`
	Bases         int       `json:"bases"`
	Installations int       `json:"installations"`
	Projectiles   int       `json:"projectiles"`

	QueuedEvents    int     `json:"queuedEvents"`
	ProcessedEvents int64   `json:"processedEvents"`
	FailedEvents    int64   `json:"failedEvents"`
	LastDrainMs     float32 `json:"lastDrainMs"`
}

// Fields returns the numeric counters of s as InfluxDB fields.
func (s Status) Fields() map[string]any {
	return map[string]any{
		"clock":            s.Clock,
		"aircraft":         s.Aircraft,
		"ufos":             s.UFOs,
		"bases":            s.Bases,
		"installations":    s.Installations,
		"projectiles":      s.Projectiles,
		"queued_events":    s.QueuedEvents,
		"processed_events": s.ProcessedEvents,
		"failed_events":    s.FailedEvents,
		"last_drain_ms":    s.LastDrainMs,
	}
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus samples the campaign between two ticks.
func (s *Service) GetStatus() Status {
	st := Status{Time: time.Now().UTC()}

	if e := s.deps.Engine; e != nil {
		e.Do(func() {
			state := e.State()
			st.Campaign = state.Name
			st.Clock = state.Clock
			st.Aircraft = len(state.PhalanxAircraft())
			st.UFOs = len(state.UFOs())
			st.Bases = state.Bases.Len()
			st.Installations = state.Installations.Len()
			st.Projectiles = state.Projectiles.Len()
		})
	}
	if w := s.deps.Worker; w != nil {
		st.QueuedEvents = w.Queued()
		st.ProcessedEvents = w.Processed()
		st.FailedEvents = w.Failed()
		st.LastDrainMs = float32(w.GetLastDrainDuration().Microseconds()) / 1000
	}
	return st
}

// Publish writes one sample to the status file and the point writer.
func (s *Service) Publish(ctx context.Context, st Status) error {
	if s.deps.StatusPath != "" {
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode status: %w", err)
		}
		if err := os.WriteFile(s.deps.StatusPath, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write status file: %w", err)
		}
	}
	if s.deps.Points != nil && st.Campaign != "" {
		p := influx.StatusPoint(st.Campaign, st.Time, st.Fields())
		if err := s.deps.Points.WritePoint(ctx, influx.BucketStatus, p); err != nil {
			return fmt.Errorf("failed to write status point: %w", err)
		}
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.stopChan, s.done)
}

func (s *Service) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	logger := s.deps.LogManager.Logger()
	logger.Debug("Starting status monitor", "interval", s.deps.Interval, "path", s.deps.StatusPath)

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.Publish(context.Background(), s.GetStatus()); err != nil {
				logger.Error("Error publishing status", "error", err)
			}
		}
	}
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}

// RegisterHandlers registers the "status" console command.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register("status", func(dispatcher.Event) (any, error) {
		data, err := json.MarshalIndent(s.GetStatus(), "", "  ")
		if err != nil {
			return nil, err
		}
		return string(data), nil
	})
}
