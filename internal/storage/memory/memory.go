// Package memory keeps save games and combat events in memory and exports
// them to JSON on Close.
package memory

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/airfight/internal/config"
	"github.com/OCAP2/airfight/internal/storage"
	"github.com/OCAP2/airfight/pkg/core"
)

// CampaignRecord groups the saves of one campaign with its combat events.
// Saves are kept encoded so later mutation of a caller's snapshot cannot
// leak into storage.
type CampaignRecord struct {
	Name   string
	Saves  [][]byte
	Events []core.CombatEvent
}

// Backend stores campaign data in memory and exports to JSON
type Backend struct {
	cfg       config.MemoryConfig
	campaigns map[string]*CampaignRecord
	order     []string
	startTime time.Time

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:       cfg,
		campaigns: make(map[string]*CampaignRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	b.startTime = time.Now().UTC()
	return nil
}

// Close exports everything recorded. Nothing is written when nothing was recorded.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.campaigns) == 0 || b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON()
}

func (b *Backend) record(name string) *CampaignRecord {
	r, ok := b.campaigns[name]
	if !ok {
		r = &CampaignRecord{Name: name}
		b.campaigns[name] = r
		b.order = append(b.order, name)
	}
	return r
}

// SaveCampaign stores a copy of the snapshot as the campaign's latest save.
func (b *Backend) SaveCampaign(s *core.Snapshot) error {
	if s == nil {
		return fmt.Errorf("nil snapshot")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.record(s.Name)
	r.Saves = append(r.Saves, data)
	return nil
}

// LoadCampaign returns a copy of the latest save of the named campaign.
func (b *Backend) LoadCampaign(name string) (*core.Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.campaigns[name]
	if !ok || len(r.Saves) == 0 {
		return nil, fmt.Errorf("%s: %w", name, storage.ErrCampaignNotFound)
	}
	var snap core.Snapshot
	if err := json.Unmarshal(r.Saves[len(r.Saves)-1], &snap); err != nil {
		return nil, fmt.Errorf("failed to decode save of %s: %w", name, err)
	}
	return &snap, nil
}

// RecordCombatEvent appends an event to its campaign.
func (b *Backend) RecordCombatEvent(e *core.CombatEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := b.record(e.Campaign)
	r.Events = append(r.Events, *e)
	return nil
}

// Events returns a copy of the events recorded for a campaign.
func (b *Backend) Events(name string) []core.CombatEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.campaigns[name]
	if !ok {
		return nil
	}
	out := make([]core.CombatEvent, len(r.Events))
	copy(out, r.Events)
	return out
}

// SaveCount returns how many saves a campaign has.
func (b *Backend) SaveCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if r, ok := b.campaigns[name]; ok {
		return len(r.Saves)
	}
	return 0
}

// GetExportedFilePath returns the path of the last export, empty before Close.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

var _ storage.Backend = (*Backend)(nil)
var _ storage.Exportable = (*Backend)(nil)
