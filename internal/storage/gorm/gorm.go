// Package gormstorage implements the storage.Backend interface on any GORM
// database. Saves are written synchronously; combat events are queued and
// written in batches by a background goroutine.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/airfight/internal/database"
	"github.com/OCAP2/airfight/internal/logging"
	"github.com/OCAP2/airfight/internal/model"
	"github.com/OCAP2/airfight/internal/model/convert"
	"github.com/OCAP2/airfight/internal/queue"
	"github.com/OCAP2/airfight/internal/storage"
	"github.com/OCAP2/airfight/pkg/core"

	"gorm.io/gorm"
)

// DefaultFlushInterval is how often queued events are written.
const DefaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	FlushInterval time.Duration
}

type pendingEvent struct {
	campaign string
	row      model.CombatEvent
}

// Backend implements storage.Backend using GORM with queue-based event writes.
type Backend struct {
	deps   Dependencies
	events *queue.Queue[pendingEvent]

	campaignIDs map[string]uint
	idMu        sync.Mutex

	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:        deps,
		events:      queue.New[pendingEvent](),
		campaignIDs: make(map[string]uint),
	}
}

// DB returns the underlying database.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema and starts the event writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("gorm backend: no database")
	}

	b.deps.LogManager.WriteLog("setupDB", "Migrating schema", "INFO")
	if err := database.Migrate(b.deps.DB); err != nil {
		b.deps.LogManager.WriteLog("setupDB", fmt.Sprintf("Failed to migrate schema: %s", err), "ERROR")
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.deps.LogManager.WriteLog("setupDB", "Database setup complete", "INFO")

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writeLoop()
	return nil
}

// Close stops the writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	close(b.stopChan)
	<-b.done
	b.stopChan = nil
	return b.Flush()
}

// campaignID returns the id of the named campaign, creating it on first use.
func (b *Backend) campaignID(name string) (uint, error) {
	b.idMu.Lock()
	defer b.idMu.Unlock()

	if id, ok := b.campaignIDs[name]; ok {
		return id, nil
	}
	c := model.Campaign{Name: name}
	if err := b.deps.DB.Where(model.Campaign{Name: name}).FirstOrCreate(&c).Error; err != nil {
		return 0, fmt.Errorf("failed to get or insert campaign %s: %w", name, err)
	}
	b.campaignIDs[name] = c.ID
	return c.ID, nil
}

// SaveCampaign stores a save row with its aircraft and projectile children.
func (b *Backend) SaveCampaign(s *core.Snapshot) error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	id, err := b.campaignID(s.Name)
	if err != nil {
		return err
	}
	save, err := convert.SnapshotToSaveGame(s)
	if err != nil {
		return err
	}
	save.CampaignID = id

	return b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Campaign").Create(&save).Error; err != nil {
			return fmt.Errorf("failed to insert save of %s: %w", s.Name, err)
		}
		return nil
	})
}

// LoadCampaign returns the latest save of the named campaign.
func (b *Backend) LoadCampaign(name string) (*core.Snapshot, error) {
	var c model.Campaign
	err := b.deps.DB.Where("name = ?", name).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", name, storage.ErrCampaignNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign %s: %w", name, err)
	}

	var save model.SaveGame
	err = b.deps.DB.Where("campaign_id = ?", c.ID).Order("saved_at DESC, id DESC").First(&save).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s has no save: %w", name, storage.ErrCampaignNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find save of %s: %w", name, err)
	}
	return convert.SaveGameToSnapshot(save)
}

// RecordCombatEvent converts and queues a combat event.
func (b *Backend) RecordCombatEvent(e *core.CombatEvent) error {
	b.events.Push(pendingEvent{campaign: e.Campaign, row: convert.CoreToCombatEvent(*e)})
	return nil
}

// QueuedEvents returns how many events wait for the writer.
func (b *Backend) QueuedEvents() int {
	return b.events.Len()
}

// Flush writes all queued events in one transaction. On failure the events
// are queued again.
func (b *Backend) Flush() error {
	pending := b.events.Drain()
	if len(pending) == 0 {
		return nil
	}

	rows := make([]model.CombatEvent, 0, len(pending))
	for _, p := range pending {
		id, err := b.campaignID(p.campaign)
		if err != nil {
			b.events.Push(pending...)
			return err
		}
		p.row.CampaignID = id
		rows = append(rows, p.row)
	}

	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Campaign").Create(&rows).Error
	})
	if err != nil {
		b.events.Push(pending...)
		return fmt.Errorf("failed to write combat events: %w", err)
	}
	return nil
}

// Events returns the stored combat events of a campaign in clock order.
func (b *Backend) Events(name string) ([]core.CombatEvent, error) {
	var c model.Campaign
	err := b.deps.DB.Where("name = ?", name).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign %s: %w", name, err)
	}

	var rows []model.CombatEvent
	if err := b.deps.DB.Where("campaign_id = ?", c.ID).Order("clock, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read events of %s: %w", name, err)
	}
	out := make([]core.CombatEvent, len(rows))
	for i, r := range rows {
		out[i] = convert.CombatEventToCore(r, name)
	}
	return out, nil
}

func (b *Backend) writeLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.LogManager.WriteLog(":DB:WRITER:", fmt.Sprintf("Error writing combat events: %v", err), "ERROR")
			}
		}
	}
}

var _ storage.Backend = (*Backend)(nil)
