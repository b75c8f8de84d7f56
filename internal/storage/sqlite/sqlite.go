// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the SQLite-specific parts are creating the
// in-memory DB and dumping it to disk.
package sqlitestorage

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/OCAP2/airfight/internal/config"
	"github.com/OCAP2/airfight/internal/database"
	"github.com/OCAP2/airfight/internal/logging"
	gormstorage "github.com/OCAP2/airfight/internal/storage/gorm"

	"gorm.io/gorm"
)

var dbCounter atomic.Int64

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      config.SQLiteConfig
	log      *logging.SlogManager
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new SQLite storage backend on a fresh in-memory database.
func New(cfg config.SQLiteConfig, logManager *logging.SlogManager) (*Backend, error) {
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}
	name := fmt.Sprintf("airfight-%d-%d", time.Now().UnixNano(), dbCounter.Add(1))
	db, err := database.GetSqliteDB(database.MemoryDSN(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:         db,
			LogManager: logManager,
		}),
		db:  db,
		cfg: cfg,
		log: logManager,
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.stopChan = make(chan struct{})
		b.done = make(chan struct{})
		go b.dumpLoop()
	}
	return nil
}

// Close stops the dump goroutine, flushes the GORM backend and writes a
// final dump when a dump path is set.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	if b.cfg.DumpPath == "" {
		return nil
	}
	return b.Dump()
}

// Dump writes a point-in-time copy of the database to the dump path.
func (b *Backend) Dump() error {
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		return err
	}
	b.log.WriteLog("sqlite:dump", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
	return nil
}

// GetExportedFilePath returns the dump path.
func (b *Backend) GetExportedFilePath() string {
	return b.cfg.DumpPath
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Dump(); err != nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
			}
		}
	}
}
