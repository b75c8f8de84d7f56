// Package postgres implements the storage.Backend interface on PostgreSQL.
// Reads and writes go through the GORM backend; this package only owns the
// connection.
package postgres

import (
	"fmt"

	"github.com/OCAP2/airfight/internal/database"
	"github.com/OCAP2/airfight/internal/logging"
	gormstorage "github.com/OCAP2/airfight/internal/storage/gorm"
)

// Backend is the GORM backend bound to a Postgres connection.
type Backend struct {
	*gormstorage.Backend
}

// New connects to the database named by the db.* config keys.
func New(logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.GetPostgresDB()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:         db,
			LogManager: logManager,
		}),
	}, nil
}
