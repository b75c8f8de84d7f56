// Package storage defines where campaigns and combat events are persisted.
package storage

import (
	"errors"

	"github.com/OCAP2/airfight/pkg/core"
)

var (
	// ErrNotSupported is returned by backends that cannot serve an operation,
	// such as the live feed asked to load a campaign.
	ErrNotSupported = errors.New("operation not supported by storage backend")
	// ErrCampaignNotFound is returned when no save exists under a name.
	ErrCampaignNotFound = errors.New("campaign not found")
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Save games. LoadCampaign returns the latest save of the named campaign.
	SaveCampaign(s *core.Snapshot) error
	LoadCampaign(name string) (*core.Snapshot, error)

	// Event recording
	RecordCombatEvent(e *core.CombatEvent) error
}

// Exportable is an optional interface for backends that write their
// contents to a file on Close.
type Exportable interface {
	GetExportedFilePath() string
}
