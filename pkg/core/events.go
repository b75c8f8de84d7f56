// Package core holds the storage-agnostic types shared by the engine and the
// storage backends.
package core

import (
	"time"
)

// EventType classifies a combat event.
type EventType string

const (
	EventShot             EventType = "shot"
	EventMiss             EventType = "miss"
	EventHit              EventType = "hit"
	EventDestroyed        EventType = "destroyed"
	EventBaseHit          EventType = "base_hit"
	EventBuildingLost     EventType = "building_lost"
	EventCrashSite        EventType = "crash_site"
	EventLostAtSea        EventType = "lost_at_sea"
	EventReturnToBase     EventType = "return_to_base"
	EventInstallationLost EventType = "installation_lost"
)

// Position is a geoscape position in degrees: X longitude, Y latitude.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CombatEvent is one thing that happened in the air war.
// Attacker and Target are display names; an empty Attacker means a base,
// an installation or an aircraft destroyed while its shot was in flight.
type CombatEvent struct {
	Campaign string         `json:"campaign"`
	Time     time.Time      `json:"time"`
	Clock    int64          `json:"clock"` // campaign seconds
	Type     EventType      `json:"type"`
	Attacker string         `json:"attacker,omitempty"`
	Target   string         `json:"target,omitempty"`
	Item     string         `json:"item,omitempty"`
	Position Position       `json:"position"`
	Damage   int            `json:"damage,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}
