package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&ServerInfo{},
	&Campaign{},
	&SaveGame{},
	&SavedAircraft{},
	&SavedProjectile{},
	&CombatEvent{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// ServerInfo describes the instance that writes to the database.
type ServerInfo struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:127"`
	Description string `json:"description" gorm:"size:255"`
}

func (*ServerInfo) TableName() string {
	return "server_infos"
}

////////////////////////
// CAMPAIGN MODELS
////////////////////////

// Campaign is a named air war. Saves and combat events hang off it.
type Campaign struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Name      string    `json:"name" gorm:"size:127;uniqueIndex:idx_campaign_name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (*Campaign) TableName() string {
	return "campaigns"
}

// SaveGame is one persisted snapshot. Snapshot holds the full state used to
// restore the campaign; the aircraft and projectile rows are a queryable
// copy of what was on the geoscape at save time.
type SaveGame struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	CampaignID uint      `json:"campaignId" gorm:"index:idx_savegame_campaign_id"`
	Campaign   Campaign  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:CampaignID;"`
	SavedAt    time.Time `json:"savedAt" gorm:"index:idx_savegame_saved_at"`
	Clock      int64     `json:"clock"` // campaign seconds

	Snapshot datatypes.JSON `json:"snapshot"`

	Aircraft    []SavedAircraft   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SaveGameID;"`
	Projectiles []SavedProjectile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SaveGameID;"`
}

func (*SaveGame) TableName() string {
	return "save_games"
}

// SavedAircraft is an aircraft or UFO as it stood when the game was saved.
type SavedAircraft struct {
	ID         uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	SaveGameID uint       `json:"saveGameId" gorm:"index:idx_savedaircraft_savegame_id"`
	Name       string     `json:"name" gorm:"size:64"`
	UFO        bool       `json:"ufo"`
	Status     string     `json:"status" gorm:"size:16"`
	Damage     int        `json:"damage"`
	Position   geom.Point `json:"position"`
}

func (*SavedAircraft) TableName() string {
	return "saved_aircraft"
}

// SavedProjectile is a projectile in flight at save time. Path runs from the
// current to the projected position.
type SavedProjectile struct {
	ID         uint            `json:"id" gorm:"primarykey;autoIncrement;"`
	SaveGameID uint            `json:"saveGameId" gorm:"index:idx_savedprojectile_savegame_id"`
	Ammo       string          `json:"ammo" gorm:"size:64"`
	Position   geom.Point      `json:"position"`
	Path       geom.LineString `json:"path"`
	Time       int             `json:"time"` // seconds in flight
}

func (*SavedProjectile) TableName() string {
	return "saved_projectiles"
}

// CombatEvent is one shot, hit, miss or loss in the air war.
type CombatEvent struct {
	ID         uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time       time.Time      `json:"time" gorm:"index:idx_combatevent_time"`
	CampaignID uint           `json:"campaignId" gorm:"index:idx_combatevent_campaign_id"`
	Campaign   Campaign       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:CampaignID;"`
	Clock      int64          `json:"clock"`
	Type       string         `json:"type" gorm:"size:32;index:idx_combatevent_type"`
	Attacker   string         `json:"attacker" gorm:"size:64"`
	Target     string         `json:"target" gorm:"size:64"`
	Item       string         `json:"item" gorm:"size:64"`
	Position   geom.Point     `json:"position"`
	Damage     int            `json:"damage"`
	Details    datatypes.JSON `json:"details" gorm:"default:'{}'"`
}

func (*CombatEvent) TableName() string {
	return "combat_events"
}
