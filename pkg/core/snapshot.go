package core

import "time"

// Snapshot is a storage-agnostic copy of a campaign's air-war state.
// Entities reference each other by Ref into the snapshot's own slices.
type Snapshot struct {
	Name    string    `json:"name"`
	Clock   int64     `json:"clock"`
	SavedAt time.Time `json:"savedAt"`

	Bases         []BaseState         `json:"bases"`
	Installations []InstallationState `json:"installations"`
	Aircraft      []AircraftState     `json:"aircraft"`
	Projectiles   []ProjectileState   `json:"projectiles"`
}

// RefKind names the slice a Ref points into.
type RefKind string

const (
	RefNone         RefKind = ""
	RefAircraft     RefKind = "aircraft"
	RefBase         RefKind = "base"
	RefInstallation RefKind = "installation"
)

// Ref points at an entity of a snapshot: kind plus index.
type Ref struct {
	Kind  RefKind `json:"kind,omitempty"`
	Index int     `json:"index"`
}

// None reports whether the reference points nowhere.
func (r Ref) None() bool {
	return r.Kind == RefNone
}

// SlotState is a persisted weapon, electronics or shield slot.
// Empty ids mean no item.
type SlotState struct {
	Weight           int    `json:"weight"`
	ItemID           string `json:"item,omitempty"`
	NextItemID       string `json:"nextItem,omitempty"`
	AmmoID           string `json:"ammo,omitempty"`
	NextAmmoID       string `json:"nextAmmo,omitempty"`
	AmmoLeft         int    `json:"ammoLeft"`
	DelayNextShot    int    `json:"delayNextShot"`
	InstallationTime int    `json:"installationTime"`
}

// ProjectileState is a persisted projectile in flight.
type ProjectileState struct {
	AmmoID        string   `json:"ammo"`
	Pos           Position `json:"pos"`
	ProjectedPos  Position `json:"projectedPos"`
	IdleTarget    Position `json:"idleTarget"`
	Attacker      Ref      `json:"attacker"`
	AttackingSite Ref      `json:"attackingSite"`
	Target        Ref      `json:"target"` // none means the idle target
	Time          int      `json:"time"`
	Angle         float64  `json:"angle"`
	Bullets       bool     `json:"bullets"`
	Laser         bool     `json:"laser"`
}
