package campaign

import (
	"fmt"
	"strings"

	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/item"
)

// Health pools of a base under fire.
const (
	MaxBatteryDamage = 50
	MaxBaseDamage    = 100
)

// SiteKind tells whether a SiteRef points at a base or an installation.
type SiteKind int

const (
	SiteNone SiteKind = iota
	SiteBase
	SiteInstallation
)

// SiteRef references a base or an installation.
type SiteRef struct {
	Kind   SiteKind
	Handle Handle
}

// IsZero reports whether the reference points nowhere.
func (r SiteRef) IsZero() bool {
	return r.Kind == SiteNone || r.Handle.IsZero()
}

// BuildingType classifies base facilities.
type BuildingType int

const (
	BuildingGeneric BuildingType = iota
	BuildingMissile
	BuildingLaser
	BuildingHangar
	BuildingRadar
	BuildingPower
)

var buildingNames = map[BuildingType]string{
	BuildingGeneric: "generic",
	BuildingMissile: "missile",
	BuildingLaser:   "laser",
	BuildingHangar:  "hangar",
	BuildingRadar:   "radar",
	BuildingPower:   "power",
}

func (t BuildingType) String() string {
	if n, ok := buildingNames[t]; ok {
		return n
	}
	return "unknown"
}

// ParseBuildingType resolves a building type name (case-insensitive). Empty
// means generic.
func ParseBuildingType(name string) (BuildingType, error) {
	if name == "" {
		return BuildingGeneric, nil
	}
	for t, n := range buildingNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return BuildingGeneric, fmt.Errorf("unknown building type: %s", name)
}

// Building is a base facility.
type Building struct {
	ID   string
	Name string
	Type BuildingType
}

// Battery is a defence weapon of a base or an installation.
type Battery struct {
	Slot     Slot
	Target   Handle
	AutoFire bool // pick the closest UFO when idle
}

// Base is a founded Phalanx base.
type Base struct {
	Handle Handle
	Name   string
	Pos    geo.Position

	Founded     bool
	UnderAttack bool
	Powered     bool

	Batteries []Battery // missile
	Lasers    []Battery

	BatteryDamage int
	BaseDamage    int

	Buildings []Building
	Hangar    []Handle
	Storage   map[string]int
}

// HasBuilding reports whether a building of type t exists.
func (b *Base) HasBuilding(t BuildingType) bool {
	return b.CountBuildings(t) > 0
}

// CountBuildings counts the buildings of type t.
func (b *Base) CountBuildings(t BuildingType) int {
	n := 0
	for _, bld := range b.Buildings {
		if bld.Type == t {
			n++
		}
	}
	return n
}

// DefenceOperational reports whether a defence building of type t can fire.
func (b *Base) DefenceOperational(t BuildingType) bool {
	return b.Powered && b.HasBuilding(t)
}

// NthBuilding returns the index in Buildings of the n-th building of type t.
func (b *Base) NthBuilding(t BuildingType, n int) int {
	for i, bld := range b.Buildings {
		if bld.Type != t {
			continue
		}
		if n == 0 {
			return i
		}
		n--
	}
	return -1
}

// DestroyBuilding removes the building at idx. Losing a defence building also
// removes the last battery of its type.
func (b *Base) DestroyBuilding(idx int) (Building, bool) {
	if idx < 0 || idx >= len(b.Buildings) {
		return Building{}, false
	}
	bld := b.Buildings[idx]
	b.Buildings = append(b.Buildings[:idx], b.Buildings[idx+1:]...)
	switch bld.Type {
	case BuildingMissile:
		if n := len(b.Batteries); n > 0 {
			b.Batteries = b.Batteries[:n-1]
		}
	case BuildingLaser:
		if n := len(b.Lasers); n > 0 {
			b.Lasers = b.Lasers[:n-1]
		}
	}
	return bld, true
}

// HasItem reports whether the storage holds at least one of id.
func (b *Base) HasItem(id string) bool {
	return b.Storage[id] > 0
}

// AddToStorage changes the stored amount of id by n, never going below zero.
func (b *Base) AddToStorage(id string, n int) {
	if b.Storage == nil {
		b.Storage = make(map[string]int)
	}
	b.Storage[id] += n
	if b.Storage[id] <= 0 {
		delete(b.Storage, id)
	}
}

// InstallationStatus is the lifecycle state of an installation.
type InstallationStatus int

const (
	InstallationBuilding InstallationStatus = iota
	InstallationWorking
)

// Installation is a lightweight defence site (SAM site, radar tower).
type Installation struct {
	Handle    Handle
	Name      string
	Pos       geo.Position
	Status    InstallationStatus
	Batteries []Battery
	// Damage is the remaining hit points; the installation is lost at zero.
	Damage int
}

// NewBatteries creates n empty defence batteries for slots of the given type.
func NewBatteries(n int, typ item.Type) []Battery {
	out := make([]Battery, n)
	for i := range out {
		out[i].Slot = Slot{Index: i, Type: typ, Weight: item.WeightHeavy}
	}
	return out
}
