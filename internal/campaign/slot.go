package campaign

import (
	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/item"
)

// AmmoUnlimited marks a slot whose ammo never runs out.
const AmmoUnlimited = -1

// OwnerKind tells what a slot is mounted on.
type OwnerKind int

const (
	OwnerAircraft OwnerKind = iota
	OwnerBase
	OwnerInstallation
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerAircraft:
		return "aircraft"
	case OwnerBase:
		return "base"
	case OwnerInstallation:
		return "installation"
	default:
		return "unknown"
	}
}

// Owner is a slot's back-reference to the entity it is mounted on.
type Owner struct {
	Kind   OwnerKind
	Handle Handle
}

// Slot is a mounting point for a craft item and, for weapons, its ammo.
//
// InstallationTime counts hours: positive while the item is being installed,
// negative while it is being removed, zero once operational.
type Slot struct {
	Index  int
	Type   item.Type
	Weight item.Weight
	Owner  Owner

	Item     *item.Item
	Ammo     *item.Item
	NextItem *item.Item
	NextAmmo *item.Item

	AmmoLeft         int
	DelayNextShot    int
	InstallationTime int
}

// NewSlots creates n empty slots of the given type and weight.
func NewSlots(n int, typ item.Type, weight item.Weight) []Slot {
	slots := make([]Slot, n)
	for i := range slots {
		slots[i] = Slot{Index: i, Type: typ, Weight: weight}
	}
	return slots
}

// Range returns the weapon range of the loaded ammo, or 0 without ammo.
func (s *Slot) Range() float64 {
	if s.Ammo == nil {
		return 0
	}
	return s.Ammo.Stats[item.StatRange]
}

// HasAmmoLeft reports whether the loaded ammo can still fire.
func (s *Slot) HasAmmoLeft() bool {
	return s.Ammo != nil && (s.AmmoLeft > 0 || s.AmmoLeft == AmmoUnlimited)
}

// Readiness is the result of a weapon check.
// The order is significant: Never < NotNow < CanShoot.
type Readiness int

const (
	Never Readiness = iota
	NotNow
	CanShoot
)

func (r Readiness) String() string {
	switch r {
	case Never:
		return "never"
	case NotNow:
		return "not-now"
	case CanShoot:
		return "can-shoot"
	default:
		return "unknown"
	}
}

// Check tells whether the weapon in the slot can fire at a target distance away.
func (s *Slot) Check(distance float64) Readiness {
	if s.Item == nil || s.InstallationTime != 0 {
		return Never
	}
	if !s.HasAmmoLeft() {
		return Never
	}
	if distance > s.Range() {
		return NotNow
	}
	if s.DelayNextShot > 0 {
		return NotNow
	}
	return CanShoot
}

// ChoiceKind is the tag of a WeaponChoice. Unavailable < Waiting < Ready.
type ChoiceKind int

const (
	Unavailable ChoiceKind = iota
	Waiting
	Ready
)

func (k ChoiceKind) String() string {
	switch k {
	case Unavailable:
		return "unavailable"
	case Waiting:
		return "waiting"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// WeaponChoice is the outcome of ChooseWeapon. Slot is only set when Kind is Ready.
type WeaponChoice struct {
	Kind ChoiceKind
	Slot int
}

// Ready returns the chosen slot index.
func (c WeaponChoice) Ready() (int, bool) {
	if c.Kind != Ready {
		return -1, false
	}
	return c.Slot, true
}

// ChooseWeapon picks the weapon to fire from shooterPos at targetPos: the ready
// slot with the shortest range, the first one on ties. Without a ready slot the
// result is Waiting if any weapon could fire later, Unavailable otherwise.
func ChooseWeapon(slots []Slot, shooterPos, targetPos geo.Position) WeaponChoice {
	distance := geo.Distance(shooterPos, targetPos)
	choice := WeaponChoice{Kind: Unavailable, Slot: -1}
	var best float64

	for i := range slots {
		switch slots[i].Check(distance) {
		case CanShoot:
			if r := slots[i].Range(); choice.Kind != Ready || r < best {
				choice = WeaponChoice{Kind: Ready, Slot: i}
				best = r
			}
		case NotNow:
			if choice.Kind == Unavailable {
				choice.Kind = Waiting
			}
		}
	}
	return choice
}

// MaxRange returns the longest ammo range among the slots.
func MaxRange(slots []Slot) float64 {
	var longest float64
	for i := range slots {
		if r := slots[i].Range(); r > longest {
			longest = r
		}
	}
	return longest
}
