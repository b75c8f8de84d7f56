package campaign

import (
	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/item"
)

// MaxProjectiles is the default capacity of the projectile registry.
const MaxProjectiles = 32

// TargetKind tags which target of a projectile is active.
type TargetKind int

const (
	TargetIdle TargetKind = iota
	TargetAircraft
	TargetBase
	TargetInstallation
)

func (k TargetKind) String() string {
	switch k {
	case TargetIdle:
		return "idle"
	case TargetAircraft:
		return "aircraft"
	case TargetBase:
		return "base"
	case TargetInstallation:
		return "installation"
	default:
		return "unknown"
	}
}

// Target is the single thing a projectile flies at. For TargetIdle the
// destination is the projectile's IdleTarget.
type Target struct {
	Kind   TargetKind
	Handle Handle
}

// Projectile is a shot in flight.
type Projectile struct {
	Index int
	// Item is the ammo that was fired; it defines speed, range and damage.
	Item *item.Item

	Pos          geo.Position
	ProjectedPos geo.Position
	IdleTarget   geo.Position
	Target       Target

	// Attacker is zero when a base or installation fired, or once the firing
	// aircraft has been destroyed.
	Attacker      Handle
	AttackingSite SiteRef

	Time  int // seconds in flight
	Angle float64

	Bullets bool
	Laser   bool
}

// Retarget turns the projectile into an idle-bound shot toward pos.
func (p *Projectile) Retarget(pos geo.Position) {
	p.Target = Target{Kind: TargetIdle}
	p.IdleTarget = pos
}

// Registry is the bounded list of projectiles in flight. Removal compacts the
// list downward and keeps every projectile's Index equal to its position.
type Registry struct {
	items    []*Projectile
	capacity int
}

// NewRegistry creates a registry holding at most capacity projectiles.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = MaxProjectiles
	}
	return &Registry{items: make([]*Projectile, 0, capacity), capacity: capacity}
}

// Add appends p and assigns its index. It returns false when the registry is full.
func (r *Registry) Add(p *Projectile) bool {
	if r.Full() {
		return false
	}
	p.Index = len(r.items)
	r.items = append(r.items, p)
	return true
}

// Remove drops the projectile at index, shifting later ones down by one.
func (r *Registry) Remove(index int) bool {
	if index < 0 || index >= len(r.items) {
		return false
	}
	copy(r.items[index:], r.items[index+1:])
	r.items[len(r.items)-1] = nil
	r.items = r.items[:len(r.items)-1]
	for i := index; i < len(r.items); i++ {
		r.items[i].Index = i
	}
	return true
}

// At returns the projectile at index.
func (r *Registry) At(index int) *Projectile {
	return r.items[index]
}

// Len returns the number of projectiles in flight.
func (r *Registry) Len() int {
	return len(r.items)
}

// Cap returns the registry capacity.
func (r *Registry) Cap() int {
	return r.capacity
}

// Full reports whether no more projectiles can be added.
func (r *Registry) Full() bool {
	return len(r.items) >= r.capacity
}

// All returns a snapshot of the projectiles in index order.
func (r *Registry) All() []*Projectile {
	out := make([]*Projectile, len(r.items))
	copy(out, r.items)
	return out
}

// Clear removes every projectile.
func (r *Registry) Clear() {
	for i := range r.items {
		r.items[i] = nil
	}
	r.items = r.items[:0]
}
