package campaign

import (
	"fmt"

	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/item"
)

// Kind separates player aircraft from alien craft.
type Kind int

const (
	KindPhalanx Kind = iota
	KindUFO
)

func (k Kind) String() string {
	if k == KindUFO {
		return "ufo"
	}
	return "phalanx"
}

// Status is what an aircraft is currently doing.
type Status int

const (
	StatusNone Status = iota
	StatusHome
	StatusRefuel
	StatusIdle
	StatusTransit
	StatusMission
	StatusUFO // pursuing a UFO
	StatusDrop
	StatusIntercept
	StatusReturning
	StatusCrashed
)

var statusNames = map[Status]string{
	StatusNone:      "none",
	StatusHome:      "home",
	StatusRefuel:    "refuel",
	StatusIdle:      "idle",
	StatusTransit:   "transit",
	StatusMission:   "mission",
	StatusUFO:       "pursuing",
	StatusDrop:      "drop",
	StatusIntercept: "intercept",
	StatusReturning: "returning",
	StatusCrashed:   "crashed",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseStatus resolves a name produced by Status.String.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return StatusNone, fmt.Errorf("unknown aircraft status: %s", name)
}

// Aircraft is a Phalanx interceptor or a UFO.
type Aircraft struct {
	Handle     Handle
	TemplateID string
	Name       string
	Kind       Kind

	Pos         geo.Position
	Destination geo.Position
	Heading     float64

	// Damage is the remaining hit points; zero or less means destroyed.
	Damage int
	Fuel   int
	// BaseStats are the template values Stats is recomputed from.
	BaseStats item.Stats
	Stats     item.Stats

	Weapons     []Slot
	Electronics []Slot
	Shield      Slot

	Status         Status
	AircraftTarget Handle
	SiteTarget     SiteRef
	Homebase       Handle

	Detected bool
	Landed   bool
	Mission  string
}

// IsUFO reports whether the aircraft is alien.
func (a *Aircraft) IsUFO() bool {
	return a.Kind == KindUFO
}

// InBase reports whether a Phalanx aircraft sits in its hangar.
func (a *Aircraft) InBase() bool {
	return a.Status == StatusHome || a.Status == StatusRefuel
}

// OnGeoscape reports whether the aircraft is flying.
func (a *Aircraft) OnGeoscape() bool {
	return !a.InBase() && a.Status != StatusNone && a.Status != StatusCrashed
}

// Destroyed reports whether the aircraft has no hit points left.
func (a *Aircraft) Destroyed() bool {
	return a.Damage <= 0
}

// Pursue sends the aircraft after target, heading for its current position.
func (a *Aircraft) Pursue(target *Aircraft) {
	a.AircraftTarget = target.Handle
	a.Destination = target.Pos
	a.Heading = geo.AngleOfPath(a.Pos, target.Pos)
	if a.Kind == KindPhalanx {
		a.Status = StatusUFO
	}
}

// ReturnToBase orders a Phalanx aircraft home.
func (a *Aircraft) ReturnToBase(home *Base) {
	a.AircraftTarget = Handle{}
	a.Status = StatusReturning
	if home != nil {
		a.Destination = home.Pos
		a.Heading = geo.AngleOfPath(a.Pos, home.Pos)
	}
}

// ClearTarget drops both aircraft and site targets.
func (a *Aircraft) ClearTarget() {
	a.AircraftTarget = Handle{}
	a.SiteTarget = SiteRef{}
}

// AllSlots returns every slot of the aircraft: weapons, electronics, then shield.
func (a *Aircraft) AllSlots() []*Slot {
	out := make([]*Slot, 0, len(a.Weapons)+len(a.Electronics)+1)
	for i := range a.Weapons {
		out = append(out, &a.Weapons[i])
	}
	for i := range a.Electronics {
		out = append(out, &a.Electronics[i])
	}
	return append(out, &a.Shield)
}
