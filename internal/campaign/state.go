package campaign

import (
	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/item"
)

// State is everything the air-combat simulation reads and mutates.
type State struct {
	Name string
	// Clock is the campaign time in seconds.
	Clock int64

	Catalog       *item.Catalog
	Aircraft      *Arena[Aircraft]
	Bases         *Arena[Base]
	Installations *Arena[Installation]
	Projectiles   *Registry
}

// NewState creates an empty campaign.
func NewState(name string, catalog *item.Catalog, maxProjectiles int) *State {
	return &State{
		Name:          name,
		Catalog:       catalog,
		Aircraft:      NewArena[Aircraft](),
		Bases:         NewArena[Base](),
		Installations: NewArena[Installation](),
		Projectiles:   NewRegistry(maxProjectiles),
	}
}

// AddBase registers a base and wires its batteries back to it.
func (s *State) AddBase(b *Base) Handle {
	h := s.Bases.Insert(b)
	b.Handle = h
	for i := range b.Batteries {
		b.Batteries[i].Slot.Owner = Owner{Kind: OwnerBase, Handle: h}
	}
	for i := range b.Lasers {
		b.Lasers[i].Slot.Owner = Owner{Kind: OwnerBase, Handle: h}
	}
	return h
}

// AddInstallation registers an installation and wires its batteries back to it.
func (s *State) AddInstallation(in *Installation) Handle {
	h := s.Installations.Insert(in)
	in.Handle = h
	for i := range in.Batteries {
		in.Batteries[i].Slot.Owner = Owner{Kind: OwnerInstallation, Handle: h}
	}
	return h
}

// AddAircraft registers an aircraft. A Phalanx aircraft joins its homebase hangar.
func (s *State) AddAircraft(a *Aircraft) Handle {
	h := s.Aircraft.Insert(a)
	a.Handle = h
	for _, slot := range a.AllSlots() {
		slot.Owner = Owner{Kind: OwnerAircraft, Handle: h}
	}
	if a.Kind == KindPhalanx {
		if base, ok := s.Bases.Get(a.Homebase); ok {
			base.Hangar = append(base.Hangar, h)
		}
	}
	return h
}

// RemoveAircraft deletes an aircraft; every handle to it goes stale.
// It returns false if the aircraft was already gone.
func (s *State) RemoveAircraft(h Handle) bool {
	a, ok := s.Aircraft.Get(h)
	if !ok {
		return false
	}
	if base, ok := s.Bases.Get(a.Homebase); ok {
		for i, hh := range base.Hangar {
			if hh == h {
				base.Hangar = append(base.Hangar[:i], base.Hangar[i+1:]...)
				break
			}
		}
	}
	return s.Aircraft.Remove(h)
}

// RemoveInstallation deletes an installation and clears every UFO site
// target pointing at it.
func (s *State) RemoveInstallation(h Handle) bool {
	if !s.Installations.Remove(h) {
		return false
	}
	ref := SiteRef{Kind: SiteInstallation, Handle: h}
	s.Aircraft.Each(func(_ Handle, a *Aircraft) bool {
		if a.SiteTarget == ref {
			a.SiteTarget = SiteRef{}
		}
		return true
	})
	return true
}

// GetAircraft resolves an aircraft handle.
func (s *State) GetAircraft(h Handle) (*Aircraft, bool) {
	return s.Aircraft.Get(h)
}

// GetBase resolves a base handle.
func (s *State) GetBase(h Handle) (*Base, bool) {
	return s.Bases.Get(h)
}

// GetInstallation resolves an installation handle.
func (s *State) GetInstallation(h Handle) (*Installation, bool) {
	return s.Installations.Get(h)
}

// SitePosition returns the position of a base or installation.
func (s *State) SitePosition(ref SiteRef) (geo.Position, bool) {
	switch ref.Kind {
	case SiteBase:
		if b, ok := s.Bases.Get(ref.Handle); ok {
			return b.Pos, true
		}
	case SiteInstallation:
		if in, ok := s.Installations.Get(ref.Handle); ok {
			return in.Pos, true
		}
	}
	return geo.Position{}, false
}

// SiteName returns the name of a base or installation.
func (s *State) SiteName(ref SiteRef) string {
	switch ref.Kind {
	case SiteBase:
		if b, ok := s.Bases.Get(ref.Handle); ok {
			return b.Name
		}
	case SiteInstallation:
		if in, ok := s.Installations.Get(ref.Handle); ok {
			return in.Name
		}
	}
	return ""
}

// UFOs returns every live UFO in handle order.
func (s *State) UFOs() []*Aircraft {
	return s.aircraftOfKind(KindUFO)
}

// PhalanxAircraft returns every live Phalanx aircraft in handle order.
func (s *State) PhalanxAircraft() []*Aircraft {
	return s.aircraftOfKind(KindPhalanx)
}

func (s *State) aircraftOfKind(k Kind) []*Aircraft {
	var out []*Aircraft
	s.Aircraft.Each(func(_ Handle, a *Aircraft) bool {
		if a.Kind == k {
			out = append(out, a)
		}
		return true
	})
	return out
}
