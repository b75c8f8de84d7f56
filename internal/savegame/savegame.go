// Package savegame converts a running campaign to and from its
// storage-agnostic snapshot.
package savegame

import (
	"errors"
	"time"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/item"
	"github.com/OCAP2/airfight/pkg/core"
)

var (
	// ErrNilSnapshot is returned when Load is given nothing to load.
	ErrNilSnapshot = errors.New("nil snapshot")
	// ErrNoCatalog is returned when a loader has no item catalog.
	ErrNoCatalog = errors.New("no item catalog")
)

// index maps live handles to their position in the snapshot slices.
type index struct {
	aircraft      map[campaign.Handle]int
	bases         map[campaign.Handle]int
	installations map[campaign.Handle]int
}

func positions[T any](a *campaign.Arena[T]) map[campaign.Handle]int {
	out := make(map[campaign.Handle]int, a.Len())
	i := 0
	a.Each(func(h campaign.Handle, _ *T) bool {
		out[h] = i
		i++
		return true
	})
	return out
}

func (ix index) aircraftRef(h campaign.Handle) core.Ref {
	if i, ok := ix.aircraft[h]; ok {
		return core.Ref{Kind: core.RefAircraft, Index: i}
	}
	return core.Ref{}
}

func (ix index) baseRef(h campaign.Handle) core.Ref {
	if i, ok := ix.bases[h]; ok {
		return core.Ref{Kind: core.RefBase, Index: i}
	}
	return core.Ref{}
}

func (ix index) siteRef(r campaign.SiteRef) core.Ref {
	switch r.Kind {
	case campaign.SiteBase:
		return ix.baseRef(r.Handle)
	case campaign.SiteInstallation:
		if i, ok := ix.installations[r.Handle]; ok {
			return core.Ref{Kind: core.RefInstallation, Index: i}
		}
	}
	return core.Ref{}
}

func pos(p geo.Position) core.Position {
	return core.Position{X: p.X, Y: p.Y}
}

func id(it *item.Item) string {
	if it == nil {
		return ""
	}
	return it.ID
}

func saveSlot(s *campaign.Slot) core.SlotState {
	return core.SlotState{
		Weight:           int(s.Weight),
		ItemID:           id(s.Item),
		NextItemID:       id(s.NextItem),
		AmmoID:           id(s.Ammo),
		NextAmmoID:       id(s.NextAmmo),
		AmmoLeft:         s.AmmoLeft,
		DelayNextShot:    s.DelayNextShot,
		InstallationTime: s.InstallationTime,
	}
}

func saveSlots(slots []campaign.Slot) []core.SlotState {
	out := make([]core.SlotState, len(slots))
	for i := range slots {
		out[i] = saveSlot(&slots[i])
	}
	return out
}

func saveBatteries(ix index, batteries []campaign.Battery) []core.BatteryState {
	out := make([]core.BatteryState, len(batteries))
	for i := range batteries {
		out[i] = core.BatteryState{
			Slot:     saveSlot(&batteries[i].Slot),
			Target:   ix.aircraftRef(batteries[i].Target),
			AutoFire: batteries[i].AutoFire,
		}
	}
	return out
}

func saveStats(st item.Stats) map[string]float64 {
	out := make(map[string]float64)
	for i, v := range st {
		if v != 0 {
			out[item.Stat(i).String()] = v
		}
	}
	return out
}

// Save copies the campaign into a snapshot.
func Save(state *campaign.State) *core.Snapshot {
	ix := index{
		aircraft:      positions(state.Aircraft),
		bases:         positions(state.Bases),
		installations: positions(state.Installations),
	}
	snap := &core.Snapshot{
		Name:    state.Name,
		Clock:   state.Clock,
		SavedAt: time.Now().UTC(),
	}

	for _, b := range state.Bases.Values() {
		bs := core.BaseState{
			Name:          b.Name,
			Pos:           pos(b.Pos),
			Founded:       b.Founded,
			UnderAttack:   b.UnderAttack,
			Powered:       b.Powered,
			Batteries:     saveBatteries(ix, b.Batteries),
			Lasers:        saveBatteries(ix, b.Lasers),
			BatteryDamage: b.BatteryDamage,
			BaseDamage:    b.BaseDamage,
			Storage:       make(map[string]int, len(b.Storage)),
		}
		for _, bld := range b.Buildings {
			bs.Buildings = append(bs.Buildings, core.BuildingState{ID: bld.ID, Name: bld.Name, Type: bld.Type.String()})
		}
		for k, v := range b.Storage {
			bs.Storage[k] = v
		}
		snap.Bases = append(snap.Bases, bs)
	}

	for _, in := range state.Installations.Values() {
		snap.Installations = append(snap.Installations, core.InstallationState{
			Name:      in.Name,
			Pos:       pos(in.Pos),
			Working:   in.Status == campaign.InstallationWorking,
			Damage:    in.Damage,
			Batteries: saveBatteries(ix, in.Batteries),
		})
	}

	for _, a := range state.Aircraft.Values() {
		snap.Aircraft = append(snap.Aircraft, core.AircraftState{
			TemplateID:     a.TemplateID,
			Name:           a.Name,
			UFO:            a.IsUFO(),
			Pos:            pos(a.Pos),
			Destination:    pos(a.Destination),
			Heading:        a.Heading,
			Damage:         a.Damage,
			Fuel:           a.Fuel,
			BaseStats:      saveStats(a.BaseStats),
			Stats:          saveStats(a.Stats),
			Weapons:        saveSlots(a.Weapons),
			Electronics:    saveSlots(a.Electronics),
			Shield:         saveSlot(&a.Shield),
			Status:         a.Status.String(),
			AircraftTarget: ix.aircraftRef(a.AircraftTarget),
			SiteTarget:     ix.siteRef(a.SiteTarget),
			Homebase:       ix.baseRef(a.Homebase),
			Detected:       a.Detected,
			Landed:         a.Landed,
			Mission:        a.Mission,
		})
	}

	for _, p := range state.Projectiles.All() {
		ps := core.ProjectileState{
			AmmoID:        id(p.Item),
			Pos:           pos(p.Pos),
			ProjectedPos:  pos(p.ProjectedPos),
			IdleTarget:    pos(p.IdleTarget),
			Attacker:      ix.aircraftRef(p.Attacker),
			AttackingSite: ix.siteRef(p.AttackingSite),
			Time:          p.Time,
			Angle:         p.Angle,
			Bullets:       p.Bullets,
			Laser:         p.Laser,
		}
		switch p.Target.Kind {
		case campaign.TargetAircraft:
			ps.Target = ix.aircraftRef(p.Target.Handle)
		case campaign.TargetBase:
			ps.Target = ix.siteRef(campaign.SiteRef{Kind: campaign.SiteBase, Handle: p.Target.Handle})
		case campaign.TargetInstallation:
			ps.Target = ix.siteRef(campaign.SiteRef{Kind: campaign.SiteInstallation, Handle: p.Target.Handle})
		}
		snap.Projectiles = append(snap.Projectiles, ps)
	}
	return snap
}
