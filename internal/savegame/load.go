package savegame

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/item"
	"github.com/OCAP2/airfight/pkg/core"
)

// Loader rebuilds campaigns from snapshots against an item catalog.
type Loader struct {
	Catalog *item.Catalog
	// MaxProjectiles is the registry capacity of loaded campaigns; it grows
	// to fit the snapshot when smaller.
	MaxProjectiles int
	Log            *slog.Logger
}

// Load rebuilds a campaign with the default loader settings.
func Load(snap *core.Snapshot, catalog *item.Catalog) (*campaign.State, error) {
	return (&Loader{Catalog: catalog}).Load(snap)
}

type loadHandles struct {
	aircraft      []campaign.Handle
	bases         []campaign.Handle
	installations []campaign.Handle
}

func resolve(hs []campaign.Handle, r core.Ref) (campaign.Handle, bool) {
	if r.Index < 0 || r.Index >= len(hs) {
		return campaign.Handle{}, false
	}
	return hs[r.Index], true
}

// Load rebuilds the campaign in snap. A projectile whose ammo is not in the
// catalog rejects the whole snapshot with item.ErrUnknownItem; an unknown
// item in a slot leaves that slot empty.
func (l *Loader) Load(snap *core.Snapshot) (*campaign.State, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if l.Catalog == nil {
		return nil, ErrNoCatalog
	}
	log := l.Log
	if log == nil {
		log = slog.Default()
	}

	ammo := make([]*item.Item, len(snap.Projectiles))
	for i, ps := range snap.Projectiles {
		it, err := l.Catalog.Lookup(ps.AmmoID)
		if err != nil {
			return nil, fmt.Errorf("projectile %d: %w", i, err)
		}
		ammo[i] = it
	}

	state := campaign.NewState(snap.Name, l.Catalog, max(l.MaxProjectiles, len(snap.Projectiles)))
	state.Clock = snap.Clock
	var hs loadHandles

	for _, bs := range snap.Bases {
		b := &campaign.Base{
			Name:          bs.Name,
			Pos:           geo.Position{X: bs.Pos.X, Y: bs.Pos.Y},
			Founded:       bs.Founded,
			UnderAttack:   bs.UnderAttack,
			Powered:       bs.Powered,
			Batteries:     l.loadBatteries(log, bs.Batteries, item.TypeBaseMissile),
			Lasers:        l.loadBatteries(log, bs.Lasers, item.TypeBaseLaser),
			BatteryDamage: bs.BatteryDamage,
			BaseDamage:    bs.BaseDamage,
			Storage:       make(map[string]int, len(bs.Storage)),
		}
		for _, bld := range bs.Buildings {
			t, err := campaign.ParseBuildingType(bld.Type)
			if err != nil {
				log.Warn("building type unknown, keeping it as generic", "base", bs.Name, "building", bld.ID, "error", err)
			}
			b.Buildings = append(b.Buildings, campaign.Building{ID: bld.ID, Name: bld.Name, Type: t})
		}
		for k, v := range bs.Storage {
			b.Storage[k] = v
		}
		hs.bases = append(hs.bases, state.AddBase(b))
	}

	for _, is := range snap.Installations {
		in := &campaign.Installation{
			Name:      is.Name,
			Pos:       geo.Position{X: is.Pos.X, Y: is.Pos.Y},
			Damage:    is.Damage,
			Batteries: l.loadBatteries(log, is.Batteries, item.TypeBaseMissile),
		}
		if is.Working {
			in.Status = campaign.InstallationWorking
		}
		hs.installations = append(hs.installations, state.AddInstallation(in))
	}

	loaded := make([]*campaign.Aircraft, len(snap.Aircraft))
	for i, as := range snap.Aircraft {
		a := &campaign.Aircraft{
			TemplateID:  as.TemplateID,
			Name:        as.Name,
			Pos:         geo.Position{X: as.Pos.X, Y: as.Pos.Y},
			Destination: geo.Position{X: as.Destination.X, Y: as.Destination.Y},
			Heading:     as.Heading,
			Damage:      as.Damage,
			Fuel:        as.Fuel,
			BaseStats:   loadStats(log, as.Name, as.BaseStats),
			Stats:       loadStats(log, as.Name, as.Stats),
			Weapons:     l.loadSlots(log, as.Weapons, item.TypeWeapon),
			Electronics: l.loadSlots(log, as.Electronics, item.TypeElectronics),
			Shield:      l.loadSlot(log, as.Shield, 0, item.TypeShield),
			Detected:    as.Detected,
			Landed:      as.Landed,
			Mission:     as.Mission,
		}
		if as.UFO {
			a.Kind = campaign.KindUFO
		}
		status, err := campaign.ParseStatus(as.Status)
		if err != nil {
			log.Warn("aircraft status unknown", "aircraft", as.Name, "error", err)
		}
		a.Status = status
		if h, ok := resolve(hs.bases, as.Homebase); ok && as.Homebase.Kind == core.RefBase {
			a.Homebase = h
		}
		state.AddAircraft(a)
		hs.aircraft = append(hs.aircraft, a.Handle)
		loaded[i] = a
	}

	// targets may point at aircraft loaded after their holder
	for i, as := range snap.Aircraft {
		a := loaded[i]
		if h, ok := hs.aircraftHandle(as.AircraftTarget); ok {
			a.AircraftTarget = h
		}
		a.SiteTarget = hs.site(as.SiteTarget)
	}
	for i, bs := range snap.Bases {
		b, _ := state.GetBase(hs.bases[i])
		hs.batteryTargets(b.Batteries, bs.Batteries)
		hs.batteryTargets(b.Lasers, bs.Lasers)
	}
	for i, is := range snap.Installations {
		in, _ := state.GetInstallation(hs.installations[i])
		hs.batteryTargets(in.Batteries, is.Batteries)
	}

	for i, ps := range snap.Projectiles {
		p := &campaign.Projectile{
			Item:          ammo[i],
			Pos:           geo.Position{X: ps.Pos.X, Y: ps.Pos.Y},
			ProjectedPos:  geo.Position{X: ps.ProjectedPos.X, Y: ps.ProjectedPos.Y},
			IdleTarget:    geo.Position{X: ps.IdleTarget.X, Y: ps.IdleTarget.Y},
			AttackingSite: hs.site(ps.AttackingSite),
			Time:          ps.Time,
			Angle:         ps.Angle,
			Bullets:       ps.Bullets,
			Laser:         ps.Laser,
		}
		if h, ok := hs.aircraftHandle(ps.Attacker); ok {
			p.Attacker = h
		}
		switch site := hs.site(ps.Target); {
		case ps.Target.Kind == core.RefAircraft:
			if h, ok := hs.aircraftHandle(ps.Target); ok {
				p.Target = campaign.Target{Kind: campaign.TargetAircraft, Handle: h}
			}
		case site.Kind == campaign.SiteBase:
			p.Target = campaign.Target{Kind: campaign.TargetBase, Handle: site.Handle}
		case site.Kind == campaign.SiteInstallation:
			p.Target = campaign.Target{Kind: campaign.TargetInstallation, Handle: site.Handle}
		}
		state.Projectiles.Add(p)
	}

	log.Debug("campaign loaded", "campaign", snap.Name,
		"bases", len(hs.bases), "aircraft", len(hs.aircraft), "projectiles", state.Projectiles.Len())
	return state, nil
}

func (hs loadHandles) aircraftHandle(r core.Ref) (campaign.Handle, bool) {
	if r.Kind != core.RefAircraft {
		return campaign.Handle{}, false
	}
	return resolve(hs.aircraft, r)
}

func (hs loadHandles) site(r core.Ref) campaign.SiteRef {
	switch r.Kind {
	case core.RefBase:
		if h, ok := resolve(hs.bases, r); ok {
			return campaign.SiteRef{Kind: campaign.SiteBase, Handle: h}
		}
	case core.RefInstallation:
		if h, ok := resolve(hs.installations, r); ok {
			return campaign.SiteRef{Kind: campaign.SiteInstallation, Handle: h}
		}
	}
	return campaign.SiteRef{}
}

func (hs loadHandles) batteryTargets(batteries []campaign.Battery, saved []core.BatteryState) {
	for i := range batteries {
		if h, ok := hs.aircraftHandle(saved[i].Target); ok {
			batteries[i].Target = h
		}
	}
}

// lookup resolves a slot item id. Unknown ids are logged and dropped.
func (l *Loader) lookup(log *slog.Logger, itemID string) *item.Item {
	if itemID == "" {
		return nil
	}
	it, err := l.Catalog.Lookup(itemID)
	if err != nil {
		log.Warn("slot item dropped", "error", err)
		return nil
	}
	return it
}

func (l *Loader) loadSlot(log *slog.Logger, ss core.SlotState, idx int, typ item.Type) campaign.Slot {
	s := campaign.Slot{
		Index:            idx,
		Type:             typ,
		Weight:           item.Weight(ss.Weight),
		Item:             l.lookup(log, ss.ItemID),
		NextItem:         l.lookup(log, ss.NextItemID),
		Ammo:             l.lookup(log, ss.AmmoID),
		NextAmmo:         l.lookup(log, ss.NextAmmoID),
		AmmoLeft:         ss.AmmoLeft,
		DelayNextShot:    ss.DelayNextShot,
		InstallationTime: ss.InstallationTime,
	}
	if s.Item == nil {
		s = campaign.Slot{Index: idx, Type: typ, Weight: s.Weight}
	} else if s.Ammo == nil {
		s.AmmoLeft = 0
	}
	return s
}

func (l *Loader) loadSlots(log *slog.Logger, saved []core.SlotState, typ item.Type) []campaign.Slot {
	out := make([]campaign.Slot, len(saved))
	for i, ss := range saved {
		out[i] = l.loadSlot(log, ss, i, typ)
	}
	return out
}

func (l *Loader) loadBatteries(log *slog.Logger, saved []core.BatteryState, typ item.Type) []campaign.Battery {
	out := make([]campaign.Battery, len(saved))
	for i, bs := range saved {
		out[i] = campaign.Battery{Slot: l.loadSlot(log, bs.Slot, i, typ), AutoFire: bs.AutoFire}
	}
	return out
}

func loadStats(log *slog.Logger, owner string, saved map[string]float64) item.Stats {
	var st item.Stats
	for name, v := range saved {
		s, err := item.ParseStat(name)
		if err != nil {
			log.Warn("aircraft stat dropped", "aircraft", owner, "error", err)
			continue
		}
		st[s] = v
	}
	return st
}
