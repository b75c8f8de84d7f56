package airfight

import (
	"context"
	"fmt"
	"math"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/item"
	"github.com/OCAP2/airfight/pkg/core"
)

// MinMissOffset is the smallest distance, in degrees along each axis, by
// which a missed shot lands away from its target.
const MinMissOffset = 0.1

// Shooter is who fires a projectile: an aircraft, or a base or installation.
type Shooter struct {
	Aircraft *campaign.Aircraft
	Site     campaign.SiteRef
}

// AddProjectile fires the weapon in slot from shooter at aim. A full registry
// or a slot without ammo fails without any side effect.
func (e *Engine) AddProjectile(shooter Shooter, aim campaign.Target, slot *campaign.Slot) (*campaign.Projectile, error) {
	if e.state.Projectiles.Full() {
		e.log.Debug("projectile not fired", "error", ErrRegistryFull)
		return nil, ErrRegistryFull
	}
	if slot.Ammo == nil || slot.Item == nil {
		e.log.Error("projectile not fired", "error", ErrNoAmmo, "slot", slot.Index)
		return nil, ErrNoAmmo
	}

	p := &campaign.Projectile{
		Item:    slot.Ammo,
		Bullets: slot.Item.Bullets || slot.Ammo.Bullets,
		Laser:   slot.Item.Laser || slot.Ammo.Laser,
	}

	var attacker string
	if shooter.Aircraft != nil {
		p.Attacker = shooter.Aircraft.Handle
		p.Pos = shooter.Aircraft.Pos
		attacker = shooter.Aircraft.Name
	} else {
		pos, ok := e.state.SitePosition(shooter.Site)
		if !ok {
			return nil, fmt.Errorf("firing from %v: unknown site", shooter.Site)
		}
		p.AttackingSite = shooter.Site
		p.Pos = pos
		attacker = e.state.SiteName(shooter.Site)
	}
	p.ProjectedPos = p.Pos

	p.Target = aim
	var target string
	switch aim.Kind {
	case campaign.TargetBase:
		ref := campaign.SiteRef{Kind: campaign.SiteBase, Handle: aim.Handle}
		p.IdleTarget, _ = e.state.SitePosition(ref)
		target = e.state.SiteName(ref)
	case campaign.TargetInstallation:
		ref := campaign.SiteRef{Kind: campaign.SiteInstallation, Handle: aim.Handle}
		p.IdleTarget, _ = e.state.SitePosition(ref)
		target = e.state.SiteName(ref)
	case campaign.TargetAircraft:
		target = e.aircraftName(aim.Handle)
	}

	e.state.Projectiles.Add(p)

	if slot.AmmoLeft != campaign.AmmoUnlimited {
		slot.AmmoLeft--
		if slot.AmmoLeft <= 0 {
			e.equip.Reload(slot)
		}
	}

	isUFO := shooter.Aircraft != nil && shooter.Aircraft.IsUFO()
	e.metrics.shots.Add(context.Background(), 1, kindAttr(isUFO))
	e.record(core.CombatEvent{
		Type:     core.EventShot,
		Attacker: attacker,
		Target:   target,
		Item:     p.Item.ID,
		Position: toCore(p.Pos),
	})
	return p, nil
}

// RemoveProjectile takes p out of the registry.
func (e *Engine) RemoveProjectile(p *campaign.Projectile) bool {
	return e.state.Projectiles.Remove(p.Index)
}

// missOffset is the per-axis shift of a missed shot: a third of the distance
// scaled by u-0.5, at least MinMissOffset away from zero. u is uniform in [0,1).
func missOffset(distance, u float64) float64 {
	offset := (distance / 3) * (u - 0.5)
	if math.Abs(offset) < MinMissOffset {
		offset = math.Copysign(MinMissOffset, offset)
	}
	return offset
}

// MissTarget turns p into a shot at an idle point near its target. With
// returnToBase set, a Phalanx attacker with a homebase is also sent home.
func (e *Engine) MissTarget(p *campaign.Projectile, returnToBase bool) {
	dest := p.IdleTarget
	if p.Target.Kind == campaign.TargetAircraft {
		if a, ok := e.state.GetAircraft(p.Target.Handle); ok {
			dest = a.Pos
		}
	}

	offset := missOffset(geo.Distance(p.Pos, dest), e.rng.Float64())
	p.Retarget(dest.Shift(offset))

	if !returnToBase {
		return
	}
	attacker, ok := e.state.GetAircraft(p.Attacker)
	if !ok || attacker.IsUFO() {
		return
	}
	if home, ok := e.state.GetBase(attacker.Homebase); ok {
		attacker.ReturnToBase(home)
	}
}

// destination resolves where p is flying to. A projectile whose aimed
// aircraft no longer exists becomes an idle shot that ends where it is.
func (e *Engine) destination(p *campaign.Projectile) geo.Position {
	if p.Target.Kind == campaign.TargetAircraft {
		if a, ok := e.state.GetAircraft(p.Target.Handle); ok {
			return a.Pos
		}
		p.Retarget(p.Pos)
	}
	return p.IdleTarget
}

// ProjectileReachedTarget reports whether p arrives this step: it is closer
// to its destination than movement, or it has flown past its weapon range.
func (e *Engine) ProjectileReachedTarget(p *campaign.Projectile, movement float64) bool {
	if geo.Distance(e.destination(p), p.Pos) < movement {
		return true
	}
	traveled := float64(p.Time) * p.Item.WeaponSpeed / SecondsPerHour
	return traveled > p.Item.Stats[item.StatRange]
}

// CampaignRunProjectiles moves every projectile by dt seconds and resolves
// those that arrive. The registry is walked from the end since arrivals are
// removed in place.
func (e *Engine) CampaignRunProjectiles(dt int) {
	reg := e.state.Projectiles
	for idx := reg.Len() - 1; idx >= 0; idx-- {
		p := reg.At(idx)
		movement := float64(dt) * p.Item.WeaponSpeed / SecondsPerHour
		p.Time += dt

		if e.ProjectileReachedTarget(p, movement) {
			switch p.Target.Kind {
			case campaign.TargetBase, campaign.TargetInstallation:
				e.ProjectileHitsBase(p)
			case campaign.TargetAircraft:
				e.ProjectileHits(p)
			}
			e.RemoveProjectile(p)
			continue
		}

		dest := e.destination(p)
		next, _ := geo.NextPointInPath(movement, p.Pos, dest)
		projected, angle := geo.NextPointInPath(movement, next, dest)
		p.Angle = angle
		p.Pos = next
		p.ProjectedPos = projected
	}
	e.inFlight.Store(int64(reg.Len()))
}
