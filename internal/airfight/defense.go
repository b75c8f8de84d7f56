package airfight

import (
	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/equip"
	"github.com/OCAP2/airfight/internal/geo"
)

// CampaignRunBaseDefense lets the defence batteries of every base and
// installation count down and fire at their targets.
func (e *Engine) CampaignRunBaseDefense(dt int) {
	for _, b := range e.state.Bases.Values() {
		if !b.Founded || b.UnderAttack {
			continue
		}
		e.prepareBatteries(b.Batteries, dt)
		e.prepareBatteries(b.Lasers, dt)

		if !equip.BaseCanShoot(b) {
			continue
		}
		site := campaign.SiteRef{Kind: campaign.SiteBase, Handle: b.Handle}
		if b.DefenceOperational(campaign.BuildingMissile) {
			e.siteShoot(site, b.Pos, b.Batteries)
		}
		if b.DefenceOperational(campaign.BuildingLaser) {
			e.siteShoot(site, b.Pos, b.Lasers)
		}
	}

	for _, in := range e.state.Installations.Values() {
		e.prepareBatteries(in.Batteries, dt)
		if !equip.InstallationCanShoot(in) {
			continue
		}
		site := campaign.SiteRef{Kind: campaign.SiteInstallation, Handle: in.Handle}
		e.siteShoot(site, in.Pos, in.Batteries)
	}
}

func (e *Engine) prepareBatteries(batteries []campaign.Battery, dt int) {
	for i := range batteries {
		slot := &batteries[i].Slot
		if slot.DelayNextShot > 0 {
			slot.DelayNextShot -= dt
		}
		if slot.Item != nil && slot.AmmoLeft <= 0 && slot.AmmoLeft != campaign.AmmoUnlimited {
			e.equip.Reload(slot)
		}
	}
}

// autoTarget gives an idle auto-firing battery a UFO: one attacking this site
// if in range, else the closest visible UFO it can fire at.
func (e *Engine) autoTarget(site campaign.SiteRef, pos geo.Position, bat *campaign.Battery) {
	if !bat.AutoFire || !bat.Target.IsZero() {
		return
	}

	var (
		closest  *campaign.Aircraft
		bestDist float64
	)
	for _, ufo := range e.state.UFOs() {
		if !e.radar.IsVisible(ufo) || ufo.Destroyed() {
			continue
		}
		d := geo.Distance(pos, ufo.Pos)
		if bat.Slot.Check(d) != campaign.CanShoot {
			continue
		}
		if ufo.SiteTarget == site {
			bat.Target = ufo.Handle
			return
		}
		if closest == nil || d < bestDist {
			closest, bestDist = ufo, d
		}
	}
	if closest != nil {
		bat.Target = closest.Handle
	}
}

// siteShoot fires every ready battery of a site at its target.
func (e *Engine) siteShoot(site campaign.SiteRef, pos geo.Position, batteries []campaign.Battery) {
	for i := range batteries {
		bat := &batteries[i]
		slot := &bat.Slot
		e.autoTarget(site, pos, bat)
		if bat.Target.IsZero() || slot.InstallationTime > 0 || slot.DelayNextShot > 0 {
			continue
		}

		target, ok := e.state.GetAircraft(bat.Target)
		if !ok || !e.radar.IsVisible(target) {
			bat.Target = campaign.Handle{}
			continue
		}

		distance := geo.Distance(pos, target.Pos)
		switch slot.Check(distance) {
		case campaign.Never:
			bat.Target = campaign.Handle{}
			continue
		case campaign.NotNow:
			continue
		}

		probability := e.ProbabilityToHit(nil, target, slot)
		aim := campaign.Target{Kind: campaign.TargetAircraft, Handle: target.Handle}
		p, err := e.AddProjectile(Shooter{Site: site}, aim, slot)
		if err != nil {
			continue
		}
		slot.DelayNextShot = max(slot.DelayNextShot, p.Item.WeaponDelay)
		e.rollMiss(p, probability, false)
	}
}
