package airfight

import (
	"fmt"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/message"
	"github.com/OCAP2/airfight/pkg/core"
)

// role is the side-specific behaviour of a shooting aircraft.
type role interface {
	// cannotShootNow runs when every weapon is out of range or reloading.
	cannotShootNow(e *Engine, target *campaign.Aircraft)
	// noAmmo runs when no weapon can ever fire again.
	noAmmo(e *Engine)
	// afterShot runs once a projectile has left.
	afterShot(e *Engine, target *campaign.Aircraft)
}

type phalanxRole struct{ a *campaign.Aircraft }

type ufoRole struct{ ufo *campaign.Aircraft }

func roleOf(a *campaign.Aircraft) role {
	if a.IsUFO() {
		return ufoRole{ufo: a}
	}
	return phalanxRole{a: a}
}

func (r phalanxRole) cannotShootNow(_ *Engine, target *campaign.Aircraft) {
	if target != nil {
		r.a.Pursue(target)
	}
}

func (r phalanxRole) noAmmo(e *Engine) {
	e.msgs.Post("Notice", "Our aircraft has no more ammo left - returning to home base now.", message.Standard)
	e.record(core.CombatEvent{Type: core.EventReturnToBase, Attacker: r.a.Name, Position: toCore(r.a.Pos)})
	r.a.ReturnToBase(e.homebase(r.a))
}

func (r phalanxRole) afterShot(e *Engine, target *campaign.Aircraft) {
	if target != nil {
		e.ShootBack(target, r.a)
	}
}

func (r ufoRole) cannotShootNow(e *Engine, target *campaign.Aircraft) {
	if !r.ufo.SiteTarget.IsZero() || target == nil {
		return
	}
	e.sendPursuing(r.ufo, target)
}

func (r ufoRole) noAmmo(e *Engine) {
	r.ufo.ClearTarget()
	e.missions.ResumeMission(r.ufo)
}

func (r ufoRole) afterShot(e *Engine, target *campaign.Aircraft) {
	if r.ufo.Detected || !e.radar.InCoverage(r.ufo) {
		return
	}
	name := e.state.SiteName(r.ufo.SiteTarget)
	if target != nil {
		name = target.Name
	}
	e.msgs.Post("Notice", fmt.Sprintf("A UFO is shooting at %s", name), message.Standard)
	e.radar.MarkDetected(r.ufo)
	e.radar.NotifyAll(r.ufo)
}

// ExecuteActions lets shooter act against target for one tick: fire the best
// ready weapon, close in, or give up. target is nil for a UFO attacking the
// site in its SiteTarget.
func (e *Engine) ExecuteActions(shooter, target *campaign.Aircraft) {
	var (
		aimPos geo.Position
		aim    campaign.Target
	)
	switch {
	case target != nil:
		aimPos = target.Pos
		aim = campaign.Target{Kind: campaign.TargetAircraft, Handle: target.Handle}
	case !shooter.SiteTarget.IsZero():
		pos, ok := e.state.SitePosition(shooter.SiteTarget)
		if !ok {
			return
		}
		aimPos = pos
		aim = campaign.Target{Kind: campaign.TargetBase, Handle: shooter.SiteTarget.Handle}
		if shooter.SiteTarget.Kind == campaign.SiteInstallation {
			aim.Kind = campaign.TargetInstallation
		}
	default:
		return
	}

	r := roleOf(shooter)
	choice := campaign.ChooseWeapon(shooter.Weapons, shooter.Pos, aimPos)
	switch choice.Kind {
	case campaign.Ready:
		idx, _ := choice.Ready()
		slot := &shooter.Weapons[idx]
		probability := e.ProbabilityToHit(shooter, target, slot)
		p, err := e.AddProjectile(Shooter{Aircraft: shooter}, aim, slot)
		if err != nil {
			return
		}
		slot.DelayNextShot = max(slot.DelayNextShot, p.Item.WeaponDelay)
		e.rollMiss(p, probability, shooter.IsUFO())
		r.afterShot(e, target)
	case campaign.Waiting:
		r.cannotShootNow(e, target)
	default:
		r.noAmmo(e)
	}
}

// ShootBack gives ufo, just fired upon by phalanx, the chance to answer.
// A UFO busy with a site or with an aircraft still on the geoscape fires at
// that target instead. One whose aircraft target has left the geoscape drops
// it and resumes its mission. Otherwise it turns on phalanx.
func (e *Engine) ShootBack(ufo, phalanx *campaign.Aircraft) {
	if !ufo.SiteTarget.IsZero() {
		if _, ok := e.state.SitePosition(ufo.SiteTarget); ok {
			e.ExecuteActions(ufo, nil)
			return
		}
		ufo.SiteTarget = campaign.SiteRef{}
	}
	if !ufo.AircraftTarget.IsZero() {
		if cur, ok := e.state.GetAircraft(ufo.AircraftTarget); ok && cur.OnGeoscape() {
			e.ExecuteActions(ufo, cur)
			return
		}
		ufo.AircraftTarget = campaign.Handle{}
		e.missions.ResumeMission(ufo)
		return
	}
	if phalanx.OnGeoscape() {
		e.sendPursuing(ufo, phalanx)
	}
}

// sendPursuing puts ufo on an intercept course toward target, or back in
// transit when it has nothing left to fire.
func (e *Engine) sendPursuing(ufo, target *campaign.Aircraft) {
	if campaign.ChooseWeapon(ufo.Weapons, ufo.Pos, target.Pos).Kind == campaign.Unavailable {
		ufo.Status = campaign.StatusTransit
		ufo.ClearTarget()
		return
	}
	ufo.Pursue(target)
	ufo.Status = campaign.StatusIntercept
}
