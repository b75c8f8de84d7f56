package airfight

import (
	"context"
	"fmt"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/item"
	"github.com/OCAP2/airfight/internal/message"
	"github.com/OCAP2/airfight/pkg/core"
)

// ProbabilityToHit returns the chance that a shot from slot hits. shooter is
// nil for base and installation fire, target is nil when a site is aimed at.
// The result may exceed 1. A target without ECM does not divide the chance.
func (e *Engine) ProbabilityToHit(shooter, target *campaign.Aircraft, slot *campaign.Slot) float64 {
	if slot.Item == nil {
		e.log.Error("no weapon assigned to firing slot", "slot", slot.Index)
		return 0
	}
	if slot.Ammo == nil {
		e.log.Error("no ammo in weapon of firing slot", "slot", slot.Index, "weapon", slot.Item.ID)
		return 0
	}

	probability := slot.Ammo.Stats[item.StatAccuracy]
	if shooter != nil {
		probability *= shooter.Stats[item.StatAccuracy] / 100
	}
	if target != nil {
		if ecm := target.Stats[item.StatECM]; ecm > 0 {
			probability /= ecm / 100
		}
	}
	return probability
}

// GetDamage returns the hit points ammo removes from target. A target that is
// already destroyed takes no damage. The result may be zero or negative when
// the shield absorbs the shot.
func GetDamage(ammo *item.Item, target *campaign.Aircraft) int {
	if target.Damage <= 0 {
		return 0
	}
	return int(ammo.WeaponDamage - target.Stats[item.StatShield])
}

// rollMiss draws against probability and turns p into a miss when the draw
// is above it.
func (e *Engine) rollMiss(p *campaign.Projectile, probability float64, ufo bool) {
	if e.rng.Float64() <= probability {
		return
	}
	e.metrics.misses.Add(context.Background(), 1, kindAttr(ufo))
	e.record(core.CombatEvent{
		Type:     core.EventMiss,
		Attacker: e.attackerName(p),
		Item:     p.Item.ID,
		Position: toCore(p.Pos),
	})
	e.MissTarget(p, false)
}

func (e *Engine) attackerName(p *campaign.Projectile) string {
	if a, ok := e.state.GetAircraft(p.Attacker); ok {
		return a.Name
	}
	return e.state.SiteName(p.AttackingSite)
}

// ProjectileHits resolves p arriving at the aircraft it was aimed at.
func (e *Engine) ProjectileHits(p *campaign.Projectile) {
	target, ok := e.state.GetAircraft(p.Target.Handle)
	if !ok || target.InBase() {
		return
	}

	damage := GetDamage(p.Item, target)
	if damage <= 0 {
		return
	}
	target.Damage -= damage

	e.metrics.hits.Add(context.Background(), 1, kindAttr(!target.IsUFO()))
	e.record(core.CombatEvent{
		Type:     core.EventHit,
		Attacker: e.attackerName(p),
		Target:   target.Name,
		Item:     p.Item.ID,
		Position: toCore(target.Pos),
		Damage:   damage,
	})
	e.log.Debug("aircraft hit", "target", target.Name, "damage", damage, "left", target.Damage)

	if target.Damage <= 0 {
		shooter, _ := e.state.GetAircraft(p.Attacker)
		e.ActionsAfterAirfight(shooter, target, target.IsUFO())
	}
}

// ActionsAfterAirfight settles the destruction of aircraft. shooter may be
// nil. Calling it again for the same aircraft does nothing.
func (e *Engine) ActionsAfterAirfight(shooter, destroyed *campaign.Aircraft, phalanxWon bool) {
	if _, ok := e.state.GetAircraft(destroyed.Handle); !ok {
		return
	}
	if phalanxWon && destroyed.Status == campaign.StatusCrashed {
		return
	}

	reg := e.state.Projectiles
	for i := 0; i < reg.Len(); i++ {
		p := reg.At(i)
		if p.Target.Kind == campaign.TargetAircraft && p.Target.Handle == destroyed.Handle {
			e.MissTarget(p, true)
		}
	}
	for i := 0; i < reg.Len(); i++ {
		if p := reg.At(i); p.Attacker == destroyed.Handle {
			p.Attacker = campaign.Handle{}
		}
	}

	var shooterName string
	if shooter != nil {
		shooterName = shooter.Name
	}
	e.metrics.destroyed.Add(context.Background(), 1, kindAttr(destroyed.IsUFO()))
	e.record(core.CombatEvent{
		Type:     core.EventDestroyed,
		Attacker: shooterName,
		Target:   destroyed.Name,
		Position: toCore(destroyed.Pos),
	})

	if phalanxWon {
		if e.terrain.IsWater(destroyed.Pos) {
			e.msgs.Post("Interception", "UFO interception successful -- UFO lost to sea.", message.Standard)
			e.record(core.CombatEvent{Type: core.EventLostAtSea, Target: destroyed.Name, Position: toCore(destroyed.Pos)})
			e.missions.ConcludeByUFOLoss(destroyed)
			return
		}
		e.record(core.CombatEvent{Type: core.EventCrashSite, Target: destroyed.Name, Position: toCore(destroyed.Pos)})
		e.missions.SpawnCrashSite(destroyed)
		return
	}

	for _, ufo := range e.state.UFOs() {
		if ufo.AircraftTarget == destroyed.Handle {
			ufo.AircraftTarget = campaign.Handle{}
		}
	}
	e.missions.NotifyAircraftRemoved(destroyed)
	e.state.RemoveAircraft(destroyed.Handle)

	if shooter != nil {
		if _, ok := e.state.GetAircraft(shooter.Handle); ok {
			e.missions.ResumeMission(shooter)
		}
	}
	e.msgs.Post("Interception", "You've lost the battle", message.Battle)
}

// ProjectileHitsBase resolves p arriving at the base or installation it was
// aimed at.
func (e *Engine) ProjectileHitsBase(p *campaign.Projectile) {
	switch p.Target.Kind {
	case campaign.TargetBase:
		if b, ok := e.state.GetBase(p.Target.Handle); ok {
			e.damageBase(p, b)
		}
	case campaign.TargetInstallation:
		if in, ok := e.state.GetInstallation(p.Target.Handle); ok {
			e.damageInstallation(p, in)
		}
	}
}

// damageBase splits the ammo damage at random between the battery and the
// structure pools. An exhausted pool is reset and costs one building.
func (e *Engine) damageBase(p *campaign.Projectile, b *campaign.Base) {
	total := p.Item.WeaponDamage
	toBatteries := int(e.rng.Float64() * total)
	b.BatteryDamage -= toBatteries
	b.BaseDamage -= int(total) - toBatteries

	e.metrics.hits.Add(context.Background(), 1, kindAttr(true))
	e.record(core.CombatEvent{
		Type:     core.EventBaseHit,
		Attacker: e.attackerName(p),
		Target:   b.Name,
		Item:     p.Item.ID,
		Position: toCore(b.Pos),
		Damage:   int(total),
		Details:  map[string]any{"batteries": toBatteries, "structure": int(total) - toBatteries},
	})

	if b.BatteryDamage <= 0 {
		b.BatteryDamage = campaign.MaxBatteryDamage
		e.destroyBattery(b)
	}
	if b.BaseDamage <= 0 {
		b.BaseDamage = campaign.MaxBaseDamage
		if n := len(b.Buildings); n > 0 {
			bld, _ := b.DestroyBuilding(e.rng.IntN(n))
			e.msgs.Post("Notice", fmt.Sprintf("You've lost a base facility (%s).", bld.Name), message.BaseAttack)
			e.buildingLost(b, bld)
		}
	}
}

// destroyBattery removes one missile or laser defence building, choosing the
// type at random when both exist.
func (e *Engine) destroyBattery(b *campaign.Base) {
	var types []campaign.BuildingType
	for _, t := range []campaign.BuildingType{campaign.BuildingMissile, campaign.BuildingLaser} {
		if b.HasBuilding(t) {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return
	}
	t := types[0]
	if len(types) > 1 {
		t = types[e.rng.IntN(len(types))]
	}

	bld, ok := b.DestroyBuilding(b.NthBuilding(t, e.rng.IntN(b.CountBuildings(t))))
	if !ok {
		return
	}
	if t == campaign.BuildingMissile {
		e.msgs.Post("Notice", "You've lost a missile battery system.", message.BaseAttack)
	} else {
		e.msgs.Post("Notice", "You've lost a laser battery system.", message.BaseAttack)
	}
	e.buildingLost(b, bld)
}

func (e *Engine) buildingLost(b *campaign.Base, bld campaign.Building) {
	e.log.Info("building destroyed", "base", b.Name, "building", bld.ID)
	e.record(core.CombatEvent{
		Type:     core.EventBuildingLost,
		Target:   b.Name,
		Item:     bld.ID,
		Position: toCore(b.Pos),
		Details:  map[string]any{"building": bld.Name},
	})
}

func (e *Engine) damageInstallation(p *campaign.Projectile, in *campaign.Installation) {
	damage := int(p.Item.WeaponDamage)
	in.Damage -= damage

	e.metrics.hits.Add(context.Background(), 1, kindAttr(true))
	e.record(core.CombatEvent{
		Type:     core.EventBaseHit,
		Attacker: e.attackerName(p),
		Target:   in.Name,
		Item:     p.Item.ID,
		Position: toCore(in.Pos),
		Damage:   damage,
	})
	if in.Damage > 0 {
		return
	}

	reg := e.state.Projectiles
	for i := 0; i < reg.Len(); i++ {
		q := reg.At(i)
		if q.Target.Kind == campaign.TargetInstallation && q.Target.Handle == in.Handle {
			q.Retarget(q.IdleTarget)
		}
	}
	e.msgs.Post("Notice", fmt.Sprintf("Installation %s was destroyed.", in.Name), message.Installation)
	e.record(core.CombatEvent{Type: core.EventInstallationLost, Target: in.Name, Position: toCore(in.Pos)})
	e.state.RemoveInstallation(in.Handle)
}
