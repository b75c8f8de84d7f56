package airfight

import (
	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/item"
)

// MoveAircraft advances every flying aircraft by dt seconds and counts down
// the reload timers of all aircraft weapons. UFOs reload an empty magazine on
// the spot.
func (e *Engine) MoveAircraft(dt int) {
	for _, a := range e.state.Aircraft.Values() {
		for i := range a.Weapons {
			slot := &a.Weapons[i]
			if slot.DelayNextShot > 0 {
				slot.DelayNextShot -= dt
			}
			if a.IsUFO() && slot.Item != nil && slot.AmmoLeft == 0 {
				e.equip.Reload(slot)
			}
		}
		if a.OnGeoscape() && !a.Landed {
			e.fly(a, dt)
		}
	}
}

func (e *Engine) fly(a *campaign.Aircraft, dt int) {
	switch a.Status {
	case campaign.StatusUFO, campaign.StatusIntercept:
		if target, ok := e.state.GetAircraft(a.AircraftTarget); ok {
			a.Destination = target.Pos
		}
	case campaign.StatusReturning:
		if home := e.homebase(a); home != nil {
			a.Destination = home.Pos
		}
	case campaign.StatusTransit, campaign.StatusMission:
	default:
		return
	}

	movement := a.Stats[item.StatSpeed] * float64(dt) / SecondsPerHour
	if geo.Distance(a.Pos, a.Destination) > movement {
		a.Pos, a.Heading = geo.NextPointInPath(movement, a.Pos, a.Destination)
		return
	}

	a.Pos = a.Destination
	switch a.Status {
	case campaign.StatusReturning:
		a.Status = campaign.StatusHome
		if a.Fuel < int(a.Stats[item.StatFuelSize]) {
			a.Status = campaign.StatusRefuel
		}
		e.log.Debug("aircraft back in base", "aircraft", a.Name)
	case campaign.StatusTransit:
		a.Status = campaign.StatusIdle
	}
}
