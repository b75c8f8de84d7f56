package airfight

import (
	"fmt"

	"github.com/OCAP2/airfight/internal/campaign"
)

// ListProjectiles describes every projectile in flight, one line per fact.
func (e *Engine) ListProjectiles() []string {
	var lines []string
	for i, p := range e.state.Projectiles.All() {
		lines = append(lines,
			fmt.Sprintf("%d. (idx: %d)", i, p.Index),
			fmt.Sprintf("... type '%s'", p.Item.ID),
		)
		if a, ok := e.state.GetAircraft(p.Attacker); ok {
			lines = append(lines, fmt.Sprintf("... shooting aircraft '%s'", a.Name))
		} else {
			lines = append(lines, "... base is shooting, or shooting aircraft is destroyed")
		}

		switch p.Target.Kind {
		case campaign.TargetAircraft:
			lines = append(lines, fmt.Sprintf("... aiming aircraft '%s'", e.aircraftName(p.Target.Handle)))
		case campaign.TargetBase, campaign.TargetInstallation:
			lines = append(lines, fmt.Sprintf("... aiming %s at (%.02f, %.02f)", p.Target.Kind, p.IdleTarget.X, p.IdleTarget.Y))
		default:
			lines = append(lines, fmt.Sprintf("... aiming idle target at (%.02f, %.02f)", p.IdleTarget.X, p.IdleTarget.Y))
		}
	}
	return lines
}
