// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/model"
	"github.com/OCAP2/airfight/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

func positionToPoint(p core.Position) geom.Point {
	return geo.ToPoint(geo.Position{X: p.X, Y: p.Y})
}

func pointToPosition(pt geom.Point) core.Position {
	p, _ := geo.FromPoint(pt)
	return core.Position{X: p.X, Y: p.Y}
}

// detailsToJSON converts event details to datatypes.JSON for DB storage.
func detailsToJSON(details map[string]any) datatypes.JSON {
	if len(details) == 0 {
		return datatypes.JSON("{}")
	}
	data, err := json.Marshal(details)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// CoreToCombatEvent converts a core.CombatEvent to a GORM CombatEvent.
// CampaignID is left for the writer to stamp.
func CoreToCombatEvent(e core.CombatEvent) model.CombatEvent {
	return model.CombatEvent{
		Time:     e.Time,
		Clock:    e.Clock,
		Type:     string(e.Type),
		Attacker: e.Attacker,
		Target:   e.Target,
		Item:     e.Item,
		Position: positionToPoint(e.Position),
		Damage:   e.Damage,
		Details:  detailsToJSON(e.Details),
	}
}

// CombatEventToCore converts a GORM CombatEvent back to a core.CombatEvent.
func CombatEventToCore(e model.CombatEvent, campaign string) core.CombatEvent {
	out := core.CombatEvent{
		Campaign: campaign,
		Time:     e.Time,
		Clock:    e.Clock,
		Type:     core.EventType(e.Type),
		Attacker: e.Attacker,
		Target:   e.Target,
		Item:     e.Item,
		Position: pointToPosition(e.Position),
		Damage:   e.Damage,
	}
	if len(e.Details) > 0 && string(e.Details) != "{}" {
		_ = json.Unmarshal(e.Details, &out.Details)
	}
	return out
}

// SnapshotToSaveGame converts a snapshot into a save row with its aircraft
// and projectile children. CampaignID is left for the caller to set.
func SnapshotToSaveGame(s *core.Snapshot) (model.SaveGame, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return model.SaveGame{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	save := model.SaveGame{
		SavedAt:  s.SavedAt,
		Clock:    s.Clock,
		Snapshot: datatypes.JSON(data),
	}
	for _, a := range s.Aircraft {
		save.Aircraft = append(save.Aircraft, model.SavedAircraft{
			Name:     a.Name,
			UFO:      a.UFO,
			Status:   a.Status,
			Damage:   a.Damage,
			Position: positionToPoint(a.Pos),
		})
	}
	for _, p := range s.Projectiles {
		sp := model.SavedProjectile{
			Ammo:     p.AmmoID,
			Position: positionToPoint(p.Pos),
			Time:     p.Time,
		}
		path, err := geo.FlightPath(
			geo.Position{X: p.Pos.X, Y: p.Pos.Y},
			geo.Position{X: p.ProjectedPos.X, Y: p.ProjectedPos.Y},
		)
		if err == nil {
			sp.Path = path
		}
		save.Projectiles = append(save.Projectiles, sp)
	}
	return save, nil
}

// SaveGameToSnapshot restores the snapshot stored in a save row.
func SaveGameToSnapshot(s model.SaveGame) (*core.Snapshot, error) {
	var snap core.Snapshot
	if err := json.Unmarshal(s.Snapshot, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot of save %d: %w", s.ID, err)
	}
	return &snap, nil
}
