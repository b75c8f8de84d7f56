package airfight

import (
	"log/slog"
	"sync"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/geo"
)

// Rand is the random source of the engine. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Radar answers detection questions about UFOs.
type Radar interface {
	// IsVisible reports whether the UFO is seen on the geoscape.
	IsVisible(ufo *campaign.Aircraft) bool
	// InCoverage reports whether the UFO flies inside any radar range.
	InCoverage(ufo *campaign.Aircraft) bool
	MarkDetected(ufo *campaign.Aircraft)
	NotifyAll(ufo *campaign.Aircraft)
}

// Missions is told about combat outcomes that change mission state.
type Missions interface {
	SpawnCrashSite(ufo *campaign.Aircraft)
	ConcludeByUFOLoss(ufo *campaign.Aircraft)
	ResumeMission(ufo *campaign.Aircraft)
	NotifyAircraftRemoved(a *campaign.Aircraft)
}

// DefaultRadarRange is the detection radius of a base radar, in degrees of arc.
const DefaultRadarRange = 15.0

// BaseRadar detects UFOs that come within Range of a base with a radar building.
type BaseRadar struct {
	State *campaign.State
	Range float64
	Log   *slog.Logger
}

// IsVisible reports whether the UFO is detected and airborne.
func (r *BaseRadar) IsVisible(ufo *campaign.Aircraft) bool {
	return ufo.Detected && !ufo.Landed
}

// InCoverage reports whether a base radar covers the UFO's position.
func (r *BaseRadar) InCoverage(ufo *campaign.Aircraft) bool {
	rng := r.Range
	if rng <= 0 {
		rng = DefaultRadarRange
	}
	covered := false
	r.State.Bases.Each(func(_ campaign.Handle, b *campaign.Base) bool {
		if b.HasBuilding(campaign.BuildingRadar) && geo.Distance(b.Pos, ufo.Pos) <= rng {
			covered = true
			return false
		}
		return true
	})
	return covered
}

// MarkDetected flags the UFO as detected.
func (r *BaseRadar) MarkDetected(ufo *campaign.Aircraft) {
	ufo.Detected = true
}

// NotifyAll logs the new contact.
func (r *BaseRadar) NotifyAll(ufo *campaign.Aircraft) {
	if r.Log != nil {
		r.Log.Info("UFO detected", "ufo", ufo.Name, "pos", ufo.Pos)
	}
}

// CrashSite is a downed UFO waiting for a ground mission.
type CrashSite struct {
	UFO     string
	Mission string
	Pos     geo.Position
}

// MissionBook keeps mission bookkeeping in memory for headless runs.
type MissionBook struct {
	State *campaign.State
	Log   *slog.Logger

	mu    sync.Mutex
	sites []CrashSite
	lost  []string
}

// SpawnCrashSite grounds the UFO and records a crash site.
func (m *MissionBook) SpawnCrashSite(ufo *campaign.Aircraft) {
	ufo.Status = campaign.StatusCrashed
	ufo.Landed = true
	ufo.ClearTarget()

	m.mu.Lock()
	m.sites = append(m.sites, CrashSite{UFO: ufo.Name, Mission: ufo.Mission, Pos: ufo.Pos})
	m.mu.Unlock()
	m.log("crash site spawned", "ufo", ufo.Name, "pos", ufo.Pos)
}

// ConcludeByUFOLoss removes the UFO from the campaign.
func (m *MissionBook) ConcludeByUFOLoss(ufo *campaign.Aircraft) {
	m.mu.Lock()
	m.lost = append(m.lost, ufo.Name)
	m.mu.Unlock()
	m.State.RemoveAircraft(ufo.Handle)
	m.log("mission over, UFO lost", "ufo", ufo.Name, "mission", ufo.Mission)
}

// ResumeMission sends the UFO back on its way.
func (m *MissionBook) ResumeMission(ufo *campaign.Aircraft) {
	ufo.AircraftTarget = campaign.Handle{}
	if ufo.Status != campaign.StatusCrashed {
		ufo.Status = campaign.StatusTransit
	}
	m.log("UFO resumes mission", "ufo", ufo.Name, "mission", ufo.Mission)
}

// NotifyAircraftRemoved logs the loss of a Phalanx aircraft.
func (m *MissionBook) NotifyAircraftRemoved(a *campaign.Aircraft) {
	m.log("aircraft removed", "aircraft", a.Name)
}

// CrashSites returns the recorded crash sites.
func (m *MissionBook) CrashSites() []CrashSite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CrashSite, len(m.sites))
	copy(out, m.sites)
	return out
}

// LostAtSea returns the names of UFOs that went down over water.
func (m *MissionBook) LostAtSea() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lost))
	copy(out, m.lost)
	return out
}

func (m *MissionBook) log(msg string, args ...any) {
	if m.Log != nil {
		m.Log.Debug(msg, args...)
	}
}
