// Package airfight resolves geoscape air combat: weapon fire, projectiles in
// flight, hits on aircraft and bases, and base defence.
package airfight

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/equip"
	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/message"
	"github.com/OCAP2/airfight/internal/queue"
	"github.com/OCAP2/airfight/pkg/core"

	"go.opentelemetry.io/otel/metric"
)

// SecondsPerHour converts weapon speeds (degrees per hour) to per-second movement.
const SecondsPerHour = 3600

var (
	// ErrRegistryFull is returned when no more projectiles fit on the map.
	ErrRegistryFull = errors.New("too many projectiles on map")
	// ErrNoAmmo is returned when a slot without ammo is asked to fire.
	ErrNoAmmo = errors.New("no ammo assigned")
)

// Dependencies holds everything the engine talks to. Only State is required.
type Dependencies struct {
	State     *campaign.State
	Equip     *equip.Service
	Rand      Rand
	Radar     Radar
	Missions  Missions
	Messenger message.Messenger
	Terrain   geo.Terrain
	Logger    *slog.Logger
	Meter     metric.Meter
	// Events receives every combat event; nil drops them.
	Events *queue.Queue[core.CombatEvent]
}

// Engine runs the air war of one campaign. All methods except Do and Tick
// assume the caller owns the tick.
type Engine struct {
	state    *campaign.State
	equip    *equip.Service
	rng      Rand
	radar    Radar
	missions Missions
	msgs     message.Messenger
	terrain  geo.Terrain
	log      *slog.Logger
	events   *queue.Queue[core.CombatEvent]
	metrics  *instruments

	mu       sync.Mutex
	lastHour int64
	inFlight atomic.Int64
}

// New creates an engine, filling unset collaborators with headless defaults.
func New(deps Dependencies) (*Engine, error) {
	if deps.State == nil {
		return nil, errors.New("airfight: nil campaign state")
	}
	e := &Engine{
		state:    deps.State,
		equip:    deps.Equip,
		rng:      deps.Rand,
		radar:    deps.Radar,
		missions: deps.Missions,
		msgs:     deps.Messenger,
		terrain:  deps.Terrain,
		log:      deps.Logger,
		events:   deps.Events,
		lastHour: deps.State.Clock / SecondsPerHour,
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.msgs == nil {
		e.msgs = message.NewLogMessenger(e.log)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if e.equip == nil {
		e.equip = equip.New(e.state, e.msgs, equip.DefaultReloadDelays, e.log)
	}
	if e.radar == nil {
		e.radar = &BaseRadar{State: e.state, Log: e.log}
	}
	if e.missions == nil {
		e.missions = &MissionBook{State: e.state, Log: e.log}
	}
	if e.terrain == nil {
		e.terrain = allLand{}
	}

	m := deps.Meter
	if m == nil {
		m = meter()
	}
	ins, err := newInstruments(m, e)
	if err != nil {
		return nil, err
	}
	e.metrics = ins
	return e, nil
}

// allLand is the terrain used when no land mask is configured: every UFO
// shot down leaves a crash site.
type allLand struct{}

func (allLand) IsWater(geo.Position) bool { return false }

// State returns the campaign the engine runs.
func (e *Engine) State() *campaign.State {
	return e.state
}

// Equip returns the equipment service used for reloads and hourly upkeep.
func (e *Engine) Equip() *equip.Service {
	return e.equip
}

// Restore replaces the running campaign with s. The State pointer handed to
// New stays valid: its contents are overwritten, so collaborators built on
// it see the restored campaign.
func (e *Engine) Restore(s *campaign.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	*e.state = *s
	e.lastHour = s.Clock / SecondsPerHour
	e.inFlight.Store(int64(s.Projectiles.Len()))
}

// Do runs fn while no tick is in progress.
func (e *Engine) Do(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// Tick advances the campaign by dt seconds: aircraft move and fight, base
// defences fire, projectiles fly. Hourly upkeep runs whenever the clock
// crosses a full hour.
func (e *Engine) Tick(dt int) {
	if dt <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Clock += int64(dt)
	e.MoveAircraft(dt)
	e.RunAirCombat()
	e.CampaignRunBaseDefense(dt)
	e.CampaignRunProjectiles(dt)

	for hour := e.state.Clock / SecondsPerHour; e.lastHour < hour; {
		e.lastHour++
		e.equip.Hourly()
	}
	e.inFlight.Store(int64(e.state.Projectiles.Len()))
}

// RunAirCombat lets every pursuing Phalanx aircraft and every hostile UFO act.
func (e *Engine) RunAirCombat() {
	for _, a := range e.state.PhalanxAircraft() {
		if _, ok := e.state.GetAircraft(a.Handle); !ok || a.Status != campaign.StatusUFO {
			continue
		}
		target, ok := e.state.GetAircraft(a.AircraftTarget)
		if !ok || target.Destroyed() || !e.radar.IsVisible(target) {
			a.ReturnToBase(e.homebase(a))
			continue
		}
		e.ExecuteActions(a, target)
	}

	for _, ufo := range e.state.UFOs() {
		if _, ok := e.state.GetAircraft(ufo.Handle); !ok || ufo.Landed || ufo.Status == campaign.StatusCrashed {
			continue
		}
		if !ufo.SiteTarget.IsZero() {
			if _, ok := e.state.SitePosition(ufo.SiteTarget); !ok {
				ufo.SiteTarget = campaign.SiteRef{}
				continue
			}
			e.ExecuteActions(ufo, nil)
			continue
		}
		if ufo.AircraftTarget.IsZero() {
			continue
		}
		target, ok := e.state.GetAircraft(ufo.AircraftTarget)
		if ok && target.OnGeoscape() {
			e.ExecuteActions(ufo, target)
			continue
		}
		ufo.AircraftTarget = campaign.Handle{}
		e.missions.ResumeMission(ufo)
	}
}

func (e *Engine) homebase(a *campaign.Aircraft) *campaign.Base {
	b, _ := e.state.GetBase(a.Homebase)
	return b
}

func (e *Engine) aircraftName(h campaign.Handle) string {
	if a, ok := e.state.GetAircraft(h); ok {
		return a.Name
	}
	return ""
}

func (e *Engine) record(ev core.CombatEvent) {
	if e.events == nil {
		return
	}
	ev.Campaign = e.state.Name
	ev.Time = time.Now().UTC()
	ev.Clock = e.state.Clock
	e.events.Push(ev)
}

func toCore(p geo.Position) core.Position {
	return core.Position{X: p.X, Y: p.Y}
}
