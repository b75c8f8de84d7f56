package worker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/dispatcher"
	"github.com/OCAP2/airfight/internal/savegame"
	"github.com/OCAP2/airfight/pkg/core"
)

// ErrNoEngine is returned by console commands that need a running campaign.
var ErrNoEngine = errors.New("no campaign running")

// RegisterHandlers registers the storage and debug console commands.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register("save", m.handleSave, dispatcher.Logged())
	d.Register("load", m.handleLoad, dispatcher.Logged())
	d.Register("flush", m.handleFlush, dispatcher.Logged())
	d.Register("debug_listprojectile", m.handleListProjectiles)
}

// handleSave persists the running campaign. Queued events are drained
// first so storage never holds a save newer than its events.
func (m *Manager) handleSave(dispatcher.Event) (any, error) {
	if m.deps.Engine == nil {
		return nil, ErrNoEngine
	}
	if m.deps.Backend == nil {
		return nil, errors.New("no storage backend")
	}

	var snap *core.Snapshot
	m.deps.Engine.Do(func() {
		snap = savegame.Save(m.deps.Engine.State())
	})
	m.Drain()

	if err := m.deps.Backend.SaveCampaign(snap); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", snap.Name, err)
	}
	return fmt.Sprintf("saved %s at clock %d (%d aircraft, %d projectiles)",
		snap.Name, snap.Clock, len(snap.Aircraft), len(snap.Projectiles)), nil
}

// handleLoad restores the latest save of the named campaign, or of the
// running one when no name is given.
func (m *Manager) handleLoad(e dispatcher.Event) (any, error) {
	if m.deps.Engine == nil {
		return nil, ErrNoEngine
	}
	if m.deps.Backend == nil {
		return nil, errors.New("no storage backend")
	}

	var name string
	var catalogState *campaign.State
	m.deps.Engine.Do(func() {
		catalogState = m.deps.Engine.State()
		name = catalogState.Name
	})
	if len(e.Args) > 0 {
		name = strings.Join(e.Args, " ")
	}

	snap, err := m.deps.Backend.LoadCampaign(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}

	loader := m.deps.Loader
	if loader == nil {
		loader = &savegame.Loader{
			Catalog:        catalogState.Catalog,
			MaxProjectiles: catalogState.Projectiles.Cap(),
			Log:            m.deps.LogManager.Logger(),
		}
	}
	state, err := loader.Load(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild %s: %w", name, err)
	}

	m.Drain()
	m.deps.Engine.Restore(state)
	return fmt.Sprintf("loaded %s at clock %d", state.Name, state.Clock), nil
}

func (m *Manager) handleFlush(dispatcher.Event) (any, error) {
	n := m.Drain()
	return fmt.Sprintf("flushed %d events", n), nil
}

func (m *Manager) handleListProjectiles(dispatcher.Event) (any, error) {
	if m.deps.Engine == nil {
		return nil, ErrNoEngine
	}
	var lines []string
	m.deps.Engine.Do(func() {
		lines = m.deps.Engine.ListProjectiles()
	})
	if len(lines) == 0 {
		return "no projectiles in flight", nil
	}
	return strings.Join(lines, "\n"), nil
}
