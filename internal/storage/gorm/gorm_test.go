package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/airfight/internal/database"
	"github.com/OCAP2/airfight/internal/model"
	"github.com/OCAP2/airfight/internal/storage"
	"github.com/OCAP2/airfight/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBackend creates a Backend on a throwaway SQLite file. The flush
// interval is long so tests control writes through Flush.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "airfight.db"))
	require.NoError(t, err)

	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func snapshot(clock int64, savedAt time.Time) *core.Snapshot {
	return &core.Snapshot{
		Name:    "thunder",
		Clock:   clock,
		SavedAt: savedAt,
		Aircraft: []core.AircraftState{
			{Name: "Interceptor", Status: "pursuing", Damage: 80, Pos: core.Position{X: 11, Y: 45}},
			{Name: "Fighter", UFO: true, Status: "intercept", Damage: 60, Pos: core.Position{X: 13, Y: 45}},
		},
		Projectiles: []core.ProjectileState{
			{AmmoID: "sparrowhawk_ammo", Pos: core.Position{X: 11.5, Y: 45}, ProjectedPos: core.Position{X: 11.6, Y: 45}},
		},
	}
}

func TestInit_NoDB(t *testing.T) {
	b := New(Dependencies{})
	assert.Error(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestSaveLoad(t *testing.T) {
	b := newTestBackend(t)
	t0 := time.Date(2084, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, b.SaveCampaign(snapshot(100, t0)))
	require.NoError(t, b.SaveCampaign(snapshot(200, t0.Add(time.Minute))))

	got, err := b.LoadCampaign("thunder")
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.Clock)
	require.Len(t, got.Aircraft, 2)
	assert.Equal(t, "intercept", got.Aircraft[1].Status)

	var aircraft []model.SavedAircraft
	require.NoError(t, b.DB().Find(&aircraft).Error)
	assert.Len(t, aircraft, 4)

	var projectiles []model.SavedProjectile
	require.NoError(t, b.DB().Find(&projectiles).Error)
	require.Len(t, projectiles, 2)
	assert.Equal(t, "sparrowhawk_ammo", projectiles[0].Ammo)

	var campaigns []model.Campaign
	require.NoError(t, b.DB().Find(&campaigns).Error)
	assert.Len(t, campaigns, 1)
}

func TestLoadCampaign_NotFound(t *testing.T) {
	b := newTestBackend(t)
	_, err := b.LoadCampaign("nothing")
	assert.ErrorIs(t, err, storage.ErrCampaignNotFound)

	require.NoError(t, b.RecordCombatEvent(&core.CombatEvent{Campaign: "events-only", Type: core.EventShot}))
	require.NoError(t, b.Flush())
	_, err = b.LoadCampaign("events-only")
	assert.ErrorIs(t, err, storage.ErrCampaignNotFound)
}

func TestRecordCombatEvent_QueuedUntilFlush(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.RecordCombatEvent(&core.CombatEvent{
		Campaign: "thunder", Clock: 20, Type: core.EventHit, Target: "Fighter", Damage: 30,
		Position: core.Position{X: 13, Y: 45},
	}))
	require.NoError(t, b.RecordCombatEvent(&core.CombatEvent{
		Campaign: "thunder", Clock: 10, Type: core.EventShot, Attacker: "Interceptor",
		Details: map[string]any{"probability": 0.5},
	}))
	assert.Equal(t, 2, b.QueuedEvents())

	events, err := b.Events("thunder")
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, b.Flush())
	assert.Zero(t, b.QueuedEvents())

	events, err = b.Events("thunder")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, core.EventShot, events[0].Type)
	assert.Equal(t, 0.5, events[0].Details["probability"])
	assert.Equal(t, core.Position{X: 13, Y: 45}, events[1].Position)
	assert.Equal(t, "thunder", events[1].Campaign)
}

func TestClose_FlushesQueue(t *testing.T) {
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "airfight.db"))
	require.NoError(t, err)
	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())

	require.NoError(t, b.RecordCombatEvent(&core.CombatEvent{Campaign: "thunder", Type: core.EventMiss}))
	require.NoError(t, b.Close())

	var count int64
	require.NoError(t, db.Model(&model.CombatEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.NoError(t, b.Close())
}

func TestWriteLoop_FlushesPeriodically(t *testing.T) {
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "airfight.db"))
	require.NoError(t, err)
	b := New(Dependencies{DB: db, FlushInterval: 10 * time.Millisecond})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.RecordCombatEvent(&core.CombatEvent{Campaign: "thunder", Type: core.EventDestroyed}))
	assert.Eventually(t, func() bool { return b.QueuedEvents() == 0 }, 2*time.Second, 10*time.Millisecond)
}
