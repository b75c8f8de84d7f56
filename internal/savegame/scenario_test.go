package savegame

import (
	"strings"
	"testing"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/item"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readConfig(t *testing.T, body string) {
	t.Helper()
	t.Cleanup(viper.Reset)
	viper.SetConfigType("json")
	require.NoError(t, viper.ReadConfig(strings.NewReader(body)))
}

func TestLoadScenario(t *testing.T) {
	readConfig(t, `{
		"scenario": {
			"name": "Operation Thunder",
			"clock": 3600,
			"bases": [
				{ "name": "Alpha", "pos": { "x": 10, "y": 45 }, "founded": true, "storage": { "sparrowhawk_ammo": 4 } }
			],
			"aircraft": [
				{
					"name": "Interceptor", "status": "home", "damage": 100,
					"homebase": { "kind": "base", "index": 0 },
					"stats": { "maxSpeed": 900, "accuracy": 100 },
					"weapons": [ { "weight": 1, "item": "sparrowhawk", "ammo": "sparrowhawk_ammo", "ammoLeft": 4 } ]
				},
				{ "name": "Scout", "ufo": true, "status": "transit", "damage": 40, "pos": { "x": 20, "y": 40 } }
			]
		}
	}`)

	snap, err := LoadScenario("scenario")
	require.NoError(t, err)
	assert.Equal(t, "Operation Thunder", snap.Name)
	assert.Equal(t, int64(3600), snap.Clock)
	require.Len(t, snap.Aircraft, 2)
	assert.Equal(t, 900.0, snap.Aircraft[0].Stats["maxspeed"])

	state, err := Load(snap, testCatalog(t))
	require.NoError(t, err)
	require.Len(t, state.PhalanxAircraft(), 1)
	interceptor := state.PhalanxAircraft()[0]
	assert.Equal(t, campaign.StatusHome, interceptor.Status)
	assert.Equal(t, 900.0, interceptor.Stats[item.StatMaxSpeed])
	require.Len(t, interceptor.Weapons, 1)
	require.NotNil(t, interceptor.Weapons[0].Item)
	assert.Equal(t, "sparrowhawk", interceptor.Weapons[0].Item.ID)
	assert.Equal(t, 4, interceptor.Weapons[0].AmmoLeft)

	base, ok := state.GetBase(interceptor.Homebase)
	require.True(t, ok)
	assert.Equal(t, 4, base.Storage["sparrowhawk_ammo"])

	require.Len(t, state.UFOs(), 1)
	assert.Equal(t, 40, state.UFOs()[0].Damage)
}

func TestLoadScenario_Missing(t *testing.T) {
	readConfig(t, `{ "items": [] }`)
	_, err := LoadScenario("scenario")
	assert.ErrorIs(t, err, ErrNoScenario)
}

func TestLoadScenario_Unnamed(t *testing.T) {
	readConfig(t, `{ "scenario": { "clock": 10 } }`)
	_, err := LoadScenario("scenario")
	assert.ErrorIs(t, err, ErrNoScenario)
}
