package item

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_RejectsDuplicate(t *testing.T) {
	_, err := NewCatalog(&Item{ID: "a"}, &Item{ID: "a"})
	require.Error(t, err)
}

func TestNewCatalog_RejectsUnknownAmmo(t *testing.T) {
	_, err := NewCatalog(&Item{ID: "gun", Type: TypeWeapon, Ammos: []string{"missing"}})
	require.ErrorIs(t, err, ErrUnknownItem)
}

func TestCatalog_Lookup(t *testing.T) {
	c, err := NewCatalog(&Item{ID: "gun"})
	require.NoError(t, err)

	it, err := c.Lookup("gun")
	require.NoError(t, err)
	assert.Equal(t, "gun", it.ID)

	_, err = c.Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownItem)

	_, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Equal(t, []string{"gun"}, c.IDs())
}

func TestAcceptsAmmo(t *testing.T) {
	gun := &Item{ID: "gun", Ammos: []string{"rounds"}}
	assert.True(t, gun.AcceptsAmmo(&Item{ID: "rounds"}))
	assert.False(t, gun.AcceptsAmmo(&Item{ID: "laser"}))
	assert.False(t, gun.AcceptsAmmo(nil))
}

func TestTypeClassification(t *testing.T) {
	assert.True(t, TypeAmmo.IsAmmo())
	assert.True(t, TypeBaseLaserAmmo.IsAmmo())
	assert.False(t, TypeWeapon.IsAmmo())
	assert.True(t, TypeBaseMissile.IsWeapon())
	assert.False(t, TypeShield.IsWeapon())
}

func TestParseStat(t *testing.T) {
	s, err := ParseStat("ECM")
	require.NoError(t, err)
	assert.Equal(t, StatECM, s)

	s, err = ParseStat("maxspeed")
	require.NoError(t, err)
	assert.Equal(t, StatMaxSpeed, s)

	_, err = ParseStat("charisma")
	require.Error(t, err)
}

func TestLoadCatalog_FromConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"items": [
			{"id": "craft_weapon_sparrowhawk", "type": "weapon", "weight": "light", "installationTime": 2, "ammos": ["craft_ammo_sparrowhawk"]},
			{"id": "craft_ammo_sparrowhawk", "type": "ammo", "weaponDamage": 12, "weaponSpeed": 600, "weaponDelay": 40, "ammo": 8,
			 "stats": {"accuracy": 0.8, "range": 3}}
		]
	}`
	path := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	c, err := LoadCatalog("items")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	ammo, ok := c.Get("craft_ammo_sparrowhawk")
	require.True(t, ok)
	assert.Equal(t, TypeAmmo, ammo.Type)
	assert.Equal(t, 0.8, ammo.Stats[StatAccuracy])
	assert.Equal(t, 3.0, ammo.Stats[StatRange])
	assert.Equal(t, 40, ammo.WeaponDelay)
	assert.Equal(t, 8, ammo.Ammo)

	gun, ok := c.Get("craft_weapon_sparrowhawk")
	require.True(t, ok)
	assert.True(t, gun.AcceptsAmmo(ammo))
	assert.Equal(t, 2, gun.InstallationTime)
}

func TestLoadCatalog_BadType(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("items", []map[string]any{{"id": "x", "type": "banana"}})

	_, err := LoadCatalog("items")
	require.Error(t, err)
}
