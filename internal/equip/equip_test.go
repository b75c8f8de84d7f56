package equip

import (
	"testing"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/item"
	"github.com/OCAP2/airfight/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	state    *campaign.State
	svc      *Service
	msgs     *message.Recorder
	base     *campaign.Base
	aircraft *campaign.Aircraft

	weapon, laser, ammo, armour, targeting, launcher, missiles *item.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		weapon: &item.Item{ID: "sparrowhawk", Name: "Sparrowhawk", Type: item.TypeWeapon, Weight: item.WeightLight,
			InstallationTime: 2, Ammos: []string{"sparrowhawk_ammo"}},
		laser:     &item.Item{ID: "laser", Name: "Laser", Type: item.TypeWeapon, Weight: item.WeightLight, InstallationTime: 3},
		ammo:      &item.Item{ID: "sparrowhawk_ammo", Name: "Sparrowhawk Missiles", Type: item.TypeAmmo, Ammo: 4, WeaponDelay: 3},
		armour:    &item.Item{ID: "armour", Name: "Armour", Type: item.TypeShield, Weight: item.WeightLight, InstallationTime: 1},
		targeting: &item.Item{ID: "targeting", Name: "Targeting", Type: item.TypeElectronics, Weight: item.WeightLight},
		launcher: &item.Item{ID: "launcher", Name: "Missile Launcher", Type: item.TypeBaseMissile, Weight: item.WeightHeavy,
			InstallationTime: 1, Ammos: []string{"missiles"}},
		missiles: &item.Item{ID: "missiles", Name: "Missiles", Type: item.TypeBaseMissileAmmo, Ammo: 10, WeaponDelay: 2},
	}
	f.ammo.Stats[item.StatRange] = 10
	f.missiles.Stats[item.StatRange] = 15
	f.armour.Stats[item.StatDamage] = 20
	f.targeting.Stats[item.StatAccuracy] = 1.1

	catalog, err := item.NewCatalog(f.weapon, f.laser, f.ammo, f.armour, f.targeting, f.launcher, f.missiles)
	require.NoError(t, err)

	f.state = campaign.NewState("test", catalog, 0)
	f.msgs = &message.Recorder{}
	f.svc = New(f.state, f.msgs, DefaultReloadDelays, nil)

	f.base = &campaign.Base{
		Name:      "Alpha",
		Powered:   true,
		Batteries: campaign.NewBatteries(1, item.TypeBaseMissile),
		Buildings: []campaign.Building{{ID: "missile", Type: campaign.BuildingMissile}},
		Storage:   map[string]int{"sparrowhawk": 1, "sparrowhawk_ammo": 2, "launcher": 1, "missiles": 1},
	}
	bh := f.state.AddBase(f.base)

	f.aircraft = &campaign.Aircraft{
		Name:        "Interceptor",
		Homebase:    bh,
		Status:      campaign.StatusHome,
		Damage:      100,
		Fuel:        1000,
		Weapons:     campaign.NewSlots(1, item.TypeWeapon, item.WeightLight),
		Electronics: campaign.NewSlots(1, item.TypeElectronics, item.WeightLight),
		Shield:      campaign.Slot{Type: item.TypeShield, Weight: item.WeightLight},
	}
	f.aircraft.BaseStats[item.StatSpeed] = 10
	f.aircraft.BaseStats[item.StatDamage] = 100
	f.aircraft.BaseStats[item.StatAccuracy] = 100
	f.aircraft.BaseStats[item.StatFuelSize] = 1000
	f.aircraft.Stats = f.aircraft.BaseStats
	f.state.AddAircraft(f.aircraft)
	return f
}

func TestAddItem_WrongType(t *testing.T) {
	f := newFixture(t)
	err := f.svc.AddItem(&f.aircraft.Weapons[0], f.armour, false)
	assert.ErrorIs(t, err, ErrWrongType)

	err = f.svc.AddItem(&f.aircraft.Weapons[0], f.ammo, false)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestAddItem_TooHeavy(t *testing.T) {
	f := newFixture(t)
	heavy := &item.Item{ID: "cannon", Type: item.TypeWeapon, Weight: item.WeightHeavy}
	err := f.svc.AddItem(&f.aircraft.Weapons[0], heavy, false)
	assert.ErrorIs(t, err, ErrTooHeavy)
}

func TestAddItem_NotInStorage(t *testing.T) {
	f := newFixture(t)
	err := f.svc.AddItem(&f.aircraft.Weapons[0], f.laser, false)
	assert.ErrorIs(t, err, ErrNotInStorage)
	assert.Nil(t, f.aircraft.Weapons[0].Item)
}

func TestAddItem_TakesFromStorage(t *testing.T) {
	f := newFixture(t)
	slot := &f.aircraft.Weapons[0]

	require.NoError(t, f.svc.AddItem(slot, f.weapon, false))

	assert.Same(t, f.weapon, slot.Item)
	assert.Equal(t, 2, slot.InstallationTime)
	assert.False(t, f.base.HasItem("sparrowhawk"))
}

func TestAddAmmo_ReloadsFromStorage(t *testing.T) {
	f := newFixture(t)
	slot := &f.aircraft.Weapons[0]
	require.NoError(t, f.svc.AddItem(slot, f.weapon, false))

	require.NoError(t, f.svc.AddAmmo(slot, f.ammo))

	assert.Same(t, f.ammo, slot.Ammo)
	assert.Equal(t, 4, slot.AmmoLeft)
	assert.Equal(t, 3*DefaultReloadDelays.Aircraft, slot.DelayNextShot)
	assert.Equal(t, 1, f.base.Storage["sparrowhawk_ammo"])
}

func TestAddAmmo_Rejected(t *testing.T) {
	f := newFixture(t)
	slot := &f.aircraft.Weapons[0]
	assert.ErrorIs(t, f.svc.AddAmmo(slot, f.ammo), ErrNoWeapon)

	require.NoError(t, f.svc.AddItem(slot, f.weapon, false))
	assert.ErrorIs(t, f.svc.AddAmmo(slot, f.missiles), ErrIncompatibleAmmo)
}

func TestReload_AutoAddsAmmo(t *testing.T) {
	f := newFixture(t)
	slot := &f.aircraft.Weapons[0]
	slot.Item = f.weapon

	assert.True(t, f.svc.Reload(slot))
	assert.Same(t, f.ammo, slot.Ammo)
	assert.Equal(t, 4, slot.AmmoLeft)
	assert.Equal(t, 1, f.base.Storage["sparrowhawk_ammo"])
}

func TestReload_FullMagazine(t *testing.T) {
	f := newFixture(t)
	slot := &f.aircraft.Weapons[0]
	slot.Item, slot.Ammo, slot.AmmoLeft = f.weapon, f.ammo, 4

	assert.True(t, f.svc.Reload(slot))
	assert.Equal(t, 0, slot.DelayNextShot)
	assert.Equal(t, 2, f.base.Storage["sparrowhawk_ammo"])
}

func TestReload_AircraftAwayFromBase(t *testing.T) {
	f := newFixture(t)
	f.aircraft.Status = campaign.StatusTransit
	slot := &f.aircraft.Weapons[0]
	slot.Item, slot.Ammo = f.weapon, f.ammo

	assert.False(t, f.svc.Reload(slot))
	assert.Equal(t, 0, slot.AmmoLeft)
	assert.Equal(t, 2, f.base.Storage["sparrowhawk_ammo"])
}

func TestReload_EmptyStorageDropsAmmo(t *testing.T) {
	f := newFixture(t)
	delete(f.base.Storage, "sparrowhawk_ammo")
	slot := &f.aircraft.Weapons[0]
	slot.Item, slot.Ammo = f.weapon, f.ammo

	assert.False(t, f.svc.Reload(slot))
	assert.Nil(t, slot.Ammo)
}

func TestReload_UFO(t *testing.T) {
	f := newFixture(t)
	ufo := &campaign.Aircraft{Kind: campaign.KindUFO, Weapons: campaign.NewSlots(1, item.TypeWeapon, item.WeightHeavy)}
	f.state.AddAircraft(ufo)
	slot := &ufo.Weapons[0]
	slot.Item, slot.Ammo = f.weapon, f.ammo

	assert.True(t, f.svc.Reload(slot))
	assert.Equal(t, 4, slot.AmmoLeft)
	assert.Equal(t, 3*DefaultReloadDelays.UFO, slot.DelayNextShot)
}

func TestReload_Installation(t *testing.T) {
	f := newFixture(t)
	in := &campaign.Installation{Name: "SAM", Status: campaign.InstallationWorking, Batteries: campaign.NewBatteries(1, item.TypeBaseMissile)}
	f.state.AddInstallation(in)
	slot := &in.Batteries[0].Slot
	slot.Item, slot.Ammo = f.launcher, f.missiles

	assert.True(t, f.svc.Reload(slot))
	assert.Equal(t, 10, slot.AmmoLeft)
	assert.Equal(t, 2*DefaultReloadDelays.Installation, slot.DelayNextShot)
	assert.True(t, InstallationCanShoot(in))
}

func TestReload_Unlimited(t *testing.T) {
	f := newFixture(t)
	infinite := &item.Item{ID: "beam", Type: item.TypeAmmo, Ammo: campaign.AmmoUnlimited}
	slot := &f.aircraft.Weapons[0]
	slot.Item, slot.Ammo = f.weapon, infinite

	assert.True(t, f.svc.Reload(slot))
	assert.Equal(t, campaign.AmmoUnlimited, slot.AmmoLeft)
	assert.True(t, slot.HasAmmoLeft())
}

func TestUpdateInstallationDelays_Install(t *testing.T) {
	f := newFixture(t)
	slot := &f.aircraft.Weapons[0]
	require.NoError(t, f.svc.AddItem(slot, f.weapon, false))

	f.svc.UpdateInstallationDelays()
	assert.Equal(t, 1, slot.InstallationTime)
	assert.Empty(t, f.msgs.Messages())

	f.svc.UpdateInstallationDelays()
	assert.Equal(t, 0, slot.InstallationTime)
	assert.Equal(t, []string{"Sparrowhawk was successfully installed into aircraft Interceptor at Alpha."}, f.msgs.Bodies())
}

func TestUpdateInstallationDelays_OnlyInBase(t *testing.T) {
	f := newFixture(t)
	slot := &f.aircraft.Weapons[0]
	require.NoError(t, f.svc.AddItem(slot, f.weapon, false))
	f.aircraft.Status = campaign.StatusTransit

	f.svc.UpdateInstallationDelays()
	assert.Equal(t, 2, slot.InstallationTime)
}

func TestUpdateInstallationDelays_ReplaceWithNext(t *testing.T) {
	f := newFixture(t)
	f.base.AddToStorage("laser", 1)
	slot := &f.aircraft.Weapons[0]
	slot.Item = f.weapon
	require.NoError(t, f.svc.AddItem(slot, f.laser, true))

	f.svc.StartRemoval(slot)
	assert.Equal(t, -2, slot.InstallationTime)

	f.svc.UpdateInstallationDelays()
	f.svc.UpdateInstallationDelays()

	assert.Same(t, f.laser, slot.Item)
	assert.Nil(t, slot.NextItem)
	assert.Equal(t, 3, slot.InstallationTime)
	assert.Equal(t, 2, f.base.Storage["sparrowhawk"])
	assert.Equal(t, []string{
		"Sparrowhawk was successfully removed, starting installation of Laser into aircraft Interceptor at Alpha",
	}, f.msgs.Bodies())
}

func TestUpdateInstallationDelays_BaseBattery(t *testing.T) {
	f := newFixture(t)
	slot := &f.base.Batteries[0].Slot
	require.NoError(t, f.svc.AddItem(slot, f.launcher, false))

	f.svc.UpdateInstallationDelays()

	assert.Equal(t, []string{"Missile Launcher was successfully installed at Alpha."}, f.msgs.Bodies())
}

func TestUpdateInstallationDelays_InstallationRemoval(t *testing.T) {
	f := newFixture(t)
	in := &campaign.Installation{Name: "SAM", Batteries: campaign.NewBatteries(1, item.TypeBaseMissile)}
	f.state.AddInstallation(in)
	slot := &in.Batteries[0].Slot
	slot.Item = f.launcher
	f.svc.StartRemoval(slot)

	f.svc.UpdateInstallationDelays()

	assert.Nil(t, slot.Item)
	assert.Equal(t, []string{"Missile Launcher was successfully removed from installation SAM."}, f.msgs.Bodies())
}

func TestUpdateAircraftStats(t *testing.T) {
	f := newFixture(t)
	a := f.aircraft
	a.Shield.Item = f.armour
	a.Electronics[0].Item = f.targeting
	a.Weapons[0].Item, a.Weapons[0].Ammo, a.Weapons[0].AmmoLeft = f.weapon, f.ammo, 4
	a.Fuel = 500

	UpdateAircraftStats(a)

	assert.InDelta(t, 120, a.Stats[item.StatDamage], 1e-9)
	assert.InDelta(t, 110, a.Stats[item.StatAccuracy], 1e-9)
	assert.InDelta(t, 10, a.Stats[item.StatRange], 1e-9)
	assert.Equal(t, campaign.StatusRefuel, a.Status)
}

func TestUpdateAircraftStats_InstallingItemIgnored(t *testing.T) {
	f := newFixture(t)
	a := f.aircraft
	a.Damage = 150
	a.Shield.Item = f.armour
	a.Shield.InstallationTime = 1

	UpdateAircraftStats(a)

	assert.InDelta(t, 100, a.Stats[item.StatDamage], 1e-9)
	assert.Equal(t, 100, a.Damage)
}

func TestRepairAircraft(t *testing.T) {
	f := newFixture(t)
	f.aircraft.Damage = 98

	f.svc.RepairAircraft()
	assert.Equal(t, 99, f.aircraft.Damage)

	f.aircraft.Status = campaign.StatusTransit
	f.svc.RepairAircraft()
	assert.Equal(t, 99, f.aircraft.Damage)

	f.aircraft.Status = campaign.StatusHome
	f.aircraft.Damage = 100
	f.svc.RepairAircraft()
	assert.Equal(t, 100, f.aircraft.Damage)
}

func TestBaseCanShoot(t *testing.T) {
	f := newFixture(t)
	assert.False(t, BaseCanShoot(f.base))

	slot := &f.base.Batteries[0].Slot
	slot.Item, slot.Ammo, slot.AmmoLeft = f.launcher, f.missiles, 10
	assert.True(t, BaseCanShoot(f.base))

	f.base.Powered = false
	assert.False(t, BaseCanShoot(f.base))
}

func TestAircraftCanShoot(t *testing.T) {
	f := newFixture(t)
	assert.False(t, AircraftCanShoot(f.aircraft))

	slot := &f.aircraft.Weapons[0]
	slot.Item, slot.Ammo, slot.AmmoLeft = f.weapon, f.ammo, 4
	slot.DelayNextShot = 50
	assert.True(t, AircraftCanShoot(f.aircraft))
}

func TestHourly_ReloadsBase(t *testing.T) {
	f := newFixture(t)
	slot := &f.base.Batteries[0].Slot
	slot.Item, slot.Ammo = f.launcher, f.missiles

	f.svc.Hourly()

	assert.Equal(t, 10, slot.AmmoLeft)
	assert.False(t, f.base.HasItem("missiles"))
}
