// Package equip mounts, removes and reloads craft items and runs the hourly
// maintenance of slots (installation countdowns, repairs).
package equip

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/item"
	"github.com/OCAP2/airfight/internal/message"
)

var (
	// ErrWrongType is returned when an item does not fit the slot type.
	ErrWrongType = errors.New("item type does not match slot")
	// ErrTooHeavy is returned when an item is heavier than the slot allows.
	ErrTooHeavy = errors.New("item too heavy for slot")
	// ErrNotInStorage is returned when the supplying base has none of the item.
	ErrNotInStorage = errors.New("item not in base storage")
	// ErrNoWeapon is returned when ammo is added to a slot without weapon.
	ErrNoWeapon = errors.New("no weapon in slot")
	// ErrIncompatibleAmmo is returned when the weapon does not accept the ammo.
	ErrIncompatibleAmmo = errors.New("ammo not usable with weapon")
)

// RepairPerHour is the number of hit points an aircraft in base regains each hour.
const RepairPerHour = 1

// ReloadDelays multiply an ammo's weapon delay after a reload, per slot owner.
type ReloadDelays struct {
	Aircraft     int `json:"aircraft" mapstructure:"aircraft"`
	UFO          int `json:"ufo" mapstructure:"ufo"`
	Base         int `json:"base" mapstructure:"base"`
	Installation int `json:"installation" mapstructure:"installation"`
}

// DefaultReloadDelays are used when no configuration is given.
var DefaultReloadDelays = ReloadDelays{Aircraft: 100, UFO: 10, Base: 100, Installation: 100}

// Service equips slots of one campaign.
type Service struct {
	state  *campaign.State
	msgs   message.Messenger
	reload ReloadDelays
	log    *slog.Logger
}

// New creates an equipment service.
func New(state *campaign.State, msgs message.Messenger, reload ReloadDelays, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if msgs == nil {
		msgs = message.NewLogMessenger(logger)
	}
	return &Service{state: state, msgs: msgs, reload: reload, log: logger}
}

// supplier returns the base whose storage feeds the slot, if any.
// UFOs and installations are not supplied from storage.
func (s *Service) supplier(slot *campaign.Slot) *campaign.Base {
	switch slot.Owner.Kind {
	case campaign.OwnerAircraft:
		a, ok := s.state.GetAircraft(slot.Owner.Handle)
		if !ok || a.IsUFO() {
			return nil
		}
		b, _ := s.state.GetBase(a.Homebase)
		return b
	case campaign.OwnerBase:
		b, _ := s.state.GetBase(slot.Owner.Handle)
		return b
	}
	return nil
}

// AddItem mounts it into slot. With next set the item is queued to be
// installed once the current one has been removed.
func (s *Service) AddItem(slot *campaign.Slot, it *item.Item, next bool) error {
	if it.Type.IsAmmo() || it.Type != slot.Type {
		return fmt.Errorf("adding %s to slot %d: %w", it.ID, slot.Index, ErrWrongType)
	}
	if it.Weight > slot.Weight {
		return fmt.Errorf("adding %s to slot %d: %w", it.ID, slot.Index, ErrTooHeavy)
	}
	base := s.supplier(slot)
	if base != nil && !base.HasItem(it.ID) {
		return fmt.Errorf("adding %s to slot %d: %w", it.ID, slot.Index, ErrNotInStorage)
	}

	if next {
		slot.NextItem = it
	} else {
		slot.Item = it
		slot.InstallationTime = it.InstallationTime
	}
	if base != nil {
		base.AddToStorage(it.ID, -1)
	}
	return nil
}

// AddAmmo loads ammo into the weapon of slot (or of its queued next weapon).
func (s *Service) AddAmmo(slot *campaign.Slot, ammo *item.Item) error {
	weapon := slot.Item
	if slot.NextItem != nil {
		weapon = slot.NextItem
	}
	if weapon == nil {
		return ErrNoWeapon
	}
	if !weapon.AcceptsAmmo(ammo) {
		return fmt.Errorf("loading %s into %s: %w", ammo.ID, weapon.ID, ErrIncompatibleAmmo)
	}
	base := s.supplier(slot)
	if base != nil && !base.HasItem(ammo.ID) {
		return fmt.Errorf("loading %s into %s: %w", ammo.ID, weapon.ID, ErrNotInStorage)
	}

	if slot.NextItem != nil {
		if slot.NextAmmo != nil && base != nil {
			base.AddToStorage(slot.NextAmmo.ID, 1)
		}
		slot.NextAmmo = ammo
		if base != nil {
			base.AddToStorage(ammo.ID, -1)
		}
		return nil
	}

	s.RemoveItem(slot, true)
	slot.Ammo = ammo
	s.Reload(slot)
	return nil
}

// RemoveItem puts the slot's item (or only its ammo) back into storage.
// When a next item is queued, its installation starts right away.
func (s *Service) RemoveItem(slot *campaign.Slot, ammoOnly bool) {
	base := s.supplier(slot)

	if ammoOnly {
		if slot.Ammo != nil {
			if base != nil {
				base.AddToStorage(slot.Ammo.ID, 1)
			}
			slot.Ammo = nil
			slot.AmmoLeft = 0
		}
		return
	}
	if slot.Item == nil {
		return
	}

	s.RemoveItem(slot, true)
	if base != nil {
		base.AddToStorage(slot.Item.ID, 1)
	}
	if slot.NextItem != nil {
		slot.Item = slot.NextItem
		slot.Ammo = slot.NextAmmo
		if slot.Ammo != nil {
			slot.AmmoLeft = slot.Ammo.Ammo
		}
		slot.InstallationTime = slot.Item.InstallationTime
		slot.NextItem = nil
		slot.NextAmmo = nil
		return
	}
	slot.Item = nil
	slot.Ammo = nil
	slot.AmmoLeft = 0
	slot.InstallationTime = 0
}

// StartRemoval schedules the removal of the slot's item, which takes as long
// as its installation did.
func (s *Service) StartRemoval(slot *campaign.Slot) {
	if slot.Item == nil {
		return
	}
	if slot.Item.InstallationTime == 0 {
		s.RemoveItem(slot, false)
		return
	}
	slot.InstallationTime = -slot.Item.InstallationTime
}

// Reload refills the slot's magazine. It returns true if the weapon is loaded
// afterwards (including when no reload was needed).
func (s *Service) Reload(slot *campaign.Slot) bool {
	if slot.Item == nil {
		return false
	}
	if slot.Ammo == nil {
		s.autoAddAmmo(slot)
	}
	if slot.Ammo == nil {
		return false
	}
	if slot.Ammo.Ammo == campaign.AmmoUnlimited {
		slot.AmmoLeft = campaign.AmmoUnlimited
		return true
	}
	if slot.AmmoLeft >= slot.Ammo.Ammo {
		return true
	}

	var multiplier int
	switch slot.Owner.Kind {
	case campaign.OwnerAircraft:
		a, ok := s.state.GetAircraft(slot.Owner.Handle)
		if !ok {
			return false
		}
		if a.IsUFO() {
			multiplier = s.reload.UFO
			break
		}
		if !a.InBase() {
			return false
		}
		base, ok := s.state.GetBase(a.Homebase)
		if !ok || !base.HasItem(slot.Ammo.ID) {
			slot.Ammo = nil
			return false
		}
		base.AddToStorage(slot.Ammo.ID, -1)
		multiplier = s.reload.Aircraft
	case campaign.OwnerBase:
		base, ok := s.state.GetBase(slot.Owner.Handle)
		if !ok || !base.HasItem(slot.Ammo.ID) {
			return false
		}
		base.AddToStorage(slot.Ammo.ID, -1)
		multiplier = s.reload.Base
	case campaign.OwnerInstallation:
		multiplier = s.reload.Installation
	}

	slot.AmmoLeft = slot.Ammo.Ammo
	slot.DelayNextShot = slot.Ammo.WeaponDelay * multiplier
	return true
}

// autoAddAmmo loads the first ammo the weapon accepts that is available.
func (s *Service) autoAddAmmo(slot *campaign.Slot) {
	weapon := slot.Item
	if slot.NextItem != nil {
		weapon = slot.NextItem
	}
	if weapon == nil || !weapon.Type.IsWeapon() || s.state.Catalog == nil {
		return
	}
	if (slot.NextItem != nil && slot.NextAmmo != nil) || (slot.NextItem == nil && slot.Ammo != nil) {
		return
	}
	for _, id := range weapon.Ammos {
		ammo, ok := s.state.Catalog.Get(id)
		if !ok {
			continue
		}
		if base := s.supplier(slot); base != nil && !base.HasItem(id) {
			continue
		}
		if err := s.AddAmmo(slot, ammo); err == nil {
			return
		}
	}
}

// ReloadAircraftWeapons reloads every weapon of a.
func (s *Service) ReloadAircraftWeapons(a *campaign.Aircraft) {
	for i := range a.Weapons {
		s.Reload(&a.Weapons[i])
	}
}

// ReloadBaseWeapons reloads every missile and laser battery of b.
func (s *Service) ReloadBaseWeapons(b *campaign.Base) {
	for i := range b.Batteries {
		s.Reload(&b.Batteries[i].Slot)
	}
	for i := range b.Lasers {
		s.Reload(&b.Lasers[i].Slot)
	}
}

// ReloadInstallationWeapons reloads every battery of in.
func (s *Service) ReloadInstallationWeapons(in *campaign.Installation) {
	for i := range in.Batteries {
		s.Reload(&in.Batteries[i].Slot)
	}
}

// UpdateAircraftStats recomputes a's stats from its template and mounted items.
// Items still being installed or removed only apply their disadvantages.
func UpdateAircraftStats(a *campaign.Aircraft) {
	for st := item.Stat(0); st < item.StatCount; st++ {
		if st == item.StatRange {
			continue
		}
		v := a.BaseStats[st]
		for _, slot := range a.AllSlots() {
			if !appliesTo(slot, st) {
				continue
			}
			mod := slot.Item.Stats[st]
			if math.Abs(mod) > 2 {
				v += mod
			} else if mod != 0 {
				v *= mod
			}
		}
		a.Stats[st] = v
	}

	a.Stats[item.StatRange] = campaign.MaxRange(a.Weapons)

	if maxFuel := int(a.Stats[item.StatFuelSize]); a.Fuel > maxFuel {
		a.Fuel = maxFuel
	}
	if maxHP := int(a.Stats[item.StatDamage]); a.Damage > maxHP {
		a.Damage = maxHP
	}
	if a.Stats[item.StatSpeed] < 1 {
		a.Stats[item.StatSpeed] = 1
	}
	if a.Status == campaign.StatusHome && float64(a.Fuel) < a.Stats[item.StatFuelSize] {
		a.Status = campaign.StatusRefuel
	}
}

func appliesTo(slot *campaign.Slot, st item.Stat) bool {
	if slot.Item == nil {
		return false
	}
	if slot.InstallationTime != 0 && slot.Item.Stats[st] > 1 {
		return false
	}
	return true
}

func weaponsCanShoot(batteries []campaign.Battery) bool {
	for i := range batteries {
		if batteries[i].Slot.Check(0) != campaign.Never {
			return true
		}
	}
	return false
}

// AircraftCanShoot reports whether any weapon of a could ever fire.
func AircraftCanShoot(a *campaign.Aircraft) bool {
	for i := range a.Weapons {
		if a.Weapons[i].Check(0) != campaign.Never {
			return true
		}
	}
	return false
}

// BaseCanShoot reports whether an operational missile or laser defence of b
// has a weapon that could fire.
func BaseCanShoot(b *campaign.Base) bool {
	if b.DefenceOperational(campaign.BuildingMissile) && weaponsCanShoot(b.Batteries) {
		return true
	}
	return b.DefenceOperational(campaign.BuildingLaser) && weaponsCanShoot(b.Lasers)
}

// InstallationCanShoot reports whether a working installation has a weapon that could fire.
func InstallationCanShoot(in *campaign.Installation) bool {
	return in.Status == campaign.InstallationWorking && weaponsCanShoot(in.Batteries)
}
