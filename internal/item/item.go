// Package item holds craft item definitions (weapons, ammo, shields,
// electronics and base defence batteries) and the catalog they are looked up in.
package item

import (
	"fmt"
	"strings"
)

// Stat indexes the per-craft statistic arrays.
type Stat int

const (
	StatSpeed Stat = iota
	StatMaxSpeed
	StatShield
	StatECM
	StatDamage
	StatAccuracy
	StatFuelSize
	StatRange
	StatAntimatter

	StatCount
)

var statNames = [StatCount]string{
	"speed", "maxSpeed", "shield", "ecm", "damage", "accuracy", "fuelSize", "range", "antimatter",
}

func (s Stat) String() string {
	if s < 0 || s >= StatCount {
		return fmt.Sprintf("stat(%d)", int(s))
	}
	return statNames[s]
}

// ParseStat resolves a stat name (case-insensitive).
func ParseStat(name string) (Stat, error) {
	for i, n := range statNames {
		if strings.EqualFold(n, name) {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat: %s", name)
}

// Stats is a full stat array.
type Stats [StatCount]float64

// Type is the kind of craft item, which decides the slot it fits in.
type Type int

const (
	TypeWeapon Type = iota
	TypeShield
	TypeElectronics
	TypeBaseMissile
	TypeBaseLaser
	TypeAmmo
	TypeBaseMissileAmmo
	TypeBaseLaserAmmo
)

var typeNames = map[string]Type{
	"weapon":          TypeWeapon,
	"shield":          TypeShield,
	"electronics":     TypeElectronics,
	"basemissile":     TypeBaseMissile,
	"baselaser":       TypeBaseLaser,
	"ammo":            TypeAmmo,
	"basemissileammo": TypeBaseMissileAmmo,
	"baselaserammo":   TypeBaseLaserAmmo,
}

// ParseType resolves an item type name (case-insensitive).
func ParseType(name string) (Type, error) {
	t, ok := typeNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown item type: %s", name)
	}
	return t, nil
}

// IsAmmo reports whether the type is loaded into a weapon rather than mounted.
func (t Type) IsAmmo() bool {
	return t >= TypeAmmo
}

// IsWeapon reports whether the type fires ammo.
func (t Type) IsWeapon() bool {
	return t == TypeWeapon || t == TypeBaseMissile || t == TypeBaseLaser
}

// Weight is the size class of an item; a slot takes items up to its own weight.
type Weight int

const (
	WeightLight Weight = iota
	WeightMedium
	WeightHeavy
)

// ParseWeight resolves a weight name. Empty means light.
func ParseWeight(name string) (Weight, error) {
	switch strings.ToLower(name) {
	case "", "light":
		return WeightLight, nil
	case "medium":
		return WeightMedium, nil
	case "heavy":
		return WeightHeavy, nil
	default:
		return 0, fmt.Errorf("unknown item weight: %s", name)
	}
}

// Item is a craft item definition.
//
// Stat values with an absolute value above 2 are absolute modifiers, smaller
// non-zero values are multipliers. For ammo, Stats[StatAccuracy] is the base
// hit probability and Stats[StatRange] the weapon range in degrees of arc.
type Item struct {
	ID     string
	Name   string
	Type   Type
	Weight Weight
	Stats  Stats

	WeaponDamage float64 // hit points removed per hit, before shields
	WeaponSpeed  float64 // degrees of arc per hour
	WeaponDelay  int     // seconds between two shots

	InstallationTime int // hours

	Ammo    int      // rounds per magazine
	Ammos   []string // ammo ids this weapon accepts
	Bullets bool
	Laser   bool
}

// AcceptsAmmo reports whether ammo can be loaded into this weapon.
func (it *Item) AcceptsAmmo(ammo *Item) bool {
	if it == nil || ammo == nil {
		return false
	}
	for _, id := range it.Ammos {
		if id == ammo.ID {
			return true
		}
	}
	return false
}

func (it *Item) String() string {
	if it == nil {
		return "<none>"
	}
	return it.ID
}
