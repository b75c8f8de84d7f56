package item

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

// ErrUnknownItem is returned when an item id does not resolve in the catalog.
var ErrUnknownItem = errors.New("unknown item")

// Catalog maps item ids to definitions.
type Catalog struct {
	items map[string]*Item
}

// NewCatalog creates a catalog holding the given items.
func NewCatalog(items ...*Item) (*Catalog, error) {
	c := &Catalog{items: make(map[string]*Item, len(items))}
	for _, it := range items {
		if err := c.Register(it); err != nil {
			return nil, err
		}
	}
	for _, it := range items {
		for _, ammo := range it.Ammos {
			if _, ok := c.items[ammo]; !ok {
				return nil, fmt.Errorf("item %s accepts %s: %w", it.ID, ammo, ErrUnknownItem)
			}
		}
	}
	return c, nil
}

// Register adds an item. Duplicate ids are rejected.
func (c *Catalog) Register(it *Item) error {
	if it == nil || it.ID == "" {
		return errors.New("item without id")
	}
	if _, ok := c.items[it.ID]; ok {
		return fmt.Errorf("duplicate item id: %s", it.ID)
	}
	c.items[it.ID] = it
	return nil
}

// Get looks an item up by id.
func (c *Catalog) Get(id string) (*Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Lookup looks an item up by id and wraps ErrUnknownItem when it is missing.
func (c *Catalog) Lookup(id string) (*Item, error) {
	it, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownItem)
	}
	return it, nil
}

// IDs returns all item ids, sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Definition is the configuration form of an Item.
type Definition struct {
	ID               string             `json:"id" mapstructure:"id"`
	Name             string             `json:"name" mapstructure:"name"`
	Type             string             `json:"type" mapstructure:"type"`
	Weight           string             `json:"weight" mapstructure:"weight"`
	Stats            map[string]float64 `json:"stats" mapstructure:"stats"`
	WeaponDamage     float64            `json:"weaponDamage" mapstructure:"weaponDamage"`
	WeaponSpeed      float64            `json:"weaponSpeed" mapstructure:"weaponSpeed"`
	WeaponDelay      int                `json:"weaponDelay" mapstructure:"weaponDelay"`
	InstallationTime int                `json:"installationTime" mapstructure:"installationTime"`
	Ammo             int                `json:"ammo" mapstructure:"ammo"`
	Ammos            []string           `json:"ammos" mapstructure:"ammos"`
	Bullets          bool               `json:"bullets" mapstructure:"bullets"`
	Laser            bool               `json:"laser" mapstructure:"laser"`
}

// Build converts the definition into an Item.
func (d Definition) Build() (*Item, error) {
	typ, err := ParseType(d.Type)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", d.ID, err)
	}
	weight, err := ParseWeight(d.Weight)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", d.ID, err)
	}
	it := &Item{
		ID:               d.ID,
		Name:             d.Name,
		Type:             typ,
		Weight:           weight,
		WeaponDamage:     d.WeaponDamage,
		WeaponSpeed:      d.WeaponSpeed,
		WeaponDelay:      d.WeaponDelay,
		InstallationTime: d.InstallationTime,
		Ammo:             d.Ammo,
		Ammos:            d.Ammos,
		Bullets:          d.Bullets,
		Laser:            d.Laser,
	}
	if it.Name == "" {
		it.Name = it.ID
	}
	for name, v := range d.Stats {
		stat, err := ParseStat(name)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", d.ID, err)
		}
		it.Stats[stat] = v
	}
	return it, nil
}

// LoadCatalog builds a catalog from the item definitions stored under key in
// the global viper configuration.
func LoadCatalog(key string) (*Catalog, error) {
	var defs []Definition
	if err := viper.UnmarshalKey(key, &defs); err != nil {
		return nil, fmt.Errorf("error decoding item definitions: %w", err)
	}
	items := make([]*Item, 0, len(defs))
	for _, d := range defs {
		it, err := d.Build()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return NewCatalog(items...)
}
