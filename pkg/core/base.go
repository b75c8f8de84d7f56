package core

// BuildingState is a persisted base facility.
type BuildingState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// BatteryState is a persisted defence battery and the aircraft it aims at.
type BatteryState struct {
	Slot     SlotState `json:"slot"`
	Target   Ref       `json:"target"`
	AutoFire bool      `json:"autoFire"`
}

// BaseState is a persisted base.
type BaseState struct {
	Name          string          `json:"name"`
	Pos           Position        `json:"pos"`
	Founded       bool            `json:"founded"`
	UnderAttack   bool            `json:"underAttack"`
	Powered       bool            `json:"powered"`
	Batteries     []BatteryState  `json:"batteries"`
	Lasers        []BatteryState  `json:"lasers"`
	BatteryDamage int             `json:"batteryDamage"`
	BaseDamage    int             `json:"baseDamage"`
	Buildings     []BuildingState `json:"buildings"`
	Storage       map[string]int  `json:"storage,omitempty"`
}

// InstallationState is a persisted installation.
type InstallationState struct {
	Name      string         `json:"name"`
	Pos       Position       `json:"pos"`
	Working   bool           `json:"working"`
	Damage    int            `json:"damage"`
	Batteries []BatteryState `json:"batteries"`
}
