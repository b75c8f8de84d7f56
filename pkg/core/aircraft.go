package core

// AircraftState is a persisted Phalanx aircraft or UFO.
// Stats are keyed by stat name.
type AircraftState struct {
	TemplateID  string             `json:"template"`
	Name        string             `json:"name"`
	UFO         bool               `json:"ufo"`
	Pos         Position           `json:"pos"`
	Destination Position           `json:"destination"`
	Heading     float64            `json:"heading"`
	Damage      int                `json:"damage"`
	Fuel        int                `json:"fuel"`
	BaseStats   map[string]float64 `json:"baseStats"`
	Stats       map[string]float64 `json:"stats"`

	Weapons     []SlotState `json:"weapons"`
	Electronics []SlotState `json:"electronics"`
	Shield      SlotState   `json:"shield"`

	Status         string `json:"status"`
	AircraftTarget Ref    `json:"aircraftTarget"`
	SiteTarget     Ref    `json:"siteTarget"`
	Homebase       Ref    `json:"homebase"`
	Detected       bool   `json:"detected"`
	Landed         bool   `json:"landed"`
	Mission        string `json:"mission,omitempty"`
}
