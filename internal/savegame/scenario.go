package savegame

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OCAP2/airfight/pkg/core"
	"github.com/spf13/viper"
)

// ErrNoScenario is returned when the configuration holds no named campaign.
var ErrNoScenario = errors.New("no scenario configured")

// LoadScenario decodes the starting campaign stored under key in the global
// viper configuration. A scenario has the layout of a snapshot. Viper folds
// map keys to lower case, so storage item ids must be lower case too.
func LoadScenario(key string) (*core.Snapshot, error) {
	raw := viper.Get(key)
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", key, ErrNoScenario)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("error encoding scenario: %w", err)
	}
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("error decoding scenario: %w", err)
	}
	if snap.Name == "" {
		return nil, fmt.Errorf("%s has no name: %w", key, ErrNoScenario)
	}
	return &snap, nil
}
