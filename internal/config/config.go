package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "airfight.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// WebSocketConfig holds the live feed backend settings
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
}

// ReloadDelayConfig multiplies an ammo's weapon delay after a reload, per slot owner.
type ReloadDelayConfig struct {
	Aircraft     int
	UFO          int
	Base         int
	Installation int
}

// CombatConfig tunes the air-combat engine
type CombatConfig struct {
	Seed           uint64
	MaxProjectiles int
	TickSeconds    int
	// TickInterval is the wall time between two ticks.
	TickInterval time.Duration
	ReloadDelay  ReloadDelayConfig
}

// MonitorConfig controls the status sampler
type MonitorConfig struct {
	StatusFile string
	Interval   time.Duration
}

// OTelConfig holds the OpenTelemetry settings read from the config file
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./airfightlogs")

	viper.SetDefault("combat.seed", 0)
	viper.SetDefault("combat.maxProjectiles", 32)
	viper.SetDefault("combat.tickSeconds", 5)
	viper.SetDefault("combat.tickInterval", "1s")
	viper.SetDefault("combat.reloadDelay.aircraft", 100)
	viper.SetDefault("combat.reloadDelay.ufo", 10)
	viper.SetDefault("combat.reloadDelay.base", 100)
	viper.SetDefault("combat.reloadDelay.installation", 100)

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.uploadOnExit", false)

	viper.SetDefault("monitor.statusFile", "")
	viper.SetDefault("monitor.interval", "1s")

	viper.SetDefault("terrain.land", []string{})

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "airfight")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "airfight-metrics")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./saves")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpPath", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.websocket.url", "")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "airfight")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig builds the typed storage configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
	}
}

// GetCombatConfig builds the typed combat configuration.
func GetCombatConfig() CombatConfig {
	return CombatConfig{
		Seed:           viper.GetUint64("combat.seed"),
		MaxProjectiles: viper.GetInt("combat.maxProjectiles"),
		TickSeconds:    viper.GetInt("combat.tickSeconds"),
		TickInterval:   viper.GetDuration("combat.tickInterval"),
		ReloadDelay: ReloadDelayConfig{
			Aircraft:     viper.GetInt("combat.reloadDelay.aircraft"),
			UFO:          viper.GetInt("combat.reloadDelay.ufo"),
			Base:         viper.GetInt("combat.reloadDelay.base"),
			Installation: viper.GetInt("combat.reloadDelay.installation"),
		},
	}
}

// GetMonitorConfig builds the typed status monitor configuration.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		StatusFile: viper.GetString("monitor.statusFile"),
		Interval:   viper.GetDuration("monitor.interval"),
	}
}

// GetOTelConfig builds the typed OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}
