// Package daemon holds the machine's on-disk configuration.
package daemon

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vendo-machines/vendo/internal/domain"
	"github.com/vendo-machines/vendo/internal/machine"
)

// Config is the top-level vendo configuration, loaded from TOML.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Machine MachineConfig `toml:"machine"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	BaseURL string `toml:"base_url"` // externally reachable prefix for pay pages
	Metrics bool   `toml:"metrics"`
}

// Addr returns the listen address.
func (a APIConfig) Addr() string { return fmt.Sprintf("%s:%d", a.Host, a.Port) }

// StorageConfig configures the sqlite store.
type StorageConfig struct {
	Path string `toml:"path"`
}

// MachineConfig configures transaction timing and the change reserve.
// Durations are strings ("30s", "800ms") as in the rest of the file format.
type MachineConfig struct {
	SessionTimeout string `toml:"session_timeout"`
	PollInterval   string `toml:"poll_interval"`
	ConfirmDelay   string `toml:"confirm_delay"`
	DispenseDelay  string `toml:"dispense_delay"`
	SoldOutDelay   string `toml:"sold_out_delay"`
	NoChangeDelay  string `toml:"no_change_delay"`
	PayoutDelay    string `toml:"payout_delay"`

	// Preloaded change reserve, by coin.
	FloatHundreds int `toml:"float_hundreds"`
	FloatFifties  int `toml:"float_fifties"`
	FloatQuarters int `toml:"float_quarters"`
}

// DefaultConfig returns production defaults matching the physical machine.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    3000,
			BaseURL: "http://localhost:3000",
			Metrics: true,
		},
		Storage: StorageConfig{
			Path: "vendo.db",
		},
		Machine: MachineConfig{
			SessionTimeout: "30s",
			PollInterval:   "1s",
			ConfirmDelay:   "800ms",
			DispenseDelay:  "1500ms",
			SoldOutDelay:   "1500ms",
			NoChangeDelay:  "2s",
			PayoutDelay:    "1s",
			FloatHundreds:  10,
			FloatFifties:   0,
			FloatQuarters:  0,
		},
	}
}

// Load reads the config at path, layering it over defaults. A missing file
// is not an error: defaults apply.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ControllerConfig converts the timing section to the machine's config.
// Unparseable durations fall back to the default for that field.
func (m MachineConfig) ControllerConfig() machine.Config {
	def := machine.DefaultConfig()
	return machine.Config{
		SessionTimeout: parseDuration(m.SessionTimeout, def.SessionTimeout),
		PollInterval:   parseDuration(m.PollInterval, def.PollInterval),
		ConfirmDelay:   parseDuration(m.ConfirmDelay, def.ConfirmDelay),
		DispenseDelay:  parseDuration(m.DispenseDelay, def.DispenseDelay),
		SoldOutDelay:   parseDuration(m.SoldOutDelay, def.SoldOutDelay),
		NoChangeDelay:  parseDuration(m.NoChangeDelay, def.NoChangeDelay),
		PayoutDelay:    parseDuration(m.PayoutDelay, def.PayoutDelay),
		HistoryLimit:   def.HistoryLimit,
	}
}

// Float returns the configured change reserve as coin counts.
func (m MachineConfig) Float() domain.CoinCounts {
	return domain.CoinCounts{100: m.FloatHundreds, 50: m.FloatFifties, 25: m.FloatQuarters}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
