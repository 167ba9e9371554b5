package robot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/swapsCAPS/hexapod/pkg/servo"
)

const DefaultConfigFile = "hexapod.json"

// Bus drivers.
const (
	DriverPeriph = "periph" // periph.io PCA9685 driver
	DriverI2C    = "i2c"    // register-level driver over /dev/i2c-N
	DriverSim    = "sim"    // logs writes, touches no hardware
)

// Config holds the hexapod configuration.
type Config struct {
	Bus         BusConfig   `json:"bus" toml:"bus"`
	Gait        GaitConfig  `json:"gait" toml:"gait"`
	Calibration Calibration `json:"calibration" toml:"calibration"`
}

// BusConfig selects and configures the PWM bus.
type BusConfig struct {
	Driver string `json:"driver" toml:"driver"`
	// Device is the periph bus name ("" for the default bus, "I2C1", ...).
	Device string `json:"device,omitempty" toml:"device,omitempty"`
	// Number is the N in /dev/i2c-N for the i2c driver.
	Number int `json:"number" toml:"number"`
	// Address of the first board; further boards follow at consecutive
	// addresses.
	Address     uint16  `json:"address" toml:"address"`
	Boards      int     `json:"boards" toml:"boards"`
	FrequencyHz float64 `json:"frequency_hz" toml:"frequency_hz"`
	Retries     int     `json:"retries" toml:"retries"`
	// OutputEnablePin is the BCM number of the GPIO wired to the active-low OE
	// input of the boards, or -1 if not wired.
	OutputEnablePin int `json:"output_enable_pin" toml:"output_enable_pin"`
}

// GaitConfig holds gait timing.
type GaitConfig struct {
	PhaseDelayMs int  `json:"phase_delay_ms" toml:"phase_delay_ms"`
	FullCycle    bool `json:"full_cycle" toml:"full_cycle"`
}

// PhaseDelay returns the configured delay between gait phases.
func (g GaitConfig) PhaseDelay() time.Duration {
	return time.Duration(g.PhaseDelayMs) * time.Millisecond
}

// DefaultConfig returns the configuration of the stock robot: two boards at
// 0x40 and 0x41 on /dev/i2c-1, 60 Hz.
func DefaultConfig() *Config {
	return &Config{
		Bus: BusConfig{
			Driver:          DriverPeriph,
			Number:          1,
			Address:         0x40,
			Boards:          2,
			FrequencyHz:     servo.DefaultFrequency,
			OutputEnablePin: -1,
		},
		Gait: GaitConfig{
			PhaseDelayMs: 1000,
			FullCycle:    true,
		},
		Calibration: DefaultCalibration(),
	}
}

// Channels returns the number of PWM channels across all boards.
func (c *Config) Channels() int {
	return c.Bus.Boards * 16
}

// Validate checks the bus settings and the calibration table.
func (c *Config) Validate() error {
	switch c.Bus.Driver {
	case DriverPeriph, DriverI2C, DriverSim:
	default:
		return fmt.Errorf("config: unknown bus driver %q", c.Bus.Driver)
	}
	if c.Bus.Boards < 1 {
		return fmt.Errorf("config: need at least one board, got %d", c.Bus.Boards)
	}
	if c.Bus.Address > 0x7f || int(c.Bus.Address)+c.Bus.Boards-1 > 0x7f {
		return fmt.Errorf("config: address 0x%02x with %d boards is not a 7-bit address range", c.Bus.Address, c.Bus.Boards)
	}
	if c.Bus.FrequencyHz <= 0 {
		return fmt.Errorf("config: frequency must be positive, got %v", c.Bus.FrequencyHz)
	}
	if c.Gait.PhaseDelayMs < 0 {
		return fmt.Errorf("config: negative phase delay %d", c.Gait.PhaseDelayMs)
	}
	return c.Calibration.Validate(c.Channels())
}

// LoadConfigFrom loads configuration from a specific file. Files ending in
// .toml are decoded as TOML, everything else as JSON. Fields missing from the
// file keep their DefaultConfig value.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	// A calibration table in the file replaces the default one instead of
	// merging with it.
	cfg.Calibration = nil
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if cfg.Calibration == nil {
		cfg.Calibration = DefaultCalibration()
	}
	return cfg, nil
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the config file exists
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
