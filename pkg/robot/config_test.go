package robot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 32, cfg.Channels())
	assert.Equal(t, time.Second, cfg.Gait.PhaseDelay())
	assert.Equal(t, uint16(0x40), cfg.Bus.Address)
	assert.Equal(t, 60.0, cfg.Bus.FrequencyHz)
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"hexapod.json", "hexapod.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := DefaultConfig()
			cfg.Bus.Driver = DriverI2C
			cfg.Bus.Retries = 2
			cfg.Gait.PhaseDelayMs = 250
			lc := cfg.Calibration["ML"]
			lc.Knee.PulseMin = 170
			cfg.Calibration["ML"] = lc

			require.NoError(t, cfg.SaveTo(path))
			assert.True(t, ConfigExists(path))

			loaded, err := LoadConfigFrom(path)
			require.NoError(t, err)
			if diff := cmp.Diff(cfg, loaded); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfigFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hexapod.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bus": {"driver": "sim"}}`), 0644))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSim, cfg.Bus.Driver)
	assert.Equal(t, 2, cfg.Bus.Boards)
	assert.Equal(t, DefaultCalibration(), cfg.Calibration)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFrom_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hexapod.toml")
	data := `
[bus]
driver = "i2c"
boards = 1
address = 0x41

[gait]
phase_delay_ms = 500
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DriverI2C, cfg.Bus.Driver)
	assert.Equal(t, uint16(0x41), cfg.Bus.Address)
	assert.Equal(t, 500*time.Millisecond, cfg.Gait.PhaseDelay())

	// 18 default channels do not fit on one board.
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigFrom_Errors(t *testing.T) {
	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bus": `), 0644))
	_, err = LoadConfigFrom(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.Bus.Driver = "spi" }},
		{"boards", func(c *Config) { c.Bus.Boards = 0 }},
		{"address", func(c *Config) { c.Bus.Address = 0x7f }},
		{"frequency", func(c *Config) { c.Bus.FrequencyHz = 0 }},
		{"delay", func(c *Config) { c.Gait.PhaseDelayMs = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
