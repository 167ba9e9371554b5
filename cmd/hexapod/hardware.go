package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swapsCAPS/hexapod/pkg/gait"
	"github.com/swapsCAPS/hexapod/pkg/pca9685"
	"github.com/swapsCAPS/hexapod/pkg/robot"
	"github.com/swapsCAPS/hexapod/pkg/servo"
)

const retryBackoff = 20 * time.Millisecond

// loadConfig reads the config file named by --config, falling back to the
// defaults when it does not exist.
func loadConfig() (*robot.Config, error) {
	cfg := robot.DefaultConfig()
	if robot.ConfigExists(opts.Config) {
		var err error
		cfg, err = robot.LoadConfigFrom(opts.Config)
		if err != nil {
			return nil, err
		}
		log.Debugf("loaded configuration from %s", opts.Config)
	} else {
		log.Warnf("%s not found, using default calibration", opts.Config)
	}

	if opts.DryRun {
		cfg.Bus.Driver = robot.DriverSim
		cfg.Bus.OutputEnablePin = -1
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// hexapod is the opened hardware: the board chain, the optional OE pin and
// the sequencer driving the legs.
type hexapod struct {
	chain *pca9685.Chain
	oe    *pca9685.OutputEnable
	seq   *gait.Sequencer
}

func openHexapod(cfg *robot.Config, mode gait.Mode) (*hexapod, error) {
	chain, err := openChain(cfg)
	if err != nil {
		return nil, err
	}

	seq, err := gait.New(servo.NewRetryBus(chain, cfg.Bus.Retries, retryBackoff), cfg.Calibration, gait.Config{
		PhaseDelay: cfg.Gait.PhaseDelay(),
		Mode:       mode,
	})
	if err != nil {
		chain.Close()
		return nil, err
	}

	h := &hexapod{chain: chain, seq: seq}
	if cfg.Bus.OutputEnablePin >= 0 {
		h.oe, err = pca9685.OpenOutputEnable(cfg.Bus.OutputEnablePin)
		if err != nil {
			seq.Close()
			return nil, err
		}
		h.oe.Enable()
	}
	return h, nil
}

func openChain(cfg *robot.Config) (*pca9685.Chain, error) {
	chain, err := pca9685.Open(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("failed to open PWM boards: %w", err)
	}
	return chain, nil
}

func (h *hexapod) Close() error {
	if h.oe != nil {
		h.oe.Close()
	}
	return h.seq.Close()
}

// withHexapod loads the config, opens the hardware and runs f.
func withHexapod(mode gait.Mode, f func(h *hexapod) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	h, err := openHexapod(cfg, mode)
	if err != nil {
		return err
	}
	defer h.Close()
	return f(h)
}

func modeFromConfig(cfg *robot.Config) gait.Mode {
	if cfg.Gait.FullCycle {
		return gait.ModeCycle
	}
	return gait.ModeReset
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
