package pca9685

import (
	"fmt"

	"tinygo.org/x/drivers"

	"github.com/swapsCAPS/hexapod/pkg/robot"
)

// Open opens the boards described by cfg and sets their PWM frequency.
func Open(cfg robot.BusConfig) (*Chain, error) {
	addrs := make([]uint16, cfg.Boards)
	for i := range addrs {
		addrs[i] = cfg.Address + uint16(i)
	}

	var chain *Chain
	switch cfg.Driver {
	case robot.DriverPeriph:
		var err error
		chain, err = OpenPeriph(cfg.Device, addrs...)
		if err != nil {
			return nil, err
		}

	case robot.DriverI2C:
		bus := NewLinuxI2C(cfg.Number)
		boards, err := configureDevices(bus, addrs, cfg.FrequencyHz)
		if err != nil {
			bus.Close()
			return nil, err
		}
		// Devices are configured with the frequency already.
		log.Infof("opened %d board(s) on /dev/i2c-%d", len(boards), cfg.Number)
		return NewChain(bus, boards...), nil

	case robot.DriverSim:
		boards := make([]Board, len(addrs))
		for i, a := range addrs {
			boards[i] = Sim{Addr: a}
		}
		chain = NewChain(nil, boards...)

	default:
		return nil, fmt.Errorf("unknown bus driver %q", cfg.Driver)
	}

	if err := chain.SetFrequency(cfg.FrequencyHz); err != nil {
		chain.Close()
		return nil, err
	}
	log.Infof("opened %d board(s) with %s driver", len(addrs), cfg.Driver)
	return chain, nil
}

func configureDevices(bus drivers.I2C, addrs []uint16, hz float64) ([]Board, error) {
	boards := make([]Board, 0, len(addrs))
	for _, addr := range addrs {
		d := New(bus, addr)
		if err := d.Configure(hz); err != nil {
			return nil, err
		}
		boards = append(boards, d)
	}
	return boards, nil
}
