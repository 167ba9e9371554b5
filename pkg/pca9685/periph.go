package pca9685

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	periphpca "periph.io/x/devices/v3/pca9685"
	"periph.io/x/host/v3"
)

// periphBoard adapts the periph.io driver to Board.
type periphBoard struct {
	dev *periphpca.Dev
}

func (b periphBoard) SetPWM(pin, on, off int) error {
	if pin < 0 || pin >= Channels {
		return fmt.Errorf("%w: %d", ErrChannel, pin)
	}
	return b.dev.SetPwm(pin, gpio.Duty(clamp(on, 0, maxTick)), gpio.Duty(clamp(off, 0, maxTick)))
}

func (b periphBoard) SetFrequency(hz float64) error {
	return b.dev.SetPwmFreq(physic.Frequency(hz * float64(physic.Hertz)))
}

func (b periphBoard) AllOff() error {
	return b.dev.SetAllPwm(0, 0)
}

// OpenPeriph opens the named periph I2C bus ("" for the first one) and one
// board per address.
func OpenPeriph(name string, addrs ...uint16) (*Chain, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}

	boards, err := periphBoards(bus, addrs)
	if err != nil {
		bus.Close()
		return nil, err
	}
	return NewChain(bus, boards...), nil
}

func periphBoards(bus i2c.Bus, addrs []uint16) ([]Board, error) {
	boards := make([]Board, 0, len(addrs))
	for _, addr := range addrs {
		dev, err := periphpca.NewI2C(bus, addr)
		if err != nil {
			return nil, fmt.Errorf("pca9685 at 0x%02x: %w", addr, err)
		}
		boards = append(boards, periphBoard{dev: dev})
	}
	return boards, nil
}
