package pca9685

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "pca9685",
})

// Sim is a board that logs writes instead of touching hardware.
type Sim struct {
	Addr uint16
}

func (s Sim) SetPWM(pin, on, off int) error {
	if pin < 0 || pin >= Channels {
		return fmt.Errorf("%w: %d", ErrChannel, pin)
	}
	log.Infof("0x%02x pin=%d on=%d off=%d", s.Addr, pin, on, off)
	return nil
}

func (s Sim) SetFrequency(hz float64) error {
	log.Infof("0x%02x frequency=%.1fHz prescale=%d", s.Addr, hz, Prescale(hz))
	return nil
}

func (s Sim) AllOff() error {
	log.Infof("0x%02x all off", s.Addr)
	return nil
}
