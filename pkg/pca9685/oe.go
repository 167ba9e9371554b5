package pca9685

import (
	"fmt"

	rpio "github.com/stianeikeland/go-rpio/v4"
)

// OutputEnable drives the active-low OE input shared by the boards. While
// disabled every output floats and the servos go limp.
type OutputEnable struct {
	pin rpio.Pin
}

// OpenOutputEnable claims the GPIO with the given BCM number. The outputs
// start disabled.
func OpenOutputEnable(bcm int) (*OutputEnable, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open GPIO: %w", err)
	}

	pin := rpio.Pin(bcm)
	pin.Output()
	pin.High()
	log.Infof("output enable on GPIO %d", bcm)

	return &OutputEnable{pin: pin}, nil
}

func (o *OutputEnable) Enable() {
	o.pin.Low()
}

func (o *OutputEnable) Disable() {
	o.pin.High()
}

// Close releases the GPIO memory mapping. The pin keeps its level, so servos
// hold their pose after the process exits.
func (o *OutputEnable) Close() error {
	return rpio.Close()
}
