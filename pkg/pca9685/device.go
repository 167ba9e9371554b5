// Package pca9685 drives PCA9685 16-channel PWM boards and exposes one or
// more of them as a servo.Bus.
//
// Two drivers are available: the periph.io PCA9685 driver, and Device, a
// register-level driver over any tinygo.org/x/drivers.I2C (LinuxI2C on a
// Raspberry Pi, fakes in tests).
package pca9685

import (
	"fmt"
	"math"
	"time"

	"tinygo.org/x/drivers"

	"github.com/swapsCAPS/hexapod/pkg/servo"
)

// DefaultAddress is the I2C address of a board with no address jumpers set.
const DefaultAddress = 0x40

// Channels per board.
const Channels = 16

// Registers and bits (per datasheet).
const (
	regMode1    = 0x00
	regMode2    = 0x01
	regLED0     = 0x06
	regAllLED   = 0xFA
	regPrescale = 0xFE

	mode1Restart = 0x80
	mode1AI      = 0x20
	mode1Sleep   = 0x10
	mode1AllCall = 0x01

	mode2OutDrv = 0x04

	fullOff = 0x10 // bit 4 of LEDn_OFF_H

	oscillatorHz = 25_000_000
	maxTick      = 4095

	// The oscillator needs 500us to settle after leaving sleep.
	wakeDelay = 500 * time.Microsecond
)

// ErrChannel is returned for a pin or channel the boards do not have.
var ErrChannel = fmt.Errorf("pca9685: %w", servo.ErrInvalidChannel)

// Board is one 16-channel PWM board.
type Board interface {
	SetPWM(pin, on, off int) error
	SetFrequency(hz float64) error
	// AllOff turns every output of the board fully off, relaxing the servos.
	AllOff() error
}

// Device is a register-level PCA9685 driver.
type Device struct {
	bus  drivers.I2C
	addr uint16

	w [5]byte
	r [1]byte

	sleep func(time.Duration)
}

// New creates a Device. The bus must already be configured; nothing is
// written until Configure.
func New(bus drivers.I2C, addr uint16) *Device {
	if addr == 0 {
		addr = DefaultAddress
	}
	return &Device{
		bus:   bus,
		addr:  addr,
		sleep: time.Sleep,
	}
}

// Address returns the I2C address of the device.
func (d *Device) Address() uint16 { return d.addr }

// Configure puts the outputs in totem-pole mode and enables register
// auto-increment, then sets the PWM frequency.
func (d *Device) Configure(hz float64) error {
	if err := d.AllOff(); err != nil {
		return err
	}
	if err := d.writeReg(regMode2, mode2OutDrv); err != nil {
		return err
	}
	if err := d.writeReg(regMode1, mode1AllCall|mode1AI); err != nil {
		return err
	}
	d.sleep(wakeDelay)
	return d.SetFrequency(hz)
}

// Prescale returns the PRESCALE register value for a PWM frequency.
func Prescale(hz float64) byte {
	p := math.Round(oscillatorHz/(4096*hz)) - 1
	return byte(clamp(p, 3, 255))
}

// SetFrequency sets the PWM frequency. The prescaler can only be written
// while the oscillator sleeps.
func (d *Device) SetFrequency(hz float64) error {
	if hz <= 0 || math.IsNaN(hz) {
		return fmt.Errorf("pca9685: invalid frequency %v", hz)
	}

	old, err := d.readReg(regMode1)
	if err != nil {
		return err
	}
	if err := d.writeReg(regMode1, (old&^mode1Restart)|mode1Sleep); err != nil {
		return err
	}
	if err := d.writeReg(regPrescale, Prescale(hz)); err != nil {
		return err
	}
	if err := d.writeReg(regMode1, old&^mode1Sleep); err != nil {
		return err
	}
	d.sleep(wakeDelay)
	return d.writeReg(regMode1, (old&^mode1Sleep)|mode1Restart|mode1AI)
}

// SetPWM sets the on and off ticks of one output.
func (d *Device) SetPWM(pin, on, off int) error {
	if pin < 0 || pin >= Channels {
		return fmt.Errorf("%w: %d", ErrChannel, pin)
	}
	return d.writeLED(regLED0+4*byte(pin), on, off)
}

// FullOff turns one output fully off.
func (d *Device) FullOff(pin int) error {
	if pin < 0 || pin >= Channels {
		return fmt.Errorf("%w: %d", ErrChannel, pin)
	}
	return d.writeRaw(regLED0+4*byte(pin), 0, 0, 0, fullOff)
}

func (d *Device) AllOff() error {
	return d.writeRaw(regAllLED, 0, 0, 0, fullOff)
}

func (d *Device) writeLED(reg byte, on, off int) error {
	on = clamp(on, 0, maxTick)
	off = clamp(off, 0, maxTick)
	return d.writeRaw(reg, byte(on), byte(on>>8), byte(off), byte(off>>8))
}

func (d *Device) writeRaw(reg, onL, onH, offL, offH byte) error {
	d.w[0] = reg
	d.w[1] = onL
	d.w[2] = onH
	d.w[3] = offL
	d.w[4] = offH
	return d.tx(d.w[:5], nil)
}

func (d *Device) writeReg(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	return d.tx(d.w[:2], nil)
}

func (d *Device) readReg(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.tx(d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *Device) tx(w, r []byte) error {
	if err := d.bus.Tx(d.addr, w, r); err != nil {
		return fmt.Errorf("pca9685 0x%02x: register 0x%02x: %w", d.addr, w[0], err)
	}
	return nil
}
