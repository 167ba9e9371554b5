package robot

import (
	"fmt"

	"github.com/swapsCAPS/hexapod/pkg/servo"
)

// Pulse range of the stock hobby servos at 60 Hz.
const (
	DefaultPulseMin = 150
	DefaultPulseMax = 600
)

// LegCalibration holds the calibration of a leg's three joints.
type LegCalibration struct {
	Pelvis servo.Calibration `json:"pelvis" toml:"pelvis"`
	Knee   servo.Calibration `json:"knee" toml:"knee"`
	Ankle  servo.Calibration `json:"ankle" toml:"ankle"`
}

// Joint returns the calibration of one joint.
func (c LegCalibration) Joint(name JointName) servo.Calibration {
	switch name {
	case Knee:
		return c.Knee
	case Ankle:
		return c.Ankle
	default:
		return c.Pelvis
	}
}

// SetJoint replaces the calibration of one joint.
func (c *LegCalibration) SetJoint(name JointName, cal servo.Calibration) {
	switch name {
	case Knee:
		c.Knee = cal
	case Ankle:
		c.Ankle = cal
	default:
		c.Pelvis = cal
	}
}

// Calibration holds calibration data for all legs, keyed by the leg's short
// name ("FL", "MR", ...).
type Calibration map[string]LegCalibration

// DefaultCalibration wires the legs in AllLegs order to consecutive channels,
// pelvis first, using the stock pulse range.
func DefaultCalibration() Calibration {
	cal := make(Calibration, 6)
	ch := 0
	for _, id := range AllLegs() {
		var lc LegCalibration
		for _, name := range AllJoints() {
			lc.SetJoint(name, servo.Calibration{
				Channel:  ch,
				PulseMin: DefaultPulseMin,
				PulseMax: DefaultPulseMax,
			})
			ch++
		}
		cal[id.Short()] = lc
	}
	return cal
}

// Leg returns the calibration of a leg.
func (c Calibration) Leg(id Identity) (LegCalibration, bool) {
	lc, ok := c[id.Short()]
	return lc, ok
}

// Validate checks that every leg is present, every joint calibration is
// usable, channels are below maxChannel and no channel is used twice.
func (c Calibration) Validate(maxChannel int) error {
	for name := range c {
		if _, err := ParseIdentity(name); err != nil {
			return fmt.Errorf("calibration: %w", err)
		}
	}

	used := make(map[int]string)
	for _, id := range AllLegs() {
		lc, ok := c.Leg(id)
		if !ok {
			return fmt.Errorf("calibration: missing %s leg", id)
		}
		for _, name := range AllJoints() {
			jc := lc.Joint(name)
			if err := jc.Validate(); err != nil {
				return fmt.Errorf("calibration: %s %s: %w", id.Short(), name, err)
			}
			if maxChannel > 0 && jc.Channel >= maxChannel {
				return fmt.Errorf("calibration: %s %s: channel %d beyond last channel %d", id.Short(), name, jc.Channel, maxChannel-1)
			}
			where := id.Short() + " " + string(name)
			if other, dup := used[jc.Channel]; dup {
				return fmt.Errorf("calibration: channel %d used by both %s and %s", jc.Channel, other, where)
			}
			used[jc.Channel] = where
		}
	}
	return nil
}
