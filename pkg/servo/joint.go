package servo

import (
	"fmt"
	"math"
)

const (
	MinAngle = 0
	MaxAngle = 180

	// MaxPulse is the largest tick of the 12-bit PCA9685 counter.
	MaxPulse = 4095
)

// Calibration holds the hand-tuned pulse range of one joint. PulseMin drives
// the joint to 0 degrees and PulseMax to 180 degrees.
type Calibration struct {
	Channel  int `json:"channel" toml:"channel"`
	PulseMin int `json:"pulse_min" toml:"pulse_min"`
	PulseMax int `json:"pulse_max" toml:"pulse_max"`
}

// Validate reports a *ConfigError if the calibration cannot drive a joint.
func (c Calibration) Validate() error {
	switch {
	case c.Channel < 0:
		return &ConfigError{Channel: c.Channel, Reason: "negative channel"}
	case c.PulseMin >= c.PulseMax:
		return &ConfigError{Channel: c.Channel, Reason: fmt.Sprintf("pulse_min %d >= pulse_max %d", c.PulseMin, c.PulseMax)}
	case c.PulseMin < 0 || c.PulseMax > MaxPulse:
		return &ConfigError{Channel: c.Channel, Reason: fmt.Sprintf("pulses must be within [0, %d]", MaxPulse)}
	}
	return nil
}

// Joint drives one servo channel on a shared bus. The bus is not owned by
// the joint.
type Joint struct {
	bus  Bus
	cal  Calibration
	span int

	angle float64
	moved bool
}

// NewJoint creates a joint. Nothing is written to the bus.
func NewJoint(bus Bus, cal Calibration) (*Joint, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return &Joint{
		bus:  bus,
		cal:  cal,
		span: cal.PulseMax - cal.PulseMin,
	}, nil
}

// Channel returns the bus channel of the joint.
func (j *Joint) Channel() int { return j.cal.Channel }

// Calibration returns the joint's calibration.
func (j *Joint) Calibration() Calibration { return j.cal }

// Angle returns the last angle successfully written. ok is false until the
// first move.
func (j *Joint) Angle() (angle float64, ok bool) {
	return j.angle, j.moved
}

// Pulse converts an angle in [0, 180] to the off tick, rounding half up.
// The span is multiplied before dividing so integer angles land exactly on
// .5 ties.
func (j *Joint) Pulse(angle float64) int {
	return j.cal.PulseMin + int(math.Floor(float64(j.span)*angle/MaxAngle+0.5))
}

// MoveTo drives the joint to angle. Angles outside [0, 180] return an
// *OutOfRangeError and write nothing.
func (j *Joint) MoveTo(angle float64) error {
	if math.IsNaN(angle) || angle < MinAngle || angle > MaxAngle {
		return &OutOfRangeError{Channel: j.cal.Channel, Angle: angle}
	}

	pulse := j.Pulse(angle)
	if err := j.bus.SetChannelPulse(j.cal.Channel, 0, pulse); err != nil {
		return &BusError{Channel: j.cal.Channel, Pulse: pulse, Err: err}
	}
	log.Debugf("channel=%d angle=%.1f pulse=%d", j.cal.Channel, angle, pulse)

	j.angle = angle
	j.moved = true
	return nil
}

// Center moves the joint to 90 degrees.
func (j *Joint) Center() error {
	return j.MoveTo(90)
}
