package servo

import (
	"errors"
	"fmt"
)

// ErrInvalidChannel is wrapped by bus errors for a channel the bus does not
// have. Retrying cannot fix them.
var ErrInvalidChannel = errors.New("channel out of range")

// ConfigError reports an unusable joint calibration. It is fatal at startup.
type ConfigError struct {
	Channel int
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("servo: channel %d: invalid calibration: %s", e.Channel, e.Reason)
}

// OutOfRangeError reports a commanded angle outside the joint's travel. The
// move is skipped and the joint keeps its previous angle.
type OutOfRangeError struct {
	Channel int
	Angle   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("servo: channel %d: angle %.2f outside [%d, %d]", e.Channel, e.Angle, MinAngle, MaxAngle)
}

// BusError wraps a failed write to the PWM bus.
type BusError struct {
	Channel int
	Pulse   int
	Err     error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("servo: channel %d: write pulse %d: %v", e.Channel, e.Pulse, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }
