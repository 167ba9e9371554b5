// Package servo maps joint angles to PCA9685 pulse widths.
package servo

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultFrequency is the PWM frequency used for standard analog servos.
const DefaultFrequency = 60.0

var log = logrus.WithFields(logrus.Fields{
	"pkg": "servo",
})

// Bus is a PWM output with addressable channels. Implementations must
// serialize writes; several joints share one Bus.
type Bus interface {
	// SetChannelPulse sets the tick (0..4095) at which the channel turns on and
	// the tick at which it turns off.
	SetChannelPulse(channel, on, off int) error
	// SetFrequency sets the PWM frequency of every channel.
	SetFrequency(hz float64) error
	Close() error
}

// RetryBus retries failed writes a bounded number of times before giving up.
// Errors wrapping ErrInvalidChannel are returned at once.
type RetryBus struct {
	Bus
	Attempts int
	Backoff  time.Duration

	sleep func(time.Duration)
}

// NewRetryBus wraps bus. With retries <= 0 the bus is returned unchanged.
func NewRetryBus(bus Bus, retries int, backoff time.Duration) Bus {
	if retries <= 0 {
		return bus
	}
	return &RetryBus{
		Bus:      bus,
		Attempts: retries,
		Backoff:  backoff,
		sleep:    time.Sleep,
	}
}

func (r *RetryBus) SetChannelPulse(channel, on, off int) error {
	return r.retry("set channel pulse", func() error {
		return r.Bus.SetChannelPulse(channel, on, off)
	})
}

func (r *RetryBus) SetFrequency(hz float64) error {
	return r.retry("set frequency", func() error {
		return r.Bus.SetFrequency(hz)
	})
}

func (r *RetryBus) retry(op string, f func() error) error {
	err := f()
	for i := 0; err != nil && i < r.Attempts; i++ {
		if errors.Is(err, ErrInvalidChannel) {
			return err
		}
		log.WithError(err).Warnf("%s failed, retry %d/%d", op, i+1, r.Attempts)
		if r.Backoff > 0 && r.sleep != nil {
			r.sleep(r.Backoff)
		}
		err = f()
	}
	return err
}
