package pca9685

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Chain exposes several boards as one servo.Bus. Channel c is output c%16 of
// board c/16. Writes are serialized.
type Chain struct {
	mu     sync.Mutex
	boards []Board
	closer io.Closer
}

// NewChain creates a chain. closer, if not nil, is closed with the chain.
func NewChain(closer io.Closer, boards ...Board) *Chain {
	return &Chain{
		boards: boards,
		closer: closer,
	}
}

// Channels returns the number of addressable channels.
func (c *Chain) Channels() int {
	return len(c.boards) * Channels
}

func (c *Chain) SetChannelPulse(channel, on, off int) error {
	if channel < 0 || channel >= c.Channels() {
		return fmt.Errorf("%w: %d of %d", ErrChannel, channel, c.Channels())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boards[channel/Channels].SetPWM(channel%Channels, on, off)
}

func (c *Chain) SetFrequency(hz float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, b := range c.boards {
		if err := b.SetFrequency(hz); err != nil {
			return fmt.Errorf("board %d: %w", i, err)
		}
	}
	return nil
}

// AllOff turns off every output of every board. All boards are tried even if
// one fails.
func (c *Chain) AllOff() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for i, b := range c.boards {
		if err := b.AllOff(); err != nil {
			errs = append(errs, fmt.Errorf("board %d: all off: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Chain) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
