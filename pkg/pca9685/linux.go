package pca9685

import (
	"errors"
	"fmt"
	"sync"

	i2c "github.com/aliher1911/go-i2c"
	logger "github.com/d2r2/go-logger"
)

// LinuxI2C implements tinygo.org/x/drivers.I2C on /dev/i2c-N. go-i2c binds a
// handle to one address, so a handle is opened per address on first use.
type LinuxI2C struct {
	number int

	mu      sync.Mutex
	handles map[uint16]*i2c.I2C
}

// NewLinuxI2C prepares /dev/i2c-<number>. Nothing is opened until the first
// transfer.
func NewLinuxI2C(number int) *LinuxI2C {
	// go-i2c logs every transfer at debug level.
	logger.ChangePackageLogLevel("i2c", logger.InfoLevel)

	return &LinuxI2C{
		number:  number,
		handles: make(map[uint16]*i2c.I2C),
	}
}

// Tx writes w, then reads len(r) bytes, as two transfers.
func (l *LinuxI2C) Tx(addr uint16, w, r []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, err := l.handle(addr)
	if err != nil {
		return err
	}

	if len(w) > 0 {
		c, err := h.WriteBytes(w)
		if err != nil {
			return err
		}
		if exp := len(w); exp != c {
			return fmt.Errorf("expected to write %d bytes, wrote %d", exp, c)
		}
	}
	if len(r) > 0 {
		c, err := h.ReadBytes(r)
		if err != nil {
			return err
		}
		if exp := len(r); exp != c {
			return fmt.Errorf("expected to read %d bytes, read %d", exp, c)
		}
	}
	return nil
}

func (l *LinuxI2C) handle(addr uint16) (*i2c.I2C, error) {
	if h, ok := l.handles[addr]; ok {
		return h, nil
	}
	if addr > 0x7f {
		return nil, fmt.Errorf("i2c: address 0x%x is not a 7-bit address", addr)
	}
	h, err := i2c.NewI2C(uint8(addr), l.number)
	if err != nil {
		return nil, fmt.Errorf("open /dev/i2c-%d at 0x%02x: %w", l.number, addr, err)
	}
	l.handles[addr] = h
	return h, nil
}

// Close closes every open handle.
func (l *LinuxI2C) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for addr, h := range l.handles {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close 0x%02x: %w", addr, err))
		}
		delete(l.handles, addr)
	}
	return errors.Join(errs...)
}
