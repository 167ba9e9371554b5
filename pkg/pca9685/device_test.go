package pca9685

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tx struct {
	Addr uint16
	W    []byte
	Rn   int
}

// fakeI2C emulates the register file of each addressed device, including
// auto-increment on multi-byte writes.
type fakeI2C struct {
	regs map[uint16]*[256]byte
	txs  []tx
	err  error
}

func newFakeI2C() *fakeI2C {
	return &fakeI2C{regs: make(map[uint16]*[256]byte)}
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.txs = append(f.txs, tx{Addr: addr, W: append([]byte(nil), w...), Rn: len(r)})
	if f.err != nil {
		return f.err
	}

	regs, ok := f.regs[addr]
	if !ok {
		regs = new([256]byte)
		f.regs[addr] = regs
	}
	if len(w) == 0 {
		return nil
	}
	reg := w[0]
	for i, b := range w[1:] {
		regs[reg+byte(i)] = b
	}
	for i := range r {
		r[i] = regs[reg+byte(i)]
	}
	return nil
}

func newTestDevice(bus *fakeI2C, addr uint16) (*Device, *[]time.Duration) {
	var slept []time.Duration
	d := New(bus, addr)
	d.sleep = func(dur time.Duration) { slept = append(slept, dur) }
	return d, &slept
}

func TestPrescale(t *testing.T) {
	tests := []struct {
		hz       float64
		expected byte
	}{
		{60, 101},
		{50, 121},
		{1526, 3},
		{1e6, 3},  // clamped
		{1, 255},  // clamped
		{200, 30}, // 30.5 rounds to 31, minus one
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Prescale(tt.hz), "Prescale(%v)", tt.hz)
	}
}

func TestDevice_Configure(t *testing.T) {
	bus := newFakeI2C()
	d, slept := newTestDevice(bus, 0x41)

	require.NoError(t, d.Configure(60))

	regs := bus.regs[0x41]
	assert.Equal(t, byte(101), regs[regPrescale])
	assert.Equal(t, byte(mode2OutDrv), regs[regMode2])
	assert.Equal(t, byte(mode1Restart|mode1AI|mode1AllCall), regs[regMode1])
	assert.Equal(t, []time.Duration{wakeDelay, wakeDelay}, *slept)

	// The prescaler is written while the oscillator sleeps.
	var sleepingPrescale bool
	mode1 := byte(0)
	for _, tx := range bus.txs {
		if len(tx.W) == 2 && tx.W[0] == regMode1 {
			mode1 = tx.W[1]
		}
		if len(tx.W) == 2 && tx.W[0] == regPrescale {
			sleepingPrescale = mode1&mode1Sleep != 0
		}
	}
	assert.True(t, sleepingPrescale)
}

func TestDevice_SetPWM(t *testing.T) {
	bus := newFakeI2C()
	d, _ := newTestDevice(bus, 0)

	require.NoError(t, d.SetPWM(3, 0, 375))
	require.NoError(t, d.SetPWM(15, 10, 5000))

	want := []tx{
		{Addr: DefaultAddress, W: []byte{0x12, 0x00, 0x00, 0x77, 0x01}},
		{Addr: DefaultAddress, W: []byte{0x42, 0x0A, 0x00, 0xFF, 0x0F}},
	}
	if diff := cmp.Diff(want, bus.txs); diff != "" {
		t.Errorf("writes mismatch (-want +got):\n%s", diff)
	}
}

func TestDevice_OffRegisters(t *testing.T) {
	bus := newFakeI2C()
	d, _ := newTestDevice(bus, 0x40)

	require.NoError(t, d.FullOff(1))
	require.NoError(t, d.AllOff())

	want := []tx{
		{Addr: 0x40, W: []byte{0x0A, 0, 0, 0, fullOff}},
		{Addr: 0x40, W: []byte{regAllLED, 0, 0, 0, fullOff}},
	}
	if diff := cmp.Diff(want, bus.txs); diff != "" {
		t.Errorf("writes mismatch (-want +got):\n%s", diff)
	}
}

func TestDevice_Errors(t *testing.T) {
	bus := newFakeI2C()
	d, _ := newTestDevice(bus, 0x40)

	assert.ErrorIs(t, d.SetPWM(16, 0, 100), ErrChannel)
	assert.ErrorIs(t, d.SetPWM(-1, 0, 100), ErrChannel)
	assert.ErrorIs(t, d.FullOff(16), ErrChannel)
	assert.Error(t, d.SetFrequency(0))
	assert.Empty(t, bus.txs)

	nack := errors.New("nack")
	bus.err = nack
	assert.ErrorIs(t, d.SetPWM(0, 0, 100), nack)
	assert.ErrorIs(t, d.SetFrequency(60), nack)
}
