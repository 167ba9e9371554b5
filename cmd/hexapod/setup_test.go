package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapsCAPS/hexapod/pkg/robot"
	"github.com/swapsCAPS/hexapod/pkg/servo"
)

type pulseBus struct {
	last map[int]int
}

func (b *pulseBus) SetChannelPulse(channel, on, off int) error {
	b.last[channel] = off
	return nil
}

func (b *pulseBus) SetFrequency(float64) error { return nil }
func (b *pulseBus) Close() error              { return nil }

func press(m calibrationModel, keys ...string) calibrationModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(calibrationModel)
	}
	return m
}

func TestCalibrationModel(t *testing.T) {
	bus := &pulseBus{last: map[int]int{}}
	m := newCalibrationModel(bus, robot.DefaultCalibration(), robot.BackLeft, robot.Knee, 10)
	m.write()

	// BL knee is channel 7, starting at the middle of 150..600.
	assert.Equal(t, 375, bus.last[7])

	m = press(m, "down", "down", "h", "[")
	assert.Equal(t, 354, m.pulse)
	assert.Equal(t, 354, bus.last[7])
	assert.Equal(t, 354, m.cal.PulseMin)

	m = press(m, "up", "up", "up", "up", "up", "l", "]", "c")
	assert.Equal(t, 405, m.cal.PulseMax)
	assert.Equal(t, 379, bus.last[7])

	m = press(m, "enter")
	assert.True(t, m.accepted)
	assert.Equal(t, servo.Calibration{Channel: 7, PulseMin: 354, PulseMax: 405}, m.cal)
}

func TestCalibrationModel_RejectsInvertedRange(t *testing.T) {
	bus := &pulseBus{last: map[int]int{}}
	m := newCalibrationModel(bus, robot.DefaultCalibration(), robot.FrontLeft, robot.Pelvis, 5)

	m = press(m, "]", "up", "[", "enter")
	assert.False(t, m.accepted)
	require.Error(t, m.err)

	m = press(m, "q")
	assert.False(t, m.accepted)
	assert.True(t, m.quitting)
}

func TestCalibrationModel_ClampsPulse(t *testing.T) {
	bus := &pulseBus{last: map[int]int{}}
	m := newCalibrationModel(bus, robot.DefaultCalibration(), robot.FrontLeft, robot.Pelvis, 400)

	m = press(m, "down", "down")
	assert.Equal(t, 0, m.pulse)
	for range 12 {
		m = press(m, "up")
	}
	assert.Equal(t, servo.MaxPulse, m.pulse)
}

func TestParseLegs(t *testing.T) {
	legs, err := parseLegs("all")
	require.NoError(t, err)
	assert.Equal(t, robot.AllLegs(), legs)

	legs, err = parseLegs("FL, br")
	require.NoError(t, err)
	assert.Equal(t, []robot.Identity{robot.FrontLeft, robot.BackRight}, legs)

	_, err = parseLegs("FL,XX")
	assert.Error(t, err)
}
