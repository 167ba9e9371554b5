package robot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapsCAPS/hexapod/pkg/servo"
)

type write struct {
	Channel, On, Off int
}

// recordBus records writes and fails every write to a channel in failOn.
type recordBus struct {
	writes []write
	failOn map[int]bool
}

var errBus = errors.New("i2c: nack")

func (b *recordBus) SetChannelPulse(channel, on, off int) error {
	if b.failOn[channel] {
		return errBus
	}
	b.writes = append(b.writes, write{channel, on, off})
	return nil
}

func (b *recordBus) SetFrequency(float64) error { return nil }
func (b *recordBus) Close() error               { return nil }

func newTestLeg(t *testing.T, bus servo.Bus, id Identity) *Leg {
	t.Helper()
	cal, ok := DefaultCalibration().Leg(id)
	require.True(t, ok)
	leg, err := NewLeg(bus, id, cal, DefaultPoses())
	require.NoError(t, err)
	return leg
}

func TestLeg_ResetUsesPoseTable(t *testing.T) {
	tests := []struct {
		id                  Identity
		pelvis, knee, ankle float64
	}{
		{FrontLeft, 0, 30, 120},
		{MiddleLeft, 90, 30, 100},
		{BackLeft, 180, 30, 90},
		{FrontRight, 180, 140, 140},
		{MiddleRight, 90, 140, 140},
		{BackRight, 0, 140, 140},
	}

	for _, tt := range tests {
		t.Run(tt.id.Short(), func(t *testing.T) {
			leg := newTestLeg(t, &recordBus{}, tt.id)
			require.NoError(t, leg.Reset())
			assert.Equal(t, map[JointName]float64{
				Pelvis: tt.pelvis,
				Knee:   tt.knee,
				Ankle:  tt.ankle,
			}, leg.Angles())
		})
	}
}

func TestLeg_ForwardBackwardMovePelvisOnly(t *testing.T) {
	tests := []struct {
		id                Identity
		forward, backward float64
	}{
		{FrontLeft, 180, 90},
		{MiddleLeft, 110, 80},
		{BackLeft, 90, 0},
		{FrontRight, 180, 90},
		{MiddleRight, 110, 80},
		{BackRight, 90, 0},
	}

	for _, tt := range tests {
		t.Run(tt.id.Short(), func(t *testing.T) {
			bus := &recordBus{}
			leg := newTestLeg(t, bus, tt.id)
			pelvis := leg.Joint(Pelvis)

			require.NoError(t, leg.Forward())
			require.Len(t, bus.writes, 1)
			assert.Equal(t, pelvis.Channel(), bus.writes[0].Channel)
			a, _ := pelvis.Angle()
			assert.Equal(t, tt.forward, a)

			require.NoError(t, leg.Backward())
			require.Len(t, bus.writes, 2)
			a, _ = pelvis.Angle()
			assert.Equal(t, tt.backward, a)
		})
	}
}

func TestLeg_RaiseThenLowerIsIdempotent(t *testing.T) {
	for _, id := range AllLegs() {
		leg := newTestLeg(t, &recordBus{}, id)
		require.NoError(t, leg.Reset())

		for i := 0; i < 3; i++ {
			require.NoError(t, leg.Raise())
			assert.Equal(t, 120.0, leg.Angles()[Knee])
			assert.Equal(t, 60.0, leg.Angles()[Ankle])

			require.NoError(t, leg.Lower())
			assert.Equal(t, 90.0, leg.Angles()[Knee])
			assert.Equal(t, 140.0, leg.Angles()[Ankle])
		}
	}
}

func TestLeg_FailFast(t *testing.T) {
	cal, _ := DefaultCalibration().Leg(FrontLeft)
	bus := &recordBus{failOn: map[int]bool{cal.Knee.Channel: true}}
	leg := newTestLeg(t, bus, FrontLeft)

	err := leg.Reset()
	var berr *servo.BusError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, cal.Knee.Channel, berr.Channel)

	// Pelvis moved before the failure; the ankle was never written.
	assert.Equal(t, []write{{cal.Pelvis.Channel, 0, cal.Pelvis.PulseMin}}, bus.writes)
	assert.Equal(t, map[JointName]float64{Pelvis: 0}, leg.Angles())
}

func TestLeg_OutOfRangePoseAborts(t *testing.T) {
	poses := DefaultPoses()
	poses[BackLeft][Reset] = Pose{{Pelvis, 200}, {Knee, 30}}

	cal, _ := DefaultCalibration().Leg(BackLeft)
	bus := &recordBus{}
	leg, err := NewLeg(bus, BackLeft, cal, poses)
	require.NoError(t, err)

	err = leg.Reset()
	var oerr *servo.OutOfRangeError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, 200.0, oerr.Angle)
	assert.Empty(t, bus.writes)
}

func TestLeg_UnknownPose(t *testing.T) {
	leg := newTestLeg(t, &recordBus{}, MiddleRight)
	assert.Error(t, leg.Apply("wave"))
}

func TestLeg_Center(t *testing.T) {
	leg := newTestLeg(t, &recordBus{}, BackRight)
	require.NoError(t, leg.Center())
	assert.Equal(t, map[JointName]float64{Pelvis: 90, Knee: 90, Ankle: 90}, leg.Angles())
}

func TestNewLeg_InvalidCalibration(t *testing.T) {
	cal, _ := DefaultCalibration().Leg(FrontRight)
	cal.Ankle.PulseMax = cal.Ankle.PulseMin

	_, err := NewLeg(&recordBus{}, FrontRight, cal, DefaultPoses())
	var cerr *servo.ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestParseIdentity(t *testing.T) {
	for _, id := range AllLegs() {
		got, err := ParseIdentity(id.Short())
		require.NoError(t, err)
		assert.Equal(t, id, got)

		got, err = ParseIdentity(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	assert.Equal(t, "FL", FrontLeft.Short())
	assert.Equal(t, "MR", MiddleRight.Short())

	_, err := ParseIdentity("XX")
	assert.Error(t, err)
}
