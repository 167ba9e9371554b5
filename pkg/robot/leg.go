package robot

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/swapsCAPS/hexapod/pkg/servo"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "robot",
})

// Leg owns the three joints of one physical leg.
type Leg struct {
	id     Identity
	poses  PoseTable
	joints map[JointName]*servo.Joint
}

// NewLeg creates a leg whose joints write to bus. The bus is shared with the
// other legs and is not owned by the leg.
func NewLeg(bus servo.Bus, id Identity, cal LegCalibration, poses PoseTable) (*Leg, error) {
	joints := make(map[JointName]*servo.Joint, 3)
	for _, name := range AllJoints() {
		j, err := servo.NewJoint(bus, cal.Joint(name))
		if err != nil {
			return nil, fmt.Errorf("%s leg %s: %w", id, name, err)
		}
		joints[name] = j
	}

	return &Leg{
		id:     id,
		poses:  poses,
		joints: joints,
	}, nil
}

// ID returns the leg's identity.
func (l *Leg) ID() Identity { return l.id }

// Joint returns one of the leg's joints.
func (l *Leg) Joint(name JointName) *servo.Joint {
	return l.joints[name]
}

// Apply drives the leg into the named pose, one joint after another. It stops
// at the first failing joint; joints already moved stay where they are.
func (l *Leg) Apply(name PoseName) error {
	pose, err := l.poses.Pose(l.id, name)
	if err != nil {
		return err
	}

	log.Debugf("%s %s", l.id.Short(), name)
	for _, t := range pose {
		j, ok := l.joints[t.Joint]
		if !ok {
			return fmt.Errorf("%s leg has no %s joint", l.id, t.Joint)
		}
		if err := j.MoveTo(t.Angle); err != nil {
			return fmt.Errorf("%s %s: %w", l.id.Short(), name, err)
		}
	}
	return nil
}

func (l *Leg) Reset() error    { return l.Apply(Reset) }
func (l *Leg) Raise() error    { return l.Apply(Raise) }
func (l *Leg) Lower() error    { return l.Apply(Lower) }
func (l *Leg) Forward() error  { return l.Apply(Forward) }
func (l *Leg) Backward() error { return l.Apply(Backward) }

// Center moves every joint of the leg to 90 degrees.
func (l *Leg) Center() error {
	for _, name := range AllJoints() {
		if err := l.joints[name].Center(); err != nil {
			return fmt.Errorf("%s %s: %w", l.id.Short(), name, err)
		}
	}
	return nil
}

// Angles returns the last written angle of every joint that has moved.
func (l *Leg) Angles() map[JointName]float64 {
	angles := make(map[JointName]float64, len(l.joints))
	for name, j := range l.joints {
		if a, ok := j.Angle(); ok {
			angles[name] = a
		}
	}
	return angles
}
