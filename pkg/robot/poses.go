package robot

import "fmt"

// PoseName names a leg transition.
type PoseName string

const (
	Reset    PoseName = "reset"
	Raise    PoseName = "raise"
	Lower    PoseName = "lower"
	Forward  PoseName = "forward"
	Backward PoseName = "backward"
)

// AllPoses returns every pose name.
func AllPoses() []PoseName {
	return []PoseName{Reset, Raise, Lower, Forward, Backward}
}

// Target is the angle one joint is driven to.
type Target struct {
	Joint JointName
	Angle float64
}

// Pose is an ordered list of joint targets. Joints not listed hold.
type Pose []Target

// PoseTable resolves a pose for a leg. The literal table below is one
// implementation; a kinematics solver can replace it without touching the
// legs or the gait.
type PoseTable interface {
	Pose(id Identity, name PoseName) (Pose, error)
}

// StaticPoses is a PoseTable backed by literal angles.
type StaticPoses map[Identity]map[PoseName]Pose

func (t StaticPoses) Pose(id Identity, name PoseName) (Pose, error) {
	p, ok := t[id][name]
	if !ok {
		return nil, fmt.Errorf("no %s pose for %s leg", name, id)
	}
	return p, nil
}

// Knee and ankle angles shared by every leg.
var (
	raisePose = Pose{{Knee, 120}, {Ankle, 60}}
	lowerPose = Pose{{Knee, 90}, {Ankle, 140}}
)

// DefaultPoses returns the hand-tuned pose table.
func DefaultPoses() StaticPoses {
	type row struct {
		pelvis, knee, ankle float64
		forward, backward   float64
	}
	rows := map[Identity]row{
		FrontLeft:   {0, 30, 120, 180, 90},
		MiddleLeft:  {90, 30, 100, 110, 80},
		BackLeft:    {180, 30, 90, 90, 0},
		FrontRight:  {180, 140, 140, 180, 90},
		MiddleRight: {90, 140, 140, 110, 80},
		BackRight:   {0, 140, 140, 90, 0},
	}

	t := make(StaticPoses, len(rows))
	for id, r := range rows {
		t[id] = map[PoseName]Pose{
			Reset:    {{Pelvis, r.pelvis}, {Knee, r.knee}, {Ankle, r.ankle}},
			Forward:  {{Pelvis, r.forward}},
			Backward: {{Pelvis, r.backward}},
			Raise:    raisePose,
			Lower:    lowerPose,
		}
	}
	return t
}
