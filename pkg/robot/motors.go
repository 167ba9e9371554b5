// Package robot provides the legs of the hexapod and their pose tables.
package robot

import (
	"fmt"
	"strings"
)

// Side of the body a leg is mounted on.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Position of a leg along the body.
type Position string

const (
	Front  Position = "front"
	Middle Position = "middle"
	Back   Position = "back"
)

// Identity identifies one physical leg. It selects the leg's pose table row.
type Identity struct {
	Side     Side
	Position Position
}

// Legs of the hexapod.
var (
	FrontLeft   = Identity{Left, Front}
	MiddleLeft  = Identity{Left, Middle}
	BackLeft    = Identity{Left, Back}
	FrontRight  = Identity{Right, Front}
	MiddleRight = Identity{Right, Middle}
	BackRight   = Identity{Right, Back}
)

// AllLegs returns all leg identities in a fixed order.
func AllLegs() []Identity {
	return []Identity{
		FrontLeft,
		MiddleLeft,
		BackLeft,
		FrontRight,
		MiddleRight,
		BackRight,
	}
}

// Short returns the two-letter name of the leg, e.g. "FL".
func (id Identity) Short() string {
	return strings.ToUpper(string(id.Position[0]) + string(id.Side[0]))
}

func (id Identity) String() string {
	return string(id.Side) + "-" + string(id.Position)
}

// ParseIdentity accepts a short name ("FL") or a long one ("left-front").
func ParseIdentity(s string) (Identity, error) {
	for _, id := range AllLegs() {
		if strings.EqualFold(s, id.Short()) || strings.EqualFold(s, id.String()) {
			return id, nil
		}
	}
	return Identity{}, fmt.Errorf("unknown leg %q", s)
}

// JointName identifies a joint within a leg.
type JointName string

const (
	Pelvis JointName = "pelvis"
	Knee   JointName = "knee"
	Ankle  JointName = "ankle"
)

// AllJoints returns the joints of a leg in the order they are moved.
func AllJoints() []JointName {
	return []JointName{
		Pelvis,
		Knee,
		Ankle,
	}
}
