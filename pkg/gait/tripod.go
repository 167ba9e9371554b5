package gait

import "github.com/swapsCAPS/hexapod/pkg/robot"

// Tripod is one of the two groups of three legs that move together. The legs
// of a tripod never touch each other.
type Tripod int

const (
	TripodA Tripod = iota // front-left, back-left, middle-right
	TripodB               // front-right, back-right, middle-left
)

// Legs returns the legs of the tripod.
func (t Tripod) Legs() []robot.Identity {
	if t == TripodB {
		return []robot.Identity{robot.FrontRight, robot.BackRight, robot.MiddleLeft}
	}
	return []robot.Identity{robot.FrontLeft, robot.BackLeft, robot.MiddleRight}
}

// Other returns the opposite tripod.
func (t Tripod) Other() Tripod {
	if t == TripodA {
		return TripodB
	}
	return TripodA
}

func (t Tripod) String() string {
	if t == TripodB {
		return "B"
	}
	return "A"
}
