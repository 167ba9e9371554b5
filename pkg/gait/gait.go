// Package gait drives the six legs in an alternating tripod gait.
package gait

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/swapsCAPS/hexapod/pkg/robot"
	"github.com/swapsCAPS/hexapod/pkg/servo"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "gait",
})

// Direction of travel. It is accepted by Walk and Run but does not change any
// leg angle yet.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Mode selects what a gait step does.
type Mode string

const (
	// ModeReset resets one tripod, then the other.
	ModeReset Mode = "reset"
	// ModeCycle runs backward, raise, forward, lower on each tripod in turn.
	ModeCycle Mode = "cycle"
)

// StepPhases are the phases of one step of a tripod in ModeCycle.
var StepPhases = []robot.PoseName{
	robot.Backward,
	robot.Raise,
	robot.Forward,
	robot.Lower,
}

// Config holds configuration for the sequencer.
type Config struct {
	PhaseDelay time.Duration
	Mode       Mode
	// Poses defaults to robot.DefaultPoses.
	Poses robot.PoseTable
	// Sleep blocks between phases. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// State is published after every phase.
type State struct {
	Tripod    Tripod
	Phase     robot.PoseName
	Angles    map[robot.Identity]map[robot.JointName]float64
	Timestamp time.Time
	Error     error
}

// Sequencer owns the bus and the six legs.
type Sequencer struct {
	bus  servo.Bus
	legs map[robot.Identity]*robot.Leg
	cfg  Config

	mu      sync.Mutex
	running bool
	stateCh chan State
}

// New creates the legs described by cal on bus. The sequencer takes
// ownership of bus and closes it in Close.
func New(bus servo.Bus, cal robot.Calibration, cfg Config) (*Sequencer, error) {
	if cfg.Poses == nil {
		cfg.Poses = robot.DefaultPoses()
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	switch cfg.Mode {
	case "":
		cfg.Mode = ModeCycle
	case ModeCycle, ModeReset:
	default:
		return nil, fmt.Errorf("unknown gait mode %q", cfg.Mode)
	}

	legs := make(map[robot.Identity]*robot.Leg, 6)
	for _, id := range robot.AllLegs() {
		lc, ok := cal.Leg(id)
		if !ok {
			return nil, fmt.Errorf("no calibration for %s leg", id)
		}
		leg, err := robot.NewLeg(bus, id, lc, cfg.Poses)
		if err != nil {
			return nil, err
		}
		legs[id] = leg
	}

	return &Sequencer{
		bus:     bus,
		legs:    legs,
		cfg:     cfg,
		stateCh: make(chan State, 1),
	}, nil
}

// Close closes the bus.
func (s *Sequencer) Close() error {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	return s.bus.Close()
}

// Leg returns one of the legs.
func (s *Sequencer) Leg(id robot.Identity) *robot.Leg {
	return s.legs[id]
}

// States returns a channel that receives the latest state.
func (s *Sequencer) States() <-chan State {
	return s.stateCh
}

// Phase drives every leg of the tripod into the named pose and returns once
// all of their joint writes are done. A leg whose pose is out of range is
// logged and skipped; a bus error aborts the phase.
func (s *Sequencer) Phase(t Tripod, name robot.PoseName) error {
	for _, id := range t.Legs() {
		err := s.legs[id].Apply(name)
		var oerr *servo.OutOfRangeError
		switch {
		case err == nil:
		case errors.As(err, &oerr):
			log.WithError(err).Warnf("tripod %s: skipped %s on %s", t, name, id.Short())
		default:
			err = fmt.Errorf("tripod %s %s: %w", t, name, err)
			s.sendState(State{Tripod: t, Phase: name, Timestamp: time.Now(), Error: err})
			return err
		}
	}

	s.sendState(State{
		Tripod:    t,
		Phase:     name,
		Angles:    s.Angles(),
		Timestamp: time.Now(),
	})
	return nil
}

// Walk resets tripod B, waits stepDelay, then resets tripod A.
func (s *Sequencer) Walk(dir Direction, stepDelay time.Duration) error {
	log.Debugf("walk direction=%s delay=%s", dir, stepDelay)

	if err := s.Phase(TripodB, robot.Reset); err != nil {
		return err
	}
	s.cfg.Sleep(stepDelay)
	return s.Phase(TripodA, robot.Reset)
}

// Step moves tripod t through StepPhases, waiting PhaseDelay after each.
func (s *Sequencer) Step(t Tripod) error {
	return s.step(context.Background(), t)
}

func (s *Sequencer) step(ctx context.Context, t Tripod) error {
	for _, name := range StepPhases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Phase(t, name); err != nil {
			return err
		}
		s.cfg.Sleep(s.cfg.PhaseDelay)
	}
	return nil
}

// Reset drives both tripods into the reset pose.
func (s *Sequencer) Reset() error {
	for _, t := range []Tripod{TripodA, TripodB} {
		if err := s.Phase(t, robot.Reset); err != nil {
			return err
		}
	}
	return nil
}

// Center moves every joint of every leg to 90 degrees.
func (s *Sequencer) Center() error {
	for _, id := range robot.AllLegs() {
		if err := s.legs[id].Center(); err != nil {
			return err
		}
	}
	return nil
}

// Run resets both tripods, then steps the tripods in turn, A first. It stops
// after steps steps, or when ctx is done if steps is 0. Cancellation is
// checked between phases only.
func (s *Sequencer) Run(ctx context.Context, dir Direction, steps int) error {
	if steps < 0 {
		return fmt.Errorf("negative step count %d", steps)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("already running")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Infof("walking %s, mode=%s, phase delay=%s", dir, s.cfg.Mode, s.cfg.PhaseDelay)

	if err := s.Reset(); err != nil {
		return err
	}
	s.cfg.Sleep(s.cfg.PhaseDelay)

	active := TripodA
	for n := 0; steps == 0 || n < steps; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch s.cfg.Mode {
		case ModeReset:
			if err := s.Walk(dir, s.cfg.PhaseDelay); err != nil {
				return err
			}
			s.cfg.Sleep(s.cfg.PhaseDelay)
		case ModeCycle:
			if err := s.step(ctx, active); err != nil {
				return err
			}
			active = active.Other()
		}
	}
	return nil
}

// Angles returns the last written joint angles of every leg.
func (s *Sequencer) Angles() map[robot.Identity]map[robot.JointName]float64 {
	angles := make(map[robot.Identity]map[robot.JointName]float64, len(s.legs))
	for id, leg := range s.legs {
		angles[id] = leg.Angles()
	}
	return angles
}

func (s *Sequencer) sendState(st State) {
	select {
	case s.stateCh <- st:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-s.stateCh:
		default:
		}
		s.stateCh <- st
	}
}
