package main

import (
	"fmt"
	"strings"

	"github.com/swapsCAPS/hexapod/pkg/gait"
	"github.com/swapsCAPS/hexapod/pkg/pca9685"
	"github.com/swapsCAPS/hexapod/pkg/robot"
)

type ResetCommand struct{}

func (c *ResetCommand) Execute(args []string) error {
	return withHexapod(gait.ModeReset, func(h *hexapod) error {
		return h.seq.Reset()
	})
}

type CenterCommand struct{}

func (c *CenterCommand) Execute(args []string) error {
	return withHexapod(gait.ModeReset, func(h *hexapod) error {
		return h.seq.Center()
	})
}

type PoseCommand struct {
	Leg  string `short:"l" long:"leg" default:"all" description:"Leg (FL, ML, BL, FR, MR, BR or all)"`
	Pose string `short:"p" long:"pose" required:"true" choice:"reset" choice:"raise" choice:"lower" choice:"forward" choice:"backward" description:"Pose to apply"`
}

func (c *PoseCommand) Execute(args []string) error {
	legs, err := parseLegs(c.Leg)
	if err != nil {
		return err
	}

	return withHexapod(gait.ModeReset, func(h *hexapod) error {
		for _, id := range legs {
			if err := h.seq.Leg(id).Apply(robot.PoseName(c.Pose)); err != nil {
				return err
			}
		}
		return nil
	})
}

type JointCommand struct {
	Leg   string  `short:"l" long:"leg" required:"true" description:"Leg (FL, ML, BL, FR, MR, BR)"`
	Joint string  `short:"j" long:"joint" required:"true" choice:"pelvis" choice:"knee" choice:"ankle" description:"Joint to move"`
	Angle float64 `short:"a" long:"angle" default:"90" description:"Angle in degrees, 0 to 180"`
}

func (c *JointCommand) Execute(args []string) error {
	id, err := robot.ParseIdentity(c.Leg)
	if err != nil {
		return err
	}

	return withHexapod(gait.ModeReset, func(h *hexapod) error {
		j := h.seq.Leg(id).Joint(robot.JointName(c.Joint))
		if err := j.MoveTo(c.Angle); err != nil {
			return err
		}
		fmt.Printf("%s %s -> %.1f° (channel %d, pulse %d)\n", id.Short(), c.Joint, c.Angle, j.Channel(), j.Pulse(c.Angle))
		return nil
	})
}

type RelaxCommand struct{}

func (c *RelaxCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	chain, err := openChain(cfg)
	if err != nil {
		return err
	}
	defer chain.Close()

	if err := chain.AllOff(); err != nil {
		return err
	}

	if cfg.Bus.OutputEnablePin >= 0 {
		oe, err := pca9685.OpenOutputEnable(cfg.Bus.OutputEnablePin)
		if err != nil {
			return err
		}
		oe.Disable()
		oe.Close()
	}

	fmt.Println("All outputs off.")
	return nil
}

func parseLegs(s string) ([]robot.Identity, error) {
	if strings.EqualFold(s, "all") {
		return robot.AllLegs(), nil
	}

	var legs []robot.Identity
	for _, part := range strings.Split(s, ",") {
		id, err := robot.ParseIdentity(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		legs = append(legs, id)
	}
	return legs, nil
}
