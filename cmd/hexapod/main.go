package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/swapsCAPS/hexapod/pkg/robot"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "main",
})

type Options struct {
	Config  string `short:"c" long:"config" default:"hexapod.json" description:"Configuration file (.json or .toml)"`
	Verbose bool   `short:"v" long:"verbose" description:"Log every joint write"`
	DryRun  bool   `short:"n" long:"dry-run" description:"Log PWM writes instead of driving the boards"`

	Walk   WalkCommand   `command:"walk" description:"Walk with an alternating tripod gait"`
	Reset  ResetCommand  `command:"reset" description:"Put every leg in its reset pose"`
	Center CenterCommand `command:"center" description:"Move every joint to 90 degrees"`
	Pose   PoseCommand   `command:"pose" description:"Put one leg (or all) in a named pose"`
	Joint  JointCommand  `command:"joint" description:"Move a single joint to an angle"`
	Relax  RelaxCommand  `command:"relax" description:"Turn off every PWM output"`
	Setup  SetupCommand  `command:"setup" description:"Calibrate joint pulse ranges"`
}

var opts = Options{Config: robot.DefaultConfigFile}
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Hexapod - PCA9685 servo control for a six-legged robot"
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if opts.Verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return cmd.Execute(args)
	}

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
