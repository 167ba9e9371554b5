package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/swapsCAPS/hexapod/pkg/pca9685"
	"github.com/swapsCAPS/hexapod/pkg/robot"
	"github.com/swapsCAPS/hexapod/pkg/servo"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const doneChoice = "done"

type SetupCommand struct {
	Step int `long:"step" default:"5" description:"Pulse change per arrow key press"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Hexapod Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	chain, err := openChain(cfg)
	if err != nil {
		return err
	}
	defer chain.Close()

	if cfg.Bus.OutputEnablePin >= 0 {
		oe, err := pca9685.OpenOutputEnable(cfg.Bus.OutputEnablePin)
		if err != nil {
			return err
		}
		defer oe.Close()
		oe.Enable()
	}

	fmt.Println("Pick a joint, then nudge its pulse with the arrow keys until the")
	fmt.Println("servo reaches each end of its travel and mark it with [ and ].")
	fmt.Println()

	for {
		id, joint, ok := selectJoint()
		if !ok {
			break
		}

		lc := cfg.Calibration[id.Short()]
		cal, accepted, err := calibrateJoint(chain, cfg.Calibration, id, joint, c.Step)
		if err != nil {
			return err
		}
		if !accepted {
			fmt.Println(dimStyle.Render("Discarded."))
			continue
		}

		lc.SetJoint(joint, cal)
		cfg.Calibration[id.Short()] = lc
		fmt.Printf("%s %s: channel %d, pulses %d..%d\n", id.Short(), joint, cal.Channel, cal.PulseMin, cal.PulseMax)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Calibration not saved: "+err.Error()))
		return err
	}
	if err := cfg.SaveTo(opts.Config); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start walking with: " + headerStyle.Render("hexapod walk"))
	return nil
}

// selectJoint asks which joint to calibrate next. ok is false when the user
// is done.
func selectJoint() (id robot.Identity, joint robot.JointName, ok bool) {
	legOptions := []huh.Option[string]{}
	for _, l := range robot.AllLegs() {
		legOptions = append(legOptions, huh.NewOption(l.Short()+"  "+l.String(), l.Short()))
	}
	legOptions = append(legOptions, huh.NewOption("Done, save configuration", doneChoice))

	var leg string
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which leg?").
				Options(legOptions...).
				Value(&leg),
		),
	).Run(); err != nil || leg == doneChoice {
		return robot.Identity{}, "", false
	}

	var name string
	jointOptions := []huh.Option[string]{}
	for _, j := range robot.AllJoints() {
		jointOptions = append(jointOptions, huh.NewOption(string(j), string(j)))
	}
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Which joint of %s?", leg)).
				Options(jointOptions...).
				Value(&name),
		),
	).Run(); err != nil {
		return robot.Identity{}, "", false
	}

	id, err := robot.ParseIdentity(leg)
	if err != nil {
		return robot.Identity{}, "", false
	}
	return id, robot.JointName(name), true
}

func calibrateJoint(bus servo.Bus, all robot.Calibration, id robot.Identity, joint robot.JointName, step int) (servo.Calibration, bool, error) {
	fmt.Println()
	fmt.Println(subHeaderStyle.Render(fmt.Sprintf("━━━ Calibrating %s %s ━━━", id.Short(), joint)))
	fmt.Println()

	m := newCalibrationModel(bus, all, id, joint, step)
	m.write()

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return servo.Calibration{}, false, fmt.Errorf("error running calibration: %w", err)
	}

	cm := final.(calibrationModel)
	return cm.cal, cm.accepted, nil
}

// Calibration TUI model
type calibrationModel struct {
	bus      servo.Bus
	all      robot.Calibration
	id       robot.Identity
	joint    robot.JointName
	cal      servo.Calibration
	pulse    int
	step     int
	err      error
	accepted bool
	quitting bool
}

func newCalibrationModel(bus servo.Bus, all robot.Calibration, id robot.Identity, joint robot.JointName, step int) calibrationModel {
	lc, _ := all.Leg(id)
	cal := lc.Joint(joint)
	return calibrationModel{
		bus:   bus,
		all:   all,
		id:    id,
		joint: joint,
		cal:   cal,
		pulse: (cal.PulseMin + cal.PulseMax) / 2,
		step:  max(step, 1),
	}
}

func (m *calibrationModel) nudge(delta int) {
	m.pulse = min(max(m.pulse+delta, 0), servo.MaxPulse)
	m.write()
}

func (m *calibrationModel) write() {
	m.err = m.bus.SetChannelPulse(m.cal.Channel, 0, m.pulse)
}

func (m calibrationModel) Init() tea.Cmd {
	return nil
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.nudge(m.step)
	case "down", "j":
		m.nudge(-m.step)
	case "right", "l":
		m.nudge(1)
	case "left", "h":
		m.nudge(-1)
	case "[":
		m.cal.PulseMin = m.pulse
	case "]":
		m.cal.PulseMax = m.pulse
	case "c":
		m.pulse = (m.cal.PulseMin + m.cal.PulseMax) / 2
		m.write()
	case "enter":
		if err := m.cal.Validate(); err != nil {
			m.err = err
			return m, nil
		}
		m.accepted = true
		m.quitting = true
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m calibrationModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableJointStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableCurrentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true).Padding(0, 1)

	var rows [][]string
	current := -1
	for _, id := range robot.AllLegs() {
		lc, _ := m.all.Leg(id)
		for _, j := range robot.AllJoints() {
			cal := lc.Joint(j)
			if id == m.id && j == m.joint {
				cal = m.cal
				current = len(rows)
			}
			rows = append(rows, []string{
				id.Short() + " " + string(j),
				fmt.Sprintf("%d", cal.Channel),
				fmt.Sprintf("%d", cal.PulseMin),
				fmt.Sprintf("%d", cal.PulseMax),
				fmt.Sprintf("%d", cal.PulseMax-cal.PulseMin),
			})
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Joint", "Channel", "Min", "Max", "Range").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case row == current:
				return tableCurrentStyle
			case col == 0:
				return tableJointStyle
			default:
				return tableCellStyle
			}
		})

	sb.WriteString(t.Render())
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Pulse %s", headerStyle.Render(fmt.Sprintf("%4d", m.pulse))))
	if m.cal.PulseMin < m.cal.PulseMax {
		angle := float64(m.pulse-m.cal.PulseMin) * 180 / float64(m.cal.PulseMax-m.cal.PulseMin)
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  ≈ %.0f°", angle)))
	}
	sb.WriteString("\n")
	if m.err != nil {
		sb.WriteString(errorStyle.Render(m.err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("↑/↓ ±%d  ←/→ ±1  [ set min  ] set max  c center  enter accept  esc discard", m.step)))

	return sb.String()
}
