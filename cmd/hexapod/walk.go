package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/swapsCAPS/hexapod/pkg/gait"
	"github.com/swapsCAPS/hexapod/pkg/robot"
)

type WalkCommand struct {
	Direction string `short:"d" long:"direction" default:"forward" choice:"forward" choice:"backward" description:"Direction of travel"`
	Steps     int    `short:"s" long:"steps" default:"0" description:"Number of tripod steps, 0 walks until interrupted"`
	Delay     int    `long:"delay" description:"Delay between phases in milliseconds (default from config)"`
	Mode      string `short:"m" long:"mode" choice:"cycle" choice:"reset" description:"cycle: backward, raise, forward, lower; reset: alternate tripod resets (default from config)"`
	TUI       bool   `long:"tui" description:"Chart pelvis angles while walking"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

var legColors = map[robot.Identity]string{
	robot.FrontLeft:   "196", // red
	robot.MiddleLeft:  "208", // orange
	robot.BackLeft:    "226", // yellow
	robot.FrontRight:  "46",  // green
	robot.MiddleRight: "51",  // cyan
	robot.BackRight:   "201", // magenta
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (c *WalkCommand) Execute(args []string) error {
	if c.Steps < 0 {
		return fmt.Errorf("--steps must be 0 or more, got %d", c.Steps)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if c.Delay > 0 {
		cfg.Gait.PhaseDelayMs = c.Delay
	}
	mode := modeFromConfig(cfg)
	if c.Mode != "" {
		mode = gait.Mode(c.Mode)
	}

	h, err := openHexapod(cfg, mode)
	if err != nil {
		return err
	}
	defer h.Close()

	ctx, cancel := signalContext()
	defer cancel()

	dir := gait.Direction(c.Direction)
	if !c.TUI {
		err := h.seq.Run(ctx, dir, c.Steps)
		if errors.Is(err, context.Canceled) {
			log.Info("stopped")
			return nil
		}
		return err
	}

	hook := newLogHook()
	logrus.AddHook(hook)
	logrus.SetOutput(io.Discard)

	run := &walkRun{done: make(chan struct{})}
	go func() {
		run.err = h.seq.Run(ctx, dir, c.Steps)
		close(run.done)
	}()

	p := tea.NewProgram(newWalkModel(h.seq, hook, run, cfg.Gait.PhaseDelay(), mode), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	// The sequencer finishes the phase in flight before it sees the cancel.
	cancel()
	<-run.done
	if errors.Is(run.err, context.Canceled) {
		return nil
	}
	return run.err
}

// walkRun is the sequencer goroutine. err is valid once done is closed.
type walkRun struct {
	done chan struct{}
	err  error
}

// logHook forwards log entries to the TUI log box.
type logHook struct {
	ch chan string
}

func newLogHook() *logHook {
	return &logHook{ch: make(chan string, 32)}
}

func (h *logHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *logHook) Fire(e *logrus.Entry) error {
	msg := fmt.Sprintf("%s %s", strings.ToUpper(e.Level.String()), e.Message)
	select {
	case h.ch <- msg:
	default:
	}
	return nil
}

type walkModel struct {
	seq        *gait.Sequencer
	hook       *logHook
	run        *walkRun
	phaseDelay time.Duration
	mode       gait.Mode
	chart      *streamlinechart.Model
	width      int      // terminal width
	height     int      // terminal height
	logs       []string // last N log messages
	last       gait.State
	phases     int
	quitting   bool
}

// Messages from the sequencer
type stateMsg gait.State
type logMsg string
type doneMsg struct{ err error }

func waitForState(seq *gait.Sequencer) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-seq.States())
	}
}

func waitForLog(hook *logHook) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-hook.ch)
	}
}

func waitForDone(run *walkRun) tea.Cmd {
	return func() tea.Msg {
		<-run.done
		return doneMsg{run.err}
	}
}

func newWalkModel(seq *gait.Sequencer, hook *logHook, run *walkRun, phaseDelay time.Duration, mode gait.Mode) walkModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(0, 180),
	)

	for _, id := range robot.AllLegs() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(legColors[id]))
		chart.SetDataSetStyles(id.Short(), runes.ThinLineStyle, style)
	}

	return walkModel{
		seq:        seq,
		hook:       hook,
		run:        run,
		phaseDelay: phaseDelay,
		mode:       mode,
		chart:      &chart,
	}
}

func (m *walkModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *walkModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20
	}
	width = max(m.width-borderSize-2, 40)
	height = max(m.height-headerHeight-legendHeight-footerHeight-borderSize, 10)
	return width, height
}

func (m walkModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.seq),
		waitForLog(m.hook),
		waitForDone(m.run),
	)
}

func (m walkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart.Resize(m.chartSize())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		state := gait.State(msg)
		m.last = state
		m.phases++
		if state.Error != nil {
			m.addLog(state.Error.Error())
		}
		if state.Angles != nil {
			for id, angles := range state.Angles {
				if a, ok := angles[robot.Pelvis]; ok {
					m.chart.PushDataSet(id.Short(), a)
				}
			}
			m.chart.DrawAll()
		}
		return m, waitForState(m.seq)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.hook)

	case doneMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.addLog("stopped: " + msg.err.Error())
			return m, nil
		}
		m.addLog("done, press 'q' to quit")
		return m, nil
	}

	return m, nil
}

func (m walkModel) View() string {
	if m.quitting {
		return "Walk stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Hexapod Walk"))
	sb.WriteString(fmt.Sprintf(" - %s, %s between phases", m.mode, m.phaseDelay))
	if m.phases > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  tripod %s %s, phase %d", m.last.Tripod, m.last.Phase, m.phases)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20)).
		Foreground(lipgloss.Color("9"))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, id := range robot.AllLegs() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(legColors[id])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+id.Short())
	}
	return strings.Join(items, "  ")
}
