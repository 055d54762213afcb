package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/whirl/internal/config"
	"github.com/san-kum/whirl/internal/lifecycle"
	"github.com/san-kum/whirl/internal/wheel"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var presetInfo = map[string]string{
	"default":        "balanced tuning",
	"precision":      "fast close, strong detents",
	"touch":          "big targets, long coast",
	"reduced-motion": "minimal animation",
}

const (
	visibleRows = 7  // rows drawn per open column
	colWidth    = 14 // rendered width of one column block
	leftMargin  = 4
	rowPixels   = 20.0 // one terminal row of drag in gesture pixels
)

type state int

const (
	stateMenu state = iota
	statePicker
)

// pickerColumn couples one column with its own session lifecycle.
type pickerColumn struct {
	label   string
	column  *wheel.Column
	machine *lifecycle.Machine
}

// eventLog is shared by pointer across model copies; the gesture sinks
// write into it from closures created once at column construction.
type eventLog struct {
	lines []string
}

func (l *eventLog) add(line string) {
	l.lines = append(l.lines, line)
	if len(l.lines) > 6 {
		l.lines = l.lines[1:]
	}
}

func (l *eventLog) gesture(label string, ev wheel.Event) {
	switch ev.Kind {
	case wheel.EventValueVisual:
		return // too chatty for the log panel
	case wheel.EventValueSettle:
		extra := ""
		if ev.HadMomentum {
			extra = " +momentum"
		}
		l.add(fmt.Sprintf("%s %s → %s%s", label, ev.Kind, ev.Value, extra))
	case wheel.EventBoundaryHit:
		l.add(fmt.Sprintf("%s %s %s", label, ev.Kind, ev.Boundary))
	default:
		l.add(fmt.Sprintf("%s %s %s", label, ev.Kind, ev.Source))
	}
}

type model struct {
	state   state
	cursor  int
	presets []string
	preset  string

	cols  []*pickerColumn
	focus int

	dragging bool
	dragCol  int

	log     *eventLog
	history []float64

	width  int
	height int
}

func NewDemoApp() *model {
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
		log:     &eventLog{},
		history: make([]float64, 0, 60),
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) buildColumns(preset string) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m.preset = preset
	m.cols = nil
	m.focus = 0
	m.log.lines = nil
	m.history = m.history[:0]

	specs := []struct {
		label    string
		count    int
		selected int
	}{
		{"hour", 24, 12},
		{"minute", 60, 30},
		{"second", 60, 0},
	}

	log := m.log
	for _, spec := range specs {
		options := make([]string, spec.count)
		for i := range options {
			options[i] = fmt.Sprintf("%02d", i)
		}

		pc := &pickerColumn{label: spec.label}
		pc.column = wheel.NewColumn(cfg.Column(spec.label, options, spec.selected),
			func(ev wheel.Event) {
				log.gesture(pc.label, ev)
				if lev, ok := lifecycle.FromGesture(ev); ok {
					pc.machine.Handle(lev, time.Now())
				}
			},
			nil, nil)
		pc.machine = lifecycle.New(cfg.Lifecycle(), func(info lifecycle.CloseInfo) {
			pc.column.SetOpen(false)
			log.add(fmt.Sprintf("%s closed (%s)", pc.label, info.Reason))
		}, nil)
		m.cols = append(m.cols, pc)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != statePicker {
			return m, nil
		}
		now := time.Now()
		for _, pc := range m.cols {
			pc.column.Tick(now)
			pc.machine.Tick(now)
		}
		m.history = append(m.history, m.cols[m.focus].column.TrackedVelocity())
		if len(m.history) > 60 {
			m.history = m.history[1:]
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == stateMenu {
		return m.menuKey(msg)
	}
	return m.pickerKey(msg)
}

func (m model) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.buildColumns(m.presets[m.cursor])
		m.state = statePicker
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func (m model) pickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := time.Now()
	focused := m.cols[m.focus].column

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = stateMenu
		return m, tea.ClearScreen
	case "left", "h":
		if m.focus > 0 {
			m.focus--
		}
	case "right", "l":
		if m.focus < len(m.cols)-1 {
			m.focus++
		}
	case "up", "k":
		focused.KeyPress(wheel.KeyUp, now)
	case "down", "j":
		focused.KeyPress(wheel.KeyDown, now)
	case "pgup":
		focused.KeyPress(wheel.KeyPageUp, now)
	case "pgdown":
		focused.KeyPress(wheel.KeyPageDown, now)
	case "home", "g":
		focused.KeyPress(wheel.KeyHome, now)
	case "end", "G":
		focused.KeyPress(wheel.KeyEnd, now)
	}
	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.state != statePicker {
		return m, nil
	}
	now := time.Now()

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.focusAt(msg.X)
		m.cols[m.focus].column.Wheel(-rowPixels, now)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.focusAt(msg.X)
		m.cols[m.focus].column.Wheel(rowPixels, now)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.focusAt(msg.X)
		m.dragging = true
		m.dragCol = m.focus
		m.cols[m.dragCol].column.PointerDown(float64(msg.Y)*rowPixels, wheel.PointerMouse, now)
	case tea.MouseActionMotion:
		if m.dragging {
			m.cols[m.dragCol].column.PointerMove(float64(msg.Y)*rowPixels, now)
		}
	case tea.MouseActionRelease:
		if m.dragging {
			m.dragging = false
			m.cols[m.dragCol].column.PointerUp(now)
		}
	}
	return m, nil
}

// focusAt moves focus to the column block under the given screen x.
func (m *model) focusAt(x int) {
	idx := (x - leftMargin) / colWidth
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.cols) {
		idx = len(m.cols) - 1
	}
	m.focus = idx
}

func (m model) View() string {
	if m.state == stateMenu {
		return m.viewMenu()
	}
	return m.viewPicker()
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("w h i r l") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-16s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-16s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")

	return b.String()
}

func (m model) viewPicker() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("\n   %s  %s\n\n", cyan.Render("whirl"), dim.Render(m.preset)))

	b.WriteString(strings.Repeat(" ", leftMargin))
	for i, pc := range m.cols {
		label := fmt.Sprintf("%-*s", colWidth, pc.label)
		if i == m.focus {
			b.WriteString(cyan.Render(label))
		} else {
			b.WriteString(dim.Render(label))
		}
	}
	b.WriteString("\n")

	half := visibleRows / 2
	for row := -half; row <= half; row++ {
		b.WriteString(strings.Repeat(" ", leftMargin))
		for i, pc := range m.cols {
			b.WriteString(renderCell(pc, i == m.focus, row))
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", leftMargin))
	for _, pc := range m.cols {
		name := pc.machine.State().String()
		b.WriteString(lifecycleStyle(pc.machine.State()) + strings.Repeat(" ", colWidth-len(name)))
	}
	b.WriteString("\n\n")

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s\n\n", dim.Render("v"), cyan.Render(sparkline(m.history, 32))))
	}

	for _, line := range m.log.lines {
		b.WriteString("   " + dimmer.Render(line) + "\n")
	}

	b.WriteString("\n" + dim.Render("   ←→ column  ↑↓ step  pgup/pgdn page  g/G ends  drag or scroll with mouse  esc menu  q quit") + "\n")

	return b.String()
}

// renderCell draws one row of one column: the center row bright, the
// neighbors progressively dimmer, closed columns collapsed to their value.
func renderCell(pc *pickerColumn, focused bool, row int) string {
	if !pc.column.Open() && row != 0 {
		return strings.Repeat(" ", colWidth)
	}

	value := pc.column.OptionAt(pc.column.Frame().CenterIndex + row)

	switch {
	case row == 0 && focused:
		return cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-*s", colWidth-2, value))
	case row == 0:
		return "  " + white.Render(fmt.Sprintf("%-*s", colWidth-2, value))
	case row == -1 || row == 1:
		return "  " + dim.Render(fmt.Sprintf("%-*s", colWidth-2, value))
	default:
		return "  " + dimmer.Render(fmt.Sprintf("%-*s", colWidth-2, value))
	}
}

func lifecycleStyle(s lifecycle.State) string {
	switch s {
	case lifecycle.StateInteracting:
		return green.Render(s.String())
	case lifecycle.StateSettling:
		return yellow.Render(s.String())
	case lifecycle.StateIdle:
		return magenta.Render(s.String())
	}
	return dimmer.Render(s.String())
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func RunDemo() error {
	p := tea.NewProgram(NewDemoApp(), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
