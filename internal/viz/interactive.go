package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/gravquad/internal/config"
	"github.com/san-kum/gravquad/internal/physics"
)

var presetInfo = map[string]string{
	"default": "15 bodies, unit gravity",
	"sparse":  "few slow bodies",
	"crowded": "200 light bodies",
	"heavy":   "strong pull, big radii",
	"pair":    "two bodies falling in",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field is one editable setting on the config screen.
type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var fields = []field{
	{"bodies", func(c *config.Config) float64 { return float64(c.Bodies) }, func(c *config.Config, v float64) { c.Bodies = int(v) }},
	{"seed", func(c *config.Config) float64 { return float64(c.Seed) }, func(c *config.Config, v float64) { c.Seed = uint64(max(v, 0)) }},
	{"g", func(c *config.Config) float64 { return c.Physics.G }, func(c *config.Config, v float64) { c.Physics.G = v }},
	{"max_speed", func(c *config.Config) float64 { return c.Physics.MaxSpeed }, func(c *config.Config, v float64) { c.Physics.MaxSpeed = v }},
	{"fps", func(c *config.Config) float64 { return float64(c.Run.FPS) }, func(c *config.Config, v float64) { c.Run.FPS = int(v) }},
}

// menu picks a preset, lets the user tweak a few settings, then hands over
// to the live Model.
type menu struct {
	state, cursor int
	presets       []string
	selected      string
	base          *config.Config
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	liveModel     Model
}

// NewInteractiveApp builds the preset picker. base supplies the settings
// used for the "default" entry and is never modified.
func NewInteractiveApp(base *config.Config) *menu {
	if base == nil {
		base = config.DefaultConfig()
	}
	return &menu{
		state:   stateMenu,
		presets: append([]string{"default"}, config.ListPresets()...),
		base:    base,
	}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.state == stateMenu {
			return m.menuKey(key)
		}
		return m.configKey(key)
	}
	return m, nil
}

func (m menu) menuKey(msg tea.KeyMsg) (menu, tea.Cmd) {
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
		m.selected = m.presets[m.cursor]
		m.cfg = m.presetConfig(m.selected)
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m menu) presetConfig(name string) *config.Config {
	if cfg := config.GetPreset(name); cfg != nil {
		return cfg
	}
	return m.base.Clone()
}

func (m menu) configKey(msg tea.KeyMsg) (menu, tea.Cmd) {
	f := fields[m.fieldCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				f.set(m.cfg, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				c := s[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += s
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(f.get(m.cfg), 'f', -1, 64)
	case "left", "h":
		f.set(m.cfg, f.get(m.cfg)-step(f.name))
	case "right", "l":
		f.set(m.cfg, f.get(m.cfg)+step(f.name))
	case "s":
		return m.start()
	}
	return m, nil
}

func step(name string) float64 {
	switch name {
	case "g", "max_speed":
		return 0.1
	}
	return 1
}

func (m menu) start() (menu, tea.Cmd) {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return m, nil
	}
	w, err := physics.New(m.cfg.Bodies, m.cfg.Params())
	if err != nil {
		m.err = err
		return m, nil
	}
	live, err := NewModel(w, m.selected, Options{FPS: m.cfg.Run.FPS, Index: m.cfg.IndexOptions()})
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel, m.state = live, stateSim
	return m, m.liveModel.Init()
}

func (m menu) View() string {
	switch m.state {
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return m.viewMenu()
}

func (m menu) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + cursorStyle.Render("GRAVQUAD") + "\n    " + Subtle.Render("gravity and closest pairs") + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-10s", name)), accentStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", inactiveStyle.Render(fmt.Sprintf("  %-10s", name)), Subtle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m menu) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + cursorStyle.Render(strings.ToUpper(m.selected)) + "\n    " + Subtle.Render(presetInfo[m.selected]) + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, f := range fields {
		valStr := fmt.Sprintf("%8g", f.get(m.cfg))
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-10s", f.name)), accentStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", inactiveStyle.Render(fmt.Sprintf("  %-10s", f.name)), Subtle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusPaused.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive shows the preset picker full screen.
func RunInteractive(base *config.Config) error {
	_, err := tea.NewProgram(NewInteractiveApp(base), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
