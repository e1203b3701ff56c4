package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/physics"
	"github.com/san-kum/gravquad/internal/spatial"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	defaultFPS      = 60
	historyCapacity = 300
	graphPoints     = 60

	// canvasStyle padding; mouse events arrive in terminal cells.
	canvasPadX = 2
	canvasPadY = 1
	panelWidth = 52
)

type Options struct {
	FPS        int
	Index      spatial.Options
	Cols, Rows int
}

func DefaultOptions() Options {
	return Options{
		FPS:   defaultFPS,
		Index: spatial.DefaultOptions(),
		Cols:  defaultCols,
		Rows:  defaultRows,
	}
}

type TickMsg time.Time

// Model is the live view of one world. The world is stepped on the Bubble
// Tea goroutine, so nothing else may touch it while the program runs.
type Model struct {
	world *physics.World
	name  string
	opts  Options

	canvas *Canvas
	index  *spatial.Index

	running  bool
	overlay  bool
	selected int

	neighbor    spatial.Neighbor
	hasNeighbor bool

	history []float64
	err     error
}

// NewModel wraps w for display. Zero options fall back to the defaults.
func NewModel(w *physics.World, name string, opts Options) (Model, error) {
	def := DefaultOptions()
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if opts.Cols <= 0 || opts.Rows <= 0 {
		opts.Cols, opts.Rows = def.Cols, def.Rows
	}
	if opts.Index == (spatial.Options{}) {
		opts.Index = def.Index
	}
	if err := opts.Index.Validate(); err != nil {
		return Model{}, err
	}

	return Model{
		world:    w,
		name:     name,
		opts:     opts,
		canvas:   NewCanvas(opts.Cols, opts.Rows),
		running:  true,
		overlay:  true,
		selected: -1,
		history:  make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the world.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.overlay = !m.overlay
		case "p":
			m.running = !m.running
		case "r":
			m.reset()
		case "esc":
			m.selectBody(-1)
		case "t":
			nextTheme()
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if p, ok := m.CellToArena(msg.X, msg.Y); ok {
				m.selectBody(m.pickAt(p))
			}
		}

	case tea.WindowSizeMsg:
		cols := max(msg.Width-panelWidth-2*canvasPadX, 20)
		rows := max(msg.Height-2*canvasPadY, 8)
		m.canvas = NewCanvas(cols, rows)

	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.world.Step()
	if d, ok := m.world.MinDistance(); ok {
		m.history = append(m.history, d)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
	}
	m.refreshNeighbor()
}

func (m *Model) reset() {
	m.world.Reinitialize()
	m.history = m.history[:0]
	m.err = nil
	m.selectBody(-1)
}

func (m *Model) selectBody(id int) {
	m.selected = id
	m.refreshNeighbor()
}

// refreshNeighbor answers the selected body's nearest neighbour through the
// quadtree over the current positions.
func (m *Model) refreshNeighbor() {
	m.hasNeighbor = false
	if m.selected < 0 {
		return
	}
	if err := m.rebuildIndex(); err != nil {
		m.err = err
		return
	}
	nb, err := m.index.Lookup(m.selected)
	if err != nil {
		return
	}
	m.neighbor, m.hasNeighbor = nb, true
}

func (m *Model) rebuildIndex() error {
	if m.index == nil {
		ix, err := spatial.Build(m.world, m.opts.Index)
		if err != nil {
			return err
		}
		m.index = ix
		return nil
	}
	return m.index.Rebuild(m.world)
}

// pickAt returns the body under p, or -1. A click lands on a whole cell,
// so a miss falls back to the nearest body within half a cell diagonal of
// its rim.
func (m *Model) pickAt(p r2.Vec) int {
	if id, ok := m.world.Pick(p); ok {
		return id
	}
	if err := m.rebuildIndex(); err != nil {
		m.err = err
		return -1
	}
	nb, ok := m.index.NearestTo(p)
	if !ok {
		return -1
	}
	b, err := m.world.Body(nb.ID)
	if err != nil {
		return -1
	}
	if nb.Distance <= b.Radius()+m.cellDiagonal()/2 {
		return nb.ID
	}
	return -1
}

func (m *Model) cellDiagonal() float64 {
	a := m.world.Arena()
	return math.Hypot((a.Max.X-a.Min.X)/float64(m.canvas.Width), (a.Max.Y-a.Min.Y)/float64(m.canvas.Height))
}

// CellToArena maps a terminal cell to the arena point at its centre.
func (m Model) CellToArena(x, y int) (r2.Vec, bool) {
	col, row := x-canvasPadX, y-canvasPadY
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return r2.Vec{}, false
	}
	a := m.world.Arena()
	return r2.Vec{
		X: a.Min.X + (float64(col)+0.5)*(a.Max.X-a.Min.X)/float64(m.canvas.Width),
		Y: a.Min.Y + (float64(row)+0.5)*(a.Max.Y-a.Min.Y)/float64(m.canvas.Height),
	}, true
}

func (m Model) Selected() int { return m.selected }
func (m Model) Overlay() bool { return m.overlay }
func (m Model) Running() bool { return m.running }

// Neighbor is the selected body's nearest neighbour, if any.
func (m Model) Neighbor() (spatial.Neighbor, bool) { return m.neighbor, m.hasNeighbor }

func (m Model) History() []float64 { return m.history }

// draw rasterises the world onto the canvas.
func (m *Model) draw() {
	c := m.canvas
	c.Clear()

	a := m.world.Arena()
	sx := float64(c.SubWidth()) / (a.Max.X - a.Min.X)
	sy := float64(c.SubHeight()) / (a.Max.Y - a.Min.Y)
	dot := func(p r2.Vec) (int, int) {
		return int((p.X - a.Min.X) * sx), int((p.Y - a.Min.Y) * sy)
	}

	bodies := m.world.Bodies()
	if pair, ok := m.world.ClosestPair(); ok && m.overlay {
		x0, y0 := dot(bodies[pair.I].Pos)
		x1, y1 := dot(bodies[pair.J].Pos)
		c.DrawLine(x0, y0, x1, y1, LayerPair)
	}

	for _, b := range bodies {
		x, y := dot(b.Pos)
		r := int(math.Round(b.Radius() * sx))
		switch {
		case b.ID == m.selected:
			c.FillCircle(x, y, r, LayerSelected)
		case m.hasNeighbor && b.ID == m.neighbor.ID:
			c.DrawCircle(x, y, r, LayerNeighbor)
		default:
			c.DrawCircle(x, y, r, LayerBody)
		}
	}
}

// View renders the canvas and the side panel.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render(layerStyles()))

	var s strings.Builder
	title := "GRAVQUAD"
	if m.name != "" {
		title += " · " + m.name
	}
	s.WriteString(headerStyle.Foreground(CurrentTheme.Title).Render(title) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n")
	}

	if len(m.history) > 1 {
		pts := m.history
		if len(pts) > graphPoints {
			pts = pts[len(pts)-graphPoints:]
		}
		chart := asciigraph.Plot(pts, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("min distance"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\n")
	s.WriteString(row("Step", fmt.Sprintf("%d", m.world.Steps())))
	s.WriteString(row("Bodies", fmt.Sprintf("%d", m.world.Len())))
	s.WriteString(row("Bounces", fmt.Sprintf("%d", m.world.Bounces())))
	if d, ok := m.world.MinDistance(); ok {
		pair, _ := m.world.ClosestPair()
		s.WriteString(row("Min distance", fmt.Sprintf("%.2fpx", d)))
		s.WriteString(row("Closest pair", fmt.Sprintf("%d ↔ %d", pair.I, pair.J)))
	} else {
		s.WriteString(row("Min distance", "-"))
		s.WriteString(row("Closest pair", "-"))
	}
	s.WriteString(row("Energy", fmt.Sprintf("%.2f", m.world.Energy())))
	overlay := "off"
	if m.overlay {
		overlay = "on"
	}
	s.WriteString(row("Overlay", overlay))

	s.WriteString("\n" + Separator(36) + "\n\n")
	if m.selected >= 0 {
		b, _ := m.world.Body(m.selected)
		s.WriteString(row("Selected", fmt.Sprintf("#%d  m=%.1f", b.ID, b.Mass())))
		s.WriteString(row("Position", fmt.Sprintf("%.1f, %.1f", b.Pos.X, b.Pos.Y)))
		if m.hasNeighbor {
			s.WriteString(row("Nearest", fmt.Sprintf("#%d at %.2fpx", m.neighbor.ID, m.neighbor.Distance)))
		} else {
			s.WriteString(row("Nearest", "-"))
		}
	} else {
		s.WriteString(Subtle.Render("click a body to select it") + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + StatusPaused.Render("error: "+m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render(keyHints("spc", "lines", "p", "pause", "r", "reset") + "\n" +
		keyHints("esc", "clear", "t", "theme", "q", "quit")))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// Run starts the live view full screen with mouse support.
func Run(w *physics.World, name string, opts Options) error {
	m, err := NewModel(w, name, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
