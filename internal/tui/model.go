// Package tui renders the mixer graph and turns key presses into engine
// intents.
package tui

import (
	"context"
	"slices"

	"github.com/alkime/mixgraph/internal/graph"
	"github.com/alkime/mixgraph/internal/mixer"
	"github.com/alkime/mixgraph/internal/tui/components/labeledspinner"
	"github.com/alkime/mixgraph/internal/tui/components/tabs"
	"github.com/alkime/mixgraph/internal/tui/style"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const defaultNudgeStep = 5

// Config holds the TUI settings.
type Config struct {
	// NudgeStep is how far one key press moves a volume.
	NudgeStep float64
	// Source describes the backend in the loading screen.
	Source string
}

type column int

const (
	inputColumn column = iota
	appColumn
	outputColumn
	columnCount
)

// Model is the root TUI model. It owns the engine and forwards every message
// to it before handling keys.
type Model struct {
	engine *mixer.Engine
	cancel context.CancelFunc
	config Config

	keys    KeyMap
	help    help.Model
	loading labeledspinner.Model
	tabs    tabs.Model
	bar     progress.Model

	selected    string
	grabbed     bool
	connectFrom string
	status      string
	statusErr   bool
	width       int
}

var _ tea.Model = (*Model)(nil)

// New creates the root model. cancel runs when the user quits.
func New(engine *mixer.Engine, config Config, cancel context.CancelFunc) *Model {
	if config.NudgeStep <= 0 {
		config.NudgeStep = defaultNudgeStep
	}

	m := &Model{
		engine: engine,
		cancel: cancel,
		config: config,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		loading: labeledspinner.New(spinner.Points,
			"Discovering audio devices",
			"waiting for the first enumeration from "+config.Source,
			"q quit"),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(style.CardWidth-8),
			progress.WithoutPercentage(),
		),
		width: 80,
	}

	m.tabs = tabs.New([]tabs.Tab{
		tabs.NewTab("Graph", view{render: m.graphView}),
		tabs.NewTab("Connections", view{render: m.connectionsView}),
		tabs.NewTab("Log", view{render: m.logView}),
	})

	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.engine.Init(), m.loading.Init(), m.tabs.Init())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.engine.Handle(msg)}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if m.cancel != nil {
				m.cancel()
			}

			return m, tea.Quit
		}

		if m.engine.Ready() {
			cmds = append(cmds, m.handleKey(msg))
		}

	case mixer.EdgeRejectedMsg:
		m.setStatus("cannot connect: "+msg.Err.Error(), true)

	case spinner.TickMsg:
		if !m.engine.Ready() {
			var cmd tea.Cmd
			m.loading, cmd = m.loading.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tabs.NextTabMsg, tabs.PrevTabMsg:
		var cmd tea.Cmd
		m.tabs, cmd = m.tabs.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.loading.Err = m.engine.LastError()
	m.syncSelection()

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.NextTab):
		return tabs.NextTabCmd
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

		return nil
	case key.Matches(msg, m.keys.Cancel):
		m.connectFrom = ""
		m.setStatus("", false)

		return nil
	}

	if m.selected == "" {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Grab):
		return m.toggleGrab()
	case key.Matches(msg, m.keys.Left):
		if m.grabbed {
			return m.adjust(-m.config.NudgeStep)
		}
		m.moveColumn(-1)
	case key.Matches(msg, m.keys.Right):
		if m.grabbed {
			return m.adjust(m.config.NudgeStep)
		}
		m.moveColumn(1)
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.NudgeDown):
		return m.nudge(-m.config.NudgeStep)
	case key.Matches(msg, m.keys.NudgeUp):
		return m.nudge(m.config.NudgeStep)
	case key.Matches(msg, m.keys.Mute):
		m.release()

		return m.engine.Handle(mixer.ToggleMuteMsg{NodeID: m.selected})
	case key.Matches(msg, m.keys.MoveUp):
		return m.shift(-graph.RowHeight)
	case key.Matches(msg, m.keys.MoveDown):
		return m.shift(graph.RowHeight)
	case key.Matches(msg, m.keys.Connect):
		return m.connect()
	case key.Matches(msg, m.keys.Disconnect):
		n := len(m.engine.Edges())
		cmd := m.engine.Handle(mixer.DisconnectNodeMsg{NodeID: m.selected})
		m.setStatus(plural(n-len(m.engine.Edges()), "connection")+" removed", false)

		return cmd
	case key.Matches(msg, m.keys.Remove):
		id := m.selected
		m.release()

		return m.engine.Handle(mixer.RemoveNodeMsg{NodeID: id})
	}

	return nil
}

func (m *Model) toggleGrab() tea.Cmd {
	if m.grabbed {
		m.release()

		return nil
	}

	if n, ok := m.engine.Node(m.selected); ok && n.Muted {
		m.setStatus("unmute "+n.Label()+" to adjust it", true)

		return nil
	}

	m.grabbed = true

	return m.engine.Handle(mixer.PressMsg{NodeID: m.selected})
}

// release gives the selected node's control back to the poll loop.
func (m *Model) release() {
	if !m.grabbed {
		return
	}

	m.grabbed = false
	m.engine.Handle(mixer.ReleaseMsg{NodeID: m.selected})
}

// nudge steps the volume once. While grabbed it acts like left/right so the
// grab survives.
func (m *Model) nudge(delta float64) tea.Cmd {
	if m.grabbed {
		return m.adjust(delta)
	}

	return m.engine.Handle(mixer.NudgeMsg{NodeID: m.selected, Delta: delta})
}

func (m *Model) adjust(delta float64) tea.Cmd {
	n, ok := m.engine.Node(m.selected)
	if !ok {
		return nil
	}

	return m.engine.Handle(mixer.ChangeMsg{NodeID: m.selected, Volume: n.Volume + delta})
}

func (m *Model) shift(dy float64) tea.Cmd {
	n, ok := m.engine.Node(m.selected)
	if !ok {
		return nil
	}

	pos := n.Position
	pos.Y += dy

	return m.engine.Handle(mixer.MoveMsg{NodeID: m.selected, Position: pos})
}

func (m *Model) connect() tea.Cmd {
	if m.connectFrom == "" {
		m.connectFrom = m.selected
		m.setStatus("connecting from "+m.label(m.selected)+": select an output and press c", false)

		return nil
	}

	source := m.connectFrom
	m.connectFrom = ""

	before := len(m.engine.Edges())
	cmd := m.engine.Handle(mixer.ConnectMsg{Source: source, Target: m.selected})

	if len(m.engine.Edges()) > before {
		m.setStatus("connected "+m.label(source)+" → "+m.label(m.selected), false)
	}

	return cmd
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) label(id string) string {
	if n, ok := m.engine.Node(id); ok {
		return n.Label()
	}

	return id
}

// columns groups nodes by column, each ordered by position.
func (m *Model) columns() [columnCount][]mixer.NodeState {
	var cols [columnCount][]mixer.NodeState

	for _, n := range m.engine.Nodes() {
		c := columnOf(n)
		cols[c] = append(cols[c], n)
	}

	for _, col := range cols {
		slices.SortStableFunc(col, func(a, b mixer.NodeState) int {
			switch {
			case a.Position.Y < b.Position.Y:
				return -1
			case a.Position.Y > b.Position.Y:
				return 1
			default:
				return 0
			}
		})
	}

	return cols
}

func columnOf(n mixer.NodeState) column {
	switch {
	case n.Kind == graph.KindApp:
		return appColumn
	case n.IsInput():
		return inputColumn
	default:
		return outputColumn
	}
}

func (m *Model) locate(cols [columnCount][]mixer.NodeState) (column, int, bool) {
	for c, col := range cols {
		for r, n := range col {
			if n.ID == m.selected {
				return column(c), r, true
			}
		}
	}

	return 0, 0, false
}

func (m *Model) moveRow(delta int) {
	cols := m.columns()

	c, r, ok := m.locate(cols)
	if !ok {
		return
	}

	r += delta
	if r < 0 || r >= len(cols[c]) {
		return
	}

	m.release()
	m.selected = cols[c][r].ID
}

// moveColumn jumps to the nearest non-empty column in the given direction,
// keeping the row where possible.
func (m *Model) moveColumn(delta int) {
	cols := m.columns()

	c, r, ok := m.locate(cols)
	if !ok {
		return
	}

	for next := int(c) + delta; next >= 0 && next < int(columnCount); next += delta {
		if len(cols[next]) == 0 {
			continue
		}

		m.release()
		m.selected = cols[next][min(r, len(cols[next])-1)].ID

		return
	}
}

// syncSelection keeps the cursor on an existing node.
func (m *Model) syncSelection() {
	if m.connectFrom != "" {
		if _, ok := m.engine.Node(m.connectFrom); !ok {
			m.connectFrom = ""
		}
	}

	if m.selected != "" {
		if _, ok := m.engine.Node(m.selected); ok {
			return
		}
	}

	m.grabbed = false
	m.selected = ""

	for _, col := range m.columns() {
		if len(col) > 0 {
			m.selected = col[0].ID

			return
		}
	}
}

// Selected returns the id of the node under the cursor.
func (m *Model) Selected() string {
	return m.selected
}

// view adapts a render function to a tab.
type view struct {
	render func() string
}

func (v view) Init() tea.Cmd                       { return nil }
func (v view) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }
func (v view) View() string                        { return v.render() }
