// Package mixer keeps the graph in step with the audio backend: it runs the
// enumeration reconciler, one poll loop per device node, and the volume sync
// state machines that arbitrate between the user and the backend.
package mixer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alkime/mixgraph/internal/backend"
	"github.com/alkime/mixgraph/internal/graph"
	"github.com/alkime/mixgraph/pkg/channels"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

const (
	DefaultEnumerateInterval = 5 * time.Second
	DefaultPollInterval      = time.Second

	defaultEventCapacity   = 200
	defaultHistoryCapacity = 60
)

// Scheduler returns a command that delivers msg after d.
type Scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

// TickScheduler delivers through tea.Tick.
func TickScheduler(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

type deviceState struct {
	device  backend.AudioDevice
	vol     *DeviceVolume
	token   string
	history *Ring[float64]
}

type appState struct {
	pid int
	vol *AppVolume
}

// Engine owns the graph and every node's sync state. All mutation happens in
// Update; backend calls run as commands whose results come back as messages.
type Engine struct {
	ctx     context.Context
	backend backend.Backend
	graph   *graph.Graph
	devices map[string]*deviceState
	apps    map[string]*appState

	enumerateInterval time.Duration
	pollInterval      time.Duration
	defaultVolume     float64

	schedule Scheduler
	now      func() time.Time
	logger   *slog.Logger
	sink     chan<- Event
	events   *Ring[Event]

	ready   bool
	lastErr error
}

var _ tea.Model = (*Engine)(nil)

type Option func(*Engine)

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.schedule = s }
}

func WithIntervals(enumerate, poll time.Duration) Option {
	return func(e *Engine) {
		e.enumerateInterval = enumerate
		e.pollInterval = poll
	}
}

// WithDefaultVolume sets the value a device shows before its first read.
func WithDefaultVolume(v float64) Option {
	return func(e *Engine) { e.defaultVolume = v }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSink publishes every event to ch without blocking. Events are dropped
// when ch is full.
func WithSink(ch chan<- Event) Option {
	return func(e *Engine) { e.sink = ch }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithContext sets the context passed to backend calls.
func WithContext(ctx context.Context) Option {
	return func(e *Engine) { e.ctx = ctx }
}

func NewEngine(b backend.Backend, opts ...Option) *Engine {
	e := &Engine{
		ctx:               context.Background(),
		backend:           b,
		graph:             graph.New(),
		devices:           make(map[string]*deviceState),
		apps:              make(map[string]*appState),
		enumerateInterval: DefaultEnumerateInterval,
		pollInterval:      DefaultPollInterval,
		defaultVolume:     DefaultDeviceVolume,
		schedule:          TickScheduler,
		now:               time.Now,
		logger:            slog.Default(),
		events:            NewRing[Event](defaultEventCapacity),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Init enumerates eagerly and starts the enumeration ticker.
func (e *Engine) Init() tea.Cmd {
	return tea.Batch(e.enumerate(), e.schedule(e.enumerateInterval, enumerateTickMsg{}))
}

func (e *Engine) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return e, e.Handle(msg)
}

// View is empty; the engine is rendered by its host model.
func (e *Engine) View() string {
	return ""
}

// Handle applies one message and returns the follow-up command. Unknown
// messages are ignored.
func (e *Engine) Handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case enumerateTickMsg:
		return tea.Batch(e.enumerate(), e.schedule(e.enumerateInterval, enumerateTickMsg{}))
	case enumeratedMsg:
		return e.handleEnumerated(msg)
	case pollTickMsg:
		return e.handlePollTick(msg)
	case readResultMsg:
		e.handleReadResult(msg)
	case writeResultMsg:
		e.handleWriteResult(msg)

	case PressMsg:
		if st, ok := e.devices[msg.NodeID]; ok {
			st.vol.Press()
		}
	case ReleaseMsg:
		if st, ok := e.devices[msg.NodeID]; ok {
			st.vol.Release()
		}
	case ChangeMsg:
		return e.change(msg.NodeID, func(float64) float64 { return msg.Volume })
	case NudgeMsg:
		if st, ok := e.devices[msg.NodeID]; ok && st.vol.Ownership == RemoteAuthoritative {
			if st.vol.Press() {
				defer st.vol.Release()
			}
		}

		return e.change(msg.NodeID, func(cur float64) float64 { return cur + msg.Delta })
	case ToggleMuteMsg:
		e.toggleMute(msg.NodeID)

	case MoveMsg:
		if err := e.graph.Move(msg.NodeID, msg.Position); err != nil {
			e.logger.Debug("ignoring move", "node", msg.NodeID, "error", err)
		}
	case ConnectMsg:
		if _, err := e.graph.Connect(msg.Source, msg.Target); err != nil {
			e.logger.Info("connection rejected", "source", msg.Source, "target", msg.Target, "error", err)

			return func() tea.Msg {
				return EdgeRejectedMsg{Source: msg.Source, Target: msg.Target, Err: err}
			}
		}
	case DisconnectMsg:
		if err := e.graph.Disconnect(msg.EdgeID); err != nil {
			e.logger.Debug("ignoring disconnect", "edge", msg.EdgeID, "error", err)
		}
	case DisconnectNodeMsg:
		e.graph.DisconnectNode(msg.NodeID)
	case RemoveNodeMsg:
		if err := e.graph.RemoveNode(msg.NodeID); err != nil {
			e.logger.Debug("ignoring remove", "node", msg.NodeID, "error", err)

			return nil
		}

		e.dropState(msg.NodeID)
	}

	return nil
}

func (e *Engine) enumerate() tea.Cmd {
	ctx, b := e.ctx, e.backend

	return func() tea.Msg {
		devices, err := b.EnumerateDevices(ctx)
		if err != nil {
			return enumeratedMsg{err: err}
		}

		sessions, err := b.EnumerateSessions(ctx)
		if err != nil {
			return enumeratedMsg{err: err}
		}

		return enumeratedMsg{devices: devices, sessions: sessions}
	}
}

func (e *Engine) handleEnumerated(msg enumeratedMsg) tea.Cmd {
	if msg.err != nil {
		e.lastErr = msg.err
		e.logger.Warn("enumeration failed, keeping previous nodes", "error", msg.err)
		e.emit(Event{Kind: EnumerationFailed, Err: msg.err})

		return nil
	}

	e.ready = true
	e.lastErr = nil

	diff := e.graph.Reconcile(graph.Target(msg.devices, msg.sessions))

	for _, id := range diff.Removed {
		e.dropState(id)
	}

	var cmds []tea.Cmd

	for _, n := range e.graph.Nodes() {
		switch n.Kind {
		case graph.KindDevice:
			dev := backend.AudioDevice{Name: n.Device.Label, Type: n.Device.DeviceType}
			if st, ok := e.devices[n.ID]; ok {
				st.device = dev

				continue
			}

			st := &deviceState{
				device:  dev,
				vol:     NewDeviceVolume(e.defaultVolume),
				token:   uuid.NewString(),
				history: NewRing[float64](defaultHistoryCapacity),
			}
			st.history.Push(st.vol.Displayed)
			e.devices[n.ID] = st
			e.emit(Event{Kind: NodeAdded, NodeID: n.ID, Volume: st.vol.Displayed})
			cmds = append(cmds, e.schedule(e.pollInterval, pollTickMsg{nodeID: n.ID, token: st.token}))

		case graph.KindApp:
			if _, ok := e.apps[n.ID]; ok {
				continue
			}

			st := &appState{pid: n.App.PID, vol: NewAppVolume(n.App.InitialVolume)}
			e.apps[n.ID] = st
			e.emit(Event{Kind: NodeAdded, NodeID: n.ID, Volume: st.vol.Displayed})
		}
	}

	if !diff.Empty() {
		e.logger.Debug("graph reconciled",
			"added", len(diff.Added),
			"updated", len(diff.Updated),
			"removed", len(diff.Removed),
			"edges_removed", diff.EdgesRemoved)
	}

	return tea.Batch(cmds...)
}

func (e *Engine) dropState(id string) {
	_, isDevice := e.devices[id]
	_, isApp := e.apps[id]

	if !isDevice && !isApp {
		return
	}

	delete(e.devices, id)
	delete(e.apps, id)
	e.emit(Event{Kind: NodeRemoved, NodeID: id})
}

func (e *Engine) handlePollTick(msg pollTickMsg) tea.Cmd {
	st, ok := e.devices[msg.nodeID]
	if !ok || st.token != msg.token {
		return nil
	}

	next := e.schedule(e.pollInterval, msg)

	gen, ok := st.vol.BeginRead()
	if !ok {
		return next
	}

	ctx, b, dev := e.ctx, e.backend, st.device
	read := func() tea.Msg {
		v, err := b.GetDeviceVolume(ctx, dev.Name, dev.Type.IsInput())

		return readResultMsg{nodeID: msg.nodeID, token: msg.token, gen: gen, volume: v, err: err}
	}

	return tea.Batch(next, read)
}

func (e *Engine) handleReadResult(msg readResultMsg) {
	st, ok := e.devices[msg.nodeID]
	if !ok || st.token != msg.token {
		return
	}

	if msg.err != nil {
		e.logger.Warn("failed to read device volume", "node", msg.nodeID, "error", msg.err)
		e.emit(Event{Kind: ReadFailed, NodeID: msg.nodeID, Err: msg.err})

		return
	}

	before := st.vol.Displayed

	switch st.vol.ApplyRead(msg.gen, msg.volume) {
	case Applied:
		st.history.Push(st.vol.Displayed)
		if st.vol.Displayed != before {
			e.emit(Event{Kind: VolumeChanged, NodeID: msg.nodeID, Volume: st.vol.Displayed})
		}
	case Stale:
		e.logger.Debug("discarding stale read", "node", msg.nodeID)
	case Malformed:
		err := errors.Join(backend.ErrMalformed, errors.New("volume is not a finite number"))
		e.logger.Warn("discarding malformed read", "node", msg.nodeID, "value", msg.volume)
		e.emit(Event{Kind: ReadFailed, NodeID: msg.nodeID, Err: err})
	}
}

func (e *Engine) handleWriteResult(msg writeResultMsg) {
	if msg.err == nil {
		return
	}

	e.logger.Warn("failed to write volume", "node", msg.nodeID, "error", msg.err)
	e.emit(Event{Kind: WriteFailed, NodeID: msg.nodeID, Err: msg.err})
}

// change applies a user edit and returns the write to issue, if any.
func (e *Engine) change(id string, next func(cur float64) float64) tea.Cmd {
	ctx, b := e.ctx, e.backend

	if st, ok := e.devices[id]; ok {
		v, ok := st.vol.Change(next(st.vol.Displayed))
		if !ok {
			return nil
		}

		st.history.Push(v)
		e.emit(Event{Kind: VolumeChanged, NodeID: id, Volume: v})
		dev := st.device

		return func() tea.Msg {
			return writeResultMsg{nodeID: id, err: b.SetDeviceVolume(ctx, dev.Name, v, dev.Type.IsInput())}
		}
	}

	if st, ok := e.apps[id]; ok {
		v, ok := st.vol.Change(next(st.vol.Displayed))
		if !ok {
			return nil
		}

		e.emit(Event{Kind: VolumeChanged, NodeID: id, Volume: v})
		pid := st.pid

		return func() tea.Msg {
			return writeResultMsg{nodeID: id, err: b.SetAppVolume(ctx, pid, v)}
		}
	}

	return nil
}

func (e *Engine) toggleMute(id string) {
	if st, ok := e.devices[id]; ok {
		st.vol.ToggleMute()
	} else if st, ok := e.apps[id]; ok {
		st.vol.ToggleMute()
	}
}

func (e *Engine) emit(ev Event) {
	ev.Time = e.now()
	e.events.Push(ev)

	if e.sink == nil {
		return
	}

	if err := channels.SendNonBlock(e.sink, ev); err != nil {
		e.logger.Debug("event dropped", "kind", ev.Kind, "error", err)
	}
}
