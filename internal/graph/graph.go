// Package graph holds the node and edge collections shown to the user and
// the rules for editing them.
package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/alkime/mixgraph/internal/backend"
	"github.com/alkime/mixgraph/pkg/collections"
	"github.com/google/uuid"
)

var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrEdgeNotFound      = errors.New("edge not found")
	ErrDuplicateEdge     = errors.New("graph already contains edge")
	ErrInvalidConnection = errors.New("invalid connection")
)

// Kind is the type of thing a node represents.
type Kind string

const (
	KindDevice Kind = "device"
	KindApp    Kind = "app"
)

type Position struct {
	X, Y float64
}

type DeviceData struct {
	Label      string
	DeviceType backend.DeviceType
}

type AppData struct {
	Label         string
	PID           int
	InitialVolume float64
}

// Node is one control unit of the graph. Exactly one of Device and App is
// set, matching Kind.
type Node struct {
	ID       string
	Kind     Kind
	Position Position
	Device   *DeviceData
	App      *AppData
}

// Label is the display name of the node.
func (n Node) Label() string {
	switch {
	case n.Device != nil:
		return n.Device.Label
	case n.App != nil:
		return n.App.Label
	default:
		return n.ID
	}
}

// IsInput reports whether the node is a capture device.
func (n Node) IsInput() bool {
	return n.Device != nil && n.Device.DeviceType.IsInput()
}

// IsOutput reports whether the node is a playback device.
func (n Node) IsOutput() bool {
	return n.Device != nil && !n.Device.DeviceType.IsInput()
}

func (n Node) sameData(o Node) bool {
	if n.Kind != o.Kind {
		return false
	}

	switch n.Kind {
	case KindDevice:
		return *n.Device == *o.Device
	case KindApp:
		return *n.App == *o.App
	default:
		return true
	}
}

func (n Node) clone() Node {
	if n.Device != nil {
		d := *n.Device
		n.Device = &d
	}

	if n.App != nil {
		a := *n.App
		n.App = &a
	}

	return n
}

// Edge is a user-drawn connection. It has no effect on audio.
type Edge struct {
	ID     string
	Source string
	Target string
}

// Diff reports what a Reconcile changed.
type Diff struct {
	Added        []string
	Updated      []string
	Removed      []string
	EdgesRemoved int
}

// Empty reports whether the reconcile changed nothing.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

// Graph is the node and edge collection. It is not safe for concurrent use;
// the engine owns it from a single loop.
type Graph struct {
	nodes []Node
	edges []Edge
	newID func() string
}

func New() *Graph {
	return &Graph{newID: uuid.NewString}
}

// Nodes returns a copy of the nodes in display order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.clone()
	}

	return out
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	i := g.indexOf(id)
	if i < 0 {
		return Node{}, false
	}

	return g.nodes[i].clone(), true
}

// Edges returns a copy of the edges in creation order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// EdgesOf returns the edges touching the node.
func (g *Graph) EdgesOf(id string) []Edge {
	return collections.Filter(g.edges, Touching(id))
}

// Touching matches edges with id at either end.
func Touching(id string) func(Edge) bool {
	return func(e Edge) bool {
		return e.Source == id || e.Target == id
	}
}

// Reconcile merges a freshly computed node set by id. Known nodes get their
// data updated and keep their position; new nodes are inserted as given;
// nodes absent from target are removed together with their edges. The
// resulting order follows target. Later duplicates of an id are ignored.
func (g *Graph) Reconcile(target []Node) Diff {
	var diff Diff

	next := make([]Node, 0, len(target))
	kept := make(map[string]bool, len(target))

	for _, t := range target {
		if kept[t.ID] {
			continue
		}
		kept[t.ID] = true

		i := g.indexOf(t.ID)
		if i < 0 {
			next = append(next, t.clone())
			diff.Added = append(diff.Added, t.ID)

			continue
		}

		cur := g.nodes[i]
		if !cur.sameData(t) {
			diff.Updated = append(diff.Updated, t.ID)
		}

		updated := t.clone()
		updated.Position = cur.Position
		next = append(next, updated)
	}

	for _, n := range g.nodes {
		if !kept[n.ID] {
			diff.Removed = append(diff.Removed, n.ID)
		}
	}

	g.nodes = next

	before := len(g.edges)
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool {
		return !kept[e.Source] || !kept[e.Target]
	})
	diff.EdgesRemoved = before - len(g.edges)

	return diff
}

// Move sets a node's position.
func (g *Graph) Move(id string, pos Position) error {
	i := g.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	g.nodes[i].Position = pos

	return nil
}

// Connect draws an edge from an app or input device to an output device.
func (g *Graph) Connect(source, target string) (Edge, error) {
	src, ok := g.Node(source)
	if !ok {
		return Edge{}, fmt.Errorf("%w: %s", ErrNodeNotFound, source)
	}

	dst, ok := g.Node(target)
	if !ok {
		return Edge{}, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
	}

	if err := validConnection(src, dst); err != nil {
		return Edge{}, err
	}

	if slices.ContainsFunc(g.edges, func(e Edge) bool { return e.Source == source && e.Target == target }) {
		return Edge{}, fmt.Errorf("%w: %s -> %s", ErrDuplicateEdge, source, target)
	}

	e := Edge{ID: g.newID(), Source: source, Target: target}
	g.edges = append(g.edges, e)

	return e, nil
}

// Disconnect removes one edge.
func (g *Graph) Disconnect(edgeID string) error {
	before := len(g.edges)
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.ID == edgeID })

	if len(g.edges) == before {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, edgeID)
	}

	return nil
}

// DisconnectNode removes every edge touching the node and returns how many
// were removed.
func (g *Graph) DisconnectNode(id string) int {
	before := len(g.edges)
	g.edges = slices.DeleteFunc(g.edges, Touching(id))

	return before - len(g.edges)
}

// RemoveNode deletes a node and its edges. A node still reported by the
// backend comes back on the next reconcile.
func (g *Graph) RemoveNode(id string) error {
	i := g.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	g.nodes = slices.Delete(g.nodes, i, i+1)
	g.DisconnectNode(id)

	return nil
}

func (g *Graph) indexOf(id string) int {
	return slices.IndexFunc(g.nodes, func(n Node) bool { return n.ID == id })
}

func validConnection(src, dst Node) error {
	switch {
	case src.ID == dst.ID:
		return fmt.Errorf("%w: %s cannot connect to itself", ErrInvalidConnection, src.ID)
	case src.Kind != KindApp && !src.IsInput():
		return fmt.Errorf("%w: %s has no output handle", ErrInvalidConnection, src.ID)
	case !dst.IsOutput():
		return fmt.Errorf("%w: %s has no input handle", ErrInvalidConnection, dst.ID)
	}

	return nil
}
