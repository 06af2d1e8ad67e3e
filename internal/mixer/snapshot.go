package mixer

import "github.com/alkime/mixgraph/internal/graph"

// NodeState is a read-only view of one node and its sync state.
type NodeState struct {
	graph.Node

	Volume    float64
	Muted     bool
	Ownership Ownership
}

// Grabbed reports whether the user holds the node's control.
func (n NodeState) Grabbed() bool {
	return n.Ownership == LocalAuthoritative
}

// Nodes returns every node with its current sync state, in graph order.
func (e *Engine) Nodes() []NodeState {
	nodes := e.graph.Nodes()
	out := make([]NodeState, 0, len(nodes))

	for _, n := range nodes {
		out = append(out, e.state(n))
	}

	return out
}

// Node looks up one node.
func (e *Engine) Node(id string) (NodeState, bool) {
	n, ok := e.graph.Node(id)
	if !ok {
		return NodeState{}, false
	}

	return e.state(n), true
}

func (e *Engine) state(n graph.Node) NodeState {
	ns := NodeState{Node: n}

	if st, ok := e.devices[n.ID]; ok {
		ns.Volume = st.vol.Displayed
		ns.Muted = st.vol.Muted
		ns.Ownership = st.vol.Ownership
	} else if st, ok := e.apps[n.ID]; ok {
		ns.Volume = st.vol.Displayed
		ns.Muted = st.vol.Muted
		ns.Ownership = LocalAuthoritative
	}

	return ns
}

func (e *Engine) Edges() []graph.Edge {
	return e.graph.Edges()
}

// History returns up to n recent displayed values of a device node, oldest
// first.
func (e *Engine) History(id string, n int) []float64 {
	st, ok := e.devices[id]
	if !ok {
		return nil
	}

	return st.history.Last(n)
}

// Events returns up to n recent events, oldest first.
func (e *Engine) Events(n int) []Event {
	return e.events.Last(n)
}

// Ready reports whether an enumeration has succeeded.
func (e *Engine) Ready() bool {
	return e.ready
}

// LastError is the error of the latest enumeration attempt, nil on success.
func (e *Engine) LastError() error {
	return e.lastErr
}
