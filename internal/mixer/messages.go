package mixer

import (
	"github.com/alkime/mixgraph/internal/backend"
	"github.com/alkime/mixgraph/internal/graph"
)

// User intents. Each targets a node by id; intents for unknown nodes are
// ignored.
type (
	PressMsg struct{ NodeID string }

	ReleaseMsg struct{ NodeID string }

	ChangeMsg struct {
		NodeID string
		Volume float64
	}

	ToggleMuteMsg struct{ NodeID string }

	// NudgeMsg is a press, change by Delta and release in one step.
	NudgeMsg struct {
		NodeID string
		Delta  float64
	}

	MoveMsg struct {
		NodeID   string
		Position graph.Position
	}

	ConnectMsg struct{ Source, Target string }

	DisconnectMsg struct{ EdgeID string }

	// DisconnectNodeMsg removes every edge touching the node.
	DisconnectNodeMsg struct{ NodeID string }

	RemoveNodeMsg struct{ NodeID string }
)

// Internal messages carrying timer ticks and backend results.
type (
	enumerateTickMsg struct{}

	enumeratedMsg struct {
		devices  []backend.AudioDevice
		sessions []backend.AppSession
		err      error
	}

	pollTickMsg struct {
		nodeID string
		token  string
	}

	readResultMsg struct {
		nodeID string
		token  string
		gen    uint64
		volume float64
		err    error
	}

	writeResultMsg struct {
		nodeID string
		err    error
	}
)

// EdgeRejectedMsg reports a connect gesture the graph refused.
type EdgeRejectedMsg struct {
	Source, Target string
	Err            error
}
