package mixer

import (
	"fmt"
	"time"
)

// EventKind classifies what the engine observed.
type EventKind string

const (
	NodeAdded         EventKind = "node_added"
	NodeRemoved       EventKind = "node_removed"
	VolumeChanged     EventKind = "volume_changed"
	EnumerationFailed EventKind = "enumeration_failed"
	ReadFailed        EventKind = "read_failed"
	WriteFailed       EventKind = "write_failed"
)

// Event is one entry of the engine's activity log.
type Event struct {
	Time   time.Time
	Kind   EventKind
	NodeID string
	Volume float64
	Err    error
}

func (e Event) String() string {
	ts := e.Time.Format("15:04:05")

	switch e.Kind {
	case NodeAdded, NodeRemoved:
		return fmt.Sprintf("%s %s %s", ts, e.Kind, e.NodeID)
	case VolumeChanged:
		return fmt.Sprintf("%s %s %s %.0f", ts, e.Kind, e.NodeID, e.Volume)
	case EnumerationFailed:
		return fmt.Sprintf("%s %s: %v", ts, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s %s: %v", ts, e.Kind, e.NodeID, e.Err)
	}
}
