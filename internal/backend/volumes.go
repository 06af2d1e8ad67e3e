package backend

import (
	"sync"

	"github.com/alkime/mixgraph/pkg/uictl"
)

type deviceKey struct {
	name    string
	isInput bool
}

// volumeTable is an in-process software mixer: the last volume written for
// each device and session.
type volumeTable struct {
	mu       sync.RWMutex
	fallback float64
	devices  map[deviceKey]float64
	sessions map[int]float64
}

func newVolumeTable(fallback float64) *volumeTable {
	return &volumeTable{
		fallback: uictl.Clamp(fallback, 0, 100),
		devices:  make(map[deviceKey]float64),
		sessions: make(map[int]float64),
	}
}

func (t *volumeTable) device(name string, isInput bool) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if v, ok := t.devices[deviceKey{name, isInput}]; ok {
		return v
	}

	return t.fallback
}

func (t *volumeTable) setDevice(name string, isInput bool, volume float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.devices[deviceKey{name, isInput}] = uictl.Clamp(volume, 0, 100)
}

func (t *volumeTable) session(pid int) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.sessions[pid]
	return v, ok
}

func (t *volumeTable) setSession(pid int, volume float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sessions[pid] = uictl.Clamp(volume, 0, 100)
}
