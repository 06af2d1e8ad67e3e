package backend

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/alkime/mixgraph/internal/audio"
	"github.com/alkime/mixgraph/pkg/collections"
)

// Local serves real device enumeration from the audio host. miniaudio has no
// system mixer, so volumes live in an in-process table and sessions come
// from whatever was registered with SetSessions.
type Local struct {
	host    audio.Host
	volumes *volumeTable

	mu       sync.RWMutex
	sessions []AppSession
}

var _ Backend = (*Local)(nil)

// NewLocal creates a backend over host. Devices never written report
// defaultVolume.
func NewLocal(host audio.Host, defaultVolume float64) *Local {
	return &Local{
		host:    host,
		volumes: newVolumeTable(defaultVolume),
	}
}

func (l *Local) EnumerateDevices(ctx context.Context) ([]AudioDevice, error) {
	endpoints, err := l.host.Endpoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	return collections.Apply(endpoints, endpointToDevice), nil
}

func (l *Local) EnumerateSessions(ctx context.Context) ([]AppSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return collections.Apply(l.sessions, func(s AppSession) AppSession {
		if v, ok := l.volumes.session(s.PID); ok {
			s.Volume = v
		}
		return s
	}), nil
}

func (l *Local) GetDeviceVolume(ctx context.Context, name string, isInput bool) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return l.volumes.device(name, isInput), nil
}

func (l *Local) SetDeviceVolume(ctx context.Context, name string, volume float64, isInput bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.volumes.setDevice(name, isInput, volume)

	return nil
}

func (l *Local) SetAppVolume(ctx context.Context, pid int, volume float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.RLock()
	known := slices.ContainsFunc(l.sessions, func(s AppSession) bool { return s.PID == pid })
	l.mu.RUnlock()

	if !known {
		return fmt.Errorf("%w: pid %d", ErrUnknownSession, pid)
	}

	l.volumes.setSession(pid, volume)

	return nil
}

// SetSessions registers the application sessions this backend reports.
func (l *Local) SetSessions(sessions []AppSession) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sessions = slices.Clone(sessions)
	for _, s := range sessions {
		if _, ok := l.volumes.session(s.PID); !ok {
			l.volumes.setSession(s.PID, s.Volume)
		}
	}
}

func endpointToDevice(ep audio.Endpoint) AudioDevice {
	t := Output
	if ep.Capture {
		t = Input
	}

	return AudioDevice{Name: ep.Name, Type: t}
}
