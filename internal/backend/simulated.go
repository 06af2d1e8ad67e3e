package backend

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
)

// Faults switches on failure modes of a Simulated backend.
type Faults struct {
	FailEnumerate  bool
	FailReads      bool
	FailWrites     bool
	MalformedReads bool
}

// WriteKind distinguishes recorded write calls.
type WriteKind string

const (
	DeviceWrite WriteKind = "device"
	AppWrite    WriteKind = "app"
)

// Write records one set-volume call received by a Simulated backend.
type Write struct {
	Kind    WriteKind
	Name    string
	IsInput bool
	PID     int
	Volume  float64
}

// Simulated is an in-memory Backend driven by a Scenario. It is safe for
// concurrent use and lets callers change the world underneath the engine.
type Simulated struct {
	mu       sync.Mutex
	devices  []AudioDevice
	sessions []AppSession
	volumes  *volumeTable
	faults   Faults
	writes   []Write
}

var _ Backend = (*Simulated)(nil)

// NewSimulated builds a backend seeded from the scenario.
func NewSimulated(sc Scenario) *Simulated {
	s := &Simulated{
		volumes: newVolumeTable(sc.defaultVolume()),
	}

	for _, d := range sc.Devices {
		s.devices = append(s.devices, AudioDevice{Name: d.Name, Type: d.Type})
		if d.Volume != nil {
			s.volumes.setDevice(d.Name, d.Type.IsInput(), *d.Volume)
		}
	}

	for _, sess := range sc.Sessions {
		s.sessions = append(s.sessions, sess)
		s.volumes.setSession(sess.PID, sess.Volume)
	}

	return s
}

func (s *Simulated) EnumerateDevices(ctx context.Context) ([]AudioDevice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.faults.FailEnumerate {
		return nil, fmt.Errorf("failed to enumerate devices: %w", ErrInjectedFailure)
	}

	return slices.Clone(s.devices), nil
}

func (s *Simulated) EnumerateSessions(ctx context.Context) ([]AppSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.faults.FailEnumerate {
		return nil, fmt.Errorf("failed to enumerate sessions: %w", ErrInjectedFailure)
	}

	out := make([]AppSession, len(s.sessions))
	for i, sess := range s.sessions {
		if v, ok := s.volumes.session(sess.PID); ok {
			sess.Volume = v
		}
		out[i] = sess
	}

	return out, nil
}

func (s *Simulated) GetDeviceVolume(ctx context.Context, name string, isInput bool) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.faults.FailReads:
		return 0, fmt.Errorf("failed to read volume of %q: %w", name, ErrInjectedFailure)
	case !s.hasDevice(name, isInput):
		return 0, fmt.Errorf("%w: %q", ErrUnknownDevice, name)
	case s.faults.MalformedReads:
		return math.NaN(), nil
	}

	return s.volumes.device(name, isInput), nil
}

func (s *Simulated) SetDeviceVolume(ctx context.Context, name string, volume float64, isInput bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes = append(s.writes, Write{Kind: DeviceWrite, Name: name, IsInput: isInput, Volume: volume})

	if s.faults.FailWrites {
		return fmt.Errorf("failed to set volume of %q: %w", name, ErrInjectedFailure)
	}

	if !s.hasDevice(name, isInput) {
		return fmt.Errorf("%w: %q", ErrUnknownDevice, name)
	}

	s.volumes.setDevice(name, isInput, volume)

	return nil
}

func (s *Simulated) SetAppVolume(ctx context.Context, pid int, volume float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes = append(s.writes, Write{Kind: AppWrite, PID: pid, Volume: volume})

	if s.faults.FailWrites {
		return fmt.Errorf("failed to set volume of pid %d: %w", pid, ErrInjectedFailure)
	}

	if !slices.ContainsFunc(s.sessions, func(a AppSession) bool { return a.PID == pid }) {
		return fmt.Errorf("%w: pid %d", ErrUnknownSession, pid)
	}

	s.volumes.setSession(pid, volume)

	return nil
}

// SetFaults replaces the active failure modes.
func (s *Simulated) SetFaults(f Faults) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faults = f
}

// SetDevices replaces the device list, as if hardware was plugged or unplugged.
func (s *Simulated) SetDevices(devices []AudioDevice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.devices = slices.Clone(devices)
}

// SetSessions replaces the session list, seeding volumes for unseen pids.
func (s *Simulated) SetSessions(sessions []AppSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = slices.Clone(sessions)
	for _, sess := range sessions {
		if _, ok := s.volumes.session(sess.PID); !ok {
			s.volumes.setSession(sess.PID, sess.Volume)
		}
	}
}

// ExternalSetDeviceVolume changes a device volume the way another program
// would, without recording a write.
func (s *Simulated) ExternalSetDeviceVolume(name string, isInput bool, volume float64) {
	s.volumes.setDevice(name, isInput, volume)
}

// ExternalSetAppVolume changes a session volume the way another program
// would, without recording a write.
func (s *Simulated) ExternalSetAppVolume(pid int, volume float64) {
	s.volumes.setSession(pid, volume)
}

// Writes returns every set-volume call received so far.
func (s *Simulated) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.writes)
}

func (s *Simulated) hasDevice(name string, isInput bool) bool {
	return slices.ContainsFunc(s.devices, func(d AudioDevice) bool {
		return d.Name == name && d.Type.IsInput() == isInput
	})
}
