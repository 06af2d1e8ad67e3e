// Package backend defines the capability surface mixgraph needs from the
// native audio subsystem, and the implementations that provide it.
package backend

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnknownDevice   = errors.New("unknown device")
	ErrUnknownSession  = errors.New("unknown session")
	ErrInjectedFailure = errors.New("injected failure")
	ErrMalformed       = errors.New("malformed payload")
)

// DeviceType is the direction of an audio endpoint.
type DeviceType string

const (
	Input  DeviceType = "Input"
	Output DeviceType = "Output"
)

// IsInput reports whether the device captures audio.
func (t DeviceType) IsInput() bool {
	return t == Input
}

// ParseDeviceType accepts the wire names "Input" and "Output".
func ParseDeviceType(s string) (DeviceType, error) {
	switch DeviceType(s) {
	case Input, Output:
		return DeviceType(s), nil
	default:
		return "", fmt.Errorf("%w: device type %q", ErrMalformed, s)
	}
}

// AudioDevice is a snapshot of one physical endpoint. The backend provides
// no stable id; identity is derived by the graph.
type AudioDevice struct {
	Name string     `json:"name" yaml:"name"`
	Type DeviceType `json:"device_type" yaml:"device_type"`
}

// AppSession is a snapshot of one audio-producing application.
type AppSession struct {
	PID     int     `json:"pid" yaml:"pid"`
	Name    string  `json:"name" yaml:"name"`
	Volume  float64 `json:"volume" yaml:"volume"`
	IsMuted bool    `json:"is_muted" yaml:"is_muted"`
}

// Backend is the request/response capability interface. Every call may fail
// transiently; none of them is retried by the implementation.
type Backend interface {
	// EnumerateDevices lists endpoints. The order is meaningful to callers.
	EnumerateDevices(ctx context.Context) ([]AudioDevice, error)

	// EnumerateSessions lists active application sessions.
	EnumerateSessions(ctx context.Context) ([]AppSession, error)

	// GetDeviceVolume reads a device volume in [0,100]. The value is not
	// guaranteed to be finite; callers must check.
	GetDeviceVolume(ctx context.Context, name string, isInput bool) (float64, error)

	SetDeviceVolume(ctx context.Context, name string, volume float64, isInput bool) error

	SetAppVolume(ctx context.Context, pid int, volume float64) error
}
