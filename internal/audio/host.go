// Package audio enumerates the machine's audio endpoints through miniaudio.
package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alkime/mixgraph/pkg/collections"
	"github.com/gen2brain/malgo"
)

// Endpoint is one playback or capture device as reported by the host.
type Endpoint struct {
	Name      string
	Capture   bool
	IsDefault bool
}

// Host lists the endpoints of the default audio host.
type Host interface {
	// Endpoints returns playback devices first, then capture devices, each
	// group in the order the host reports them.
	Endpoints(ctx context.Context) ([]Endpoint, error)
}

type host struct{}

func NewHost() Host {
	return &host{}
}

func (h *host) Endpoints(ctx context.Context) ([]Endpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// An empty context is enough for enumeration; no device gets opened.
	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		slog.Debug("malgo log", "msg", msg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(mgCtx)

	playback, err := mgCtx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to get playback devices: %w", err)
	}

	capture, err := mgCtx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to get capture devices: %w", err)
	}

	endpoints := collections.Apply(playback, toEndpoint(false))
	endpoints = append(endpoints, collections.Apply(capture, toEndpoint(true))...)

	return endpoints, nil
}

func toEndpoint(capture bool) func(malgo.DeviceInfo) Endpoint {
	return func(mdi malgo.DeviceInfo) Endpoint {
		return Endpoint{
			Name:      mdi.Name(),
			Capture:   capture,
			IsDefault: mdi.IsDefault != 0,
		}
	}
}

func uninitializeContext(mgCtx *malgo.AllocatedContext) {
	if mgCtx == nil {
		return
	}

	if err := mgCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	mgCtx.Free()
}
