package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alkime/mixgraph/internal/backend"
	"github.com/alkime/mixgraph/internal/config"
	"github.com/alkime/mixgraph/internal/graph"
	"github.com/alkime/mixgraph/internal/mixer"
	"github.com/alkime/mixgraph/pkg/uictl"
	"github.com/fatih/color"
)

var (
	header  = color.New(color.Bold, color.FgMagenta)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	dim     = color.New(color.FgHiBlack)
	inputC  = color.New(color.FgCyan)
	outputC = color.New(color.FgBlue)
)

// listDevices prints every device with its node key and current volume.
func listDevices(ctx context.Context, w io.Writer, b backend.Backend) error {
	devices, err := b.EnumerateDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	if len(devices) == 0 {
		dim.Fprintln(w, "no audio devices found")

		return nil
	}

	header.Fprintf(w, "%-8s %-32s %-40s %s\n", "TYPE", "NAME", "KEY", "VOLUME")

	keys := graph.DeviceKeys(devices)
	for i, d := range devices {
		c := outputC
		if d.Type.IsInput() {
			c = inputC
		}

		c.Fprintf(w, "%-8s ", d.Type)
		fmt.Fprintf(w, "%-32s %-40s ", d.Name, keys[i])

		v, err := b.GetDeviceVolume(ctx, d.Name, d.Type.IsInput())
		if err != nil {
			warn.Fprintf(w, "unavailable (%v)\n", err)

			continue
		}

		pct, ok := uictl.Percent(v)
		if !ok {
			warn.Fprintln(w, "malformed")

			continue
		}

		fmt.Fprintf(w, "%3.0f\n", pct)
	}

	return nil
}

// listSessions prints every application session.
func listSessions(ctx context.Context, w io.Writer, b backend.Backend) error {
	sessions, err := b.EnumerateSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate sessions: %w", err)
	}

	if len(sessions) == 0 {
		dim.Fprintln(w, "no application sessions found")

		return nil
	}

	header.Fprintf(w, "%-8s %-32s %-12s %s\n", "PID", "NAME", "KEY", "VOLUME")

	for _, s := range sessions {
		fmt.Fprintf(w, "%-8d %-32s %-12s %3.0f", s.PID, s.Name, graph.AppKey(s.PID), s.Volume)
		if s.IsMuted {
			warn.Fprint(w, " muted")
		}
		fmt.Fprintln(w)
	}

	return nil
}

// printEvent prints one engine event as a log line.
func printEvent(w io.Writer, ev mixer.Event) {
	switch ev.Kind {
	case mixer.EnumerationFailed, mixer.ReadFailed, mixer.WriteFailed:
		warn.Fprintln(w, ev.String())
	case mixer.NodeAdded:
		good.Fprintln(w, ev.String())
	case mixer.NodeRemoved:
		dim.Fprintln(w, ev.String())
	default:
		fmt.Fprintln(w, ev.String())
	}
}

// showConfig prints the effective configuration. The token value is never
// printed.
func showConfig(w io.Writer, cfg *config.Config, keychainToken bool) {
	row := func(k string, v any) {
		header.Fprintf(w, "%-24s", k)
		fmt.Fprintf(w, "%v\n", v)
	}

	row("env", cfg.Env)
	row("log level", cfg.LogLevel)
	row("log file", orNone(cfg.LogFile))
	row("backend", cfg.Backend)
	row("scenario", orNone(cfg.Scenario))
	row("bridge url", cfg.BridgeURL)
	row("bridge addr", cfg.BridgeAddr)
	row("bridge timeout", cfg.BridgeTimeout)
	row("enumerate interval", cfg.EnumerateInterval)
	row("poll interval", cfg.PollInterval)
	row("default device volume", cfg.DefaultDeviceVolume)
	row("nudge step", cfg.NudgeStep)

	var token []string
	if cfg.BridgeToken != "" {
		token = append(token, "set in environment")
	}
	if keychainToken {
		token = append(token, "stored in keychain")
	}
	row("bridge token", orNone(strings.Join(token, ", ")))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}

	return s
}
