package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alkime/mixgraph/internal/backend"
	"github.com/alkime/mixgraph/internal/config"
	"github.com/alkime/mixgraph/internal/mixer"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"
)

//nolint:gochecknoinits // plain output for assertions
func init() {
	color.NoColor = true
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                 config.EnvDevelopment,
		Backend:             config.BackendSimulated,
		BridgeURL:           "http://127.0.0.1:7777",
		BridgeTimeout:       time.Second,
		EnumerateInterval:   5 * time.Second,
		PollInterval:        time.Second,
		DefaultDeviceVolume: 80,
		NudgeStep:           5,
	}
}

func TestCLI_Apply(t *testing.T) {
	cfg := testConfig()
	cli := &CLI{Backend: "bridge", BridgeURL: "http://studio:7777"}

	require.NoError(t, cli.apply(cfg))
	assert.Equal(t, config.BackendBridge, cfg.Backend)
	assert.Equal(t, "http://studio:7777", cfg.BridgeURL)

	bad := &CLI{Backend: "alsa"}
	assert.ErrorIs(t, bad.apply(cfg), config.ErrInvalid)
}

func TestOpenBackend(t *testing.T) {
	gokeyring.MockInit()

	t.Run("sim with demo scenario", func(t *testing.T) {
		b, err := openBackend(testConfig())
		require.NoError(t, err)

		sessions, err := b.EnumerateSessions(context.Background())
		require.NoError(t, err)
		assert.Len(t, sessions, len(backend.DemoScenario().Sessions))
	})

	t.Run("sim with scenario file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "studio.yaml")
		require.NoError(t, os.WriteFile(path, []byte("devices:\n  - name: Desk Mic\n    device_type: Input\n"), 0o600))

		cfg := testConfig()
		cfg.Scenario = path

		b, err := openBackend(cfg)
		require.NoError(t, err)

		devices, err := b.EnumerateDevices(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []backend.AudioDevice{{Name: "Desk Mic", Type: backend.Input}}, devices)
	})

	t.Run("missing scenario file", func(t *testing.T) {
		cfg := testConfig()
		cfg.Scenario = filepath.Join(t.TempDir(), "nope.yaml")

		_, err := openBackend(cfg)
		assert.Error(t, err)
	})

	t.Run("bridge", func(t *testing.T) {
		cfg := testConfig()
		cfg.Backend = config.BackendBridge

		b, err := openBackend(cfg)
		require.NoError(t, err)
		assert.IsType(t, &backend.BridgeClient{}, b)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := testConfig()
		cfg.Backend = "alsa"

		_, err := openBackend(cfg)
		assert.ErrorIs(t, err, config.ErrInvalid)
	})
}

func TestListDevices(t *testing.T) {
	sim := backend.NewSimulated(backend.Scenario{
		Devices: []backend.ScenarioDevice{
			{Name: "Speakers", Type: backend.Output},
			{Name: "Mic A", Type: backend.Input},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, listDevices(context.Background(), &buf, sim))

	out := buf.String()
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "dev-Speakers-out0")
	assert.Contains(t, out, "dev-Mic A-0")
	assert.Contains(t, out, " 80\n")

	t.Run("malformed reads", func(t *testing.T) {
		sim.SetFaults(backend.Faults{MalformedReads: true})
		buf.Reset()
		require.NoError(t, listDevices(context.Background(), &buf, sim))
		assert.Contains(t, buf.String(), "malformed")
	})

	t.Run("enumeration failure", func(t *testing.T) {
		sim.SetFaults(backend.Faults{FailEnumerate: true})
		err := listDevices(context.Background(), &buf, sim)
		assert.ErrorIs(t, err, backend.ErrInjectedFailure)
	})

	t.Run("empty", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, listDevices(context.Background(), &buf, backend.NewSimulated(backend.Scenario{})))
		assert.Contains(t, buf.String(), "no audio devices found")
	})
}

func TestListSessions(t *testing.T) {
	sim := backend.NewSimulated(backend.Scenario{
		Sessions: []backend.AppSession{{PID: 42, Name: "Player", Volume: 55, IsMuted: true}},
	})

	var buf bytes.Buffer
	require.NoError(t, listSessions(context.Background(), &buf, sim))

	assert.Contains(t, buf.String(), "app-42")
	assert.Contains(t, buf.String(), "Player")
	assert.Contains(t, buf.String(), "muted")
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	printEvent(&buf, mixer.Event{Time: at, Kind: mixer.VolumeChanged, NodeID: "dev-Mic A-0", Volume: 42})
	printEvent(&buf, mixer.Event{Time: at, Kind: mixer.EnumerationFailed, Err: errors.New("offline")})

	assert.Equal(t, "03:04:05 volume_changed dev-Mic A-0 42\n03:04:05 enumeration_failed: offline\n", buf.String())
}

func TestShowConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BridgeToken = "s3cret"

	var buf bytes.Buffer
	showConfig(&buf, cfg, true)

	out := buf.String()
	assert.Contains(t, out, "sim")
	assert.Contains(t, out, "set in environment, stored in keychain")
	assert.NotContains(t, out, "s3cret")
}

func TestDescribeBackend(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "the simulated backend", describeBackend(cfg))

	cfg.Backend = config.BackendBridge
	assert.Equal(t, "the bridge at http://127.0.0.1:7777", describeBackend(cfg))

	cfg.Backend = config.BackendLocal
	assert.Equal(t, "this machine's audio host", describeBackend(cfg))
}
