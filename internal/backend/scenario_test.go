package backend_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alkime/mixgraph/internal/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `
default_volume: 50
devices:
  - name: Mic A
    device_type: Input
    volume: 65
  - name: Speakers
    device_type: Output
sessions:
  - pid: 42
    name: Player
    volume: 55
    is_muted: true
`

func TestParseScenario(t *testing.T) {
	sc, err := backend.ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)

	require.Len(t, sc.Devices, 2)
	assert.Equal(t, backend.Input, sc.Devices[0].Type)
	require.NotNil(t, sc.Devices[0].Volume)
	assert.Equal(t, 65.0, *sc.Devices[0].Volume)
	assert.Nil(t, sc.Devices[1].Volume)
	assert.Equal(t, []backend.AppSession{{PID: 42, Name: "Player", Volume: 55, IsMuted: true}}, sc.Sessions)
	require.NotNil(t, sc.DefaultVolume)
	assert.Equal(t, 50.0, *sc.DefaultVolume)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad device type",
			yaml: "devices:\n  - name: X\n    device_type: Sideways\n",
			want: "device type",
		},
		{
			name: "missing name",
			yaml: "devices:\n  - device_type: Input\n",
			want: "name is required",
		},
		{
			name: "duplicate pid",
			yaml: "sessions:\n  - pid: 1\n    name: a\n  - pid: 1\n    name: b\n",
			want: "listed twice",
		},
		{
			name: "unknown field",
			yaml: "devicez: []\n",
			want: "failed to parse scenario",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := backend.ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	//nolint:gosec // Test file
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0o644))

	sc, err := backend.LoadScenario(path)
	require.NoError(t, err)
	assert.Len(t, sc.Devices, 2)

	_, err = backend.LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDemoScenario(t *testing.T) {
	require.NoError(t, backend.DemoScenario().Validate())
}
