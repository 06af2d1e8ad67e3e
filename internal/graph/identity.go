package graph

import (
	"fmt"
	"strconv"

	"github.com/alkime/mixgraph/internal/backend"
)

// AppKey is the node id of an application session.
func AppKey(pid int) string {
	return "app-" + strconv.Itoa(pid)
}

// DeviceKeys returns the node id of each device, aligned with devices.
//
// Inputs are keyed "dev-<name>-<n>" and outputs "dev-<name>-out<n>", where n
// counts earlier devices with the same name and type in backend order. A key
// depends only on devices sharing both name and type, so the input and output
// halves of a headset never trade identities and neither does a device whose
// neighbours are reordered or unplugged.
func DeviceKeys(devices []backend.AudioDevice) []string {
	type identity struct {
		name  string
		input bool
	}

	keys := make([]string, len(devices))
	seen := make(map[identity]int, len(devices))

	for i, d := range devices {
		id := identity{name: d.Name, input: d.Type.IsInput()}
		keys[i] = deviceKey(d.Name, id.input, seen[id])
		seen[id]++
	}

	return keys
}

func deviceKey(name string, input bool, n int) string {
	if input {
		return fmt.Sprintf("dev-%s-%d", name, n)
	}

	return fmt.Sprintf("dev-%s-out%d", name, n)
}
