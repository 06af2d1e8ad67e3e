package backend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

const defaultDeviceVolume = 80

// ScenarioDevice is a device entry of a scenario file. Volume is optional.
type ScenarioDevice struct {
	Name   string     `yaml:"name"`
	Type   DeviceType `yaml:"device_type"`
	Volume *float64   `yaml:"volume,omitempty"`
}

// Scenario describes the world a Simulated backend starts from.
type Scenario struct {
	DefaultVolume *float64         `yaml:"default_volume,omitempty"`
	Devices       []ScenarioDevice `yaml:"devices"`
	Sessions      []AppSession     `yaml:"sessions"`
}

func (sc Scenario) defaultVolume() float64 {
	if sc.DefaultVolume == nil {
		return defaultDeviceVolume
	}

	return *sc.DefaultVolume
}

// Validate checks device types and pid uniqueness.
func (sc Scenario) Validate() error {
	for i, d := range sc.Devices {
		if d.Name == "" {
			return fmt.Errorf("device %d: name is required", i)
		}

		if _, err := ParseDeviceType(string(d.Type)); err != nil {
			return fmt.Errorf("device %q: %w", d.Name, err)
		}
	}

	seen := make(map[int]bool, len(sc.Sessions))
	for _, s := range sc.Sessions {
		if seen[s.PID] {
			return fmt.Errorf("session pid %d listed twice", s.PID)
		}
		seen[s.PID] = true
	}

	return nil
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.UnmarshalStrict(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := sc.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("invalid scenario: %w", err)
	}

	return sc, nil
}

// LoadScenario reads a scenario file from disk.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}

	return ParseScenario(data)
}

// DemoScenario is used when no scenario file is given.
func DemoScenario() Scenario {
	return Scenario{
		Devices: []ScenarioDevice{
			{Name: "Speakers", Type: Output},
			{Name: "Headphones", Type: Output},
			{Name: "Built-in Microphone", Type: Input},
			{Name: "USB Microphone", Type: Input},
		},
		Sessions: []AppSession{
			{PID: 1201, Name: "Music Player", Volume: 70},
			{PID: 2044, Name: "Browser", Volume: 100},
			{PID: 3310, Name: "Voice Chat", Volume: 55},
		},
	}
}
