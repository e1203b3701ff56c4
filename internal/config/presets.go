package config

import "sort"

// Presets are named starting points layered over DefaultConfig.
var Presets = map[string]func(*Config){
	// A handful of light bodies drifting slowly; close approaches are rare.
	"sparse": func(c *Config) {
		c.Bodies = 6
		c.Physics.MaxSpeed = 1
	},
	"crowded": func(c *Config) {
		c.Bodies = 200
		c.Physics.MassMin = 2
		c.Physics.MassMax = 6
		c.Physics.Workers = 4
		c.Index.Capacity = 8
	},
	"heavy": func(c *Config) {
		c.Bodies = 12
		c.Physics.G = 5
		c.Physics.MassMin = 20
		c.Physics.MassMax = 40
	},
	"pair": func(c *Config) {
		c.Bodies = 2
		c.Physics.MaxSpeed = 0.5
		c.Physics.MassMin = 10
		c.Physics.MassMax = 12
	},
}

// GetPreset returns DefaultConfig with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
