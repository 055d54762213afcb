package config

import "sort"

// Presets are named tuning profiles. The timing profiles trade
// precision for patience: precision closes fast for power users, touch
// waits longest, reduced-motion skips the coast almost entirely.
var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"precision": func() *Config {
		cfg := DefaultConfig()
		cfg.Timing = TimingConfig{SettleGraceMs: 100, WheelIdleMs: 500, IdleMs: 2500, WatchdogMs: 1000}
		cfg.Snap.PullStrength = 0.7
		cfg.Snap.CenterLock = 0.6
		cfg.Momentum.DecelerationRate = 0.995
		return cfg
	},
	"touch": func() *Config {
		cfg := DefaultConfig()
		cfg.Picker.ItemHeight = 48
		cfg.Timing = TimingConfig{SettleGraceMs: 250, WheelIdleMs: 1000, IdleMs: 6000, WatchdogMs: 1500}
		cfg.Momentum.DecelerationRate = 0.998
		cfg.Momentum.MaxDurationMs = 3500
		return cfg
	},
	"reduced-motion": func() *Config {
		cfg := DefaultConfig()
		cfg.Timing = TimingConfig{SettleGraceMs: 250, WheelIdleMs: 1000, IdleMs: 6000, WatchdogMs: 1500}
		// A near-instant coast and a stiff spring keep animation minimal.
		cfg.Momentum.DecelerationRate = 0.985
		cfg.Momentum.MaxDurationMs = 400
		cfg.Spring.Frequency = 14
		return cfg
	},
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
