package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/whirl/internal/lifecycle"
	"github.com/san-kum/whirl/internal/physics"
	"github.com/san-kum/whirl/internal/wheel"
)

const (
	DefaultItemHeight    = 40.0
	DefaultSlotCount     = 11
	DefaultPageSize      = 5
	DefaultSettleGraceMs = 150
	DefaultWheelIdleMs   = 800
	DefaultIdleMs        = 4000
	DefaultWatchdogMs    = 1000
)

type Config struct {
	Picker    PickerConfig           `yaml:"picker"`
	Snap      physics.SnapConfig     `yaml:"snap"`
	WheelSnap physics.SnapConfig     `yaml:"wheel_snap"`
	Momentum  physics.MomentumConfig `yaml:"momentum"`
	Spring    physics.SpringConfig   `yaml:"spring"`
	Timing    TimingConfig           `yaml:"timing"`
}

type PickerConfig struct {
	ItemHeight       float64 `yaml:"item_height"`
	SlotCount        int     `yaml:"slot_count"`
	Overscan         int     `yaml:"overscan"`
	PageSize         int     `yaml:"page_size"`
	WheelSensitivity float64 `yaml:"wheel_sensitivity"`
	WheelDeltaCap    float64 `yaml:"wheel_delta_cap"`
	MaxOverscrollPx  float64 `yaml:"max_overscroll_px"`
}

// TimingConfig holds the lifecycle close delays in milliseconds.
type TimingConfig struct {
	SettleGraceMs int `yaml:"settle_grace_ms"`
	WheelIdleMs   int `yaml:"wheel_idle_ms"`
	IdleMs        int `yaml:"idle_ms"`
	WatchdogMs    int `yaml:"watchdog_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		Picker: PickerConfig{
			ItemHeight:       DefaultItemHeight,
			SlotCount:        DefaultSlotCount,
			PageSize:         DefaultPageSize,
			WheelSensitivity: wheel.DefaultWheelSensitivity,
			WheelDeltaCap:    wheel.DefaultWheelDeltaCap,
			MaxOverscrollPx:  wheel.DefaultMaxOverscrollPx,
		},
		Snap: physics.DefaultSnapConfig(),
		// Wheel input gets a stickier profile: stronger pull and center
		// lock, and far less velocity weakening.
		WheelSnap: stickySnap(),
		Momentum:  physics.DefaultMomentumConfig(),
		Spring:    physics.DefaultSpringConfig(),
		Timing: TimingConfig{
			SettleGraceMs: DefaultSettleGraceMs,
			WheelIdleMs:   DefaultWheelIdleMs,
			IdleMs:        DefaultIdleMs,
			WatchdogMs:    DefaultWatchdogMs,
		},
	}
}

func stickySnap() physics.SnapConfig {
	s := physics.DefaultSnapConfig()
	s.PullStrength = 0.8
	s.CenterLock = 0.85
	s.VelocityThreshold = 1200
	s.VelocityReducer = 0.3
	return s
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Column assembles the per-column tuning for one picker column.
func (c *Config) Column(key string, options []string, selected int) wheel.ColumnConfig {
	return wheel.ColumnConfig{
		Key:              key,
		Options:          options,
		ItemHeight:       c.Picker.ItemHeight,
		Height:           c.Picker.ItemHeight * float64(c.Picker.SlotCount),
		SelectedIndex:    selected,
		WheelSensitivity: c.Picker.WheelSensitivity,
		WheelDeltaCap:    c.Picker.WheelDeltaCap,
		Snap:             c.Snap,
		WheelSnap:        c.WheelSnap,
		Momentum:         c.Momentum,
		Spring:           c.Spring,
		Virtual: wheel.VirtualConfig{
			SlotCount: c.Picker.SlotCount,
			Overscan:  c.Picker.Overscan,
		},
		MaxOverscrollPx: c.Picker.MaxOverscrollPx,
		PageSize:        c.Picker.PageSize,
	}
}

// Lifecycle converts the millisecond timing block into machine timing.
func (c *Config) Lifecycle() lifecycle.Timing {
	return lifecycle.Timing{
		SettleGracePeriod: millis(c.Timing.SettleGraceMs),
		WheelIdleTimeout:  millis(c.Timing.WheelIdleMs),
		IdleTimeout:       millis(c.Timing.IdleMs),
		WatchdogTimeout:   millis(c.Timing.WatchdogMs),
	}.Normalize()
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
