// Package config provides configuration loading and management for the
// achievement tracker.
package config

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Ironman       bool          `json:"ironman"       mapstructure:"ironman"       yaml:"ironman"`
	Notifications Notifications `json:"notifications" mapstructure:"notifications" yaml:"notifications"`
	Display       Display       `json:"display"       mapstructure:"display"       yaml:"display"`
	Tracker       Tracker       `json:"tracker"       mapstructure:"tracker"       yaml:"tracker"`
	Storage       Storage       `json:"storage"       mapstructure:"storage"       yaml:"storage"`
	Web           Web           `json:"web"           mapstructure:"web"           yaml:"web"`
}

// Notifications controls completion chat messages.
type Notifications struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	Color   string `json:"color"   mapstructure:"color"   yaml:"color"`
}

// Display controls which in-progress states are highlighted.
type Display struct {
	AchievementInProgress bool `json:"achievement_in_progress" mapstructure:"achievement_in_progress" yaml:"achievement_in_progress"`
	RequirementInProgress bool `json:"requirement_in_progress" mapstructure:"requirement_in_progress" yaml:"requirement_in_progress"`
}

// Tracker tunes the tracking loop.
type Tracker struct {
	SweepInterval time.Duration `json:"sweep_interval" mapstructure:"sweep_interval" yaml:"sweep_interval"`
	ReadyTicks    int           `json:"ready_ticks"    mapstructure:"ready_ticks"    yaml:"ready_ticks"`
}

// Storage locates the SQLite database.
type Storage struct {
	Path string `json:"path" mapstructure:"path" yaml:"path"`
}

// Web configures the HTTP view.
type Web struct {
	Addr string `json:"addr" mapstructure:"addr" yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Ironman:       true,
		Notifications: Notifications{Enabled: true, Color: "#781478"},
		Display:       Display{AchievementInProgress: true, RequirementInProgress: true},
		Tracker:       Tracker{SweepInterval: 10 * time.Second, ReadyTicks: 2},
		Storage:       Storage{Path: ".achievements/achievements.db"},
		Web:           Web{Addr: ":8080"},
	}
}

// SetDefaults registers the built-in configuration with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("ironman", d.Ironman)
	v.SetDefault("notifications.enabled", d.Notifications.Enabled)
	v.SetDefault("notifications.color", d.Notifications.Color)
	v.SetDefault("display.achievement_in_progress", d.Display.AchievementInProgress)
	v.SetDefault("display.requirement_in_progress", d.Display.RequirementInProgress)
	v.SetDefault("tracker.sweep_interval", d.Tracker.SweepInterval.String())
	v.SetDefault("tracker.ready_ticks", d.Tracker.ReadyTicks)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("web.addr", d.Web.Addr)
}

// Load decodes the settings held by v and validates the result.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	if cfg.Tracker.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("tracker.sweep_interval must be > 0")
	}
	return cfg, nil
}
