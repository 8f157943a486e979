package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Fixed markers that select the theme list and the help view.
const (
	ThemeMarker = "theme:"
	HelpMarker  = "help:"
)

var ErrMissingCommand = errors.New("missing command")

type Config struct {
	Prefixes     PrefixesConfig     `toml:"prefixes"`
	Commands     CommandsConfig     `toml:"commands"`
	Apps         AppsConfig         `toml:"apps"`
	Search       SearchConfig       `toml:"search"`
	Window       WindowConfig       `toml:"window"`
	Theme        ThemeConfig        `toml:"theme"`
	Status       StatusConfig       `toml:"status"`
	Connectivity ConnectivityConfig `toml:"connectivity"`
	Log          LogConfig          `toml:"log"`
	PidFile      string             `toml:"pid_file"`
}

type PrefixesConfig struct {
	System       string `toml:"system"`
	Connectivity string `toml:"connectivity"`
}

// CommandsConfig holds one argv list per command slot.
type CommandsConfig struct {
	System       SystemCommandsConfig       `toml:"system"`
	Connectivity ConnectivityCommandsConfig `toml:"connectivity"`
}

type SystemCommandsConfig struct {
	Shutdown []string `toml:"shutdown"`
	Reboot   []string `toml:"reboot"`
	Logout   []string `toml:"logout"`
	Lock     []string `toml:"lock"`
}

type ConnectivityCommandsConfig struct {
	Bluetooth []string `toml:"bluetooth"`
	Wifi      []string `toml:"wifi"`
	Audio     []string `toml:"audio"`
	Update    []string `toml:"update"`
}

type AppsConfig struct {
	SystemDir     string         `toml:"system_dir"`
	UserDir       string         `toml:"user_dir"`
	Pattern       string         `toml:"pattern"`
	Sort          bool           `toml:"sort"`
	HideNoDisplay bool           `toml:"hide_no_display"`
	FallbackIcon  string         `toml:"fallback_icon"`
	Cache         AppCacheConfig `toml:"cache"`
}

type AppCacheConfig struct {
	Enabled     bool   `toml:"enabled"`
	Dir         string `toml:"dir"`
	File        string `toml:"file"`
	MaxAgeHours int    `toml:"max_age_hours"`
}

type SearchConfig struct {
	Fuzzy      bool `toml:"fuzzy"`
	MaxResults int  `toml:"max_results"` // 0 means unlimited
	CacheSize  int  `toml:"cache_size"`
}

type WindowConfig struct {
	Width      int  `toml:"width"`
	Height     int  `toml:"height"`
	Decorated  bool `toml:"decorated"`
	Modal      bool `toml:"modal"`
	Resizable  bool `toml:"resizable"`
	LayerShell bool `toml:"layer_shell"`
	IconSize   int  `toml:"icon_size"`
	IconCache  int  `toml:"icon_cache_size"`
}

type ThemeConfig struct {
	Dir       string `toml:"dir"`
	StateFile string `toml:"state_file"`
	Default   string `toml:"default"`
	Watch     bool   `toml:"watch"`
}

type StatusConfig struct {
	Enabled            bool     `toml:"enabled"`
	IntervalMs         int      `toml:"interval_ms"`
	CommandTimeoutMs   int      `toml:"command_timeout_ms"`
	Battery            []string `toml:"battery"`
	Memory             []string `toml:"memory"`
	Updates            []string `toml:"updates"`
	UpdatesHeaderLines int      `toml:"updates_header_lines"`
	CPUStat            string   `toml:"cpu_stat"`
	CPUSinceBoot       bool     `toml:"cpu_since_boot"`
}

// Interval returns the poll interval as a duration.
func (s StatusConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMs) * time.Millisecond
}

// CommandTimeout returns the per-command timeout as a duration.
func (s StatusConfig) CommandTimeout() time.Duration {
	return time.Duration(s.CommandTimeoutMs) * time.Millisecond
}

type ConnectivityConfig struct {
	BluetoothInfo     []string `toml:"bluetooth_info"`
	WifiList          []string `toml:"wifi_list"`
	WifiActiveMarkers []string `toml:"wifi_active_markers"`
	AudioDefaultSink  []string `toml:"audio_default_sink"`
	AudioSinks        []string `toml:"audio_sinks"`
}

type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

var DefaultConfig = Config{
	Prefixes: PrefixesConfig{
		System:       "sys:",
		Connectivity: "con:",
	},
	Commands: CommandsConfig{
		System: SystemCommandsConfig{
			Shutdown: []string{"systemctl", "poweroff"},
			Reboot:   []string{"systemctl", "reboot"},
			Logout:   []string{"swaymsg", "exit"},
			Lock:     []string{"swaylock", "-f", "-c", "000000"},
		},
		Connectivity: ConnectivityCommandsConfig{
			Bluetooth: []string{"blueman-manager"},
			Wifi:      []string{"nm-connection-editor"},
			Audio:     []string{"pavucontrol"},
			Update:    []string{"pamac-manager", "--updates"},
		},
	},
	Apps: AppsConfig{
		SystemDir:     "/usr/share/applications",
		UserDir:       "~/.local/share/applications",
		Pattern:       "*.desktop",
		Sort:          false,
		HideNoDisplay: false,
		FallbackIcon:  "application-x-executable",
		Cache: AppCacheConfig{
			Enabled:     false,
			Dir:         "~/.cache/lanzador",
			File:        "apps.json",
			MaxAgeHours: 24,
		},
	},
	Search: SearchConfig{
		Fuzzy:      false,
		MaxResults: 0,
		CacheSize:  200,
	},
	Window: WindowConfig{
		Width:      500,
		Height:     400,
		Decorated:  false,
		Modal:      true,
		Resizable:  false,
		LayerShell: false,
		IconSize:   32,
		IconCache:  500,
	},
	Theme: ThemeConfig{
		Dir:       "~/.config/lanzador/themes",
		StateFile: "~/.config/lanzador/theme.toml",
		Default:   "default",
		Watch:     true,
	},
	Status: StatusConfig{
		Enabled:            true,
		IntervalMs:         1000,
		CommandTimeoutMs:   2000,
		Battery:            []string{"acpi", "-b"},
		Memory:             []string{"free", "-b"},
		Updates:            []string{"checkupdates"},
		UpdatesHeaderLines: 0,
		CPUStat:            "/proc/stat",
		CPUSinceBoot:       false,
	},
	Connectivity: ConnectivityConfig{
		BluetoothInfo:     []string{"bluetoothctl", "info"},
		WifiList:          []string{"nmcli", "-t", "-f", "active,ssid", "dev", "wifi"},
		WifiActiveMarkers: []string{"yes", "sí"},
		AudioDefaultSink:  []string{"pactl", "get-default-sink"},
		AudioSinks:        []string{"pactl", "list", "sinks"},
	},
	Log: LogConfig{
		File:  "~/.cache/lanzador/lanzador.log",
		Level: "info",
	},
	PidFile: "/tmp/lanzador.pid",
}

// Default returns a deep copy of DefaultConfig.
func Default() *Config {
	data, err := toml.Marshal(DefaultConfig)
	if err != nil {
		panic(fmt.Sprintf("default config does not marshal: %v", err))
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		panic(fmt.Sprintf("default config does not unmarshal: %v", err))
	}
	return &cfg
}

// LoadConfig reads the TOML file at path on top of the defaults. A missing
// file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	expandedPath := ExpandPath(path)

	data, err := os.ReadFile(expandedPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg.expandPaths()
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", expandedPath, err)
	}

	cfg.expandPaths()
	return cfg, nil
}

// LoadAndValidateConfig loads the file, applies environment overrides and
// validates the result.
func LoadAndValidateConfig(path, envFile string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := ApplyEnv(cfg, envFile); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) expandPaths() {
	c.Apps.SystemDir = ExpandPath(c.Apps.SystemDir)
	c.Apps.UserDir = ExpandPath(c.Apps.UserDir)
	c.Apps.Cache.Dir = ExpandPath(c.Apps.Cache.Dir)
	c.Theme.Dir = ExpandPath(c.Theme.Dir)
	c.Theme.StateFile = ExpandPath(c.Theme.StateFile)
	c.Log.File = ExpandPath(c.Log.File)
	c.PidFile = ExpandPath(c.PidFile)
}

// ExpandPath expands a leading ~ to the current user's home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		usr, err := user.Current()
		if err == nil {
			return filepath.Join(usr.HomeDir, path[1:])
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func SaveConfig(cfg *Config, path string) error {
	expandedPath := ExpandPath(path)

	if err := os.MkdirAll(filepath.Dir(expandedPath), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(expandedPath, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.validatePrefixes(); err != nil {
		return err
	}
	if err := c.validateCommands(); err != nil {
		return err
	}
	if err := c.validateApps(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateWindow(); err != nil {
		return err
	}
	if err := c.validateStatus(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePrefixes() error {
	sys := strings.ToLower(c.Prefixes.System)
	con := strings.ToLower(c.Prefixes.Connectivity)

	if sys == "" {
		return fmt.Errorf("system command prefix is empty")
	}
	if con == "" {
		return fmt.Errorf("connectivity command prefix is empty")
	}
	if strings.HasPrefix(sys, con) || strings.HasPrefix(con, sys) {
		return fmt.Errorf("prefixes %q and %q overlap", c.Prefixes.System, c.Prefixes.Connectivity)
	}

	for _, marker := range []string{ThemeMarker, HelpMarker} {
		for _, p := range []string{sys, con} {
			if strings.HasPrefix(p, marker) || strings.HasPrefix(marker, p) {
				return fmt.Errorf("prefix %q overlaps reserved marker %q", p, marker)
			}
		}
	}
	return nil
}

func (c *Config) validateCommands() error {
	slots := []struct {
		name string
		argv []string
	}{
		{"commands.system.shutdown", c.Commands.System.Shutdown},
		{"commands.system.reboot", c.Commands.System.Reboot},
		{"commands.system.logout", c.Commands.System.Logout},
		{"commands.system.lock", c.Commands.System.Lock},
		{"commands.connectivity.bluetooth", c.Commands.Connectivity.Bluetooth},
		{"commands.connectivity.wifi", c.Commands.Connectivity.Wifi},
		{"commands.connectivity.audio", c.Commands.Connectivity.Audio},
		{"commands.connectivity.update", c.Commands.Connectivity.Update},
	}

	for _, slot := range slots {
		if len(slot.argv) == 0 || strings.TrimSpace(slot.argv[0]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingCommand, slot.name)
		}
	}
	return nil
}

func (c *Config) validateApps() error {
	if c.Apps.Pattern == "" {
		return fmt.Errorf("apps.pattern is empty")
	}
	if c.Apps.SystemDir == "" && c.Apps.UserDir == "" {
		return fmt.Errorf("no application directories configured")
	}
	if c.Apps.Cache.Enabled && (c.Apps.Cache.MaxAgeHours < 1 || c.Apps.Cache.MaxAgeHours > 168) {
		return fmt.Errorf("invalid apps.cache.max_age_hours: %d (must be 1-168 hours)", c.Apps.Cache.MaxAgeHours)
	}
	return nil
}

func (c *Config) validateSearch() error {
	s := c.Search
	if s.MaxResults < 0 || s.MaxResults > 1000 {
		return fmt.Errorf("invalid max_results: %d (must be 0-1000)", s.MaxResults)
	}
	if s.CacheSize < 0 || s.CacheSize > 10000 {
		return fmt.Errorf("invalid search cache_size: %d (must be 0-10000)", s.CacheSize)
	}
	return nil
}

func (c *Config) validateWindow() error {
	w := c.Window
	if w.Width < 100 || w.Width > 4000 {
		return fmt.Errorf("invalid window width: %d (must be 100-4000)", w.Width)
	}
	if w.Height < 100 || w.Height > 4000 {
		return fmt.Errorf("invalid window height: %d (must be 100-4000)", w.Height)
	}
	if w.IconSize < 16 || w.IconSize > 256 {
		return fmt.Errorf("invalid icon_size: %d (must be 16-256)", w.IconSize)
	}
	return nil
}

func (c *Config) validateStatus() error {
	s := c.Status
	if !s.Enabled {
		return nil
	}
	if s.IntervalMs < 100 || s.IntervalMs > 60000 {
		return fmt.Errorf("invalid status interval_ms: %d (must be 100-60000)", s.IntervalMs)
	}
	if s.CommandTimeoutMs < 100 || s.CommandTimeoutMs > 60000 {
		return fmt.Errorf("invalid status command_timeout_ms: %d (must be 100-60000)", s.CommandTimeoutMs)
	}
	if s.UpdatesHeaderLines < 0 {
		return fmt.Errorf("invalid updates_header_lines: %d", s.UpdatesHeaderLines)
	}
	return nil
}

// ValidateConfig loads and validates the config at path, including
// environment overrides from envFile.
func ValidateConfig(path, envFile string) error {
	_, err := LoadAndValidateConfig(path, envFile)
	return err
}
