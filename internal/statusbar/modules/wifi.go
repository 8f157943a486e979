package modules

import (
	"context"
	"strings"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar"
)

// WifiModule reports the SSID of the active Wi-Fi network from terse nmcli
// output ("active:ssid" per line).
type WifiModule struct {
	*statusbar.BaseModule
	runner  shell.Runner
	command []string
	markers []string
}

// NewWifiModule creates a new WiFi module. markers are the values of the
// first field that mean the network is active; nmcli localizes them.
func NewWifiModule(runner shell.Runner, command []string, markers []string) *WifiModule {
	if len(markers) == 0 {
		markers = []string{"yes"}
	}
	return &WifiModule{
		BaseModule: statusbar.NewBaseModule("wifi"),
		runner:     runner,
		command:    command,
		markers:    markers,
	}
}

// Query returns the active SSID, or Disconnected.
func (m *WifiModule) Query(ctx context.Context) (string, error) {
	out, err := outputOf(m.runner.Output(ctx, m.command))
	if err != nil {
		return "", err
	}
	return m.parse(out), nil
}

func (m *WifiModule) parse(output string) string {
	for _, line := range strings.Split(output, "\n") {
		active, ssid, ok := strings.Cut(strings.TrimRight(line, "\r"), ":")
		if !ok || !m.isActive(active) {
			continue
		}
		// nmcli escapes colons inside fields in terse mode
		ssid = strings.ReplaceAll(ssid, `\:`, ":")
		if ssid != "" {
			return ssid
		}
	}
	return Disconnected
}

func (m *WifiModule) isActive(field string) bool {
	for _, marker := range m.markers {
		if strings.EqualFold(field, marker) {
			return true
		}
	}
	return false
}

// WifiModuleFactory is a factory for creating WifiModule instances
type WifiModuleFactory struct{}

func (f *WifiModuleFactory) CreateModule(cfg *config.Config, runner shell.Runner) (statusbar.Module, error) {
	return NewWifiModule(runner, cfg.Connectivity.WifiList, cfg.Connectivity.WifiActiveMarkers), nil
}

func (f *WifiModuleFactory) ModuleName() string {
	return "wifi"
}
