// Package modules holds the status and connectivity lookups behind the
// status strip and the connectivity list.
package modules

import (
	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar"
)

// StatusModules are polled on every tick, in display order.
var StatusModules = []string{"battery", "cpu", "memory", "updates"}

var captions = map[string]string{
	"battery": "BAT",
	"cpu":     "CPU",
	"memory":  "MEM",
	"updates": "UPD",
}

// Caption returns the short label shown before a module's reading.
func Caption(name string) string {
	if c, ok := captions[name]; ok {
		return c
	}
	return name
}

// RegisterDefaults registers every built-in module factory.
func RegisterDefaults(registry *statusbar.ModuleRegistry) error {
	factories := []statusbar.ModuleFactory{
		&BatteryModuleFactory{},
		&CpuModuleFactory{},
		&MemoryModuleFactory{},
		&UpdatesModuleFactory{},
		&BluetoothModuleFactory{},
		&WifiModuleFactory{},
		&AudioModuleFactory{},
	}
	for _, f := range factories {
		if err := registry.RegisterFactory(f); err != nil {
			return err
		}
	}
	return nil
}

// NewStatusPoller builds a poller over StatusModules using cfg.
func NewStatusPoller(cfg *config.Config, runner shell.Runner, sink statusbar.Sink) (*statusbar.Poller, error) {
	registry := statusbar.NewModuleRegistry()
	if err := RegisterDefaults(registry); err != nil {
		return nil, err
	}
	mods := registry.LoadModules(StatusModules, cfg, runner)
	return statusbar.NewPoller(mods, cfg.Status.Interval(), cfg.Status.CommandTimeout(), sink), nil
}

// ConnectivityModules are queried when the connectivity list opens. Their
// names match the connectivity command IDs.
var ConnectivityModules = []string{"bluetooth", "wifi", "audio"}

// NewConnectivityLookups builds the connectivity modules keyed by name plus
// the update counter.
func NewConnectivityLookups(cfg *config.Config, runner shell.Runner) (map[string]statusbar.Module, *UpdatesModule, error) {
	registry := statusbar.NewModuleRegistry()
	if err := RegisterDefaults(registry); err != nil {
		return nil, nil, err
	}

	lookups := make(map[string]statusbar.Module, len(ConnectivityModules))
	for _, m := range registry.LoadModules(ConnectivityModules, cfg, runner) {
		lookups[m.Name()] = m
	}

	counter := NewUpdatesModule(runner, cfg.Status.Updates, cfg.Status.UpdatesHeaderLines)
	return lookups, counter, nil
}
