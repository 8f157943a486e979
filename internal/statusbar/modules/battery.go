package modules

import (
	"context"
	"fmt"
	"strings"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar"
)

// BatteryModule reports the charge percentage from `acpi -b`.
type BatteryModule struct {
	*statusbar.BaseModule
	runner  shell.Runner
	command []string
}

// NewBatteryModule creates a new battery module
func NewBatteryModule(runner shell.Runner, command []string) *BatteryModule {
	return &BatteryModule{
		BaseModule: statusbar.NewBaseModule("battery"),
		runner:     runner,
		command:    command,
	}
}

// Query returns the first percentage field, e.g. "87%".
func (m *BatteryModule) Query(ctx context.Context) (string, error) {
	out, err := m.runner.Output(ctx, m.command)
	if err != nil {
		return "", err
	}
	return parseBattery(string(out))
}

// parseBattery reads lines like "Battery 0: Discharging, 87%, 02:13:00 remaining".
func parseBattery(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		_, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		for _, field := range strings.Split(rest, ",") {
			field = strings.TrimSpace(field)
			if strings.HasSuffix(field, "%") && len(field) > 1 {
				return field, nil
			}
		}
	}
	return "", fmt.Errorf("no battery percentage in output")
}

// BatteryModuleFactory is a factory for creating BatteryModule instances
type BatteryModuleFactory struct{}

func (f *BatteryModuleFactory) CreateModule(cfg *config.Config, runner shell.Runner) (statusbar.Module, error) {
	return NewBatteryModule(runner, cfg.Status.Battery), nil
}

func (f *BatteryModuleFactory) ModuleName() string {
	return "battery"
}
