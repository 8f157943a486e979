package modules

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar"
)

// Disconnected is reported when a utility answered but nothing is connected.
const Disconnected = "Disconnected"

// outputOf treats a non-zero exit as an answer: the utility ran and its
// output is still meaningful. Any other error means it could not be reached.
func outputOf(out []byte, err error) (string, error) {
	if err == nil {
		return string(out), nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), nil
	}
	return "", err
}

// BluetoothModule reports the name of the connected Bluetooth device.
type BluetoothModule struct {
	*statusbar.BaseModule
	runner  shell.Runner
	command []string
}

// NewBluetoothModule creates a new bluetooth module
func NewBluetoothModule(runner shell.Runner, command []string) *BluetoothModule {
	return &BluetoothModule{
		BaseModule: statusbar.NewBaseModule("bluetooth"),
		runner:     runner,
		command:    command,
	}
}

// Query returns the device name, or Disconnected.
func (m *BluetoothModule) Query(ctx context.Context) (string, error) {
	out, err := outputOf(m.runner.Output(ctx, m.command))
	if err != nil {
		return "", err
	}
	return parseBluetoothInfo(out), nil
}

func parseBluetoothInfo(output string) string {
	if !strings.Contains(output, "Connected: yes") {
		return Disconnected
	}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			if name = strings.TrimSpace(name); name != "" {
				return name
			}
		}
	}
	return Disconnected
}

// BluetoothModuleFactory is a factory for creating BluetoothModule instances
type BluetoothModuleFactory struct{}

func (f *BluetoothModuleFactory) CreateModule(cfg *config.Config, runner shell.Runner) (statusbar.Module, error) {
	return NewBluetoothModule(runner, cfg.Connectivity.BluetoothInfo), nil
}

func (f *BluetoothModuleFactory) ModuleName() string {
	return "bluetooth"
}
