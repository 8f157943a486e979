package modules

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar"
)

const gib = 1 << 30

// MemoryModule reports used and total memory from `free -b`.
type MemoryModule struct {
	*statusbar.BaseModule
	runner  shell.Runner
	command []string
}

// NewMemoryModule creates a new memory module
func NewMemoryModule(runner shell.Runner, command []string) *MemoryModule {
	return &MemoryModule{
		BaseModule: statusbar.NewBaseModule("memory"),
		runner:     runner,
		command:    command,
	}
}

// Query returns "used/total GiB" with one decimal.
func (m *MemoryModule) Query(ctx context.Context) (string, error) {
	out, err := m.runner.Output(ctx, m.command)
	if err != nil {
		return "", err
	}

	used, total, err := parseFree(string(out))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.1f/%.1f GiB", float64(used)/gib, float64(total)/gib), nil
}

// parseFree reads the total and used columns of the "Mem:" line.
func parseFree(output string) (used, total uint64, err error) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != "Mem:" {
			continue
		}
		total, err = strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid total memory %q: %w", fields[1], err)
		}
		used, err = strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid used memory %q: %w", fields[2], err)
		}
		return used, total, nil
	}
	return 0, 0, fmt.Errorf("no Mem: line in output")
}

// MemoryModuleFactory is a factory for creating MemoryModule instances
type MemoryModuleFactory struct{}

func (f *MemoryModuleFactory) CreateModule(cfg *config.Config, runner shell.Runner) (statusbar.Module, error) {
	return NewMemoryModule(runner, cfg.Status.Memory), nil
}

func (f *MemoryModuleFactory) ModuleName() string {
	return "memory"
}
