package modules

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar"
)

// noUpdatesExitCode is what checkupdates exits with when nothing is pending.
const noUpdatesExitCode = 2

// UpdatesModule counts pending package updates, one per output line.
type UpdatesModule struct {
	*statusbar.BaseModule
	runner      shell.Runner
	command     []string
	headerLines int
}

// NewUpdatesModule creates a new updates module. headerLines output lines
// are not counted.
func NewUpdatesModule(runner shell.Runner, command []string, headerLines int) *UpdatesModule {
	return &UpdatesModule{
		BaseModule:  statusbar.NewBaseModule("updates"),
		runner:      runner,
		command:     command,
		headerLines: headerLines,
	}
}

// Query returns the pending count as a decimal string.
func (m *UpdatesModule) Query(ctx context.Context) (string, error) {
	n, err := m.Count(ctx)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

// Count returns the number of pending updates.
func (m *UpdatesModule) Count(ctx context.Context) (int, error) {
	out, err := m.runner.Output(ctx, m.command)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == noUpdatesExitCode && len(strings.TrimSpace(string(out))) == 0 {
			return 0, nil
		}
		return 0, err
	}
	return countLines(string(out), m.headerLines), nil
}

func countLines(output string, headerLines int) int {
	n := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	n -= headerLines
	if n < 0 {
		return 0
	}
	return n
}

// UpdatesModuleFactory is a factory for creating UpdatesModule instances
type UpdatesModuleFactory struct{}

func (f *UpdatesModuleFactory) CreateModule(cfg *config.Config, runner shell.Runner) (statusbar.Module, error) {
	return NewUpdatesModule(runner, cfg.Status.Updates, cfg.Status.UpdatesHeaderLines), nil
}

func (f *UpdatesModuleFactory) ModuleName() string {
	return "updates"
}
