package modules

import (
	"context"
	"strings"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar"
)

// AudioModule reports the description of the default audio sink.
type AudioModule struct {
	*statusbar.BaseModule
	runner         shell.Runner
	defaultCommand []string
	listCommand    []string
}

// NewAudioModule creates a new audio module
func NewAudioModule(runner shell.Runner, defaultCommand, listCommand []string) *AudioModule {
	return &AudioModule{
		BaseModule:     statusbar.NewBaseModule("audio"),
		runner:         runner,
		defaultCommand: defaultCommand,
		listCommand:    listCommand,
	}
}

// Query returns the default sink's description, its name when no
// description is listed, or Disconnected when there is no default sink.
// pactl exiting non-zero counts as no default sink.
func (m *AudioModule) Query(ctx context.Context) (string, error) {
	out, err := outputOf(m.runner.Output(ctx, m.defaultCommand))
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(out)
	if name == "" {
		return Disconnected, nil
	}

	list, err := outputOf(m.runner.Output(ctx, m.listCommand))
	if err != nil {
		return "", err
	}

	if desc := sinkDescription(list, name); desc != "" {
		return desc, nil
	}
	return name, nil
}

// sinkDescription scans `pactl list sinks` blocks for the one whose Name
// matches and returns its Description.
func sinkDescription(output, name string) string {
	inSink := false
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(line, "Sink #") {
			inSink = false
			continue
		}
		if v, ok := strings.CutPrefix(trimmed, "Name:"); ok {
			inSink = strings.TrimSpace(v) == name
			continue
		}
		if !inSink {
			continue
		}
		if v, ok := strings.CutPrefix(trimmed, "Description:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// AudioModuleFactory is a factory for creating AudioModule instances
type AudioModuleFactory struct{}

func (f *AudioModuleFactory) CreateModule(cfg *config.Config, runner shell.Runner) (statusbar.Module, error) {
	return NewAudioModule(runner, cfg.Connectivity.AudioDefaultSink, cfg.Connectivity.AudioSinks), nil
}

func (f *AudioModuleFactory) ModuleName() string {
	return "audio"
}
