package statusbar

import (
	"fmt"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/logging"
	"github.com/chess10kp/lanzador/internal/shell"
)

var log = logging.For("statusbar")

// ModuleFactory builds a module from configuration.
type ModuleFactory interface {
	CreateModule(cfg *config.Config, runner shell.Runner) (Module, error)
	ModuleName() string
}

// ModuleRegistry maps module names to factories.
type ModuleRegistry struct {
	factories map[string]ModuleFactory
	order     []string
}

// NewModuleRegistry creates an empty registry.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{
		factories: make(map[string]ModuleFactory),
	}
}

// RegisterFactory registers a module factory
func (r *ModuleRegistry) RegisterFactory(factory ModuleFactory) error {
	name := factory.ModuleName()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("module '%s' already registered", name)
	}

	r.factories[name] = factory
	r.order = append(r.order, name)
	return nil
}

// Names returns registered module names in registration order.
func (r *ModuleRegistry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// CreateModule creates a module instance by name
func (r *ModuleRegistry) CreateModule(name string, cfg *config.Config, runner shell.Runner) (Module, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown module: %s", name)
	}
	return factory.CreateModule(cfg, runner)
}

// LoadModules creates the named modules, skipping any that fail.
func (r *ModuleRegistry) LoadModules(names []string, cfg *config.Config, runner shell.Runner) []Module {
	var modules []Module
	for _, name := range names {
		module, err := r.CreateModule(name, cfg, runner)
		if err != nil {
			log.WithError(err).Warnf("failed to create module '%s'", name)
			continue
		}
		modules = append(modules, module)
		log.Debugf("loaded module: %s", name)
	}
	return modules
}
