package statusbar

import (
	"context"
	"time"
)

// Placeholder is shown for a module whose query failed.
const Placeholder = "N/A"

// Module is the interface that all status modules must implement. Query runs
// one external lookup and returns a short display string.
type Module interface {
	Name() string
	Query(ctx context.Context) (string, error)
}

// ModuleFunc adapts a function to the Module interface.
type ModuleFunc struct {
	name  string
	query func(ctx context.Context) (string, error)
}

// NewModuleFunc creates a module named name backed by query.
func NewModuleFunc(name string, query func(ctx context.Context) (string, error)) *ModuleFunc {
	return &ModuleFunc{name: name, query: query}
}

func (m *ModuleFunc) Name() string { return m.name }

func (m *ModuleFunc) Query(ctx context.Context) (string, error) {
	return m.query(ctx)
}

// BaseModule provides the name for embedding modules.
type BaseModule struct {
	name string
}

// NewBaseModule creates a new base module
func NewBaseModule(name string) *BaseModule {
	return &BaseModule{name: name}
}

// Name returns the module name
func (m *BaseModule) Name() string {
	return m.name
}

// Snapshot holds one tick's results keyed by module name.
type Snapshot struct {
	Values map[string]string
	Order  []string
	At     time.Time
}

// Get returns the value for name, or Placeholder when absent.
func (s Snapshot) Get(name string) string {
	if v, ok := s.Values[name]; ok {
		return v
	}
	return Placeholder
}

// Sink receives snapshots. Implementations must not block for long; the GTK
// shell posts to the main loop and the terminal shell sends a message.
type Sink func(Snapshot)
