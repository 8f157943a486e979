package launcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chess10kp/lanzador/internal/apps"
	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/theme"
)

var ErrNoSingleMatch = errors.New("not exactly one visible entry")

// UI is what the engine asks of the presentation layer. Both methods are
// called from Activate, Enter and Dispatch, so on the caller's goroutine.
type UI interface {
	ApplyStylesheet(name, css string) error
	ShowHelp()
}

// ThemeStore is the theme storage the engine applies and persists through.
type ThemeStore interface {
	ThemeSource
	Load(name string) (string, error)
	Persist(name string) error
	Saved() string
}

// View is the visible list for one input text.
type View struct {
	Text  string
	Mode  Mode
	Items []*LauncherItem
	// Entered is set when Mode differs from the previous view's mode.
	Entered bool
}

// ShowHelp reports whether the help view should open for this view.
func (v *View) ShowHelp() bool {
	return v.Mode == ModeHelp && v.Entered
}

// Outcome tells the presentation layer what to do after an activation.
type Outcome struct {
	Close   bool
	SetText bool
	Text    string
}

// Options configures an Engine.
type Options struct {
	Config  *config.Config
	Apps    []apps.App
	Themes  ThemeStore
	Spawner Spawner
	UI      UI
	// Lookups is keyed by connectivity command ID.
	Lookups map[string]StatusLookup
	Updates UpdateCounter
}

// Engine routes input text to a launcher and runs activations.
type Engine struct {
	cfg      *config.Config
	registry *LauncherRegistry
	themes   ThemeStore
	spawner  Spawner
	ui       UI

	mu          sync.Mutex
	mode        Mode
	entry       *modeEntry
	view        *View
	seq         uint64
	activeTheme string
}

// modeEntry tracks the OnEnter run for one transition into a mode. Filters
// that stay in the mode wait on done before populating.
type modeEntry struct {
	done chan struct{}
}

func newModeEntry() *modeEntry {
	return &modeEntry{done: make(chan struct{})}
}

// NewEngine builds the launchers and registry. Routing order is the system
// prefix, the connectivity prefix, the help marker, the theme marker and
// finally applications.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("engine needs a config")
	}
	if opts.Spawner == nil {
		opts.Spawner = NewExecSpawner()
	}

	registry := NewLauncherRegistry(NewAppLauncher(opts.Config, opts.Apps))
	launchers := []Launcher{
		NewSystemLauncher(opts.Config),
		NewConnectivityLauncher(opts.Config, opts.Lookups, opts.Updates),
		NewHelpLauncher(),
	}
	if opts.Themes != nil {
		launchers = append(launchers, NewThemeLauncher(opts.Themes))
	}
	for _, l := range launchers {
		if err := registry.Register(l); err != nil {
			return nil, err
		}
	}

	entry := newModeEntry()
	close(entry.done)

	return &Engine{
		cfg:      opts.Config,
		registry: registry,
		themes:   opts.Themes,
		spawner:  opts.Spawner,
		ui:       opts.UI,
		mode:     ModeApplications,
		entry:    entry,
	}, nil
}

// SetUI attaches the presentation layer once it exists.
func (e *Engine) SetUI(ui UI) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ui = ui
}

func (e *Engine) getUI() UI {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ui
}

// Registry returns the launcher registry.
func (e *Engine) Registry() *LauncherRegistry {
	return e.registry
}

// Filter recomputes the visible list for text. It may block on connectivity
// lookups when the connectivity mode is entered, so interactive shells call
// it off their UI thread. Filters that arrive while the mode's OnEnter is
// still running wait for it. The most recently started call wins as the
// current view.
func (e *Engine) Filter(ctx context.Context, text string) *View {
	l, query := e.registry.Route(text)

	e.mu.Lock()
	e.seq++
	seq := e.seq
	entered := l.Mode() != e.mode
	if entered {
		e.mode = l.Mode()
		e.entry = newModeEntry()
	}
	entry := e.entry
	e.mu.Unlock()

	if entered {
		e.enter(ctx, l, entry)
	} else {
		select {
		case <-entry.done:
		case <-ctx.Done():
		}
	}

	view := &View{
		Text:    text,
		Mode:    l.Mode(),
		Items:   l.Populate(ctx, query),
		Entered: entered,
	}

	e.mu.Lock()
	if seq == e.seq {
		e.view = view
	}
	e.mu.Unlock()

	return view
}

func (e *Engine) enter(ctx context.Context, l Launcher, entry *modeEntry) {
	defer close(entry.done)

	log.Debugf("entered %s mode", l.Mode())
	if enterer, ok := l.(ModeEnterer); ok {
		enterer.OnEnter(ctx)
	}
}

// View returns the current view, or nil before the first Filter.
func (e *Engine) View() *View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// Activate runs item's action. Application items close the window and set
// the text to the application's name; everything else leaves it open.
func (e *Engine) Activate(ctx context.Context, item *LauncherItem) (Outcome, error) {
	if item == nil || item.ActionData == nil {
		return Outcome{}, fmt.Errorf("nothing to activate")
	}

	if err := e.Dispatch(ctx, item.ActionData); err != nil {
		return Outcome{}, err
	}

	if item.Launcher != nil && item.Launcher.ClosesOnActivate() {
		log.Infof("%s launched", item.Title)
		return Outcome{Close: true, SetText: true, Text: item.Title}, nil
	}

	log.Infof("%s executed", item.Title)
	return Outcome{}, nil
}

// Resolve returns the view for text. The current view is reused when it was
// computed for the same text; otherwise text is filtered again, which may
// block like Filter.
func (e *Engine) Resolve(ctx context.Context, text string) *View {
	if view := e.View(); view != nil && view.Text == text {
		return view
	}
	return e.Filter(ctx, text)
}

// Enter activates the only entry visible for text. With zero or several
// entries it does nothing and returns ErrNoSingleMatch.
func (e *Engine) Enter(ctx context.Context, text string) (Outcome, error) {
	return e.EnterView(ctx, e.Resolve(ctx, text))
}

// EnterView activates the only entry of view. Front-ends that resolve the
// view off their UI thread call it once they are back on it.
func (e *Engine) EnterView(ctx context.Context, view *View) (Outcome, error) {
	if view == nil || len(view.Items) != 1 {
		return Outcome{}, ErrNoSingleMatch
	}
	return e.Activate(ctx, view.Items[0])
}

// Help opens the help view.
func (e *Engine) Help(ctx context.Context) error {
	return e.Dispatch(ctx, &ShowHelpAction{})
}

// HelpSections returns the help text for the current configuration.
func (e *Engine) HelpSections() []HelpSection {
	return HelpSections(e.cfg)
}

// Dispatch executes one action.
func (e *Engine) Dispatch(ctx context.Context, action ActionData) error {
	if data, err := action.ToJSON(); err == nil {
		log.WithField("action", string(data)).Debug("dispatch")
	}

	switch a := action.(type) {
	case *SpawnAction:
		if err := e.spawner.Spawn(a.Argv); err != nil {
			return fmt.Errorf("failed to spawn: %w", err)
		}
		return nil

	case *ApplyThemeAction:
		return e.ApplyTheme(a.Name)

	case *ShowHelpAction:
		if ui := e.getUI(); ui != nil {
			ui.ShowHelp()
		}
		return nil

	default:
		return fmt.Errorf("unsupported action type: %s", action.Type())
	}
}

// ApplyTheme applies the named stylesheet and persists it as the default.
// A theme that does not exist is logged and ignored.
func (e *Engine) ApplyTheme(name string) error {
	applied, err := e.applyTheme(name)
	if err != nil || !applied {
		return err
	}
	if err := e.themes.Persist(name); err != nil {
		return fmt.Errorf("failed to persist theme: %w", err)
	}
	log.Infof("theme %s applied", name)
	return nil
}

// RestoreTheme applies the persisted theme without persisting it again. It
// returns the name that was applied, or "" when nothing was.
func (e *Engine) RestoreTheme() (string, error) {
	if e.themes == nil {
		return "", nil
	}
	name := e.themes.Saved()
	applied, err := e.applyTheme(name)
	if err != nil || !applied {
		return "", err
	}
	return name, nil
}

// ReloadTheme re-applies name if it is the active theme. Used when the
// stylesheet changes on disk.
func (e *Engine) ReloadTheme(name string) error {
	if name != e.ActiveTheme() {
		return nil
	}
	_, err := e.applyTheme(name)
	return err
}

// ActiveTheme returns the last theme applied.
func (e *Engine) ActiveTheme() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeTheme
}

func (e *Engine) applyTheme(name string) (bool, error) {
	if e.themes == nil {
		return false, fmt.Errorf("themes are not configured")
	}

	css, err := e.themes.Load(name)
	if errors.Is(err, theme.ErrThemeNotFound) {
		log.WithField("theme", name).Warn("theme file not found")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if ui := e.getUI(); ui != nil {
		if err := ui.ApplyStylesheet(name, css); err != nil {
			return false, fmt.Errorf("failed to apply theme %s: %w", name, err)
		}
	}

	e.mu.Lock()
	e.activeTheme = name
	e.mu.Unlock()
	return true, nil
}
