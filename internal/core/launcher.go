package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/launcher"
	"github.com/chess10kp/lanzador/internal/layer"
	"github.com/chess10kp/lanzador/internal/statusbar"
)

// Launcher is the search window: an entry, the result list and an optional
// status strip.
type Launcher struct {
	app            *App
	config         *config.Config
	engine         *launcher.Engine
	styles         *StyleManager
	icons          *IconCache
	window         *gtk.Window
	searchEntry    *gtk.Entry
	resultList     *gtk.ListBox
	scrolledWindow *gtk.ScrolledWindow
	status         *StatusStrip
	help           *HelpWindow
	currentItems   []*launcher.LauncherItem
	searchVersion  int64
	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewLauncher builds the window. status may be nil when the strip is
// disabled.
func NewLauncher(app *App, cfg *config.Config, engine *launcher.Engine, styles *StyleManager, icons *IconCache, status *StatusStrip) (*Launcher, error) {
	window, err := gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	window.SetTitle("lanzador")
	window.SetName("launcher-window")
	window.SetDecorated(cfg.Window.Decorated)
	window.SetModal(cfg.Window.Modal)
	window.SetResizable(cfg.Window.Resizable)
	window.SetSkipTaskbarHint(true)
	window.SetSkipPagerHint(true)
	window.SetDefaultSize(cfg.Window.Width, cfg.Window.Height)
	window.SetPosition(gtk.WIN_POS_CENTER)

	box, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create box: %w", err)
	}
	window.Add(box)

	searchEntry, err := gtk.EntryNew()
	if err != nil {
		return nil, fmt.Errorf("failed to create search entry: %w", err)
	}
	searchEntry.SetPlaceholderText(fmt.Sprintf("Search, %s, %s or %s", cfg.Prefixes.System, cfg.Prefixes.Connectivity, config.HelpMarker))
	searchEntry.SetName("launcher-entry")
	box.PackStart(searchEntry, false, false, 0)

	scrolledWindow, err := gtk.ScrolledWindowNew(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create scrolled window: %w", err)
	}
	scrolledWindow.SetPolicy(gtk.POLICY_NEVER, gtk.POLICY_AUTOMATIC)
	scrolledWindow.SetVExpand(true)
	box.PackStart(scrolledWindow, true, true, 0)

	resultList, err := gtk.ListBoxNew()
	if err != nil {
		return nil, fmt.Errorf("failed to create result list: %w", err)
	}
	resultList.SetName("result-list")
	resultList.SetVExpand(true)
	scrolledWindow.Add(resultList)

	if status != nil {
		box.PackEnd(status.Widget(), false, false, 0)
	}

	ctx, cancel := context.WithCancel(context.Background())

	l := &Launcher{
		app:            app,
		config:         cfg,
		engine:         engine,
		styles:         styles,
		icons:          icons,
		window:         window,
		searchEntry:    searchEntry,
		resultList:     resultList,
		scrolledWindow: scrolledWindow,
		status:         status,
		ctx:            ctx,
		cancel:         cancel,
	}

	help, err := NewHelpWindow(window, engine.HelpSections(), func() {
		l.searchEntry.SetText("")
		l.searchEntry.GrabFocus()
	})
	if err != nil {
		return nil, err
	}
	l.help = help

	if cfg.Window.LayerShell {
		if !layer.CenterOverlay(unsafe.Pointer(window.Native()), "lanzador") {
			log.Warn("layer shell requested but not supported by the compositor")
		}
	}

	l.setupSignals()
	return l, nil
}

func (l *Launcher) setupSignals() {
	l.searchEntry.Connect("changed", func() {
		text, _ := l.searchEntry.GetText()
		l.onSearchChanged(text)
	})

	l.searchEntry.Connect("activate", func() {
		l.onActivate()
	})

	l.searchEntry.Connect("key-press-event", func(entry *gtk.Entry, event *gdk.Event) bool {
		return l.onKeyPress(gdk.EventKeyNewFromEvent(event))
	})

	l.resultList.Connect("row-activated", func(list *gtk.ListBox, row *gtk.ListBoxRow) {
		l.onRowActivated(row)
	})

	l.window.Connect("destroy", func() {
		l.app.Quit()
	})
}

// ApplyStylesheet implements launcher.UI.
func (l *Launcher) ApplyStylesheet(name, css string) error {
	return l.styles.ApplyStylesheet(name, css)
}

// ShowHelp implements launcher.UI.
func (l *Launcher) ShowHelp() {
	l.help.Show()
}

// UpdateStatus posts a poller snapshot to the status strip.
func (l *Launcher) UpdateStatus(snapshot statusbar.Snapshot) {
	if l.status == nil {
		return
	}
	glib.IdleAdd(func() bool {
		l.status.Update(snapshot)
		return false
	})
}

// onSearchChanged filters off the main thread. Results of a search that was
// superseded before it finished are dropped.
func (l *Launcher) onSearchChanged(text string) {
	version := atomic.AddInt64(&l.searchVersion, 1)

	go func(query string, version int64) {
		view := l.engine.Filter(l.ctx, query)

		glib.IdleAdd(func() bool {
			if l.ctx.Err() != nil {
				return false
			}
			if version != atomic.LoadInt64(&l.searchVersion) {
				log.Debugf("dropping stale results for version=%d", version)
				return false
			}
			l.updateResults(view.Items)
			if view.ShowHelp() {
				l.ShowHelp()
			}
			return false
		})
	}(text, version)
}

func (l *Launcher) updateResults(items []*launcher.LauncherItem) {
	l.mu.Lock()
	l.currentItems = items
	l.mu.Unlock()

	children := l.resultList.GetChildren()
	children.Foreach(func(child interface{}) {
		if row, ok := child.(*gtk.ListBoxRow); ok {
			l.resultList.Remove(row)
		}
	})

	for i, item := range items {
		row, err := l.createResultRow(item)
		if err != nil {
			log.WithError(err).Warnf("failed to create row %d", i)
			continue
		}
		l.resultList.Add(row)
	}

	if row := l.resultList.GetRowAtIndex(0); row != nil {
		l.resultList.SelectRow(row)
	}

	l.resultList.ShowAll()
}

func (l *Launcher) createResultRow(item *launcher.LauncherItem) (*gtk.ListBoxRow, error) {
	row, err := gtk.ListBoxRowNew()
	if err != nil {
		return nil, err
	}
	addClass(row, "list-row")

	box, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 8)
	if err != nil {
		return nil, err
	}
	box.SetMarginStart(8)
	box.SetMarginEnd(8)

	if item.Icon != "" && l.icons != nil {
		if pixbuf, err := l.icons.GetIcon(item.Icon, l.config.Window.IconSize); err == nil {
			icon, err := gtk.ImageNewFromPixbuf(pixbuf)
			if err != nil {
				return nil, err
			}
			box.PackStart(icon, false, false, 0)
		}
	}

	label, err := gtk.LabelNew(item.Title)
	if err != nil {
		return nil, err
	}
	label.SetHAlign(gtk.ALIGN_START)
	box.PackStart(label, true, true, 0)

	if item.Subtitle != "" {
		subLabel, err := gtk.LabelNew(item.Subtitle)
		if err != nil {
			return nil, err
		}
		subLabel.SetHAlign(gtk.ALIGN_END)
		addClass(subLabel, "item-subtitle")
		box.PackStart(subLabel, false, false, 0)
	}

	row.Add(box)
	return row, nil
}

// onActivate runs the only entry shown for the text in the search entry.
// The view is resolved off the main thread, since it may still be waiting on
// connectivity lookups, and dropped if the text changed in the meantime.
func (l *Launcher) onActivate() {
	text, _ := l.searchEntry.GetText()

	go func() {
		view := l.engine.Resolve(l.ctx, text)

		glib.IdleAdd(func() bool {
			if l.ctx.Err() != nil {
				return false
			}
			if current, _ := l.searchEntry.GetText(); current != text {
				log.Debug("enter ignored: text changed while resolving")
				return false
			}
			outcome, err := l.engine.EnterView(l.ctx, view)
			if errors.Is(err, launcher.ErrNoSingleMatch) {
				log.Debug("enter ignored: not exactly one visible entry")
				return false
			}
			l.finish(outcome, err)
			return false
		})
	}()
}

func (l *Launcher) onRowActivated(row *gtk.ListBoxRow) {
	l.mu.RLock()
	index := row.GetIndex()
	if index < 0 || index >= len(l.currentItems) {
		l.mu.RUnlock()
		return
	}
	item := l.currentItems[index]
	l.mu.RUnlock()

	l.finish(l.engine.Activate(l.ctx, item))
}

func (l *Launcher) finish(outcome launcher.Outcome, err error) {
	if err != nil {
		log.WithError(err).Error("activation failed")
		return
	}
	if outcome.SetText {
		l.searchEntry.SetText(outcome.Text)
	}
	if outcome.Close {
		l.Close()
	}
}

func (l *Launcher) onKeyPress(event *gdk.EventKey) bool {
	key := event.KeyVal()
	ctrl := event.State()&uint(gdk.CONTROL_MASK) != 0

	switch {
	case key == gdk.KEY_Escape:
		l.Close()
		return true
	case key == gdk.KEY_F1 && ctrl:
		if err := l.engine.Help(l.ctx); err != nil {
			log.WithError(err).Error("failed to open help")
		}
		return true
	case key == gdk.KEY_Down:
		l.navigateResult(1)
		return true
	case key == gdk.KEY_Up:
		l.navigateResult(-1)
		return true
	}

	return false
}

func (l *Launcher) itemCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.currentItems)
}

func (l *Launcher) navigateResult(direction int) {
	count := l.itemCount()
	if count == 0 {
		return
	}

	currentIndex := -1
	if selected := l.resultList.GetSelectedRow(); selected != nil {
		currentIndex = selected.GetIndex()
	}

	nextIndex := currentIndex + direction
	switch {
	case currentIndex == -1 && direction > 0:
		nextIndex = 0
	case nextIndex < 0:
		nextIndex = count - 1
	case nextIndex >= count:
		nextIndex = 0
	}

	if row := l.resultList.GetRowAtIndex(nextIndex); row != nil {
		l.resultList.SelectRow(row)
	}
}

// Show presents the window with the full application list.
func (l *Launcher) Show() {
	l.window.ShowAll()
	l.window.Present()
	l.searchEntry.GrabFocus()
	l.onSearchChanged("")
}

// Close cancels in-flight lookups and destroys the window, which quits the
// application.
func (l *Launcher) Close() {
	l.cancel()
	l.window.Destroy()
}
