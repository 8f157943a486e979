package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports stylesheet changes in the themes directory.
type Watcher struct {
	manager   *Manager
	fsWatcher *fsnotify.Watcher
	onChange  func(name string)

	stopChan chan struct{}
	done     chan struct{}
	mutex    sync.Mutex
	running  bool
}

// NewWatcher creates a watcher that calls onChange with the theme name
// whenever <dir>/<name>.css is written or created. The callback runs on the
// watcher goroutine.
func NewWatcher(manager *Manager, onChange func(name string)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		manager:   manager,
		fsWatcher: fsWatcher,
		onChange:  onChange,
	}, nil
}

// Start begins watching the themes directory.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	info, err := os.Stat(w.manager.Dir())
	if err != nil {
		return fmt.Errorf("error accessing themes directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", w.manager.Dir())
	}

	if err := w.fsWatcher.Add(w.manager.Dir()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.manager.Dir(), err)
	}

	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true

	go w.loop(w.stopChan, w.done)

	log.WithField("directory", w.manager.Dir()).Info("watching themes")
	return nil
}

func (w *Watcher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			base := filepath.Base(event.Name)
			if !stylesheetPattern.Match(base) {
				continue
			}
			name := strings.TrimSuffix(base, ext)
			log.WithField("theme", name).Debug("stylesheet changed")
			if w.onChange != nil {
				w.onChange(name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Error("fsnotify watcher error")

		case <-stop:
			return
		}
	}
}

// Stop halts the watcher and releases the fsnotify handle.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.running {
		w.fsWatcher.Close()
		return
	}

	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		log.WithError(err).Error("error closing fsnotify watcher")
	}
	<-w.done
	w.running = false
}
