package apps

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/ini.v1"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/logging"
)

const desktopSection = "Desktop Entry"

var log = logging.For("apps")

// App is one application descriptor.
type App struct {
	Name      string `json:"name"`
	Exec      string `json:"exec"`
	Icon      string `json:"icon"`
	File      string `json:"file"`
	NoDisplay bool   `json:"no_display"`
}

// AppLoader scans descriptor directories once and keeps the result.
type AppLoader struct {
	dirs          []string
	pattern       glob.Glob
	sortByName    bool
	hideNoDisplay bool
	fallbackIcon  string

	cacheEnabled bool
	cacheDir     string
	cacheFile    string
	cacheMaxAge  time.Duration

	apps   []App
	loaded bool
	mu     sync.RWMutex
}

// NewAppLoader builds a loader from the apps section of the config.
func NewAppLoader(cfg *config.Config) (*AppLoader, error) {
	pattern, err := glob.Compile(cfg.Apps.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid descriptor pattern %q: %w", cfg.Apps.Pattern, err)
	}

	var dirs []string
	for _, d := range []string{cfg.Apps.SystemDir, cfg.Apps.UserDir} {
		if d != "" {
			dirs = append(dirs, config.ExpandPath(d))
		}
	}

	fallback := cfg.Apps.FallbackIcon
	if fallback == "" {
		fallback = "application-x-executable"
	}

	cacheDir := config.ExpandPath(cfg.Apps.Cache.Dir)
	return &AppLoader{
		dirs:          dirs,
		pattern:       pattern,
		sortByName:    cfg.Apps.Sort,
		hideNoDisplay: cfg.Apps.HideNoDisplay,
		fallbackIcon:  fallback,
		cacheEnabled:  cfg.Apps.Cache.Enabled,
		cacheDir:      cacheDir,
		cacheFile:     filepath.Join(cacheDir, cfg.Apps.Cache.File),
		cacheMaxAge:   time.Duration(cfg.Apps.Cache.MaxAgeHours) * time.Hour,
	}, nil
}

// LoadApps returns the descriptor snapshot, scanning on first use. Later
// calls return the same snapshot.
func (l *AppLoader) LoadApps() ([]App, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.apps, nil
	}

	start := time.Now()
	if l.cacheEnabled && l.loadFromCache() {
		l.loaded = true
		log.WithField("count", len(l.apps)).Infof("loaded apps from cache in %v", time.Since(start))
		return l.apps, nil
	}

	l.apps = l.scan()
	l.loaded = true

	if l.cacheEnabled {
		if err := l.saveToCache(); err != nil {
			log.WithError(err).Warn("failed to save app cache")
		}
	}

	log.WithField("count", len(l.apps)).Infof("scanned apps in %v", time.Since(start))
	return l.apps, nil
}

// GetApps returns a copy of the loaded snapshot.
func (l *AppLoader) GetApps() []App {
	l.mu.RLock()
	defer l.mu.RUnlock()

	apps := make([]App, len(l.apps))
	copy(apps, l.apps)
	return apps
}

func (l *AppLoader) scan() []App {
	var apps []App
	for _, dir := range l.dirs {
		for _, path := range l.descriptorFiles(dir) {
			app, err := l.parseDesktopFile(path)
			if err != nil {
				if errors.Is(err, errIncomplete) {
					log.WithField("file", path).Debug(err)
				} else {
					log.WithField("file", path).WithError(err).Warn("skipping unreadable descriptor")
				}
				continue
			}
			if l.hideNoDisplay && app.NoDisplay {
				continue
			}
			apps = append(apps, app)
		}
	}

	if l.sortByName {
		sort.SliceStable(apps, func(i, j int) bool {
			return strings.ToLower(apps[i].Name) < strings.ToLower(apps[j].Name)
		})
	}
	return apps
}

func (l *AppLoader) descriptorFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.WithField("dir", dir).WithError(err).Debug("descriptor directory unavailable")
		return nil
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !l.pattern.Match(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files
}

var errIncomplete = errors.New("descriptor lacks Desktop Entry Name or Exec")

// parseDesktopFile reads one descriptor. Files that are not valid sectioned
// documents return the parser error; files without the required keys return
// errIncomplete.
func (l *AppLoader) parseDesktopFile(path string) (App, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, path)
	if err != nil {
		return App{}, err
	}

	section, err := f.GetSection(desktopSection)
	if err != nil {
		return App{}, errIncomplete
	}
	if !section.HasKey("Name") || !section.HasKey("Exec") {
		return App{}, errIncomplete
	}

	app := App{
		Name: strings.TrimSpace(section.Key("Name").String()),
		Exec: strings.TrimSpace(section.Key("Exec").String()),
		Icon: strings.TrimSpace(section.Key("Icon").String()),
		File: path,
	}
	if app.Name == "" || app.Exec == "" {
		return App{}, errIncomplete
	}
	if app.Icon == "" {
		app.Icon = l.fallbackIcon
	}

	if section.HasKey("NoDisplay") && strings.EqualFold(section.Key("NoDisplay").String(), "true") {
		app.NoDisplay = true
	}
	if section.HasKey("Hidden") && strings.EqualFold(section.Key("Hidden").String(), "true") {
		app.NoDisplay = true
	}

	return app, nil
}

type appCache struct {
	Apps      []App  `json:"apps"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

func (l *AppLoader) loadFromCache() bool {
	data, err := os.ReadFile(l.cacheFile)
	if err != nil {
		log.Debug("app cache miss: file not found or unreadable")
		return false
	}

	var cache appCache
	if err := json.Unmarshal(data, &cache); err != nil {
		log.WithError(err).Debug("app cache miss: unreadable cache file")
		return false
	}

	cacheTime, err := time.Parse(time.RFC3339, cache.Timestamp)
	if err != nil {
		return false
	}

	age := time.Since(cacheTime)
	if age >= l.cacheMaxAge {
		log.Debugf("app cache miss: expired (age %v)", age)
		return false
	}

	l.apps = cache.Apps
	return true
}

func (l *AppLoader) saveToCache() error {
	if err := os.MkdirAll(l.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(appCache{
		Apps:      l.apps,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   "1.0",
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	tempFile := l.cacheFile + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := os.Rename(tempFile, l.cacheFile); err != nil {
		return fmt.Errorf("failed to rename temp cache file: %w", err)
	}
	return nil
}

// Filter returns the apps whose lowercased name contains the lowercased
// query, preserving snapshot order.
func Filter(apps []App, query string) []App {
	query = strings.ToLower(query)
	var out []App
	for _, app := range apps {
		if strings.Contains(strings.ToLower(app.Name), query) {
			out = append(out, app)
		}
	}
	return out
}
