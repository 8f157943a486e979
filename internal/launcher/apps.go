package launcher

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/chess10kp/lanzador/internal/apps"
	"github.com/chess10kp/lanzador/internal/config"
)

// minFuzzyScore drops fuzzy matches too scattered to be useful.
const minFuzzyScore = 0

type AppLauncher struct {
	apps        []apps.App
	appsHash    string
	fuzzy       bool
	maxResults  int
	searchCache *SearchCache
}

// NewAppLauncher creates the fallback launcher over a loaded app snapshot.
func NewAppLauncher(cfg *config.Config, snapshot []apps.App) *AppLauncher {
	cache, err := NewSearchCache(cfg.Search.CacheSize)
	if err != nil {
		log.WithError(err).Warn("failed to create search cache")
		cache = nil
	}

	return &AppLauncher{
		apps:        snapshot,
		appsHash:    ComputeAppsHash(snapshot),
		fuzzy:       cfg.Search.Fuzzy,
		maxResults:  cfg.Search.MaxResults,
		searchCache: cache,
	}
}

func (l *AppLauncher) Name() string           { return "apps" }
func (l *AppLauncher) Mode() Mode             { return ModeApplications }
func (l *AppLauncher) ClosesOnActivate() bool { return true }

// Match owns any text; the whole text is the query.
func (l *AppLauncher) Match(text string) (string, bool) {
	return text, true
}

// Apps returns the snapshot the launcher searches.
func (l *AppLauncher) Apps() []apps.App {
	return l.apps
}

func (l *AppLauncher) Populate(ctx context.Context, query string) []*LauncherItem {
	start := time.Now()
	query = strings.ToLower(query)

	if l.searchCache != nil {
		if cached, found := l.searchCache.Get(query, l.appsHash); found {
			return cached
		}
	}

	var items []*LauncherItem
	if l.fuzzy && strings.TrimSpace(query) != "" {
		items = l.fuzzySearch(query)
	} else {
		items = l.substringSearch(query)
	}

	if l.maxResults > 0 && len(items) > l.maxResults {
		items = items[:l.maxResults]
	}

	if l.searchCache != nil {
		l.searchCache.Put(query, l.appsHash, items)
	}

	log.WithField("query", query).Debugf("app search returned %d items in %v", len(items), time.Since(start))
	return items
}

// substringSearch keeps snapshot order.
func (l *AppLauncher) substringSearch(query string) []*LauncherItem {
	matched := apps.Filter(l.apps, query)
	items := make([]*LauncherItem, 0, len(matched))
	for _, app := range matched {
		items = append(items, l.appToItem(app))
	}
	return items
}

func (l *AppLauncher) fuzzySearch(query string) []*LauncherItem {
	names := make([]string, len(l.apps))
	for i, app := range l.apps {
		names[i] = app.Name
	}

	matches := fuzzy.Find(query, names)

	filtered := make([]fuzzy.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score >= minFuzzyScore {
			filtered = append(filtered, m)
		}
	}

	// exact prefix matches first, then by score
	sort.SliceStable(filtered, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(filtered[i].Str), query)
		pj := strings.HasPrefix(strings.ToLower(filtered[j].Str), query)
		if pi != pj {
			return pi
		}
		return filtered[i].Score > filtered[j].Score
	})

	items := make([]*LauncherItem, 0, len(filtered))
	for _, m := range filtered {
		items = append(items, l.appToItem(l.apps[m.Index]))
	}
	return items
}

func (l *AppLauncher) appToItem(app apps.App) *LauncherItem {
	return &LauncherItem{
		ID:         app.File,
		Title:      app.Name,
		Icon:       app.Icon,
		ActionData: NewSpawnAction(ExecArgv(app.Exec)),
		Launcher:   l,
	}
}
