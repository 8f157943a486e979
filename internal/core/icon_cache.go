package core

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chess10kp/lanzador/internal/config"
)

// IconCache keeps recently rendered pixbufs keyed by icon name and size.
type IconCache struct {
	cache    *lru.Cache[string, *gdk.Pixbuf]
	theme    *gtk.IconTheme
	fallback string
	mu       sync.Mutex
	hits     int64
	misses   int64
}

// NewIconCache creates a cache bound to the default icon theme.
func NewIconCache(cfg *config.Config) (*IconCache, error) {
	size := cfg.Window.IconCache
	if size <= 0 {
		size = 200
	}

	cache, err := lru.New[string, *gdk.Pixbuf](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon cache: %w", err)
	}

	iconTheme, err := gtk.IconThemeGetDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to get default icon theme: %w", err)
	}

	fallback := cfg.Apps.FallbackIcon
	if fallback == "" {
		fallback = "application-x-executable"
	}

	return &IconCache{
		cache:    cache,
		theme:    iconTheme,
		fallback: fallback,
	}, nil
}

// GetIcon returns the pixbuf for name, which may be a theme icon name or an
// absolute file path. Unknown icons resolve to the fallback.
func (ic *IconCache) GetIcon(name string, size int) (*gdk.Pixbuf, error) {
	if name == "" {
		name = ic.fallback
	}
	key := fmt.Sprintf("%s@%d", name, size)

	ic.mu.Lock()
	defer ic.mu.Unlock()

	if pixbuf, ok := ic.cache.Get(key); ok {
		ic.hits++
		return pixbuf, nil
	}
	ic.misses++

	pixbuf, err := ic.load(name, size)
	if err != nil && name != ic.fallback {
		log.WithError(err).WithField("icon", name).Debug("icon not found, using fallback")
		pixbuf, err = ic.load(ic.fallback, size)
	}
	if err != nil {
		return nil, err
	}

	ic.cache.Add(key, pixbuf)
	return pixbuf, nil
}

func (ic *IconCache) load(name string, size int) (*gdk.Pixbuf, error) {
	if filepath.IsAbs(name) {
		return gdk.PixbufNewFromFileAtSize(name, size, size)
	}
	if !ic.theme.HasIcon(name) {
		return nil, fmt.Errorf("icon %q not found in theme", name)
	}
	return ic.theme.LoadIcon(name, size, gtk.ICON_LOOKUP_FORCE_SIZE)
}

// Stats returns hit and miss counts.
func (ic *IconCache) Stats() (hits, misses int64) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.hits, ic.misses
}
