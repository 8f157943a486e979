package launcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/chess10kp/lanzador/internal/config"
)

// Unknown is the suffix shown when a lookup could not reach its utility.
const Unknown = "Unknown"

// StatusLookup is a one-shot query for a connectivity suffix.
type StatusLookup interface {
	Query(ctx context.Context) (string, error)
}

// UpdateCounter reports how many package updates are pending.
type UpdateCounter interface {
	Count(ctx context.Context) (int, error)
}

// StatusBoard holds the latest connectivity suffix per command ID and the
// pending update count.
type StatusBoard struct {
	mu       sync.RWMutex
	suffixes map[string]string
	pending  int
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{suffixes: make(map[string]string)}
}

func (b *StatusBoard) Set(id, suffix string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.suffixes[id] = suffix
}

func (b *StatusBoard) Get(id string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.suffixes[id]
	return s, ok
}

// SetPending records the update count. Failed lookups record zero.
func (b *StatusBoard) SetPending(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = n
}

func (b *StatusBoard) Pending() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pending
}

// ConnectivityLauncher lists the connectivity commands with live status
// suffixes. The Update entry only appears while updates are pending.
type ConnectivityLauncher struct {
	PrefixMatcher
	commands []Command
	lookups  map[string]StatusLookup
	counter  UpdateCounter
	board    *StatusBoard
}

// NewConnectivityLauncher creates the launcher. lookups is keyed by command
// ID; commands without a lookup are shown without a suffix.
func NewConnectivityLauncher(cfg *config.Config, lookups map[string]StatusLookup, counter UpdateCounter) *ConnectivityLauncher {
	return &ConnectivityLauncher{
		PrefixMatcher: PrefixMatcher(cfg.Prefixes.Connectivity),
		commands:      ConnectivityCommands(cfg),
		lookups:       lookups,
		counter:       counter,
		board:         NewStatusBoard(),
	}
}

func (l *ConnectivityLauncher) Name() string           { return "connectivity" }
func (l *ConnectivityLauncher) Mode() Mode             { return ModeConnectivityCommands }
func (l *ConnectivityLauncher) ClosesOnActivate() bool { return false }

// OnEnter runs every lookup and the update count concurrently and records
// the results on the board.
func (l *ConnectivityLauncher) OnEnter(ctx context.Context) {
	var wg sync.WaitGroup

	for id, lookup := range l.lookups {
		wg.Add(1)
		go func(id string, lookup StatusLookup) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("recovered from panic in %s lookup: %v", id, r)
					l.board.Set(id, Unknown)
				}
			}()

			suffix, err := lookup.Query(ctx)
			if err != nil || suffix == "" {
				log.WithError(err).Debugf("%s lookup failed", id)
				suffix = Unknown
			}
			l.board.Set(id, suffix)
		}(id, lookup)
	}

	if l.counter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("recovered from panic in update count: %v", r)
					l.board.SetPending(0)
				}
			}()

			n, err := l.counter.Count(ctx)
			if err != nil {
				log.WithError(err).Debug("update count failed")
				n = 0
			}
			l.board.SetPending(n)
		}()
	}

	wg.Wait()
}

func (l *ConnectivityLauncher) Populate(ctx context.Context, query string) []*LauncherItem {
	items := make([]*LauncherItem, 0, len(l.commands))
	for _, c := range l.commands {
		if c.ID == CommandUpdate {
			n := l.board.Pending()
			if n <= 0 {
				continue
			}
			items = append(items, c.item(l, fmt.Sprintf("%s (%d pending)", c.Label, n)))
			continue
		}

		title := c.Label
		if suffix, ok := l.board.Get(c.ID); ok {
			title = fmt.Sprintf("%s (%s)", c.Label, suffix)
		}
		items = append(items, c.item(l, title))
	}
	return items
}
