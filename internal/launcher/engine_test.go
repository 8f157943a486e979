package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chess10kp/lanzador/internal/apps"
	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/theme"
)

type recordingSpawner struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (s *recordingSpawner) Spawn(argv []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, argv)
	return s.err
}

func (s *recordingSpawner) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.calls...)
}

type recordingUI struct {
	sheets []string
	css    []string
	helps  int
}

func (u *recordingUI) ApplyStylesheet(name, css string) error {
	u.sheets = append(u.sheets, name)
	u.css = append(u.css, css)
	return nil
}

func (u *recordingUI) ShowHelp() { u.helps++ }

type lookupFunc func(ctx context.Context) (string, error)

func (f lookupFunc) Query(ctx context.Context) (string, error) { return f(ctx) }

type fixedCounter struct {
	n     int
	err   error
	calls int32
}

func (c *fixedCounter) Count(ctx context.Context) (int, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.n, c.err
}

var testApps = []apps.App{
	{Name: "Firefox", Exec: "firefox %u", Icon: "firefox", File: "/usr/share/applications/firefox.desktop"},
	{Name: "Files", Exec: "nautilus --new-window", Icon: "org.gnome.Nautilus", File: "/usr/share/applications/nautilus.desktop"},
	{Name: "Terminal", Exec: "foot", Icon: "foot", File: "/usr/share/applications/foot.desktop"},
}

type fixture struct {
	cfg     *config.Config
	engine  *Engine
	spawner *recordingSpawner
	ui      *recordingUI
	counter *fixedCounter
	themes  *theme.Manager
}

func newFixture(t *testing.T, pending int) *fixture {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Theme.Dir = filepath.Join(root, "themes")
	cfg.Theme.StateFile = filepath.Join(root, "theme.toml")
	require.NoError(t, os.MkdirAll(cfg.Theme.Dir, 0755))

	f := &fixture{
		cfg:     cfg,
		spawner: &recordingSpawner{},
		ui:      &recordingUI{},
		counter: &fixedCounter{n: pending},
		themes:  theme.NewManager(cfg.Theme),
	}

	engine, err := NewEngine(Options{
		Config:  cfg,
		Apps:    testApps,
		Themes:  f.themes,
		Spawner: f.spawner,
		UI:      f.ui,
		Lookups: map[string]StatusLookup{
			CommandBluetooth: lookupFunc(func(ctx context.Context) (string, error) { return "MyHeadphones", nil }),
			CommandWifi:      lookupFunc(func(ctx context.Context) (string, error) { return "Disconnected", nil }),
			CommandAudio:     lookupFunc(func(ctx context.Context) (string, error) { return "", errors.New("pactl: not found") }),
		},
		Updates: f.counter,
	})
	require.NoError(t, err)
	f.engine = engine
	return f
}

func titles(v *View) []string {
	out := make([]string, 0, len(v.Items))
	for _, item := range v.Items {
		out = append(out, item.Title)
	}
	return out
}

func TestFilterApplicationsCaseInsensitive(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	lower := f.engine.Filter(ctx, "fire")
	upper := f.engine.Filter(ctx, "FIRE")
	assert.Equal(t, []string{"Firefox"}, titles(lower))
	assert.Equal(t, titles(lower), titles(upper))

	assert.Empty(t, f.engine.Filter(ctx, "xyz123").Items)
	assert.Equal(t, []string{"Firefox", "Files", "Terminal"}, titles(f.engine.Filter(ctx, "")))
}

func TestFilterSystemCommands(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	for _, text := range []string{"sys:", "sys:whatever", "SYS:"} {
		v := f.engine.Filter(ctx, text)
		assert.Equal(t, ModeSystemCommands, v.Mode, text)
		assert.Equal(t, []string{"Power Off", "Restart", "Log Out", "Lock Session"}, titles(v), text)
	}
}

func TestSystemAndConnectivityNeverOverlap(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	sys := f.engine.Filter(ctx, "sys:")
	con := f.engine.Filter(ctx, "con:")
	for _, s := range sys.Items {
		for _, c := range con.Items {
			assert.NotEqual(t, s.ID, c.ID)
		}
	}
}

func TestConnectivityUpdateEntry(t *testing.T) {
	ctx := context.Background()

	none := newFixture(t, 0).engine.Filter(ctx, "con:")
	assert.Len(t, none.Items, 3)
	for _, item := range none.Items {
		assert.NotEqual(t, CommandUpdate, item.ID)
	}

	some := newFixture(t, 3).engine.Filter(ctx, "con:")
	require.Len(t, some.Items, 4)
	assert.Equal(t, CommandUpdate, some.Items[3].ID)
	assert.Contains(t, some.Items[3].Title, "3")
	assert.Equal(t, "Update (3 pending)", some.Items[3].Title)
}

func TestConnectivityUpdateCountFailureOmitsEntry(t *testing.T) {
	f := newFixture(t, 5)
	f.counter.err = errors.New("checkupdates: not found")

	v := f.engine.Filter(context.Background(), "con:")
	assert.Len(t, v.Items, 3)
}

func TestConnectivityStatusSuffixes(t *testing.T) {
	f := newFixture(t, 0)
	v := f.engine.Filter(context.Background(), "con:")

	assert.Equal(t, []string{
		"Bluetooth (MyHeadphones)",
		"Wi-Fi (Disconnected)",
		"Audio (Unknown)",
	}, titles(v))
}

func TestConnectivityLookupsRunOnModeEntry(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	v := f.engine.Filter(ctx, "con:")
	assert.True(t, v.Entered)
	f.engine.Filter(ctx, "con:b")
	f.engine.Filter(ctx, "con:bl")
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.counter.calls))

	f.engine.Filter(ctx, "")
	v = f.engine.Filter(ctx, "con:")
	assert.True(t, v.Entered)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.counter.calls))
}

func TestEnterWithSingleEntry(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	v := f.engine.Filter(ctx, "fire")
	require.Len(t, v.Items, 1)

	viaEnter, err := f.engine.Enter(ctx, "fire")
	require.NoError(t, err)

	viaActivate, err := f.engine.Activate(ctx, v.Items[0])
	require.NoError(t, err)

	assert.Equal(t, viaActivate, viaEnter)
	assert.Equal(t, Outcome{Close: true, SetText: true, Text: "Firefox"}, viaEnter)
	assert.Equal(t, [][]string{{"firefox"}, {"firefox"}}, f.spawner.Calls())
}

func TestEnterIsNoOpWithoutSingleEntry(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.engine.EnterView(ctx, nil)
	assert.ErrorIs(t, err, ErrNoSingleMatch)

	for _, text := range []string{"", "xyz123", "fi", "sys:"} {
		_, err = f.engine.Enter(ctx, text)
		assert.ErrorIs(t, err, ErrNoSingleMatch, text)
	}

	assert.Empty(t, f.spawner.Calls())
}

func TestActivateSystemCommandKeepsWindowOpen(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	v := f.engine.Filter(ctx, "sys:")
	out, err := f.engine.Activate(ctx, v.Items[3])
	require.NoError(t, err)

	assert.Equal(t, Outcome{}, out)
	assert.Equal(t, [][]string{{"swaylock", "-f", "-c", "000000"}}, f.spawner.Calls())
}

func TestActivateSpawnFailure(t *testing.T) {
	f := newFixture(t, 0)
	f.spawner.err = errors.New("exec: not found")
	ctx := context.Background()

	v := f.engine.Filter(ctx, "term")
	_, err := f.engine.Activate(ctx, v.Items[0])
	assert.Error(t, err)

	_, err = f.engine.Activate(ctx, nil)
	assert.Error(t, err)
}

func TestHelpMode(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	v := f.engine.Filter(ctx, "help:")
	assert.Equal(t, ModeHelp, v.Mode)
	assert.True(t, v.ShowHelp())
	assert.Empty(t, v.Items)

	require.NoError(t, f.engine.Help(ctx))
	assert.Equal(t, 1, f.ui.helps)

	sections := f.engine.HelpSections()
	require.NotEmpty(t, sections)
	assert.Contains(t, sections[1].Title, "sys:")
	assert.Equal(t, []string{"Power Off", "Restart", "Log Out", "Lock Session"}, sections[1].Lines)
}

func writeThemeFile(t *testing.T, f *fixture, name, css string) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.themes.Path(name), []byte(css), 0644))
}

func TestThemeSelection(t *testing.T) {
	f := newFixture(t, 0)
	writeThemeFile(t, f, "dark", "window { background: #000; }")
	writeThemeFile(t, f, "light", "window { background: #fff; }")
	ctx := context.Background()

	v := f.engine.Filter(ctx, "theme:")
	assert.Equal(t, ModeThemeSelection, v.Mode)
	assert.Equal(t, []string{"dark", "light"}, titles(v))

	v = f.engine.Filter(ctx, "theme:DA")
	require.Equal(t, []string{"dark"}, titles(v))

	out, err := f.engine.Enter(ctx, "theme:DA")
	require.NoError(t, err)
	assert.False(t, out.Close)
	assert.Equal(t, []string{"dark"}, f.ui.sheets)
	assert.Contains(t, f.ui.css[0], "#000")
	assert.Equal(t, "dark", f.themes.Saved())
	assert.Equal(t, "dark", f.engine.ActiveTheme())
}

func TestThemeRestoredOnStartup(t *testing.T) {
	f := newFixture(t, 0)
	writeThemeFile(t, f, "dark", "window { background: #000; }")
	require.NoError(t, f.engine.ApplyTheme("dark"))

	ui := &recordingUI{}
	engine, err := NewEngine(Options{
		Config:  f.cfg,
		Themes:  theme.NewManager(f.cfg.Theme),
		Spawner: &recordingSpawner{},
		UI:      ui,
	})
	require.NoError(t, err)

	name, err := engine.RestoreTheme()
	require.NoError(t, err)
	assert.Equal(t, "dark", name)
	assert.Equal(t, []string{"dark"}, ui.sheets)
}

func TestMissingThemeIsNoOp(t *testing.T) {
	f := newFixture(t, 0)

	require.NoError(t, f.engine.ApplyTheme("ghost"))
	assert.Empty(t, f.ui.sheets)
	assert.Equal(t, "default", f.themes.Saved())

	name, err := f.engine.RestoreTheme()
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestReloadThemeOnlyActive(t *testing.T) {
	f := newFixture(t, 0)
	writeThemeFile(t, f, "dark", "a")
	writeThemeFile(t, f, "light", "b")
	require.NoError(t, f.engine.ApplyTheme("dark"))

	require.NoError(t, f.engine.ReloadTheme("light"))
	assert.Equal(t, []string{"dark"}, f.ui.sheets)

	writeThemeFile(t, f, "dark", "c")
	require.NoError(t, f.engine.ReloadTheme("dark"))
	assert.Equal(t, []string{"dark", "dark"}, f.ui.sheets)
	assert.Equal(t, "c", f.ui.css[1])
}

func TestDispatchReplaysParsedAction(t *testing.T) {
	f := newFixture(t, 0)

	data, err := NewSpawnAction([]string{"pavucontrol"}).ToJSON()
	require.NoError(t, err)
	action, err := ParseActionData(data)
	require.NoError(t, err)

	require.NoError(t, f.engine.Dispatch(context.Background(), action))
	assert.Equal(t, [][]string{{"pavucontrol"}}, f.spawner.Calls())
}

// gatedCounter blocks until release is closed and reports each call on
// started.
type gatedCounter struct {
	n       int
	started chan struct{}
	release chan struct{}
}

func newGatedCounter(n int) *gatedCounter {
	return &gatedCounter{n: n, started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (c *gatedCounter) Count(ctx context.Context) (int, error) {
	select {
	case c.started <- struct{}{}:
	default:
	}
	select {
	case <-c.release:
		return c.n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

type panickingCounter struct{}

func (panickingCounter) Count(ctx context.Context) (int, error) {
	panic("counter exploded")
}

func TestEnterWaitsForConnectivityEntry(t *testing.T) {
	counter := newGatedCounter(3)
	spawner := &recordingSpawner{}
	engine, err := NewEngine(Options{
		Config:  config.Default(),
		Apps:    []apps.App{{Name: "Console", Exec: "kgx", File: "/usr/share/applications/org.gnome.Console.desktop"}},
		Spawner: spawner,
		Updates: counter,
	})
	require.NoError(t, err)
	ctx := context.Background()

	require.Equal(t, []string{"Console"}, titles(engine.Filter(ctx, "con")))

	filtered := make(chan *View, 1)
	go func() { filtered <- engine.Filter(ctx, "con:") }()
	<-counter.started

	entered := make(chan error, 1)
	go func() {
		_, err := engine.Enter(ctx, "con:")
		entered <- err
	}()

	select {
	case err := <-entered:
		t.Fatalf("Enter returned before the lookups finished: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(counter.release)
	assert.ErrorIs(t, <-entered, ErrNoSingleMatch)
	assert.Empty(t, spawner.Calls(), "the application list for the old text is never used")
	assert.Equal(t, []string{"Bluetooth", "Wi-Fi", "Audio", "Update (3 pending)"}, titles(<-filtered))
}

func TestKeystrokeDuringConnectivityEntryKeepsStatus(t *testing.T) {
	counter := newGatedCounter(3)
	engine, err := NewEngine(Options{
		Config: config.Default(),
		Apps:   testApps,
		Lookups: map[string]StatusLookup{
			CommandBluetooth: lookupFunc(func(ctx context.Context) (string, error) {
				<-counter.release
				return "MyHeadphones", nil
			}),
		},
		Updates: counter,
	})
	require.NoError(t, err)
	ctx := context.Background()

	first := make(chan *View, 1)
	go func() { first <- engine.Filter(ctx, "con:") }()
	<-counter.started

	latest := make(chan *View, 1)
	go func() { latest <- engine.Filter(ctx, "con:b") }()

	time.Sleep(20 * time.Millisecond)
	close(counter.release)

	want := []string{"Bluetooth (MyHeadphones)", "Wi-Fi", "Audio", "Update (3 pending)"}
	v := <-latest
	assert.False(t, v.Entered)
	assert.Equal(t, want, titles(v))
	assert.True(t, (<-first).Entered)

	require.NotNil(t, engine.View())
	assert.Equal(t, "con:b", engine.View().Text)
	assert.Equal(t, want, titles(engine.View()))
}

func TestEnterResolvesUnfilteredText(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	f.engine.Filter(ctx, "")
	out, err := f.engine.Enter(ctx, "term")
	require.NoError(t, err)
	assert.Equal(t, "Terminal", out.Text)
	assert.Equal(t, [][]string{{"foot"}}, f.spawner.Calls())
	assert.Equal(t, "term", f.engine.View().Text)
}

func TestPanickingUpdateCounterOmitsUpdateEntry(t *testing.T) {
	engine, err := NewEngine(Options{
		Config:  config.Default(),
		Updates: panickingCounter{},
	})
	require.NoError(t, err)

	v := engine.Filter(context.Background(), "con:")
	assert.Equal(t, []string{"Bluetooth", "Wi-Fi", "Audio"}, titles(v))
}
