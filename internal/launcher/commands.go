package launcher

import (
	"context"

	"github.com/chess10kp/lanzador/internal/config"
)

// Command IDs. Status suffixes are keyed by these.
const (
	CommandShutdown  = "shutdown"
	CommandReboot    = "reboot"
	CommandLogout    = "logout"
	CommandLock      = "lock"
	CommandBluetooth = "bluetooth"
	CommandWifi      = "wifi"
	CommandAudio     = "audio"
	CommandUpdate    = "update"
)

// Command is one fixed shortcut bound to an argv.
type Command struct {
	ID     string
	Label  string
	Icon   string
	Action ActionData
}

func (c Command) item(l Launcher, title string) *LauncherItem {
	return &LauncherItem{
		ID:         c.ID,
		Title:      title,
		Icon:       c.Icon,
		ActionData: c.Action,
		Launcher:   l,
	}
}

// SystemCommands returns the four session commands in display order.
func SystemCommands(cfg *config.Config) []Command {
	c := cfg.Commands.System
	return []Command{
		{ID: CommandShutdown, Label: "Power Off", Icon: "system-shutdown", Action: NewSpawnAction(c.Shutdown)},
		{ID: CommandReboot, Label: "Restart", Icon: "system-reboot", Action: NewSpawnAction(c.Reboot)},
		{ID: CommandLogout, Label: "Log Out", Icon: "system-log-out", Action: NewSpawnAction(c.Logout)},
		{ID: CommandLock, Label: "Lock Session", Icon: "system-lock-screen", Action: NewSpawnAction(c.Lock)},
	}
}

// ConnectivityCommands returns the four settings commands in display order.
func ConnectivityCommands(cfg *config.Config) []Command {
	c := cfg.Commands.Connectivity
	return []Command{
		{ID: CommandBluetooth, Label: "Bluetooth", Icon: "preferences-system-bluetooth", Action: NewSpawnAction(c.Bluetooth)},
		{ID: CommandWifi, Label: "Wi-Fi", Icon: "network-wireless", Action: NewSpawnAction(c.Wifi)},
		{ID: CommandAudio, Label: "Audio", Icon: "audio-card", Action: NewSpawnAction(c.Audio)},
		{ID: CommandUpdate, Label: "Update", Icon: "system-software-update", Action: NewSpawnAction(c.Update)},
	}
}

// SystemLauncher lists the system commands whenever the system prefix leads
// the text, ignoring whatever follows it.
type SystemLauncher struct {
	PrefixMatcher
	commands []Command
}

func NewSystemLauncher(cfg *config.Config) *SystemLauncher {
	return &SystemLauncher{
		PrefixMatcher: PrefixMatcher(cfg.Prefixes.System),
		commands:      SystemCommands(cfg),
	}
}

func (l *SystemLauncher) Name() string           { return "system" }
func (l *SystemLauncher) Mode() Mode             { return ModeSystemCommands }
func (l *SystemLauncher) ClosesOnActivate() bool { return false }

func (l *SystemLauncher) Populate(ctx context.Context, query string) []*LauncherItem {
	items := make([]*LauncherItem, 0, len(l.commands))
	for _, c := range l.commands {
		items = append(items, c.item(l, c.Label))
	}
	return items
}
