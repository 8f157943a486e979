package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	sway "github.com/joshuarubin/go-sway"

	"github.com/chess10kp/lanzador/internal/shell"
)

// Spawner starts a program without waiting for it.
type Spawner interface {
	Spawn(argv []string) error
}

// SpawnerFunc adapts a function to Spawner.
type SpawnerFunc func(argv []string) error

func (f SpawnerFunc) Spawn(argv []string) error { return f(argv) }

// ExecSpawner starts programs in their own session. `swaymsg <command>` argv
// are sent over the sway IPC socket when one is reachable.
type ExecSpawner struct {
	IPCTimeout time.Duration
}

func NewExecSpawner() *ExecSpawner {
	return &ExecSpawner{IPCTimeout: 2 * time.Second}
}

func (s *ExecSpawner) Spawn(argv []string) error {
	if len(argv) == 0 || argv[0] == "" {
		return shell.ErrEmptyCommand
	}

	if command, ok := swayCommand(argv); ok {
		err := s.runSway(command)
		if err == nil {
			return nil
		}
		log.WithError(err).Debug("sway IPC unavailable, falling back to swaymsg")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
	cmd.Env = shell.CleanEnv()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	// reap the child so it does not linger as a zombie
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func (s *ExecSpawner) runSway(command string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.IPCTimeout)
	defer cancel()

	client, err := sway.New(ctx)
	if err != nil {
		return err
	}

	replies, err := client.RunCommand(ctx, command)
	if err != nil {
		return err
	}
	for _, r := range replies {
		if !r.Success {
			return fmt.Errorf("sway rejected %q: %s", command, r.Error)
		}
	}
	return nil
}

// swayCommand returns the IPC command for `swaymsg <command...>` argv.
// Invocations with swaymsg flags are left to the binary.
func swayCommand(argv []string) (string, bool) {
	if len(argv) < 2 || argv[0] != "swaymsg" {
		return "", false
	}
	for _, a := range argv[1:] {
		if strings.HasPrefix(a, "-") {
			return "", false
		}
	}
	return strings.Join(argv[1:], " "), true
}

// fieldCodes are the desktop entry Exec placeholders a launcher without
// file arguments drops.
var fieldCodes = []string{"%f", "%F", "%u", "%U", "%d", "%D", "%n", "%N", "%i", "%c", "%k", "%v", "%m"}

// ExecArgv splits a descriptor Exec line on whitespace and removes field
// codes. "%%" becomes a literal percent sign.
func ExecArgv(execLine string) []string {
	var argv []string
	for _, tok := range strings.Fields(execLine) {
		tok = strings.ReplaceAll(tok, "%%", "\x00")
		for _, code := range fieldCodes {
			tok = strings.ReplaceAll(tok, code, "")
		}
		tok = strings.ReplaceAll(tok, "\x00", "%")
		if tok != "" {
			argv = append(argv, tok)
		}
	}
	return argv
}
