package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/shlex"
	"github.com/joho/godotenv"
)

// Environment keys understood by ApplyEnv.
const (
	EnvSystemPrefix       = "SYS_COMMAND"
	EnvConnectivityPrefix = "CON_COMMAND"
	EnvShutdown           = "SYS_SHUTDOWN_CMD"
	EnvReboot             = "SYS_REBOOT_CMD"
	EnvLogout             = "SYS_LOGOUT_CMD"
	EnvLock               = "SYS_LOCK_CMD"
	EnvBluetooth          = "CON_BLUETOOTH_CMD"
	EnvWifi               = "CON_WIFI_CMD"
	EnvAudio              = "CON_AUDIO_CMD"
	EnvUpdate             = "CON_UPDATE_CMD"
)

// ApplyEnv loads envFile (if it exists) into the process environment without
// overriding variables that are already set, then copies any of the known
// keys into cfg. Command lines are tokenized once here, honouring quotes.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	if v, ok := os.LookupEnv(EnvSystemPrefix); ok {
		cfg.Prefixes.System = v
	}
	if v, ok := os.LookupEnv(EnvConnectivityPrefix); ok {
		cfg.Prefixes.Connectivity = v
	}

	argvSlots := map[string]*[]string{
		EnvShutdown:  &cfg.Commands.System.Shutdown,
		EnvReboot:    &cfg.Commands.System.Reboot,
		EnvLogout:    &cfg.Commands.System.Logout,
		EnvLock:      &cfg.Commands.System.Lock,
		EnvBluetooth: &cfg.Commands.Connectivity.Bluetooth,
		EnvWifi:      &cfg.Commands.Connectivity.Wifi,
		EnvAudio:     &cfg.Commands.Connectivity.Audio,
		EnvUpdate:    &cfg.Commands.Connectivity.Update,
	}

	for key, slot := range argvSlots {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		argv, err := SplitCommand(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*slot = argv
	}

	return nil
}

// SplitCommand tokenizes a shell-style command line into argv.
func SplitCommand(line string) ([]string, error) {
	argv, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("failed to split command %q: %w", line, err)
	}
	return argv, nil
}
