package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "sys:", cfg.Prefixes.System)
	assert.Equal(t, "con:", cfg.Prefixes.Connectivity)
	assert.Equal(t, []string{"systemctl", "poweroff"}, cfg.Commands.System.Shutdown)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `
[prefixes]
system = "s/"

[commands.system]
shutdown = ["loginctl", "poweroff"]

[search]
fuzzy = true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "s/", cfg.Prefixes.System)
	assert.Equal(t, "con:", cfg.Prefixes.Connectivity)
	assert.Equal(t, []string{"loginctl", "poweroff"}, cfg.Commands.System.Shutdown)
	assert.Equal(t, []string{"systemctl", "reboot"}, cfg.Commands.System.Reboot)
	assert.True(t, cfg.Search.Fuzzy)
}

func TestLoadConfigDoesNotMutateDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `
[commands.system]
shutdown = ["halt"]
`)

	_, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"systemctl", "poweroff"}, DefaultConfig.Commands.System.Shutdown)
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "[prefixes\nsystem = ")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidatePrefixes(t *testing.T) {
	testCases := []struct {
		name    string
		sys     string
		con     string
		wantErr bool
	}{
		{"defaults", "sys:", "con:", false},
		{"empty system", "", "con:", true},
		{"empty connectivity", "sys:", "", true},
		{"identical", "x:", "x:", true},
		{"nested", "s", "sys:", true},
		{"case-insensitive overlap", "SYS:", "sys:", true},
		{"theme marker", "theme:", "con:", true},
		{"help marker", "sys:", "help:", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Prefixes.System = tc.sys
			cfg.Prefixes.Connectivity = tc.con
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMissingCommandIsFatal(t *testing.T) {
	cfg := Default()
	cfg.Commands.Connectivity.Audio = nil

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingCommand)
	assert.Contains(t, err.Error(), "commands.connectivity.audio")

	cfg = Default()
	cfg.Commands.System.Lock = []string{"  "}
	assert.ErrorIs(t, cfg.Validate(), ErrMissingCommand)
}

func TestValidateWindowAndStatusRanges(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 10
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Status.IntervalMs = 0
	assert.Error(t, cfg.Validate())

	cfg.Status.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", `SYS_COMMAND=power:
CON_COMMAND=net:
SYS_LOCK_CMD=swaylock -f -i "/home/me/My Pictures/lock.png"
`)

	for _, key := range []string{EnvSystemPrefix, EnvConnectivityPrefix, EnvLock} {
		key := key
		prev, had := os.LookupEnv(key)
		os.Unsetenv(key)
		t.Cleanup(func() {
			if had {
				os.Setenv(key, prev)
			} else {
				os.Unsetenv(key)
			}
		})
	}

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg, envFile))

	assert.Equal(t, "power:", cfg.Prefixes.System)
	assert.Equal(t, "net:", cfg.Prefixes.Connectivity)
	assert.Equal(t, []string{"swaylock", "-f", "-i", "/home/me/My Pictures/lock.png"}, cfg.Commands.System.Lock)
	assert.Equal(t, []string{"systemctl", "poweroff"}, cfg.Commands.System.Shutdown)
}

func TestApplyEnvProcessEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "CON_WIFI_CMD=from-file\n")
	t.Setenv(EnvWifi, "iwgtk --tray")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg, envFile))
	assert.Equal(t, []string{"iwgtk", "--tray"}, cfg.Commands.Connectivity.Wifi)
}

func TestApplyEnvMissingFileIsIgnored(t *testing.T) {
	cfg := Default()
	assert.NoError(t, ApplyEnv(cfg, filepath.Join(t.TempDir(), ".env")))
}

func TestApplyEnvEmptyCommandFailsValidation(t *testing.T) {
	t.Setenv(EnvReboot, "")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg, ""))
	assert.ErrorIs(t, cfg.Validate(), ErrMissingCommand)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Prefixes.System = "power:"

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "power:", loaded.Prefixes.System)
}
