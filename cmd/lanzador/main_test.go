package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.toml")
	require.NoError(t, os.WriteFile(good, []byte("[search]\nfuzzy = true\n"), 0644))

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "Config is valid")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[prefixes]\nsystem = \"c\"\nconnectivity = \"con:\"\n"), 0644))

	_, err = execute(t, "validate", bad)
	assert.ErrorContains(t, err, "overlap")

	missingCommand := filepath.Join(dir, "missing.toml")
	require.NoError(t, os.WriteFile(missingCommand, []byte("[commands.system]\nshutdown = []\n"), 0644))

	_, err = execute(t, "--config", missingCommand, "validate")
	assert.ErrorContains(t, err, "commands.system.shutdown")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lanzador", "config.toml")

	out, err := execute(t, "--config", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default config")

	out, err = execute(t, "--config", path, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Config is valid")

	_, err = execute(t, "--config", path, "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "--config", path, "init", "--force")
	assert.NoError(t, err)
}

func TestAppsCommand(t *testing.T) {
	dir := t.TempDir()
	appDir := filepath.Join(dir, "applications")
	require.NoError(t, os.MkdirAll(appDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "firefox.desktop"),
		[]byte("[Desktop Entry]\nName=Firefox\nExec=firefox %u\n"), 0644))

	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"[apps]\nsystem_dir = \""+appDir+"\"\nuser_dir = \""+filepath.Join(dir, "none")+"\"\n"), 0644))

	out, err := execute(t, "--config", cfgPath, "apps")
	require.NoError(t, err)
	assert.Contains(t, out, "Firefox")
	assert.Contains(t, out, "firefox %u")

	out, err = execute(t, "--config", cfgPath, "apps", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Firefox"`)
}

func TestSingleInstancePidFile(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "run", "lanzador.pid")

	require.NoError(t, ensureSingleInstance(pidFile))
	data, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	// A stale pid that names no running process is replaced.
	require.NoError(t, os.WriteFile(pidFile, []byte("999999999"), 0644))
	require.NoError(t, ensureSingleInstance(pidFile))
	data, err = os.ReadFile(pidFile)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	cleanup(pidFile)
	_, err = os.Stat(pidFile)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupKeepsForeignPidFile(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "lanzador.pid")
	require.NoError(t, os.WriteFile(pidFile, []byte("1"), 0644))

	cleanup(pidFile)
	_, err := os.Stat(pidFile)
	assert.NoError(t, err)
}
