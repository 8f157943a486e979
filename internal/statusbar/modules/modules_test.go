package modules

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar"
)

type reply struct {
	out string
	err error
}

// fakeRunner answers by the first argv element.
func fakeRunner(replies map[string]reply) shell.Runner {
	return shell.FuncRunner(func(ctx context.Context, argv []string) ([]byte, error) {
		r, ok := replies[argv[0]]
		if !ok {
			return nil, exec.ErrNotFound
		}
		return []byte(r.out), r.err
	})
}

func exitError(t *testing.T, code int) error {
	t.Helper()
	err := exec.Command("sh", "-c", "exit "+string(rune('0'+code))).Run()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	return err
}

func TestBatteryModule(t *testing.T) {
	testCases := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{"discharging", "Battery 0: Discharging, 87%, 02:13:00 remaining\n", "87%", false},
		{"full", "Battery 0: Full, 100%\n", "100%", false},
		{"second battery ignored", "Battery 0: Charging, 40%, 01:00:00 until charged\nBattery 1: Unknown, 0%\n", "40%", false},
		{"no battery", "", "", true},
		{"unexpected", "No support for device type: power_supply\n", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewBatteryModule(fakeRunner(map[string]reply{"acpi": {out: tc.out}}), []string{"acpi", "-b"})
			got, err := m.Query(context.Background())
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBatteryModuleMissingUtility(t *testing.T) {
	m := NewBatteryModule(fakeRunner(nil), []string{"acpi", "-b"})
	_, err := m.Query(context.Background())
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestMemoryModule(t *testing.T) {
	out := `               total        used        free      shared  buff/cache   available
Mem:     17179869184  4294967296  8589934592   104857600  4294967296 12884901888
Swap:     2147483648           0  2147483648
`
	m := NewMemoryModule(fakeRunner(map[string]reply{"free": {out: out}}), []string{"free", "-b"})
	got, err := m.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.0/16.0 GiB", got)

	m = NewMemoryModule(fakeRunner(map[string]reply{"free": {out: "garbage"}}), []string{"free", "-b"})
	_, err = m.Query(context.Background())
	assert.Error(t, err)
}

func writeStat(t *testing.T, path, line string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(line+"\ncpu0 1 2 3 4 5 6 7 8 9 10\n"), 0644))
}

func TestCpuModuleDelta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stat")

	// total 1000, idle 900 (800 idle + 100 iowait)
	writeStat(t, path, "cpu  50 0 50 800 100 0 0 0 0 0")
	m := NewCpuModule(path, false)

	usage, err := m.Usage()
	require.NoError(t, err)
	assert.InDelta(t, 10.0, usage, 0.001)

	// +200 total, +50 idle since the previous sample
	writeStat(t, path, "cpu  150 0 100 850 100 0 0 0 0 0")
	usage, err = m.Usage()
	require.NoError(t, err)
	assert.InDelta(t, 75.0, usage, 0.001)

	got, err := m.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "21%", got, "unchanged counters fall back to the since-boot figure")
}

func TestCpuModuleSinceBoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stat")
	writeStat(t, path, "cpu  50 0 50 800 100 0 0 0 0 0")
	m := NewCpuModule(path, true)

	_, err := m.Usage()
	require.NoError(t, err)

	writeStat(t, path, "cpu  150 0 100 850 100 0 0 0 0 0")
	usage, err := m.Usage()
	require.NoError(t, err)
	assert.InDelta(t, 100*float64(1200-950)/1200, usage, 0.001)
}

func TestCpuModuleErrors(t *testing.T) {
	dir := t.TempDir()
	m := NewCpuModule(filepath.Join(dir, "missing"), false)
	_, err := m.Query(context.Background())
	assert.Error(t, err)

	path := filepath.Join(dir, "stat")
	require.NoError(t, os.WriteFile(path, []byte("intr 1 2 3\n"), 0644))
	m = NewCpuModule(path, false)
	_, err = m.Query(context.Background())
	assert.Error(t, err)
}

func TestUpdatesModule(t *testing.T) {
	out := "linux 6.9.1-1 -> 6.9.2-1\nfirefox 126.0-1 -> 126.0.1-1\nmesa 24.1.0-1 -> 24.1.1-1\n"

	m := NewUpdatesModule(fakeRunner(map[string]reply{"checkupdates": {out: out}}), []string{"checkupdates"}, 0)
	n, err := m.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	m = NewUpdatesModule(fakeRunner(map[string]reply{"checkupdates": {out: out}}), []string{"checkupdates"}, 1)
	got, err := m.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestUpdatesModuleNothingPending(t *testing.T) {
	m := NewUpdatesModule(fakeRunner(map[string]reply{"checkupdates": {err: exitError(t, 2)}}), []string{"checkupdates"}, 0)
	n, err := m.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	m = NewUpdatesModule(fakeRunner(map[string]reply{"checkupdates": {err: exitError(t, 1)}}), []string{"checkupdates"}, 0)
	_, err = m.Count(context.Background())
	assert.Error(t, err)
}

func TestBluetoothModule(t *testing.T) {
	connected := `Device AA:BB:CC:DD:EE:FF (public)
	Name: MyHeadphones
	Alias: MyHeadphones
	Paired: yes
	Connected: yes
`
	m := NewBluetoothModule(fakeRunner(map[string]reply{"bluetoothctl": {out: connected}}), []string{"bluetoothctl", "info"})
	got, err := m.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "MyHeadphones", got)

	m = NewBluetoothModule(fakeRunner(map[string]reply{"bluetoothctl": {out: "Missing device address argument\n", err: exitError(t, 1)}}), []string{"bluetoothctl", "info"})
	got, err = m.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Disconnected, got)

	m = NewBluetoothModule(fakeRunner(nil), []string{"bluetoothctl", "info"})
	_, err = m.Query(context.Background())
	assert.Error(t, err)
}

func TestWifiModule(t *testing.T) {
	cfg := config.Default()
	out := "no:Neighbour\nyes:Home\\:5G\nno:Cafe\n"

	m := NewWifiModule(fakeRunner(map[string]reply{"nmcli": {out: out}}), cfg.Connectivity.WifiList, cfg.Connectivity.WifiActiveMarkers)
	got, err := m.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Home:5G", got)

	m = NewWifiModule(fakeRunner(map[string]reply{"nmcli": {out: "sí:Casa\n"}}), cfg.Connectivity.WifiList, cfg.Connectivity.WifiActiveMarkers)
	got, err = m.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Casa", got)

	m = NewWifiModule(fakeRunner(map[string]reply{"nmcli": {out: "no:Neighbour\n"}}), cfg.Connectivity.WifiList, nil)
	got, err = m.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Disconnected, got)
}

func TestAudioModule(t *testing.T) {
	sinks := `Sink #0
	State: SUSPENDED
	Name: alsa_output.hdmi
	Description: HDMI Output
Sink #1
	State: RUNNING
	Name: alsa_output.analog-stereo
	Description: Built-in Audio Analog Stereo
`
	runner := shell.FuncRunner(func(ctx context.Context, argv []string) ([]byte, error) {
		if argv[1] == "get-default-sink" {
			return []byte("alsa_output.analog-stereo\n"), nil
		}
		return []byte(sinks), nil
	})

	m := NewAudioModule(runner, []string{"pactl", "get-default-sink"}, []string{"pactl", "list", "sinks"})
	got, err := m.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Built-in Audio Analog Stereo", got)

	m = NewAudioModule(fakeRunner(map[string]reply{"pactl": {err: exitError(t, 1)}}), []string{"pactl", "get-default-sink"}, []string{"pactl", "list", "sinks"})
	got, err = m.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Disconnected, got, "pactl failing without a sound server")

	m = NewAudioModule(fakeRunner(nil), []string{"pactl", "get-default-sink"}, []string{"pactl", "list", "sinks"})
	_, err = m.Query(context.Background())
	assert.Error(t, err)
}

func TestRegisterDefaults(t *testing.T) {
	registry := statusbar.NewModuleRegistry()
	require.NoError(t, RegisterDefaults(registry))
	assert.Equal(t, []string{"battery", "cpu", "memory", "updates", "bluetooth", "wifi", "audio"}, registry.Names())
	assert.Error(t, RegisterDefaults(registry), "duplicate registration")

	mods := registry.LoadModules(append([]string{"bogus"}, StatusModules...), config.Default(), fakeRunner(nil))
	require.Len(t, mods, 4)
	for i, m := range mods {
		assert.Equal(t, StatusModules[i], m.Name())
	}
}

func TestStatusPollerAllFailing(t *testing.T) {
	cfg := config.Default()
	cfg.Status.CPUStat = filepath.Join(t.TempDir(), "missing")

	poller, err := NewStatusPoller(cfg, fakeRunner(nil), nil)
	require.NoError(t, err)

	snap := poller.Tick(context.Background())
	for _, name := range StatusModules {
		assert.Equal(t, statusbar.Placeholder, snap.Get(name))
	}
	assert.Equal(t, StatusModules, snap.Order)
}

func TestConnectivityLookups(t *testing.T) {
	runner := fakeRunner(map[string]reply{
		"nmcli":        {out: "yes:HomeNet\n"},
		"checkupdates": {out: "a 1 -> 2\nb 3 -> 4\n"},
	})

	lookups, counter, err := NewConnectivityLookups(config.Default(), runner)
	require.NoError(t, err)
	require.Len(t, lookups, 3)
	for _, name := range ConnectivityModules {
		assert.Contains(t, lookups, name)
	}

	got, err := lookups["wifi"].Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HomeNet", got)

	n, err := counter.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
