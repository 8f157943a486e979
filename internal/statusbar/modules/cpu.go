package modules

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/chess10kp/lanzador/internal/config"
	"github.com/chess10kp/lanzador/internal/shell"
	"github.com/chess10kp/lanzador/internal/statusbar"
)

type cpuSample struct {
	total uint64
	idle  uint64
}

// CpuModule reports CPU utilization from the aggregate line of /proc/stat.
// The first query covers the time since boot; later queries cover the
// interval since the previous query unless sinceBoot is set.
type CpuModule struct {
	*statusbar.BaseModule
	statPath  string
	sinceBoot bool

	mu   sync.Mutex
	prev *cpuSample
}

// NewCpuModule creates a new CPU module
func NewCpuModule(statPath string, sinceBoot bool) *CpuModule {
	return &CpuModule{
		BaseModule: statusbar.NewBaseModule("cpu"),
		statPath:   statPath,
		sinceBoot:  sinceBoot,
	}
}

// Query returns the utilization formatted as "12%".
func (m *CpuModule) Query(ctx context.Context) (string, error) {
	usage, err := m.Usage()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.0f%%", usage), nil
}

// Usage returns the utilization percentage.
func (m *CpuModule) Usage() (float64, error) {
	sample, err := readCpuSample(m.statPath)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	base := cpuSample{}
	if !m.sinceBoot && m.prev != nil && sample.total > m.prev.total {
		base = *m.prev
	}
	m.prev = &sample

	total := sample.total - base.total
	idle := sample.idle - base.idle
	if total == 0 {
		return 0, fmt.Errorf("cpu counters did not advance")
	}
	return 100 * float64(total-idle) / float64(total), nil
}

func readCpuSample(path string) (cpuSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return cpuSample{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return cpuSample{}, err
		}
		return cpuSample{}, fmt.Errorf("%s is empty", path)
	}
	return parseCpuLine(scanner.Text())
}

// parseCpuLine parses "cpu  user nice system idle iowait irq softirq ...".
func parseCpuLine(line string) (cpuSample, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "cpu" {
		return cpuSample{}, fmt.Errorf("unexpected cpu line: %q", line)
	}

	var sample cpuSample
	for i, field := range fields[1:] {
		v, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return cpuSample{}, fmt.Errorf("invalid cpu counter %q: %w", field, err)
		}
		sample.total += v
		// idle and iowait
		if i == 3 || i == 4 {
			sample.idle += v
		}
	}
	return sample, nil
}

// CpuModuleFactory is a factory for creating CpuModule instances
type CpuModuleFactory struct{}

func (f *CpuModuleFactory) CreateModule(cfg *config.Config, _ shell.Runner) (statusbar.Module, error) {
	return NewCpuModule(cfg.Status.CPUStat, cfg.Status.CPUSinceBoot), nil
}

func (f *CpuModuleFactory) ModuleName() string {
	return "cpu"
}
