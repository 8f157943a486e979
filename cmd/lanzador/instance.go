package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ensureSingleInstance stops a previous instance recorded in pidFile and
// records the current process in its place.
func ensureSingleInstance(pidFile string) error {
	if data, err := os.ReadFile(pidFile); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && pid != os.Getpid() {
			stopProcess(pid)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		return fmt.Errorf("failed to create pid directory: %w", err)
	}
	return os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func stopProcess(pid int) {
	process, err := os.FindProcess(pid)
	if err != nil {
		return
	}
	// Signal 0 only checks that the process is alive.
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return
	}
	log.Infof("stopping previous instance %d", pid)
	if err := process.Signal(syscall.SIGTERM); err != nil {
		log.WithError(err).Warn("failed to stop previous instance")
	}
}

// cleanup removes pidFile if it still names this process.
func cleanup(pidFile string) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return
	}
	if strings.TrimSpace(string(data)) == strconv.Itoa(os.Getpid()) {
		os.Remove(pidFile)
	}
}
