// Package osproc is the process-listing collaborator the spec treats as
// external to the core (§1): it enumerates live processes for the `ps`
// shell command and exposes a liveness probe used before attach.
package osproc

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Process describes one live process as reported by the host OS.
type Process struct {
	Pid  int
	Name string
}

// List enumerates live processes via the macOS `ps` utility.
func List() ([]Process, error) {
	out, err := exec.Command("ps", "-axo", "pid=,comm=").Output()
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	var procs []Process
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		pidStr, name, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(pidStr))
		if err != nil {
			continue
		}

		procs = append(procs, Process{Pid: pid, Name: strings.TrimSpace(name)})
	}

	return procs, nil
}

// Alive reports whether pid currently refers to a live process, via a
// zero-signal probe. A process this one lacks permission to signal (EPERM)
// still counts as alive; only a missing process (ESRCH) reads as not alive.
func Alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
