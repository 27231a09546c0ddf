//go:build darwin

package monitor

import (
	"os/exec"
	"sync"
	"syscall"
)

// spawnLimitMu mirrors the Linux pre-exec rlimit window (rlimit_linux.go):
// RLIMIT_CPU/RLIMIT_AS are process-wide, so only one spawn at a time may
// hold the parent's limits adjusted between Setrlimit and cmd.Start.
var spawnLimitMu sync.Mutex

// withRlimitScope sets RLIMIT_CPU and RLIMIT_AS for the duration of start
// and restores the supervisor's own limits immediately afterward. Darwin
// enforces RLIMIT_CPU the same way Linux does (SIGXCPU on the soft limit);
// RLIMIT_AS is advisory on Darwin's VM subsystem in practice, which is why
// the Stats Probe's polled peakBytes re-check in classifyPOSIX matters at
// least as much here as the rlimit itself.
func withRlimitScope(command string, cpuLimitMs int64, memLimitBytes int64, start func() error) error {
	spawnLimitMu.Lock()
	defer spawnLimitMu.Unlock()

	var cpuOrig, memOrig syscall.Rlimit
	var cpuSet, memSet bool

	if cpuLimitMs > 0 {
		if err := syscall.Getrlimit(syscall.RLIMIT_CPU, &cpuOrig); err != nil {
			logLimitSetupFailure(command, "read RLIMIT_CPU", err)
		} else {
			seconds := uint64((cpuLimitMs + 999) / 1000)
			if err := syscall.Setrlimit(syscall.RLIMIT_CPU, &syscall.Rlimit{Cur: seconds, Max: seconds}); err != nil {
				logLimitSetupFailure(command, "set RLIMIT_CPU", err)
			} else {
				cpuSet = true
			}
		}
	}
	if memLimitBytes > 0 {
		if err := syscall.Getrlimit(syscall.RLIMIT_AS, &memOrig); err != nil {
			logLimitSetupFailure(command, "read RLIMIT_AS", err)
		} else {
			bytes := uint64(memLimitBytes)
			if err := syscall.Setrlimit(syscall.RLIMIT_AS, &syscall.Rlimit{Cur: bytes, Max: bytes}); err != nil {
				logLimitSetupFailure(command, "set RLIMIT_AS", err)
			} else {
				memSet = true
			}
		}
	}

	startErr := start()

	if cpuSet {
		if err := syscall.Setrlimit(syscall.RLIMIT_CPU, &cpuOrig); err != nil {
			logLimitSetupFailure(command, "restore RLIMIT_CPU", err)
		}
	}
	if memSet {
		if err := syscall.Setrlimit(syscall.RLIMIT_AS, &memOrig); err != nil {
			logLimitSetupFailure(command, "restore RLIMIT_AS", err)
		}
	}

	return startErr
}

// configureSysProcAttr puts the child in its own process group so a
// timeout/cancel kill reaches anything it forked itself. Darwin has no
// Pdeathsig equivalent to Linux's, so an orphaned child outlives a crashed
// supervisor the same way it would on any other Unix without prctl.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
