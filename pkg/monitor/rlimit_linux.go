//go:build linux

package monitor

import (
	"os/exec"
	"sync"
	"syscall"
)

// spawnLimitMu serializes the pre-exec rlimit window across concurrent
// spawns: RLIMIT_CPU/RLIMIT_AS are process-wide OS state, not per-Cmd, so
// only one goroutine may hold the parent's limits adjusted between
// Setrlimit and cmd.Start at a time. Grounded in the same pattern the pack
// uses for this exact problem (RowanDark-0xGen's limits_unix.go).
var spawnLimitMu sync.Mutex

// withRlimitScope sets RLIMIT_CPU (seconds, rounded up — the kernel only
// enforces 1-second granularity) and RLIMIT_AS for the duration of start,
// so the child inherits them across fork, then restores the supervisor's
// own limits immediately afterward. cpuLimitMs/memLimitBytes of 0 leave
// the corresponding limit untouched ("no limit", spec §3). command is used
// only to label a best-effort LimitSetupFailed log line (spec §7) if a
// Getrlimit/Setrlimit call fails; the spawn proceeds regardless.
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

func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pdeathsig: syscall.SIGKILL}
}
