//go:build darwin

package monitor

import (
	"context"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// spawnPlatform implements Spawn for macOS: one kqueue per child, registered
// for both EVFILT_PROC/NOTE_EXIT on the child's pid and an EVFILT_USER event
// used as the cancellation wakeup (cancel_darwin.go), matching the same
// "single wait primitive covers both exit and cancel" shape as the Linux
// pidfd+eventfd pair.
func spawnPlatform(ctx context.Context, req *Request) (*Handle, error) {
	stdinF, err := dialEndpoint(req.Stdin)
	if err != nil {
		return nil, err
	}
	stdoutF, err := dialEndpoint(req.Stdout)
	if err != nil {
		stdinF.Close()
		return nil, err
	}
	stderrF, err := dialEndpoint(req.Stderr)
	if err != nil {
		stdinF.Close()
		stdoutF.Close()
		return nil, err
	}

	cmd := exec.Command(req.Command, req.Args...)
	cmd.Dir = req.Dir
	cmd.Stdin = stdinF
	cmd.Stdout = stdoutF
	cmd.Stderr = stderrF
	configureSysProcAttr(cmd)

	startErr := withRlimitScope(req.Command, req.CPUTimeLimitMs, req.MemoryLimitBytes, cmd.Start)

	stdinF.Close()
	stdoutF.Close()
	stderrF.Close()

	if startErr != nil {
		return nil, newError(KindSpawnFailed, "start "+req.Command, startErr)
	}

	pid := cmd.Process.Pid

	kq, err := unix.Kqueue()
	if err != nil {
		killAndReap(pid)
		return nil, newError(KindSpawnFailed, "kqueue", err)
	}

	registerEvents := []unix.Kevent_t{
		{
			Ident:  uint64(pid),
			Filter: unix.EVFILT_PROC,
			Flags:  unix.EV_ADD | unix.EV_ENABLE,
			Fflags: unix.NOTE_EXIT,
		},
		{
			Ident:  cancelUserIdent,
			Filter: unix.EVFILT_USER,
			Flags:  unix.EV_ADD | unix.EV_CLEAR,
		},
	}
	if _, err := unix.Kevent(kq, registerEvents, nil, nil); err != nil {
		unix.Close(kq)
		killAndReap(pid)
		return nil, newError(KindSpawnFailed, "register kqueue events", err)
	}

	cancelCh := newCancelChannel(&darwinKqueueCancel{kq: kq})
	h := newHandle(pid, cancelCh)

	if req.OnSpawn != nil {
		req.OnSpawn(pid)
	}

	go runDarwinMonitorLoop(ctx, req, h, pid, kq)

	return h, nil
}

// killAndReap mirrors the Linux helper of the same name (monitor_linux.go):
// a child that started but whose watch primitives failed to set up must
// still be killed and reaped rather than left running unsupervised.
func killAndReap(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
	var ws syscall.WaitStatus
	_, _ = syscall.Wait4(pid, &ws, 0, nil)
}

func runDarwinMonitorLoop(ctx context.Context, req *Request, h *Handle, pid int, kq int) {
	defer unix.Close(kq)

	probe, probeErr := newDarwinStatsProbe(pid)
	clock := newMonotonicClock()

	var flags loopFlags
	killed := false
	killOnce := func(setFlag func()) {
		if killed {
			return
		}
		killed = true
		setFlag()
		_ = syscall.Kill(-pid, syscall.SIGKILL)
	}

	var lastCPUMs int64
	var lastPeakBytes uint64

	timeout := unix.NsecToTimespec(pollInterval.Nanoseconds())
	events := make([]unix.Kevent_t, 2)

watching:
	for {
		n, err := unix.Kevent(kq, nil, events, &timeout)
		if err == unix.EINTR {
			continue
		}

		exited := false
		cancelled := false
		for i := 0; i < n; i++ {
			switch events[i].Filter {
			case unix.EVFILT_PROC:
				exited = true
			case unix.EVFILT_USER:
				cancelled = true
			}
		}

		if exited {
			break watching
		}

		if probeErr == nil {
			if cpuMs, peakBytes, ok := probe.sample(); ok {
				lastCPUMs, lastPeakBytes = cpuMs, peakBytes
				if req.OnStats != nil {
					req.OnStats(cpuMs, peakBytes)
				}
			}
		}

		if cancelled {
			killOnce(func() { flags.Stopped = true })
			continue
		}

		if ctx.Err() != nil {
			killOnce(func() { flags.Stopped = true })
			continue
		}

		if req.MemoryLimitBytes > 0 && lastPeakBytes > uint64(req.MemoryLimitBytes) {
			killOnce(func() { flags.MemoryLimitExceeded = true })
			continue
		}
		if req.CPUTimeLimitMs > 0 && lastCPUMs > req.CPUTimeLimitMs {
			killOnce(func() { flags.TimedOut = true })
			continue
		}
		if req.CPUTimeLimitMs > 0 && clock.Elapsed() > time.Duration(req.CPUTimeLimitMs)*time.Millisecond*wallClockSafetyFactor {
			killOnce(func() { flags.TimedOut = true })
			continue
		}
	}

	var ws syscall.WaitStatus
	_, _ = syscall.Wait4(pid, &ws, 0, nil)

	if probeErr == nil {
		if cpuMs, peakBytes, ok := probe.sample(); ok {
			lastCPUMs, lastPeakBytes = cpuMs, peakBytes
		}
	}

	completion := classifyPOSIX(ws, lastCPUMs, lastPeakBytes, req, flags)
	h.deliver(completion, nil)
}
