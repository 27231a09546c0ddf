//go:build linux

package monitor

import (
	"context"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// spawnPlatform implements Spawn for Linux: a pidfd_open handle on the
// child stands in for the "wait for exit" wakeup, polled together with an
// eventfd-backed cancellation channel in one unix.Poll call, so the
// Monitor Loop never busy-spins and never blocks past one poll interval
// without also re-checking resource usage.
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

	// cmd.Start dup2's these onto the child's fd 0/1/2; the parent's copies
	// are no longer needed regardless of whether Start succeeded.
	stdinF.Close()
	stdoutF.Close()
	stderrF.Close()

	if startErr != nil {
		return nil, newError(KindSpawnFailed, "start "+req.Command, startErr)
	}

	pid := cmd.Process.Pid

	pidfd, err := unix.PidfdOpen(pid, 0)
	if err != nil {
		killAndReap(pid)
		return nil, newError(KindSpawnFailed, "pidfd_open", err)
	}

	evfd, err := newLinuxEventFD()
	if err != nil {
		unix.Close(pidfd)
		killAndReap(pid)
		return nil, newError(KindSpawnFailed, "create cancellation eventfd", err)
	}

	cancelCh := newCancelChannel(evfd)
	h := newHandle(pid, cancelCh)

	if req.OnSpawn != nil {
		req.OnSpawn(pid)
	}

	go runLinuxMonitorLoop(ctx, req, h, pid, pidfd)

	return h, nil
}

// killAndReap is the best-effort cleanup path for a child that started but
// whose supervising primitives (pidfd, eventfd) failed to set up — spec
// §7's LimitSetupFailed-adjacent case, except here it's the watch
// machinery rather than the rlimits that failed. The child cannot be left
// running unsupervised, so it's killed and reaped synchronously.
func killAndReap(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
	var ws syscall.WaitStatus
	_, _ = syscall.Wait4(pid, &ws, 0, nil)
}

// runLinuxMonitorLoop owns the Starting -> Watching -> Terminating ->
// Reaping -> Done state machine (spec §4.4) for one child. It always
// delivers exactly one Completion to h, however the loop ends.
func runLinuxMonitorLoop(ctx context.Context, req *Request, h *Handle, pid int, pidfd int) {
	defer unix.Close(pidfd)

	probe, err := newLinuxStatsProbe(pid)
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

	fds := make([]unix.PollFd, 2)
	fds[0].Fd = int32(pidfd)
	fds[0].Events = unix.POLLIN
	evFd := h.cancelCh.prim.(*linuxEventFD)
	fds[1].Fd = int32(evFd.fd)
	fds[1].Events = unix.POLLIN

watching:
	for {
		fds[0].Revents = 0
		fds[1].Revents = 0

		n, perr := unix.Poll(fds, int(pollInterval/time.Millisecond))
		if perr == unix.EINTR {
			continue
		}

		exited := n > 0 && fds[0].Revents&unix.POLLIN != 0
		cancelled := n > 0 && fds[1].Revents&unix.POLLIN != 0

		// Tie-break order (spec §4.4): an actual exit always wins, even if
		// cancellation raced in on the same tick.
		if exited {
			break watching
		}

		if err == nil {
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

		// Poll-tick limit breach detection, in the documented order:
		// memory first, then CPU, then the wall-clock safety net.
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

	// Reaping: the child is either already a zombie (it exited on its
	// own) or was just signalled above; Wait4 blocks at most as long as
	// the kernel needs to finish delivering the exit.
	var ws syscall.WaitStatus
	_, _ = syscall.Wait4(pid, &ws, 0, nil)

	if err == nil {
		if cpuMs, peakBytes, ok := probe.sample(); ok {
			lastCPUMs, lastPeakBytes = cpuMs, peakBytes
		}
	}

	completion := classifyPOSIX(ws, lastCPUMs, lastPeakBytes, req, flags)
	h.deliver(completion, nil)
}
