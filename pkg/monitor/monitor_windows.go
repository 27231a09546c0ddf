//go:build windows

package monitor

import (
	"context"
	"os/exec"
	"time"

	"golang.org/x/sys/windows"
)

// spawnPlatform implements Spawn for Windows: the child is assigned to a
// Job Object carrying the resource limits (jobobject_windows.go), and the
// Monitor Loop waits on the child's process handle together with a
// manual-reset cancellation event via a single WaitForMultipleObjects call.
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
	// CREATE_SUSPENDED would let us assign the Job Object before any code
	// runs; since this supervisor's job limits are a secondary backstop to
	// the poll loop's own enforcement (see jobobject_windows.go), the
	// small window between CreateProcess and AssignProcessToJobObject is
	// acceptable.

	startErr := cmd.Start()

	stdinF.Close()
	stdoutF.Close()
	stderrF.Close()

	if startErr != nil {
		return nil, newError(KindSpawnFailed, "start "+req.Command, startErr)
	}

	pid := cmd.Process.Pid
	processHandle, err := windows.OpenProcess(windows.PROCESS_ALL_ACCESS, false, uint32(pid))
	if err != nil {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
		return nil, newError(KindSpawnFailed, "open process handle", err)
	}

	job, err := newWindowsJobObject(req.CPUTimeLimitMs, req.MemoryLimitBytes)
	if err != nil {
		windows.CloseHandle(processHandle)
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
		return nil, newError(KindSpawnFailed, "create job object", err)
	}
	if err := job.assign(processHandle); err != nil {
		job.close()
		windows.CloseHandle(processHandle)
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
		return nil, newError(KindSpawnFailed, "assign process to job object", err)
	}

	cancelEvent, err := newWindowsManualResetEvent()
	if err != nil {
		job.close()
		windows.CloseHandle(processHandle)
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
		return nil, newError(KindSpawnFailed, "create cancellation event", err)
	}

	cancelCh := newCancelChannel(cancelEvent)
	h := newHandle(pid, cancelCh)

	if req.OnSpawn != nil {
		req.OnSpawn(pid)
	}

	go runWindowsMonitorLoop(ctx, req, h, processHandle, cancelEvent.handle, job)

	return h, nil
}

func runWindowsMonitorLoop(ctx context.Context, req *Request, h *Handle, process windows.Handle, cancelEvent windows.Handle, job *windowsJobObject) {
	defer windows.CloseHandle(process)
	defer job.close()

	probe := newWindowsStatsProbe(process)
	clock := newMonotonicClock()

	var flags loopFlags
	killed := false
	killCode := uint32(0)
	killOnce := func(code uint32, setFlag func()) {
		if killed {
			return
		}
		killed = true
		killCode = code
		setFlag()
		_ = windows.TerminateProcess(process, code)
	}

	var lastCPUMs int64
	var lastPeakBytes uint64

	handles := []windows.Handle{process, cancelEvent}
	timeoutMs := uint32(pollInterval / time.Millisecond)

watching:
	for {
		event, err := windows.WaitForMultipleObjects(handles, false, timeoutMs)
		if err != nil {
			break watching
		}

		switch {
		case event == windows.WAIT_OBJECT_0:
			// The process handle became signalled: it has exited.
			break watching
		case event == windows.WAIT_OBJECT_0+1:
			killOnce(windowsCancelledExitCode, func() { flags.Stopped = true })
			continue watching
		}

		if cpuMs, peakBytes, ok := probe.sample(); ok {
			lastCPUMs, lastPeakBytes = cpuMs, peakBytes
			if req.OnStats != nil {
				req.OnStats(cpuMs, peakBytes)
			}
		}

		if ctx.Err() != nil {
			killOnce(windowsCancelledExitCode, func() { flags.Stopped = true })
			continue
		}

		if req.MemoryLimitBytes > 0 && lastPeakBytes > uint64(req.MemoryLimitBytes) {
			killOnce(windowsMemExceededCode, func() { flags.MemoryLimitExceeded = true })
			continue
		}
		if req.CPUTimeLimitMs > 0 && lastCPUMs > req.CPUTimeLimitMs {
			killOnce(windowsTimedOutExitCode, func() { flags.TimedOut = true })
			continue
		}
		if req.CPUTimeLimitMs > 0 && clock.Elapsed() > time.Duration(req.CPUTimeLimitMs)*time.Millisecond*wallClockSafetyFactor {
			killOnce(windowsTimedOutExitCode, func() { flags.TimedOut = true })
			continue
		}
	}

	// The wait returning for the process handle means Windows has already
	// finished tearing it down; GetExitCodeProcess is safe to call
	// immediately, no separate reap step is needed on this platform.
	windows.WaitForSingleObject(process, windows.INFINITE)

	var exitCode uint32
	if err := windows.GetExitCodeProcess(process, &exitCode); err != nil {
		exitCode = killCode
	}
	if cpuMs, peakBytes, ok := probe.sample(); ok {
		lastCPUMs, lastPeakBytes = cpuMs, peakBytes
	}

	completion := classifyWindows(exitCode, lastCPUMs, lastPeakBytes, req, flags)
	h.deliver(completion, nil)
}
