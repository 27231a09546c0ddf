//go:build windows

package monitor

// Sentinel exit codes the Monitor Loop itself assigns when it terminates
// the child directly (a poll-tick limit breach or an explicit Cancel),
// ahead of any of the Win32 kernel's own exit/exception codes.
const (
	windowsTimedOutExitCode  uint32 = 0xF0000001
	windowsMemExceededCode   uint32 = 0xF0000002
	windowsCancelledExitCode uint32 = 0xF0000003
)

// windowsExceptionStatusFloor is the low bound of the NTSTATUS "error"
// severity range (STATUS_SEVERITY_ERROR, bit 31 and 30 set): an exit code
// at or above this was an unhandled exception or a kernel-initiated kill
// the supervisor didn't itself request, e.g. the Job Object's own
// JOB_OBJECT_LIMIT_PROCESS_MEMORY enforcement starving a VirtualAlloc
// until the child crashed on its own.
const windowsExceptionStatusFloor = 0xC0000000

// classifyWindows implements spec §4.5's Result Classifier for the Windows
// back-end. Unlike POSIX's signal-based attribution, Windows gives no
// single unambiguous "killed for resource reasons" signal, so an
// unexplained high exit code is attributed to CPU time with a tighter 95%
// threshold than POSIX's unexplained-SIGKILL case uses; the memory check
// keeps the same 90% threshold as POSIX.
func classifyWindows(exitCode uint32, cpuMs int64, peakBytes uint64, req *Request, flags loopFlags) Completion {
	if req.MemoryLimitBytes > 0 && peakBytes > uint64(req.MemoryLimitBytes) {
		flags.MemoryLimitExceeded = true
	}
	if req.CPUTimeLimitMs > 0 && cpuMs > req.CPUTimeLimitMs {
		flags.TimedOut = true
	}

	c := Completion{
		ElapsedCPUMs:        cpuMs,
		PeakMemoryBytes:     peakBytes,
		TimedOut:            flags.TimedOut,
		MemoryLimitExceeded: flags.MemoryLimitExceeded,
		Stopped:             flags.Stopped,
	}

	switch exitCode {
	case windowsTimedOutExitCode:
		c.TimedOut = true
		c.TermCode = exitCode
		return c
	case windowsMemExceededCode:
		c.MemoryLimitExceeded = true
		c.TermCode = exitCode
		return c
	case windowsCancelledExitCode:
		c.Stopped = true
		c.TermCode = exitCode
		return c
	}

	if exitCode >= windowsExceptionStatusFloor {
		c.TermCode = exitCode
		if !c.TimedOut && !c.MemoryLimitExceeded && !c.Stopped {
			attributeWindowsExternalKill(&c, cpuMs, peakBytes, req)
		}
		return c
	}

	code := int(exitCode)
	c.ExitCode = &code
	return c
}

func attributeWindowsExternalKill(c *Completion, cpuMs int64, peakBytes uint64, req *Request) {
	if req.CPUTimeLimitMs > 0 && float64(cpuMs) >= float64(req.CPUTimeLimitMs)*windowsCPUAttributionThreshold {
		c.TimedOut = true
		return
	}
	if req.MemoryLimitBytes > 0 && float64(peakBytes) >= float64(req.MemoryLimitBytes)*externalKillAttributionThreshold {
		c.MemoryLimitExceeded = true
	}
}
