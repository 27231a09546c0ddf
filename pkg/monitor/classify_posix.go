//go:build linux || darwin

package monitor

import "syscall"

// loopFlags carries the cause the Monitor Loop already attributed (if
// any) from a live poll-tick breach into the Result Classifier, which may
// confirm it, leave it, or (for an unexplained SIGKILL) attempt a
// best-effort attribution of its own.
type loopFlags struct {
	TimedOut            bool
	MemoryLimitExceeded bool
	Stopped             bool
}

// classifyPOSIX implements spec §4.5's Result Classifier for the Linux and
// macOS back-ends, which both reap through syscall.Wait4 and therefore
// share the same syscall.WaitStatus shape.
func classifyPOSIX(ws syscall.WaitStatus, cpuMs int64, peakBytes uint64, req *Request, flags loopFlags) Completion {
	// Post-mortem re-check (§4.4): catch a spike or overrun that landed
	// between the last poll tick and the reap.
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

	switch {
	case ws.Exited():
		code := ws.ExitStatus()
		c.ExitCode = &code
	case ws.Signaled():
		sig := ws.Signal()
		c.TermSignal = int(sig)
		switch sig {
		case syscall.SIGXCPU:
			c.TimedOut = true
		case syscall.SIGKILL:
			if !c.TimedOut && !c.MemoryLimitExceeded && !c.Stopped {
				attributeExternalKill(&c, cpuMs, peakBytes, req)
			}
		}
	default:
		// Neither exited nor signaled (e.g. stopped/continued delivery
		// raced the reap); report no exit code and no signal.
	}

	return c
}

// attributeExternalKill applies the §4.5/§9 heuristic for a SIGKILL the
// loop didn't itself cause: attribute to the limit whose usage sat within
// 90% of its configured value, else leave every cause flag false and let
// the caller see the raw signal (e.g. a system OOM killer).
func attributeExternalKill(c *Completion, cpuMs int64, peakBytes uint64, req *Request) {
	if req.CPUTimeLimitMs > 0 && float64(cpuMs) >= float64(req.CPUTimeLimitMs)*externalKillAttributionThreshold {
		c.TimedOut = true
		return
	}
	if req.MemoryLimitBytes > 0 && float64(peakBytes) >= float64(req.MemoryLimitBytes)*externalKillAttributionThreshold {
		c.MemoryLimitExceeded = true
	}
}
