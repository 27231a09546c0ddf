//go:build linux || darwin

package monitor

import (
	"syscall"
	"testing"
)

func waitStatusExited(code int) syscall.WaitStatus {
	// syscall.WaitStatus on POSIX platforms is an integer-like type whose
	// low byte encodes exit/signal state; constructing one directly (as
	// opposed to via a real wait4 call) mirrors how the pack's own
	// process-backend tests fabricate wait statuses for unit coverage.
	return syscall.WaitStatus(code << 8)
}

func waitStatusSignaled(sig syscall.Signal) syscall.WaitStatus {
	return syscall.WaitStatus(sig)
}

func TestClassifyPOSIXNormalExit(t *testing.T) {
	req := &Request{CPUTimeLimitMs: 1000, MemoryLimitBytes: 1 << 20}
	c := classifyPOSIX(waitStatusExited(7), 100, 1024, req, loopFlags{})

	if c.ExitCode == nil || *c.ExitCode != 7 {
		t.Fatalf("expected exit code 7, got %v", c.ExitCode)
	}
	if c.TimedOut || c.MemoryLimitExceeded || c.Stopped {
		t.Fatalf("expected no cause flags set, got %+v", c)
	}
}

func TestClassifyPOSIXSIGXCPUIsTimedOut(t *testing.T) {
	req := &Request{CPUTimeLimitMs: 1000}
	c := classifyPOSIX(waitStatusSignaled(syscall.SIGXCPU), 1000, 0, req, loopFlags{})

	if !c.TimedOut {
		t.Fatalf("expected TimedOut to be set for SIGXCPU, got %+v", c)
	}
	if c.MemoryLimitExceeded || c.Stopped {
		t.Fatalf("expected only TimedOut set, got %+v", c)
	}
	if c.TermSignal != int(syscall.SIGXCPU) {
		t.Fatalf("expected term signal SIGXCPU, got %d", c.TermSignal)
	}
}

func TestClassifyPOSIXLoopAttributedCauseIsPreserved(t *testing.T) {
	req := &Request{MemoryLimitBytes: 1000}
	c := classifyPOSIX(waitStatusSignaled(syscall.SIGKILL), 0, 500, req, loopFlags{MemoryLimitExceeded: true})

	if !c.MemoryLimitExceeded {
		t.Fatalf("expected MemoryLimitExceeded preserved from loop flags, got %+v", c)
	}
	if c.TimedOut {
		t.Fatalf("did not expect TimedOut, got %+v", c)
	}
}

func TestClassifyPOSIXUnexplainedSIGKILLAttributedByCPUHeuristic(t *testing.T) {
	req := &Request{CPUTimeLimitMs: 1000, MemoryLimitBytes: 1 << 30}
	// 95% of the CPU limit, comfortably over the 90% attribution threshold,
	// with memory nowhere near its limit.
	c := classifyPOSIX(waitStatusSignaled(syscall.SIGKILL), 950, 1024, req, loopFlags{})

	if !c.TimedOut {
		t.Fatalf("expected SIGKILL at 95%% CPU usage to be attributed to TimedOut, got %+v", c)
	}
	if c.MemoryLimitExceeded {
		t.Fatalf("did not expect MemoryLimitExceeded, got %+v", c)
	}
}

func TestClassifyPOSIXUnexplainedSIGKILLLeftUnattributed(t *testing.T) {
	req := &Request{CPUTimeLimitMs: 10000, MemoryLimitBytes: 1 << 30}
	c := classifyPOSIX(waitStatusSignaled(syscall.SIGKILL), 10, 1024, req, loopFlags{})

	if c.TimedOut || c.MemoryLimitExceeded || c.Stopped {
		t.Fatalf("expected every cause flag false for an unattributable SIGKILL, got %+v", c)
	}
	if c.TermSignal != int(syscall.SIGKILL) {
		t.Fatalf("expected the raw signal to still be reported, got %d", c.TermSignal)
	}
}

func TestClassifyPOSIXPostMortemRecheckCatchesLateBreach(t *testing.T) {
	req := &Request{MemoryLimitBytes: 100}
	// The loop never saw a breach, but the final sample at reap time did.
	c := classifyPOSIX(waitStatusExited(0), 0, 200, req, loopFlags{})

	if !c.MemoryLimitExceeded {
		t.Fatalf("expected post-mortem recheck to flag the late memory breach, got %+v", c)
	}
}
