//go:build windows

package monitor

import "testing"

func TestClassifyWindowsNormalExit(t *testing.T) {
	req := &Request{CPUTimeLimitMs: 1000, MemoryLimitBytes: 1 << 20}
	c := classifyWindows(0, 100, 1024, req, loopFlags{})

	if c.ExitCode == nil || *c.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %v", c.ExitCode)
	}
	if c.TimedOut || c.MemoryLimitExceeded || c.Stopped {
		t.Fatalf("expected no cause flags set, got %+v", c)
	}
}

func TestClassifyWindowsSentinelTimedOut(t *testing.T) {
	req := &Request{CPUTimeLimitMs: 1000}
	c := classifyWindows(windowsTimedOutExitCode, 1200, 0, req, loopFlags{TimedOut: true})

	if !c.TimedOut {
		t.Fatalf("expected TimedOut set for the timed-out sentinel, got %+v", c)
	}
	if c.TermCode != windowsTimedOutExitCode {
		t.Fatalf("expected term code to be reported, got %x", c.TermCode)
	}
}

func TestClassifyWindowsUnexplainedExceptionAttributedByCPU(t *testing.T) {
	req := &Request{CPUTimeLimitMs: 1000, MemoryLimitBytes: 1 << 30}
	// 96% of the CPU limit, over the tighter 95% Windows threshold.
	c := classifyWindows(0xC0000005, 960, 1024, req, loopFlags{})

	if !c.TimedOut {
		t.Fatalf("expected an unexplained exception at 96%% CPU to be attributed to TimedOut, got %+v", c)
	}
}

func TestClassifyWindowsUnexplainedExceptionLeftUnattributed(t *testing.T) {
	req := &Request{CPUTimeLimitMs: 10000, MemoryLimitBytes: 1 << 30}
	c := classifyWindows(0xC0000005, 10, 1024, req, loopFlags{})

	if c.TimedOut || c.MemoryLimitExceeded || c.Stopped {
		t.Fatalf("expected no cause flags for an unattributable exception, got %+v", c)
	}
	if c.TermCode != 0xC0000005 {
		t.Fatalf("expected the raw exception code to still be reported, got %x", c.TermCode)
	}
}
