package monitor

import "testing"

func TestRequestValidateRequiresCommand(t *testing.T) {
	req := &Request{
		Stdin:  Endpoint{Name: "a"},
		Stdout: Endpoint{Name: "b"},
		Stderr: Endpoint{Name: "c"},
	}
	if err := req.validate(); err == nil {
		t.Fatal("expected validation error for missing command")
	}
}

func TestRequestValidateRejectsNegativeLimits(t *testing.T) {
	base := Request{
		Command: "/bin/true",
		Stdin:   Endpoint{Name: "a"},
		Stdout:  Endpoint{Name: "b"},
		Stderr:  Endpoint{Name: "c"},
	}

	withNegCPU := base
	withNegCPU.CPUTimeLimitMs = -1
	if err := withNegCPU.validate(); err == nil {
		t.Fatal("expected validation error for negative cpu_time_limit_ms")
	}

	withNegMem := base
	withNegMem.MemoryLimitBytes = -1
	if err := withNegMem.validate(); err == nil {
		t.Fatal("expected validation error for negative memory_limit_bytes")
	}
}

func TestRequestValidateRequiresAllEndpoints(t *testing.T) {
	req := &Request{Command: "/bin/true", Stdout: Endpoint{Name: "b"}, Stderr: Endpoint{Name: "c"}}
	if err := req.validate(); err == nil {
		t.Fatal("expected validation error for missing stdin endpoint")
	}
}

func TestRequestValidateAcceptsZeroLimitsAsUnlimited(t *testing.T) {
	req := &Request{
		Command: "/bin/true",
		Stdin:   Endpoint{Name: "a"},
		Stdout:  Endpoint{Name: "b"},
		Stderr:  Endpoint{Name: "c"},
	}
	if err := req.validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
