package monitor

import "context"

// Endpoint identifies one of the child's three standard streams. The
// caller creates and listens on the endpoint before calling Spawn; the
// Stdio Binder only connects to it.
type Endpoint struct {
	// Name is a Unix-domain socket path on Linux/macOS, or a named-pipe
	// path (\\.\pipe\...) on Windows.
	Name string
}

// Request describes one child to spawn and supervise.
type Request struct {
	// Command is interpreted by the host OS's executable lookup
	// semantics (PATH search); no shell is invoked.
	Command string
	// Args is passed to the child verbatim; no shell splitting occurs.
	Args []string
	// Dir is the child's working directory. Empty means inherit the
	// supervisor's own working directory.
	Dir string

	// CPUTimeLimitMs bounds user+system CPU time. Zero means unlimited.
	CPUTimeLimitMs int64
	// MemoryLimitBytes bounds resident memory. Zero means unlimited.
	MemoryLimitBytes int64

	Stdin  Endpoint
	Stdout Endpoint
	Stderr Endpoint

	// OnSpawn, if non-nil, fires exactly once immediately after the child
	// is confirmed running and before the first poll tick. It runs on the
	// goroutine that called Spawn, before Spawn returns, not on the
	// monitor worker.
	OnSpawn func(pid int)

	// OnStats, if non-nil, fires from the monitor worker after each poll
	// tick whose Stats Probe sample succeeds, with that sample. It is not
	// called on the wake-up that reports the child's exit. It is the streaming
	// variant of the Completion Record's final numbers, for callers that
	// want to render live usage rather than wait for Result.
	OnStats func(cpuMs int64, peakBytes uint64)
}

func (r *Request) validate() error {
	if r == nil || r.Command == "" {
		return newError(KindInvalidRequest, "command is required", nil)
	}
	if r.CPUTimeLimitMs < 0 {
		return newError(KindInvalidRequest, "cpu_time_limit_ms must be >= 0", nil)
	}
	if r.MemoryLimitBytes < 0 {
		return newError(KindInvalidRequest, "memory_limit_bytes must be >= 0", nil)
	}
	if r.Stdin.Name == "" || r.Stdout.Name == "" || r.Stderr.Name == "" {
		return newError(KindInvalidRequest, "stdin, stdout and stderr endpoints are required", nil)
	}
	return nil
}

// Spawn validates req, launches the child, binds its stdio to the
// supplied endpoints, attaches the limit enforcer, and returns a Handle
// once the child is confirmed running. Synchronous failures (invalid
// request, endpoint connect failure, fork/exec failure) are returned as
// *Error before any Handle is produced.
func Spawn(ctx context.Context, req *Request) (*Handle, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return spawnPlatform(ctx, req)
}
