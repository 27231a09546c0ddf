package monitor

// Completion is the post-mortem of one spawn (spec §3, "Completion
// Record"). At most one of TimedOut, MemoryLimitExceeded and Stopped is
// true when the Result Classifier is confident of the cause; if an
// external termination can't be attributed, all three stay false and the
// raw signal/code is reported instead.
type Completion struct {
	// ElapsedCPUMs is total user+system CPU time consumed by the child,
	// rounded to milliseconds. It never reflects the supervisor's own
	// work.
	ElapsedCPUMs int64
	// PeakMemoryBytes is the high-water-mark resident set size observed
	// across every poll tick plus the post-mortem reap. Non-decreasing
	// across probes of a single child.
	PeakMemoryBytes uint64

	// ExitCode is the child's exit status if it exited normally. Nil if
	// the child was terminated by a signal or OS exception.
	ExitCode *int
	// TermSignal is the POSIX signal that killed the child, or 0.
	TermSignal int
	// TermCode is the Windows termination/exception code, or 0.
	TermCode uint32

	TimedOut            bool
	MemoryLimitExceeded bool
	Stopped             bool
	// SpawnError is true iff the child never executed successfully.
	// Spawn itself already reports this case synchronously (spec §4.1),
	// so a Completion with SpawnError set is never produced by Result.
	SpawnError bool
}
