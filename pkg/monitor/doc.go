// Package monitor supervises a single external program under CPU-time and
// memory limits and returns a structured post-mortem once it finishes.
//
// Three platform back-ends share the same state machine (Starting ->
// Watching -> Terminating -> Reaping -> Done): monitor_linux.go uses
// pidfd_open plus an eventfd-backed cancellation channel, monitor_darwin.go
// uses a kqueue registered for both process exit and a user-triggered
// event, and monitor_windows.go assigns the child to a Job Object and waits
// on the process handle together with a manual-reset event. All three poll
// live resource usage on a fixed interval to catch limit violations the
// kernel mechanism doesn't cover precisely (sub-second CPU time on Linux,
// any memory enforcement on macOS, kernel time on Windows).
//
// Spawns deliberately use fork, not vfork, on Linux even though the native
// implementation this library supersedes relies on vfork: the Go runtime's
// scheduler is not vfork-safe from an arbitrary goroutine, so the Linux
// back-end pays for a full fork and recoups the latency with a short,
// async-signal-safe window between fork and exec (see monitor_linux.go).
package monitor
