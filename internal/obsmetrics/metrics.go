// Package obsmetrics exposes Prometheus metrics for spawns supervised by
// pkg/monitor: counts by termination cause, CPU-time and peak-memory
// distributions, and the count of spawns currently being watched.
package obsmetrics

import (
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	spawnsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sandboxsup",
		Name:      "spawns_total",
		Help:      "Total number of spawns completed, labeled by termination cause.",
	}, []string{"cause"})

	activeSpawns = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sandboxsup",
		Name:      "active_spawns",
		Help:      "Number of spawns currently being watched by the Monitor Loop.",
	})

	cpuTimeSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sandboxsup",
		Name:      "cpu_time_seconds",
		Help:      "CPU time consumed by a supervised child, in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16),
	})

	peakMemoryBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sandboxsup",
		Name:      "peak_memory_bytes",
		Help:      "Peak resident memory observed for a supervised child, in bytes.",
		Buckets:   prometheus.ExponentialBuckets(1<<20, 2, 16),
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sandboxsup",
		Name:      "build_info",
		Help:      "Build metadata for the running sandboxsup-linked binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(spawnsTotal, activeSpawns, cpuTimeSeconds, peakMemoryBytes, buildInfo)
}

// Registry returns the Prometheus registry containing all sandboxsup metrics.
func Registry() *prometheus.Registry {
	return registry
}

// SpawnStarted marks one more spawn as being watched. Call it once Spawn
// has returned a Handle, and SpawnFinished once that spawn's Completion
// is delivered. A spawn that fails synchronously is recorded with
// SpawnFailed alone, which does not touch active_spawns.
func SpawnStarted() {
	activeSpawns.Inc()
}

// cause classifies a Completion into the single label spawnsTotal expects,
// matching the Completion Record's "at most one cause flag" invariant.
func cause(timedOut, memExceeded, stopped bool) string {
	switch {
	case timedOut:
		return "timed_out"
	case memExceeded:
		return "memory_exceeded"
	case stopped:
		return "cancelled"
	default:
		return "exited"
	}
}

// SpawnFinished records a completed spawn's outcome and resource usage.
func SpawnFinished(timedOut, memExceeded, stopped bool, cpuTime time.Duration, peakBytes uint64) {
	activeSpawns.Dec()
	spawnsTotal.WithLabelValues(cause(timedOut, memExceeded, stopped)).Inc()
	cpuTimeSeconds.Observe(cpuTime.Seconds())
	peakMemoryBytes.Observe(float64(peakBytes))
}

// SpawnFailed records a spawn that never reached a watched state (spec
// §7's synchronous Spawn error path, which never produces a Completion).
func SpawnFailed() {
	spawnsTotal.WithLabelValues("spawn_error").Inc()
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
