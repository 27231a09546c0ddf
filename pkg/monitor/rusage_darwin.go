//go:build darwin

package monitor

/*
#include <libproc.h>
#include <sys/resource.h>
#include <mach/mach_time.h>
#include <string.h>

static int sandboxsup_rusage(pid_t pid, struct rusage_info_v2 *out) {
	memset(out, 0, sizeof(*out));
	return proc_pid_rusage(pid, RUSAGE_INFO_V2, (rusage_info_t *)out);
}
*/
import "C"

// darwinStatsProbe reads live CPU and memory for one child via
// proc_pid_rusage(RUSAGE_INFO_V2), the same call the native addon this
// library supersedes used directly (original_source/src/addons/
// darwin-process-monitor.cpp) — there is no non-cgo Go binding for it.
type darwinStatsProbe struct {
	pid int
	// timebaseNumer/Denom convert ri_user_time/ri_system_time, which are
	// Mach absolute-time ticks, into nanoseconds (ns = ticks * numer /
	// denom); a 1:1 timebase is never assumed.
	timebaseNumer uint32
	timebaseDenom uint32
	// peak is the largest resident size seen by any sample so far.
	peak uint64
}

func newDarwinStatsProbe(pid int) (*darwinStatsProbe, error) {
	var tb C.struct_mach_timebase_info
	if C.mach_timebase_info(&tb) != C.KERN_SUCCESS {
		tb.numer, tb.denom = 1, 1
	}
	return &darwinStatsProbe{
		pid:           pid,
		timebaseNumer: uint32(tb.numer),
		timebaseDenom: uint32(tb.denom),
	}, nil
}

func (p *darwinStatsProbe) toNanos(ticks uint64) uint64 {
	if p.timebaseDenom == 0 {
		return ticks
	}
	return ticks * uint64(p.timebaseNumer) / uint64(p.timebaseDenom)
}

// sample returns cumulative CPU time in milliseconds and peak resident
// size in bytes. ok is false if the pid is already gone.
func (p *darwinStatsProbe) sample() (cpuMs int64, peakBytes uint64, ok bool) {
	var ru C.struct_rusage_info_v2
	if rc := C.sandboxsup_rusage(C.pid_t(p.pid), &ru); rc != 0 {
		return 0, 0, false
	}

	userNs := p.toNanos(uint64(ru.ri_user_time))
	sysNs := p.toNanos(uint64(ru.ri_system_time))
	cpuMs = int64((userNs + sysNs) / 1_000_000)
	peakBytes = uint64(ru.ri_resident_size)
	if peakBytes < p.peak {
		peakBytes = p.peak
	}
	p.peak = peakBytes
	return cpuMs, peakBytes, true
}
