//go:build windows

package monitor

import "golang.org/x/sys/windows"

// windowsStatsProbe reads live CPU and memory for one child via
// GetProcessTimes and GetProcessMemoryInfo, the direct Win32 analogue of
// the Linux/macOS probes' procfs and rusage reads.
type windowsStatsProbe struct {
	process windows.Handle
}

func newWindowsStatsProbe(process windows.Handle) *windowsStatsProbe {
	return &windowsStatsProbe{process: process}
}

func (p *windowsStatsProbe) sample() (cpuMs int64, peakBytes uint64, ok bool) {
	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(p.process, &creation, &exit, &kernel, &user); err != nil {
		return 0, 0, false
	}
	totalHundredNs := filetimeToInt64(kernel) + filetimeToInt64(user)
	cpuMs = totalHundredNs / 10_000

	var counters windows.PROCESS_MEMORY_COUNTERS
	if err := windows.GetProcessMemoryInfo(p.process, &counters); err == nil {
		peakBytes = uint64(counters.PeakWorkingSetSize)
	}

	return cpuMs, peakBytes, true
}

func filetimeToInt64(ft windows.Filetime) int64 {
	return int64(ft.HighDateTime)<<32 | int64(ft.LowDateTime)
}
