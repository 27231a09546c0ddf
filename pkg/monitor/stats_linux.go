//go:build linux

package monitor

import "github.com/prometheus/procfs"

// linuxStatsProbe reads live CPU and memory for one child via procfs (spec
// §4.3: "poll VmHWM via /proc/<pid>/status and poll user+system ticks via
// /proc/<pid>/stat"), using the ecosystem's procfs reader instead of
// hand-parsing those files.
type linuxStatsProbe struct {
	fs  procfs.FS
	pid int
}

func newLinuxStatsProbe(pid int) (*linuxStatsProbe, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, err
	}
	return &linuxStatsProbe{fs: fs, pid: pid}, nil
}

// sample returns cumulative CPU time in milliseconds and peak RSS in
// bytes observed so far. It returns ok=false once the process has already
// gone away (e.g. the proc directory vanished between the poll tick and
// the read), which the Monitor Loop treats as "nothing new to report",
// keeping its previous sample.
func (p *linuxStatsProbe) sample() (cpuMs int64, peakBytes uint64, ok bool) {
	proc, err := p.fs.Proc(p.pid)
	if err != nil {
		return 0, 0, false
	}

	stat, err := proc.Stat()
	if err == nil {
		ticksPerSecond := int64(100) // _SC_CLK_TCK is 100 on virtually every Linux target
		totalTicks := stat.UTime + stat.STime
		cpuMs = int64(totalTicks) * 1000 / ticksPerSecond
		ok = true
	}

	status, err := proc.NewStatus()
	if err == nil {
		peakBytes = status.VmHWM
		ok = true
	}

	return cpuMs, peakBytes, ok
}
