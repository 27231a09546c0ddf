package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"github.com/cobaltlabs/sandboxsup/internal/obslog"
	"github.com/cobaltlabs/sandboxsup/internal/obsmetrics"
	"github.com/cobaltlabs/sandboxsup/internal/runconfig"
	"github.com/cobaltlabs/sandboxsup/pkg/monitor"
)

func newWatchCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Spawn and live-render resource usage until it finishes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchOnce(cmd.Context(), manifestPath)
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "file", "f", "run.yaml", "Path to run manifest")
	return cmd
}

// watchTable is a one-row live table of a single spawn's Stats Probe
// samples: elapsed CPU time and peak memory, refreshed on every poll tick
// via Request.OnStats.
type watchTable struct {
	mu      sync.Mutex
	table   *tview.Table
	app     *tview.Application
	cpuMs   int64
	peak    uint64
	pid     int
	cause   string
}

func newWatchTable() *watchTable {
	t := tview.NewTable().SetBorders(true)
	t.SetCell(0, 0, tview.NewTableCell("PID").SetSelectable(false))
	t.SetCell(0, 1, tview.NewTableCell("CPU ms").SetSelectable(false))
	t.SetCell(0, 2, tview.NewTableCell("Peak RSS").SetSelectable(false))
	t.SetCell(0, 3, tview.NewTableCell("Status").SetSelectable(false))
	t.SetCell(1, 0, tview.NewTableCell("-"))
	t.SetCell(1, 1, tview.NewTableCell("0"))
	t.SetCell(1, 2, tview.NewTableCell("0"))
	t.SetCell(1, 3, tview.NewTableCell("watching"))
	return &watchTable{table: t, cause: "watching"}
}

func (w *watchTable) setPID(pid int) {
	w.mu.Lock()
	w.pid = pid
	w.mu.Unlock()
	w.redraw()
}

func (w *watchTable) setStats(cpuMs int64, peakBytes uint64) {
	w.mu.Lock()
	w.cpuMs = cpuMs
	w.peak = peakBytes
	w.mu.Unlock()
	w.redraw()
}

func (w *watchTable) setDone(cause string) {
	w.mu.Lock()
	w.cause = cause
	w.mu.Unlock()
	w.redraw()
}

func (w *watchTable) redraw() {
	w.mu.Lock()
	pid, cpuMs, peak, cause := w.pid, w.cpuMs, w.peak, w.cause
	w.mu.Unlock()

	draw := func() {
		w.table.SetCell(1, 0, tview.NewTableCell(fmt.Sprintf("%d", pid)))
		w.table.SetCell(1, 1, tview.NewTableCell(fmt.Sprintf("%d", cpuMs)))
		w.table.SetCell(1, 2, tview.NewTableCell(fmt.Sprintf("%d", peak)))
		w.table.SetCell(1, 3, tview.NewTableCell(cause).SetTextColor(tcell.ColorYellow))
	}
	if w.app == nil {
		draw()
		return
	}
	w.app.QueueUpdateDraw(draw)
}

func watchOnce(ctx context.Context, manifestPath string) error {
	manifest, err := runconfig.Load(manifestPath)
	if err != nil {
		return err
	}

	stdinL, err := listenEndpoint(manifest.Endpoints.Stdin)
	if err != nil {
		return fmt.Errorf("listen stdin endpoint: %w", err)
	}
	defer stdinL.Close()
	stdoutL, err := listenEndpoint(manifest.Endpoints.Stdout)
	if err != nil {
		return fmt.Errorf("listen stdout endpoint: %w", err)
	}
	defer stdoutL.Close()
	stderrL, err := listenEndpoint(manifest.Endpoints.Stderr)
	if err != nil {
		return fmt.Errorf("listen stderr endpoint: %w", err)
	}
	defer stderrL.Close()

	go drainListener(stdinL)
	go drainListener(stdoutL)
	go drainListener(stderrL)

	wt := newWatchTable()
	app := tview.NewApplication().SetRoot(wt.table, true)
	wt.app = app

	req := &monitor.Request{
		Command:          manifest.Command,
		Args:             manifest.Args,
		Dir:              manifest.Dir,
		CPUTimeLimitMs:   manifest.CPUTimeLimitMs,
		MemoryLimitBytes: manifest.MemoryLimitBytes,
		Stdin:            monitor.Endpoint{Name: manifest.Endpoints.Stdin},
		Stdout:           monitor.Endpoint{Name: manifest.Endpoints.Stdout},
		Stderr:           monitor.Endpoint{Name: manifest.Endpoints.Stderr},
		OnSpawn:          wt.setPID,
		OnStats:          wt.setStats,
	}

	logEnc := json.NewEncoder(os.Stderr)

	handle, err := monitor.Spawn(ctx, req)
	if err != nil {
		obsmetrics.SpawnFailed()
		obslog.Encode(logEnc, os.Stderr, obslog.Event{Level: "error", Message: fmt.Sprintf("spawn failed: %v", err)})
		return fmt.Errorf("spawn: %w", err)
	}
	obsmetrics.SpawnStarted()
	obslog.Encode(logEnc, os.Stderr, obslog.Event{RunID: handle.RunID, PID: handle.PID, Level: "info", Message: "spawned"})

	go func() {
		completion, _ := handle.Result(ctx)
		cause := completionCause(completion)

		obslog.Encode(logEnc, os.Stderr, obslog.Event{
			RunID:   handle.RunID,
			PID:     handle.PID,
			Level:   "info",
			Message: fmt.Sprintf("completed cause=%s cpu_ms=%d peak_bytes=%d", cause, completion.ElapsedCPUMs, completion.PeakMemoryBytes),
		})
		obsmetrics.SpawnFinished(
			completion.TimedOut, completion.MemoryLimitExceeded, completion.Stopped,
			time.Duration(completion.ElapsedCPUMs)*time.Millisecond, completion.PeakMemoryBytes,
		)

		wt.setDone(cause)
		app.Stop()
	}()

	return app.Run()
}

// drainListener accepts one connection and discards everything read from
// or written to it, standing in for a real consumer of the child's stdio
// streams in the watch view (which only renders Stats Probe samples).
func drainListener(l net.Listener) {
	conn, err := l.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	_, _ = io.Copy(io.Discard, conn)
}
