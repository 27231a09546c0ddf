package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cobaltlabs/sandboxsup/internal/obslog"
	"github.com/cobaltlabs/sandboxsup/internal/obsmetrics"
	"github.com/cobaltlabs/sandboxsup/internal/runconfig"
	"github.com/cobaltlabs/sandboxsup/pkg/monitor"
)

func newRunCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Spawn once and print the Completion Record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), cmd.OutOrStdout(), manifestPath)
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "file", "f", "run.yaml", "Path to run manifest")
	return cmd
}

func runOnce(ctx context.Context, out io.Writer, manifestPath string) error {
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

	go pipeInto(stdinL, os.Stdin)
	go pipeFrom(stdoutL, out)
	go pipeFrom(stderrL, os.Stderr)

	req := &monitor.Request{
		Command:          manifest.Command,
		Args:             manifest.Args,
		Dir:              manifest.Dir,
		CPUTimeLimitMs:   manifest.CPUTimeLimitMs,
		MemoryLimitBytes: manifest.MemoryLimitBytes,
		Stdin:            monitor.Endpoint{Name: manifest.Endpoints.Stdin},
		Stdout:           monitor.Endpoint{Name: manifest.Endpoints.Stdout},
		Stderr:           monitor.Endpoint{Name: manifest.Endpoints.Stderr},
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

	completion, err := handle.Result(ctx)
	if err != nil {
		return fmt.Errorf("wait for result: %w", err)
	}

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

	printCompletion(out, completion)
	return nil
}

// pipeInto copies from src into the first connection accepted on l,
// feeding the child's stdin. It returns when that copy ends, or at once if
// the listener is closed before a connection arrives.
func pipeInto(l net.Listener, src io.Reader) {
	conn, err := l.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	_, _ = io.Copy(conn, src)
}

// pipeFrom copies the child's stdout/stderr, carried over the first
// connection accepted on l, to dst.
func pipeFrom(l net.Listener, dst io.Writer) {
	conn, err := l.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	_, _ = io.Copy(dst, conn)
}

func printCompletion(out io.Writer, c monitor.Completion) {
	colorize := false
	if f, ok := out.(*os.File); ok {
		colorize = term.IsTerminal(int(f.Fd()))
	}

	cause := completionCause(c)

	format := "cause=%s cpu_ms=%d peak_bytes=%d exit_code=%v signal=%d term_code=%d\n"
	if colorize {
		format = "\x1b[1mcause=%s\x1b[0m cpu_ms=%d peak_bytes=%d exit_code=%v signal=%d term_code=%d\n"
	}

	var exitCode any = "n/a"
	if c.ExitCode != nil {
		exitCode = *c.ExitCode
	}

	fmt.Fprintf(out, format, cause, c.ElapsedCPUMs, c.PeakMemoryBytes, exitCode, c.TermSignal, c.TermCode)
}

// completionCause derives the single termination-cause label shared by the
// printed Completion line, the log line and obsmetrics' spawns_total.
func completionCause(c monitor.Completion) string {
	switch {
	case c.TimedOut:
		return "timed_out"
	case c.MemoryLimitExceeded:
		return "memory_exceeded"
	case c.Stopped:
		return "cancelled"
	default:
		return "exited"
	}
}
