// Package cli is the cobra-based command surface for cmd/sandboxrun. It is
// not part of the library's public API: pkg/monitor never imports it.
package cli

import (
	stdcontext "context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sandboxrun",
		Short: "Spawn a program under CPU-time and memory limits",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.AddCommand(newRunCmd())
	root.AddCommand(newWatchCmd())

	return root
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
