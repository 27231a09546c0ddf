// Command sandboxrun exercises pkg/monitor end to end: it spawns one
// program under a CPU-time and memory limit and either prints its
// Completion Record or live-renders its resource usage while it runs.
package main

import (
	"github.com/cobaltlabs/sandboxsup/internal/cli"
	"github.com/cobaltlabs/sandboxsup/internal/obsmetrics"
)

func main() {
	obsmetrics.EmitBuildInfo()
	cli.Execute()
}
