//go:build windows

package cli

import (
	"net"

	"github.com/Microsoft/go-winio"
)

// listenEndpoint creates the listening end of a stdio endpoint as a named
// pipe. This is the one place github.com/Microsoft/go-winio is wired in:
// the library's own Windows dial side (pkg/monitor/stdio_windows.go) uses
// golang.org/x/sys/windows.CreateFile directly for a plain inheritable
// handle, but the caller-owned listening side has no such constraint and
// benefits from go-winio's overlapped-I/O pipe listener.
func listenEndpoint(path string) (net.Listener, error) {
	return winio.ListenPipe(path, nil)
}
