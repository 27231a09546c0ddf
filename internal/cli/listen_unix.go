//go:build linux || darwin

package cli

import (
	"net"
	"os"
)

// listenEndpoint creates the listening end of a stdio endpoint as a
// Unix-domain stream socket, removing any stale socket file left over from
// a previous run at the same path first.
func listenEndpoint(path string) (net.Listener, error) {
	_ = os.Remove(path)
	return net.Listen("unix", path)
}
