//go:build linux || darwin

package monitor

import (
	"net"
	"os"
)

// dialEndpoint connects to a Unix-domain stream socket by filesystem path
// and hands back a duplicated *os.File. Handing os/exec a *os.File (rather
// than an arbitrary io.Writer) is what makes it duplicate the descriptor
// directly onto the child's fd 0/1/2 inside the forked child, before exec
// — the atomic "after fork, before exec" binding spec §4.2 requires,
// without the supervisor hand-rolling fork/exec itself.
func dialEndpoint(ep Endpoint) (*os.File, error) {
	conn, err := net.Dial("unix", ep.Name)
	if err != nil {
		return nil, newError(KindEndpointConnectFailed, "dial endpoint "+ep.Name, err)
	}
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		conn.Close()
		return nil, newError(KindEndpointConnectFailed, "endpoint "+ep.Name+" is not a stream socket", nil)
	}

	f, err := uc.File()
	// UnixConn.File dup()s the descriptor; the original must still be
	// closed via the net.Conn regardless of outcome.
	_ = uc.Close()
	if err != nil {
		return nil, newError(KindEndpointConnectFailed, "extract descriptor for "+ep.Name, err)
	}
	return f, nil
}
