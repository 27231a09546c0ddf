//go:build windows

package monitor

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// dialEndpoint opens a named pipe by path and wraps it as an *os.File so
// os/exec can bind it directly to the child's stdio handle at process
// creation (spec §4.2). The handle is opened without FILE_FLAG_OVERLAPPED:
// the child inherits it as a plain synchronous handle, which is what
// CreateProcess needs for stdio redirection. Overlapped I/O (what
// github.com/Microsoft/go-winio's DialPipe gives you) is for the caller's
// own listening end, not for the handle handed to the child — that's why
// the supervisor dials with windows.CreateFile directly instead.
func dialEndpoint(ep Endpoint) (*os.File, error) {
	path, err := windows.UTF16PtrFromString(ep.Name)
	if err != nil {
		return nil, newError(KindEndpointConnectFailed, "encode endpoint path "+ep.Name, err)
	}

	sa := windows.SecurityAttributes{InheritHandle: 1}
	sa.Length = uint32(unsafe.Sizeof(sa))

	h, err := windows.CreateFile(
		path,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		&sa,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, newError(KindEndpointConnectFailed, "dial endpoint "+ep.Name, err)
	}

	return os.NewFile(uintptr(h), ep.Name), nil
}
