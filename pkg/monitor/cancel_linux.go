//go:build linux

package monitor

import "golang.org/x/sys/unix"

// linuxEventFD is the Linux cancellation primitive: a countable event
// descriptor fed into the same unix.Poll call that waits on the child's
// pidfd (monitor_linux.go), so cancellation wakes the Monitor Loop without
// a busy spin.
type linuxEventFD struct {
	fd int
}

func newLinuxEventFD() (*linuxEventFD, error) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &linuxEventFD{fd: fd}, nil
}

func (e *linuxEventFD) fire() error {
	var buf [8]byte
	buf[0] = 1
	_, err := unix.Write(e.fd, buf[:])
	return err
}

func (e *linuxEventFD) release() {
	if e.fd >= 0 {
		unix.Close(e.fd)
		e.fd = -1
	}
}
