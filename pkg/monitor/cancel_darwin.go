//go:build darwin

package monitor

import "golang.org/x/sys/unix"

// cancelUserIdent is the EVFILT_USER identifier the Monitor Loop registers
// on its kqueue alongside EVFILT_PROC for the child's pid (monitor_darwin.go).
// One kqueue per spawn, so a fixed ident is fine.
const cancelUserIdent = 1

// darwinKqueueCancel fires the kqueue's registered user event to wake the
// Monitor Loop's kevent wait without it having to poll. The kqueue
// descriptor itself is owned and closed by the Monitor Loop, not by this
// primitive: release is a no-op, matching the same "loop owns the
// descriptor" shape as the Linux pidfd.
type darwinKqueueCancel struct {
	kq int
}

func (c *darwinKqueueCancel) fire() error {
	kev := unix.Kevent_t{
		Ident:  cancelUserIdent,
		Filter: unix.EVFILT_USER,
		Fflags: unix.NOTE_TRIGGER,
	}
	_, err := unix.Kevent(c.kq, []unix.Kevent_t{kev}, nil, nil)
	return err
}

func (c *darwinKqueueCancel) release() {}
