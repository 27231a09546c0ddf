//go:build windows

package monitor

import "golang.org/x/sys/windows"

// windowsManualResetEvent is the Windows cancellation primitive: a
// manual-reset event handle that joins the child's process handle in the
// same WaitForMultipleObjects call (monitor_windows.go).
type windowsManualResetEvent struct {
	handle windows.Handle
}

func newWindowsManualResetEvent() (*windowsManualResetEvent, error) {
	h, err := windows.CreateEvent(nil, 1 /* manual-reset */, 0 /* initially unset */, nil)
	if err != nil {
		return nil, err
	}
	return &windowsManualResetEvent{handle: h}, nil
}

func (e *windowsManualResetEvent) fire() error {
	return windows.SetEvent(e.handle)
}

func (e *windowsManualResetEvent) release() {
	if e.handle != 0 {
		windows.CloseHandle(e.handle)
		e.handle = 0
	}
}
