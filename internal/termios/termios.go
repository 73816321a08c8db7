//go:build !windows

// Package termios reads and writes terminal attributes and derives the
// raw mode a peer terminal is placed in while it is proxied.
package termios

import "golang.org/x/sys/unix"

// Get returns the current terminal attributes of fd.
func Get(fd int) (*unix.Termios, error) {
	return unix.IoctlGetTermios(fd, ioctlReadTermios)
}

// Set applies attrs to fd immediately.
func Set(fd int, attrs *unix.Termios) error {
	return unix.IoctlSetTermios(fd, ioctlWriteTermios, attrs)
}

// SetFlush applies attrs to fd after draining pending output, discarding
// unread input. Flushing removes any ambiguity about which attribute set
// queued data would be processed under.
func SetFlush(fd int, attrs *unix.Termios) error {
	return unix.IoctlSetTermios(fd, ioctlWriteTermiosFlush, attrs)
}

// MakeRaw derives the proxy's raw mode from attrs: no echo, no canonical
// line assembly, no signal-generating characters, no CR-to-NL input
// translation; break conditions raise an interrupt instead of being
// ignored; reads complete after a single byte with no inter-byte timer.
// attrs is left untouched.
func MakeRaw(attrs *unix.Termios) *unix.Termios {
	raw := *attrs
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG
	raw.Iflag &^= unix.IGNBRK | unix.ICRNL
	raw.Iflag |= unix.BRKINT
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	return &raw
}
