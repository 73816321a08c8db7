//go:build !windows

package fdio

import "golang.org/x/sys/unix"

// StatusFlags returns the descriptor status flags (F_GETFL).
func StatusFlags(fd int) (int, error) {
	return unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
}

// SetStatusFlags replaces the descriptor status flags (F_SETFL).
func SetStatusFlags(fd int, flags int) error {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags)
	return err
}

// UnsetAppendFlag clears O_APPEND on fd if it is set. Append mode forces
// every write to the end of the underlying object, which conflicts with
// the transfer primitive's positional writes. It returns the original
// flags and whether anything was cleared, so the caller can put the
// descriptor back with SetStatusFlags.
func UnsetAppendFlag(fd int) (orig int, cleared bool, err error) {
	flags, err := StatusFlags(fd)
	if err != nil {
		return 0, false, err
	}
	if flags&unix.O_APPEND == 0 {
		return 0, false, nil
	}
	if err := SetStatusFlags(fd, flags&^unix.O_APPEND); err != nil {
		return 0, false, err
	}
	return flags, true, nil
}
