//go:build !windows

package fdio

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// pollInterval bounds how long a loop can sit in poll without re-checking
// the stop flag, which in turn bounds shutdown latency. Milliseconds.
const pollInterval = 100

// chunkSize is the most a single transfer attempt moves.
const chunkSize = 64 * 1024

// TransferLoop moves bytes from src to dst until src reaches end-of-input,
// a transfer attempt fails, or stop is set. The flag is re-checked between
// attempts. Errors are not reported: the caller's exit hook folds every
// exit, clean or not, into the same cooperative shutdown.
func TransferLoop(stop *atomic.Bool, src, dst int) {
	var st xferState
	for !stop.Load() {
		fds := []unix.PollFd{{Fd: int32(src), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, pollInterval)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if n == 0 {
			continue // timeout, re-check the flag
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
			return
		}
		// POLLHUP without POLLIN still gets a transfer attempt, to
		// drain whatever the kernel buffered before the hangup.
		moved, err := st.move(src, dst)
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil || moved == 0 {
			return
		}
	}
}

// copyChunk is the buffered fallback: one read, fully written out.
func (st *xferState) copyChunk(src, dst int) (int, error) {
	if st.buf == nil {
		st.buf = make([]byte, chunkSize)
	}
	n, err := unix.Read(src, st.buf)
	if n <= 0 || err != nil {
		return 0, err
	}
	written := 0
	for written < n {
		w, err := unix.Write(dst, st.buf[written:n])
		if err != nil {
			return written, err
		}
		written += w
	}
	return written, nil
}
