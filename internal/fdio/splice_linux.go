//go:build linux

package fdio

import "golang.org/x/sys/unix"

// xferState carries the per-loop transfer strategy. Every pairing the
// proxy builds has a pipe on one side, so splice applies; EINVAL (no pipe
// end, as in direct endpoint-to-endpoint use) demotes the loop to
// buffered copying for good.
type xferState struct {
	noSplice bool
	buf      []byte
}

func (st *xferState) move(src, dst int) (int, error) {
	if !st.noSplice {
		n, err := unix.Splice(src, nil, dst, nil, chunkSize, unix.SPLICE_F_MOVE)
		if err != unix.EINVAL {
			return int(n), err
		}
		st.noSplice = true
	}
	return st.copyChunk(src, dst)
}
