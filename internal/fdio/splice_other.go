//go:build !windows && !linux

package fdio

// xferState on platforms without splice: always the buffered copy.
type xferState struct {
	buf []byte
}

func (st *xferState) move(src, dst int) (int, error) {
	return st.copyChunk(src, dst)
}
