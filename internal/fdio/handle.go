package fdio

import "os"

// Handle wraps a file endpoint with explicit close semantics: a borrowed
// handle is never closed by its holder, an owned handle is closed exactly
// once on Close. The handle keeps the underlying file reachable, so the
// raw descriptor stays valid for the handle's lifetime.
type Handle struct {
	f      *os.File
	owned  bool
	closed bool
}

// Borrowed wraps f without taking ownership; Close is a no-op.
func Borrowed(f *os.File) *Handle {
	return &Handle{f: f}
}

// Owned wraps f and takes ownership; Close releases it.
func Owned(f *os.File) *Handle {
	return &Handle{f: f, owned: true}
}

// Fd returns the raw descriptor.
func (h *Handle) Fd() int {
	return int(h.f.Fd())
}

// Close releases the descriptor if the handle owns it. Safe to call more
// than once.
func (h *Handle) Close() error {
	if !h.owned || h.closed {
		return nil
	}
	h.closed = true
	return h.f.Close()
}
