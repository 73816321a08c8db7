//go:build !windows

package tty

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/PiranhaCodes/ttyproxy/internal/fdio"
	"github.com/PiranhaCodes/ttyproxy/internal/termios"
)

// drainWindow bounds how long Close waits for the transfer loops before
// restoring terminal state and releasing the endpoints. A loop stuck in a
// transfer against a dead endpoint must not hold teardown hostage.
const drainWindow = 500 * time.Millisecond

// Client proxies a full terminal session between a PTY master and a peer
// descriptor. Each direction runs as two transfer loops chained through
// an intermediate pipe, so each endpoint's descriptor is touched by
// exactly one loop per direction. All four loops share one cancellation
// flag; the first to exit for any reason stops the whole binding. A
// Client is one-shot: once stopped it cannot be restarted.
type Client struct {
	master *fdio.Handle
	peer   *fdio.Handle

	// attrs is the peer snapshot taken before raw mode was applied,
	// nil when the peer is not a terminal.
	attrs *unix.Termios

	masterFlags  int
	masterAppend bool
	peerFlags    int
	peerAppend   bool

	pipes [4]*os.File

	stop      atomic.Bool
	done      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewClient puts peer into raw mode and starts proxying between master
// and peer. On error no loop is left running and both endpoints are back
// in their original state.
func NewClient(master, peer *fdio.Handle) (*Client, error) {
	c := &Client{master: master, peer: peer, done: make(chan struct{})}

	attrs, err := termios.Get(peer.Fd())
	switch err {
	case nil:
		if err := termios.SetFlush(peer.Fd(), termios.MakeRaw(attrs)); err != nil {
			return nil, fmt.Errorf("set peer raw mode: %w", err)
		}
		c.attrs = attrs
	case unix.ENOTTY, unix.ENXIO, unix.ENODEV:
		// Not a terminal: nothing to configure or restore.
	default:
		return nil, fmt.Errorf("read peer attributes: %w", err)
	}

	fail := func(err error) (*Client, error) {
		for _, p := range c.pipes {
			if p != nil {
				p.Close()
			}
		}
		if c.peerAppend {
			fdio.SetStatusFlags(peer.Fd(), c.peerFlags)
		}
		if c.masterAppend {
			fdio.SetStatusFlags(master.Fd(), c.masterFlags)
		}
		if c.attrs != nil {
			termios.SetFlush(peer.Fd(), c.attrs)
		}
		return nil, err
	}

	// One intermediate pipe per direction.
	m2pR, m2pW, err := os.Pipe()
	if err != nil {
		return fail(fmt.Errorf("master-to-peer pipe: %w", err))
	}
	c.pipes[0], c.pipes[1] = m2pR, m2pW
	p2mR, p2mW, err := os.Pipe()
	if err != nil {
		return fail(fmt.Errorf("peer-to-master pipe: %w", err))
	}
	c.pipes[2], c.pipes[3] = p2mR, p2mW

	c.peerFlags, c.peerAppend, err = fdio.UnsetAppendFlag(peer.Fd())
	if err != nil {
		return fail(fmt.Errorf("clear peer append flag: %w", err))
	}
	c.masterFlags, c.masterAppend, err = fdio.UnsetAppendFlag(master.Fd())
	if err != nil {
		return fail(fmt.Errorf("clear master append flag: %w", err))
	}

	c.startLoop(master.Fd(), int(m2pW.Fd()))
	c.startLoop(int(m2pR.Fd()), peer.Fd())
	c.startLoop(peer.Fd(), int(p2mW.Fd()))
	c.startLoop(int(p2mR.Fd()), master.Fd())

	return c, nil
}

func (c *Client) startLoop(src, dst int) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fdio.TransferLoop(&c.stop, src, dst)
		c.markStopped()
	}()
}

// markStopped sets the shared cancellation flag and fires the one-shot
// stop notification. Concurrent calls collapse into one; the flag is
// never cleared again.
func (c *Client) markStopped() {
	c.stop.Store(true)
	c.stopOnce.Do(func() { close(c.done) })
}

// Wait blocks until the binding has stopped, for whatever reason: the
// peer hung up, the child released the PTY, a transfer failed, or Close
// was called. It returns immediately once stopped and may be called any
// number of times, from any goroutine.
func (c *Client) Wait() {
	<-c.done
}

// Close stops the binding and restores the peer's terminal attributes and
// every append flag cleared during construction. Restoration works from
// the construction-time snapshots and is best effort: Close never reports
// an error, because teardown must always run to completion. Idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.markStopped()

		// Closing the intermediate pipes kicks loops out of any
		// transfer the flag alone cannot interrupt.
		for _, p := range c.pipes {
			if p != nil {
				p.Close()
			}
		}

		drained := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-time.After(drainWindow):
		}

		if c.attrs != nil {
			termios.SetFlush(c.peer.Fd(), c.attrs)
		}
		if c.peerAppend {
			fdio.SetStatusFlags(c.peer.Fd(), c.peerFlags)
		}
		if c.masterAppend {
			fdio.SetStatusFlags(c.master.Fd(), c.masterFlags)
		}

		c.master.Close()
		c.peer.Close()
	})
	return nil
}
