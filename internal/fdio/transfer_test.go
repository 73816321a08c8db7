//go:build !windows

package fdio

import (
	"bytes"
	"io"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTransferLoopCopiesUntilEOF(t *testing.T) {
	srcR, srcW, err := os.Pipe()
	require.NoError(t, err)
	defer srcR.Close()
	dstR, dstW, err := os.Pipe()
	require.NoError(t, err)
	defer dstR.Close()
	defer dstW.Close()

	payload := bytes.Repeat([]byte("0123456789abcdef"), 512)
	go func() {
		srcW.Write(payload)
		srcW.Close()
	}()

	var stop atomic.Bool
	done := make(chan struct{})
	go func() {
		TransferLoop(&stop, int(srcR.Fd()), int(dstW.Fd()))
		close(done)
	}()

	got := make([]byte, len(payload))
	_, err = io.ReadFull(dstR, got)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("transfer loop did not exit after EOF")
	}
	require.False(t, stop.Load()) // the loop itself never sets the flag
}

func TestTransferLoopObservesStop(t *testing.T) {
	srcR, srcW, err := os.Pipe()
	require.NoError(t, err)
	defer srcR.Close()
	defer srcW.Close()
	dstR, dstW, err := os.Pipe()
	require.NoError(t, err)
	defer dstR.Close()
	defer dstW.Close()

	var stop atomic.Bool
	done := make(chan struct{})
	go func() {
		TransferLoop(&stop, int(srcR.Fd()), int(dstW.Fd()))
		close(done)
	}()

	// No data ever flows; the loop must still notice the flag at its
	// next poll boundary.
	stop.Store(true)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("transfer loop ignored the cancellation flag")
	}
}

func TestTransferLoopSourceCloseBeforeStart(t *testing.T) {
	srcR, srcW, err := os.Pipe()
	require.NoError(t, err)
	defer srcR.Close()
	srcW.Close()
	dstR, dstW, err := os.Pipe()
	require.NoError(t, err)
	defer dstR.Close()
	defer dstW.Close()

	var stop atomic.Bool
	done := make(chan struct{})
	go func() {
		TransferLoop(&stop, int(srcR.Fd()), int(dstW.Fd()))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("transfer loop did not exit on an already-closed source")
	}
}
