//go:build !windows

package termios

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestMakeRaw(t *testing.T) {
	var attrs unix.Termios
	attrs.Lflag = unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	attrs.Iflag = unix.IGNBRK | unix.ICRNL | unix.IXON
	attrs.Cc[unix.VMIN] = 0
	attrs.Cc[unix.VTIME] = 5

	raw := MakeRaw(&attrs)

	assert.Zero(t, raw.Lflag&(unix.ECHO|unix.ICANON|unix.ISIG))
	assert.Zero(t, raw.Iflag&(unix.IGNBRK|unix.ICRNL))
	assert.NotZero(t, raw.Iflag&unix.BRKINT)
	assert.EqualValues(t, 1, raw.Cc[unix.VMIN])
	assert.EqualValues(t, 0, raw.Cc[unix.VTIME])

	// Unrelated bits survive.
	assert.NotZero(t, raw.Lflag&unix.IEXTEN)
	assert.NotZero(t, raw.Iflag&unix.IXON)

	// The input snapshot is never modified.
	assert.NotZero(t, attrs.Lflag&unix.ECHO)
	assert.EqualValues(t, 5, attrs.Cc[unix.VTIME])
}
