//go:build !windows

package tty

import (
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	ptylib "github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, template *os.File) *Server {
	t.Helper()
	srv, err := NewServer(template)
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	return srv
}

func TestTakeSlaveOnce(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	slave := srv.TakeSlave()
	require.NotNil(t, slave)
	defer slave.Close()

	require.Nil(t, srv.TakeSlave())
	require.Nil(t, srv.TakeSlave())

	err := srv.Spawn(exec.Command("true"))
	require.ErrorIs(t, err, ErrSlaveConsumed)
}

func TestSpawnConsumesSlave(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	cmd := exec.Command("sh", "-c", "echo ready")
	require.NoError(t, srv.Spawn(cmd))
	defer cmd.Wait()

	require.Nil(t, srv.TakeSlave())

	// The child's output arrives on the master.
	out := make(chan string, 1)
	go func() {
		buf := make([]byte, 256)
		n, _ := srv.Master().Read(buf)
		out <- string(buf[:n])
	}()
	select {
	case s := <-out:
		require.Contains(t, s, "ready")
	case <-time.After(5 * time.Second):
		t.Fatal("no output from the spawned child")
	}
}

func TestSpawnTwice(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	cmd := exec.Command("true")
	require.NoError(t, srv.Spawn(cmd))
	defer cmd.Wait()

	err := srv.Spawn(exec.Command("true"))
	require.ErrorIs(t, err, ErrSlaveConsumed)
}

func TestTemplateGeometry(t *testing.T) {
	tmpl := newTestServer(t, nil)
	defer tmpl.Close()
	require.NoError(t, tmpl.Resize(40, 100))

	srv := newTestServer(t, tmpl.Master())
	defer srv.Close()

	ws, err := ptylib.GetsizeFull(srv.Master())
	require.NoError(t, err)
	require.EqualValues(t, 40, ws.Rows)
	require.EqualValues(t, 100, ws.Cols)
}

func TestPath(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()
	require.True(t, strings.HasPrefix(srv.Path(), "/dev/"), "unexpected slave path %q", srv.Path())
}
