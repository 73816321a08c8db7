//go:build !windows

package tty

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	ptylib "github.com/creack/pty"

	"github.com/PiranhaCodes/ttyproxy/internal/fdio"
	"github.com/PiranhaCodes/ttyproxy/internal/termios"
)

// ErrSlaveConsumed reports a Spawn after the slave descriptor was already
// handed out, either by TakeSlave or by an earlier Spawn.
var ErrSlaveConsumed = errors.New("tty: slave already consumed")

// Server owns a freshly allocated PTY pair. The master stays with the
// Server for its whole lifetime; the slave is held until exactly one of
// TakeSlave or Spawn consumes it.
type Server struct {
	master *os.File
	slave  *os.File
	path   string
}

// NewServer allocates a new PTY. When template is non-nil its terminal
// attributes and window geometry are copied onto the new terminal, so the
// slave behaves like the template from the child's point of view. Any
// failure closes the pair and leaves nothing behind.
func NewServer(template *os.File) (*Server, error) {
	master, slave, err := ptylib.Open()
	if err != nil {
		return nil, fmt.Errorf("open pty: %w", err)
	}
	if template != nil {
		if err := applyTemplate(template, master, slave); err != nil {
			master.Close()
			slave.Close()
			return nil, err
		}
	}
	return &Server{master: master, slave: slave, path: slave.Name()}, nil
}

func applyTemplate(template, master, slave *os.File) error {
	attrs, err := termios.Get(int(template.Fd()))
	if err != nil {
		return fmt.Errorf("read template attributes: %w", err)
	}
	if err := termios.Set(int(slave.Fd()), attrs); err != nil {
		return fmt.Errorf("copy template attributes: %w", err)
	}
	ws, err := ptylib.GetsizeFull(template)
	if err != nil {
		return fmt.Errorf("read template size: %w", err)
	}
	if err := ptylib.Setsize(master, ws); err != nil {
		return fmt.Errorf("copy template size: %w", err)
	}
	return nil
}

// Master returns the master side of the PTY. The Server keeps ownership;
// callers must not close it.
func (s *Server) Master() *os.File {
	return s.master
}

// TakeSlave hands out the slave descriptor. Only the first call returns
// it; the slave may be consumed once, by TakeSlave or by Spawn, whichever
// comes first.
func (s *Server) TakeSlave() *os.File {
	slave := s.slave
	s.slave = nil
	return slave
}

// Path returns the slave device path, for diagnostics.
func (s *Server) Path() string {
	return s.path
}

// Spawn starts cmd with the slave as its stdin, stdout and stderr, in a
// new session with the slave as the controlling terminal. The parent-side
// slave descriptor is closed once the child holds its own copies;
// otherwise reads on the master would never reach end-of-file, even after
// the child and all its descendants exit. The slave is consumed whether
// or not the start succeeds.
func (s *Server) Spawn(cmd *exec.Cmd) error {
	slave := s.TakeSlave()
	if slave == nil {
		return ErrSlaveConsumed
	}
	defer slave.Close()

	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn on %s: %w", s.path, err)
	}
	return nil
}

// Resize updates the terminal geometry. Size changes of the peer terminal
// are not tracked automatically; callers decide when to push a new size.
func (s *Server) Resize(rows, cols uint16) error {
	return ptylib.Setsize(s.master, &ptylib.Winsize{Rows: rows, Cols: cols})
}

// NewClient binds peer to this server's master. The master handle stays
// owned by the Server.
func (s *Server) NewClient(peer *fdio.Handle) (*Client, error) {
	return NewClient(fdio.Borrowed(s.master), peer)
}

// Close releases the PTY pair. The slave is closed only if still held.
func (s *Server) Close() error {
	if s.slave != nil {
		s.slave.Close()
		s.slave = nil
	}
	return s.master.Close()
}
