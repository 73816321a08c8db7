//go:build !windows

// Package session tracks interactive shell sessions: each one pairs a PTY
// server with the process it spawned, plus at most one attached terminal
// proxy at a time.
package session

import (
	"fmt"
	"log"
	"math"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/PiranhaCodes/ttyproxy/internal/fdio"
	"github.com/PiranhaCodes/ttyproxy/internal/tty"
)

// Session is one running shell with its PTY.
type Session struct {
	ID  string
	Cmd *exec.Cmd

	srv  *tty.Server
	done chan struct{}

	mu     sync.Mutex
	client *tty.Client
}

// Spawn creates a new PTY, starts shell (autodetected when empty) on its
// slave and registers the session with the default manager.
func Spawn(shell string) (*Session, error) {
	if shell == "" {
		detected, err := DetectShell()
		if err != nil {
			return nil, fmt.Errorf("shell detection failed: %w", err)
		}
		shell = detected
	}

	srv, err := tty.NewServer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate pty: %w", err)
	}

	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	if err := srv.Spawn(cmd); err != nil {
		srv.Close()
		return nil, err
	}

	sess := &Session{
		ID:   uuid.New().String(),
		Cmd:  cmd,
		srv:  srv,
		done: make(chan struct{}),
	}
	DefaultManager.Add(sess)

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("[session] %s: process exited: %v", sess.ID, err)
		}
		close(sess.done)
	}()

	log.Printf("[session] spawned %s with shell %s on %s", sess.ID, shell, srv.Path())
	return sess, nil
}

// Path returns the session's slave device path.
func (s *Session) Path() string {
	return s.srv.Path()
}

// Attach binds peer to the session's terminal, detaching any previous
// proxy first. The returned client is owned by the session until the
// next Attach, Detach or Cleanup.
func (s *Session) Attach(peer *fdio.Handle) (*tty.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.Close()
	}
	client, err := s.srv.NewClient(peer)
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}

// Detach stops the attached proxy, if any.
func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
}

// DetachClient stops c and clears the attach slot only if c is still the
// attached proxy. A handler whose client was displaced by a later Attach
// must not tear down the newcomer.
func (s *Session) DetachClient(c *tty.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == c {
		s.client = nil
	}
	c.Close()
}

// Resize pushes a new geometry to the session's terminal.
func (s *Session) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 || cols > math.MaxUint16 || rows > math.MaxUint16 {
		return fmt.Errorf("invalid terminal size %dx%d", cols, rows)
	}
	return s.srv.Resize(uint16(rows), uint16(cols))
}

// Alive reports whether the child process is still running.
func (s *Session) Alive() bool {
	return s.Cmd.Process != nil && s.Cmd.Process.Signal(syscall.Signal(0)) == nil
}

// Wait blocks until the child process exits.
func (s *Session) Wait() {
	<-s.done
}
