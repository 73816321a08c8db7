//go:build !windows

package session

import (
	"log"
	"syscall"
	"time"
)

// killGrace is how long Cleanup waits for a SIGTERM'd child before
// escalating to SIGKILL.
const killGrace = 3 * time.Second

// Cleanup detaches any attached proxy, tears down the child process and
// releases the PTY, then removes the session from the default manager.
func Cleanup(sess *Session) {
	if sess == nil {
		return
	}
	log.Printf("[session] cleaning up %s", sess.ID)

	sess.Detach()

	if sess.Cmd.Process != nil {
		if err := sess.Cmd.Process.Signal(syscall.SIGTERM); err == nil {
			select {
			case <-sess.done:
			case <-time.After(killGrace):
				log.Printf("[session] %s: escalating to SIGKILL", sess.ID)
				sess.Cmd.Process.Kill()
				<-sess.done
			}
		}
	}

	sess.srv.Close()
	DefaultManager.Remove(sess.ID)
	log.Printf("[session] %s cleaned up", sess.ID)
}

// CleanupAll cleans up every registered session.
func CleanupAll() {
	for _, sess := range DefaultManager.List() {
		Cleanup(sess)
	}
}
