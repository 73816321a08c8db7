// Package tty allocates pseudo-terminals and proxies interactive terminal
// sessions. Server owns a freshly allocated PTY pair and can spawn a child
// process bound to the slave as its session leader; Client binds the
// master to an arbitrary peer descriptor in raw mode and shuttles bytes
// both ways until either side hangs up, restoring terminal and descriptor
// state on teardown.
package tty
