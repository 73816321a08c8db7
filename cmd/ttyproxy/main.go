//go:build !windows

package main

import (
	"flag"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/PiranhaCodes/ttyproxy/internal/api"
	"github.com/PiranhaCodes/ttyproxy/internal/config"
	"github.com/PiranhaCodes/ttyproxy/internal/fdio"
	"github.com/PiranhaCodes/ttyproxy/internal/session"
	"github.com/PiranhaCodes/ttyproxy/internal/termios"
	"github.com/PiranhaCodes/ttyproxy/internal/tty"
)

func main() {
	daemon := flag.Bool("daemon", false, "Run the session control server instead of attaching a command")
	socketPath := flag.String("socket", "", "Control socket path (daemon mode; overrides $TTYPROXY_SOCKET)")
	flag.Parse()

	if *daemon {
		runDaemon(*socketPath)
		return
	}
	os.Exit(runAttach(flag.Args()))
}

// runAttach runs argv (or the detected shell) under a fresh PTY templated
// on the calling terminal and proxies it to stdin until the child exits.
func runAttach(argv []string) int {
	if len(argv) == 0 {
		shell, err := session.DetectShell()
		if err != nil {
			log.Fatalf("[tty] %v", err)
		}
		argv = []string{shell}
	}

	var template *os.File
	if _, err := termios.Get(int(os.Stdin.Fd())); err == nil {
		template = os.Stdin
	}

	srv, err := tty.NewServer(template)
	if err != nil {
		log.Fatalf("[tty] failed to allocate pty: %v", err)
	}
	defer srv.Close()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	if err := srv.Spawn(cmd); err != nil {
		log.Fatalf("[tty] failed to spawn %s: %v", argv[0], err)
	}

	client, err := srv.NewClient(fdio.Borrowed(os.Stdin))
	if err != nil {
		log.Fatalf("[tty] failed to bind terminal: %v", err)
	}
	client.Wait()
	client.Close()

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		log.Printf("[tty] wait: %v", err)
		return 1
	}
	return 0
}

// runDaemon serves the control socket until SIGINT or SIGTERM, then
// cleans up every session.
func runDaemon(socketOverride string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[ctl] failed to load config: %v", err)
	}
	if socketOverride != "" {
		cfg.SocketPath = socketOverride
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SocketPath), 0755); err != nil {
		log.Fatalf("[ctl] failed to create socket directory: %v", err)
	}

	server := api.NewServer(cfg.SocketPath, cfg.Shell)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("[ctl] server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("[ctl] shutting down...")
	session.CleanupAll()
	server.Stop()
	log.Println("[ctl] shutdown complete")
}
