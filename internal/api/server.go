//go:build !windows

// Package api serves the control protocol over a UNIX socket: spawn,
// list, resize and kill drive the session registry, and attach turns the
// connection into the raw byte stream of a session's terminal.
package api

import (
	"encoding/json"
	"log"
	"net"
	"os"

	"github.com/PiranhaCodes/ttyproxy/internal/fdio"
	"github.com/PiranhaCodes/ttyproxy/internal/session"
)

// Server accepts control connections on a UNIX socket.
type Server struct {
	socketPath   string
	defaultShell string
	listener     net.Listener
	stopChan     chan struct{}
}

// NewServer creates a new server instance. defaultShell may be empty, in
// which case spawn requests without a shell autodetect one.
func NewServer(socketPath, defaultShell string) *Server {
	return &Server{
		socketPath:   socketPath,
		defaultShell: defaultShell,
		stopChan:     make(chan struct{}),
	}
}

// Start listens on the socket and serves connections until Stop.
func (s *Server) Start() error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	s.listener = listener
	log.Printf("[ctl] listening on %s", s.socketPath)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopChan:
				return nil
			default:
				return err
			}
		}
		go s.handleConn(conn)
	}
}

// Stop stops the server and closes the listener.
func (s *Server) Stop() {
	close(s.stopChan)
	if s.listener != nil {
		s.listener.Close()
	}
	log.Println("[ctl] stopped")
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	var req Request
	if err := decoder.Decode(&req); err != nil {
		encoder.Encode(Response{Ok: false, Err: "invalid request: " + err.Error()})
		return
	}

	switch req.Action {
	case "spawn":
		s.handleSpawn(req.Data, encoder)
	case "list":
		s.handleList(encoder)
	case "resize":
		s.handleResize(req.Data, encoder)
	case "kill":
		s.handleKill(req.Data, encoder)
	case "attach":
		s.handleAttach(req.Data, conn, encoder)
	default:
		encoder.Encode(Response{Ok: false, Err: "unknown action: " + req.Action})
	}
}

func (s *Server) handleSpawn(data json.RawMessage, encoder *json.Encoder) {
	var req SpawnRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			encoder.Encode(Response{Ok: false, Err: "invalid spawn request: " + err.Error()})
			return
		}
	}
	shell := req.Shell
	if shell == "" {
		shell = s.defaultShell
	}

	sess, err := session.Spawn(shell)
	if err != nil {
		encoder.Encode(Response{Ok: false, Err: err.Error()})
		return
	}

	encoder.Encode(Response{
		Ok:   true,
		Data: SpawnResponse{ID: sess.ID, Path: sess.Path()},
	})
}

func (s *Server) handleList(encoder *json.Encoder) {
	sessions := session.DefaultManager.List()
	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		status := "active"
		if !sess.Alive() {
			status = "exiting"
		}
		infos = append(infos, SessionInfo{ID: sess.ID, Path: sess.Path(), Status: status})
	}

	encoder.Encode(Response{
		Ok:   true,
		Data: ListResponse{Sessions: infos, Count: len(infos)},
	})
}

func (s *Server) handleResize(data json.RawMessage, encoder *json.Encoder) {
	var req ResizeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		encoder.Encode(Response{Ok: false, Err: "invalid resize request: " + err.Error()})
		return
	}
	if req.Cols <= 0 || req.Rows <= 0 {
		encoder.Encode(Response{Ok: false, Err: "cols and rows must be positive"})
		return
	}

	sess := session.DefaultManager.Get(req.ID)
	if sess == nil {
		encoder.Encode(Response{Ok: false, Err: "session not found"})
		return
	}

	if err := sess.Resize(req.Cols, req.Rows); err != nil {
		encoder.Encode(Response{Ok: false, Err: err.Error()})
		return
	}
	encoder.Encode(Response{Ok: true})
}

func (s *Server) handleKill(data json.RawMessage, encoder *json.Encoder) {
	var req KillRequest
	if err := json.Unmarshal(data, &req); err != nil {
		encoder.Encode(Response{Ok: false, Err: "invalid kill request: " + err.Error()})
		return
	}

	sess := session.DefaultManager.Get(req.ID)
	if sess == nil {
		encoder.Encode(Response{Ok: false, Err: "session not found"})
		return
	}

	session.Cleanup(sess)
	encoder.Encode(Response{Ok: true})
}

// handleAttach answers the request, then hands the connection's
// descriptor to a terminal proxy until either side hangs up or the
// session is killed.
func (s *Server) handleAttach(data json.RawMessage, conn net.Conn, encoder *json.Encoder) {
	var req AttachRequest
	if err := json.Unmarshal(data, &req); err != nil {
		encoder.Encode(Response{Ok: false, Err: "invalid attach request: " + err.Error()})
		return
	}

	sess := session.DefaultManager.Get(req.ID)
	if sess == nil {
		encoder.Encode(Response{Ok: false, Err: "session not found"})
		return
	}

	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		encoder.Encode(Response{Ok: false, Err: "attach requires a unix socket connection"})
		return
	}
	file, err := unixConn.File()
	if err != nil {
		encoder.Encode(Response{Ok: false, Err: err.Error()})
		return
	}

	if err := encoder.Encode(Response{Ok: true}); err != nil {
		file.Close()
		return
	}

	client, err := sess.Attach(fdio.Owned(file))
	if err != nil {
		log.Printf("[ctl] attach %s: %v", sess.ID, err)
		file.Close()
		return
	}

	log.Printf("[ctl] attached to %s", sess.ID)
	client.Wait()
	sess.DetachClient(client)
	log.Printf("[ctl] detached from %s", sess.ID)
}
