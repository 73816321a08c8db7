//go:build !windows

package api

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PiranhaCodes/ttyproxy/internal/session"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	sock := filepath.Join(t.TempDir(), "ctl.sock")
	srv := NewServer(sock, "/bin/sh")
	go srv.Start()
	t.Cleanup(func() {
		session.CleanupAll()
		srv.Stop()
	})

	for i := 0; i < 100; i++ {
		if _, err := os.Stat(sock); err == nil {
			return sock
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("control socket never appeared")
	return ""
}

func roundTrip(t *testing.T, sock string, req Request) Response {
	t.Helper()
	conn, err := net.Dial("unix", sock)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, json.NewEncoder(conn).Encode(req))
	var resp Response
	require.NoError(t, json.NewDecoder(conn).Decode(&resp))
	return resp
}

func decodeData(t *testing.T, resp Response, into interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, into))
}

func TestUnknownAction(t *testing.T) {
	sock := startTestServer(t)
	resp := roundTrip(t, sock, Request{Action: "bogus"})
	require.False(t, resp.Ok)
	require.Contains(t, resp.Err, "unknown action")
}

func TestKillUnknownSession(t *testing.T) {
	sock := startTestServer(t)
	data, _ := json.Marshal(KillRequest{ID: "no-such-id"})
	resp := roundTrip(t, sock, Request{Action: "kill", Data: data})
	require.False(t, resp.Ok)
	require.Contains(t, resp.Err, "not found")
}

func TestSpawnListKill(t *testing.T) {
	sock := startTestServer(t)

	resp := roundTrip(t, sock, Request{Action: "spawn"})
	if !resp.Ok {
		t.Skipf("cannot spawn session: %s", resp.Err)
	}
	var spawned SpawnResponse
	decodeData(t, resp, &spawned)
	require.NotEmpty(t, spawned.ID)
	require.NotEmpty(t, spawned.Path)

	resp = roundTrip(t, sock, Request{Action: "list"})
	require.True(t, resp.Ok)
	var list ListResponse
	decodeData(t, resp, &list)
	found := false
	for _, info := range list.Sessions {
		if info.ID == spawned.ID {
			found = true
		}
	}
	require.True(t, found, "spawned session missing from list")

	data, _ := json.Marshal(ResizeRequest{ID: spawned.ID, Cols: 120, Rows: 40})
	resp = roundTrip(t, sock, Request{Action: "resize", Data: data})
	require.True(t, resp.Ok)

	data, _ = json.Marshal(KillRequest{ID: spawned.ID})
	resp = roundTrip(t, sock, Request{Action: "kill", Data: data})
	require.True(t, resp.Ok)
	require.Nil(t, session.DefaultManager.Get(spawned.ID))
}

func TestAttachStreamsTerminal(t *testing.T) {
	sock := startTestServer(t)

	resp := roundTrip(t, sock, Request{Action: "spawn"})
	if !resp.Ok {
		t.Skipf("cannot spawn session: %s", resp.Err)
	}
	var spawned SpawnResponse
	decodeData(t, resp, &spawned)

	conn, err := net.Dial("unix", sock)
	require.NoError(t, err)
	defer conn.Close()

	data, _ := json.Marshal(AttachRequest{ID: spawned.ID})
	require.NoError(t, json.NewEncoder(conn).Encode(Request{Action: "attach", Data: data}))
	var attachResp Response
	require.NoError(t, json.NewDecoder(conn).Decode(&attachResp))
	require.True(t, attachResp.Ok, attachResp.Err)

	// Type a command into the session's terminal and read its output
	// back through the proxied stream.
	_, err = conn.Write([]byte("echo tty-roundtrip\n"))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var out []byte
	buf := make([]byte, 4096)
	for !bytes.Contains(out, []byte("tty-roundtrip")) {
		n, err := conn.Read(buf)
		require.NoError(t, err, "terminal output so far: %q", out)
		out = append(out, buf[:n]...)
	}

	data, _ = json.Marshal(KillRequest{ID: spawned.ID})
	resp = roundTrip(t, sock, Request{Action: "kill", Data: data})
	require.True(t, resp.Ok)
}
