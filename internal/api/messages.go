package api

import "encoding/json"

// Request is one control request over the UNIX socket.
type Request struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Response answers a request.
type Response struct {
	Ok   bool        `json:"ok"`
	Err  string      `json:"err,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// SpawnRequest is the data for a spawn action. An empty shell falls back
// to the server default, then to autodetection.
type SpawnRequest struct {
	Shell string `json:"shell,omitempty"`
}

// SpawnResponse is the data returned from a spawn action.
type SpawnResponse struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// AttachRequest selects the session whose terminal the connection
// becomes. After the Ok response the connection carries raw terminal
// bytes in both directions; callers must not send terminal input before
// reading the response.
type AttachRequest struct {
	ID string `json:"id"`
}

// ResizeRequest is the data for a resize action.
type ResizeRequest struct {
	ID   string `json:"id"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

// KillRequest is the data for a kill action.
type KillRequest struct {
	ID string `json:"id"`
}

// ListResponse is the data returned from a list action.
type ListResponse struct {
	Sessions []SessionInfo `json:"sessions"`
	Count    int           `json:"count"`
}

// SessionInfo describes one session.
type SessionInfo struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Status string `json:"status"` // "active" or "exiting"
}
