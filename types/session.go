package types

// BootstrapResponse carries the widget parameters; SessionId is set only when
// a session was opened.
type BootstrapResponse struct {
	SessionId   string        `json:"sessionId,omitempty"`
	Context     UploadContext `json:"context"`
	Accept      string        `json:"accept"`
	MaxFileSize int64         `json:"maxFileSize"`
}

// CapacityView is the soft capacity indicator shown in the widget header.
type CapacityView struct {
	Total     int64   `json:"total"`
	Max       int64   `json:"max"`
	Formatted string  `json:"formatted"` // e.g. "1.2MB / 100MB"
	Percent   float64 `json:"percent"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Running        bool   `json:"running"`
	Endpoint       string `json:"endpoint"`
	Sessions       int    `json:"sessions"`
	BackendChecked bool   `json:"backend_checked"`
	BackendAlive   bool   `json:"backend_alive"`
	BackendRttMs   int64  `json:"backend_rtt_ms,omitempty"`
	BackendError   string `json:"backend_error,omitempty"`
}
