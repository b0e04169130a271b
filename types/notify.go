package types

import "github.com/bytedance/sonic"

// Notification types pushed to the local status surface.
const (
	NotifyTypeUploadSuccess  = "upload_success"
	NotifyTypeUploadError    = "upload_error"
	NotifyTypeUploadProgress = "upload_progress"
	NotifyTypeSelectRejected = "select_rejected"
	NotifyTypeSessionState   = "session_state"
)

// Severity levels, same vocabulary as the widget toast.
const (
	SeveritySuccess = "success"
	SeverityInfo    = "info"
	SeverityWarn    = "warn"
	SeverityError   = "error"
)

// Notification represents a message for the local status surface.
type Notification struct {
	Type     string         `json:"type,omitempty"`
	Severity string         `json:"severity,omitempty"`
	Title    string         `json:"title,omitempty"`   // toast summary
	Message  string         `json:"message,omitempty"` // toast detail
	Data     map[string]any `json:"data,omitempty"`
}

const (
	FrameStatusSuccess = "success"
	FrameStatusError   = "error"
)

// FrameMessage is the payload posted to the page embedding the widget.
type FrameMessage struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	MimeType     string `json:"mimeType"`
}

// MarshalJSON emits only status and message for error frames.
func (m FrameMessage) MarshalJSON() ([]byte, error) {
	if m.Status != FrameStatusSuccess {
		return sonic.Marshal(struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}{m.Status, m.Message})
	}
	type full FrameMessage
	return sonic.Marshal(full(m))
}
