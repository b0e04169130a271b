package notify

import (
	"fmt"
	"strings"

	"github.com/moyoez/upload-widget-go/tool"
	"github.com/moyoez/upload-widget-go/types"
)

// Fixed texts shown by the widget.
const (
	SuccessSummary    = "Success"
	SuccessDetail     = "Dosya başarıyla yüklendi"
	ErrorSummary      = "Error"
	ErrorDetail       = "File Upload Failed"
	FrameErrorMessage = "Dosya yüklenirken hata oluştu"
	RejectedSummary   = "Warning"
)

// Broadcaster delivers a payload to every listener of one channel.
type Broadcaster interface {
	Broadcast(payload any)
}

// UploadSucceeded builds the status toast and the frame message for a stored file.
// The frame fields mirror the backend data object.
func UploadSucceeded(data types.UploadResponseData) (types.Notification, types.FrameMessage) {
	message := data.Message
	if message == "" {
		message = SuccessDetail
	}
	status := types.Notification{
		Type:     types.NotifyTypeUploadSuccess,
		Severity: types.SeveritySuccess,
		Title:    SuccessSummary,
		Message:  SuccessDetail,
		Data: map[string]any{
			"fileName":     data.Filename,
			"originalName": data.OriginalName,
		},
	}
	frame := types.FrameMessage{
		Status:       types.FrameStatusSuccess,
		Message:      message,
		FileName:     data.Filename,
		OriginalName: data.OriginalName,
		URL:          data.URL,
		MimeType:     data.MimeType,
	}
	return status, frame
}

// UploadFailed builds the generic failure pair. The cause is never included.
func UploadFailed() (types.Notification, types.FrameMessage) {
	status := types.Notification{
		Type:     types.NotifyTypeUploadError,
		Severity: types.SeverityError,
		Title:    ErrorSummary,
		Message:  ErrorDetail,
	}
	frame := types.FrameMessage{
		Status:  types.FrameStatusError,
		Message: FrameErrorMessage,
	}
	return status, frame
}

// SelectionRejected builds a warning for files refused by the picker filter.
func SelectionRejected(rejected []types.RejectedFile) types.Notification {
	lines := make([]string, 0, len(rejected))
	for _, r := range rejected {
		lines = append(lines, fmt.Sprintf("%s: %s", r.Name, r.Reason))
	}
	return types.Notification{
		Type:     types.NotifyTypeSelectRejected,
		Severity: types.SeverityWarn,
		Title:    RejectedSummary,
		Message:  strings.Join(lines, "\n"),
		Data: map[string]any{
			"files": rejected,
		},
	}
}

// UploadProgress reports transfer progress for the header bar.
func UploadProgress(fileID string, sent, total int64) types.Notification {
	percent := 0.0
	if total > 0 {
		percent = float64(sent) * 100 / float64(total)
	}
	return types.Notification{
		Type:     types.NotifyTypeUploadProgress,
		Severity: types.SeverityInfo,
		Data: map[string]any{
			"fileId":  fileID,
			"sent":    sent,
			"total":   total,
			"percent": percent,
		},
	}
}

// Send pushes payload to b when a broadcaster is attached.
func Send(b Broadcaster, payload any) {
	if b == nil {
		return
	}
	b.Broadcast(payload)
	if n, ok := payload.(types.Notification); ok && n.Type != types.NotifyTypeUploadProgress {
		tool.DefaultLogger.Debugf("[Notify] %s: %s - %s", n.Type, n.Title, n.Message)
	}
}
