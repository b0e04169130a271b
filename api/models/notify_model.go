package models

import (
	"sync"

	"github.com/moyoez/upload-widget-go/notify"
	"github.com/moyoez/upload-widget-go/session"
	"github.com/moyoez/upload-widget-go/types"
)

// AttachHooks routes session events to the entry hubs: state and progress to
// the status surface, the outcome to both the status surface and the frame.
func AttachHooks(entry *SessionEntry) {
	var mu sync.Mutex
	lastPercent := -1
	entry.Session.SetHooks(session.Hooks{
		OnChange: func(st session.State) {
			notify.Send(entry.Status, types.Notification{
				Type: types.NotifyTypeSessionState,
				Data: map[string]any{"state": st},
			})
		},
		OnProgress: func(p session.Progress) {
			// one message per whole percent
			percent := 100
			if p.Total > 0 {
				percent = int(p.Sent * 100 / p.Total)
			}
			mu.Lock()
			if percent == lastPercent {
				mu.Unlock()
				return
			}
			lastPercent = percent
			mu.Unlock()
			notify.Send(entry.Status, notify.UploadProgress(p.FileID, p.Sent, p.Total))
		},
		OnResult: func(r session.Result) {
			mu.Lock()
			lastPercent = -1
			mu.Unlock()
			notify.Send(entry.Status, r.Status)
			notify.Send(entry.Frame, r.Frame)
		},
	})
}
