package models

import (
	"context"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/moyoez/upload-widget-go/api/notifyhub"
	"github.com/moyoez/upload-widget-go/session"
	"github.com/moyoez/upload-widget-go/tool"
)

// SessionEntry is one open widget: the upload session and its two channels.
type SessionEntry struct {
	Session *session.Session
	Status  *notifyhub.Hub // local status surface
	Frame   *notifyhub.Hub // embedding page
	Created time.Time
}

// Close releases the session blobs and disconnects listeners.
func (e *SessionEntry) Close() {
	e.Session.Close()
	e.Status.CloseAll()
	e.Frame.CloseAll()
}

// SessionStore keeps live sessions; a session expires after ttl without access.
type SessionStore struct {
	ttl   time.Duration
	mu    sync.Mutex
	cache *ttlworker.Cache[string, *SessionEntry]
	index map[string]*SessionEntry
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:   ttl,
		cache: ttlworker.NewCache[string, *SessionEntry](ttl),
		index: make(map[string]*SessionEntry),
	}
}

// Open registers s and wires its hooks to fresh hubs.
func (st *SessionStore) Open(s *session.Session) *SessionEntry {
	entry := &SessionEntry{
		Session: s,
		Status:  notifyhub.New("status:" + s.ID()),
		Frame:   notifyhub.New("frame:" + s.ID()),
		Created: time.Now(),
	}
	AttachHooks(entry)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.cache.Set(s.ID(), entry)
	st.index[s.ID()] = entry
	return entry
}

// Get returns the entry and refreshes its expiry.
func (st *SessionStore) Get(id string) (*SessionEntry, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	entry := st.cache.Get(id)
	if entry == nil {
		return nil, false
	}
	st.cache.Set(id, entry)
	return entry, true
}

// Delete closes and forgets the session.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	entry, ok := st.index[id]
	st.cache.Delete(id)
	delete(st.index, id)
	st.mu.Unlock()

	if ok {
		entry.Close()
	}
	return ok
}

// Len counts sessions that have not expired.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id := range st.index {
		if st.cache.Get(id) != nil {
			n++
		}
	}
	return n
}

// Sweep closes sessions the cache has expired. Returns how many were closed.
// Sessions with an upload in flight are kept until the transfer resolves.
func (st *SessionStore) Sweep() int {
	var expired []*SessionEntry
	st.mu.Lock()
	for id, entry := range st.index {
		if st.cache.Get(id) != nil {
			continue
		}
		if entry.Session.IsUploading() {
			st.cache.Set(id, entry)
			continue
		}
		expired = append(expired, entry)
		delete(st.index, id)
	}
	st.mu.Unlock()

	for _, entry := range expired {
		tool.DefaultLogger.Infof("[Session] Expired session %s", entry.Session.ID())
		entry.Close()
	}
	return len(expired)
}

// RunSweeper sweeps every interval until ctx is done.
func (st *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}

// CloseAll closes every session, used on shutdown.
func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	entries := st.index
	st.index = make(map[string]*SessionEntry)
	for id := range entries {
		st.cache.Delete(id)
	}
	st.mu.Unlock()

	for _, entry := range entries {
		entry.Close()
	}
}
