package models

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/upload-widget-go/session"
	"github.com/moyoez/upload-widget-go/transfer"
	"github.com/moyoez/upload-widget-go/types"
)

type nopUploader struct{}

func (nopUploader) Upload(ctx context.Context, uctx types.UploadContext, file types.CandidateFile, body io.Reader) (*types.UploadResponseData, error) {
	_, err := io.Copy(io.Discard, body)
	return &types.UploadResponseData{Filename: file.Name}, err
}

func openWithFile(t *testing.T, store *SessionStore, spool *Spool) (*SessionEntry, string) {
	t.Helper()
	s := session.New(types.UploadContext{Modul: "m"}, nopUploader{}, session.WithBlobStore(spool))
	entry := store.Open(s)
	handle, written, _, err := spool.Save(context.Background(), strings.NewReader("%PDF-1.4"), 0)
	require.NoError(t, err)
	_, err = s.Select(types.CandidateFile{Name: "a.pdf", Size: written, MediaType: types.MediaTypePDF, Handle: handle})
	require.NoError(t, err)
	return entry, handle
}

func TestSessionStoreOpenGetDelete(t *testing.T) {
	store := NewSessionStore(time.Minute)
	spool := newTestSpool(t)
	entry, handle := openWithFile(t, store, spool)
	id := entry.Session.ID()

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Same(t, entry, got)
	assert.Equal(t, 1, store.Len())

	assert.True(t, store.Delete(id))
	assert.False(t, store.Delete(id))
	_, ok = store.Get(id)
	assert.False(t, ok)
	assert.Zero(t, store.Len())

	// deleting the session released its spooled file
	_, err := spool.Open(handle)
	assert.Error(t, err)
}

func TestSessionStoreGetUnknown(t *testing.T) {
	store := NewSessionStore(time.Minute)
	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestSessionStoreSweepExpired(t *testing.T) {
	store := NewSessionStore(30 * time.Millisecond)
	spool := newTestSpool(t)
	entry, handle := openWithFile(t, store, spool)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, store.Sweep())
	_, ok := store.Get(entry.Session.ID())
	assert.False(t, ok)
	_, err := spool.Open(handle)
	assert.Error(t, err)
	assert.Zero(t, store.Sweep())
}

func TestSessionStoreCloseAll(t *testing.T) {
	store := NewSessionStore(time.Minute)
	spool := newTestSpool(t)
	openWithFile(t, store, spool)
	openWithFile(t, store, spool)
	assert.Equal(t, 2, store.Len())

	store.CloseAll()
	assert.Zero(t, store.Len())
}

func TestAttachHooksBroadcastsOutcome(t *testing.T) {
	store := NewSessionStore(time.Minute)
	spool := newTestSpool(t)
	entry, _ := openWithFile(t, store, spool)

	_, err := entry.Session.Upload(context.Background())
	require.NoError(t, err)

	// the frame hub keeps the outcome for pages connecting later
	assert.JSONEq(t, `{"status":"success","message":"Dosya başarıyla yüklendi","fileName":"a.pdf","originalName":"","url":"","mimeType":""}`,
		string(entry.Frame.LastPayload()))
}

func TestAttachHooksOutcomeIsLastAfterEarlyBackendAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "disk full", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	store := NewSessionStore(time.Minute)
	spool := newTestSpool(t)
	s := session.New(types.UploadContext{Modul: "m"}, transfer.NewClient(srv.URL+"/", srv.Client()), session.WithBlobStore(spool))
	entry := store.Open(s)
	t.Cleanup(store.CloseAll)

	handle, written, _, err := spool.Save(context.Background(), bytes.NewReader(make([]byte, 8<<20)), 0)
	require.NoError(t, err)
	_, err = s.Select(types.CandidateFile{Name: "big.pdf", Size: written, MediaType: types.MediaTypePDF, Handle: handle})
	require.NoError(t, err)

	for range 20 {
		res, err := s.Upload(context.Background())
		require.NoError(t, err)
		assert.Equal(t, session.OutcomeFailure, res.Outcome)
		assert.ErrorIs(t, res.Err, transfer.ErrTransport)

		// no progress message may overtake the outcome
		status := string(entry.Status.LastPayload())
		assert.Contains(t, status, types.NotifyTypeSessionState)
		assert.NotContains(t, status, types.NotifyTypeUploadProgress)
		assert.Contains(t, string(entry.Frame.LastPayload()), `"status":"error"`)
	}
}
