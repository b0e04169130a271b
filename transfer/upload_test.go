package transfer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/upload-widget-go/types"
)

type capturedPart struct {
	name        string
	fileName    string
	contentType string
	value       string
}

type backend struct {
	mu     sync.Mutex
	path   string
	parts  []capturedPart
	status int
	body   string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reader, err := r.MultipartReader()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var parts []capturedPart
	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		v, _ := io.ReadAll(p)
		parts = append(parts, capturedPart{
			name:        p.FormName(),
			fileName:    p.FileName(),
			contentType: p.Header.Get("Content-Type"),
			value:       string(v),
		})
	}
	b.mu.Lock()
	b.path = r.URL.Path
	b.parts = parts
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.status)
	_, _ = io.WriteString(w, b.body)
}

func newBackend(t *testing.T, status int, body string) (*backend, *Client) {
	t.Helper()
	b := &backend{status: status, body: body}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, NewClient(srv.URL+"/", srv.Client())
}

var testContext = types.UploadContext{Modul: "stok", FirmaGuid: "F-1", FisTurId: "42", SatirGuid: "S-9"}

var testFile = types.CandidateFile{ID: "c1", Name: "fatura.pdf", Size: 11, MediaType: "application/pdf"}

func TestUploadWritesFieldsInOrder(t *testing.T) {
	b, client := newBackend(t, http.StatusOK, `{"success":true,"message":"ok","data":{"message":"Yüklendi","filename":"x1.pdf","originalName":"fatura.pdf","url":"/files/x1.pdf","mimeType":"application/pdf"}}`)

	data, err := client.Upload(context.Background(), testContext, testFile, strings.NewReader("%PDF-1.4 hi"))
	require.NoError(t, err)
	assert.Equal(t, &types.UploadResponseData{
		Message:      "Yüklendi",
		Filename:     "x1.pdf",
		OriginalName: "fatura.pdf",
		URL:          "/files/x1.pdf",
		MimeType:     "application/pdf",
	}, data)

	assert.Equal(t, "/api/uploads", b.path)
	require.Len(t, b.parts, 5)
	names := make([]string, 0, len(b.parts))
	for _, p := range b.parts {
		names = append(names, p.name)
	}
	assert.Equal(t, []string{FieldModul, FieldFirmaGuid, FieldFisTurId, FieldFile, FieldSatirGuid}, names)
	assert.Equal(t, "stok", b.parts[0].value)
	assert.Equal(t, "F-1", b.parts[1].value)
	assert.Equal(t, "42", b.parts[2].value)
	assert.Equal(t, "fatura.pdf", b.parts[3].fileName)
	assert.Equal(t, "application/pdf", b.parts[3].contentType)
	assert.Equal(t, "%PDF-1.4 hi", b.parts[3].value)
	assert.Equal(t, "S-9", b.parts[4].value)
}

func TestUploadEmptyContextFieldsAreSent(t *testing.T) {
	b, client := newBackend(t, http.StatusOK, `{"success":true,"data":{"filename":"a"}}`)

	_, err := client.Upload(context.Background(), types.UploadContext{}, testFile, strings.NewReader("x"))
	require.NoError(t, err)
	require.Len(t, b.parts, 5)
	assert.Equal(t, FieldSatirGuid, b.parts[4].name)
	assert.Empty(t, b.parts[4].value)
}

func TestUploadEndpointWithoutTrailingSlash(t *testing.T) {
	b := &backend{status: http.StatusOK, body: `{"success":true,"data":{}}`}
	srv := httptest.NewServer(b)
	defer srv.Close()

	_, err := NewClient(srv.URL+"/base", srv.Client()).Upload(context.Background(), testContext, testFile, strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/base/api/uploads", b.path)
}

func TestUploadFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"success":false}`, ErrTransport},
		{"not found", http.StatusNotFound, `not here`, ErrTransport},
		{"rejected", http.StatusOK, `{"success":false,"message":"quota"}`, ErrRejected},
		{"malformed", http.StatusOK, `<html>oops</html>`, ErrMalformedResponse},
		{"missing data", http.StatusOK, `{"success":true,"message":"ok"}`, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newBackend(t, tt.status, tt.body)
			_, err := client.Upload(context.Background(), testContext, testFile, strings.NewReader("body"))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// lateReader serves size zero bytes and counts reads made after done is set.
type lateReader struct {
	remaining int64
	done      atomic.Bool
	late      atomic.Int32
}

func (r *lateReader) Read(p []byte) (int, error) {
	if r.done.Load() {
		r.late.Add(1)
	}
	if r.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}
	clear(p)
	r.remaining -= int64(len(p))
	return len(p), nil
}

func TestUploadStopsReadingBodyAfterEarlyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL+"/", srv.Client())

	for range 20 {
		body := &lateReader{remaining: 8 << 20}
		_, err := client.Upload(context.Background(), testContext, testFile, body)
		body.done.Store(true)
		assert.ErrorIs(t, err, ErrTransport)

		time.Sleep(5 * time.Millisecond)
		assert.Zero(t, body.late.Load(), "body read after Upload returned")
	}
}

func TestUploadUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/"
	srv.Close()

	_, err := NewClient(url, nil).Upload(context.Background(), testContext, testFile, strings.NewReader("body"))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestUploadInvalidEndpoint(t *testing.T) {
	_, err := NewClient("ftp://example.com/", nil).Upload(context.Background(), testContext, testFile, strings.NewReader("body"))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestFilePartHeaderEscapesName(t *testing.T) {
	h := filePartHeader(types.CandidateFile{Name: `a"b.png`})
	assert.Equal(t, `form-data; name="file"; filename="a\"b.png"`, h.Get("Content-Disposition"))
	assert.Equal(t, "application/octet-stream", h.Get("Content-Type"))
}
