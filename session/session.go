// Package session holds the upload session state machine: selection, preview,
// a single transfer per upload action and the outcome report.
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/moyoez/upload-widget-go/notify"
	"github.com/moyoez/upload-widget-go/tool"
	"github.com/moyoez/upload-widget-go/types"
)

type Outcome string

const (
	OutcomeIdle    Outcome = "idle"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Uploader transmits one file with its upload context.
type Uploader interface {
	Upload(ctx context.Context, uctx types.UploadContext, file types.CandidateFile, body io.Reader) (*types.UploadResponseData, error)
}

// BlobStore resolves the local preview handle of a candidate to its bytes.
type BlobStore interface {
	Open(handle string) (io.ReadCloser, error)
	Release(handle string) error
}

// State is a copy of the session state at one point in time.
type State struct {
	ID        string                `json:"id"`
	Context   types.UploadContext   `json:"context"`
	Files     []types.CandidateFile `json:"files"`
	TotalSize int64                 `json:"totalSize"`
	Preview   string                `json:"preview,omitempty"`
	Outcome   Outcome               `json:"outcome"`
	Uploading bool                  `json:"uploading"`
}

// Progress reports bytes written to the transport for the file in flight.
type Progress struct {
	FileID string `json:"fileId"`
	Sent   int64  `json:"sent"`
	Total  int64  `json:"total"`
}

// Result is the outcome of one upload action.
type Result struct {
	Outcome Outcome             `json:"outcome"`
	File    types.CandidateFile `json:"file"`
	Status  types.Notification  `json:"status"`
	Frame   types.FrameMessage  `json:"frame"`
	Err     error               `json:"-"`
}

// Hooks are invoked outside the session lock. Any of them may be nil.
type Hooks struct {
	OnChange   func(State)
	OnProgress func(Progress)
	OnResult   func(Result)
}

type Session struct {
	id       string
	uctx     types.UploadContext
	uploader Uploader
	blobs    BlobStore
	hooks    Hooks
	now      func() time.Time

	mu        sync.Mutex
	files     []types.CandidateFile
	preview   string
	outcome   Outcome
	uploading bool
}

type Option func(*Session)

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func WithBlobStore(b BlobStore) Option {
	return func(s *Session) { s.blobs = b }
}

func WithHooks(h Hooks) Option {
	return func(s *Session) { s.hooks = h }
}

// New creates an idle session bound to uctx.
func New(uctx types.UploadContext, uploader Uploader, opts ...Option) *Session {
	s := &Session{
		uctx:     uctx,
		uploader: uploader,
		outcome:  OutcomeIdle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = tool.GenerateRandomUUID()
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Context() types.UploadContext { return s.uctx }

// SetHooks replaces the hooks. Used when the listeners are created after the session.
func (s *Session) SetHooks(h Hooks) {
	s.mu.Lock()
	s.hooks = h
	s.mu.Unlock()
}

// Select appends files to the candidate list. Files without an ID get one.
// Nothing is appended if any descriptor has a negative size.
func (s *Session) Select(files ...types.CandidateFile) ([]types.CandidateFile, error) {
	for _, f := range files {
		if f.Size < 0 {
			return nil, ErrInvalidCandidate
		}
	}
	added := make([]types.CandidateFile, 0, len(files))
	now := s.now()
	for _, f := range files {
		if f.ID == "" {
			f.ID = tool.GenerateRandomUUID()
		}
		if f.SelectedAt.IsZero() {
			f.SelectedAt = now
		}
		added = append(added, f)
	}

	s.mu.Lock()
	s.files = append(s.files, added...)
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.emitChange(state)
	return added, nil
}

// Remove drops one candidate. Removing an unknown id is a no-op.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.files[idx]
	s.files = append(s.files[:idx:idx], s.files[idx+1:]...)
	if s.preview == id {
		s.preview = ""
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.release(removed)
	s.emitChange(state)
	return true
}

// ClearAll drops every candidate and the preview target.
func (s *Session) ClearAll() {
	s.mu.Lock()
	dropped := s.files
	s.files = nil
	s.preview = ""
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.release(dropped...)
	s.emitChange(state)
}

// SetPreview sets the single preview target; an empty id clears it.
func (s *Session) SetPreview(id string) error {
	s.mu.Lock()
	if id != "" && s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return ErrUnknownCandidate
	}
	s.preview = id
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.emitChange(state)
	return nil
}

// ClearPreview closes the preview pane.
func (s *Session) ClearPreview() {
	s.mu.Lock()
	s.preview = ""
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.emitChange(state)
}

// TogglePreview shows id, or hides it when it is already the preview target.
// Returns the new preview target.
func (s *Session) TogglePreview(id string) (string, error) {
	s.mu.Lock()
	current := s.preview
	s.mu.Unlock()
	if current == id {
		s.ClearPreview()
		return "", nil
	}
	if err := s.SetPreview(id); err != nil {
		return current, err
	}
	return id, nil
}

// Preview returns the preview target, if any.
func (s *Session) Preview() (types.CandidateFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(s.preview); idx >= 0 {
		return s.files[idx], true
	}
	return types.CandidateFile{}, false
}

// Lookup returns the candidate with the given id.
func (s *Session) Lookup(id string) (types.CandidateFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.files[idx], true
	}
	return types.CandidateFile{}, false
}

func (s *Session) IsUploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Upload transmits the first candidate only, whatever the number selected.
// Transfer failures are reported through the Result, not the error; the error
// is set only when no transfer was attempted.
//
// The result is applied when the transfer resolves even if the candidate list
// changed meanwhile: success clears every candidate, failure leaves the list as is.
func (s *Session) Upload(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.uploading {
		s.mu.Unlock()
		return Result{}, ErrUploadInFlight
	}
	if len(s.files) == 0 {
		s.mu.Unlock()
		return Result{}, ErrNoCandidates
	}
	first := s.files[0]
	s.uploading = true
	state := s.snapshotLocked()
	s.mu.Unlock()
	s.emitChange(state)

	data, err := s.transfer(ctx, first)

	result := Result{File: first}
	var dropped []types.CandidateFile
	s.mu.Lock()
	s.uploading = false
	if err != nil {
		result.Outcome = OutcomeFailure
		result.Err = err
		result.Status, result.Frame = notify.UploadFailed()
	} else {
		result.Outcome = OutcomeSuccess
		result.Status, result.Frame = notify.UploadSucceeded(*data)
		dropped = s.files
		s.files = nil
		s.preview = ""
	}
	s.outcome = result.Outcome
	state = s.snapshotLocked()
	hooks := s.hooks
	s.mu.Unlock()

	if err != nil {
		tool.DefaultLogger.Errorf("Upload error: session=%s file=%s: %v", s.id, first.Name, err)
	} else {
		tool.DefaultLogger.Infof("Upload completed: session=%s file=%s stored as %s", s.id, first.Name, data.Filename)
	}
	s.release(dropped...)
	if hooks.OnResult != nil {
		hooks.OnResult(result)
	}
	s.emitChange(state)
	return result, nil
}

// Close releases every blob still held by the session.
func (s *Session) Close() {
	s.mu.Lock()
	dropped := s.files
	s.files = nil
	s.preview = ""
	s.mu.Unlock()
	s.release(dropped...)
}

func (s *Session) transfer(ctx context.Context, file types.CandidateFile) (*types.UploadResponseData, error) {
	if s.blobs == nil {
		return nil, ErrNoBlobStore
	}
	body, err := s.blobs.Open(file.Handle)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close file body: %v", err)
		}
	}()

	reader := io.Reader(body)
	s.mu.Lock()
	onProgress := s.hooks.OnProgress
	s.mu.Unlock()
	if onProgress != nil {
		reader = &progressReader{r: body, fileID: file.ID, total: file.Size, report: onProgress}
	}
	return s.uploader.Upload(ctx, s.uctx, file, reader)
}

func (s *Session) release(files ...types.CandidateFile) {
	if s.blobs == nil {
		return
	}
	for _, f := range files {
		if f.Handle == "" {
			continue
		}
		if err := s.blobs.Release(f.Handle); err != nil {
			tool.DefaultLogger.Warnf("Failed to release %s: %v", f.Name, err)
		}
	}
}

func (s *Session) emitChange(state State) {
	s.mu.Lock()
	onChange := s.hooks.OnChange
	s.mu.Unlock()
	if onChange != nil {
		onChange(state)
	}
}

func (s *Session) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, f := range s.files {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// snapshotLocked recomputes the total from the live candidates.
func (s *Session) snapshotLocked() State {
	files := make([]types.CandidateFile, len(s.files))
	copy(files, s.files)
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return State{
		ID:        s.id,
		Context:   s.uctx,
		Files:     files,
		TotalSize: total,
		Preview:   s.preview,
		Outcome:   s.outcome,
		Uploading: s.uploading,
	}
}

type progressReader struct {
	r      io.Reader
	fileID string
	sent   int64
	total  int64
	report func(Progress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(Progress{FileID: p.fileID, Sent: p.sent, Total: p.total})
	}
	return n, err
}
