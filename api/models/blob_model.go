package models

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/moyoez/upload-widget-go/tool"
)

// SniffSize is the number of leading bytes kept for media type detection.
const SniffSize = 3072

var ErrInvalidHandle = errors.New("invalid blob handle")

// Spool keeps selected files on disk until they are uploaded or removed.
// A handle is the file name inside the spool directory.
type Spool struct {
	dir string
}

func NewSpool(dir string) (*Spool, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create spool dir failed: %w", err)
	}
	return &Spool{dir: dir}, nil
}

func (s *Spool) Dir() string { return s.dir }

// Save writes src to a new blob. It returns the handle, the byte count and the
// leading bytes for sniffing. Blobs larger than limit are discarded.
func (s *Spool) Save(ctx context.Context, src io.Reader, limit int64) (string, int64, []byte, error) {
	handle := tool.GenerateRandomUUID()
	path := filepath.Join(s.dir, handle)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", 0, nil, fmt.Errorf("create blob failed: %w", err)
	}

	head := make([]byte, SniffSize)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		_ = file.Close()
		_ = os.Remove(path)
		return "", 0, nil, fmt.Errorf("read upload failed: %w", err)
	}
	head = head[:n]

	written, err := tool.CopyWithContext(ctx, file, io.MultiReader(bytes.NewReader(head), src), limit)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", written, head, err
	}
	return handle, written, head, nil
}

// Open returns the bytes behind handle.
func (s *Spool) Open(handle string) (io.ReadCloser, error) {
	path, err := s.path(handle)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// OpenSeeker is Open for callers that need random access (PDF inspection).
func (s *Spool) OpenSeeker(handle string) (*os.File, error) {
	path, err := s.path(handle)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Release deletes the blob. Releasing a missing blob is not an error.
func (s *Spool) Release(handle string) error {
	path, err := s.path(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close removes the spool directory and everything in it.
func (s *Spool) Close() error {
	return os.RemoveAll(s.dir)
}

func (s *Spool) path(handle string) (string, error) {
	if !tool.IsValidID(handle) {
		return "", ErrInvalidHandle
	}
	return filepath.Join(s.dir, handle), nil
}
