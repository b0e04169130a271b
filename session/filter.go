package session

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/moyoez/upload-widget-go/tool"
	"github.com/moyoez/upload-widget-go/types"
)

const (
	DefaultAccept      = "image/*,application/pdf"
	DefaultMaxFileSize = 100000000
)

// Filter is the file picker constraint applied before files reach a session.
type Filter struct {
	Accept      []string // exact types or "type/*" wildcards
	MaxFileSize int64
}

func DefaultFilter() Filter {
	return NewFilter(DefaultAccept, DefaultMaxFileSize)
}

// NewFilter parses a comma separated accept list.
func NewFilter(accept string, maxFileSize int64) Filter {
	f := Filter{MaxFileSize: maxFileSize}
	for _, a := range strings.Split(accept, ",") {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			f.Accept = append(f.Accept, a)
		}
	}
	return f
}

func (f Filter) AcceptString() string {
	return strings.Join(f.Accept, ",")
}

// Check validates one file; the returned error wraps ErrFileTooLarge or ErrMediaTypeRejected.
func (f Filter) Check(size int64, mediaType string) error {
	if f.MaxFileSize > 0 && size > f.MaxFileSize {
		return fmt.Errorf("%w, maximum upload size is %s", ErrFileTooLarge, tool.FormatSize(f.MaxFileSize))
	}
	if !f.accepts(mediaType) {
		return fmt.Errorf("%w, allowed file types: %s", ErrMediaTypeRejected, f.AcceptString())
	}
	return nil
}

func (f Filter) accepts(mediaType string) bool {
	if len(f.Accept) == 0 {
		return true
	}
	mediaType = baseMediaType(mediaType)
	if mediaType == "" {
		return false
	}
	for _, a := range f.Accept {
		if prefix, ok := strings.CutSuffix(a, "/*"); ok {
			if strings.HasPrefix(mediaType, prefix+"/") {
				return true
			}
			continue
		}
		if a == mediaType {
			return true
		}
	}
	return false
}

// SniffMediaType detects the type from the first bytes of a file and falls
// back to the declared type when detection is inconclusive.
func SniffMediaType(head []byte, declared string) string {
	detected := baseMediaType(mimetype.Detect(head).String())
	if detected == "" || detected == "application/octet-stream" {
		if d := baseMediaType(declared); d != "" {
			return d
		}
	}
	return detected
}

// Reject describes a refused file for the status surface.
func Reject(name string, size int64, mediaType string, err error) types.RejectedFile {
	return types.RejectedFile{
		Name:   name,
		Size:   size,
		Type:   mediaType,
		Reason: err.Error(),
	}
}

func baseMediaType(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}
