package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var pdfHead = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

var pngHead = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestDefaultFilter(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, "image/*,application/pdf", f.AcceptString())
	assert.EqualValues(t, 100000000, f.MaxFileSize)
}

func TestFilterCheck(t *testing.T) {
	f := DefaultFilter()

	tests := []struct {
		name      string
		size      int64
		mediaType string
		wantErr   error
	}{
		{"pdf", 1024, "application/pdf", nil},
		{"png", 1024, "image/png", nil},
		{"jpeg with params", 1024, "image/jpeg; charset=binary", nil},
		{"uppercase", 1024, "APPLICATION/PDF", nil},
		{"exactly max", 100000000, "image/png", nil},
		{"over max", 100000001, "image/png", ErrFileTooLarge},
		{"text", 10, "text/plain", ErrMediaTypeRejected},
		{"zip", 10, "application/zip", ErrMediaTypeRejected},
		{"empty type", 10, "", ErrMediaTypeRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.Check(tt.size, tt.mediaType)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFilterWithoutAcceptAllowsAnyType(t *testing.T) {
	f := NewFilter(" , ", 0)
	assert.Empty(t, f.Accept)
	assert.NoError(t, f.Check(1<<40, "application/zip"))
}

func TestSniffMediaType(t *testing.T) {
	assert.Equal(t, "application/pdf", SniffMediaType(pdfHead, "application/octet-stream"))
	assert.Equal(t, "image/png", SniffMediaType(pngHead, "application/pdf"))
	// content wins over a misleading declaration
	assert.Equal(t, "text/plain", SniffMediaType([]byte("hello world"), "image/png"))
	// inconclusive content falls back to the declared type
	assert.Equal(t, "image/x-custom", SniffMediaType([]byte{0x00, 0x01, 0x02, 0xff}, "image/x-custom"))
}

func TestReject(t *testing.T) {
	f := DefaultFilter()
	r := Reject("big.png", 200000000, "image/png", f.Check(200000000, "image/png"))
	assert.Equal(t, "big.png", r.Name)
	assert.Contains(t, r.Reason, "invalid file size")
}
