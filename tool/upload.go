package tool

import (
	"context"
	"errors"
	"io"
)

var ErrCopyLimitExceeded = errors.New("copy limit exceeded")

const copyBufferSize = 256 * 1024

// CopyWithContext copies src to dst, stopping when ctx is done.
// A positive limit fails the copy with ErrCopyLimitExceeded once more than
// limit bytes arrive; the bytes already written are left to the caller.
func CopyWithContext(ctx context.Context, dst io.Writer, src io.Reader, limit int64) (int64, error) {
	reader := io.Reader(&contextReader{ctx: ctx, r: src})
	if limit > 0 {
		reader = io.LimitReader(reader, limit+1)
	}
	written, err := io.CopyBuffer(dst, reader, make([]byte, copyBufferSize))
	if err != nil {
		return written, err
	}
	if limit > 0 && written > limit {
		return written, ErrCopyLimitExceeded
	}
	return written, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
