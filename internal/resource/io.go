package resource

import (
	"context"
	"io"
)

// RateLimitedWriter wraps an io.Writer with IO rate limiting.
type RateLimitedWriter struct {
	ctx context.Context
	w   io.Writer
	rc  *Controller
}

// NewRateLimitedWriter creates a new RateLimitedWriter.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{ctx: ctx, w: w, rc: rc}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// RateLimitedReader wraps an io.Reader with IO rate limiting.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{ctx: ctx, r: r, rc: rc}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		// Charge what was actually read so short reads don't over-throttle.
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
