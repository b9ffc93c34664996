package resource

import (
	"context"
	"io"
)

// RateLimitedReaderAt paces reads from r with the controller's IO limit.
type RateLimitedReaderAt struct {
	r   io.ReaderAt
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReaderAt creates a RateLimitedReaderAt whose waits end with ctx.
func NewRateLimitedReaderAt(ctx context.Context, r io.ReaderAt, rc *Controller) *RateLimitedReaderAt {
	return &RateLimitedReaderAt{r: r, rc: rc, ctx: ctx}
}

// ReadAt implements io.ReaderAt.
func (r *RateLimitedReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.ReadAt(p, off)
}
