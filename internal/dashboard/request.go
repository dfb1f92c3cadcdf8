package dashboard

import (
	"context"
	"time"
)

// request tracks the single in-flight round-trip a component may own.
//
// begin cancels whatever was running and hands out a new sequence number.
// Results are only applied when finish reports that their sequence is still
// the current one.
type request struct {
	seq    uint64
	cancel context.CancelFunc
}

func (r *request) begin(timeout time.Duration) (context.Context, uint64) {
	r.abort()
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	r.seq++
	r.cancel = cancel
	return ctx, r.seq
}

// abort cancels the in-flight request, if any. Its result becomes stale.
func (r *request) abort() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
		r.seq++
	}
}

// finish releases the request identified by seq. It returns false when seq is
// stale, in which case the result must be dropped.
func (r *request) finish(seq uint64) bool {
	if r.cancel == nil || seq != r.seq {
		return false
	}
	r.cancel()
	r.cancel = nil
	return true
}
