package calculator

import "sync/atomic"

// RequestTracker tags in-flight calculations with monotonically increasing
// tokens so that results arriving after an input change can be dropped.
type RequestTracker struct {
	current atomic.Uint64
}

// Next starts a new calculation and returns its token.
func (t *RequestTracker) Next() uint64 {
	return t.current.Add(1)
}

// Invalidate marks every outstanding token as stale.
func (t *RequestTracker) Invalidate() {
	t.current.Add(1)
}

// IsCurrent reports whether token belongs to the latest calculation.
func (t *RequestTracker) IsCurrent(token uint64) bool {
	return token != 0 && t.current.Load() == token
}
