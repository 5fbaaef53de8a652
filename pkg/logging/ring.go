package logging

import "sync"

// Ring is a fixed-capacity circular buffer of Records that overwrites the
// oldest entry once full. It is safe for concurrent use.
//
// A capacity of zero is legal and makes the buffer a black hole: pushes are
// no-ops and queries always return empty.
type Ring struct {
	mu    sync.Mutex
	buf   []Record
	head  int // next write position
	count int
}

// NewRing creates a Ring holding at most capacity records.
func NewRing(capacity int) *Ring {
	if capacity < 0 {
		capacity = 0
	}
	return &Ring{buf: make([]Record, capacity)}
}

// Push appends a record, overwriting the oldest one when full.
func (r *Ring) Push(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.buf) == 0 {
		return
	}
	r.buf[r.head] = rec
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// LastN returns the last min(n, Len()) records pushed, oldest first.
func (r *Ring) LastN(n int) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || r.count == 0 {
		return nil
	}
	if n > r.count {
		n = r.count
	}
	// Index of the oldest of the last n records. n <= count <= len(buf),
	// so head-n+len(buf) is never negative.
	start := (r.head - n + len(r.buf)) % len(r.buf)
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Len returns the number of retained records.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the buffer capacity.
func (r *Ring) Cap() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

// Clear discards all retained records, keeping the capacity.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.buf {
		r.buf[i] = Record{}
	}
	r.head = 0
	r.count = 0
}

// Reset discards all retained records and changes the capacity.
func (r *Ring) Reset(capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if capacity < 0 {
		capacity = 0
	}
	r.buf = make([]Record, capacity)
	r.head = 0
	r.count = 0
}
