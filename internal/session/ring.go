package session

import "sync"

// frameRing is a bounded FIFO of audio frames with drop-oldest overflow.
// Push never blocks: when the ring is full, the oldest frame is discarded
// to make room for the new one. The audio producer must never stall on a
// slow or disconnected transport.
type frameRing struct {
	mu      sync.Mutex
	frames  [][]byte
	head    int
	count   int
	dropped uint64

	// wake is signalled (capacity 1, coalescing) on every Push so the
	// consumer can sleep between bursts without missing frames.
	wake chan struct{}
}

func newFrameRing(capacity int) *frameRing {
	return &frameRing{
		frames: make([][]byte, capacity),
		wake:   make(chan struct{}, 1),
	}
}

// Push appends a copy of frame and reports whether the oldest buffered
// frame was discarded to make room. The copy keeps the ring safe against
// callers that reuse their frame buffer.
func (r *frameRing) Push(frame []byte) (evicted bool) {
	cp := make([]byte, len(frame))
	copy(cp, frame)

	r.mu.Lock()
	if r.count == len(r.frames) {
		r.frames[r.head] = nil
		r.head = (r.head + 1) % len(r.frames)
		r.count--
		r.dropped++
		evicted = true
	}
	r.frames[(r.head+r.count)%len(r.frames)] = cp
	r.count++
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	return evicted
}

// Pop removes and returns the oldest buffered frame.
func (r *frameRing) Pop() ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		return nil, false
	}
	f := r.frames[r.head]
	r.frames[r.head] = nil
	r.head = (r.head + 1) % len(r.frames)
	r.count--
	return f, true
}

// Clear discards every buffered frame and returns how many were held.
// Cleared frames do not count as dropped; they are audio the session
// owner chose not to send.
func (r *frameRing) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.count
	for i := range r.frames {
		r.frames[i] = nil
	}
	r.head, r.count = 0, 0
	return n
}

// Wake returns the channel signalled on every Push. Receiving once may
// cover any number of pushes; drain with Pop until it returns false.
func (r *frameRing) Wake() <-chan struct{} { return r.wake }

// Len returns the number of buffered frames.
func (r *frameRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Dropped returns the total number of frames discarded to overflow.
func (r *frameRing) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
