package audio

// Framer re-chunks arbitrary-length writes into fixed-size frames. Reads
// from a pipe or socket rarely land on frame boundaries; the Framer carries
// the remainder between pushes so every emitted frame is exactly size
// bytes. Not safe for concurrent use.
type Framer struct {
	size  int
	carry []byte
}

// NewFramer returns a Framer emitting frames of size bytes. Panics when
// size is not positive.
func NewFramer(size int) *Framer {
	if size <= 0 {
		panic("audio: frame size must be positive")
	}
	return &Framer{size: size, carry: make([]byte, 0, size)}
}

// Push appends p and invokes emit once per completed frame. The slice
// passed to emit is only valid for the duration of the call; callers that
// retain frames must copy them.
func (f *Framer) Push(p []byte, emit func(frame []byte)) {
	// Top up a partially buffered frame first.
	if len(f.carry) > 0 {
		need := f.size - len(f.carry)
		if need > len(p) {
			f.carry = append(f.carry, p...)
			return
		}
		f.carry = append(f.carry, p[:need]...)
		emit(f.carry)
		f.carry = f.carry[:0]
		p = p[need:]
	}

	for len(p) >= f.size {
		emit(p[:f.size])
		p = p[f.size:]
	}
	f.carry = append(f.carry, p...)
}

// Buffered reports how many bytes are waiting for the next frame boundary.
func (f *Framer) Buffered() int { return len(f.carry) }

// Flush emits the buffered remainder as a final frame padded to full size
// with silence. Int16 PCM silence is all-zero bytes, so the padding adds no
// artifacts. No-op when nothing is buffered.
func (f *Framer) Flush(emit func(frame []byte)) {
	if len(f.carry) == 0 {
		return
	}
	frame := make([]byte, f.size)
	copy(frame, f.carry)
	f.carry = f.carry[:0]
	emit(frame)
}
