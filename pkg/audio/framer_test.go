package audio_test

import (
	"bytes"
	"slices"
	"testing"

	"github.com/ieum-ai/ieum/pkg/audio"
)

// collectFrames returns an emit callback that clones every frame into dst.
func collectFrames(dst *[][]byte) func([]byte) {
	return func(frame []byte) {
		*dst = append(*dst, slices.Clone(frame))
	}
}

func seq(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestFramerExactMultiple(t *testing.T) {
	var frames [][]byte
	f := audio.NewFramer(4)
	f.Push(seq(8), collectFrames(&frames))

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if !bytes.Equal(frames[0], []byte{0, 1, 2, 3}) || !bytes.Equal(frames[1], []byte{4, 5, 6, 7}) {
		t.Errorf("frame contents wrong: %v", frames)
	}
	if f.Buffered() != 0 {
		t.Errorf("expected empty carry, got %d bytes", f.Buffered())
	}
}

func TestFramerCarriesRemainder(t *testing.T) {
	var frames [][]byte
	emit := collectFrames(&frames)
	f := audio.NewFramer(4)

	f.Push(seq(6), emit)
	if len(frames) != 1 || f.Buffered() != 2 {
		t.Fatalf("after 6 bytes: frames=%d buffered=%d", len(frames), f.Buffered())
	}

	f.Push([]byte{6, 7}, emit)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if !bytes.Equal(frames[1], []byte{4, 5, 6, 7}) {
		t.Errorf("second frame: got %v, want [4 5 6 7]", frames[1])
	}
}

func TestFramerSmallPushes(t *testing.T) {
	var frames [][]byte
	emit := collectFrames(&frames)
	f := audio.NewFramer(5)

	for i := 0; i < 3; i++ {
		f.Push([]byte{byte(i * 2), byte(i*2 + 1)}, emit)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if !bytes.Equal(frames[0], []byte{0, 1, 2, 3, 4}) {
		t.Errorf("frame: got %v, want [0 1 2 3 4]", frames[0])
	}
	if f.Buffered() != 1 {
		t.Errorf("expected 1 carried byte, got %d", f.Buffered())
	}
}

func TestFramerFlushPadsWithSilence(t *testing.T) {
	var frames [][]byte
	emit := collectFrames(&frames)
	f := audio.NewFramer(4)

	f.Push([]byte{1, 2, 3}, emit)
	f.Flush(emit)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if !bytes.Equal(frames[0], []byte{1, 2, 3, 0}) {
		t.Errorf("flushed frame: got %v, want [1 2 3 0]", frames[0])
	}
	if f.Buffered() != 0 {
		t.Errorf("expected empty carry after flush, got %d", f.Buffered())
	}

	// A second flush has nothing left to emit.
	f.Flush(emit)
	if len(frames) != 1 {
		t.Errorf("empty flush emitted a frame")
	}
}
