package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Pump reads PCM from r until EOF or ctx cancellation, normalizing src
// audio to [Native] and invoking submit for every full frame of frameBytes
// bytes. The trailing partial frame, if any, is padded with silence and
// submitted so the last spoken syllables are not lost. Returns nil on EOF
// and ctx.Err() on cancellation.
//
// Reads happen in roughly 100 ms slices of source audio, rounded to whole
// samples so the converter never sees a split sample mid-stream.
// Cancellation is observed between reads; close r to unblock a pending one.
func Pump(ctx context.Context, r io.Reader, src Format, frameBytes int, submit func(frame []byte)) error {
	if !src.Valid() {
		return fmt.Errorf("audio: unsupported source format %s", src)
	}
	if frameBytes <= 0 {
		return fmt.Errorf("audio: frame size must be positive, got %d", frameBytes)
	}

	conv := Converter{Source: src}
	framer := NewFramer(frameBytes)

	stride := 2 * src.Channels
	readSize := src.SampleRate / 10 * stride
	if readSize < stride {
		readSize = stride
	}
	buf := make([]byte, readSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			framer.Push(conv.ToNative(buf[:n]), submit)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			framer.Flush(submit)
			return nil
		}
		if err != nil {
			return fmt.Errorf("audio: read source: %w", err)
		}
	}
}
