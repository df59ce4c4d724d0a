package audio

import (
	"encoding/binary"
	"log/slog"
	"sync"
)

// Converter normalizes a PCM stream to [Native] format. Stereo input is
// downmixed before resampling so the interpolation only ever runs over a
// mono signal. Create one per stream; not safe for concurrent use.
type Converter struct {
	Source Format

	noteOnce sync.Once
	warnOnce sync.Once
}

// ToNative converts pcm from the Source format to [Native]. When the source
// already matches, pcm is returned unchanged with no allocation. Input that
// does not divide into whole samples is truncated to the nearest sample
// boundary before converting; a stream that splits samples across reads
// should be re-chunked upstream instead.
func (c *Converter) ToNative(pcm []byte) []byte {
	if c.Source == Native {
		return pcm
	}
	c.noteOnce.Do(func() {
		slog.Debug("normalizing audio", "from", c.Source.String(), "to", Native.String())
	})

	stride := 2 * c.Source.Channels
	if rem := len(pcm) % stride; rem != 0 {
		c.warnOnce.Do(func() {
			slog.Warn("audio chunk not sample-aligned, truncating",
				"bytes", rem,
				"format", c.Source.String(),
			)
		})
		pcm = pcm[:len(pcm)-rem]
	}

	if c.Source.Channels == 2 {
		pcm = downmixStereo(pcm)
	}
	if c.Source.SampleRate != Native.SampleRate {
		pcm = resampleMono(pcm, c.Source.SampleRate, Native.SampleRate)
	}
	return pcm
}

// downmixStereo averages the left and right channel of each interleaved
// stereo pair into one mono sample. The mean of two int16 values cannot
// leave the int16 range, so no clamping is needed.
func downmixStereo(pcm []byte) []byte {
	pairs := len(pcm) / 4
	out := make([]byte, pairs*2)
	for i := range pairs {
		l := int32(int16(binary.LittleEndian.Uint16(pcm[i*4:])))
		r := int32(int16(binary.LittleEndian.Uint16(pcm[i*4+2:])))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16((l+r)/2)))
	}
	return out
}

// resampleMono converts 16-bit mono PCM between sample rates using linear
// interpolation. Chunks are resampled independently, without carried state;
// at the 100 ms chunks [Pump] reads, the seam error is a single
// interpolated sample.
func resampleMono(pcm []byte, from, to int) []byte {
	if from == to || len(pcm) < 2 {
		return pcm
	}
	srcN := len(pcm) / 2
	dstN := int(int64(srcN) * int64(to) / int64(from))
	if dstN == 0 {
		return nil
	}

	out := make([]byte, dstN*2)
	step := float64(from) / float64(to)
	for i := range dstN {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)

		s0 := int16(binary.LittleEndian.Uint16(pcm[j*2:]))
		s1 := s0
		if j+1 < srcN {
			s1 = int16(binary.LittleEndian.Uint16(pcm[(j+1)*2:]))
		}

		v := int16(float64(s0)*(1-frac) + float64(s1)*frac)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
