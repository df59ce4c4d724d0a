// Package audio prepares raw PCM byte streams for the recognition session.
//
// The session consumes fixed-size frames of 16 kHz mono little-endian int16
// PCM. Capture sources rarely produce exactly that: files carry WAV headers,
// microphones run at 44.1 or 48 kHz, and reads arrive in arbitrary lengths.
// This package bridges the gap with three small pieces:
//
//   - [Converter] downmixes and resamples foreign formats to [Native].
//   - [Framer] re-chunks arbitrary-length writes into exact frame boundaries.
//   - [Pump] drives an io.Reader through both until EOF or cancellation.
//
// The package lives under pkg/ because capture adapters outside this
// repository are expected to feed it.
package audio

import "fmt"

// Format describes the sample rate and channel count of a PCM stream.
// Samples are always little-endian int16.
type Format struct {
	SampleRate int
	Channels   int
}

// Native is the format the recognition stream expects. Everything entering
// the session is normalized to it first.
var Native = Format{SampleRate: 16000, Channels: 1}

// Valid reports whether the format describes a stream this package can
// process: a positive sample rate and one or two channels.
func (f Format) Valid() bool {
	return f.SampleRate > 0 && (f.Channels == 1 || f.Channels == 2)
}

// String returns a compact description such as "48000Hz stereo".
func (f Format) String() string {
	ch := "mono"
	switch {
	case f.Channels == 2:
		ch = "stereo"
	case f.Channels > 2:
		ch = fmt.Sprintf("%dch", f.Channels)
	}
	return fmt.Sprintf("%dHz %s", f.SampleRate, ch)
}
