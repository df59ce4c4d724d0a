package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// wavFormatPCM is the codec tag for uncompressed integer PCM in a WAV
// fmt chunk.
const wavFormatPCM = 1

// ReadWAVHeader consumes the RIFF header and chunk list from r up to the
// start of sample data and returns the stream format. Only uncompressed
// 16-bit PCM with one or two channels is supported. Metadata chunks before
// the data chunk are skipped. After a nil error, r is positioned at the
// first sample byte, ready for [Pump].
func ReadWAVHeader(r io.Reader) (Format, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Format{}, fmt.Errorf("audio: read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Format{}, errors.New("audio: not a RIFF/WAVE file")
	}

	var format Format
	haveFmt := false
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return Format{}, fmt.Errorf("audio: read chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))

		switch id {
		case "fmt ":
			if size < 16 {
				return Format{}, fmt.Errorf("audio: fmt chunk too short: %d bytes", size)
			}
			// Chunks are word-aligned; odd sizes carry a pad byte.
			body := make([]byte, size+size%2)
			if _, err := io.ReadFull(r, body); err != nil {
				return Format{}, fmt.Errorf("audio: read fmt chunk: %w", err)
			}
			codec := binary.LittleEndian.Uint16(body[0:2])
			channels := int(binary.LittleEndian.Uint16(body[2:4]))
			rate := int(binary.LittleEndian.Uint32(body[4:8]))
			bits := binary.LittleEndian.Uint16(body[14:16])

			if codec != wavFormatPCM {
				return Format{}, fmt.Errorf("audio: unsupported WAV codec %d, want PCM", codec)
			}
			if bits != 16 {
				return Format{}, fmt.Errorf("audio: unsupported sample width %d bits, want 16", bits)
			}
			format = Format{SampleRate: rate, Channels: channels}
			if !format.Valid() {
				return Format{}, fmt.Errorf("audio: unsupported WAV layout: %s", format)
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return Format{}, errors.New("audio: data chunk before fmt chunk")
			}
			return format, nil

		default:
			if _, err := io.CopyN(io.Discard, r, size+size%2); err != nil {
				return Format{}, fmt.Errorf("audio: skip %q chunk: %w", id, err)
			}
		}
	}
}
