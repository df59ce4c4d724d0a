package recognizer

import "time"

// Audio format constants for the recognition stream. The service consumes raw
// little-endian 16-bit PCM, mono, 16 kHz, delivered in fixed 100 ms frames.
const (
	// SampleRate is the audio sample rate in Hz expected by the service.
	SampleRate = 16000

	// Channels is the channel count. Recognition input is always mono.
	Channels = 1

	// BytesPerSample is the width of one s16le sample.
	BytesPerSample = 2

	// FrameDuration is the wall-clock length of one audio frame.
	FrameDuration = 100 * time.Millisecond

	// FrameBytes is the byte size of one frame at the fixed format:
	// 16000 Hz * 0.1 s * 2 B * 1 channel.
	FrameBytes = SampleRate / 10 * BytesPerSample * Channels
)

// Token is a single recognition token. Tokens arrive at syllable granularity
// for scripts without whitespace word boundaries; assembling them back into
// sentences is the assembly package's concern.
//
// A Token is immutable once produced by the transport and is consumed exactly
// once by the session manager.
type Token struct {
	// Text is the recognized content, typically one syllable or a short
	// syllable run. May include punctuation when the service punctuates.
	Text string

	// Start is the token's start offset relative to stream start.
	Start time.Duration

	// End is the token's end offset relative to stream start.
	End time.Duration

	// Confidence is the service's per-token confidence in [0, 1].
	Confidence float64

	// IsFinal reports whether the service has committed to this token.
	// Non-final tokens are provisional and are replaced wholesale by the
	// next partial update.
	IsFinal bool

	// Speaker identifies the speaker when diarization is active. Empty
	// otherwise.
	Speaker string

	// Language is the detected language tag when language identification
	// is active. Empty otherwise.
	Language string
}

// Batch is one inbound message worth of tokens, in service order. Finals and
// partials arrive interleaved in the same message; callers split on IsFinal.
type Batch struct {
	// Tokens holds the message's tokens in arrival order.
	Tokens []Token

	// Finished reports that the service has flushed all audio and will send
	// nothing further on this session.
	Finished bool
}

// PhraseBoost is a group of phrases whose recognition probability should be
// raised, with a shared boost weight. Used to steer the service toward
// domain vocabulary supplied by external collaborators.
type PhraseBoost struct {
	// Phrases are the literal strings to boost.
	Phrases []string

	// Boost is the weight for the group (service-specific scale).
	Boost float64
}

// StreamConfig describes the audio format and recognition options for a new
// session. It maps onto the configuration message sent once after connect.
type StreamConfig struct {
	// Model is the service-side model identifier.
	Model string

	// AudioFormat is the audio format tag (e.g. "pcm_s16le").
	AudioFormat string

	// SampleRate is the audio sample rate in Hz. Zero means SampleRate.
	SampleRate int

	// Channels is the audio channel count. Zero means Channels.
	Channels int

	// Language is the language tag for recognition (e.g. "ko").
	Language string

	// EnablePartials requests provisional (non-final) tokens for preview
	// rendering.
	EnablePartials bool

	// EnablePunctuation asks the service to insert punctuation.
	EnablePunctuation bool

	// EnableVAD enables service-side voice activity / endpoint detection.
	EnableVAD bool

	// PhraseBoosts is the initial phrase-boost list. May be updated
	// mid-session via Session.SetPhraseBoosts where the vendor supports it.
	PhraseBoosts []PhraseBoost

	// Reference is an opaque client reference id attached to the session
	// for service-side log correlation. Empty means the provider picks one.
	Reference string
}
