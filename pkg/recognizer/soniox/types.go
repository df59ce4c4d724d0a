package soniox

import (
	"time"

	"github.com/ieum-ai/ieum/pkg/recognizer"
)

// startRequest is the one-time configuration message sent as the first text
// frame after the WebSocket connects. It authenticates the session and
// selects model, audio format, and recognition options.
type startRequest struct {
	APIKey                  string            `json:"api_key"`
	Model                   string            `json:"model"`
	AudioFormat             string            `json:"audio_format,omitempty"`
	SampleRate              int               `json:"sample_rate,omitempty"`
	NumChannels             int               `json:"num_channels,omitempty"`
	LanguageHints           []string          `json:"language_hints,omitempty"`
	EnableNonFinalTokens    bool              `json:"enable_non_final_tokens,omitempty"`
	EnablePunctuation       bool              `json:"enable_punctuation,omitempty"`
	EnableEndpointDetection bool              `json:"enable_endpoint_detection,omitempty"`
	PhraseBoosts            []phraseBoostGroup `json:"phrase_boosts,omitempty"`
	ClientReferenceID       string            `json:"client_reference_id,omitempty"`
}

// phraseBoostGroup mirrors recognizer.PhraseBoost on the wire.
type phraseBoostGroup struct {
	Phrases []string `json:"phrases"`
	Boost   float64  `json:"boost"`
}

// controlMessage is the envelope for typed no-payload messages such as
// keepalive and finalize.
type controlMessage struct {
	Type string `json:"type"`
}

const (
	msgKeepalive = "keepalive"
	msgFinalize  = "finalize"
)

// wireToken is one recognition token as serialized by the service.
type wireToken struct {
	Text       string  `json:"text"`
	StartMs    int     `json:"start_ms"`
	EndMs      int     `json:"end_ms"`
	Confidence float64 `json:"confidence"`
	IsFinal    bool    `json:"is_final"`
	Speaker    string  `json:"speaker,omitempty"`
	Language   string  `json:"language,omitempty"`
}

// response is one inbound service message. A non-zero ErrorCode terminates
// the stream; Finished marks the service-side flush after a finalize.
type response struct {
	Tokens       []wireToken `json:"tokens"`
	Finished     bool        `json:"finished"`
	ErrorCode    int         `json:"error_code"`
	ErrorMessage string      `json:"error_message"`
}

// toBatch converts a wire response into the provider-neutral batch form.
// Marker tokens such as "<end>" (emitted by endpoint detection) carry no
// speech text and are dropped here.
func toBatch(resp response) recognizer.Batch {
	tokens := make([]recognizer.Token, 0, len(resp.Tokens))
	for _, t := range resp.Tokens {
		if isMarker(t.Text) {
			continue
		}
		tokens = append(tokens, recognizer.Token{
			Text:       t.Text,
			Start:      time.Duration(t.StartMs) * time.Millisecond,
			End:        time.Duration(t.EndMs) * time.Millisecond,
			Confidence: t.Confidence,
			IsFinal:    t.IsFinal,
			Speaker:    t.Speaker,
			Language:   t.Language,
		})
	}
	return recognizer.Batch{Tokens: tokens, Finished: resp.Finished}
}

// isMarker reports whether a token text is a service marker like "<end>"
// rather than transcribed speech.
func isMarker(text string) bool {
	return len(text) >= 2 && text[0] == '<' && text[len(text)-1] == '>'
}

// boostGroups converts the provider-neutral boost list to the wire form.
func boostGroups(groups []recognizer.PhraseBoost) []phraseBoostGroup {
	if len(groups) == 0 {
		return nil
	}
	out := make([]phraseBoostGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, phraseBoostGroup{Phrases: g.Phrases, Boost: g.Boost})
	}
	return out
}
