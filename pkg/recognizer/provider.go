// Package recognizer defines the Provider interface for streaming
// speech-recognition backends.
//
// A recognizer provider wraps a real-time recognition service and exposes a
// uniform bidirectional streaming interface. The central abstraction is
// [Session]: once dialed, a session is configured with one [StreamConfig]
// message, accepts raw PCM audio frames, and emits [Batch] values carrying
// syllable-level tokens until it is closed or the service ends the stream.
//
// The dial and configure steps are deliberately separate so that callers can
// distinguish "transport open" from "service accepted our credentials and
// options"; the session manager's state machine depends on that distinction.
//
// Implementations must be safe for concurrent use.
package recognizer

import (
	"context"
	"errors"
)

// ErrNotSupported is returned by optional Session operations that the
// underlying vendor cannot perform, such as mid-session phrase-boost updates.
var ErrNotSupported = errors.New("recognizer: operation not supported by provider")

// ErrAuthRejected classifies a service-side credential rejection. Providers
// wrap it into the error reported by Session.Err so that callers can tell an
// auth failure (never retried) from a transport failure (reconnected).
var ErrAuthRejected = errors.New("recognizer: authentication rejected")

// ErrProtocol classifies an explicit in-stream error report from the
// service, such as a rejected configuration message. The transport was
// healthy; the dialogue was not. Providers wrap it into the error reported
// by Session.Err.
var ErrProtocol = errors.New("recognizer: service reported a protocol error")

// Session represents an open recognition stream. It is an interface so that
// test code can provide scripted implementations without a live connection.
//
// Callers must call Close when the session is no longer needed; failing to do
// so may leak goroutines and network connections inside the provider.
// All methods must be safe for concurrent use.
type Session interface {
	// Start sends the one-time configuration message that authenticates the
	// session and selects model, audio format, and recognition options.
	// It must be called exactly once, before the first SendAudio.
	//
	// A nil return means the message was delivered, not that the service
	// accepted it: a credential rejection surfaces asynchronously through
	// Batches closing with Err() wrapping ErrAuth-classified failures.
	Start(ctx context.Context, cfg StreamConfig) error

	// SendAudio delivers one frame of raw PCM audio for recognition. The
	// frame must match the format agreed in StreamConfig. Calling SendAudio
	// after Close returns an error.
	SendAudio(frame []byte) error

	// Keepalive sends a no-op message that prevents service-side idle
	// timeouts during silence.
	Keepalive() error

	// SetPhraseBoosts replaces the active phrase-boost list without
	// restarting the session. Vendors without mid-session updates return
	// ErrNotSupported; callers then apply the list on the next connect.
	SetPhraseBoosts(groups []PhraseBoost) error

	// Batches returns a read-only channel of inbound token batches in
	// arrival order. The channel is closed when the session ends, whether
	// by Close, a service-side finish, or a transport failure; consult Err
	// afterwards to distinguish.
	Batches() <-chan Batch

	// Err returns the terminal session error, or nil after a clean close.
	// Only meaningful once Batches has been closed.
	Err() error

	// Close terminates the session, flushes pending audio on a best-effort
	// basis, and releases all resources. Calling Close more than once is
	// safe and returns nil.
	Close() error
}

// Provider is the abstraction over any streaming recognition backend.
type Provider interface {
	// Name identifies the backend (e.g. "soniox") for logs and metrics.
	Name() string

	// Dial opens the transport connection and returns an unconfigured
	// Session. Returns an error if the transport cannot be established or
	// ctx is already cancelled. The caller owns the Session and must call
	// Close when done.
	Dial(ctx context.Context) (Session, error)
}
