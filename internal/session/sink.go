package session

// State is the connection state of a recognition stream, as reported to
// the [Sink].
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateAuthenticated
	StateReconnecting

	// StateFailed is terminal: the reconnect budget was exhausted or the
	// service rejected our credentials. A new Start is required.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrorKind classifies errors surfaced through [Sink.OnError].
type ErrorKind int

const (
	// ErrorConnection covers transport-level failures. Recoverable: the
	// manager reconnects on its own.
	ErrorConnection ErrorKind = iota

	// ErrorAuth covers credential rejections. Never retried.
	ErrorAuth

	// ErrorProtocol covers protocol-level faults in the service dialogue,
	// such as an explicit in-stream error report. Malformed inbound
	// messages never surface here; providers log and drop those without
	// ending the session.
	ErrorProtocol

	// ErrorTimeout covers per-call timeouts against the transport, such
	// as a keepalive write that never completed. Recovery is the same
	// reconnect path as ErrorConnection.
	ErrorTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorConnection:
		return "connection"
	case ErrorAuth:
		return "auth"
	case ErrorProtocol:
		return "protocol"
	case ErrorTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Sink receives the session's outward-facing events: finished sentences,
// in-progress previews, connection state changes, and errors. Translation
// and UI collaborators live behind this interface.
//
// Callbacks are invoked sequentially from the session's event loop, so
// implementations need no internal ordering. They must return promptly
// (a blocking sink stalls audio delivery) and must not call back into the
// [Manager].
type Sink interface {
	// OnSentence delivers one corrected, completed sentence with its final
	// confidence.
	OnSentence(text string, confidence float64)

	// OnPartialPreview delivers the current in-progress text, confirmed
	// buffer plus provisional tail. Each call replaces the previous
	// preview entirely; an empty string clears it.
	OnPartialPreview(text string)

	// OnConnectionState reports a state transition.
	OnConnectionState(state State)

	// OnError reports a classified error. Connection errors are
	// informational; recovery is the manager's job.
	OnError(kind ErrorKind, message string)
}
