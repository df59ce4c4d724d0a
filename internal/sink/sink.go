// Package sink provides destinations for pipeline output: a structured-log
// sink for development and single-binary deployments, and a fan-out
// composite for running several destinations side by side. The Kafka
// publisher lives in the kafka subpackage.
package sink

import (
	"log/slog"

	"github.com/ieum-ai/ieum/internal/session"
)

// Log writes every pipeline event to a [slog.Logger]. It is the default
// sink when nothing else is configured.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a sink logging through logger, or [slog.Default] if nil.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) OnSentence(text string, confidence float64) {
	l.logger.Info("sentence", "text", text, "confidence", confidence)
}

func (l *Log) OnPartialPreview(text string) {
	l.logger.Debug("preview", "text", text)
}

func (l *Log) OnConnectionState(state session.State) {
	l.logger.Info("connection state", "state", state.String())
}

func (l *Log) OnError(kind session.ErrorKind, message string) {
	if kind == session.ErrorAuth {
		l.logger.Error("session error", "kind", kind.String(), "message", message)
		return
	}
	l.logger.Warn("session error", "kind", kind.String(), "message", message)
}

// Fanout delivers every callback to each sink in order. A slow member
// delays the rest, so sinks doing real I/O should buffer internally.
type Fanout []session.Sink

func (f Fanout) OnSentence(text string, confidence float64) {
	for _, s := range f {
		s.OnSentence(text, confidence)
	}
}

func (f Fanout) OnPartialPreview(text string) {
	for _, s := range f {
		s.OnPartialPreview(text)
	}
}

func (f Fanout) OnConnectionState(state session.State) {
	for _, s := range f {
		s.OnConnectionState(state)
	}
}

func (f Fanout) OnError(kind session.ErrorKind, message string) {
	for _, s := range f {
		s.OnError(kind, message)
	}
}

var (
	_ session.Sink = (*Log)(nil)
	_ session.Sink = (Fanout)(nil)
)
