package sink_test

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/ieum-ai/ieum/internal/session"
	"github.com/ieum-ai/ieum/internal/sink"
)

// recorder notes every callback in arrival order.
type recorder struct {
	calls []string
}

func (r *recorder) OnSentence(text string, confidence float64) {
	r.calls = append(r.calls, "sentence:"+text)
}

func (r *recorder) OnPartialPreview(text string) {
	r.calls = append(r.calls, "preview:"+text)
}

func (r *recorder) OnConnectionState(state session.State) {
	r.calls = append(r.calls, "state:"+state.String())
}

func (r *recorder) OnError(kind session.ErrorKind, message string) {
	r.calls = append(r.calls, "error:"+kind.String())
}

func TestFanoutDeliversToEveryMemberInOrder(t *testing.T) {
	t.Parallel()
	a, b := &recorder{}, &recorder{}
	f := sink.Fanout{a, b}

	f.OnConnectionState(session.StateConnecting)
	f.OnPartialPreview("안녕")
	f.OnSentence("안녕하세요", 0.9)
	f.OnError(session.ErrorConnection, "connection reset")

	want := []string{"state:connecting", "preview:안녕", "sentence:안녕하세요", "error:connection"}
	for i, r := range []*recorder{a, b} {
		if !slices.Equal(r.calls, want) {
			t.Errorf("sink %d calls = %v, want %v", i, r.calls, want)
		}
	}
}

func TestLogSinkWritesEvents(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := sink.NewLog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l.OnSentence("안녕하세요", 0.9)
	l.OnPartialPreview("안녕")
	l.OnConnectionState(session.StateAuthenticated)
	l.OnError(session.ErrorConnection, "connection reset")

	out := buf.String()
	for _, want := range []string{"안녕하세요", "state=authenticated", "kind=connection"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogSinkAuthErrorsAtErrorLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := sink.NewLog(slog.New(slog.NewTextHandler(&buf, nil)))

	l.OnError(session.ErrorAuth, "invalid api key")

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "kind=auth") {
		t.Errorf("auth error not logged at error level:\n%s", out)
	}
}
