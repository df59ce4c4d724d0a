package session

import (
	"testing"
	"time"

	"github.com/ieum-ai/ieum/internal/correct"
	"github.com/ieum-ai/ieum/internal/lexicon"
	"github.com/ieum-ai/ieum/internal/reconstruct"
	"github.com/ieum-ai/ieum/pkg/recognizer/mock"
)

type nopSink struct{}

func (nopSink) OnSentence(string, float64) {}
func (nopSink) OnPartialPreview(string)    {}
func (nopSink) OnConnectionState(State)    {}
func (nopSink) OnError(ErrorKind, string)  {}

func defaultsCorrector(t *testing.T) *correct.Corrector {
	t.Helper()
	lex, err := lexicon.New(lexicon.Builtin(), lexicon.BuiltinEndings())
	if err != nil {
		t.Fatalf("lexicon: %v", err)
	}
	c, err := correct.New(reconstruct.New(lex))
	if err != nil {
		t.Fatalf("corrector: %v", err)
	}
	return c
}

func TestNewManagerDefaults(t *testing.T) {
	t.Parallel()

	m, err := NewManager(ManagerConfig{
		Provider:  &mock.Provider{},
		Corrector: defaultsCorrector(t),
		Sink:      nopSink{},
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if m.keepalive != 15*time.Second {
		t.Errorf("keepalive = %v, want 15s", m.keepalive)
	}
	if m.reconnectDelay != time.Second {
		t.Errorf("reconnectDelay = %v, want 1s", m.reconnectDelay)
	}
	if m.maxReconnects != 10 {
		t.Errorf("maxReconnects = %d, want 10", m.maxReconnects)
	}
	if m.boundaryPoll != 250*time.Millisecond {
		t.Errorf("boundaryPoll = %v, want 250ms", m.boundaryPoll)
	}
	if got := len(m.ring.frames); got != 50 {
		t.Errorf("ring capacity = %d, want 50", got)
	}
}

func TestNewManagerContinuousKeepalive(t *testing.T) {
	t.Parallel()
	corr := defaultsCorrector(t)

	m, err := NewManager(ManagerConfig{
		Provider:   &mock.Provider{},
		Corrector:  corr,
		Sink:       nopSink{},
		Continuous: true,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if m.keepalive != 10*time.Second {
		t.Errorf("continuous keepalive = %v, want 10s", m.keepalive)
	}

	// An explicit interval beats the continuous default.
	m2, err := NewManager(ManagerConfig{
		Provider:          &mock.Provider{},
		Corrector:         corr,
		Sink:              nopSink{},
		Continuous:        true,
		KeepaliveInterval: 20 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if m2.keepalive != 20*time.Second {
		t.Errorf("explicit keepalive = %v, want 20s", m2.keepalive)
	}
}

func TestNewManagerRequiresCollaborators(t *testing.T) {
	t.Parallel()
	corr := defaultsCorrector(t)

	cases := []struct {
		name string
		cfg  ManagerConfig
	}{
		{"nil provider", ManagerConfig{Corrector: corr, Sink: nopSink{}}},
		{"nil corrector", ManagerConfig{Provider: &mock.Provider{}, Sink: nopSink{}}},
		{"nil sink", ManagerConfig{Provider: &mock.Provider{}, Corrector: corr}},
	}
	for _, tc := range cases {
		if _, err := NewManager(tc.cfg); err == nil {
			t.Errorf("%s: NewManager accepted the config", tc.name)
		}
	}
}
