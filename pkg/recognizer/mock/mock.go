// Package mock provides test doubles for the recognizer package interfaces.
//
// Use Provider to verify dial behavior and to hand out scripted Sessions.
// Use Session to feed controlled token batches and inspect which audio
// frames, keepalives, and boost updates were delivered.
//
// Example:
//
//	sess := mock.NewSession()
//	p := &mock.Provider{Sessions: []*mock.Session{sess}}
//	handle, _ := p.Dial(ctx)
//	sess.Push(recognizer.Batch{Tokens: tokens})
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/ieum-ai/ieum/pkg/recognizer"
)

// Provider is a mock implementation of recognizer.Provider.
type Provider struct {
	mu sync.Mutex

	// ProviderName is returned by Name. Defaults to "mock".
	ProviderName string

	// Sessions are handed out by Dial in order. When exhausted (or empty),
	// Dial returns a fresh default Session.
	Sessions []*Session

	// DialErrs are returned by Dial in order before any Session is handed
	// out; a nil entry means that dial succeeds.
	DialErrs []error

	// DialGate, if non-nil, blocks every Dial until the channel is closed
	// or the dial context is cancelled. Lets tests hold the manager in its
	// connecting state while audio accumulates.
	DialGate chan struct{}

	// DialCalls counts invocations of Dial.
	DialCalls int

	// handed records every session returned, for post-test inspection.
	handed []*Session
}

// Name returns ProviderName, or "mock" if unset.
func (p *Provider) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ProviderName == "" {
		return "mock"
	}
	return p.ProviderName
}

// Dial records the call, honors DialGate and DialErrs, and returns the next
// scripted Session.
func (p *Provider) Dial(ctx context.Context) (recognizer.Session, error) {
	p.mu.Lock()
	n := p.DialCalls
	p.DialCalls++
	gate := p.DialGate
	var err error
	if n < len(p.DialErrs) {
		err = p.DialErrs[n]
	}
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	var sess *Session
	if len(p.Sessions) > 0 {
		sess = p.Sessions[0]
		p.Sessions = p.Sessions[1:]
	} else {
		sess = NewSession()
	}
	p.handed = append(p.handed, sess)
	return sess, nil
}

// Handed returns every session Dial has returned so far, in order.
func (p *Provider) Handed() []*Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Session, len(p.handed))
	copy(out, p.handed)
	return out
}

// Dials returns the number of Dial calls. Thread-safe.
func (p *Provider) Dials() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.DialCalls
}

// Ensure Provider implements recognizer.Provider at compile time.
var _ recognizer.Provider = (*Provider)(nil)

// StartCall records a single invocation of Session.Start.
type StartCall struct {
	// Cfg is the StreamConfig passed to Start.
	Cfg recognizer.StreamConfig
}

// Session is a mock implementation of recognizer.Session. Feed batches with
// Push, then End (or Fail) to close the stream the way a real transport
// would.
type Session struct {
	mu sync.Mutex

	// StartErr, if non-nil, is returned by Start.
	StartErr error

	// SendAudioErr, if non-nil, is returned by every SendAudio call.
	SendAudioErr error

	// KeepaliveErr, if non-nil, is returned by every Keepalive call.
	KeepaliveErr error

	// BoostErr, if non-nil, is returned by every SetPhraseBoosts call.
	// Defaults to nil (updates supported), unlike most real vendors.
	BoostErr error

	// CloseErr, if non-nil, is returned by the first Close.
	CloseErr error

	// --- Call records ---

	// StartCalls records every call to Start in order.
	StartCalls []StartCall

	// AudioFrames records a copy of every frame passed to SendAudio.
	AudioFrames [][]byte

	// KeepaliveCount is the number of Keepalive calls.
	KeepaliveCount int

	// BoostCalls records every boost list passed to SetPhraseBoosts.
	BoostCalls [][]recognizer.PhraseBoost

	// CloseCount is the number of Close calls.
	CloseCount int

	batches chan recognizer.Batch
	done    chan struct{}
	once    sync.Once
	err     error
}

// NewSession returns a Session with a buffered batch channel ready for Push.
func NewSession() *Session {
	return &Session{
		batches: make(chan recognizer.Batch, 64),
		done:    make(chan struct{}),
	}
}

// Push delivers a batch to the consumer. Push panics after End or Fail, the
// same way a misbehaving test double should fail loudly.
func (s *Session) Push(b recognizer.Batch) {
	s.batches <- b
}

// End closes the batch stream cleanly (Err stays nil).
func (s *Session) End() {
	s.once.Do(func() {
		close(s.done)
		close(s.batches)
	})
}

// Fail closes the batch stream with the given terminal error, simulating an
// unexpected transport or service failure.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.once.Do(func() {
		close(s.done)
		close(s.batches)
	})
}

// Start records the call and returns StartErr.
func (s *Session) Start(ctx context.Context, cfg recognizer.StreamConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StartCalls = append(s.StartCalls, StartCall{Cfg: cfg})
	return s.StartErr
}

// SendAudio records a copy of the frame and returns SendAudioErr.
func (s *Session) SendAudio(frame []byte) error {
	select {
	case <-s.done:
		return errors.New("mock: session is closed")
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(frame))
	copy(cp, frame)
	s.AudioFrames = append(s.AudioFrames, cp)
	return s.SendAudioErr
}

// Keepalive records the call and returns KeepaliveErr.
func (s *Session) Keepalive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.KeepaliveCount++
	return s.KeepaliveErr
}

// SetPhraseBoosts records a copy of the boost list and returns BoostErr.
func (s *Session) SetPhraseBoosts(groups []recognizer.PhraseBoost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]recognizer.PhraseBoost, len(groups))
	copy(cp, groups)
	s.BoostCalls = append(s.BoostCalls, cp)
	return s.BoostErr
}

// Batches returns the scripted batch channel.
func (s *Session) Batches() <-chan recognizer.Batch { return s.batches }

// Err returns the error set by Fail, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the stream and records the call.
func (s *Session) Close() error {
	s.mu.Lock()
	s.CloseCount++
	err := s.CloseErr
	s.mu.Unlock()
	s.once.Do(func() {
		close(s.done)
		close(s.batches)
	})
	return err
}

// Frames returns the number of SendAudio calls. Thread-safe.
func (s *Session) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.AudioFrames)
}

// Keepalives returns the number of Keepalive calls. Thread-safe.
func (s *Session) Keepalives() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.KeepaliveCount
}

// Starts returns the number of Start calls. Thread-safe.
func (s *Session) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.StartCalls)
}

// Boosts returns the number of SetPhraseBoosts calls. Thread-safe.
func (s *Session) Boosts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.BoostCalls)
}

// Ensure Session implements recognizer.Session at compile time.
var _ recognizer.Session = (*Session)(nil)
