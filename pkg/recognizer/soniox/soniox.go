// Package soniox provides a Soniox-backed recognition provider using the
// Soniox real-time streaming WebSocket API. It implements the
// recognizer.Provider interface.
package soniox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/ieum-ai/ieum/pkg/recognizer"
)

const (
	sonioxEndpoint  = "wss://stt-rt.soniox.com/transcribe-websocket"
	defaultModel    = "stt-rt-preview"
	defaultLanguage = "ko"
	defaultFormat   = "pcm_s16le"

	// writeTimeout bounds individual control-message writes so a stalled
	// transport cannot wedge keepalive or teardown.
	writeTimeout = 5 * time.Second
)

// Option is a functional option for configuring the Soniox Provider.
type Option func(*Provider)

// WithEndpoint overrides the WebSocket endpoint (useful for tests and
// regional deployments).
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) {
		p.endpoint = endpoint
	}
}

// WithModel sets the service model identifier used when the StreamConfig
// does not name one.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the default language hint used when the StreamConfig
// does not carry one.
func WithLanguage(language string) Option {
	return func(p *Provider) {
		p.language = language
	}
}

// WithLogger sets the logger used for dropped-message reporting. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// Provider implements recognizer.Provider backed by the Soniox streaming API.
type Provider struct {
	apiKey   string
	endpoint string
	model    string
	language string
	logger   *slog.Logger
}

// New creates a new Soniox Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("soniox: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:   apiKey,
		endpoint: sonioxEndpoint,
		model:    defaultModel,
		language: defaultLanguage,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Name returns the backend identifier.
func (p *Provider) Name() string { return "soniox" }

// Dial opens the WebSocket transport and returns an unconfigured session.
// The returned session owns its own lifetime context so that a short dial
// deadline on ctx does not cut the stream off mid-session.
func (p *Provider) Dial(ctx context.Context) (recognizer.Session, error) {
	conn, _, err := websocket.Dial(ctx, p.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("soniox: dial: %w", err)
	}

	lifetime, cancel := context.WithCancel(context.Background())
	sess := &session{
		provider: p,
		conn:     conn,
		batches:  make(chan recognizer.Batch, 64),
		audio:    make(chan []byte, 256),
		done:     make(chan struct{}),
		ctx:      lifetime,
		cancel:   cancel,
		logger:   p.logger,
	}

	sess.wg.Add(2)
	go sess.readLoop()
	go sess.writeLoop()

	return sess, nil
}

// Ensure Provider implements recognizer.Provider at compile time.
var _ recognizer.Provider = (*Provider)(nil)

// ---- session ----

// session is a live Soniox streaming session. It implements
// recognizer.Session.
type session struct {
	provider *Provider
	conn     *websocket.Conn
	batches  chan recognizer.Batch
	audio    chan []byte

	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	errMu sync.Mutex
	err   error
}

// Start sends the configuration message. Empty config fields fall back to
// the provider-level defaults.
func (s *session) Start(ctx context.Context, cfg recognizer.StreamConfig) error {
	req := s.provider.buildStartRequest(cfg)
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("soniox: marshal start request: %w", err)
	}
	if err := s.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("soniox: send start request: %w", err)
	}
	return nil
}

// buildStartRequest maps the provider-neutral config onto the wire form.
func (p *Provider) buildStartRequest(cfg recognizer.StreamConfig) startRequest {
	model := cfg.Model
	if model == "" {
		model = p.model
	}
	format := cfg.AudioFormat
	if format == "" {
		format = defaultFormat
	}
	sr := cfg.SampleRate
	if sr == 0 {
		sr = recognizer.SampleRate
	}
	ch := cfg.Channels
	if ch == 0 {
		ch = recognizer.Channels
	}
	lang := cfg.Language
	if lang == "" {
		lang = p.language
	}
	ref := cfg.Reference
	if ref == "" {
		ref = uuid.NewString()
	}

	return startRequest{
		APIKey:                  p.apiKey,
		Model:                   model,
		AudioFormat:             format,
		SampleRate:              sr,
		NumChannels:             ch,
		LanguageHints:           []string{lang},
		EnableNonFinalTokens:    cfg.EnablePartials,
		EnablePunctuation:       cfg.EnablePunctuation,
		EnableEndpointDetection: cfg.EnableVAD,
		PhraseBoosts:            boostGroups(cfg.PhraseBoosts),
		ClientReferenceID:       ref,
	}
}

// SendAudio queues one PCM frame for delivery to the service.
func (s *session) SendAudio(frame []byte) error {
	select {
	case <-s.done:
		return errors.New("soniox: session is closed")
	default:
	}
	select {
	case s.audio <- frame:
		return nil
	case <-s.done:
		return errors.New("soniox: session is closed")
	}
}

// Keepalive sends the no-op keepalive message.
func (s *session) Keepalive() error {
	return s.writeControl(msgKeepalive)
}

// SetPhraseBoosts is not supported mid-session by the Soniox API; the boost
// list is part of the start request only.
func (s *session) SetPhraseBoosts(groups []recognizer.PhraseBoost) error {
	return fmt.Errorf("soniox: phrase-boost update: %w", recognizer.ErrNotSupported)
}

// Batches returns the channel of inbound token batches.
func (s *session) Batches() <-chan recognizer.Batch { return s.batches }

// Err returns the terminal session error once Batches has closed.
func (s *session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close terminates the session cleanly. It asks the service to flush pending
// audio first so trailing finals are not lost.
func (s *session) Close() error {
	s.once.Do(func() {
		close(s.done)
		_ = s.writeControl(msgFinalize)
		s.wg.Wait()
		s.conn.Close(websocket.StatusNormalClosure, "session closed")
		s.cancel()
	})
	return nil
}

// writeControl marshals and sends a typed control message under the write
// timeout.
func (s *session) writeControl(typ string) error {
	data, err := json.Marshal(controlMessage{Type: typ})
	if err != nil {
		return fmt.Errorf("soniox: marshal %s: %w", typ, err)
	}
	ctx, cancel := context.WithTimeout(s.ctx, writeTimeout)
	defer cancel()
	if err := s.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("soniox: send %s: %w", typ, err)
	}
	return nil
}

// setErr records the first terminal error. Later calls are ignored.
func (s *session) setErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// closing reports whether Close has been requested, so read failures caused
// by our own teardown are not recorded as session errors.
func (s *session) closing() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// writeLoop reads from the audio channel and sends binary frames to the
// service. On shutdown it drains already-queued frames first.
func (s *session) writeLoop() {
	defer s.wg.Done()
	for {
		select {
		case frame, ok := <-s.audio:
			if !ok {
				return
			}
			if err := s.conn.Write(s.ctx, websocket.MessageBinary, frame); err != nil {
				return
			}
		case <-s.done:
			for {
				select {
				case frame, ok := <-s.audio:
					if !ok {
						return
					}
					ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
					err := s.conn.Write(ctx, websocket.MessageBinary, frame)
					cancel()
					if err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// readLoop receives service messages and dispatches token batches. Malformed
// messages are logged and dropped without terminating the session; a service
// error message or transport failure ends the stream.
func (s *session) readLoop() {
	defer s.wg.Done()
	defer close(s.batches)

	for {
		_, data, err := s.conn.Read(s.ctx)
		if err != nil {
			if !s.closing() {
				s.setErr(fmt.Errorf("soniox: read: %w", err))
			}
			return
		}

		var resp response
		if err := json.Unmarshal(data, &resp); err != nil {
			s.logger.Warn("soniox: dropping malformed message", "error", err, "bytes", len(data))
			continue
		}

		if resp.ErrorCode != 0 {
			s.setErr(classifyServiceError(resp.ErrorCode, resp.ErrorMessage))
			return
		}

		batch := toBatch(resp)
		if len(batch.Tokens) == 0 && !batch.Finished {
			continue
		}
		select {
		case s.batches <- batch:
		case <-s.done:
			return
		}
		if batch.Finished {
			return
		}
	}
}

// classifyServiceError maps in-stream service errors onto the recognizer
// error taxonomy. Credential rejections must never be auto-retried, so they
// wrap recognizer.ErrAuthRejected; everything else wraps
// recognizer.ErrProtocol so callers know the transport itself was fine.
func classifyServiceError(code int, message string) error {
	switch code {
	case 401, 402, 403:
		return fmt.Errorf("%w: service error %d: %s", recognizer.ErrAuthRejected, code, message)
	default:
		return fmt.Errorf("%w: service error %d: %s", recognizer.ErrProtocol, code, message)
	}
}

// Ensure session implements recognizer.Session at compile time.
var _ recognizer.Session = (*session)(nil)
