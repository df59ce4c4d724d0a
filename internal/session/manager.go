// Package session owns the lifetime of one recognition stream: connect,
// authenticate, pump audio, route token batches through sentence assembly
// and correction, and recover from transport failures.
//
// # Architecture
//
// A single event-loop goroutine owns every piece of mutable pipeline
// state; the frame ring is the only structure shared with producers:
//
//  1. Audio producers call [Manager.SubmitAudio], which appends to a
//     bounded drop-oldest ring and never blocks.
//  2. The loop dials the provider, sends the stream configuration, and
//     flushes the ring backlog in order once the service has accepted it.
//  3. Inbound token batches feed the assembly accumulator; completed
//     sentences pass through the corrector and out the [Sink].
//  4. Keepalive and sentence-timeout timers tick inside the same loop.
//  5. On unexpected closure the loop reconnects with a fixed delay and a
//     bounded attempt budget; credential rejections are terminal.
//
// Exactly one session is active per Manager: a second Start while running
// returns [ErrRunning].
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ieum-ai/ieum/internal/assembly"
	"github.com/ieum-ai/ieum/internal/correct"
	"github.com/ieum-ai/ieum/internal/observe"
	"github.com/ieum-ai/ieum/pkg/recognizer"
)

// Default session parameters.
const (
	defaultFrameCapacity  = 50
	defaultKeepalive      = 15 * time.Second
	continuousKeepalive   = 10 * time.Second
	defaultReconnectDelay = 1 * time.Second
	defaultMaxReconnects  = 10
	defaultBoundaryPoll   = 250 * time.Millisecond
)

// ErrRunning is returned by Start while a session is already active.
var ErrRunning = errors.New("session: manager already running")

// ManagerConfig configures a [Manager].
type ManagerConfig struct {
	// Provider is the recognition backend. Required.
	Provider recognizer.Provider

	// Corrector post-processes every completed sentence. Required.
	Corrector *correct.Corrector

	// Sink receives sentences, previews, state changes, and errors.
	// Required.
	Sink Sink

	// Accumulator assembles tokens into sentences. Defaults to a fresh
	// accumulator with default boundary detection if nil.
	Accumulator *assembly.Accumulator

	// Stream is the configuration message sent after every connect.
	Stream recognizer.StreamConfig

	// Continuous marks a long-running session; keepalives are sent more
	// often so the service never times the stream out between utterances.
	Continuous bool

	// FrameCapacity bounds the audio ring. Defaults to 50 frames (5 s at
	// 100 ms per frame) if zero.
	FrameCapacity int

	// KeepaliveInterval overrides the keepalive cadence. Defaults to 15 s,
	// or 10 s for continuous sessions, if zero.
	KeepaliveInterval time.Duration

	// ReconnectDelay is the pause between reconnect attempts. Defaults to
	// 1 s if zero.
	ReconnectDelay time.Duration

	// MaxReconnects is the consecutive failed-attempt budget before the
	// session enters StateFailed. Defaults to 10 if zero.
	MaxReconnects int

	// BoundaryPoll is how often the sentence-timeout rule is evaluated.
	// Defaults to 250 ms if zero.
	BoundaryPoll time.Duration

	// Logger defaults to slog.Default if nil.
	Logger *slog.Logger

	// Metrics receives pipeline measurements. Defaults to the process-wide
	// instrument set if nil.
	Metrics *observe.Metrics
}

// Manager drives one recognition session. All exported methods are safe
// for concurrent use.
type Manager struct {
	provider recognizer.Provider
	corr     *correct.Corrector
	sink     Sink
	acc      *assembly.Accumulator
	logger   *slog.Logger
	metrics  *observe.Metrics

	stream         recognizer.StreamConfig
	keepalive      time.Duration
	reconnectDelay time.Duration
	maxReconnects  int
	boundaryPoll   time.Duration

	ring   *frameRing
	boosts chan []recognizer.PhraseBoost

	mu            sync.Mutex
	state         State
	running       bool
	pendingBoosts []recognizer.PhraseBoost
	cancel        context.CancelFunc
	loopDone      chan struct{}

	// lastPreview is touched only by the event loop.
	lastPreview string
}

// NewManager validates cfg, fills in defaults, and returns a Manager
// ready to Start.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Provider == nil {
		return nil, errors.New("session: nil provider")
	}
	if cfg.Corrector == nil {
		return nil, errors.New("session: nil corrector")
	}
	if cfg.Sink == nil {
		return nil, errors.New("session: nil sink")
	}
	acc := cfg.Accumulator
	if acc == nil {
		acc = assembly.NewAccumulator(assembly.NewDetector())
	}
	frameCap := cfg.FrameCapacity
	if frameCap <= 0 {
		frameCap = defaultFrameCapacity
	}
	keepalive := cfg.KeepaliveInterval
	if keepalive <= 0 {
		keepalive = defaultKeepalive
		if cfg.Continuous {
			keepalive = continuousKeepalive
		}
	}
	reconnectDelay := cfg.ReconnectDelay
	if reconnectDelay <= 0 {
		reconnectDelay = defaultReconnectDelay
	}
	maxReconnects := cfg.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = defaultMaxReconnects
	}
	boundaryPoll := cfg.BoundaryPoll
	if boundaryPoll <= 0 {
		boundaryPoll = defaultBoundaryPoll
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Manager{
		provider:       cfg.Provider,
		corr:           cfg.Corrector,
		sink:           cfg.Sink,
		acc:            acc,
		logger:         logger,
		metrics:        metrics,
		stream:         cfg.Stream,
		keepalive:      keepalive,
		reconnectDelay: reconnectDelay,
		maxReconnects:  maxReconnects,
		boundaryPoll:   boundaryPoll,
		ring:           newFrameRing(frameCap),
		boosts:         make(chan []recognizer.PhraseBoost, 1),
	}, nil
}

// Start launches the session event loop. It returns ErrRunning while a
// previous session is still active; after Stop (or a terminal failure)
// the Manager may be started again.
//
// Cancelling ctx is equivalent to calling Stop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.running = true
	m.cancel = cancel
	m.loopDone = make(chan struct{})
	done := m.loopDone
	m.mu.Unlock()

	go m.run(runCtx, done)
	return nil
}

// Stop flushes any accumulating sentence as a forced completion, tears
// the transport down, and waits for the event loop to exit. Idempotent;
// safe to call from any goroutine. Audio frames still buffered for
// transmission are discarded.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.loopDone
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SubmitAudio buffers one audio frame for transmission. It never blocks:
// when the session is connecting or reconnecting the frame is held in the
// ring, and when the ring is full the oldest frame is dropped.
func (m *Manager) SubmitAudio(frame []byte) {
	if m.ring.Push(frame) {
		m.metrics.FrameDrops.Add(context.Background(), 1)
		return
	}
	m.metrics.BufferedFrames.Add(context.Background(), 1)
}

// SetPhraseBoosts replaces the phrase-boost list. A live session is
// updated in place when the vendor supports it; otherwise (and for every
// later reconnect) the list is applied with the next configuration
// message.
func (m *Manager) SetPhraseBoosts(groups []recognizer.PhraseBoost) {
	cp := make([]recognizer.PhraseBoost, len(groups))
	copy(cp, groups)

	m.mu.Lock()
	m.pendingBoosts = cp
	running := m.running
	m.mu.Unlock()

	// Without a session the list rides along with the next configuration
	// message; queueing a live update would only repeat it.
	if !running {
		return
	}

	// Latest update wins: displace a queued one rather than block.
	for {
		select {
		case m.boosts <- cp:
			return
		default:
		}
		select {
		case <-m.boosts:
		default:
		}
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Dropped returns the total number of audio frames discarded to ring
// overflow since the Manager was created.
func (m *Manager) Dropped() uint64 {
	return m.ring.Dropped()
}

// ─── Event loop ───

type serveReason int

const (
	reasonStopped serveReason = iota
	reasonAuth
	reasonTransport
)

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		m.mu.Lock()
		m.running = false
		cancel := m.cancel
		m.mu.Unlock()
		// Release the derived context even when the loop exits on its own
		// (terminal failure) rather than through Stop.
		if cancel != nil {
			cancel()
		}
	}()
	m.metrics.ActiveSessions.Add(context.Background(), 1)
	defer m.metrics.ActiveSessions.Add(context.Background(), -1)

	attempts := 0
	for {
		if ctx.Err() != nil {
			m.shutdown()
			return
		}
		m.setState(StateConnecting)

		sess, err := m.provider.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				m.shutdown()
				return
			}
			m.logger.Warn("dial failed", "provider", m.provider.Name(), "error", err)
			m.metrics.RecordRecognizerError(ctx, "dial")
			attempts++
			if m.retry(ctx, attempts, err) {
				return
			}
			continue
		}
		m.setState(StateConnected)

		if err := sess.Start(ctx, m.streamConfig()); err != nil {
			sess.Close()
			if ctx.Err() != nil {
				m.shutdown()
				return
			}
			m.logger.Warn("stream configuration failed", "error", err)
			m.metrics.RecordRecognizerError(ctx, "start")
			attempts++
			if m.retry(ctx, attempts, err) {
				return
			}
			continue
		}
		m.setState(StateAuthenticated)
		attempts = 0

		reason, err := m.serve(ctx, sess)
		sess.Close()

		switch reason {
		case reasonStopped:
			m.shutdown()
			return
		case reasonAuth:
			m.logger.Error("authentication rejected", "provider", m.provider.Name(), "error", err)
			m.metrics.RecordRecognizerError(ctx, "auth")
			m.fail(ErrorAuth, err)
			return
		default:
			m.logger.Warn("session ended unexpectedly", "error", err)
			m.metrics.RecordRecognizerError(ctx, "stream")
			m.sink.OnError(classify(err), errText(err))
			attempts++
			if m.retry(ctx, attempts, err) {
				return
			}
		}
	}
}

// serve runs the steady state of an authenticated session until the
// stream ends or the context is cancelled.
func (m *Manager) serve(ctx context.Context, sess recognizer.Session) (serveReason, error) {
	if n := m.ring.Len(); n > 0 {
		m.logger.Debug("flushing buffered audio", "frames", n)
	}
	if err := m.drainRing(ctx, sess); err != nil {
		return reasonTransport, err
	}

	keepalive := time.NewTicker(m.keepalive)
	defer keepalive.Stop()
	boundary := time.NewTicker(m.boundaryPoll)
	defer boundary.Stop()

	for {
		select {
		case <-ctx.Done():
			return reasonStopped, nil

		case <-m.ring.Wake():
			if err := m.drainRing(ctx, sess); err != nil {
				return reasonTransport, err
			}

		case b, ok := <-sess.Batches():
			if !ok {
				err := sess.Err()
				if errors.Is(err, recognizer.ErrAuthRejected) {
					return reasonAuth, err
				}
				return reasonTransport, err
			}
			m.handleBatch(ctx, b)
			if b.Finished {
				return reasonTransport, errors.New("service finished the stream")
			}

		case g := <-m.boosts:
			switch err := sess.SetPhraseBoosts(g); {
			case errors.Is(err, recognizer.ErrNotSupported):
				m.logger.Debug("phrase boosts deferred to next connect")
			case err != nil:
				m.logger.Warn("phrase boost update failed", "error", err)
			}

		case <-keepalive.C:
			if err := sess.Keepalive(); err != nil {
				// A failed keepalive means the transport is suspect;
				// reconnecting now beats waiting for the read side to
				// notice a dead connection.
				m.logger.Warn("keepalive failed", "error", err)
				return reasonTransport, fmt.Errorf("session: keepalive: %w", err)
			}

		case <-boundary.C:
			if c, ok := m.acc.CheckTimeout(); ok {
				m.deliver(ctx, c, "timeout")
			}
		}
	}
}

// handleBatch splits a batch into finals and partials and advances the
// accumulator. A preview update goes out whenever the visible text
// changed.
func (m *Manager) handleBatch(ctx context.Context, b recognizer.Batch) {
	var finals, partials []recognizer.Token
	for _, t := range b.Tokens {
		if t.IsFinal {
			finals = append(finals, t)
		} else {
			partials = append(partials, t)
		}
	}

	if len(finals) > 0 {
		m.metrics.RecordTokens(ctx, len(finals), true)
		res := m.acc.OnFinals(finals)
		switch {
		case res.Contamination != assembly.ContaminationNone:
			m.metrics.RecordContamination(ctx, res.Contamination.String())
		case res.Completed:
			m.deliver(ctx, res.Completion, "boundary")
		}
	}
	if len(partials) > 0 {
		m.metrics.RecordTokens(ctx, len(partials), false)
		m.acc.OnPartials(partials)
	}

	if p := m.acc.Preview(); p != m.lastPreview {
		m.lastPreview = p
		m.sink.OnPartialPreview(p)
	}
}

// deliver runs one completed sentence through the corrector and out the
// sink, clearing any stale preview. reason names what triggered the
// completion: a boundary rule, the silence timeout, or a forced flush.
func (m *Manager) deliver(ctx context.Context, c assembly.Completion, reason string) {
	start := time.Now()
	res := m.corr.Process(c.Text, c.Confidence)
	m.metrics.RecordCorrection(ctx, time.Since(start).Seconds(), res.Tier.String())
	m.metrics.RecordSentence(ctx, res.Tier.String(), reason)
	m.logger.Info("sentence completed",
		"segment_id", c.SegmentID,
		"tier", res.Tier.String(),
		"confidence", res.Confidence,
		"reason", reason,
	)
	m.sink.OnSentence(res.Text, res.Confidence)

	if m.lastPreview != "" {
		m.lastPreview = ""
		m.sink.OnPartialPreview("")
	}
}

// drainRing sends every buffered frame in order.
func (m *Manager) drainRing(ctx context.Context, sess recognizer.Session) error {
	for {
		frame, ok := m.ring.Pop()
		if !ok {
			return nil
		}
		m.metrics.BufferedFrames.Add(ctx, -1)
		if err := sess.SendAudio(frame); err != nil {
			return fmt.Errorf("session: send audio: %w", err)
		}
	}
}

// retry reports whether the session should give up after a failed
// attempt. When the budget allows another attempt it waits out the
// reconnect delay first.
func (m *Manager) retry(ctx context.Context, attempts int, cause error) (giveUp bool) {
	if attempts >= m.maxReconnects {
		m.logger.Error("reconnect budget exhausted",
			"attempts", attempts,
			"max_attempts", m.maxReconnects,
			"error", cause,
		)
		m.fail(ErrorConnection, cause)
		return true
	}
	m.setState(StateReconnecting)
	m.metrics.RecordReconnect(ctx, m.provider.Name())
	m.logger.Info("reconnecting",
		"attempt", attempts,
		"max_attempts", m.maxReconnects,
		"delay", m.reconnectDelay,
	)
	select {
	case <-ctx.Done():
		m.shutdown()
		return true
	case <-time.After(m.reconnectDelay):
		return false
	}
}

// shutdown is the ordinary stop path: flush, then disconnect.
func (m *Manager) shutdown() {
	m.flush()
	m.discardBacklog()
	m.setState(StateDisconnected)
}

// fail is the terminal error path: flush what we have, report, and park
// in StateFailed.
func (m *Manager) fail(kind ErrorKind, cause error) {
	m.flush()
	m.discardBacklog()
	m.sink.OnError(kind, errText(cause))
	m.setState(StateFailed)
}

// flush force-completes a non-empty sentence buffer so no recognized
// speech is silently lost at teardown.
func (m *Manager) flush() {
	if c, ok := m.acc.Flush(); ok {
		m.deliver(context.Background(), c, "forced")
	}
}

// discardBacklog empties the audio ring at teardown. Buffered frames
// belong to the session that just ended; a restart begins clean.
func (m *Manager) discardBacklog() {
	if n := m.ring.Clear(); n > 0 {
		m.metrics.BufferedFrames.Add(context.Background(), -int64(n))
		m.logger.Debug("discarded buffered audio", "frames", n)
	}
}

// streamConfig merges the pending phrase boosts into the static stream
// configuration.
func (m *Manager) streamConfig() recognizer.StreamConfig {
	cfg := m.stream
	m.mu.Lock()
	if m.pendingBoosts != nil {
		cfg.PhraseBoosts = m.pendingBoosts
	}
	m.mu.Unlock()
	return cfg
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	m.mu.Unlock()

	m.logger.Info("connection state changed", "state", s.String())
	m.sink.OnConnectionState(s)
}

// classify maps a stream failure onto the sink error taxonomy. Auth
// rejections never reach here; they take the terminal path in run.
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, recognizer.ErrProtocol):
		return ErrorProtocol
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTimeout
	default:
		return ErrorConnection
	}
}

func errText(err error) string {
	if err == nil {
		return "connection closed"
	}
	return err.Error()
}
