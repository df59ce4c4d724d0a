// Package kafka publishes completed sentences to a Kafka topic as JSON
// events. Publishing is asynchronous: OnSentence enqueues onto a bounded
// queue consumed by a single writer goroutine, so the session event loop
// is never stalled by a slow broker. When the queue is full the sentence
// is dropped and counted. With Enabled false (or no brokers configured)
// the publisher runs in log-only mode.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ieum-ai/ieum/internal/session"
)

const (
	defaultQueueSize    = 256
	defaultBatchTimeout = 10 * time.Millisecond
	defaultWriteTimeout = 10 * time.Second
)

// Config holds the publisher settings, typically filled from the sink
// section of the service configuration.
type Config struct {
	// Brokers are the bootstrap broker addresses. Empty disables publishing.
	Brokers []string

	// Topic receives the sentence events. Required when enabled.
	Topic string

	// Enabled turns real publishing on. When false the publisher logs
	// sentences at debug level and writes nothing.
	Enabled bool

	// QueueSize bounds the in-flight sentence queue. Defaults to 256 if
	// zero.
	QueueSize int
}

// Event is the JSON payload published for every completed sentence.
type Event struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Confidence  float64   `json:"confidence"`
	CompletedAt time.Time `json:"completed_at"`
}

// MessageWriter is the part of [kafkago.Writer] the publisher uses. Tests
// substitute a recorder via [WithWriter].
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Option customizes a Publisher.
type Option func(*Publisher)

// WithLogger routes publisher logs through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithWriter substitutes the Kafka transport, for tests.
func WithWriter(w MessageWriter) Option {
	return func(p *Publisher) {
		if w != nil {
			p.writer = w
		}
	}
}

// Publisher is a [session.Sink] that forwards completed sentences to
// Kafka. Previews, state changes, and errors are not published; those
// reach operators through logs and metrics.
type Publisher struct {
	writer  MessageWriter
	logger  *slog.Logger
	topic   string
	enabled bool

	events  chan Event
	quit    chan struct{}
	done    chan struct{}
	dropped atomic.Uint64

	closeOnce sync.Once
	closeErr  error
}

// New builds a Publisher from cfg. A disabled configuration (Enabled
// false or no brokers) yields a log-only publisher and never errors.
func New(cfg Config, opts ...Option) (*Publisher, error) {
	p := &Publisher{
		logger: slog.Default(),
		topic:  cfg.Topic,
	}
	for _, o := range opts {
		o(p)
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		p.logger.Info("kafka publishing disabled, sentences are logged only")
		return p, nil
	}
	if cfg.Topic == "" {
		return nil, errors.New("sink/kafka: no topic configured")
	}

	if p.writer == nil {
		p.writer = &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.LeastBytes{},
			BatchTimeout: defaultBatchTimeout,
			WriteTimeout: defaultWriteTimeout,
			RequiredAcks: kafkago.RequireOne,
		}
	}

	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	p.enabled = true
	p.events = make(chan Event, size)
	p.quit = make(chan struct{})
	p.done = make(chan struct{})
	go p.run()

	p.logger.Info("kafka publisher started", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return p, nil
}

func (p *Publisher) OnSentence(text string, confidence float64) {
	if !p.enabled {
		p.logger.Debug("sentence", "text", text, "confidence", confidence)
		return
	}
	ev := Event{
		ID:          uuid.NewString(),
		Text:        text,
		Confidence:  confidence,
		CompletedAt: time.Now().UTC(),
	}
	select {
	case p.events <- ev:
	default:
		p.dropped.Add(1)
		p.logger.Warn("kafka queue full, sentence dropped", "queued", cap(p.events))
	}
}

// OnPartialPreview is a no-op: previews are ephemeral display state, not
// events.
func (p *Publisher) OnPartialPreview(string) {}

// OnConnectionState is a no-op.
func (p *Publisher) OnConnectionState(session.State) {}

// OnError is a no-op.
func (p *Publisher) OnError(session.ErrorKind, string) {}

// Dropped returns the number of sentences discarded because the queue
// was full.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Close stops accepting sentences, flushes everything still queued, and
// closes the underlying writer. Safe to call more than once.
func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	p.closeOnce.Do(func() {
		close(p.quit)
		<-p.done
		p.closeErr = p.writer.Close()
	})
	return p.closeErr
}

func (p *Publisher) run() {
	defer close(p.done)
	for {
		select {
		case ev := <-p.events:
			p.write(ev)
		case <-p.quit:
			// Drain what was queued before Close.
			for {
				select {
				case ev := <-p.events:
					p.write(ev)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) write(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("kafka event marshal failed", "error", err)
		return
	}
	msg := kafkago.Message{
		Key:   []byte(ev.ID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "eventType", Value: []byte("sentence")},
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("kafka write failed", "topic", p.topic, "error", err)
	}
}

var _ session.Sink = (*Publisher)(nil)
