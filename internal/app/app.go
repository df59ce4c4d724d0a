// Package app wires the ieum pipeline into a running service.
//
// The App struct owns the full lifecycle: New builds and connects every
// subsystem from configuration, Run drives the recognition session and
// the ops listener, and Shutdown tears everything down in order.
//
// For testing, inject doubles via functional options (WithLexicon,
// WithSink, WithMetrics). When an option is not provided, New creates
// real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ieum-ai/ieum/internal/assembly"
	"github.com/ieum-ai/ieum/internal/config"
	"github.com/ieum-ai/ieum/internal/correct"
	"github.com/ieum-ai/ieum/internal/health"
	"github.com/ieum-ai/ieum/internal/lexicon"
	"github.com/ieum-ai/ieum/internal/lexicon/pgstore"
	"github.com/ieum-ai/ieum/internal/observe"
	"github.com/ieum-ai/ieum/internal/predict"
	"github.com/ieum-ai/ieum/internal/reconstruct"
	"github.com/ieum-ai/ieum/internal/session"
	"github.com/ieum-ai/ieum/internal/sink"
	kafkasink "github.com/ieum-ai/ieum/internal/sink/kafka"
	"github.com/ieum-ai/ieum/pkg/recognizer"
)

// Providers holds the backends compiled into the binary, one per slot.
// Populated by main via the config registry. Recognizer is required;
// Predictor may be nil when spacing prediction is disabled.
type Providers struct {
	Recognizer recognizer.Provider
	Predictor  predict.Predictor
}

// App owns all subsystem lifetimes and drives the recognition pipeline.
type App struct {
	cfg       *config.Config
	providers *Providers

	// Subsystems, initialised in New and torn down in Shutdown.
	lex        *lexicon.Lexicon
	pool       *pgxpool.Pool
	corrector  *correct.Corrector
	kafka      *kafkasink.Publisher
	snk        session.Sink
	extraSinks []session.Sink
	manager    *session.Manager
	watcher    *config.Watcher
	metrics    *observe.Metrics
	httpSrv    *http.Server

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles
// or optional collaborators.
type Option func(*App)

// WithLexicon injects a prebuilt lexicon instead of loading one from the
// configured source.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(a *App) { a.lex = lex }
}

// WithSink adds a sink to the delivery fanout alongside the configured
// ones.
func WithSink(s session.Sink) Option {
	return func(a *App) { a.extraSinks = append(a.extraSinks, s) }
}

// WithMetrics injects an instrument set instead of the process-wide
// default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithWatcher attaches a configuration watcher whose reloads feed the
// corrector thresholds and the phrase-boost list. The caller keeps
// ownership and stops the watcher itself.
func WithWatcher(w *config.Watcher) Option {
	return func(a *App) { a.watcher = w }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. The providers
// struct comes from main (populated via the config registry). Use Option
// functions to inject test doubles for any subsystem.
//
// New performs all initialisation synchronously: lexicon loading,
// corrector construction, sink assembly, session manager setup, reload
// subscription, and the ops listener. The session itself is not dialled
// until Run.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil || providers.Recognizer == nil {
		return nil, errors.New("app: a recognizer provider is required")
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Lexicon ───────────────────────────────────────────────────────
	if err := a.initLexicon(ctx); err != nil {
		return nil, fmt.Errorf("app: init lexicon: %w", err)
	}

	// ── 2. Corrector ─────────────────────────────────────────────────────
	if err := a.initCorrector(); err != nil {
		return nil, fmt.Errorf("app: init corrector: %w", err)
	}

	// ── 3. Sentence sinks ────────────────────────────────────────────────
	if err := a.initSinks(); err != nil {
		return nil, fmt.Errorf("app: init sinks: %w", err)
	}

	// ── 4. Session manager ───────────────────────────────────────────────
	if err := a.initSession(); err != nil {
		return nil, fmt.Errorf("app: init session: %w", err)
	}

	// ── 5. Configuration reload ──────────────────────────────────────────
	a.initReload()

	// ── 6. Ops listener ──────────────────────────────────────────────────
	a.initOps()

	return a, nil
}

// ─── Init helpers ────────────────────────────────────────────────────────────

// initLexicon builds the morpheme dictionary from the configured source.
// File and postgres sources merge over the compiled-in seed so a partial
// deployment dictionary still recognizes common words.
func (a *App) initLexicon(ctx context.Context) error {
	if a.lex != nil {
		return nil // injected
	}

	entries, endings := lexicon.Builtin(), lexicon.BuiltinEndings()

	switch a.cfg.Lexicon.Source {
	case config.LexiconBuiltin, "":

	case config.LexiconFile:
		fe, fend, err := lexicon.LoadFile(a.cfg.Lexicon.Path)
		if err != nil {
			return err
		}
		entries = lexicon.Merge(entries, fe)
		endings = append(endings, fend...)
		slog.Info("loaded lexicon file",
			"path", a.cfg.Lexicon.Path, "entries", len(fe), "endings", len(fend))

	case config.LexiconPostgres:
		pool, err := pgxpool.New(ctx, a.cfg.Lexicon.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("ping postgres: %w", err)
		}
		a.pool = pool
		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})

		store := pgstore.New(pool)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		pe, pend, err := store.Load(ctx)
		if err != nil {
			return err
		}
		entries = lexicon.Merge(entries, pe)
		endings = append(endings, pend...)
		slog.Info("loaded lexicon from postgres",
			"entries", len(pe), "endings", len(pend))

	default:
		return fmt.Errorf("unknown lexicon source %q", a.cfg.Lexicon.Source)
	}

	lex, err := lexicon.New(entries, endings)
	if err != nil {
		return err
	}
	a.lex = lex
	slog.Info("lexicon ready", "words", lex.Size())
	return nil
}

// initCorrector assembles the tiered corrector: reconstruction engine over
// the lexicon, ground-truth cache, and the optional spacing predictor.
func (a *App) initCorrector() error {
	cc := a.cfg.Correction
	cache, err := correct.NewGroundTruthCache(
		correct.WithCapacity(cc.CacheSize),
		correct.WithSimilarity(cc.CacheSimilarity),
	)
	if err != nil {
		return err
	}

	copts := []correct.Option{
		correct.WithTrustedThreshold(cc.TrustedThreshold),
		correct.WithCautiousThreshold(cc.CautiousThreshold),
		correct.WithCache(cache),
	}
	if a.cfg.Predictor.Enabled && a.providers.Predictor != nil {
		copts = append(copts,
			correct.WithPredictor(a.providers.Predictor),
			correct.WithPredictTimeout(time.Duration(a.cfg.Predictor.Timeout)),
		)
		slog.Info("spacing predictor attached",
			"provider", a.cfg.Predictor.Provider,
			"model", a.cfg.Predictor.Model,
			"timeout", time.Duration(a.cfg.Predictor.Timeout),
		)
	}

	corr, err := correct.New(reconstruct.New(a.lex), copts...)
	if err != nil {
		return err
	}
	a.corrector = corr
	return nil
}

// initSinks builds the delivery fanout: the log sink always, the Kafka
// publisher when enabled, plus any injected extras.
func (a *App) initSinks() error {
	sinks := []session.Sink{sink.NewLog(slog.Default())}

	if a.cfg.Kafka.Enabled {
		pub, err := kafkasink.New(kafkasink.Config{
			Brokers:   a.cfg.Kafka.Brokers,
			Topic:     a.cfg.Kafka.Topic,
			Enabled:   true,
			QueueSize: a.cfg.Kafka.QueueSize,
		})
		if err != nil {
			return err
		}
		a.kafka = pub
		a.closers = append(a.closers, pub.Close)
		sinks = append(sinks, pub)
		slog.Info("kafka sink enabled",
			"brokers", a.cfg.Kafka.Brokers, "topic", a.cfg.Kafka.Topic)
	}

	sinks = append(sinks, a.extraSinks...)
	if len(sinks) == 1 {
		a.snk = sinks[0]
		return nil
	}
	a.snk = sink.Fanout(sinks)
	return nil
}

// initSession builds the boundary detector from the assembly settings and
// the session manager around it.
func (a *App) initSession() error {
	ac := a.cfg.Assembly
	det := assembly.NewDetector(
		assembly.WithTimeout(time.Duration(ac.SentenceTimeout)),
		assembly.WithMinRunes(ac.MinRunes),
		assembly.WithCeiling(ac.MaxRunes),
	)

	sc := a.cfg.Session
	m, err := session.NewManager(session.ManagerConfig{
		Provider:          a.providers.Recognizer,
		Corrector:         a.corrector,
		Sink:              a.snk,
		Accumulator:       assembly.NewAccumulator(det),
		Stream:            a.streamConfig(),
		Continuous:        sc.Continuous,
		FrameCapacity:     sc.FrameCapacity,
		KeepaliveInterval: time.Duration(sc.KeepaliveInterval),
		ReconnectDelay:    time.Duration(sc.ReconnectDelay),
		MaxReconnects:     sc.MaxReconnects,
		Metrics:           a.metrics,
	})
	if err != nil {
		return err
	}
	a.manager = m
	return nil
}

// initReload subscribes the hot-reloadable pieces to the config watcher:
// correction thresholds and the phrase-boost list. The log level is
// main's to reload, since main owns the handler.
func (a *App) initReload() {
	if a.watcher == nil {
		return
	}
	a.watcher.Subscribe(func(d config.ConfigDiff, _ *config.Config) {
		if d.ThresholdsChanged {
			if err := a.corrector.SetThresholds(d.NewTrusted, d.NewCautious); err != nil {
				slog.Warn("rejected reloaded thresholds", "err", err)
			} else {
				slog.Info("correction thresholds updated",
					"trusted", d.NewTrusted, "cautious", d.NewCautious)
			}
		}
		if d.BoostsChanged {
			a.manager.SetPhraseBoosts(boostGroups(d.NewBoosts))
			slog.Info("phrase boosts updated", "groups", len(d.NewBoosts))
		}
	})
}

// initOps assembles the ops listener: readiness probes, liveness, and the
// Prometheus scrape endpoint. An empty ops_addr disables the listener.
func (a *App) initOps() {
	if a.cfg.Server.OpsAddr == "" {
		slog.Info("ops listener disabled")
		return
	}

	checks := []health.Checker{
		health.StateChecker("session",
			func() string { return a.manager.State().String() },
			func() bool { return a.manager.State() == session.StateFailed },
		),
		health.LexiconChecker(a.lex.Size),
	}
	if a.pool != nil {
		checks = append(checks, health.PingChecker("postgres", a.pool.Ping))
	}

	mux := http.NewServeMux()
	health.New(checks...).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	a.httpSrv = &http.Server{
		Addr:              a.cfg.Server.OpsAddr,
		Handler:           observe.Middleware(a.metrics)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run starts the recognition session and the ops listener and blocks
// until ctx is cancelled or the listener fails. On return the session has
// been stopped and its sentence buffer flushed.
func (a *App) Run(ctx context.Context) error {
	if err := a.manager.Start(ctx); err != nil {
		return fmt.Errorf("app: start session: %w", err)
	}

	httpErr := make(chan error, 1)
	if a.httpSrv != nil {
		go func() {
			slog.Info("ops listener up", "addr", a.httpSrv.Addr)
			if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				httpErr <- err
			}
		}()
	}

	slog.Info("pipeline running",
		"provider", a.providers.Recognizer.Name(),
		"language", a.cfg.Recognizer.Language,
		"continuous", a.cfg.Session.Continuous,
	)

	select {
	case <-ctx.Done():
	case err := <-httpErr:
		a.manager.Stop()
		return fmt.Errorf("app: ops listener: %w", err)
	}

	// Stop waits for the event loop to flush and exit.
	a.manager.Stop()
	return ctx.Err()
}

// SubmitAudio forwards one audio frame to the recognition session. Safe
// to call from any goroutine; frames buffer through reconnects and the
// oldest are dropped under sustained backpressure.
func (a *App) SubmitAudio(frame []byte) {
	a.manager.SubmitAudio(frame)
}

// State returns the recognition session's connection state.
func (a *App) State() session.State {
	return a.manager.State()
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown tears down all subsystems. It respects the context deadline:
// if ctx expires before all closers finish, remaining closers are skipped
// and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		// Stop the session first so the final flush reaches the sinks
		// before they close.
		a.manager.Stop()

		if a.httpSrv != nil {
			if err := a.httpSrv.Shutdown(ctx); err != nil {
				slog.Warn("ops listener shutdown error", "err", err)
			}
		}

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// boostGroups converts config boost groups to the recognizer's shape.
func boostGroups(groups []config.BoostGroup) []recognizer.PhraseBoost {
	if len(groups) == 0 {
		return nil
	}
	out := make([]recognizer.PhraseBoost, len(groups))
	for i, g := range groups {
		out[i] = recognizer.PhraseBoost{Phrases: g.Phrases, Boost: g.Boost}
	}
	return out
}

// streamConfig maps the recognizer section onto the per-connect stream
// configuration. AudioFormat is left to the provider default.
func (a *App) streamConfig() recognizer.StreamConfig {
	rc := a.cfg.Recognizer
	return recognizer.StreamConfig{
		Model:             rc.Model,
		Language:          rc.Language,
		EnablePartials:    rc.Partials,
		EnablePunctuation: rc.Punctuation,
		EnableVAD:         rc.VAD,
		PhraseBoosts:      boostGroups(a.cfg.Boosts),
	}
}
