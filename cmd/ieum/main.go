// Command ieum runs the real-time Korean sentence reconstruction pipeline:
// PCM audio in on stdin or from a WAV file, corrected sentences out through
// the configured sinks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/ieum-ai/ieum/internal/app"
	"github.com/ieum-ai/ieum/internal/config"
	"github.com/ieum-ai/ieum/internal/observe"
	"github.com/ieum-ai/ieum/internal/predict"
	"github.com/ieum-ai/ieum/internal/predict/anyllm"
	"github.com/ieum-ai/ieum/internal/resilience"
	"github.com/ieum-ai/ieum/pkg/audio"
	"github.com/ieum-ai/ieum/pkg/recognizer"
	"github.com/ieum-ai/ieum/pkg/recognizer/soniox"
)

// version is stamped by the release build via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	audioPath := flag.String("audio", "", "read audio from a WAV file instead of stdin")
	rate := flag.Int("rate", audio.Native.SampleRate, "sample rate of raw stdin PCM in Hz")
	channels := flag.Int("channels", audio.Native.Channels, "channel count of raw stdin PCM")
	realtime := flag.Bool("realtime", false, "pace file audio at recording speed")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "ieum: config file %q not found, copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "ieum: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	level := new(slog.LevelVar)
	level.Set(slogLevel(cfg.Server.LogLevel))
	logger := newLogger(cfg.Server.LogFormat, level)
	slog.SetDefault(logger)

	slog.Info("ieum starting",
		"version", version,
		"config", *configPath,
		"provider", cfg.Recognizer.Provider,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Metrics provider ──────────────────────────────────────────────────────
	stopMetrics, err := observe.InitProvider(observe.ProviderConfig{
		ServiceName:    "ieum",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Config watcher ────────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath)
	if err != nil {
		slog.Warn("config hot reload disabled", "err", err)
	} else {
		watcher.Subscribe(func(d config.ConfigDiff, _ *config.Config) {
			if d.LogLevelChanged {
				level.Set(slogLevel(d.NewLogLevel))
				slog.Info("log level changed", "level", d.NewLogLevel)
			}
		})
		defer watcher.Stop()
	}

	// ── Audio source ──────────────────────────────────────────────────────────
	source, format, closeSource, err := openAudioSource(*audioPath, *rate, *channels)
	if err != nil {
		slog.Error("failed to open audio source", "err", err)
		return 1
	}
	defer closeSource()

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg, format)

	var opts []app.Option
	if watcher != nil {
		opts = append(opts, app.WithWatcher(watcher))
	}
	application, err := app.New(ctx, cfg, providers, opts...)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	// ── Audio pump ────────────────────────────────────────────────────────────
	submit := application.SubmitAudio
	if *realtime {
		// One native frame is 100 ms of audio; pace file playback to match.
		pace := time.Second * time.Duration(recognizer.FrameBytes) / time.Duration(2*audio.Native.SampleRate)
		submit = func(frame []byte) {
			application.SubmitAudio(frame)
			time.Sleep(pace)
		}
	}
	go func() {
		err := audio.Pump(ctx, source, format, recognizer.FrameBytes, submit)
		switch {
		case err == nil:
			// Let the recognizer finalize the tail audio and the boundary
			// timer fire before tearing the session down.
			slog.Info("audio source drained, waiting for trailing sentences")
			select {
			case <-time.After(drainGrace(cfg)):
			case <-ctx.Done():
			}
		case !errors.Is(err, context.Canceled):
			slog.Error("audio source error", "err", err)
		}
		stop()
	}()

	slog.Info("pipeline ready, streaming audio")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutting down")
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	if err := stopMetrics(shutdownCtx); err != nil {
		slog.Warn("metrics shutdown error", "err", err)
	}
	slog.Info("goodbye")
	return 0
}

// drainGrace is how long to keep the session alive after the audio source
// ends. It must outlast the sentence timeout so buffered syllables flush
// through the boundary detector rather than the forced teardown path.
func drainGrace(cfg *config.Config) time.Duration {
	grace := 2 * time.Duration(cfg.Assembly.SentenceTimeout)
	if grace < 3*time.Second {
		grace = 3 * time.Second
	}
	return grace
}

// openAudioSource returns the PCM reader and its format. With a file path
// the WAV header names the format; raw stdin uses the flag values.
func openAudioSource(path string, rate, channels int) (io.Reader, audio.Format, func(), error) {
	if path == "" {
		return os.Stdin, audio.Format{SampleRate: rate, Channels: channels}, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, audio.Format{}, nil, err
	}
	format, err := audio.ReadWAVHeader(f)
	if err != nil {
		f.Close()
		return nil, audio.Format{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, format, func() { f.Close() }, nil
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// builtinProviders maps provider kinds to the implementations that ship in
// this binary. Used for startup logging.
var builtinProviders = map[string][]string{
	"recognizer": {"soniox"},
	"predictor":  {"openai", "anthropic", "gemini", "groq", "ollama"},
}

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// ── Recognizers ───────────────────────────────────────────────────────────

	reg.RegisterRecognizer("soniox", func(entry config.ProviderEntry) (recognizer.Provider, error) {
		key := entry.APIKey
		if key == "" {
			key = os.Getenv("SONIOX_API_KEY")
		}
		var opts []soniox.Option
		if entry.Endpoint != "" {
			opts = append(opts, soniox.WithEndpoint(entry.Endpoint))
		}
		if entry.Model != "" {
			opts = append(opts, soniox.WithModel(entry.Model))
		}
		return soniox.New(key, opts...)
	})

	// ── Predictors ────────────────────────────────────────────────────────────
	// openai, anthropic, gemini and groq share the pattern: API key + model.
	for _, name := range []string{"openai", "anthropic", "gemini", "groq"} {
		reg.RegisterPredictor(name, func(pc config.PredictorConfig) (predict.Predictor, error) {
			var opts []anyllmlib.Option
			if pc.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(pc.APIKey))
			}
			return anyllm.New(name, pc.Model, opts...)
		})
	}

	// ollama is a local server and needs no key.
	reg.RegisterPredictor("ollama", func(pc config.PredictorConfig) (predict.Predictor, error) {
		return anyllm.New("ollama", pc.Model)
	})

	// Debug log of all registered providers.
	for kind, names := range builtinProviders {
		for _, name := range names {
			slog.Debug("registered provider", "kind", kind, "name", name)
		}
	}
}

// buildProviders instantiates the recognizer chain and the optional spacing
// predictor named in cfg, returning them in an [app.Providers] struct.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, error) {
	ps := &app.Providers{}

	primary, err := reg.CreateRecognizer(cfg.Recognizer.ProviderEntry)
	if err != nil {
		return nil, fmt.Errorf("create recognizer %q: %w", cfg.Recognizer.Provider, err)
	}
	ps.Recognizer = primary
	slog.Info("provider created", "kind", "recognizer", "name", primary.Name())

	if len(cfg.Recognizer.Fallbacks) > 0 {
		chain := []recognizer.Provider{primary}
		for _, entry := range cfg.Recognizer.Fallbacks {
			p, err := reg.CreateRecognizer(entry)
			if err != nil {
				return nil, fmt.Errorf("create fallback recognizer %q: %w", entry.Provider, err)
			}
			chain = append(chain, p)
		}
		fallback, err := resilience.NewRecognizerFallback(resilience.ChainConfig{}, chain...)
		if err != nil {
			return nil, err
		}
		ps.Recognizer = fallback
		slog.Info("recognizer fallback chain armed", "chain", fallback.Name())
	}

	if cfg.Predictor.Enabled {
		p, err := reg.CreatePredictor(cfg.Predictor)
		if err != nil {
			return nil, fmt.Errorf("create predictor %q: %w", cfg.Predictor.Provider, err)
		}
		ps.Predictor = p
		slog.Info("provider created", "kind", "predictor", "name", cfg.Predictor.Provider)
	}

	return ps, nil
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, format audio.Format) {
	border := strings.Repeat("═", 39)
	row := func(label, value string) {
		if len(value) > 19 {
			value = value[:16] + "…"
		}
		fmt.Printf("║  %-15s: %-19s ║\n", label, value)
	}

	fmt.Println("╔" + border + "╗")
	fmt.Println("║         ieum startup summary          ║")
	fmt.Println("╠" + border + "╣")
	name := cfg.Recognizer.Provider
	if cfg.Recognizer.Model != "" {
		name += " / " + cfg.Recognizer.Model
	}
	row("Recognizer", name)
	if n := len(cfg.Recognizer.Fallbacks); n > 0 {
		row("Fallbacks", strconv.Itoa(n))
	}
	row("Language", cfg.Recognizer.Language)
	mode := "single utterance"
	if cfg.Session.Continuous {
		mode = "continuous"
	}
	row("Session mode", mode)
	row("Audio in", format.String())
	row("Lexicon", string(cfg.Lexicon.Source))
	if cfg.Predictor.Enabled {
		row("Predictor", cfg.Predictor.Provider+" / "+cfg.Predictor.Model)
	} else {
		row("Predictor", "(disabled)")
	}
	if cfg.Kafka.Enabled {
		row("Kafka", cfg.Kafka.Topic)
	} else {
		row("Kafka", "(disabled)")
	}
	if cfg.Server.OpsAddr != "" {
		row("Ops listener", cfg.Server.OpsAddr)
	}
	fmt.Println("╚" + border + "╝")
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(format config.LogFormat, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
