// Package config provides the configuration schema, loader, provider
// registry, and hot-reload watcher for the ieum sentence-reconstruction
// service.
//
// Configuration comes from a single YAML file decoded strictly over
// [Default], so absent fields keep their documented defaults and unknown
// fields are rejected. `${VAR}` references are expanded from the
// environment before decoding, which keeps secrets like api keys out of
// the file itself.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// LogFormat selects the slog handler encoding.
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

// IsValid reports whether f is a recognised log format.
func (f LogFormat) IsValid() bool {
	return f == LogText || f == LogJSON
}

// LexiconSource selects where the dictionary is loaded from.
type LexiconSource string

const (
	// LexiconBuiltin uses only the compiled-in seed dictionary.
	LexiconBuiltin LexiconSource = "builtin"

	// LexiconFile merges a YAML dictionary file over the seed dictionary.
	LexiconFile LexiconSource = "file"

	// LexiconPostgres merges rows from the lexicon tables over the seed
	// dictionary.
	LexiconPostgres LexiconSource = "postgres"
)

// IsValid reports whether s is a recognised lexicon source.
func (s LexiconSource) IsValid() bool {
	switch s {
	case LexiconBuiltin, LexiconFile, LexiconPostgres:
		return true
	}
	return false
}

// Duration is a time.Duration that decodes from YAML duration strings such
// as "1s" or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"1s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) String() string { return time.Duration(d).String() }

// Config is the root configuration structure. Load it with [Load] or
// [LoadFromBytes]; construct defaults with [Default].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Session    SessionConfig    `yaml:"session"`
	Assembly   AssemblyConfig   `yaml:"assembly"`
	Correction CorrectionConfig `yaml:"correction"`
	Lexicon    LexiconConfig    `yaml:"lexicon"`
	Predictor  PredictorConfig  `yaml:"predictor"`
	Kafka      KafkaConfig      `yaml:"kafka"`

	// Boosts are phrase groups whose recognition probability is raised.
	// This list is hot-reloadable: the watcher pushes changes to the live
	// session.
	Boosts []BoostGroup `yaml:"phrase_boosts"`
}

// ServerConfig holds logging and the ops HTTP listener settings.
type ServerConfig struct {
	// OpsAddr is the TCP address for /metrics, /healthz, and /readyz.
	// Empty disables the ops listener.
	OpsAddr string `yaml:"ops_addr"`

	// LogLevel controls verbosity. Hot-reloadable.
	LogLevel LogLevel `yaml:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat LogFormat `yaml:"log_format"`
}

// ProviderEntry names one recognition backend and its credentials. The
// Provider field selects the factory registered in the [Registry].
type ProviderEntry struct {
	// Provider selects the registered implementation (e.g. "soniox").
	Provider string `yaml:"provider"`

	// APIKey authenticates against the service. Usually an env reference
	// like ${IEUM_API_KEY}.
	APIKey string `yaml:"api_key"`

	// Endpoint overrides the provider's default service URL. Useful for
	// regional deployments and tests.
	Endpoint string `yaml:"endpoint"`

	// Model selects a service-side model. Empty uses the provider default.
	Model string `yaml:"model"`
}

// RecognizerConfig configures the recognition stream: the primary backend,
// optional fallbacks tried in order at dial time, and the recognition
// options sent in the stream configuration message.
type RecognizerConfig struct {
	ProviderEntry `yaml:",inline"`

	// Language is the recognition language tag.
	Language string `yaml:"language"`

	// Partials requests provisional tokens for live preview rendering.
	Partials bool `yaml:"partials"`

	// Punctuation asks the service to insert punctuation marks.
	Punctuation bool `yaml:"punctuation"`

	// VAD enables service-side endpoint detection.
	VAD bool `yaml:"vad"`

	// Fallbacks are additional backends dialed in order when the primary
	// is down.
	Fallbacks []ProviderEntry `yaml:"fallbacks"`
}

// SessionConfig tunes the session manager.
type SessionConfig struct {
	// Continuous marks a long-running session; keepalives are sent more
	// often so silence never times the stream out.
	Continuous bool `yaml:"continuous"`

	// FrameCapacity bounds the audio buffer in 100 ms frames. The oldest
	// frame is dropped when the buffer is full.
	FrameCapacity int `yaml:"frame_capacity"`

	// KeepaliveInterval overrides the keepalive cadence. Zero selects the
	// automatic cadence (15s, or 10s for continuous sessions).
	KeepaliveInterval Duration `yaml:"keepalive_interval"`

	// ReconnectDelay is the fixed pause between reconnect attempts.
	// Must stay within 500ms–2s.
	ReconnectDelay Duration `yaml:"reconnect_delay"`

	// MaxReconnects is the consecutive failed-attempt budget before the
	// session gives up.
	MaxReconnects int `yaml:"max_reconnects"`
}

// AssemblyConfig tunes sentence boundary detection.
type AssemblyConfig struct {
	// SentenceTimeout completes a sentence that has not grown for this
	// long, provided it is at least MinRunes long.
	SentenceTimeout Duration `yaml:"sentence_timeout"`

	// MinRunes guards the timeout rule against emitting tiny fragments.
	MinRunes int `yaml:"min_runes"`

	// MaxRunes force-completes a sentence that reaches this length.
	MaxRunes int `yaml:"max_runes"`
}

// CorrectionConfig tunes the confidence-tiered corrector. The thresholds
// are hot-reloadable.
type CorrectionConfig struct {
	// TrustedThreshold is the confidence at or above which text passes
	// through verbatim.
	TrustedThreshold float64 `yaml:"trusted_threshold"`

	// CautiousThreshold is the confidence below which the full
	// reconstruction engine runs.
	CautiousThreshold float64 `yaml:"cautious_threshold"`

	// CacheSize bounds the ground-truth cache.
	CacheSize int `yaml:"cache_size"`

	// CacheSimilarity is the minimum similarity for a near-duplicate
	// cache hit, in [0, 1].
	CacheSimilarity float64 `yaml:"cache_similarity"`
}

// LexiconConfig selects the dictionary source.
type LexiconConfig struct {
	// Source is builtin, file, or postgres. File and postgres sources are
	// merged over the builtin seed dictionary.
	Source LexiconSource `yaml:"source"`

	// Path is the YAML dictionary file, required when Source is file.
	Path string `yaml:"path"`

	// PostgresDSN is the connection string, required when Source is
	// postgres.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// PredictorConfig configures the optional LLM spacing predictor consulted
// for low-confidence text the dictionary engine cannot improve.
type PredictorConfig struct {
	// Enabled turns the predictor on. Off by default.
	Enabled bool `yaml:"enabled"`

	// Provider selects the model backend (openai, anthropic, gemini,
	// ollama, groq).
	Provider string `yaml:"provider"`

	// Model names the model to use.
	Model string `yaml:"model"`

	// APIKey authenticates against the backend. Ollama needs none.
	APIKey string `yaml:"api_key"`

	// Timeout bounds one prediction call.
	Timeout Duration `yaml:"timeout"`
}

// KafkaConfig configures the Kafka sentence sink.
type KafkaConfig struct {
	// Enabled turns publishing on. Off by default; completed sentences
	// then reach only the log sink.
	Enabled bool `yaml:"enabled"`

	// Brokers lists the bootstrap broker addresses.
	Brokers []string `yaml:"brokers"`

	// Topic receives one JSON event per completed sentence.
	Topic string `yaml:"topic"`

	// QueueSize bounds the in-flight publish queue.
	QueueSize int `yaml:"queue_size"`
}

// BoostGroup is a set of phrases boosted with a shared weight.
type BoostGroup struct {
	Phrases []string `yaml:"phrases"`
	Boost   float64  `yaml:"boost"`
}

// Default returns the documented default configuration. Loading YAML
// decodes over this value, so a file only needs the fields it changes.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			OpsAddr:   ":9090",
			LogLevel:  LogInfo,
			LogFormat: LogText,
		},
		Recognizer: RecognizerConfig{
			ProviderEntry: ProviderEntry{Provider: "soniox"},
			Language:      "ko",
			Partials:      true,
			Punctuation:   true,
		},
		Session: SessionConfig{
			FrameCapacity:  50,
			ReconnectDelay: Duration(time.Second),
			MaxReconnects:  10,
		},
		Assembly: AssemblyConfig{
			SentenceTimeout: Duration(1500 * time.Millisecond),
			MinRunes:        10,
			MaxRunes:        500,
		},
		Correction: CorrectionConfig{
			TrustedThreshold:  0.90,
			CautiousThreshold: 0.70,
			CacheSize:         300,
			CacheSimilarity:   0.88,
		},
		Lexicon: LexiconConfig{
			Source: LexiconBuiltin,
		},
		Predictor: PredictorConfig{
			Timeout: Duration(500 * time.Millisecond),
		},
		Kafka: KafkaConfig{
			QueueSize: 256,
		},
	}
}
