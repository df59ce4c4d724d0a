package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"recognizer": {"soniox"},
	"predictor":  {"openai", "anthropic", "gemini", "ollama", "groq"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over [Default] and validates
// the result. ${VAR} references are expanded from the environment before
// decoding; unknown fields are rejected; empty input yields the defaults.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(strings.NewReader(expandEnv(string(data))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandEnv substitutes ${VAR} and $VAR references from the environment.
// Unset variables expand to the empty string with a warning. References
// that do not look like environment names (such as "$5") pass through
// untouched.
func expandEnv(s string) string {
	return os.Expand(s, func(name string) string {
		if !isEnvName(name) {
			return "$" + name
		}
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		slog.Warn("referenced environment variable is not set", "name", name)
		return ""
	})
}

func isEnvName(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if !cfg.Server.LogFormat.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_format %q is invalid; valid values: text, json", cfg.Server.LogFormat))
	}

	// Recognizer
	if cfg.Recognizer.Provider == "" {
		errs = append(errs, errors.New("recognizer.provider is required"))
	}
	validateProviderName("recognizer", cfg.Recognizer.Provider)
	if cfg.Recognizer.APIKey == "" {
		slog.Warn("recognizer.api_key is empty; the provider will reject the stream unless the key arrives another way")
	}
	if cfg.Recognizer.Language == "" {
		errs = append(errs, errors.New("recognizer.language is required"))
	}
	for i, fb := range cfg.Recognizer.Fallbacks {
		if fb.Provider == "" {
			errs = append(errs, fmt.Errorf("recognizer.fallbacks[%d].provider is required", i))
		} else {
			validateProviderName("recognizer", fb.Provider)
		}
	}

	// Session
	if cfg.Session.FrameCapacity < 0 {
		errs = append(errs, fmt.Errorf("session.frame_capacity %d is negative", cfg.Session.FrameCapacity))
	}
	if ka := time.Duration(cfg.Session.KeepaliveInterval); ka != 0 && ka < time.Second {
		errs = append(errs, fmt.Errorf("session.keepalive_interval %s is out of range; use 0 for automatic or at least 1s", ka))
	}
	if rd := time.Duration(cfg.Session.ReconnectDelay); rd < 500*time.Millisecond || rd > 2*time.Second {
		errs = append(errs, fmt.Errorf("session.reconnect_delay %s is out of range [500ms, 2s]", rd))
	}
	if cfg.Session.MaxReconnects <= 0 {
		errs = append(errs, fmt.Errorf("session.max_reconnects %d must be positive", cfg.Session.MaxReconnects))
	}

	// Assembly
	if d := time.Duration(cfg.Assembly.SentenceTimeout); d <= 0 {
		errs = append(errs, fmt.Errorf("assembly.sentence_timeout %s must be positive", d))
	}
	if cfg.Assembly.MinRunes <= 0 {
		errs = append(errs, fmt.Errorf("assembly.min_runes %d must be positive", cfg.Assembly.MinRunes))
	}
	if cfg.Assembly.MaxRunes <= cfg.Assembly.MinRunes {
		errs = append(errs, fmt.Errorf("assembly.max_runes %d must exceed assembly.min_runes %d", cfg.Assembly.MaxRunes, cfg.Assembly.MinRunes))
	}

	// Correction
	if t := cfg.Correction.TrustedThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("correction.trusted_threshold %.2f is out of range [0, 1]", t))
	}
	if t := cfg.Correction.CautiousThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("correction.cautious_threshold %.2f is out of range [0, 1]", t))
	}
	if cfg.Correction.CautiousThreshold >= cfg.Correction.TrustedThreshold {
		errs = append(errs, fmt.Errorf("correction.cautious_threshold %.2f must be below trusted_threshold %.2f",
			cfg.Correction.CautiousThreshold, cfg.Correction.TrustedThreshold))
	}
	if cfg.Correction.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("correction.cache_size %d must be positive", cfg.Correction.CacheSize))
	}
	if s := cfg.Correction.CacheSimilarity; s < 0 || s > 1 {
		errs = append(errs, fmt.Errorf("correction.cache_similarity %.2f is out of range [0, 1]", s))
	}

	// Lexicon
	switch cfg.Lexicon.Source {
	case LexiconBuiltin:
	case LexiconFile:
		if cfg.Lexicon.Path == "" {
			errs = append(errs, errors.New("lexicon.path is required when lexicon.source is file"))
		}
	case LexiconPostgres:
		if cfg.Lexicon.PostgresDSN == "" {
			errs = append(errs, errors.New("lexicon.postgres_dsn is required when lexicon.source is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("lexicon.source %q is invalid; valid values: builtin, file, postgres", cfg.Lexicon.Source))
	}

	// Predictor
	if cfg.Predictor.Enabled {
		if cfg.Predictor.Provider == "" {
			errs = append(errs, errors.New("predictor.provider is required when the predictor is enabled"))
		} else {
			validateProviderName("predictor", cfg.Predictor.Provider)
		}
		if cfg.Predictor.Model == "" {
			errs = append(errs, errors.New("predictor.model is required when the predictor is enabled"))
		}
		if d := time.Duration(cfg.Predictor.Timeout); d <= 0 {
			errs = append(errs, fmt.Errorf("predictor.timeout %s must be positive", d))
		}
		if cfg.Predictor.APIKey == "" && cfg.Predictor.Provider != "ollama" {
			slog.Warn("predictor.api_key is empty", "provider", cfg.Predictor.Provider)
		}
	}

	// Kafka
	if cfg.Kafka.Enabled {
		if len(cfg.Kafka.Brokers) == 0 {
			slog.Warn("kafka.enabled is true but kafka.brokers is empty; publishing stays off")
		} else if cfg.Kafka.Topic == "" {
			errs = append(errs, errors.New("kafka.topic is required when brokers are configured"))
		}
	}
	if cfg.Kafka.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("kafka.queue_size %d is negative", cfg.Kafka.QueueSize))
	}

	// Phrase boosts
	for i, g := range cfg.Boosts {
		if len(g.Phrases) == 0 {
			errs = append(errs, fmt.Errorf("phrase_boosts[%d].phrases is required", i))
		}
		if g.Boost < 0 {
			errs = append(errs, fmt.Errorf("phrase_boosts[%d].boost %.2f is negative", i, g.Boost))
		}
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or a third-party registration",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
