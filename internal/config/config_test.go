package config_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ieum-ai/ieum/internal/config"
	"github.com/ieum-ai/ieum/internal/predict"
	predictmock "github.com/ieum-ai/ieum/internal/predict/mock"
	"github.com/ieum-ai/ieum/pkg/recognizer"
	recognizermock "github.com/ieum-ai/ieum/pkg/recognizer/mock"
)

// ── helpers ──────────────────────────────────────────────────────────────────

const sampleYAML = `
server:
  ops_addr: ":9191"
  log_level: debug
  log_format: json

recognizer:
  provider: soniox
  api_key: sx-test
  model: stt-rt-preview
  language: ko
  vad: true
  fallbacks:
    - provider: soniox
      api_key: sx-eu-test
      endpoint: wss://stt-rt.eu.soniox.com/transcribe-websocket

session:
  continuous: true
  frame_capacity: 80
  reconnect_delay: 750ms
  max_reconnects: 5

assembly:
  sentence_timeout: 2s
  min_runes: 8
  max_runes: 400

correction:
  trusted_threshold: 0.92
  cautious_threshold: 0.65
  cache_size: 500
  cache_similarity: 0.9

lexicon:
  source: file
  path: /etc/ieum/lexicon.yaml

predictor:
  enabled: true
  provider: ollama
  model: exaone-3.5
  timeout: 800ms

kafka:
  enabled: true
  brokers:
    - localhost:9092
  topic: ieum.sentences
  queue_size: 128

phrase_boosts:
  - phrases:
      - 이음
      - 실시간 자막
    boost: 10
`

// ── YAML loading ──────────────────────────────────────────────────────────────

func TestLoadFromReader_Valid(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.OpsAddr != ":9191" {
		t.Errorf("server.ops_addr: got %q, want %q", cfg.Server.OpsAddr, ":9191")
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("server.log_level: got %q, want %q", cfg.Server.LogLevel, config.LogDebug)
	}
	if cfg.Server.LogFormat != config.LogJSON {
		t.Errorf("server.log_format: got %q, want %q", cfg.Server.LogFormat, config.LogJSON)
	}
	if cfg.Recognizer.Provider != "soniox" {
		t.Errorf("recognizer.provider: got %q, want %q", cfg.Recognizer.Provider, "soniox")
	}
	if !cfg.Recognizer.VAD {
		t.Error("recognizer.vad: got false, want true")
	}
	if len(cfg.Recognizer.Fallbacks) != 1 {
		t.Fatalf("recognizer.fallbacks: got %d, want 1", len(cfg.Recognizer.Fallbacks))
	}
	if cfg.Recognizer.Fallbacks[0].Endpoint != "wss://stt-rt.eu.soniox.com/transcribe-websocket" {
		t.Errorf("recognizer.fallbacks[0].endpoint: got %q", cfg.Recognizer.Fallbacks[0].Endpoint)
	}
	if got := time.Duration(cfg.Session.ReconnectDelay); got != 750*time.Millisecond {
		t.Errorf("session.reconnect_delay: got %s, want 750ms", got)
	}
	if got := time.Duration(cfg.Assembly.SentenceTimeout); got != 2*time.Second {
		t.Errorf("assembly.sentence_timeout: got %s, want 2s", got)
	}
	if cfg.Correction.TrustedThreshold != 0.92 {
		t.Errorf("correction.trusted_threshold: got %.2f, want 0.92", cfg.Correction.TrustedThreshold)
	}
	if cfg.Lexicon.Source != config.LexiconFile {
		t.Errorf("lexicon.source: got %q, want %q", cfg.Lexicon.Source, config.LexiconFile)
	}
	if cfg.Predictor.Model != "exaone-3.5" {
		t.Errorf("predictor.model: got %q", cfg.Predictor.Model)
	}
	if cfg.Kafka.Topic != "ieum.sentences" {
		t.Errorf("kafka.topic: got %q", cfg.Kafka.Topic)
	}
	if len(cfg.Boosts) != 1 || len(cfg.Boosts[0].Phrases) != 2 {
		t.Fatalf("phrase_boosts: got %+v, want one group with two phrases", cfg.Boosts)
	}
	if cfg.Boosts[0].Boost != 10 {
		t.Errorf("phrase_boosts[0].boost: got %.1f, want 10", cfg.Boosts[0].Boost)
	}
}

func TestLoadFromReader_EmptyIsDefaults(t *testing.T) {
	// An empty config is valid and equals Default().
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error for empty config: %v", err)
	}
	if cfg.Recognizer.Provider != "soniox" {
		t.Errorf("recognizer.provider default: got %q, want soniox", cfg.Recognizer.Provider)
	}
	if cfg.Session.MaxReconnects != 10 {
		t.Errorf("session.max_reconnects default: got %d, want 10", cfg.Session.MaxReconnects)
	}
	if got := time.Duration(cfg.Assembly.SentenceTimeout); got != 1500*time.Millisecond {
		t.Errorf("assembly.sentence_timeout default: got %s, want 1.5s", got)
	}
	if cfg.Correction.CacheSize != 300 {
		t.Errorf("correction.cache_size default: got %d, want 300", cfg.Correction.CacheSize)
	}
	if cfg.Lexicon.Source != config.LexiconBuiltin {
		t.Errorf("lexicon.source default: got %q, want builtin", cfg.Lexicon.Source)
	}
}

func TestLoadFromReader_PartialKeepsDefaults(t *testing.T) {
	// Setting one field in a section must not zero its siblings.
	yaml := `
assembly:
  min_runes: 5
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assembly.MinRunes != 5 {
		t.Errorf("assembly.min_runes: got %d, want 5", cfg.Assembly.MinRunes)
	}
	if got := time.Duration(cfg.Assembly.SentenceTimeout); got != 1500*time.Millisecond {
		t.Errorf("assembly.sentence_timeout: got %s, want untouched 1.5s", got)
	}
	if cfg.Assembly.MaxRunes != 500 {
		t.Errorf("assembly.max_runes: got %d, want untouched 500", cfg.Assembly.MaxRunes)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	yaml := `
recogniser:
  provider: soniox
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown top-level field, got nil")
	}
	if !strings.Contains(err.Error(), "recogniser") {
		t.Errorf("error should name the unknown field, got: %v", err)
	}
}

func TestLoadFromReader_BadDuration(t *testing.T) {
	yaml := `
session:
  reconnect_delay: fast
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unparsable duration, got nil")
	}
	if !strings.Contains(err.Error(), "duration") {
		t.Errorf("error should mention duration, got: %v", err)
	}
}

// ── Environment expansion ─────────────────────────────────────────────────────

func TestLoadFromReader_ExpandsEnv(t *testing.T) {
	t.Setenv("IEUM_TEST_API_KEY", "sx-from-env")
	yaml := `
recognizer:
  api_key: ${IEUM_TEST_API_KEY}
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Recognizer.APIKey != "sx-from-env" {
		t.Errorf("recognizer.api_key: got %q, want %q", cfg.Recognizer.APIKey, "sx-from-env")
	}
}

func TestLoadFromReader_UnsetEnvExpandsEmpty(t *testing.T) {
	yaml := `
recognizer:
  api_key: ${IEUM_SURELY_UNSET_VARIABLE_93}
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Recognizer.APIKey != "" {
		t.Errorf("recognizer.api_key: got %q, want empty", cfg.Recognizer.APIKey)
	}
}

// ── Registry ─────────────────────────────────────────────────────────────────

func TestRegistry_UnknownRecognizer(t *testing.T) {
	reg := config.NewRegistry()
	_, err := reg.CreateRecognizer(config.ProviderEntry{Provider: "nonexistent"})
	if err == nil {
		t.Fatal("expected error for unknown recognizer provider")
	}
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("expected ErrProviderNotRegistered, got: %v", err)
	}
}

func TestRegistry_UnknownPredictor(t *testing.T) {
	reg := config.NewRegistry()
	_, err := reg.CreatePredictor(config.PredictorConfig{Provider: "nonexistent"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("expected ErrProviderNotRegistered, got: %v", err)
	}
}

func TestRegistry_RegisteredRecognizer(t *testing.T) {
	reg := config.NewRegistry()
	want := &recognizermock.Provider{ProviderName: "stub"}
	reg.RegisterRecognizer("stub", func(e config.ProviderEntry) (recognizer.Provider, error) {
		return want, nil
	})
	got, err := reg.CreateRecognizer(config.ProviderEntry{Provider: "stub"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Error("returned provider is not the expected instance")
	}
}

func TestRegistry_RegisteredPredictor(t *testing.T) {
	reg := config.NewRegistry()
	want := &predictmock.Predictor{}
	reg.RegisterPredictor("stub", func(pc config.PredictorConfig) (predict.Predictor, error) {
		return want, nil
	})
	got, err := reg.CreatePredictor(config.PredictorConfig{Provider: "stub"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Error("returned predictor is not the expected instance")
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	reg := config.NewRegistry()
	wantErr := errors.New("factory boom")
	reg.RegisterRecognizer("broken", func(e config.ProviderEntry) (recognizer.Provider, error) {
		return nil, wantErr
	})
	_, err := reg.CreateRecognizer(config.ProviderEntry{Provider: "broken"})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected factory error %v, got %v", wantErr, err)
	}
}

func TestRegistry_FactoryReceivesEntry(t *testing.T) {
	reg := config.NewRegistry()
	var seen config.ProviderEntry
	reg.RegisterRecognizer("probe", func(e config.ProviderEntry) (recognizer.Provider, error) {
		seen = e
		return &recognizermock.Provider{}, nil
	})
	entry := config.ProviderEntry{Provider: "probe", APIKey: "k", Endpoint: "wss://x", Model: "m"}
	if _, err := reg.CreateRecognizer(entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != entry {
		t.Errorf("factory entry: got %+v, want %+v", seen, entry)
	}
}
