package config_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/ieum-ai/ieum/internal/config"
)

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: verbose
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log_level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_format: xml
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log_format, got nil")
	}
	if !strings.Contains(err.Error(), "log_format") {
		t.Errorf("error should mention log_format, got: %v", err)
	}
}

func TestValidate_MissingRecognizerProvider(t *testing.T) {
	t.Parallel()
	yaml := `
recognizer:
  provider: ""
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for empty recognizer.provider, got nil")
	}
	if !strings.Contains(err.Error(), "recognizer.provider") {
		t.Errorf("error should mention recognizer.provider, got: %v", err)
	}
}

func TestValidate_FallbackWithoutProvider(t *testing.T) {
	t.Parallel()
	yaml := `
recognizer:
  fallbacks:
    - api_key: orphaned
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for fallback without provider, got nil")
	}
	if !strings.Contains(err.Error(), "fallbacks[0]") {
		t.Errorf("error should mention fallbacks[0], got: %v", err)
	}
}

func TestValidate_ReconnectDelayOutOfRange(t *testing.T) {
	t.Parallel()
	yaml := `
session:
  reconnect_delay: 5s
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for out-of-range reconnect_delay, got nil")
	}
	if !strings.Contains(err.Error(), "reconnect_delay") {
		t.Errorf("error should mention reconnect_delay, got: %v", err)
	}
}

func TestValidate_KeepaliveZeroMeansAutomatic(t *testing.T) {
	t.Parallel()
	yaml := `
session:
  keepalive_interval: 0s
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err != nil {
		t.Fatalf("keepalive_interval 0 should be valid (automatic), got: %v", err)
	}
}

func TestValidate_KeepaliveBelowOneSecond(t *testing.T) {
	t.Parallel()
	yaml := `
session:
  keepalive_interval: 200ms
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for sub-second keepalive_interval, got nil")
	}
}

func TestValidate_MaxRunesBelowMinRunes(t *testing.T) {
	t.Parallel()
	yaml := `
assembly:
  min_runes: 20
  max_runes: 15
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for max_runes below min_runes, got nil")
	}
	if !strings.Contains(err.Error(), "max_runes") {
		t.Errorf("error should mention max_runes, got: %v", err)
	}
}

func TestValidate_CautiousAboveTrusted(t *testing.T) {
	t.Parallel()
	yaml := `
correction:
  trusted_threshold: 0.7
  cautious_threshold: 0.8
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for cautious_threshold above trusted_threshold, got nil")
	}
	if !strings.Contains(err.Error(), "cautious_threshold") {
		t.Errorf("error should mention cautious_threshold, got: %v", err)
	}
}

func TestValidate_ThresholdOutOfRange(t *testing.T) {
	t.Parallel()
	yaml := `
correction:
  trusted_threshold: 1.4
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for threshold above 1, got nil")
	}
}

func TestValidate_LexiconFileNeedsPath(t *testing.T) {
	t.Parallel()
	yaml := `
lexicon:
  source: file
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for file source without path, got nil")
	}
	if !strings.Contains(err.Error(), "lexicon.path") {
		t.Errorf("error should mention lexicon.path, got: %v", err)
	}
}

func TestValidate_LexiconPostgresNeedsDSN(t *testing.T) {
	t.Parallel()
	yaml := `
lexicon:
  source: postgres
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for postgres source without dsn, got nil")
	}
	if !strings.Contains(err.Error(), "postgres_dsn") {
		t.Errorf("error should mention postgres_dsn, got: %v", err)
	}
}

func TestValidate_LexiconUnknownSource(t *testing.T) {
	t.Parallel()
	yaml := `
lexicon:
  source: redis
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown lexicon source, got nil")
	}
	if !strings.Contains(err.Error(), "lexicon.source") {
		t.Errorf("error should mention lexicon.source, got: %v", err)
	}
}

func TestValidate_PredictorEnabledNeedsModel(t *testing.T) {
	t.Parallel()
	yaml := `
predictor:
  enabled: true
  provider: openai
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for enabled predictor without model, got nil")
	}
	if !strings.Contains(err.Error(), "predictor.model") {
		t.Errorf("error should mention predictor.model, got: %v", err)
	}
}

func TestValidate_PredictorDisabledSkipsChecks(t *testing.T) {
	t.Parallel()
	// A disabled predictor section may be incomplete.
	yaml := `
predictor:
  enabled: false
  provider: ""
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_KafkaTopicRequired(t *testing.T) {
	t.Parallel()
	yaml := `
kafka:
  enabled: true
  brokers:
    - localhost:9092
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for kafka brokers without topic, got nil")
	}
	if !strings.Contains(err.Error(), "kafka.topic") {
		t.Errorf("error should mention kafka.topic, got: %v", err)
	}
}

func TestValidate_BoostGroupNeedsPhrases(t *testing.T) {
	t.Parallel()
	yaml := `
phrase_boosts:
  - phrases: []
    boost: 5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for boost group without phrases, got nil")
	}
	if !strings.Contains(err.Error(), "phrase_boosts[0]") {
		t.Errorf("error should mention phrase_boosts[0], got: %v", err)
	}
}

func TestValidate_NegativeBoost(t *testing.T) {
	t.Parallel()
	yaml := `
phrase_boosts:
  - phrases:
      - 이음
    boost: -3
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for negative boost, got nil")
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: verbose
assembly:
  min_runes: 0
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
	if !strings.Contains(errStr, "min_runes") {
		t.Errorf("error should mention min_runes, got: %v", err)
	}
}

func TestValidProviderNames(t *testing.T) {
	t.Parallel()
	// Sanity-check that the map is populated.
	if len(config.ValidProviderNames) == 0 {
		t.Fatal("ValidProviderNames should not be empty")
	}
	if !slices.Contains(config.ValidProviderNames["recognizer"], "soniox") {
		t.Error(`ValidProviderNames["recognizer"] should contain "soniox"`)
	}
	if !slices.Contains(config.ValidProviderNames["predictor"], "ollama") {
		t.Error(`ValidProviderNames["predictor"] should contain "ollama"`)
	}
}
