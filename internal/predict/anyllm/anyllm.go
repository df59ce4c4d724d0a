// Package anyllm implements spacing prediction through
// github.com/mozilla-ai/any-llm-go, which fronts OpenAI, Anthropic,
// Gemini, Ollama, Groq, and others behind one interface.
package anyllm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	"github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/ieum-ai/ieum/internal/predict"
)

// Spacing needs no creativity; keep sampling close to greedy.
const defaultTemperature = 0.1

const systemPrompt = `You are a Korean word-spacing assistant.

The user message is one sentence from a speech recognizer with missing or
misplaced spaces between words.

Rules:
- Insert, move, or remove spaces ONLY.
- Never add, remove, or change any other character: no punctuation edits,
  no spelling fixes, no commentary.
- Respond with the corrected sentence and nothing else.`

// Predictor asks a language model for word spacings. Safe for concurrent
// use.
type Predictor struct {
	backend anyllmlib.Provider
	model   string
}

// New creates a Predictor backed by the named provider.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama",
// "groq". model names the specific model (e.g. "gpt-4o-mini"). opts are
// any-llm-go options such as anyllmlib.WithAPIKey; without an API key
// option the backend reads its usual environment variable.
func New(providerName, model string, opts ...anyllmlib.Option) (*Predictor, error) {
	if providerName == "" {
		return nil, errors.New("predict/anyllm: provider name must not be empty")
	}
	if model == "" {
		return nil, errors.New("predict/anyllm: model must not be empty")
	}
	backend, err := newBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("predict/anyllm: create %q backend: %w", providerName, err)
	}
	return &Predictor{backend: backend, model: model}, nil
}

func newBackend(name string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(name) {
	case "openai":
		return openai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "groq":
		return groq.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, groq", name)
	}
}

// PredictSpacing asks the model to space text. The answer is verified
// before it is returned: anything that differs from text by more than
// whitespace yields [predict.ErrRewrite].
func (p *Predictor) PredictSpacing(ctx context.Context, text string) (string, error) {
	temp := defaultTemperature
	params := anyllmlib.CompletionParams{
		Model:       p.model,
		Temperature: &temp,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: systemPrompt},
			{Role: "user", Content: text},
		},
	}

	resp, err := p.backend.Completion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("predict/anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("predict/anyllm: empty response")
	}

	answer := cleanAnswer(resp.Choices[0].Message.ContentString())
	if err := predict.Verify(text, answer); err != nil {
		return "", err
	}
	return answer, nil
}

// cleanAnswer strips the code fences and surrounding whitespace some
// models wrap around a plain-text answer.
func cleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```text", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}

var _ predict.Predictor = (*Predictor)(nil)
