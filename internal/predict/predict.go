// Package predict proposes word spacings for run-together Korean text
// using an external model. It augments the deterministic reconstruction
// engine: when the dictionary walk cannot improve a low-confidence
// sentence, a language model may still know where the word boundaries
// belong.
//
// Predictions are held to a hard contract: the answer may differ from the
// input by whitespace alone. [Verify] enforces it, and implementations
// reject any answer that edits characters, so a hallucinating model can
// never corrupt recognized speech.
package predict

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

// ErrRewrite is returned when a candidate spacing changed more than
// whitespace.
var ErrRewrite = errors.New("predict: candidate rewrote characters")

// Predictor proposes a spacing for text. Implementations guarantee the
// returned string differs from text by whitespace only and honor ctx
// cancellation.
type Predictor interface {
	PredictSpacing(ctx context.Context, text string) (string, error)
}

// Verify checks that candidate differs from original by whitespace alone
// and returns [ErrRewrite] otherwise.
func Verify(original, candidate string) error {
	if stripSpace(original) != stripSpace(candidate) {
		return ErrRewrite
	}
	return nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
