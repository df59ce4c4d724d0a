// Package mock provides a scripted spacing predictor for tests.
package mock

import (
	"context"
	"sync"

	"github.com/ieum-ai/ieum/internal/predict"
)

// Predictor returns scripted spacings. The zero value echoes every input
// unchanged. Safe for concurrent use.
type Predictor struct {
	mu sync.Mutex

	// Spacings maps input text to the answer to return.
	Spacings map[string]string

	// Err, if set, is returned by every call.
	Err error

	calls []string
}

// PredictSpacing records the call and returns the scripted answer, or the
// input unchanged when none is scripted.
func (p *Predictor) PredictSpacing(ctx context.Context, text string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, text)
	if p.Err != nil {
		return "", p.Err
	}
	if out, ok := p.Spacings[text]; ok {
		return out, nil
	}
	return text, nil
}

// Calls returns every input passed to PredictSpacing, in order.
func (p *Predictor) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

var _ predict.Predictor = (*Predictor)(nil)
