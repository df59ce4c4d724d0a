package resilience

import (
	"context"
	"errors"
	"strings"

	"github.com/ieum-ai/ieum/pkg/recognizer"
)

// RecognizerFallback is a [recognizer.Provider] that dials a chain of real
// providers in preference order. A vendor whose dials keep failing is
// bypassed by its breaker until the cooldown elapses, so a regional outage
// degrades to the next configured vendor instead of a dead pipeline.
//
// Only Dial is chained: the winning session is returned as-is, and the
// caller streams against that vendor until the session ends.
type RecognizerFallback struct {
	chain *Chain[recognizer.Provider]
	names []string
}

var _ recognizer.Provider = (*RecognizerFallback)(nil)

// NewRecognizerFallback builds a fallback provider over the given chain,
// first provider preferred. Provider names come from [recognizer.Provider.Name].
func NewRecognizerFallback(cfg ChainConfig, providers ...recognizer.Provider) (*RecognizerFallback, error) {
	if len(providers) == 0 {
		return nil, errors.New("resilience: at least one recognition provider is required")
	}
	f := &RecognizerFallback{chain: NewChain[recognizer.Provider](cfg)}
	for _, p := range providers {
		f.chain.Add(p.Name(), p)
		f.names = append(f.names, p.Name())
	}
	return f, nil
}

// Name identifies the chain, naming its members in preference order.
func (f *RecognizerFallback) Name() string {
	return "fallback(" + strings.Join(f.names, ",") + ")"
}

// Dial opens a session against the first healthy provider in the chain.
func (f *RecognizerFallback) Dial(ctx context.Context) (recognizer.Session, error) {
	var sess recognizer.Session
	err := f.chain.Try(ctx, func(p recognizer.Provider) error {
		s, dialErr := p.Dial(ctx)
		if dialErr != nil {
			return dialErr
		}
		sess = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}
