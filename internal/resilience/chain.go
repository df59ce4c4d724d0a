package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrExhausted is returned by [Chain.Try] when every registered provider
// failed or sat behind an open breaker.
var ErrExhausted = errors.New("resilience: all providers failed")

// ChainConfig configures a [Chain]. Breaker is the per-provider breaker
// template; its Name is replaced with each provider's own name.
type ChainConfig struct {
	Breaker BreakerConfig
}

type chainEntry[T any] struct {
	name    string
	value   T
	breaker *Breaker
}

// Chain holds providers of one type in preference order, each guarded by
// its own [Breaker]. The first entry added is the primary.
//
// Try is safe for concurrent use. Add is not; register every provider
// before the chain starts serving.
type Chain[T any] struct {
	entries []chainEntry[T]
	cfg     ChainConfig
}

// NewChain creates an empty [Chain]. Providers are registered with
// [Chain.Add].
func NewChain[T any](cfg ChainConfig) *Chain[T] {
	return &Chain[T]{cfg: cfg}
}

// Add registers a provider at the end of the preference order.
func (c *Chain[T]) Add(name string, v T) {
	bc := c.cfg.Breaker
	bc.Name = name
	c.entries = append(c.entries, chainEntry[T]{
		name:    name,
		value:   v,
		breaker: NewBreaker(bc),
	})
}

// Len reports how many providers are registered.
func (c *Chain[T]) Len() int { return len(c.entries) }

// Try runs fn against each provider in preference order until one
// succeeds. Providers behind an open breaker are skipped without being
// called. A cancelled ctx stops the walk between providers without
// charging the remaining breakers. Returns [ErrExhausted] wrapping the
// last failure when no provider succeeds.
func (c *Chain[T]) Try(ctx context.Context, fn func(T) error) error {
	if len(c.entries) == 0 {
		return fmt.Errorf("%w: no providers registered", ErrExhausted)
	}

	var lastErr error
	for i := range c.entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		e := &c.entries[i]
		err := e.breaker.Do(func() error { return fn(e.value) })
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, ErrBreakerOpen) {
			slog.Debug("skipping provider behind open breaker", "provider", e.name)
		} else {
			slog.Warn("provider failed, trying next in chain",
				"provider", e.name, "error", err)
		}
	}
	return fmt.Errorf("%w: %w", ErrExhausted, lastErr)
}
