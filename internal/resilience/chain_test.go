package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newStringChain(cfg ChainConfig, names ...string) *Chain[string] {
	c := NewChain[string](cfg)
	for _, n := range names {
		c.Add(n, n)
	}
	return c
}

func TestChain_PrefersFirstProvider(t *testing.T) {
	c := newStringChain(ChainConfig{}, "primary", "secondary")

	var served string
	err := c.Try(context.Background(), func(v string) error {
		served = v
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if served != "primary" {
		t.Fatalf("served = %q, want primary", served)
	}
}

func TestChain_FailsOverInOrder(t *testing.T) {
	c := newStringChain(ChainConfig{}, "primary", "secondary", "tertiary")

	var visited []string
	err := c.Try(context.Background(), func(v string) error {
		visited = append(visited, v)
		if v != "tertiary" {
			return errDial
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"primary", "secondary", "tertiary"}
	if len(visited) != len(want) {
		t.Fatalf("visited = %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited = %v, want %v", visited, want)
		}
	}
}

func TestChain_AllFailed(t *testing.T) {
	c := newStringChain(ChainConfig{}, "primary", "secondary")

	err := c.Try(context.Background(), func(string) error { return errDial })
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
}

func TestChain_Empty(t *testing.T) {
	c := NewChain[string](ChainConfig{})
	err := c.Try(context.Background(), func(string) error { return nil })
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted for an empty chain", err)
	}
}

func TestChain_SkipsTrippedProvider(t *testing.T) {
	c := newStringChain(ChainConfig{
		Breaker: BreakerConfig{FailureLimit: 2, CooldownPeriod: time.Hour},
	}, "primary", "secondary")

	// Trip the primary's breaker.
	for i := 0; i < 2; i++ {
		_ = c.Try(context.Background(), func(v string) error {
			if v == "primary" {
				return errDial
			}
			return nil
		})
	}

	var visited []string
	err := c.Try(context.Background(), func(v string) error {
		visited = append(visited, v)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(visited) != 1 || visited[0] != "secondary" {
		t.Fatalf("visited = %v, want only secondary", visited)
	}
}

func TestChain_CancelledContextStopsWalk(t *testing.T) {
	c := newStringChain(ChainConfig{}, "primary", "secondary")

	ctx, cancel := context.WithCancel(context.Background())
	var visited []string
	err := c.Try(ctx, func(v string) error {
		visited = append(visited, v)
		cancel()
		return errDial
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(visited) != 1 {
		t.Fatalf("visited = %v, want the walk to stop after cancellation", visited)
	}

	// The untouched secondary breaker stays pristine.
	if s := c.entries[1].breaker.State(); s != BreakerClosed {
		t.Fatalf("secondary breaker = %v, want closed", s)
	}
}
