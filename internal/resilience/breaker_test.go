package resilience

import (
	"errors"
	"testing"
	"time"
)

var errDial = errors.New("dial refused")

// frozenClock pins a breaker to a controllable instant.
func frozenClock(b *Breaker) *time.Time {
	at := time.Now()
	b.now = func() time.Time { return at }
	return &at
}

func TestNewBreaker_Defaults(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "soniox"})
	if b.limit != 3 {
		t.Errorf("limit = %d, want 3", b.limit)
	}
	if b.cooldown != 30*time.Second {
		t.Errorf("cooldown = %v, want 30s", b.cooldown)
	}
	if b.quota != 2 {
		t.Errorf("quota = %d, want 2", b.quota)
	}
	if b.State() != BreakerClosed {
		t.Errorf("initial state = %v, want closed", b.State())
	}
}

func TestBreaker_ClosedForwardsCalls(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "soniox"})
	called := false
	if err := b.Do(func() error { called = true; return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("fn was not called")
	}
}

func TestBreaker_TripsAfterFailureLimit(t *testing.T) {
	b := NewBreaker(BreakerConfig{
		Name:           "soniox",
		FailureLimit:   3,
		CooldownPeriod: time.Hour,
	})

	for i := 0; i < 3; i++ {
		_ = b.Do(func() error { return errDial })
	}
	if b.State() != BreakerOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	err := b.Do(func() error {
		t.Fatal("fn called through an open breaker")
		return nil
	})
	if !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("err = %v, want ErrBreakerOpen", err)
	}
}

func TestBreaker_SuccessClearsFailureStreak(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "soniox", FailureLimit: 3})

	_ = b.Do(func() error { return errDial })
	_ = b.Do(func() error { return errDial })
	_ = b.Do(func() error { return nil })
	_ = b.Do(func() error { return errDial })
	_ = b.Do(func() error { return errDial })

	if b.State() != BreakerClosed {
		t.Fatalf("state = %v, want closed (streak was broken)", b.State())
	}
}

func TestBreaker_CooldownAdmitsProbes(t *testing.T) {
	b := NewBreaker(BreakerConfig{
		Name:           "soniox",
		FailureLimit:   1,
		CooldownPeriod: time.Minute,
	})
	at := frozenClock(b)

	_ = b.Do(func() error { return errDial })
	if b.State() != BreakerOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	*at = at.Add(30 * time.Second)
	if b.State() != BreakerOpen {
		t.Fatal("cooldown not yet elapsed, breaker should still be open")
	}

	*at = at.Add(30 * time.Second)
	if b.State() != BreakerHalfOpen {
		t.Fatalf("state = %v, want half-open after the cooldown", b.State())
	}

	called := false
	if err := b.Do(func() error { called = true; return nil }); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	if !called {
		t.Fatal("probe fn was not called")
	}
}

func TestBreaker_ClosesAfterProbeQuota(t *testing.T) {
	b := NewBreaker(BreakerConfig{
		Name:           "soniox",
		FailureLimit:   1,
		CooldownPeriod: time.Minute,
		ProbeQuota:     2,
	})
	at := frozenClock(b)

	_ = b.Do(func() error { return errDial })
	*at = at.Add(time.Minute)

	for i := 0; i < 2; i++ {
		if err := b.Do(func() error { return nil }); err != nil {
			t.Fatalf("probe %d: %v", i, err)
		}
	}
	if b.State() != BreakerClosed {
		t.Fatalf("state = %v, want closed after %d clean probes", b.State(), 2)
	}
}

func TestBreaker_ProbeFailureReopens(t *testing.T) {
	b := NewBreaker(BreakerConfig{
		Name:           "soniox",
		FailureLimit:   1,
		CooldownPeriod: time.Minute,
		ProbeQuota:     3,
	})
	at := frozenClock(b)

	_ = b.Do(func() error { return errDial })
	*at = at.Add(time.Minute)

	if err := b.Do(func() error { return errDial }); err == nil {
		t.Fatal("expected the probe's own error")
	}

	b.mu.Lock()
	state := b.state
	b.mu.Unlock()
	if state != BreakerOpen {
		t.Fatalf("state = %v, want open after a failed probe", state)
	}

	// The failed probe restarts the cooldown.
	if err := b.Do(func() error { return nil }); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("err = %v, want ErrBreakerOpen during the new cooldown", err)
	}
}

func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker(BreakerConfig{
		Name:           "soniox",
		FailureLimit:   1,
		CooldownPeriod: time.Hour,
	})

	_ = b.Do(func() error { return errDial })
	if b.State() != BreakerOpen {
		t.Fatal("expected open")
	}

	b.Reset()
	if b.State() != BreakerClosed {
		t.Fatalf("state = %v, want closed after reset", b.State())
	}
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("unexpected error after reset: %v", err)
	}
}

func TestBreakerState_String(t *testing.T) {
	tests := []struct {
		state BreakerState
		want  string
	}{
		{BreakerClosed, "closed"},
		{BreakerOpen, "open"},
		{BreakerHalfOpen, "half-open"},
		{BreakerState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("BreakerState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
