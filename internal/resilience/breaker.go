// Package resilience keeps recognition dialing through vendor outages.
//
// [Breaker] is a three-state circuit breaker (closed → open → half-open)
// that stops the pipeline from hammering a recognition service that is
// already down. [Chain] composes several providers of the same type, each
// behind its own breaker, and tries them in preference order; a tripped
// primary is bypassed until its cooldown elapses. [RecognizerFallback]
// packages a chain as a drop-in recognizer provider.
//
// Breaker and Chain.Try are safe for concurrent use; chain registration
// happens once at startup.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by [Breaker.Do] while the breaker is open and
// the cooldown period has not yet elapsed.
var ErrBreakerOpen = errors.New("resilience: breaker open")

// BreakerState is the operating mode of a [Breaker].
type BreakerState int

const (
	// BreakerClosed forwards every call.
	BreakerClosed BreakerState = iota

	// BreakerOpen rejects every call with [ErrBreakerOpen] until the
	// cooldown period has passed.
	BreakerOpen

	// BreakerHalfOpen lets a limited number of probe calls through after
	// the cooldown. The probes decide whether the breaker closes again or
	// snaps back open.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a [Breaker]. The zero value of each field selects its
// default.
type BreakerConfig struct {
	// Name labels the guarded provider in log output.
	Name string

	// FailureLimit is how many consecutive failures trip the breaker.
	// Default: 3.
	FailureLimit int

	// CooldownPeriod is how long a tripped breaker rejects calls before it
	// starts probing again. Default: 30s.
	CooldownPeriod time.Duration

	// ProbeQuota is how many consecutive probe calls must succeed in the
	// half-open state before the breaker closes. Default: 2.
	ProbeQuota int
}

// Breaker is a three-state circuit breaker. Safe for concurrent use.
type Breaker struct {
	name     string
	limit    int
	cooldown time.Duration
	quota    int

	now func() time.Time // test hook

	mu        sync.Mutex
	state     BreakerState
	fails     int // consecutive failures while closed
	openedAt  time.Time
	probes    int // probes admitted this half-open round
	probeWins int // probes that came back clean
}

// NewBreaker creates a closed [Breaker], filling config defaults.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureLimit <= 0 {
		cfg.FailureLimit = 3
	}
	if cfg.CooldownPeriod <= 0 {
		cfg.CooldownPeriod = 30 * time.Second
	}
	if cfg.ProbeQuota <= 0 {
		cfg.ProbeQuota = 2
	}
	return &Breaker{
		name:     cfg.Name,
		limit:    cfg.FailureLimit,
		cooldown: cfg.CooldownPeriod,
		quota:    cfg.ProbeQuota,
		now:      time.Now,
	}
}

// Do runs fn unless the breaker is open, in which case it returns
// [ErrBreakerOpen] without calling fn. After the cooldown a bounded number
// of probe calls are admitted.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		b.state = BreakerHalfOpen
		b.probes = 0
		b.probeWins = 0
		slog.Info("provider breaker probing", "provider", b.name)

	case BreakerHalfOpen:
		if b.probes >= b.quota {
			// Probe budget spent; reject until the round settles.
			b.mu.Unlock()
			return ErrBreakerOpen
		}
	}

	// Admit the probe before running it so concurrent callers cannot
	// overshoot the quota.
	probe := b.state == BreakerHalfOpen
	if probe {
		b.probes++
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	b.settle(err, probe)
	b.mu.Unlock()
	return err
}

// settle applies the outcome of one call. Caller holds b.mu.
func (b *Breaker) settle(err error, probe bool) {
	if probe {
		if b.state != BreakerHalfOpen {
			// A sibling probe already decided this round.
			return
		}
		if err != nil {
			b.state = BreakerOpen
			b.openedAt = b.now()
			b.fails = b.limit
			slog.Warn("provider breaker reopened", "provider", b.name)
			return
		}
		b.probeWins++
		if b.probeWins >= b.quota {
			b.state = BreakerClosed
			b.fails = 0
			slog.Info("provider breaker closed", "provider", b.name)
		}
		return
	}

	if err != nil {
		b.fails++
		if b.state == BreakerClosed && b.fails >= b.limit {
			b.state = BreakerOpen
			b.openedAt = b.now()
			slog.Warn("provider breaker tripped",
				"provider", b.name, "consecutive_failures", b.fails)
		}
		return
	}
	b.fails = 0
}

// State reports the breaker's mode. An open breaker whose cooldown has
// elapsed reports half-open; the transition itself happens on the next Do.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		return BreakerHalfOpen
	}
	return b.state
}

// Reset forces the breaker closed and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.fails = 0
	b.probes = 0
	b.probeWins = 0
	slog.Info("provider breaker reset", "provider", b.name)
}
