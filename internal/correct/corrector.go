// Package correct decides how aggressively recognized text is repaired,
// based on the recognizer's own confidence in it.
//
// # Tiers
//
//  1. Trusted (confidence ≥ 0.90): the text is emitted as-is and seeds the
//     ground-truth cache, together with its constituent units. The
//     reconstruction engine does not run unless the text is visibly
//     broken, see [Corrector.ShouldForceReconstruction].
//  2. Ground truth (0.70–0.90, cache hit): the text matches a phrase the
//     recognizer previously trusted; the trusted form is substituted and
//     the confidence raised to match.
//  3. Conservative (0.70–0.90, no hit): only an enumerated list of safe
//     repairs is applied, whitespace collapsing and a handful of broken
//     courtesy phrases.
//  4. Targeted (< 0.70): the known-misreading map and the full
//     reconstruction engine both run; when neither changes anything and a
//     spacing predictor is configured, its answer is taken instead.
//
// Every tier returns best-effort text; processing never fails. Final
// confidence is clamped to [0, 1].
package correct

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ieum-ai/ieum/internal/hangul"
	"github.com/ieum-ai/ieum/internal/predict"
	"github.com/ieum-ai/ieum/internal/reconstruct"
)

const (
	defaultTrustedThreshold  = 0.90
	defaultCautiousThreshold = 0.70

	// groundTruthConfidence replaces the source confidence when a cached
	// trusted phrase is substituted.
	groundTruthConfidence = 0.95

	conservativeBonus = 0.05
	targetedBonus     = 0.20

	// brokenFieldRun is how many single-syllable fields in a row mark
	// high-confidence text as broken anyway.
	brokenFieldRun = 3

	// defaultPredictTimeout bounds how long a targeted correction may wait
	// on the spacing predictor. Process runs on the session event loop.
	defaultPredictTimeout = 500 * time.Millisecond
)

// Tier identifies which correction policy produced a [Result].
type Tier int

const (
	TierTrusted Tier = iota
	TierGroundTruth
	TierConservative
	TierTargeted
)

func (t Tier) String() string {
	switch t {
	case TierTrusted:
		return "trusted"
	case TierGroundTruth:
		return "ground_truth"
	case TierConservative:
		return "conservative"
	case TierTargeted:
		return "targeted"
	default:
		return "unknown"
	}
}

// Result is the outcome of one correction pass.
type Result struct {
	Original   string
	Text       string
	Tier       Tier
	Confidence float64
}

// Changed reports whether correction modified the text.
func (r Result) Changed() bool {
	return r.Text != r.Original
}

// DefaultMisreadings maps recognizer outputs that are known to be wrong to
// their intended form. Applied only in the targeted tier.
func DefaultMisreadings() map[string]string {
	return map[string]string{
		"안녕하세여": "안녕하세요",
		"감사함니다": "감사합니다",
		"반갑슴니다": "반갑습니다",
		"알겠씁니다": "알겠습니다",
		"괜찮아여":  "괜찮아요",
	}
}

// DefaultSafeFixes returns the only rewrites the conservative tier may
// apply: courtesy phrases the recognizer habitually splits.
func DefaultSafeFixes() []reconstruct.Fix {
	return []reconstruct.Fix{
		{From: "안녕하 세요", To: "안녕하세요"},
		{From: "감사 합니다", To: "감사합니다"},
		{From: "죄송 합니다", To: "죄송합니다"},
	}
}

// Option is a functional option for configuring a [Corrector].
type Option func(*Corrector)

// WithTrustedThreshold sets the confidence at or above which text is
// trusted verbatim. Default: 0.90.
func WithTrustedThreshold(v float64) Option {
	return func(c *Corrector) {
		c.trustedMin = v
	}
}

// WithCautiousThreshold sets the confidence below which the full
// reconstruction engine runs. Default: 0.70.
func WithCautiousThreshold(v float64) Option {
	return func(c *Corrector) {
		c.cautiousMin = v
	}
}

// WithMisreadings replaces the targeted tier's misreading map.
func WithMisreadings(m map[string]string) Option {
	return func(c *Corrector) {
		c.misreads = m
	}
}

// WithSafeFixes replaces the conservative tier's repair list.
func WithSafeFixes(fixes []reconstruct.Fix) Option {
	return func(c *Corrector) {
		c.safeFixes = fixes
	}
}

// WithCache substitutes a caller-owned ground-truth cache, e.g. one shared
// across sessions.
func WithCache(cache *GroundTruthCache) Option {
	return func(c *Corrector) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithLogger sets the logger for per-sentence tier decisions (logged at
// debug level).
func WithLogger(l *slog.Logger) Option {
	return func(c *Corrector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPredictor adds a spacing predictor, consulted in the targeted tier
// when the engine and the misreading map change nothing.
func WithPredictor(p predict.Predictor) Option {
	return func(c *Corrector) {
		c.predictor = p
	}
}

// WithPredictTimeout bounds each predictor call. Default: 500 ms.
func WithPredictTimeout(d time.Duration) Option {
	return func(c *Corrector) {
		if d > 0 {
			c.predictTimeout = d
		}
	}
}

// Corrector applies the confidence-tiered correction policy.
// [Corrector.SetThresholds] may run concurrently with [Corrector.Process];
// everything else assumes a single caller, with the cache as the only other
// shared state.
type Corrector struct {
	engine         *reconstruct.Engine
	cache          *GroundTruthCache
	misreads       map[string]string
	misreadKeys    []string
	safeFixes      []reconstruct.Fix
	predictor      predict.Predictor
	predictTimeout time.Duration
	logger         *slog.Logger

	// mu guards the thresholds, which are swappable at runtime.
	mu          sync.RWMutex
	trustedMin  float64
	cautiousMin float64
}

// New returns a [Corrector] wrapping engine, configured with the supplied
// options.
func New(engine *reconstruct.Engine, opts ...Option) (*Corrector, error) {
	if engine == nil {
		return nil, errors.New("correct: nil reconstruction engine")
	}
	c := &Corrector{
		engine:         engine,
		trustedMin:     defaultTrustedThreshold,
		cautiousMin:    defaultCautiousThreshold,
		misreads:       DefaultMisreadings(),
		safeFixes:      DefaultSafeFixes(),
		predictTimeout: defaultPredictTimeout,
		logger:         slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if !(0 <= c.cautiousMin && c.cautiousMin <= c.trustedMin && c.trustedMin <= 1) {
		return nil, errors.New("correct: thresholds must satisfy 0 <= cautious <= trusted <= 1")
	}
	if c.cache == nil {
		cache, err := NewGroundTruthCache()
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}
	// Misreadings apply in deterministic order.
	c.misreadKeys = make([]string, 0, len(c.misreads))
	for k := range c.misreads {
		c.misreadKeys = append(c.misreadKeys, k)
	}
	slices.Sort(c.misreadKeys)
	return c, nil
}

// Cache returns the ground-truth cache the corrector writes trusted text
// into.
func (c *Corrector) Cache() *GroundTruthCache {
	return c.cache
}

// SetThresholds swaps both tier boundaries at runtime, for configuration
// reloads. The same invariant as [New] applies; on violation the current
// thresholds are kept.
func (c *Corrector) SetThresholds(trusted, cautious float64) error {
	if !(0 <= cautious && cautious <= trusted && trusted <= 1) {
		return errors.New("correct: thresholds must satisfy 0 <= cautious <= trusted <= 1")
	}
	c.mu.Lock()
	c.trustedMin = trusted
	c.cautiousMin = cautious
	c.mu.Unlock()
	return nil
}

func (c *Corrector) thresholds() (trusted, cautious float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trustedMin, c.cautiousMin
}

// Process corrects one completed sentence according to its source
// confidence and returns the text to emit. It never fails: the worst case
// is the input returned unchanged.
func (c *Corrector) Process(text string, confidence float64) Result {
	res := Result{Original: text, Text: text, Confidence: clamp(confidence)}
	trustedMin, cautiousMin := c.thresholds()

	switch {
	case confidence >= trustedMin:
		res.Tier = TierTrusted
		if c.ShouldForceReconstruction(text) {
			res.Text = c.engine.Reconstruct(text)
		}
		c.cache.Store(res.Text)

	case confidence >= cautiousMin:
		if cached, ok := c.cache.Lookup(text); ok {
			res.Tier = TierGroundTruth
			res.Text = cached
			res.Confidence = clamp(max(confidence, groundTruthConfidence))
		} else {
			res.Tier = TierConservative
			res.Text = c.repairSpacing(text)
			if res.Changed() {
				res.Confidence = clamp(confidence + conservativeBonus)
			}
		}

	default:
		res.Tier = TierTargeted
		res.Text = c.engine.Reconstruct(c.applyMisreadings(text))
		if res.Text == text && c.predictor != nil {
			if spaced, err := c.predictSpacing(text); err == nil {
				res.Text = spaced
			}
		}
		if res.Changed() {
			res.Confidence = clamp(confidence + targetedBonus)
		}
	}

	c.logger.Debug("sentence corrected",
		"tier", res.Tier.String(),
		"changed", res.Changed(),
		"confidence", res.Confidence,
	)
	return res
}

// ShouldForceReconstruction reports whether text looks broken enough to
// reconstruct even though its confidence clears the trusted threshold.
//
// The heuristic is deliberately isolated here so it can be tuned without
// touching the tier policy: a run of three or more single-syllable fields,
// or any phrase from the safe-fix list, marks the text as broken.
func (c *Corrector) ShouldForceReconstruction(text string) bool {
	run := 0
	for _, f := range strings.Fields(text) {
		if utf8.RuneCountInString(f) == 1 && hangul.Only(f) {
			run++
			if run >= brokenFieldRun {
				return true
			}
		} else {
			run = 0
		}
	}
	for _, fix := range c.safeFixes {
		if strings.Contains(text, fix.From) {
			return true
		}
	}
	return false
}

// ─── Tier internals ───

// predictSpacing consults the predictor under its own deadline; Process
// runs on the session event loop and must not hang on a slow model.
func (c *Corrector) predictSpacing(text string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.predictTimeout)
	defer cancel()
	out, err := c.predictor.PredictSpacing(ctx, text)
	if err != nil {
		c.logger.Debug("spacing prediction unavailable", "error", err)
		return "", err
	}
	return out, nil
}

// repairSpacing applies the conservative tier: collapse whitespace runs,
// then merge the enumerated courtesy phrases.
func (c *Corrector) repairSpacing(text string) string {
	out := strings.Join(strings.Fields(text), " ")
	for _, f := range c.safeFixes {
		out = strings.ReplaceAll(out, f.From, f.To)
	}
	return out
}

func (c *Corrector) applyMisreadings(text string) string {
	for _, k := range c.misreadKeys {
		text = strings.ReplaceAll(text, k, c.misreads[k])
	}
	return text
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
