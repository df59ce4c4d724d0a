package assembly

import (
	"log/slog"
	"strings"
	"time"

	"github.com/ieum-ai/ieum/pkg/recognizer"
)

// Completion is one finished sentence, ready for the corrector.
type Completion struct {
	// SegmentID identifies the segment this sentence came from. IDs start
	// at 1 and increment on every reset.
	SegmentID uint64

	// Text is the accumulated sentence buffer at completion time.
	Text string

	// Confidence is the average confidence of the segment's final tokens.
	Confidence float64

	// Forced marks completions produced by Flush (session stop) rather than
	// by a boundary rule.
	Forced bool
}

// FinalResult reports what a batch of final tokens did to the segment.
type FinalResult struct {
	// Contamination is non-none when the batch was rejected; nothing was
	// appended in that case.
	Contamination Contamination

	// Completed is true when accepting the batch finished the sentence.
	Completion Completion
	Completed  bool
}

// Accumulator holds one segment's token state: the confirmed sentence
// buffer, the partial-token preview snapshot, and the previous segment's
// tail for bleed-over checks.
//
// Not safe for concurrent use. The session manager's event loop is the
// single caller by design.
type Accumulator struct {
	det    *Detector
	logger *slog.Logger
	now    func() time.Time

	segmentID uint64
	buffer    string
	finals    []recognizer.Token
	partial   string
	prevTail  string
	lastFinal time.Time
	confSum   float64
	confCount int
}

// AccumulatorOption is a functional option for configuring an Accumulator.
type AccumulatorOption func(*Accumulator)

// WithClock replaces the time source; tests use this to drive the timeout
// rule deterministically.
func WithClock(now func() time.Time) AccumulatorOption {
	return func(a *Accumulator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger for contamination drops. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) AccumulatorOption {
	return func(a *Accumulator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAccumulator constructs an Accumulator using det for boundary decisions.
func NewAccumulator(det *Detector, opts ...AccumulatorOption) *Accumulator {
	a := &Accumulator{
		det:       det,
		logger:    slog.Default(),
		now:       time.Now,
		segmentID: 1,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// OnFinals processes one batch of final tokens: contamination check, append,
// then boundary evaluation. Rejected batches leave all state untouched.
func (a *Accumulator) OnFinals(tokens []recognizer.Token) FinalResult {
	joined := JoinTokens(tokens)
	if joined == "" {
		return FinalResult{}
	}
	if c := DetectContamination(joined, a.prevTail); c != ContaminationNone {
		a.logger.Warn("dropping contaminated token batch",
			"kind", c.String(),
			"segment_id", a.segmentID,
			"text", joined)
		return FinalResult{Contamination: c}
	}

	a.buffer = AppendText(a.buffer, joined)
	a.finals = append(a.finals, tokens...)
	for _, t := range tokens {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		a.confSum += t.Confidence
		a.confCount++
	}
	a.lastFinal = a.now()
	// Finalized speech supersedes the previewed partial snapshot.
	a.partial = ""

	// Elapsed time is zero at append: only the punctuation and ending rules
	// can complete here. The timeout rule fires from CheckTimeout.
	if a.det.IsComplete(a.buffer, 0) {
		return FinalResult{Completed: true, Completion: a.complete(false)}
	}
	return FinalResult{}
}

// OnPartials replaces the partial snapshot wholesale (upstream partials are
// cumulative snapshots, not deltas) and returns the refreshed preview.
func (a *Accumulator) OnPartials(tokens []recognizer.Token) string {
	a.partial = JoinTokens(tokens)
	return a.Preview()
}

// Preview renders the in-progress sentence: the confirmed buffer plus the
// current partial snapshot.
func (a *Accumulator) Preview() string {
	return AppendText(a.buffer, a.partial)
}

// CheckTimeout evaluates the silence-based completion rule. The caller runs
// this on a ticker; completing resets the segment, so a completed sentence
// is returned exactly once.
func (a *Accumulator) CheckTimeout() (Completion, bool) {
	if a.buffer == "" {
		return Completion{}, false
	}
	if !a.det.IsComplete(a.buffer, a.now().Sub(a.lastFinal)) {
		return Completion{}, false
	}
	return a.complete(false), true
}

// Flush force-completes whatever is buffered and resets the segment. Used on
// session stop so no confirmed speech is lost.
func (a *Accumulator) Flush() (Completion, bool) {
	if a.buffer == "" {
		a.resetSegment()
		return Completion{}, false
	}
	return a.complete(true), true
}

// Reset starts a fresh segment without emitting anything. Buffered text is
// discarded; call Flush first when it must be kept.
func (a *Accumulator) Reset() {
	a.resetSegment()
}

// Buffer returns the confirmed sentence buffer.
func (a *Accumulator) Buffer() string { return a.buffer }

// SegmentID returns the current segment's ID.
func (a *Accumulator) SegmentID() uint64 { return a.segmentID }

// AvgConfidence returns the running average confidence of the segment's
// final tokens, or 0 when the segment is empty.
func (a *Accumulator) AvgConfidence() float64 {
	if a.confCount == 0 {
		return 0
	}
	return a.confSum / float64(a.confCount)
}

func (a *Accumulator) complete(forced bool) Completion {
	c := Completion{
		SegmentID:  a.segmentID,
		Text:       a.buffer,
		Confidence: a.AvgConfidence(),
		Forced:     forced,
	}
	a.resetSegment()
	return c
}

// resetSegment rotates the finished segment out: its trailing tokens become
// the bleed-over reference, everything else clears, and the ID increments.
func (a *Accumulator) resetSegment() {
	a.prevTail = tailText(a.finals, 2)
	a.finals = a.finals[:0]
	a.buffer = ""
	a.partial = ""
	a.confSum, a.confCount = 0, 0
	a.segmentID++
}

// tailText joins the texts of the last n tokens.
func tailText(tokens []recognizer.Token, n int) string {
	if len(tokens) > n {
		tokens = tokens[len(tokens)-n:]
	}
	return JoinTokens(tokens)
}
