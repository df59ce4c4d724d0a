package assembly

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// defaultTimeout is how long the buffer may sit without new final tokens
	// before an unpunctuated sentence is considered finished.
	defaultTimeout = 1500 * time.Millisecond

	// defaultMinRunes guards the timeout rule: very short fragments are not
	// completed on silence alone.
	defaultMinRunes = 10

	// defaultCeiling is the hard buffer cap. A stuck session must not
	// accumulate without bound, so hitting the ceiling forces completion no
	// matter what the text looks like.
	defaultCeiling = 500
)

// DefaultFinalEndings returns the sentence-final morphemes the detector
// recognizes. This is narrower than the lexicon's ending inventory:
// connective endings (고, 서, 면...) continue a sentence and must not
// complete one.
func DefaultFinalEndings() []string {
	return []string{
		"습니다", "습니까", "세요", "어요", "아요", "에요", "예요",
		"네요", "지요", "죠", "군요", "는데요", "거든요", "잖아요",
		"을까요", "을게요", "요", "다", "까", "야",
	}
}

// Detector decides when an accumulating buffer constitutes a complete
// sentence. It is pure state: all methods are read-only and safe to call
// from the owning event loop at any time.
type Detector struct {
	finalEndings []string
	timeout      time.Duration
	minRunes     int
	ceiling      int
}

// DetectorOption is a functional option for configuring a Detector.
type DetectorOption func(*Detector)

// WithTimeout sets the silence duration after which a long-enough buffer
// completes. Default is 1.5s.
func WithTimeout(d time.Duration) DetectorOption {
	return func(det *Detector) {
		if d > 0 {
			det.timeout = d
		}
	}
}

// WithMinRunes sets the minimum buffer length (in runes) for the timeout
// rule. Default is 10.
func WithMinRunes(n int) DetectorOption {
	return func(det *Detector) {
		if n > 0 {
			det.minRunes = n
		}
	}
}

// WithCeiling sets the hard buffer cap in runes. Default is 500.
func WithCeiling(n int) DetectorOption {
	return func(det *Detector) {
		if n > 0 {
			det.ceiling = n
		}
	}
}

// WithFinalEndings replaces the sentence-final morpheme list.
func WithFinalEndings(endings []string) DetectorOption {
	return func(det *Detector) { det.finalEndings = endings }
}

// NewDetector constructs a Detector with the given options applied over
// defaults.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		finalEndings: DefaultFinalEndings(),
		timeout:      defaultTimeout,
		minRunes:     defaultMinRunes,
		ceiling:      defaultCeiling,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// IsComplete reports whether text is a finished sentence. sinceLast is the
// elapsed time since the last final token arrived; pass zero when evaluating
// immediately after an append so only the punctuation and ending rules can
// fire.
func (d *Detector) IsComplete(text string, sinceLast time.Duration) bool {
	trimmed := strings.TrimRight(text, " ")
	if trimmed == "" {
		return false
	}
	if d.AtCeiling(trimmed) {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(trimmed)
	if isFinalPunct(last) {
		return true
	}
	for _, e := range d.finalEndings {
		if strings.HasSuffix(trimmed, e) {
			return true
		}
	}
	return sinceLast > d.timeout && utf8.RuneCountInString(trimmed) > d.minRunes
}

// AtCeiling reports whether text has reached the hard buffer cap.
func (d *Detector) AtCeiling(text string) bool {
	return utf8.RuneCountInString(text) >= d.ceiling
}

// isFinalPunct matches sentence-terminal punctuation only; commas and other
// mid-sentence marks do not complete a sentence.
func isFinalPunct(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}
