// Package reconstruct rebuilds readable Korean sentences from fragmented
// recognizer output.
//
// Streaming recognizers under poor audio conditions emit Korean as isolated
// syllables and run-together blobs: "저 는 학교 에 가 요" instead of
// "저는 학교에 가요". Korean offers no whitespace word boundaries to lean on,
// so the engine reassembles text against a dictionary instead.
//
// # Pipeline
//
//  1. Short-circuit: input without any Hangul content is returned unchanged.
//  2. Normalize: collapse whitespace runs and detach sentence punctuation
//     into standalone fields.
//  3. Phrase fixes: literal repairs for a short list of very-high-frequency
//     courtesy phrases the recognizer tends to split mid-word.
//  4. Longest match: scan fields left to right, greedily joining the widest
//     run of adjacent fields that forms a known unit (dictionary word,
//     stem+ending, or word+particle). Fields that match nothing are re-scanned
//     at character granularity and split into known units when the whole
//     field decomposes cleanly.
//  5. Reattachment: glue leftover particle/ending fields onto the preceding
//     token. A complete word only absorbs a suffix when the union is itself a
//     known form; incomplete fragments absorb suffixes unconditionally.
//  6. Cleanup: single spaces between tokens, no space before punctuation.
//
// The naive rule "always merge adjacent single characters" destroys
// legitimate boundaries (a one-character pronoun followed by a one-character
// noun must stay two words), so every merge in passes 4 and 5 is gated on
// producing a known form. Reconstruct is idempotent: running it on its own
// output changes nothing.
package reconstruct

import (
	"strings"
	"unicode/utf8"

	"github.com/ieum-ai/ieum/internal/hangul"
	"github.com/ieum-ai/ieum/internal/lexicon"
)

// defaultWindow is how many adjacent fields the longest-match pass will try
// to join into one candidate.
const defaultWindow = 6

// Fix is one literal substring repair, applied to the whitespace-normalized
// text before segmentation.
type Fix struct {
	From string
	To   string
}

// DefaultFixes returns the built-in repairs for courtesy phrases. The list is
// deliberately short: each entry is a spacing break observed so often in
// recognizer output that fixing it literally beats re-deriving it.
func DefaultFixes() []Fix {
	return []Fix{
		{From: "안녕하 세요", To: "안녕하세요"},
		{From: "안녕 하세요", To: "안녕하세요"},
		{From: "감사 합니다", To: "감사합니다"},
		{From: "고맙 습니다", To: "고맙습니다"},
		{From: "죄송 합니다", To: "죄송합니다"},
		{From: "미안 합니다", To: "미안합니다"},
		{From: "반갑 습니다", To: "반갑습니다"},
		{From: "알겠 습니다", To: "알겠습니다"},
		{From: "수고 하셨습니다", To: "수고하셨습니다"},
	}
}

// Engine reassembles fragmented Korean text. It is stateless beyond its
// immutable configuration and safe for concurrent use.
type Engine struct {
	lex    *lexicon.Lexicon
	window int
	fixes  []Fix

	// maxUnit bounds the character-level scanner: no known unit can be
	// longer than the longest word plus the longest suffix.
	maxUnit int
}

// Option is a functional option for configuring an Engine during construction.
type Option func(*Engine)

// WithWindow sets how many adjacent fields the longest-match pass may join.
// Values below 2 are ignored. Default is 6.
func WithWindow(n int) Option {
	return func(e *Engine) {
		if n >= 2 {
			e.window = n
		}
	}
}

// WithFixes replaces the phrase repair list. Pass nil to disable literal
// repairs entirely.
func WithFixes(fixes []Fix) Option {
	return func(e *Engine) { e.fixes = fixes }
}

// New constructs an Engine over lex, which must be non-nil and is never
// mutated. Options are applied after defaults.
func New(lex *lexicon.Lexicon, opts ...Option) *Engine {
	e := &Engine{
		lex:    lex,
		window: defaultWindow,
		fixes:  DefaultFixes(),
	}
	for _, o := range opts {
		o(e)
	}
	e.maxUnit = lex.MaxWordRunes() + lex.MaxSuffixRunes()
	return e
}

// Reconstruct runs the full pipeline over text and returns the reassembled
// sentence. Input without Hangul content is returned byte-for-byte unchanged.
// Reconstruct never fails: when nothing matches, the output is the input
// with whitespace and punctuation spacing normalized.
func (e *Engine) Reconstruct(text string) string {
	if !hangul.Contains(text) {
		return text
	}
	s := normalize(text)
	s = e.applyFixes(s)
	fields := strings.Fields(s)
	fields = e.longestMatch(fields)
	fields = e.reattach(fields)
	return cleanup(fields)
}

// ─── Passes ───────────────────────────────────────────────────────────────────

// normalize collapses whitespace runs to single spaces and detaches sentence
// punctuation into standalone fields so it cannot block field joins. The
// cleanup pass reattaches it.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if hangul.IsPunct(r) {
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func (e *Engine) applyFixes(s string) string {
	for _, f := range e.fixes {
		s = strings.ReplaceAll(s, f.From, f.To)
	}
	return s
}

// longestMatch is the core pass: left-to-right over fields, preferring the
// widest multi-field join that forms a known unit, then falling back to
// character-level segmentation of unmatched fields.
func (e *Engine) longestMatch(fields []string) []string {
	out := make([]string, 0, len(fields))
	for i := 0; i < len(fields); {
		if n, joined := e.bestJoin(fields, i); n > 1 {
			out = append(out, joined)
			i += n
			continue
		}
		if parts, ok := e.segment(fields[i]); ok {
			out = append(out, parts...)
		} else {
			out = append(out, fields[i])
		}
		i++
	}
	return out
}

// bestJoin tries joining fields[i:i+n] for n from the window down to 2 and
// returns the first (widest) join that forms a known unit. Returns n=1 when
// no join is known.
func (e *Engine) bestJoin(fields []string, i int) (int, string) {
	limit := e.window
	if rest := len(fields) - i; rest < limit {
		limit = rest
	}
	for n := limit; n >= 2; n-- {
		cand := strings.Join(fields[i:i+n], "")
		if !hangul.Only(cand) {
			continue
		}
		if e.known(cand) {
			return n, cand
		}
	}
	return 1, fields[i]
}

// segment re-scans a single unmatched field at character granularity and
// splits it into known units ("오늘날씨" → "오늘 날씨"). It only commits when
// the entire field decomposes into two or more known units; anything less
// certain is left untouched.
func (e *Engine) segment(field string) ([]string, bool) {
	if utf8.RuneCountInString(field) < 2 || !hangul.Only(field) || e.known(field) {
		return nil, false
	}
	runes := []rune(field)
	var parts []string
	for i := 0; i < len(runes); {
		limit := e.maxUnit
		if rest := len(runes) - i; rest < limit {
			limit = rest
		}
		consumed := 0
		for n := limit; n >= 1; n-- {
			if cand := string(runes[i : i+n]); e.known(cand) {
				parts = append(parts, cand)
				consumed = n
				break
			}
		}
		if consumed == 0 {
			return nil, false
		}
		i += consumed
	}
	if len(parts) < 2 {
		return nil, false
	}
	return parts, true
}

// reattach glues stranded particle/ending fields onto the preceding token.
// Segmentation can leave a particle separated from a word the earlier passes
// already emitted, so this runs over the pass output, not the raw input.
func (e *Engine) reattach(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(out) == 0 || !e.attachable(out[len(out)-1], f) {
			out = append(out, f)
			continue
		}
		out[len(out)-1] += f
	}
	return out
}

// attachable reports whether next should be glued onto prev without a space.
// Only particles and endings attach. A complete word absorbs a suffix only
// when the union is itself a known form; merging two otherwise-complete
// words is never allowed. Fragments absorb suffixes unconditionally, since a
// stranded suffix after an unrecognized fragment belongs to it.
func (e *Engine) attachable(prev, next string) bool {
	if !hangul.Only(prev) || !hangul.Only(next) {
		return false
	}
	if !e.lex.IsParticle(next) && !e.lex.IsEnding(next) {
		return false
	}
	if e.known(prev + next) {
		return true
	}
	return !e.lex.IsWord(prev) && !e.lex.IsParticle(prev)
}

// cleanup joins fields with single spaces, reattaching punctuation fields to
// the preceding token, and trims the result.
func cleanup(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 && !isPunctField(f) {
			b.WriteByte(' ')
		}
		b.WriteString(f)
	}
	return strings.TrimSpace(b.String())
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// known reports whether s is a recognizable unit: a dictionary word, a
// predicative stem with a known ending, or a word with a known particle.
func (e *Engine) known(s string) bool {
	if e.lex.IsWord(s) {
		return true
	}
	if _, _, ok := e.lex.SplitStem(s); ok {
		return true
	}
	if _, _, ok := e.lex.SplitParticle(s); ok {
		return true
	}
	return false
}

func isPunctField(f string) bool {
	r, size := utf8.DecodeRuneInString(f)
	return size == len(f) && hangul.IsPunct(r)
}
