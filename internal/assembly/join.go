// Package assembly accumulates recognition tokens into sentence candidates.
//
// The layer between the raw token stream and the corrector: it joins
// syllable-granularity tokens script-aware (Korean takes no spaces between
// syllables of one word), rejects contaminated batches, renders the
// in-progress preview from partial-token snapshots, and decides when the
// accumulated buffer constitutes a complete sentence.
//
// The Accumulator is deliberately passive: it owns no goroutines and no
// timers. The session manager's event loop is its single caller, which keeps
// token ordering and segment state trivially race-free.
package assembly

import (
	"strings"
	"unicode/utf8"

	"github.com/ieum-ai/ieum/internal/hangul"
	"github.com/ieum-ai/ieum/pkg/recognizer"
)

// JoinTokens concatenates token texts into display text. Adjacent Hangul
// runes join without a space (the script has no inter-syllable spacing) and
// punctuation attaches to the preceding token; any other adjacency gets one
// separating space.
func JoinTokens(tokens []recognizer.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(text)
			continue
		}
		prev, _ := utf8.DecodeLastRuneInString(b.String())
		first, _ := utf8.DecodeRuneInString(text)
		if needSpace(prev, first) {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
	return b.String()
}

func needSpace(prev, next rune) bool {
	if hangul.IsPunct(next) {
		return false
	}
	if hangul.Is(prev) && hangul.Is(next) {
		return false
	}
	return true
}

// AppendText appends a batch's joined text to the sentence buffer. Exactly
// one boundary space is inserted, and only when the buffer is non-empty,
// does not already end in a space, and both sides of the seam are Hangul:
// separate batches mean the speaker paused, which is a word boundary.
func AppendText(buffer, joined string) string {
	if joined == "" {
		return buffer
	}
	if buffer == "" {
		return joined
	}
	last, _ := utf8.DecodeLastRuneInString(buffer)
	first, _ := utf8.DecodeRuneInString(joined)
	if hangul.Is(last) && hangul.Is(first) {
		return buffer + " " + joined
	}
	return buffer + joined
}
