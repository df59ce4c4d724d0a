// Package hangul provides script-detection helpers for Korean text.
//
// The recognition service emits tokens at syllable granularity with no
// inter-word spaces, so most of the pipeline needs to ask "is this rune part
// of the target script" when deciding where spaces belong. All helpers treat
// precomposed syllable blocks and bare jamo (which show up in degraded
// recognition output) as Hangul.
package hangul

// IsSyllable reports whether r is a precomposed Hangul syllable block
// (U+AC00..U+D7A3).
func IsSyllable(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}

// IsJamo reports whether r is a Hangul jamo or compatibility jamo. Lone jamo
// appear in recognizer output under poor audio conditions.
func IsJamo(r rune) bool {
	switch {
	case r >= 0x1100 && r <= 0x11FF: // Hangul Jamo
		return true
	case r >= 0x3130 && r <= 0x318F: // Hangul Compatibility Jamo
		return true
	case r >= 0xA960 && r <= 0xA97F: // Hangul Jamo Extended-A
		return true
	case r >= 0xD7B0 && r <= 0xD7FF: // Hangul Jamo Extended-B
		return true
	default:
		return false
	}
}

// Is reports whether r belongs to the Hangul script in any form.
func Is(r rune) bool {
	return IsSyllable(r) || IsJamo(r)
}

// Contains reports whether s has at least one Hangul rune.
func Contains(s string) bool {
	for _, r := range s {
		if Is(r) {
			return true
		}
	}
	return false
}

// Only reports whether s is non-empty and consists entirely of Hangul runes.
func Only(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !Is(r) {
			return false
		}
	}
	return true
}

// IsPunct reports whether r is sentence punctuation the pipeline attaches to
// the preceding token (halfwidth and fullwidth forms).
func IsPunct(r rune) bool {
	switch r {
	case '.', ',', '!', '?', '…', '。', '，', '！', '？':
		return true
	}
	return false
}
