package assembly

import (
	"strings"
	"unicode/utf8"

	"github.com/ieum-ai/ieum/internal/hangul"
)

// Contamination classifies why a batch of final tokens was rejected.
type Contamination int

const (
	ContaminationNone Contamination = iota

	// ContaminationRepeatedRun: the joined text contains a run of two or
	// more Hangul runes immediately followed by itself ("XYXY"), the
	// signature of the recognizer echoing its own output.
	ContaminationRepeatedRun

	// ContaminationDoublePhrase: the joined text contains a phrase pair
	// from the known-impossible list (complete courtesy phrases never
	// legitimately repeat back to back).
	ContaminationDoublePhrase

	// ContaminationBleedOver: the tail of the previous segment reappears
	// inside the new batch, meaning the service re-emitted already-consumed
	// speech across a segment boundary.
	ContaminationBleedOver
)

func (c Contamination) String() string {
	switch c {
	case ContaminationNone:
		return "none"
	case ContaminationRepeatedRun:
		return "repeated_run"
	case ContaminationDoublePhrase:
		return "double_phrase"
	case ContaminationBleedOver:
		return "bleed_over"
	default:
		return "unknown"
	}
}

// impossibleDoubles lists adjacent self-repeats that do not occur in natural
// speech. The repeated-run check catches space-free doubles; these cover the
// spaced form.
var impossibleDoubles = []string{
	"안녕하세요 안녕하세요",
	"감사합니다 감사합니다",
	"고맙습니다 고맙습니다",
	"죄송합니다 죄송합니다",
	"반갑습니다 반갑습니다",
	"알겠습니다 알겠습니다",
}

// DetectContamination inspects a batch's joined text before it is accepted
// into the sentence buffer. prevTail is the joined text of the previous
// segment's last two tokens, or empty when no previous segment exists.
func DetectContamination(joined, prevTail string) Contamination {
	if hasRepeatedRun(joined) {
		return ContaminationRepeatedRun
	}
	for _, p := range impossibleDoubles {
		if strings.Contains(joined, p) {
			return ContaminationDoublePhrase
		}
	}
	if utf8.RuneCountInString(prevTail) >= 2 && strings.Contains(joined, prevTail) {
		return ContaminationBleedOver
	}
	return ContaminationNone
}

// hasRepeatedRun reports whether s contains a run of >=2 Hangul runes
// immediately followed by an identical run. Batches are a handful of tokens,
// so the quadratic scan stays cheap.
func hasRepeatedRun(s string) bool {
	runes := []rune(s)
	n := len(runes)
	for i := 0; i < n; i++ {
		if !hangul.Is(runes[i]) {
			continue
		}
		maxLen := (n - i) / 2
		for l := 2; l <= maxLen; l++ {
			if !hangul.Is(runes[i+l-1]) {
				break // runs are Hangul-only; a non-Hangul rune ends all longer runs too
			}
			if equalRunes(runes[i:i+l], runes[i+l:i+2*l]) {
				return true
			}
		}
	}
	return false
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
