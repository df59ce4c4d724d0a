// Package lexicon holds the reconstruction dictionary: known words with
// frequency and category, plus the morphological endings and particles the
// reconstruction engine needs to repair broken spacing.
//
// A [Lexicon] is immutable after construction and safe for concurrent reads
// from any number of goroutines. Load it once at process start (built-in seed
// data, a YAML file, or Postgres) and share the pointer.
package lexicon

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

// Category classifies a dictionary entry. The reconstruction engine treats
// particles specially (they attach leftward), and the boundary heuristics
// favor greetings; the remaining categories are informational.
type Category string

const (
	CategoryGreeting     Category = "greeting"
	CategoryVerb         Category = "verb"
	CategoryAdjective    Category = "adjective"
	CategoryParticle     Category = "particle"
	CategoryPronoun      Category = "pronoun"
	CategoryNoun         Category = "noun"
	CategoryAdverb       Category = "adverb"
	CategoryInterjection Category = "interjection"
)

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryGreeting, CategoryVerb, CategoryAdjective, CategoryParticle,
		CategoryPronoun, CategoryNoun, CategoryAdverb, CategoryInterjection:
		return true
	default:
		return false
	}
}

// Entry is one dictionary word. Entries are immutable after load.
type Entry struct {
	// Word is the dictionary form. Verbs and adjectives are stored as bare
	// stems (e.g. "먹", "좋") so that stem+ending analysis works.
	Word string

	// Frequency is a relative usage score in [0, 1], used to rank
	// competing segmentations.
	Frequency float64

	// Category classifies the word.
	Category Category
}

// Validate reports whether the entry is well formed.
func (e Entry) Validate() error {
	var errs []error
	if e.Word == "" {
		errs = append(errs, errors.New("word must not be empty"))
	}
	if e.Frequency < 0 || e.Frequency > 1 {
		errs = append(errs, fmt.Errorf("frequency %v outside [0,1]", e.Frequency))
	}
	if !e.Category.IsValid() {
		errs = append(errs, fmt.Errorf("unknown category %q", e.Category))
	}
	return errors.Join(errs...)
}

// Lexicon is the loaded dictionary. All lookup methods are safe for
// concurrent use; nothing is mutated after New returns.
type Lexicon struct {
	words     map[string]Entry    // non-particle entries
	particles map[string]Entry    // particle entries, kept apart from words
	endings   []string            // known endings, longest first
	endingSet map[string]struct{}
	maxRunes  int // longest word length in runes
	maxSuffix int // longest ending or particle length in runes
}

// New builds a Lexicon from entries and a list of known morphological
// endings. Entries with CategoryParticle go into the particle set; everything
// else into the word table. Duplicate words keep the higher frequency.
func New(entries []Entry, endings []string) (*Lexicon, error) {
	l := &Lexicon{
		words:     make(map[string]Entry, len(entries)),
		particles: make(map[string]Entry),
		endingSet: make(map[string]struct{}, len(endings)),
	}

	var errs []error
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%q): %w", i, e.Word, err))
			continue
		}
		if e.Category == CategoryParticle {
			if prev, ok := l.particles[e.Word]; !ok || e.Frequency > prev.Frequency {
				l.particles[e.Word] = e
			}
			if n := utf8.RuneCountInString(e.Word); n > l.maxSuffix {
				l.maxSuffix = n
			}
			continue
		}
		if prev, ok := l.words[e.Word]; !ok || e.Frequency > prev.Frequency {
			l.words[e.Word] = e
		}
		if n := utf8.RuneCountInString(e.Word); n > l.maxRunes {
			l.maxRunes = n
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("lexicon: invalid entries: %w", err)
	}
	if len(l.words) == 0 {
		return nil, errors.New("lexicon: no word entries")
	}

	seen := make(map[string]struct{}, len(endings))
	for _, e := range endings {
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		l.endings = append(l.endings, e)
		l.endingSet[e] = struct{}{}
		if n := utf8.RuneCountInString(e); n > l.maxSuffix {
			l.maxSuffix = n
		}
	}
	sort.Slice(l.endings, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(l.endings[i]), utf8.RuneCountInString(l.endings[j])
		if li != lj {
			return li > lj
		}
		return l.endings[i] < l.endings[j]
	})

	return l, nil
}

// Lookup returns the entry for s, checking words first, then particles.
func (l *Lexicon) Lookup(s string) (Entry, bool) {
	if e, ok := l.words[s]; ok {
		return e, true
	}
	e, ok := l.particles[s]
	return e, ok
}

// IsWord reports whether s is a known non-particle dictionary word.
func (l *Lexicon) IsWord(s string) bool {
	_, ok := l.words[s]
	return ok
}

// IsParticle reports whether s is a known particle.
func (l *Lexicon) IsParticle(s string) bool {
	_, ok := l.particles[s]
	return ok
}

// IsEnding reports whether s is a known morphological ending.
func (l *Lexicon) IsEnding(s string) bool {
	_, ok := l.endingSet[s]
	return ok
}

// SplitStem tries to analyze s as stem+ending, greedily preferring the
// longest known ending whose remaining stem is a predicative (verb or
// adjective) dictionary entry. Restricting to predicative stems keeps nouns
// from absorbing endings they cannot take (사람+다 is not a word form).
// Returns ok=false when no such split exists.
func (l *Lexicon) SplitStem(s string) (stem, ending string, ok bool) {
	for _, e := range l.endings {
		if len(e) >= len(s) {
			continue // stem must be non-empty
		}
		if s[len(s)-len(e):] != e {
			continue
		}
		st := s[:len(s)-len(e)]
		if w, found := l.words[st]; found &&
			(w.Category == CategoryVerb || w.Category == CategoryAdjective) {
			return st, e, true
		}
	}
	return "", "", false
}

// SplitParticle tries to analyze s as base+particle, greedily preferring the
// longest known particle whose remaining base is a non-predicative dictionary
// entry (nouns, pronouns, adverbs and similar take particles; bare verb stems
// do not). Returns ok=false when no such split exists.
func (l *Lexicon) SplitParticle(s string) (base, particle string, ok bool) {
	for p := range l.particles {
		if len(p) >= len(s) || s[len(s)-len(p):] != p {
			continue
		}
		if ok && len(p) <= len(particle) {
			continue // keep the longest particle
		}
		b := s[:len(s)-len(p)]
		if w, found := l.words[b]; found &&
			w.Category != CategoryVerb && w.Category != CategoryAdjective {
			base, particle, ok = b, p, true
		}
	}
	return base, particle, ok
}

// Frequency returns the frequency of s, or 0 when unknown.
func (l *Lexicon) Frequency(s string) float64 {
	if e, ok := l.Lookup(s); ok {
		return e.Frequency
	}
	return 0
}

// MaxWordRunes returns the rune length of the longest word entry. The
// reconstruction engine uses it to bound candidate windows.
func (l *Lexicon) MaxWordRunes() int { return l.maxRunes }

// MaxSuffixRunes returns the rune length of the longest ending or particle.
func (l *Lexicon) MaxSuffixRunes() int { return l.maxSuffix }

// Size returns the number of word entries (particles excluded).
func (l *Lexicon) Size() int { return len(l.words) }

// Merge combines two entry lists; on duplicate words, entries from override
// win. Particles and non-particles are tracked separately so overriding one
// sense of an ambiguous form (이 the particle vs 이 the pronoun) leaves the
// other intact. Order within each list is preserved otherwise.
func Merge(base, override []Entry) []Entry {
	type key struct {
		word     string
		particle bool
	}
	overridden := make(map[key]struct{}, len(override))
	for _, e := range override {
		overridden[key{e.Word, e.Category == CategoryParticle}] = struct{}{}
	}
	out := make([]Entry, 0, len(base)+len(override))
	for _, e := range base {
		if _, ok := overridden[key{e.Word, e.Category == CategoryParticle}]; ok {
			continue
		}
		out = append(out, e)
	}
	return append(out, override...)
}
