package correct

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheCapacity = 300
	defaultSimilarity    = 0.88

	// minUnitRunes is the shortest whitespace unit worth caching on its
	// own. Single syllables are too ambiguous to ever substitute.
	minUnitRunes = 2

	// minPrefixRunes is the shortest lookup key allowed to expand into a
	// longer cached phrase.
	minPrefixRunes = 3
)

// CacheOption is a functional option for configuring a [GroundTruthCache].
type CacheOption func(*GroundTruthCache)

// WithCapacity sets the maximum number of cached entries. Default: 300.
// Eviction is least-recently-used.
func WithCapacity(n int) CacheOption {
	return func(c *GroundTruthCache) {
		c.capacity = n
	}
}

// WithSimilarity sets the minimum Jaro-Winkler score required for a lookup
// to match a cached entry that is not an exact or prefix match.
// Default: 0.88, tuned for short Korean phrases where a single wrong
// syllable should still hit.
func WithSimilarity(threshold float64) CacheOption {
	return func(c *GroundTruthCache) {
		c.similarity = threshold
	}
}

// cacheEntry is the stored form of one trusted phrase.
type cacheEntry struct {
	text     string
	hits     int
	lastSeen time.Time
}

// GroundTruthCache remembers text the recognizer was highly confident
// about, so that the same phrase arriving later with lower confidence can
// be restored to its trusted form.
//
// Keys are normalized (case-folded, whitespace-collapsed, punctuation
// stripped); values keep the text as it was trusted. Alongside each full
// phrase its constituent units and unit pairs are cached too, so a
// fragment of a trusted sentence still matches. All methods are safe for
// concurrent use.
type GroundTruthCache struct {
	entries    *lru.Cache[string, cacheEntry]
	capacity   int
	similarity float64
}

// NewGroundTruthCache returns an empty cache configured with the supplied
// options.
func NewGroundTruthCache(opts ...CacheOption) (*GroundTruthCache, error) {
	c := &GroundTruthCache{
		capacity:   defaultCacheCapacity,
		similarity: defaultSimilarity,
	}
	for _, o := range opts {
		o(c)
	}
	entries, err := lru.New[string, cacheEntry](c.capacity)
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Store records text as ground truth: the full phrase, every whitespace
// unit of at least two runes, and every adjacent unit pair.
func (c *GroundTruthCache) Store(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	units := strings.Fields(trimmed)
	for i, u := range units {
		if bare := strings.TrimFunc(u, unicode.IsPunct); utf8.RuneCountInString(bare) >= minUnitRunes {
			c.put(bare)
		}
		if i+1 < len(units) {
			c.put(strings.TrimFunc(units[i]+" "+units[i+1], unicode.IsPunct))
		}
	}
	// The full phrase goes in last so it owns its key even when it is a
	// single unit: the trusted sentence keeps its terminal punctuation.
	c.put(trimmed)
}

// Lookup finds the trusted text for a lower-confidence phrase. Matching
// proceeds in three stages: exact normalized key, then a cached phrase
// that extends the key, then the most similar key by Jaro-Winkler score.
//
// Only the direction that extends the input is taken in the prefix stage;
// substituting a shorter cached phrase would drop recognized speech.
func (c *GroundTruthCache) Lookup(text string) (string, bool) {
	key := normalizeKey(text)
	if key == "" {
		return "", false
	}
	if t, ok := c.touch(key); ok {
		return t, true
	}

	keys := c.entries.Keys()

	if utf8.RuneCountInString(key) >= minPrefixRunes {
		var ext string
		for _, k := range keys {
			if len(k) > len(key) && strings.HasPrefix(k, key) {
				// The shortest extension stays closest to what was heard.
				if ext == "" || len(k) < len(ext) {
					ext = k
				}
			}
		}
		if ext != "" {
			return c.touch(ext)
		}
	}

	var (
		bestKey string
		best    float64
	)
	for _, k := range keys {
		if s := matchr.JaroWinkler(key, k, false); s > best {
			best, bestKey = s, k
		}
	}
	if best >= c.similarity {
		return c.touch(bestKey)
	}
	return "", false
}

// Len returns the number of cached entries.
func (c *GroundTruthCache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached entry.
func (c *GroundTruthCache) Purge() {
	c.entries.Purge()
}

// touch returns the entry for key, marking it recently used and bumping
// its hit count.
func (c *GroundTruthCache) touch(key string) (string, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return "", false
	}
	e.hits++
	e.lastSeen = time.Now()
	c.entries.Add(key, e)
	return e.text, true
}

func (c *GroundTruthCache) put(text string) {
	key := normalizeKey(text)
	if key == "" {
		return
	}
	if e, ok := c.entries.Peek(key); ok {
		e.text = text
		e.lastSeen = time.Now()
		c.entries.Add(key, e)
		return
	}
	c.entries.Add(key, cacheEntry{text: text, lastSeen: time.Now()})
}

// normalizeKey lowercases text, strips punctuation, and collapses runs of
// whitespace to single spaces.
func normalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
