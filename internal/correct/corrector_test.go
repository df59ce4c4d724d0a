package correct_test

import (
	"math"
	"testing"

	"github.com/ieum-ai/ieum/internal/correct"
	"github.com/ieum-ai/ieum/internal/lexicon"
	"github.com/ieum-ai/ieum/internal/reconstruct"
)

func newCorrector(t *testing.T, opts ...correct.Option) *correct.Corrector {
	t.Helper()
	lex, err := lexicon.New(lexicon.Builtin(), lexicon.BuiltinEndings())
	if err != nil {
		t.Fatalf("lexicon: %v", err)
	}
	c, err := correct.New(reconstruct.New(lex), opts...)
	if err != nil {
		t.Fatalf("corrector: %v", err)
	}
	return c
}

func TestProcessTrustedPassesThrough(t *testing.T) {
	t.Parallel()
	c := newCorrector(t)

	res := c.Process("오늘 날씨가 좋네요", 0.95)
	if res.Tier != correct.TierTrusted {
		t.Fatalf("tier = %v, want trusted", res.Tier)
	}
	if res.Changed() {
		t.Errorf("trusted text was modified: %q", res.Text)
	}
	if res.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", res.Confidence)
	}
	if c.Cache().Len() == 0 {
		t.Error("trusted sentence did not seed the cache")
	}
}

func TestProcessTrustedSeedsGroundTruth(t *testing.T) {
	t.Parallel()
	c := newCorrector(t)

	c.Process("안녕하세요 반갑습니다", 0.95)

	// The same text at lower confidence is restored from the cache.
	res := c.Process("안녕하세요 반갑습니다", 0.80)
	if res.Tier != correct.TierGroundTruth {
		t.Fatalf("tier = %v, want ground truth", res.Tier)
	}
	if res.Text != "안녕하세요 반갑습니다" {
		t.Errorf("text = %q", res.Text)
	}
	if math.Abs(res.Confidence-0.95) > 1e-9 {
		t.Errorf("confidence = %v, want 0.95", res.Confidence)
	}

	// So is a truncated rendition of it.
	res = c.Process("안녕하세요 반갑", 0.80)
	if res.Tier != correct.TierGroundTruth {
		t.Fatalf("tier = %v, want ground truth", res.Tier)
	}
	if res.Text != "안녕하세요 반갑습니다" {
		t.Errorf("text = %q, want the trusted phrase", res.Text)
	}
}

func TestProcessGroundTruthNearDuplicate(t *testing.T) {
	t.Parallel()
	c := newCorrector(t)

	c.Process("감사합니다", 0.95)

	res := c.Process("감사함니다", 0.80)
	if res.Tier != correct.TierGroundTruth {
		t.Fatalf("tier = %v, want ground truth", res.Tier)
	}
	if res.Text != "감사합니다" {
		t.Errorf("text = %q, want 감사합니다", res.Text)
	}
}

func TestProcessConservative(t *testing.T) {
	t.Parallel()

	t.Run("collapses whitespace", func(t *testing.T) {
		t.Parallel()
		c := newCorrector(t)
		res := c.Process("좋은  아침  입니다", 0.80)
		if res.Tier != correct.TierConservative {
			t.Fatalf("tier = %v, want conservative", res.Tier)
		}
		if res.Text != "좋은 아침 입니다" {
			t.Errorf("text = %q", res.Text)
		}
		if math.Abs(res.Confidence-0.85) > 1e-9 {
			t.Errorf("confidence = %v, want 0.85", res.Confidence)
		}
	})

	t.Run("merges courtesy phrase", func(t *testing.T) {
		t.Parallel()
		c := newCorrector(t)
		res := c.Process("안녕하 세요", 0.75)
		if res.Text != "안녕하세요" {
			t.Errorf("text = %q, want 안녕하세요", res.Text)
		}
		if math.Abs(res.Confidence-0.80) > 1e-9 {
			t.Errorf("confidence = %v, want 0.80", res.Confidence)
		}
	})

	t.Run("unchanged text keeps confidence", func(t *testing.T) {
		t.Parallel()
		c := newCorrector(t)
		res := c.Process("오늘 날씨가 좋네요", 0.80)
		if res.Changed() {
			t.Fatalf("text was modified: %q", res.Text)
		}
		if res.Confidence != 0.80 {
			t.Errorf("confidence = %v, want 0.80 unchanged", res.Confidence)
		}
	})
}

func TestProcessTargetedMisreading(t *testing.T) {
	t.Parallel()
	c := newCorrector(t)

	res := c.Process("안녕하세여", 0.65)
	if res.Tier != correct.TierTargeted {
		t.Fatalf("tier = %v, want targeted", res.Tier)
	}
	if res.Text != "안녕하세요" {
		t.Errorf("text = %q, want 안녕하세요", res.Text)
	}
	if math.Abs(res.Confidence-0.85) > 1e-9 {
		t.Errorf("confidence = %v, want 0.65+0.20", res.Confidence)
	}
}

func TestProcessTargetedReconstruction(t *testing.T) {
	t.Parallel()
	c := newCorrector(t)

	res := c.Process("저 는 학교 에 가 요", 0.60)
	if res.Tier != correct.TierTargeted {
		t.Fatalf("tier = %v, want targeted", res.Tier)
	}
	if res.Text != "저는 학교에 가요" {
		t.Errorf("text = %q, want 저는 학교에 가요", res.Text)
	}
	if math.Abs(res.Confidence-0.80) > 1e-9 {
		t.Errorf("confidence = %v, want 0.60+0.20", res.Confidence)
	}

	// Text the engine cannot improve passes through at its own confidence.
	res = c.Process("오늘 날씨가 좋네요", 0.60)
	if res.Changed() {
		t.Errorf("text was modified: %q", res.Text)
	}
	if res.Confidence != 0.60 {
		t.Errorf("confidence = %v, want 0.60 unchanged", res.Confidence)
	}
}

func TestProcessClampsConfidence(t *testing.T) {
	t.Parallel()
	c := newCorrector(t,
		correct.WithTrustedThreshold(0.98),
		correct.WithCautiousThreshold(0.97),
	)

	res := c.Process("안녕하 세요", 0.90)
	if res.Tier != correct.TierTargeted {
		t.Fatalf("tier = %v, want targeted", res.Tier)
	}
	if res.Confidence != 1.0 {
		t.Errorf("confidence = %v, want clamped to 1.0", res.Confidence)
	}
}

func TestProcessTrustedForcedReconstruction(t *testing.T) {
	t.Parallel()
	c := newCorrector(t)

	// High confidence but visibly broken: the engine runs anyway and the
	// repaired form is what seeds the cache.
	res := c.Process("안녕하 세요", 0.95)
	if res.Tier != correct.TierTrusted {
		t.Fatalf("tier = %v, want trusted", res.Tier)
	}
	if res.Text != "안녕하세요" {
		t.Errorf("text = %q, want 안녕하세요", res.Text)
	}
	if res.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", res.Confidence)
	}

	res = c.Process("안녕하세여", 0.80)
	if res.Tier != correct.TierGroundTruth {
		t.Fatalf("tier = %v, want ground truth", res.Tier)
	}
	if res.Text != "안녕하세요" {
		t.Errorf("text = %q, want the repaired trusted form", res.Text)
	}
}

func TestShouldForceReconstruction(t *testing.T) {
	t.Parallel()
	c := newCorrector(t)

	tests := []struct {
		text string
		want bool
	}{
		{"저 는 학 교 에 갑니다", true}, // run of single syllables
		{"안녕하 세요", true},        // known broken courtesy phrase
		{"오늘 날씨가 좋네요", false},
		{"저 는 갑니다", false}, // run of two is fine
		{"a b c d", false},  // not the target script
		{"", false},
	}
	for _, tt := range tests {
		if got := c.ShouldForceReconstruction(tt.text); got != tt.want {
			t.Errorf("ShouldForceReconstruction(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()
	lex, err := lexicon.New(lexicon.Builtin(), lexicon.BuiltinEndings())
	if err != nil {
		t.Fatalf("lexicon: %v", err)
	}

	if _, err := correct.New(nil); err == nil {
		t.Error("nil engine accepted")
	}
	if _, err := correct.New(reconstruct.New(lex), correct.WithCautiousThreshold(0.95)); err == nil {
		t.Error("cautious threshold above trusted accepted")
	}
}

func TestSetThresholdsReclassifies(t *testing.T) {
	t.Parallel()
	c := newCorrector(t)

	res := c.Process("오늘 날씨가 좋네요", 0.85)
	if res.Tier != correct.TierConservative {
		t.Fatalf("tier = %v, want conservative under defaults", res.Tier)
	}

	if err := c.SetThresholds(0.80, 0.50); err != nil {
		t.Fatalf("SetThresholds: %v", err)
	}

	res = c.Process("오늘 날씨가 좋네요", 0.85)
	if res.Tier != correct.TierTrusted {
		t.Fatalf("tier = %v, want trusted after lowering the boundary", res.Tier)
	}
}

func TestSetThresholdsRejectsInvalid(t *testing.T) {
	t.Parallel()
	c := newCorrector(t)

	if err := c.SetThresholds(0.5, 0.8); err == nil {
		t.Error("cautious above trusted accepted")
	}
	if err := c.SetThresholds(1.2, 0.5); err == nil {
		t.Error("trusted above 1 accepted")
	}

	// The original thresholds stay in force after a rejected swap.
	res := c.Process("오늘 날씨가 좋네요", 0.95)
	if res.Tier != correct.TierTrusted {
		t.Errorf("tier = %v, want trusted at 0.95", res.Tier)
	}
	res = c.Process("좋은 하루 되세요", 0.85)
	if res.Tier == correct.TierTrusted {
		t.Error("0.85 classified trusted; rejected thresholds were applied")
	}
}
