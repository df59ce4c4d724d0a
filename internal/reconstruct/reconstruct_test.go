package reconstruct_test

import (
	"testing"

	"github.com/ieum-ai/ieum/internal/lexicon"
	"github.com/ieum-ai/ieum/internal/reconstruct"
)

func newEngine(t *testing.T, opts ...reconstruct.Option) *reconstruct.Engine {
	t.Helper()
	lex, err := lexicon.New(lexicon.Builtin(), lexicon.BuiltinEndings())
	if err != nil {
		t.Fatalf("lexicon.New: %v", err)
	}
	return reconstruct.New(lex, opts...)
}

func TestReconstructGreetings(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	tests := []struct{ in, want string }{
		// Literal phrase fixes.
		{"안녕하 세요", "안녕하세요"},
		{"안녕 하세요", "안녕하세요"},
		{"감사 합니다", "감사합니다"},
		{"죄송 합니다", "죄송합니다"},
		// Syllable splits the fix list does not cover still join through the
		// dictionary.
		{"안녕 하 세요", "안녕하세요"},
		{"안 녕", "안녕"},
		{"반갑 습니다 !", "반갑습니다!"},
	}
	for _, tt := range tests {
		if got := e.Reconstruct(tt.in); got != tt.want {
			t.Errorf("Reconstruct(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReconstructParticleAttachment(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	tests := []struct{ in, want string }{
		{"저 는 학교 에 가 요", "저는 학교에 가요"},
		{"하늘 이 좋 다", "하늘이 좋다"},
		{"오늘 날씨 가 좋 아요", "오늘 날씨가 좋아요"},
		{"이거 주 세요", "이거 주세요"},
		// An unrecognized fragment still absorbs a following particle.
		{"학꾜 에", "학꾜에"},
	}
	for _, tt := range tests {
		if got := e.Reconstruct(tt.in); got != tt.want {
			t.Errorf("Reconstruct(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReconstructMergeSafety(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	tests := []struct{ in, want string }{
		// Two complete words whose union is nothing stay two words.
		{"오늘 날씨", "오늘 날씨"},
		{"물 나", "물 나"},
		// A noun never absorbs a verb ending.
		{"사람 다", "사람 다"},
	}
	for _, tt := range tests {
		if got := e.Reconstruct(tt.in); got != tt.want {
			t.Errorf("Reconstruct(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReconstructSegmentsRunOnText(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	tests := []struct{ in, want string }{
		{"오늘날씨", "오늘 날씨"},
		{"밥은맛있어요", "밥은 맛있어요"},
		// A run-on followed by a stranded particle.
		{"오늘날씨 가 좋 다", "오늘 날씨가 좋다"},
		// Partial decompositions do not commit.
		{"밥흫", "밥흫"},
	}
	for _, tt := range tests {
		if got := e.Reconstruct(tt.in); got != tt.want {
			t.Errorf("Reconstruct(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReconstructIdempotent(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	inputs := []string{
		"저 는 학교 에 가 요",
		"안녕하 세요",
		"오늘날씨 가 좋 다",
		"정말 맛있 어요 !",
		"수고 하셨 습니다",
		"물 나",
		"안녕하세여",
		"저는 학교에 가요.",
		"",
	}
	for _, in := range inputs {
		once := e.Reconstruct(in)
		twice := e.Reconstruct(once)
		if once != twice {
			t.Errorf("Reconstruct(%q) not idempotent: %q then %q", in, once, twice)
		}
	}
}

func TestReconstructPassThrough(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	// Input without Hangul is returned byte-for-byte, odd spacing included.
	inputs := []string{"hello   world", "123 456", "", "...!"}
	for _, in := range inputs {
		if got := e.Reconstruct(in); got != in {
			t.Errorf("Reconstruct(%q) = %q, want unchanged", in, got)
		}
	}

	// Unknown Hangul stays intact apart from spacing normalization.
	if got := e.Reconstruct("안녕하세여"); got != "안녕하세여" {
		t.Errorf("Reconstruct(안녕하세여) = %q, want unchanged", got)
	}
}

func TestReconstructCleanup(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	tests := []struct{ in, want string }{
		{"감사합니다   .", "감사합니다."},
		{"  네 ,  알겠습니다  ", "네, 알겠습니다"},
		{"좋 다   정말", "좋다 정말"},
	}
	for _, tt := range tests {
		if got := e.Reconstruct(tt.in); got != tt.want {
			t.Errorf("Reconstruct(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReconstructWindowLimitsJoins(t *testing.T) {
	t.Parallel()
	// Window 2 cannot see the three-field join 수고+하셨+습니다; the ending
	// still reattaches pairwise, but the full greeting needs the wider window.
	narrow := newEngine(t, reconstruct.WithWindow(2), reconstruct.WithFixes(nil))
	wide := newEngine(t, reconstruct.WithFixes(nil))

	const in = "수고 하셨 습니다"
	if got := narrow.Reconstruct(in); got != "수고 하셨습니다" {
		t.Errorf("narrow Reconstruct(%q) = %q, want %q", in, got, "수고 하셨습니다")
	}
	if got := wide.Reconstruct(in); got != "수고하셨습니다" {
		t.Errorf("wide Reconstruct(%q) = %q, want %q", in, got, "수고하셨습니다")
	}
}

func TestReconstructCustomFixes(t *testing.T) {
	t.Parallel()
	e := newEngine(t, reconstruct.WithFixes([]reconstruct.Fix{
		{From: "이음 코어", To: "이음코어"},
	}))

	if got := e.Reconstruct("이음 코어 가 좋 다"); got != "이음코어가 좋다" {
		t.Errorf("Reconstruct = %q, want %q", got, "이음코어가 좋다")
	}
}
