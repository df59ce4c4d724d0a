package assembly_test

import (
	"testing"

	"github.com/ieum-ai/ieum/internal/assembly"
)

func TestDetectContamination(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		joined   string
		prevTail string
		want     assembly.Contamination
	}{
		{
			name:   "clean text",
			joined: "오늘 날씨가 좋네요",
			want:   assembly.ContaminationNone,
		},
		{
			name:   "repeated two-rune run",
			joined: "감사감사합니다",
			want:   assembly.ContaminationRepeatedRun,
		},
		{
			name:   "repeated long run",
			joined: "안녕하세요안녕하세요",
			want:   assembly.ContaminationRepeatedRun,
		},
		{
			name:   "single-rune echo is legitimate speech",
			joined: "네네",
			want:   assembly.ContaminationNone,
		},
		{
			name:   "latin repeats are out of scope",
			joined: "abab",
			want:   assembly.ContaminationNone,
		},
		{
			name:   "impossible spaced double phrase",
			joined: "감사합니다 감사합니다",
			want:   assembly.ContaminationDoublePhrase,
		},
		{
			name:     "previous segment tail bleeds over",
			joined:   "같이가요 맞아요",
			prevTail: "같이가요",
			want:     assembly.ContaminationBleedOver,
		},
		{
			name:     "single-rune tail is too weak a signal",
			joined:   "요즘 바빠요",
			prevTail: "요",
			want:     assembly.ContaminationNone,
		},
		{
			name:     "tail absent from batch",
			joined:   "오늘 날씨가 좋네요",
			prevTail: "갑니다",
			want:     assembly.ContaminationNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := assembly.DetectContamination(tt.joined, tt.prevTail); got != tt.want {
				t.Errorf("DetectContamination(%q, %q) = %v, want %v",
					tt.joined, tt.prevTail, got, tt.want)
			}
		})
	}
}
