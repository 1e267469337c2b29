package placequiz_test

import (
	"testing"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"hiragana unchanged", "さっぽろ", "さっぽろ"},
		{"katakana folded", "サッポロ", "さっぽろ"},
		{"mixed scripts", "サっぽロ", "さっぽろ"},
		{"surrounding whitespace", "  おたる\n", "おたる"},
		{"interior whitespace", "あさ ひかわ", "あさひかわ"},
		{"ideographic space", "くしろ　し", "くしろし"},
		{"small kana", "ァィゥェォ", "ぁぃぅぇぉ"},
		{"range end", "ン", "ん"},
		{"vu left alone", "ヴ", "ヴ"},
		{"long vowel mark left alone", "ー", "ー"},
		{"latin untouched", "Sapporo", "Sapporo"},
		{"invalid bytes kept", "\xffサ\xfe", "\xffさ\xfe"},
		{"encoded replacement char kept", "\uFFFD", "\uFFFD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := placequiz.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, s := range []string{"", "サッポロ", " あ サ\tヴ ", "ABC abc", "ぁァンん", "\xffア\x80"} {
		once := placequiz.Normalize(s)
		if twice := placequiz.Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", s, twice, once)
		}
	}
}

func TestVerify(t *testing.T) {
	if !placequiz.Verify("サッポロ", "さっぽろ") {
		t.Error("katakana answer should match hiragana reading")
	}
	if !placequiz.Verify(" さっ ぽろ ", "さっぽろ") {
		t.Error("whitespace should be ignored")
	}
	if placequiz.Verify("", "さっぽろ") {
		t.Error("empty answer must not match")
	}
	if placequiz.Verify("おたる", "さっぽろ") {
		t.Error("different reading must not match")
	}
	if placequiz.Verify("\xff", "\xfe") {
		t.Error("distinct invalid bytes must not match")
	}
	if placequiz.Verify("\xff", "\uFFFD") {
		t.Error("an invalid byte must not match an encoded U+FFFD")
	}
}

func TestCurrent(t *testing.T) {
	rec := placequiz.NewRecord([]int64{7, 3, 9})

	id, ok := placequiz.Current(rec)
	if !ok || id != 7 {
		t.Fatalf("Current = (%d, %v), want (7, true)", id, ok)
	}

	rec.Progress = rec.Advance(true)
	rec.Progress = rec.Advance(false)
	id, ok = placequiz.Current(rec)
	if !ok || id != 9 {
		t.Fatalf("Current = (%d, %v), want (9, true)", id, ok)
	}

	rec.Progress = rec.Advance(true)
	if _, ok := placequiz.Current(rec); ok {
		t.Fatal("Current should report completion after the last answer")
	}
}

func TestProgress(t *testing.T) {
	p := placequiz.Progress{Total: 10}
	for i := 0; i < 10; i++ {
		p = p.Advance(i < 7)
		if !p.Valid() {
			t.Fatalf("invalid progress after %d answers: %+v", i+1, p)
		}
	}
	if !p.Completed() {
		t.Fatal("expected completed")
	}
	if got := p.Accuracy(); got != 70.0 {
		t.Errorf("Accuracy = %v, want 70", got)
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		p    placequiz.Progress
		want float64
	}{
		{placequiz.Progress{Total: 3, Index: 3, Correct: 2}, 66.67},
		{placequiz.Progress{Total: 3, Index: 1, Correct: 1}, 33.33},
		{placequiz.Progress{Total: 4, Index: 4, Correct: 4}, 100},
		{placequiz.Progress{}, 0},
	}
	for _, tt := range tests {
		if got := tt.p.Accuracy(); got != tt.want {
			t.Errorf("Accuracy(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
