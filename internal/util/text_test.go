package util

import (
	"strings"
	"testing"
)

func TestCleanForSpeech(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"header", "## Chapter One\nIt began.", "Chapter One\nIt began."},
		{"bold and italic", "a **bold** and *soft* word", "a bold and soft word"},
		{"code", "run `make` now", "run make now"},
		{"link", "see [the map](http://x/y) here", "see the map here"},
		{"blank runs", "a\n\n\n\nb", "a b"},
		{"spaces", "a    b", "a b"},
		{"trim", "  x  ", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanForSpeech(tt.in); got != tt.want {
				t.Errorf("CleanForSpeech(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPreviewText(t *testing.T) {
	if got := PreviewText("# Title\n\nFirst paragraph.\n\nSecond."); got != "Title" {
		t.Errorf("got %q, want header text as first paragraph", got)
	}
	if got := PreviewText("Opening line.\n\nSecond."); got != "Opening line." {
		t.Errorf("got %q", got)
	}
	if got := PreviewText("   \n\n  "); got != DefaultPreviewText {
		t.Errorf("empty text: got %q", got)
	}

	long := strings.Repeat("word ", 20) + ". " + "Two. Three. Four. " + strings.Repeat("tail ", 60)
	got := PreviewText(long)
	if strings.Count(got, ". ") > 2 {
		t.Errorf("expected at most three sentences, got %q", got)
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("expected trailing period, got %q", got)
	}
}
