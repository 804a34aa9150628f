package generation

import (
	"strings"
	"testing"
)

func TestSplitChunks_PreservesOrderAndContent(t *testing.T) {
	text := "abcdefghij"
	chunks := SplitChunks(text, 3)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks[:len(chunks)-1] {
		if len(chunk) != 3 {
			t.Fatalf("chunk %d has length %d, want 3", i, len(chunk))
		}
	}
	if joined := strings.Join(chunks, ""); joined != text {
		t.Fatalf("concatenated chunks %q != original %q", joined, text)
	}
}

func TestSplitChunks_Edges(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want int
	}{
		{"empty text", "", 5, 0},
		{"exact multiple", "abcdef", 3, 2},
		{"single chunk", "ab", 10, 1},
		{"non-positive size", "abc", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitChunks(tt.text, tt.size)
			if len(chunks) != tt.want {
				t.Fatalf("got %d chunks, want %d", len(chunks), tt.want)
			}
			if joined := strings.Join(chunks, ""); joined != tt.text {
				t.Fatalf("concatenated chunks %q != original %q", joined, tt.text)
			}
		})
	}
}

func TestSplitChunks_DoesNotBreakUTF8(t *testing.T) {
	text := strings.Repeat("é", 7)
	chunks := SplitChunks(text, 3)
	for i, chunk := range chunks {
		if !strings.HasPrefix(chunk, "é") {
			t.Fatalf("chunk %d starts with a broken rune: %q", i, chunk)
		}
	}
	if joined := strings.Join(chunks, ""); joined != text {
		t.Fatalf("concatenated chunks != original")
	}
}

func TestNumChunks(t *testing.T) {
	tests := []struct {
		textLen, size, want int
	}{
		{0, 5, 0},
		{5, 5, 1},
		{6, 5, 2},
		{28001, 28000, 2},
		{10, 0, 1},
	}
	for _, tt := range tests {
		if got := NumChunks(tt.textLen, tt.size); got != tt.want {
			t.Fatalf("NumChunks(%d, %d) = %d, want %d", tt.textLen, tt.size, got, tt.want)
		}
	}
}
