package chunking

import (
	"strings"
	"testing"
)

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(100, 20)
	if out := s.Split(""); out != nil {
		t.Fatalf("expected nil for empty text, got %v", out)
	}
}

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	s := NewSplitter(900, 150)
	out := s.Split("ধান একটি খরিফ ফসল।")
	if len(out) != 1 || out[0] != "ধান একটি খরিফ ফসল।" {
		t.Fatalf("unexpected chunks: %v", out)
	}
}

func TestSplitCountsRunesNotBytes(t *testing.T) {
	// 40 Bangla runes are ~120 bytes; a byte-based splitter would cut
	// this into several chunks.
	text := strings.Repeat("ধান", 20)
	s := NewSplitter(50, 10)
	out := s.Split(text)
	if len(out) != 2 {
		t.Fatalf("got %d chunks, want 2", len(out))
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	text := "প্রথম বাক্য।" + strings.Repeat("ক", 30) + "। দ্বিতীয় অংশ " + strings.Repeat("খ", 40)
	s := NewSplitter(50, 5)
	out := s.Split(text)
	if len(out) < 2 {
		t.Fatalf("expected multiple chunks, got %v", out)
	}
	if !strings.HasSuffix(out[0], "।") {
		t.Fatalf("first chunk should end at a danda, got %q", out[0])
	}
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("abcdefghij", 30) // 300 runes, no boundaries
	s := NewSplitter(100, 20)
	out := s.Split(text)
	if len(out) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(out))
	}
	// Each chunk after the first must start with the tail of its
	// predecessor.
	for i := 1; i < len(out); i++ {
		prevTail := out[i-1][len(out[i-1])-20:]
		if !strings.HasPrefix(out[i], prevTail) {
			t.Fatalf("chunk %d does not overlap predecessor", i)
		}
	}
}

func TestSplitAlwaysTerminates(t *testing.T) {
	// Aggressive overlap with boundaries everywhere must still make
	// forward progress.
	text := strings.Repeat("ক। ", 200)
	s := NewSplitter(10, 8)
	out := s.Split(text)
	if len(out) == 0 {
		t.Fatalf("expected chunks")
	}
}
