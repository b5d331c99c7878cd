package ai

import (
	"strings"
	"testing"
)

func TestChunkTextEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t  \n"} {
		if got := ChunkText(input); len(got) != 0 {
			t.Errorf("ChunkText(%q) = %d chunks, want 0", input, len(got))
		}
	}
}

func TestChunkTextShortInputSingleChunk(t *testing.T) {
	input := "  Hello world. This is a short note.  "
	chunks := ChunkText(input)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Content != strings.TrimSpace(input) {
		t.Errorf("content = %q, want trimmed input", chunks[0].Content)
	}
	if chunks[0].Index != 0 {
		t.Errorf("index = %d, want 0", chunks[0].Index)
	}
}

func TestChunkTextOversizedSentenceNotSplit(t *testing.T) {
	input := strings.Repeat("A", 600)
	chunks := ChunkText(input)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 oversized chunk", len(chunks))
	}
	if chunks[0].Content != input {
		t.Errorf("oversized sentence was altered, len=%d", len(chunks[0].Content))
	}
}

func makeSentence(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ") + "."
}

func TestChunkTextOverflowEmitsOverlap(t *testing.T) {
	// Two ~300-char sentences force exactly one overflow.
	s1 := makeSentence(60)
	s2 := makeSentence(60)
	chunks := ChunkText(s1 + " " + s2)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Content != s1 {
		t.Errorf("first chunk = %q, want first sentence", chunks[0].Content)
	}
	if !strings.HasSuffix(chunks[1].Content, s2) {
		t.Errorf("second chunk does not end with the overflowing sentence")
	}
	words := strings.Split(s1, " ")
	overlap := strings.Join(words[len(words)-ChunkOverlap:], " ")
	if !strings.HasPrefix(chunks[1].Content, overlap) {
		t.Errorf("second chunk does not start with the %d-word overlap", ChunkOverlap)
	}
}

func TestChunkTextIndicesContiguous(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString(makeSentence(30))
		sb.WriteString(" ")
	}
	chunks := ChunkText(sb.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if strings.TrimSpace(c.Content) == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestChunkTextNewlineBoundary(t *testing.T) {
	chunks := ChunkText("first line\n second line")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	// The newline plus whitespace is a split point; sentences rejoin with a
	// single space.
	if chunks[0].Content != "first line\n second line" && !strings.Contains(chunks[0].Content, "second line") {
		t.Errorf("unexpected content %q", chunks[0].Content)
	}
}

func TestPlainTextStripsMarkdown(t *testing.T) {
	got := PlainText("# Title\n\nHello *world*.")
	if got != "Title\nHello world." {
		t.Errorf("PlainText = %q", got)
	}
}

func TestPlainTextKeepsCodeContent(t *testing.T) {
	got := PlainText("```go\nx := 1\n```")
	if got != "x := 1" {
		t.Errorf("PlainText = %q", got)
	}
}

func TestPlainTextPassthrough(t *testing.T) {
	input := strings.Repeat("A", 600)
	if got := PlainText(input); got != input {
		t.Errorf("plain input was altered: %d chars -> %d chars", len(input), len(got))
	}
}
