package ai

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Tuning knobs for the chunker. Size is in characters, overlap in words.
const (
	ChunkSize    = 500
	ChunkOverlap = 50
)

// Chunk is one bounded segment of a note, sized for embedding. Immutable
// once produced; re-indexing supersedes the whole set.
type Chunk struct {
	Content string
	Index   int
}

// ChunkText splits text into overlapping chunks along sentence-like
// boundaries. Sentences are never split: a single sentence longer than
// ChunkSize is emitted as one oversized chunk. Empty or whitespace-only
// input yields no chunks.
func ChunkText(input string) []Chunk {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	var chunks []Chunk
	current := ""
	index := 0
	for _, sentence := range splitSentences(input) {
		if utf8.RuneCountInString(current)+utf8.RuneCountInString(sentence) > ChunkSize && current != "" {
			chunks = append(chunks, Chunk{Content: strings.TrimSpace(current), Index: index})
			index++
			// Seed the next chunk with the trailing words of the one just
			// closed, then the sentence that overflowed it.
			words := strings.Split(current, " ")
			if len(words) > ChunkOverlap {
				words = words[len(words)-ChunkOverlap:]
			}
			current = strings.Join(words, " ") + " " + sentence
			continue
		}
		if current != "" {
			current += " "
		}
		current += sentence
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, Chunk{Content: strings.TrimSpace(current), Index: index})
	}
	return chunks
}

// splitSentences cuts at whitespace runs that follow boundary punctuation or
// a newline. This is a heuristic, not a sentence tokenizer; abbreviations
// and decimal points split too, which is acceptable for retrieval.
func splitSentences(input string) []string {
	var sentences []string
	var current []rune
	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if unicode.IsSpace(r) && len(current) > 0 && isBoundary(current[len(current)-1]) {
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
			sentences = append(sentences, string(current))
			current = current[:0]
			continue
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		sentences = append(sentences, string(current))
	}
	return sentences
}

func isBoundary(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '\n':
		return true
	}
	return false
}

// PlainText flattens markdown to plain text so structural markers don't end
// up inside embeddings. Fenced code blocks keep their content verbatim.
// Input without markdown syntax passes through unchanged.
func PlainText(markdown string) string {
	md := goldmark.New()
	reader := text.NewReader([]byte(markdown))
	doc := md.Parser().Parse(reader)

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if fence, ok := node.(*ast.FencedCodeBlock); ok {
			var sb strings.Builder
			for i := 0; i < fence.Lines().Len(); i++ {
				line := fence.Lines().At(i)
				sb.Write(line.Value(reader.Source()))
			}
			if code := strings.TrimSpace(sb.String()); code != "" {
				blocks = append(blocks, code)
			}
			continue
		}
		if txt := flattenText(node, reader.Source()); txt != "" {
			blocks = append(blocks, txt)
		}
	}
	return strings.Join(blocks, "\n")
}

func flattenText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := node.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
