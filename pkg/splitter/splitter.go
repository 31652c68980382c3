package splitter

import (
	"regexp"
	"strings"
)

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	sentenceEnd    = regexp.MustCompile(`([.!?])\s+`)
)

// Split divides text into chunks of at most chunkSize characters with an
// overlap tail carried between adjacent chunks. Boundaries prefer paragraph
// breaks, then sentence breaks; a hard character cut is the last resort so
// no text is ever lost. Splitting is purely deterministic: the same text
// always yields the same chunk boundaries.
func Split(text string, chunkSize int, overlap int) []string {
	text = normalize(text)
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1800
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		current.Reset()
		if chunk == "" {
			return
		}
		chunks = append(chunks, chunk)
		// Seed the next chunk with the tail of this one so evidentiary
		// sentences spanning a boundary stay citable in one chunk.
		if overlap > 0 {
			current.WriteString(overlapTail(chunk, overlap))
			current.WriteString("\n\n")
		}
	}

	appendUnit := func(unit string) {
		if current.Len() > 0 && current.Len()+len(unit)+2 > chunkSize {
			flush()
			// The overlap seed yields when it cannot fit alongside the
			// next unit; the size bound wins over boundary context.
			if current.Len()+len(unit)+2 > chunkSize {
				current.Reset()
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(unit)
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= chunkSize {
			appendUnit(para)
			continue
		}
		// Oversized paragraph: fall back to sentence units, then hard cuts.
		for _, sentence := range splitSentences(para) {
			if len(sentence) <= chunkSize {
				appendUnit(sentence)
				continue
			}
			for _, piece := range hardSplit(sentence, chunkSize) {
				appendUnit(piece)
			}
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		chunk := strings.TrimSpace(current.String())
		// Avoid a trailing chunk that is nothing but the overlap seed.
		if len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], chunk) {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}

func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// splitSentences breaks a paragraph after terminal punctuation, keeping the
// punctuation with the preceding sentence.
func splitSentences(para string) []string {
	indexes := sentenceEnd.FindAllStringSubmatchIndex(para, -1)
	if len(indexes) == 0 {
		return []string{para}
	}

	var sentences []string
	start := 0
	for _, loc := range indexes {
		end := loc[3] // position just after the punctuation mark
		sentence := strings.TrimSpace(para[start:end])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = loc[1]
	}
	if tail := strings.TrimSpace(para[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func hardSplit(s string, size int) []string {
	var parts []string
	runes := []rune(s)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[i:end]))
	}
	return parts
}

// overlapTail returns the last sentences of chunk up to maxLen characters,
// or a raw suffix when no sentence boundary fits.
func overlapTail(chunk string, maxLen int) string {
	if len(chunk) <= maxLen {
		return chunk
	}
	tail := chunk[len(chunk)-maxLen:]
	if idx := sentenceEnd.FindStringIndex(tail); idx != nil {
		trimmed := strings.TrimSpace(tail[idx[1]:])
		if trimmed != "" {
			return trimmed
		}
	}
	return strings.TrimSpace(tail)
}
