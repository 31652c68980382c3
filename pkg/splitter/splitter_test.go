package splitter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortTextIsSingleChunk(t *testing.T) {
	chunks := Split("A short policy paragraph.", 1800, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short policy paragraph.", chunks[0])
}

func TestEmptyAndWhitespaceTextYieldNoChunks(t *testing.T) {
	assert.Nil(t, Split("", 1800, 200))
	assert.Nil(t, Split("  \n\n\t ", 1800, 200))
}

func TestChunksRespectSizeAndPreferParagraphBoundaries(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "Paragraph %d explains one part of the refund procedure in detail.\n\n", i)
	}

	chunks := Split(sb.String(), 300, 50)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 300)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestChunkSizeBoundHoldsAfterOverlapSeed(t *testing.T) {
	// Near-chunk-sized paragraphs force every chunk to start from an
	// overlap seed that cannot fit alongside the next unit.
	text := strings.Repeat("a", 1700) + "\n\n" + strings.Repeat("b", 1700) + "\n\n" + strings.Repeat("c", 1700)

	chunks := Split(text, 1800, 200)
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 1800)
	}
	joined := strings.Join(chunks, "\n")
	assert.Contains(t, joined, strings.Repeat("a", 1700))
	assert.Contains(t, joined, strings.Repeat("b", 1700))
	assert.Contains(t, joined, strings.Repeat("c", 1700))
}

func TestNoContentIsLost(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "Marker%03d is a unique token that must survive chunking. ", i)
	}

	chunks := Split(sb.String(), 400, 80)
	joined := strings.Join(chunks, "\n")
	for i := 0; i < 30; i++ {
		assert.Contains(t, joined, fmt.Sprintf("Marker%03d", i))
	}
}

func TestOverlapCarriesTailSentence(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "Sentence number %d of the procedure text. ", i)
	}

	chunks := Split(sb.String(), 300, 100)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		head := chunks[i]
		if len(head) > 60 {
			head = head[:60]
		}
		// The start of each chunk repeats material from the previous one.
		overlapFound := false
		for j := 40; j >= 10; j-- {
			if j <= len(head) && strings.Contains(prev, strings.TrimSpace(head[:j])) {
				overlapFound = true
				break
			}
		}
		assert.True(t, overlapFound, "chunk %d does not overlap its predecessor", i)
	}
}

func TestOversizedSingleSentenceIsHardSplit(t *testing.T) {
	text := strings.Repeat("x", 5000)
	chunks := Split(text, 1000, 0)
	require.Greater(t, len(chunks), 1)
	total := 0
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 1000)
		total += len(chunk)
	}
	assert.Equal(t, 5000, total)
}

func TestCRLFAndExcessNewlinesNormalized(t *testing.T) {
	chunks := Split("First line.\r\n\r\n\r\n\r\nSecond line.", 1800, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, "First line.\n\nSecond line.", chunks[0])
}

func TestSplitIsDeterministic(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, "Step %d: the owner performs the documented action. ", i)
	}
	text := sb.String()

	first := Split(text, 350, 60)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Split(text, 350, 60))
	}
}

func TestInvalidOverlapIgnored(t *testing.T) {
	text := strings.Repeat("A sentence that repeats itself. ", 40)
	assert.NotEmpty(t, Split(text, 200, 200)) // overlap >= chunkSize
	assert.NotEmpty(t, Split(text, 200, -5))
}
