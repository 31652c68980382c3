package snapshot

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ops-assistant-be/pkg/rag"
)

func chunk(docId uuid.UUID, chunkId int, embedding []float32) rag.Chunk {
	return rag.Chunk{
		DocId:     docId,
		Filename:  "doc.txt",
		ChunkId:   chunkId,
		Content:   "content",
		Embedding: embedding,
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	docA := uuid.New()
	snap := New([]rag.Chunk{
		chunk(docA, 0, []float32{1, 0}),
		chunk(docA, 1, []float32{0, 1}),
		chunk(docA, 2, []float32{0.9, 0.1}),
	})

	results := snap.Search([]float32{1, 0}, 10, 0)
	require.Len(t, results, 3)
	assert.Equal(t, 0, results[0].Chunk.ChunkId)
	assert.Equal(t, 2, results[1].Chunk.ChunkId)
	assert.Equal(t, 1, results[2].Chunk.ChunkId)
}

func TestSearchAppliesKAndMinScore(t *testing.T) {
	docA := uuid.New()
	snap := New([]rag.Chunk{
		chunk(docA, 0, []float32{1, 0}),
		chunk(docA, 1, []float32{0.9, 0.1}),
		chunk(docA, 2, []float32{0, 1}),
	})

	results := snap.Search([]float32{1, 0}, 1, 0)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Chunk.ChunkId)

	results = snap.Search([]float32{1, 0}, 10, 0.5)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.5)
	}
}

func TestSearchTieBreakIsDeterministic(t *testing.T) {
	docA := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	docB := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	// Identical embeddings, identical scores.
	chunks := []rag.Chunk{
		chunk(docB, 1, []float32{1, 0}),
		chunk(docA, 2, []float32{1, 0}),
		chunk(docA, 1, []float32{1, 0}),
	}

	for i := 0; i < 5; i++ {
		snap := New(chunks)
		results := snap.Search([]float32{1, 0}, 10, 0)
		require.Len(t, results, 3)
		assert.Equal(t, docA, results[0].Chunk.DocId)
		assert.Equal(t, 1, results[0].Chunk.ChunkId)
		assert.Equal(t, docA, results[1].Chunk.DocId)
		assert.Equal(t, 2, results[1].Chunk.ChunkId)
		assert.Equal(t, docB, results[2].Chunk.DocId)
	}
}

func TestLookup(t *testing.T) {
	docA := uuid.New()
	snap := New([]rag.Chunk{chunk(docA, 3, []float32{1, 0})})

	got, ok := snap.Lookup(docA, 3)
	require.True(t, ok)
	assert.Equal(t, 3, got.ChunkId)

	_, ok = snap.Lookup(docA, 99)
	assert.False(t, ok)

	_, ok = snap.Lookup(uuid.New(), 3)
	assert.False(t, ok)
}

func TestSnapshotIsolatedFromCallerSlice(t *testing.T) {
	docA := uuid.New()
	chunks := []rag.Chunk{chunk(docA, 0, []float32{1, 0})}
	snap := New(chunks)

	chunks[0].Content = "mutated"

	got, ok := snap.Lookup(docA, 0)
	require.True(t, ok)
	assert.Equal(t, "content", got.Content)
}

func TestDocIdsFirstSeenOrder(t *testing.T) {
	docA := uuid.New()
	docB := uuid.New()
	snap := New([]rag.Chunk{
		chunk(docB, 0, nil),
		chunk(docA, 0, nil),
		chunk(docB, 1, nil),
	})

	assert.Equal(t, []uuid.UUID{docB, docA}, snap.DocIds())
}
